package handler

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/dto"
	"github.com/noah-isme/sma-grading-api/internal/models"
	"github.com/noah-isme/sma-grading-api/internal/service"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type exporterStub struct {
	request dto.ExportRecapRequest
}

func (s *exporterStub) Export(ctx context.Context, actor models.Actor, req dto.ExportRecapRequest) (*models.ExportResult, error) {
	s.request = req
	return &models.ExportResult{ID: "exp-1", Kind: req.Kind, Format: req.Format, URL: "/api/v1/export/token"}, nil
}

func (s *exporterStub) Download(ctx context.Context, token string) (*service.ExportDownload, error) {
	if token != "valid" {
		return nil, appErrors.ErrUnauthorized
	}
	return &service.ExportDownload{
		Body:        io.NopCloser(strings.NewReader("student_id,avg\ns-1,80\n")),
		Filename:    "grades.csv",
		ContentType: "text/csv",
	}, nil
}

func TestExportHandlerExportBindsEmbeddedFilter(t *testing.T) {
	stub := &exporterStub{}
	h := NewExportHandler(stub)
	body := `{"kind":"grades","format":"csv","class_id":"c-1","date_start":"2024-01-01"}`
	c, w := newTestContext(t, http.MethodPost, "/recaps/export", body, teacherClaims)

	h.Export(c)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, models.RecapKindGrades, stub.request.Kind)
	assert.Equal(t, "c-1", stub.request.ClassID)
	assert.Equal(t, "2024-01-01", stub.request.DateStart)
}

func TestExportHandlerDownloadStreamsFile(t *testing.T) {
	h := NewExportHandler(&exporterStub{})
	c, w := newTestContext(t, http.MethodGet, "/export/valid", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "valid"}}

	h.Download(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/csv", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), `filename="grades.csv"`)
	assert.Contains(t, w.Body.String(), "s-1,80")
}

func TestExportHandlerDownloadRejectsBadToken(t *testing.T) {
	h := NewExportHandler(&exporterStub{})
	c, w := newTestContext(t, http.MethodGet, "/export/forged", nil, nil)
	c.Params = gin.Params{{Key: "token", Value: "forged"}}

	h.Download(c)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
