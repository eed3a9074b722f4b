package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

type inboxStub struct {
	page, pageSize int
	userID         string
}

func (s *inboxStub) List(ctx context.Context, userID string, page, pageSize int) ([]models.Notification, *models.Pagination, error) {
	s.userID, s.page, s.pageSize = userID, page, pageSize
	return []models.Notification{{ID: "n-1", UserID: userID}}, &models.Pagination{Page: page, PageSize: pageSize, TotalCount: 1}, nil
}

func (s *inboxStub) MarkRead(ctx context.Context, userID, id string) error {
	if id != "n-1" {
		return appErrors.Clone(appErrors.ErrNotFound, "notification not found")
	}
	return nil
}

func TestNotificationHandlerListNormalizesPagination(t *testing.T) {
	stub := &inboxStub{}
	h := NewNotificationHandler(stub)
	c, w := newTestContext(t, http.MethodGet, "/notifications?page=0&page_size=500", nil, studentClaims)

	h.List(c)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "student-1", stub.userID)
	assert.Equal(t, 1, stub.page)
	assert.Equal(t, 100, stub.pageSize)
	assert.NotNil(t, decodeEnvelope(t, w)["pagination"])
}

func TestNotificationHandlerMarkRead(t *testing.T) {
	h := NewNotificationHandler(&inboxStub{})

	c, _ := newTestContext(t, http.MethodPost, "/notifications/n-1/read", nil, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "n-1"}}
	h.MarkRead(c)
	assert.Equal(t, http.StatusNoContent, c.Writer.Status())

	c, w := newTestContext(t, http.MethodPost, "/notifications/n-2/read", nil, studentClaims)
	c.Params = gin.Params{{Key: "id", Value: "n-2"}}
	h.MarkRead(c)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
