package dto

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/sma-grading-api/internal/models"
)

func TestRecapQueryFilterParsesDates(t *testing.T) {
	f, err := RecapQuery{ClassID: "class-a", DateStart: "2025-01-01", DateEnd: "2025-01-31", GroupBy: "class"}.Filter()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC), *f.DateStart)
	assert.Equal(t, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), *f.DateEnd)
	assert.Equal(t, models.RecapGroupByClass, f.GroupBy)
}

func TestRecapQueryFilterRejectsBadDate(t *testing.T) {
	_, err := RecapQuery{DateEnd: "31/01/2025"}.Filter()
	assert.EqualError(t, err, "date_end must be formatted as YYYY-MM-DD")
}

func TestNotificationQueryNormalize(t *testing.T) {
	q := NotificationQuery{PageSize: 500}
	q.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, 100, q.PageSize)
}
