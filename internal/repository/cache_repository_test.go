package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/sma-grading-api/pkg/errors"
)

func TestCacheRepositoryWithoutClientIsAlwaysEmpty(t *testing.T) {
	repo := NewCacheRepository(nil)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "recap:grades:ADMIN:a-1:abc", []string{"row"}, time.Minute))

	var out []string
	err := repo.Get(ctx, "recap:grades:ADMIN:a-1:abc", &out)
	assert.True(t, errors.Is(err, appErrors.ErrCacheMiss))
	assert.Nil(t, out)

	assert.NoError(t, repo.DeleteByPattern(ctx, "recap:*"))
	assert.NoError(t, repo.Close())
}
