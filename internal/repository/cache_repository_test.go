package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, "intervention-planner:", nil)
	ctx := context.Background()

	var dest []string
	assert.ErrorIs(t, repo.Get(ctx, "calendar:events:all", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(ctx, "calendar:events:all", []string{"x"}, time.Minute))
	assert.NoError(t, repo.Delete(ctx, "calendar:events:all"))
	assert.NoError(t, repo.DeleteByPattern(ctx, "calendar:*"))
	assert.NoError(t, repo.Ping(ctx))
	assert.Equal(t, "intervention-planner:calendar:events:all", repo.key("calendar:events:all"))
}
