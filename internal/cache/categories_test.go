package cache

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Rogue-Bear-Innovations/bookmarker-web/internal/db"
)

func TestCategoriesRemember(t *testing.T) {
	c := NewCategories(zap.NewNop().Sugar())

	calls := 0
	load := func() ([]db.Category, error) {
		calls++
		return []db.Category{{Name: "Books"}}, nil
	}

	got, err := c.Remember(1, load)
	require.NoError(t, err)
	assert.Equal(t, "Books", got[0].Name)

	_, err = c.Remember(1, load)
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	_, err = c.Remember(2, load)
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "entries are per user")

	c.Flush()
	_, err = c.Remember(1, load)
	require.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestCategoriesRememberError(t *testing.T) {
	c := NewCategories(zap.NewNop().Sugar())

	_, err := c.Remember(1, func() ([]db.Category, error) {
		return nil, errors.New("boom")
	})
	assert.Error(t, err)

	got, err := c.Remember(1, func() ([]db.Category, error) {
		return []db.Category{}, nil
	})
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCategoriesFlushDuringLoad(t *testing.T) {
	c := NewCategories(zap.NewNop().Sugar())

	got, err := c.Remember(1, func() ([]db.Category, error) {
		// a write lands while the read is still in flight
		c.Flush()
		return []db.Category{{Name: "Old"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Old", got[0].Name)

	calls := 0
	got, err = c.Remember(1, func() ([]db.Category, error) {
		calls++
		return []db.Category{{Name: "Old"}, {Name: "New"}}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.Len(t, got, 2)
}
