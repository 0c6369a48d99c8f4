package catalog

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/lk2023060901/xdooria-arena/app/arena/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTemplatesAreValid(t *testing.T) {
	pool := DefaultTemplates()
	require.Len(t, pool, 4)

	total := 0.0
	for _, tpl := range pool {
		assert.True(t, tpl.Element.Valid(), tpl.Name)
		assert.Len(t, tpl.Skills, 3, tpl.Name)
		assert.Positive(t, tpl.Stats.HP)
		total += tpl.Weight
	}
	assert.InDelta(t, 1.0, total, 1e-9)
	assert.Equal(t, 27.5, pool[0].Skills[1].Scaling.Percent)
}

func TestCatalogCachesAndDedupes(t *testing.T) {
	var calls atomic.Int32
	release := make(chan struct{})
	loader := LoaderFunc(func(context.Context) ([]*model.Template, error) {
		calls.Add(1)
		<-release
		return DefaultTemplates(), nil
	})
	c := New(nil, loader, nil)
	defer c.Close()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			pool, err := c.Templates(context.Background())
			assert.NoError(t, err)
			assert.Len(t, pool, 4)
		}()
	}
	close(release)
	wg.Wait()

	_, err := c.Templates(context.Background())
	require.NoError(t, err)
	assert.LessOrEqual(t, calls.Load(), int32(8))
	before := calls.Load()

	_, err = c.Templates(context.Background())
	require.NoError(t, err)
	assert.Equal(t, before, calls.Load())
}

func TestCatalogGet(t *testing.T) {
	c := New(nil, StaticLoader(DefaultTemplates()), nil)
	defer c.Close()

	tpl, err := c.Get(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Wind Guardian", tpl.Name)

	_, err = c.Get(context.Background(), 99)
	assert.ErrorIs(t, err, model.ErrNotFound)
}

func TestCatalogRefresh(t *testing.T) {
	var version atomic.Int32
	loader := LoaderFunc(func(context.Context) ([]*model.Template, error) {
		n := version.Add(1)
		return DefaultTemplates()[:n], nil
	})
	c := New(nil, loader, nil)
	defer c.Close()

	pool, err := c.Templates(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 1)

	require.NoError(t, c.Refresh(context.Background()))
	pool, err = c.Templates(context.Background())
	require.NoError(t, err)
	assert.Len(t, pool, 2)
}

func TestCatalogLoadError(t *testing.T) {
	boom := errors.New("boom")
	c := New(nil, LoaderFunc(func(context.Context) ([]*model.Template, error) {
		return nil, boom
	}), nil)
	defer c.Close()

	_, err := c.Templates(context.Background())
	assert.ErrorIs(t, err, boom)
}
