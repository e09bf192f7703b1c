package inmemory

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/suggestionapp/internal/server/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	_, err := c.Get(ctx, "CategoryData")
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	require.NoError(t, c.Set(ctx, "CategoryData", []byte(`[1]`), time.Hour))
	got, err := c.Get(ctx, "CategoryData")
	require.NoError(t, err)
	assert.Equal(t, []byte(`[1]`), got)

	require.NoError(t, c.Delete(ctx, "CategoryData"))
	_, err = c.Get(ctx, "CategoryData")
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	// deleting a missing key is fine
	require.NoError(t, c.Delete(ctx, "CategoryData"))
}

func TestCache_EntriesAreCopied(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	in := []byte("abc")
	require.NoError(t, c.Set(ctx, "k", in, time.Minute))
	in[0] = 'x'

	out, err := c.Get(ctx, "k")
	require.NoError(t, err)
	out[1] = 'y'

	again, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(again))
}

func TestCache_Expiry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(&Config{CleanupInterval: time.Millisecond})

	require.NoError(t, c.Set(ctx, "short", []byte("v"), 20*time.Millisecond))
	require.NoError(t, c.Set(ctx, "forever", []byte("v"), 0))

	time.Sleep(50 * time.Millisecond)

	_, err := c.Get(ctx, "short")
	require.ErrorIs(t, err, cache.ErrCacheMiss)

	_, err = c.Get(ctx, "forever")
	require.NoError(t, err)
}

func TestCache_SetReplacesEntry(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	require.NoError(t, c.Set(ctx, "k", []byte("one"), time.Minute))
	require.NoError(t, c.Set(ctx, "k", []byte("two"), time.Minute))

	got, err := c.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "two", string(got))
	assert.Equal(t, 1, c.Len())
}

func TestCache_ParallelAccess(t *testing.T) {
	ctx := context.Background()
	c := NewCache(nil)

	const workers = 16
	const rounds = 200
	shared := "SuggestionData"

	var g errgroup.Group
	for i := 0; i < workers; i++ {
		own := fmt.Sprintf("key-%d", i)
		mine := []byte(fmt.Sprintf("value-%d", i))
		g.Go(func() error {
			for r := 0; r < rounds; r++ {
				if err := c.Set(ctx, own, mine, time.Hour); err != nil {
					return err
				}
				got, err := c.Get(ctx, own)
				if err != nil {
					return err
				}
				if string(got) != string(mine) {
					return fmt.Errorf("%s: got %q", own, got)
				}
				got[0] = 'X'

				if err := c.Set(ctx, shared, mine, time.Hour); err != nil {
					return err
				}
				v, err := c.Get(ctx, shared)
				switch {
				case errors.Is(err, cache.ErrCacheMiss):
				case err != nil:
					return err
				case len(v) < len("value-") || string(v[:len("value-")]) != "value-":
					return fmt.Errorf("shared: got %q", v)
				}
				if r%10 == 0 {
					if err := c.Delete(ctx, shared); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	for i := 0; i < workers; i++ {
		got, err := c.Get(ctx, fmt.Sprintf("key-%d", i))
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("value-%d", i), string(got))
	}
}
