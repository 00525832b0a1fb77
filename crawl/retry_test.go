package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/sitechat"
	"github.com/fwojciec/sitechat/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetryDelays(t *testing.T) {
	t.Parallel()

	t.Run("makes a single attempt with nil delays", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (*sitechat.Page, error) {
			calls++
			return nil, errors.New("boom")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://a.com/", fetch, nil, nil)

		require.EqualError(t, err, "boom")
		assert.Equal(t, 1, calls)
	})

	t.Run("retries until success and logs each retry", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (*sitechat.Page, error) {
			calls++
			if calls < 3 {
				return nil, errors.New("temporary")
			}
			return &sitechat.Page{Title: "ok"}, nil
		}
		var logged []string
		logf := func(format string, _ ...any) { logged = append(logged, format) }

		page, err := crawl.FetchWithRetryDelays(context.Background(), "https://a.com/", fetch, logf, []time.Duration{0, 0, 0})

		require.NoError(t, err)
		assert.Equal(t, "ok", page.Title)
		assert.Equal(t, 3, calls)
		assert.Len(t, logged, 2)
	})

	t.Run("returns last error after exhausting retries", func(t *testing.T) {
		t.Parallel()

		calls := 0
		fetch := func(context.Context, string) (*sitechat.Page, error) {
			calls++
			return nil, errors.New("still down")
		}

		_, err := crawl.FetchWithRetryDelays(context.Background(), "https://a.com/", fetch, nil, []time.Duration{0, 0})

		require.EqualError(t, err, "still down")
		assert.Equal(t, 3, calls)
	})

	t.Run("stops waiting when context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		fetch := func(context.Context, string) (*sitechat.Page, error) {
			return nil, errors.New("down")
		}

		start := time.Now()
		_, err := crawl.FetchWithRetryDelays(ctx, "https://a.com/", fetch, nil, []time.Duration{time.Hour})

		require.ErrorIs(t, err, context.DeadlineExceeded)
		assert.Less(t, time.Since(start), time.Second)
	})
}

func TestBackoffDelays(t *testing.T) {
	t.Parallel()

	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultRetryDelays())
	assert.Equal(t, []time.Duration{10 * time.Millisecond, 20 * time.Millisecond}, crawl.BackoffDelays(2, 10*time.Millisecond))
	assert.Nil(t, crawl.BackoffDelays(0, time.Second))
}
