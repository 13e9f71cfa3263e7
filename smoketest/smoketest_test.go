package smoketest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	t.Run("seeded run passes", func(t *testing.T) {
		res, err := Run(context.Background(), Options{
			Seed:       42,
			Operations: 128,
		})
		require.NoError(t, err)
		require.True(t, res.Passed)
		require.Empty(t, res.Failures)
		require.Equal(t, 128, res.Sets+res.Deletes)
		require.NotEmpty(t, res.RunID)
		require.Greater(t, res.LeafCount, 0)
	})

	t.Run("three dimensional run passes", func(t *testing.T) {
		res, err := Run(context.Background(), Options{
			Seed:       7,
			Operations: 64,
			Dimensions: 3,
			MaxDepth:   3,
		})
		require.NoError(t, err)
		require.True(t, res.Passed)
	})

	t.Run("canceled context stops the run", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := Run(ctx, Options{Seed: 42})
		require.ErrorIs(t, err, context.Canceled)
	})
}

func TestHandle(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/smoke-test", nil)
	w := httptest.NewRecorder()

	Handle(Options{Seed: 42, Operations: 32})(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var res Results
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res))
	require.True(t, res.Passed)
	require.Equal(t, int64(42), res.Seed)
}
