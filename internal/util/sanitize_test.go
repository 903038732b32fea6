package util

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/pyhumph/jriit-cms-sub001/pkg/apierror"
)

func TestSanitizeItemID(t *testing.T) {
	t.Parallel()

	t.Run("trims surrounding whitespace", func(t *testing.T) {
		actual, err := SanitizeItemID("  2f6c1c4e-5d0b-4c1f-9a55-0b7e3f1d9a10 ")
		require.NoError(t, err)
		require.Equal(t, "2f6c1c4e-5d0b-4c1f-9a55-0b7e3f1d9a10", actual)
	})

	t.Run("keeps non-uuid ids", func(t *testing.T) {
		actual, err := SanitizeItemID("ghost")
		require.NoError(t, err)
		require.Equal(t, "ghost", actual)
	})

	t.Run("rejects empty ids", func(t *testing.T) {
		_, err := SanitizeItemID("   ")
		require.Error(t, err)

		var apiErr *apierror.APIError
		require.ErrorAs(t, err, &apiErr)
		require.Equal(t, http.StatusBadRequest, apiErr.HTTPStatus)
	})

	t.Run("rejects null bytes", func(t *testing.T) {
		_, err := SanitizeItemID("abc\x00def")
		require.Error(t, err)
	})

	t.Run("rejects zero-width characters", func(t *testing.T) {
		_, err := SanitizeItemID("abc\u200Bdef")
		require.Error(t, err)
	})

	t.Run("rejects path separators", func(t *testing.T) {
		_, err := SanitizeItemID(`..\etc`)
		require.Error(t, err)
	})

	t.Run("rejects long ids", func(t *testing.T) {
		_, err := SanitizeItemID(strings.Repeat("a", maxItemIDLength+1))
		require.Error(t, err)

		_, err = SanitizeItemID(strings.Repeat("a", maxItemIDLength))
		require.NoError(t, err)
	})
}
