package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"everkeep/memorial-service/internal/auth"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocaleFilter(t *testing.T) {
	tests := []struct {
		path       string
		wantPath   string
		wantLocale string
	}{
		{"/memorial/maria", "/memorial/maria", "en"},
		{"/de/memorial/maria", "/memorial/maria", "de"},
		{"/fr/memorials", "/memorials", "fr"},
		{"/es", "/", "es"},
		{"/en/memorial/maria", "/en/memorial/maria", "en"},
		{"/it/memorial/maria", "/it/memorial/maria", "en"},
		{"/delta/one", "/delta/one", "en"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var gotPath, gotLocale string
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotPath = r.URL.Path
				gotLocale, _ = auth.LocaleFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			LocaleFilter()(next).ServeHTTP(httptest.NewRecorder(), req)

			assert.Equal(t, tt.wantPath, gotPath)
			assert.Equal(t, tt.wantLocale, gotLocale)
		})
	}
}

func TestSplitLocalePrefix(t *testing.T) {
	locale, rest, ok := splitLocalePrefix("/de/memorial/maria")
	require.True(t, ok)
	assert.Equal(t, "de", locale)
	assert.Equal(t, "/memorial/maria", rest)

	_, _, ok = splitLocalePrefix("/memorial/maria")
	assert.False(t, ok)

	_, _, ok = splitLocalePrefix("/en/memorial/maria")
	assert.False(t, ok, "the default locale is never a prefix")
}
