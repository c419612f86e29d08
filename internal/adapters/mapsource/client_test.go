package mapsource_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samirrijal/facilitymap/internal/adapters/mapsource"
)

func serve(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/map-data", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_Fetch(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"lat":[10,20],"lon":[30,40],"text":["A","B"]}`)

	ds, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10, 20}, ds.Lat)
	assert.Equal(t, []float64{30, 40}, ds.Lon)
	assert.Equal(t, []string{"A", "B"}, ds.Text)
}

func TestClient_Fetch_NoValidation(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"lat":[],"lon":[],"text":[]}`)

	ds, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, ds.Lat)
}

func TestClient_Fetch_InvalidJSON(t *testing.T) {
	srv := serve(t, http.StatusOK, `<html>not json</html>`)

	_, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode map data")
}

func TestClient_Fetch_TrailingGarbage(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"html after document", `{"lat":[10],"lon":[30],"text":["A"]} <html>oops</html>`},
		{"second document", `{"lat":[10],"lon":[30],"text":["A"]}{"lat":[],"lon":[],"text":[]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, tt.body)

			ds, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
			require.Error(t, err)
			assert.Nil(t, ds)
			assert.Contains(t, err.Error(), "decode map data")
		})
	}
}

func TestClient_Fetch_TrailingWhitespace(t *testing.T) {
	srv := serve(t, http.StatusOK, "{\"lat\":[10],\"lon\":[30],\"text\":[\"A\"]}\n\n")

	ds, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []float64{10}, ds.Lat)
}

func TestClient_Fetch_Non2xx(t *testing.T) {
	srv := serve(t, http.StatusInternalServerError, `{"error":"boom"}`)

	_, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(context.Background())
	var statusErr *mapsource.StatusError
	require.True(t, errors.As(err, &statusErr), "expected *StatusError, got %T", err)
	assert.Equal(t, http.StatusInternalServerError, statusErr.StatusCode)
}

func TestClient_Fetch_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL + "/map-data"
	srv.Close()

	_, err := mapsource.New(url, time.Second).Fetch(context.Background())
	require.Error(t, err)
}

func TestClient_Fetch_ContextCanceled(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"lat":[1],"lon":[2],"text":["a"]}`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := mapsource.New(srv.URL+"/map-data", time.Second).Fetch(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
