package cleanup

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSend(t *testing.T) {
	var gotPath, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotMethod = r.Method
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	require.True(t, client.Enabled())
	require.NoError(t, client.Send(context.Background(), 42))

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/api/listings/42/cleanup-images", gotPath)
}

func TestSend_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, srv.Client())
	assert.Error(t, client.Send(context.Background(), 42))
}

func TestDisabledClient(t *testing.T) {
	client := NewClient("   ", nil)
	assert.False(t, client.Enabled())
}
