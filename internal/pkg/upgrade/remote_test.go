package upgrade

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MiguelSanz/Anunzio/app/models"
)

func okHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))

		var body upgradeRequestBody
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "premium", body.PlanCode)

		_ = json.NewEncoder(w).Encode(Result{OK: true, Listing: &models.Listing{ID: 7, PlanCanonical: "premium"}})
	}
}

func TestRemoteUpgrade_MissingToken(t *testing.T) {
	s := NewRemoteStrategy([]string{"http://localhost:1"}, nil)
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium"})
	assert.False(t, res.OK)
	assert.Equal(t, ErrNotAuthenticated, res.Err)
}

func TestRemoteUpgrade_NoEndpointsConfigured(t *testing.T) {
	s := NewRemoteStrategy([]string{"", "   "}, nil)
	assert.False(t, s.Enabled())

	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})
	assert.Equal(t, ErrUpgradeDisabled, res.Err)
}

func TestRemoteUpgrade_PrimarySucceeds(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		okHandler(t)(w, r)
	}))
	defer srv.Close()

	s := NewRemoteStrategy([]string{srv.URL}, srv.Client())
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	require.True(t, res.OK)
	require.NotNil(t, res.Listing)
	assert.Equal(t, uint(7), res.Listing.ID)
	assert.Equal(t, "/api/listings/7/upgrade", gotPath)
}

func TestRemoteUpgrade_SecondEndpointAfterServerError(t *testing.T) {
	primary := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer primary.Close()

	secondary := httptest.NewServer(okHandler(t))
	defer secondary.Close()

	s := NewRemoteStrategy([]string{primary.URL, secondary.URL}, nil)
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	require.True(t, res.OK)
	assert.Equal(t, "premium", res.Listing.PlanCanonical)
}

func TestRemoteUpgrade_FailureStatusRetained(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	s := NewRemoteStrategy([]string{srv.URL}, srv.Client())
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	assert.False(t, res.OK)
	assert.Equal(t, "upgrade_failed_402", res.Err)
}

func TestRemoteUpgrade_LastFailureWinsAcrossEndpoints(t *testing.T) {
	first := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
	}))
	defer first.Close()

	second := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer second.Close()

	s := NewRemoteStrategy([]string{first.URL, second.URL}, nil)
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	assert.Equal(t, "upgrade_failed_403", res.Err)
}

func TestRemoteUpgrade_DeclinedBodyPassedThrough(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Result{OK: false, Err: "upgrade_failed_402"})
	}))
	defer srv.Close()

	s := NewRemoteStrategy([]string{srv.URL}, srv.Client())
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	assert.False(t, res.OK)
	assert.Equal(t, "upgrade_failed_402", res.Err)
}

func TestRemoteUpgrade_TransportError(t *testing.T) {
	s := NewRemoteStrategy([]string{"http://127.0.0.1:1"}, nil)
	res := s.Upgrade(context.Background(), Request{ListingID: 7, PlanCode: "premium", BearerToken: "secret"})

	assert.False(t, res.OK)
	assert.Equal(t, ErrNetwork, res.Err)
}
