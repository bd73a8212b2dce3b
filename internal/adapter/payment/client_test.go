package payment

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	domain "github.com/iamciscoo/TISCOfinal-sub002/internal/entity"
	"github.com/iamciscoo/TISCOfinal-sub002/internal/usecase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Initiate(t *testing.T) {
	var got initiateReq
	var apiKey string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/v1/payments", r.URL.Path)
		apiKey = r.Header.Get("X-Api-Key")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k-123", time.Second)
	err := c.Initiate(context.Background(), "MM-1", domain.Money{Cents: 4500, Currency: "TZS"}, "vodacom", "+255700000001")
	require.NoError(t, err)
	assert.Equal(t, "k-123", apiKey)
	assert.Equal(t, initiateReq{
		Reference: "MM-1",
		Amount:    4500,
		Currency:  "TZS",
		Channel:   "vodacom",
		Phone:     "+255700000001",
	}, got)
}

func TestClient_InitiateRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	err := c.Initiate(context.Background(), "MM-1", domain.Money{Cents: 100, Currency: "TZS"}, "tigo", "+255")
	assert.Error(t, err)
}

func TestClient_Status(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/payments/MM-1/status", r.URL.Path)
		json.NewEncoder(w).Encode(statusResp{Reference: "MM-1", Status: "SETTLED"})
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "k", time.Second)
	st, err := c.Status(context.Background(), "MM-1")
	require.NoError(t, err)
	assert.Equal(t, usecase.ProviderCompleted, st)
}

func TestClassify(t *testing.T) {
	cases := map[string]usecase.ProviderStatus{
		"COMPLETED":  usecase.ProviderCompleted,
		"success":    usecase.ProviderCompleted,
		"Settled":    usecase.ProviderCompleted,
		"FAILED":     usecase.ProviderFailed,
		"cancelled":  usecase.ProviderFailed,
		"REJECTED":   usecase.ProviderFailed,
		"EXPIRED":    usecase.ProviderFailed,
		"PENDING":    usecase.ProviderPending,
		"PROCESSING": usecase.ProviderPending,
		"":           usecase.ProviderPending,
		"WEIRD_NEW":  usecase.ProviderPending,
	}
	for in, want := range cases {
		assert.Equal(t, want, Classify(in), "status %q", in)
	}
}
