package vps

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestNewClient(t *testing.T) {
	t.Run("default timeout", func(t *testing.T) {
		c := NewClient("http://feed", "key", 0)
		assert.Equal(t, DefaultTimeout, c.httpClient.Timeout)
		assert.Equal(t, "key", c.apiKey)
	})

	t.Run("explicit timeout", func(t *testing.T) {
		c := NewClient("http://feed", "key", 5*time.Second)
		assert.Equal(t, 5*time.Second, c.httpClient.Timeout)
	})
}

func TestSync_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "secret-key", r.Header.Get("X-API-KEY"))

		var req SyncRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Accounts, 1)
		assert.Equal(t, int64(1001), req.Accounts[0].Login)
		assert.Equal(t, "pw", req.Accounts[0].Password)
		assert.Equal(t, "2020-01-01 00:00:00", req.Accounts[0].LastSyncDate)

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"data":[{"account":1001,"status":"success","balance":10250.5,
			"new_trades":[{"ticket":9,"symbol":"EURUSD","type":"BUY","trade_date":"2024-01-02",
			"entry_time":"09:00:00","exit_time":"10:30:00","profit":250.5,"commission":-2,"swap":0}]}]}`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "secret-key", time.Second)
	resp, err := c.Sync(context.Background(), []AccountRequest{
		{Login: 1001, Password: "pw", Server: "srv", LastSyncDate: "2020-01-01 00:00:00"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Data, 1)

	res := resp.Data[0]
	assert.True(t, res.OK())
	require.NotNil(t, res.Balance)
	assert.InDelta(t, 10250.5, *res.Balance, 1e-9)
	require.Len(t, res.NewTrades, 1)

	tr := res.NewTrades[0]
	require.NotNil(t, tr.Ticket)
	assert.Equal(t, int64(9), *tr.Ticket)
	assert.Nil(t, tr.PositionID)
	require.NotNil(t, tr.Profit)
	assert.InDelta(t, 250.5, *tr.Profit, 1e-9)
	assert.Equal(t, "10:30:00", tr.ExitTime)
}

func TestSync_ErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte("terminal offline"))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", time.Second)
	_, err := c.Sync(context.Background(), nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStatus)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "terminal offline")
}

func TestSync_Timeout(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	c := NewClient(server.URL, "k", 50*time.Millisecond)
	_, err := c.Sync(context.Background(), nil)
	assert.Error(t, err)
}

func TestSync_BadJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"data": [`))
	}))
	defer server.Close()

	c := NewClient(server.URL, "k", time.Second)
	_, err := c.Sync(context.Background(), nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode response")
}

func TestSync_MissingURL(t *testing.T) {
	c := NewClient("", "k", time.Second)
	_, err := c.Sync(context.Background(), nil)
	assert.Error(t, err)
}

func TestAccountRequestRedactsPassword(t *testing.T) {
	req := AccountRequest{Login: 7, Password: "plain-secret", Server: "srv", LastSyncDate: "2024-01-01 00:00:00"}

	assert.NotContains(t, req.String(), "plain-secret")

	core, logs := observer.New(zap.DebugLevel)
	zap.New(core).Info("request", zap.Object("account", req))

	entries := logs.All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	encoded, err := json.Marshal(fields)
	require.NoError(t, err)
	assert.False(t, strings.Contains(string(encoded), "plain-secret"))
	assert.Contains(t, string(encoded), "[redacted]")
}
