package provider

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func postJSON(t *testing.T, client *http.Client, url, body string) (*http.Response, string) {
	t.Helper()
	resp, err := client.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, string(data)
}

func TestCachingTransport_ReplaysIdenticalPost(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte(`{"answer":"cached"}`))
	}))
	defer backend.Close()

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	_, first := postJSON(t, client, backend.URL, `{"q":"same"}`)
	_, second := postJSON(t, client, backend.URL, `{"q":"same"}`)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(1), hits.Load(), "second identical request must replay from cache")
}

func TestCachingTransport_DistinctBodiesMiss(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		body, _ := io.ReadAll(r.Body)
		_, _ = w.Write(body)
	}))
	defer backend.Close()

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	_, first := postJSON(t, client, backend.URL, `{"q":"one"}`)
	_, second := postJSON(t, client, backend.URL, `{"q":"two"}`)

	assert.Equal(t, `{"q":"one"}`, first)
	assert.Equal(t, `{"q":"two"}`, second)
	assert.Equal(t, int64(2), hits.Load())
}

func TestCachingTransport_ErrorsNotCached(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer backend.Close()

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	resp, _ := postJSON(t, client, backend.URL, `{"q":"same"}`)
	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	postJSON(t, client, backend.URL, `{"q":"same"}`)

	assert.Equal(t, int64(2), hits.Load(), "non-2xx responses must not be cached")
}

func TestCachingTransport_GetBypassesCache(t *testing.T) {
	var hits atomic.Int64
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		_, _ = w.Write([]byte("ok"))
	}))
	defer backend.Close()

	client := &http.Client{Transport: NewCachingTransport(t.TempDir(), nil)}

	for range 2 {
		resp, err := client.Get(backend.URL)
		require.NoError(t, err)
		resp.Body.Close()
	}
	assert.Equal(t, int64(2), hits.Load())
}
