package classify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaClient_Generate(t *testing.T) {
	var got ollamaRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":" 贈与疑い\n","done":true}`))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api/generate", "llama3", time.Second)
	answer, err := c.Generate(context.Background(), "prompt text")
	require.NoError(t, err)
	assert.Equal(t, " 贈与疑い\n", answer)

	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "prompt text", got.Prompt)
	assert.False(t, got.Stream)
}

func TestOllamaClient_Non200(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api/generate", "missing", time.Second)
	_, err := c.Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
	assert.Contains(t, err.Error(), "model not found")
}

func TestOllamaClient_BadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewOllamaClient(srv.URL, "m", time.Second).Generate(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decoding ollama response")
}

func TestOllamaClient_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c := NewOllamaClient(srv.URL, "m", 50*time.Millisecond)
	_, err := c.Generate(context.Background(), "x")
	assert.Error(t, err)
}

func TestOllamaClient_FallbackOnTimeoutYieldsOther(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	f := NewFallback(NewRuleEngine(DefaultKeywords(), DefaultGiftThreshold),
		NewOllamaClient(srv.URL, "m", time.Minute), 50*time.Millisecond)
	assert.Equal(t, "その他", string(Categorize(context.Background(), f, "謎", 1, 0)))
}

func TestOllamaClient_Ping(t *testing.T) {
	var path string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_, _ = w.Write([]byte("Ollama is running"))
	}))
	defer srv.Close()

	c := NewOllamaClient(srv.URL+"/api/generate?x=1", "m", time.Second)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, "/", path)
}

func TestOllamaClient_PingUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c := NewOllamaClient(url+"/api/generate", "m", time.Second)
	assert.Error(t, c.Ping(context.Background()))
}
