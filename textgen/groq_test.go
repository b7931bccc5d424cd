package textgen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGroqGenerateJSONMode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req groqRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.NotNil(t, req.ResponseFormat)
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.Equal(t, "llama-3.3-70b-versatile", req.Model)

		w.Write([]byte(`{"choices":[{"message":{"content":"{\"hook\":\"hi\"}"}}]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "llama-3.3-70b-versatile")
	p.baseURL = srv.URL

	out, err := p.Generate(context.Background(), "write a script", Options{JSONMode: true})
	require.NoError(t, err)
	assert.JSONEq(t, `{"hook":"hi"}`, out)
}

func TestGroqGenerateStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"rate limit"}}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "m")
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), "prompt", Options{})
	require.Error(t, err)

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
	assert.True(t, IsRetryable(err))
}

func TestGroqGenerateEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	p := NewGroqProvider("test-key", "m")
	p.baseURL = srv.URL

	_, err := p.Generate(context.Background(), "prompt", Options{})
	assert.Error(t, err)
}
