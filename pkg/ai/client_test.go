package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	var gotBody map[string]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		json.NewEncoder(w).Encode(GenerateResponse{Model: "llama2", Response: "hello there", Done: true})
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	resp, err := client.Generate(context.Background(), "", "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello there", resp.Response)
	assert.True(t, resp.Done)

	assert.Equal(t, "llama2", gotBody["model"], "default model applies when none is given")
	assert.Equal(t, "say hello", gotBody["prompt"])
	assert.Equal(t, false, gotBody["stream"])
}

func TestGenerate_ExplicitModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]interface{}
		json.NewDecoder(r.Body).Decode(&body)
		assert.Equal(t, "mistral", body["model"])
		json.NewEncoder(w).Encode(GenerateResponse{Model: "mistral", Response: "ok", Done: true})
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL, Model: "llama2"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "mistral", "hi")
	assert.NoError(t, err)
}

func TestGenerate_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client, err := NewClient(Config{Endpoint: srv.URL})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "", "hi")
	assert.ErrorContains(t, err, "status 404")
}

func TestGenerate_EmptyPrompt(t *testing.T) {
	client, err := NewClient(Config{Endpoint: "http://localhost:11434"})
	require.NoError(t, err)

	_, err = client.Generate(context.Background(), "", "")
	assert.ErrorContains(t, err, "prompt is required")
}

func TestNewClient_RequiresEndpoint(t *testing.T) {
	_, err := NewClient(Config{})
	assert.Error(t, err)
}
