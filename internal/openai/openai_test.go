package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mtthwcarey/catalogger/internal/providers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractText(t *testing.T) {
	var got struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"  Title: Dune\nAuthor: Frank Herbert \n"}}]}`))
	}))
	defer server.Close()

	client := New("test-key", server.URL+"/")
	text, err := client.ExtractText(context.Background(), providers.Config{
		Model:        "gpt-4o-mini",
		SystemPrompt: "system",
		Prompt:       "user",
	})
	require.NoError(t, err)

	assert.Equal(t, "Title: Dune\nAuthor: Frank Herbert", text)
	assert.Equal(t, "gpt-4o-mini", got.Model)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "user", got.Messages[1].Role)
}

func TestExtractTextErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr string
	}{
		{name: "server error", status: http.StatusInternalServerError, body: "boom", wantErr: "non-200 status code: 500"},
		{name: "no choices", status: http.StatusOK, body: `{"choices":[]}`, wantErr: "no choices"},
		{name: "bad json", status: http.StatusOK, body: `{`, wantErr: "failed to decode"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := New("key", server.URL).ExtractText(context.Background(), providers.Config{Prompt: "x"})
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestExtractTextMissingKey(t *testing.T) {
	_, err := New("", "").ExtractText(context.Background(), providers.Config{Prompt: "x"})
	assert.True(t, errors.Is(err, providers.ErrMissingAPIKey))
}
