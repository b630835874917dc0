package chat

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/openai/openai-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewOpenAICompleterWithoutKey(t *testing.T) {
	assert.Nil(t, NewOpenAICompleter("", ""))
}

func TestOpenAICompleter(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Temperature float64 `json:"temperature"`
		MaxTokens   int     `json:"max_tokens"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer sk-test", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"created": 1700000000,
			"model": "gpt-4o-mini",
			"choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "Hold."}}]
		}`)
	}))
	defer srv.Close()

	c := NewOpenAICompleter("sk-test", "", option.WithBaseURL(srv.URL))
	require.NotNil(t, c)

	reply, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "sys"},
		{Role: RoleUser, Content: "hi"},
		{Role: RoleAssistant, Content: "hello"},
	})
	require.NoError(t, err)
	assert.Equal(t, "Hold.", reply)

	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-9)
	assert.Equal(t, 1000, got.MaxTokens)
	require.Len(t, got.Messages, 3)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "assistant", got.Messages[2].Role)
}

func TestOpenAICompleterRejectsUnknownRole(t *testing.T) {
	c := NewOpenAICompleter("sk-test", "", option.WithBaseURL("http://127.0.0.1:0"))
	_, err := c.Complete(context.Background(), []Message{{Role: "tool", Content: "x"}})
	assert.Error(t, err)
}
