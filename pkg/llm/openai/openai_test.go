package openai

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neutrobox/automaker/pkg/llm"
	"github.com/neutrobox/automaker/pkg/types"
)

// sseServer serves a canned chat completions SSE stream.
func sseServer(t *testing.T, payloads []string) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.Header().Set("Content-Type", "text/event-stream")
		for _, payload := range payloads {
			fmt.Fprintf(w, "data: %s\n\n", payload)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
}

func collectChunks(t *testing.T, stream <-chan *llm.StreamChunk) (content string, sawFinish bool) {
	t.Helper()
	for chunk := range stream {
		require.NoError(t, chunk.Error)
		content += chunk.Content
		if chunk.Finished {
			sawFinish = true
		}
	}
	return content, sawFinish
}

func TestNewProvider(t *testing.T) {
	t.Run("RequiresAPIKey", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "")
		_, err := NewProvider("")
		assert.Error(t, err)
	})

	t.Run("OptionsApply", func(t *testing.T) {
		provider, err := NewProvider("key", WithModel("custom-model"), WithBaseURL("http://localhost:1234/v1"))
		require.NoError(t, err)
		assert.Equal(t, "custom-model", provider.GetModel())
		assert.Equal(t, "http://localhost:1234/v1", provider.baseURL)
	})

	t.Run("CloneWithModel", func(t *testing.T) {
		provider, err := NewProvider("key", WithModel("base-model"))
		require.NoError(t, err)

		clone := provider.CloneWithModel("other-model")
		assert.Equal(t, "other-model", clone.GetModel())
		assert.Equal(t, "base-model", provider.GetModel())
	})
}

func TestStreamCompletion(t *testing.T) {
	t.Run("StreamsContentAndFinish", func(t *testing.T) {
		server := sseServer(t, []string{
			`{"choices":[{"delta":{"role":"assistant","content":"Hel"}}]}`,
			`{"choices":[{"delta":{"content":"lo"}}]}`,
			`{"choices":[{"delta":{},"finish_reason":"stop"}]}`,
		})
		defer server.Close()

		provider, err := NewProvider("test-key", WithBaseURL(server.URL))
		require.NoError(t, err)

		stream, err := provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
		require.NoError(t, err)

		content, finished := collectChunks(t, stream)
		assert.Equal(t, "Hello", content)
		assert.True(t, finished)
	})

	t.Run("SeparatesThinkingContent", func(t *testing.T) {
		server := sseServer(t, []string{
			`{"choices":[{"delta":{"content":"<thinking>hmm</thinking>answer"}}]}`,
		})
		defer server.Close()

		provider, err := NewProvider("test-key", WithBaseURL(server.URL))
		require.NoError(t, err)

		stream, err := provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
		require.NoError(t, err)

		var thinking, message string
		for chunk := range stream {
			require.NoError(t, chunk.Error)
			switch chunk.Type {
			case llm.ContentTypeThinking:
				thinking += chunk.Content
			default:
				message += chunk.Content
			}
		}
		assert.Equal(t, "hmm", thinking)
		assert.Equal(t, "answer", message)
	})

	t.Run("SkipsMalformedChunksAndComments", func(t *testing.T) {
		server := sseServer(t, []string{
			`{garbage`,
			`{"choices":[{"delta":{"content":"ok"}}]}`,
		})
		defer server.Close()

		provider, err := NewProvider("test-key", WithBaseURL(server.URL))
		require.NoError(t, err)

		stream, err := provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
		require.NoError(t, err)

		content, _ := collectChunks(t, stream)
		assert.Equal(t, "ok", content)
	})

	t.Run("CancellationReleasesStreamingGoroutine", func(t *testing.T) {
		// A consumer that stops receiving after cancellation must not strand
		// the streaming goroutine (and its response body) behind a full
		// channel buffer.
		payloads := make([]string, 50)
		for i := range payloads {
			payloads[i] = `{"choices":[{"delta":{"content":"chunk"}}]}`
		}
		server := sseServer(t, payloads)
		defer server.Close()

		provider, err := NewProvider("test-key", WithBaseURL(server.URL))
		require.NoError(t, err)

		before := runtime.NumGoroutine()
		for i := 0; i < 20; i++ {
			ctx, cancel := context.WithCancel(context.Background())
			stream, streamErr := provider.StreamCompletion(ctx, []*types.Message{types.NewUserMessage("hi")})
			require.NoError(t, streamErr)
			<-stream
			cancel()
		}

		assert.Eventually(t, func() bool {
			return runtime.NumGoroutine() <= before+2
		}, 2*time.Second, 10*time.Millisecond, "streaming goroutines did not unwind after cancellation")
	})

	t.Run("NonOKStatusIsError", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, `{"error": "rate limited"}`, http.StatusTooManyRequests)
		}))
		defer server.Close()

		provider, err := NewProvider("test-key", WithBaseURL(server.URL))
		require.NoError(t, err)

		_, err = provider.StreamCompletion(context.Background(), []*types.Message{types.NewUserMessage("hi")})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "429")
	})
}

func TestComplete(t *testing.T) {
	server := sseServer(t, []string{
		`{"choices":[{"delta":{"role":"assistant","content":"full "}}]}`,
		`{"choices":[{"delta":{"content":"response"}}]}`,
	})
	defer server.Close()

	provider, err := NewProvider("test-key", WithBaseURL(server.URL))
	require.NoError(t, err)

	msg, err := provider.Complete(context.Background(), []*types.Message{types.NewUserMessage("hi")})
	require.NoError(t, err)
	assert.Equal(t, types.RoleAssistant, msg.Role)
	assert.Equal(t, "full response", msg.Content)
}
