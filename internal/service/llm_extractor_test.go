package service

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"evinburada/internal/config"
	"evinburada/internal/gazetteer"
	"evinburada/internal/logger"
	"evinburada/internal/model"

	"github.com/openai/openai-go/v2/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type toolCallFixture struct {
	name string
	args string
}

func completionBody(content string, calls ...toolCallFixture) string {
	toolCalls := make([]map[string]interface{}, 0, len(calls))
	for i, c := range calls {
		toolCalls = append(toolCalls, map[string]interface{}{
			"id":   "call_" + string(rune('a'+i)),
			"type": "function",
			"function": map[string]interface{}{
				"name":      c.name,
				"arguments": c.args,
			},
		})
	}
	message := map[string]interface{}{
		"role":    "assistant",
		"content": content,
	}
	if len(toolCalls) > 0 {
		message["tool_calls"] = toolCalls
	}
	body, _ := json.Marshal(map[string]interface{}{
		"id":      "chatcmpl-test",
		"object":  "chat.completion",
		"created": 1700000000,
		"model":   "test-model",
		"choices": []map[string]interface{}{
			{"index": 0, "finish_reason": "stop", "message": message},
		},
	})
	return string(body)
}

func newTestLLMExtractor(t *testing.T, handler http.HandlerFunc) *LLMExtractor {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := &config.OpenAIConfig{
		APIKey:          "test-key",
		APIBase:         srv.URL,
		ChatModel:       "test-model",
		ChatTemperature: 0.2,
		Enabled:         true,
	}
	e, err := NewLLMExtractor(cfg, gazetteer.Default(), logger.NewTestLogger(t), option.WithMaxRetries(0))
	require.NoError(t, err)
	return e
}

func respondWith(body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}
}

func TestLLMExtractor_SearchHomes(t *testing.T) {
	var captured map[string]interface{}
	e := newTestLLMExtractor(t, func(w http.ResponseWriter, r *http.Request) {
		raw, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(raw, &captured)
		respondWith(completionBody("", toolCallFixture{
			name: model.FuncSearchHomes,
			args: `{"district":"Kadıköy","dealType":"Satılık","minPrice":3600000,"maxPrice":4400000}`,
		}))(w, r)
	})

	history := []model.ChatMessage{
		{Role: model.RoleModel, Content: "Merhaba!"},
		{Role: model.RoleUser, Content: "Kadıköy'de ev"},
	}
	intent, err := e.Interpret(context.Background(), "4 milyon civarı satılık", history)
	require.NoError(t, err)

	assert.Equal(t, model.IntentFilterUpdate, intent.Kind)
	assert.Equal(t, replyFromSearch, intent.Reply)
	require.NotNil(t, intent.Filters)
	assert.Equal(t, "Kadıköy", *intent.Filters.District)
	assert.Equal(t, model.DealSale, *intent.Filters.DealType)
	assert.Equal(t, int64(3600000), *intent.Filters.MinPrice)
	assert.Equal(t, int64(4400000), *intent.Filters.MaxPrice)

	// system prompt, two history messages and the utterance
	messages, ok := captured["messages"].([]interface{})
	require.True(t, ok)
	assert.Len(t, messages, 4)
	tools, ok := captured["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 2)
}

func TestLLMExtractor_RequestLocation(t *testing.T) {
	e := newTestLLMExtractor(t, respondWith(completionBody("Konumunuzu paylaşır mısınız?", toolCallFixture{
		name: model.FuncRequestLocation,
		args: `{}`,
	})))

	intent, err := e.Interpret(context.Background(), "yakınımdaki evler", nil)
	require.NoError(t, err)
	assert.Equal(t, model.IntentLocationRequest, intent.Kind)
	assert.Equal(t, "Konumunuzu paylaşır mısınız?", intent.Reply)
	assert.Nil(t, intent.Filters)
}

func TestLLMExtractor_PlainReply(t *testing.T) {
	e := newTestLLMExtractor(t, respondWith(completionBody("Hangi semtte arıyorsunuz?")))

	intent, err := e.Interpret(context.Background(), "ev arıyorum", nil)
	require.NoError(t, err)
	assert.Equal(t, model.IntentPlainReply, intent.Kind)
	assert.Equal(t, "Hangi semtte arıyorsunuz?", intent.Reply)
	assert.Empty(t, intent.Calls)
}

func TestLLMExtractor_Failures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = io.WriteString(w, `{"error":{"message":"boom"}}`)
			},
		},
		{
			name: "invalid deal type",
			handler: respondWith(completionBody("", toolCallFixture{
				name: model.FuncSearchHomes,
				args: `{"dealType":"Devren"}`,
			})),
		},
		{
			name: "inverted price bounds",
			handler: respondWith(completionBody("", toolCallFixture{
				name: model.FuncSearchHomes,
				args: `{"minPrice":5000000,"maxPrice":1000000}`,
			})),
		},
		{
			name:    "empty reply",
			handler: respondWith(completionBody("")),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newTestLLMExtractor(t, tt.handler)
			intent, err := e.Interpret(context.Background(), "kiralık", nil)
			assert.Nil(t, intent)
			assert.ErrorIs(t, err, ErrExtractionFailed)
		})
	}
}

func TestNewLLMExtractor_RequiresKey(t *testing.T) {
	_, err := NewLLMExtractor(&config.OpenAIConfig{}, gazetteer.Default(), logger.NewNoOpLogger())
	assert.Error(t, err)
}

func TestDecodeSearchHomesArgs(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		check   func(t *testing.T, f *model.SearchFilters)
	}{
		{
			name: "plain object",
			raw:  `{"roomCount":"2+1","inSite":true}`,
			check: func(t *testing.T, f *model.SearchFilters) {
				assert.Equal(t, "2+1", *f.RoomCount)
				assert.True(t, *f.InSite)
			},
		},
		{
			name: "markdown fenced",
			raw:  "```json\n{\"locations\": [\"Moda\", \"Bebek\"]}\n```",
			check: func(t *testing.T, f *model.SearchFilters) {
				assert.Equal(t, []string{"Moda", "Bebek"}, f.Locations)
			},
		},
		{
			name: "empty arguments",
			raw:  "",
			check: func(t *testing.T, f *model.SearchFilters) {
				assert.True(t, f.IsEmpty())
			},
		},
		{name: "unknown field", raw: `{"color":"blue"}`, wantErr: true},
		{name: "bad room count", raw: `{"roomCount":"iki"}`, wantErr: true},
		{name: "fractional price", raw: `{"maxPrice":1.5}`, wantErr: true},
		{name: "not json", raw: `kiralık daire`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := decodeSearchHomesArgs(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, f)
		})
	}
}
