package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"evinburada/internal/config"
	"evinburada/internal/gazetteer"
	"evinburada/internal/logger"
	"evinburada/internal/model"

	openai "github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"
	"github.com/openai/openai-go/v2/shared"
)

const llmSystemPrompt = `Sen 'Evinburada' adlı emlak platformunun akıllı asistanısın.
Görevin kullanıcıya hayalindeki evi bulması için rehberlik etmek.
Kullanıcıdan şu bilgileri nazikçe topla:
1. Hangi il, ilçe veya mahalle? (Örn: Beylikdüzü, Moda)
2. Kiralık mı, Satılık mı, Günlük Kiralık mı?
3. Oda sayısı (Örn: 2+1)?
4. Site içerisinde mi istiyor?
5. Bütçesi nedir?

Fiyat kuralları:
- "X'e kadar", "en fazla X", "X altı" => maxPrice = X
- "X civarı", "yaklaşık X" => minPrice = X*0.9, maxPrice = X*1.1 (tam sayıya yuvarla)
- "X ile Y arası" => minPrice = X, maxPrice = Y
- "milyon" 1.000.000, "bin" 1.000 ile çarpılır. Fiyatlar TL cinsinden tam sayıdır.

Kullanıcı yeni bir kriter verdiğinde yalnızca yeni veya değişen alanlarla 'search_homes' fonksiyonunu çağır.
Kullanıcı yakınındaki ilanları isterse 'request_location' fonksiyonunu çağır.
Kriter yoksa sohbeti sürdür. Çok resmi olma, yardımsever bir emlak danışmanı gibi davran.
Dilin mutlaka Türkçe olmalı.`

const replyFromSearch = "Kriterlerinize uygun ilanları listeliyorum."

// LLMExtractor interprets utterances with an OpenAI-compatible chat model
// through function calling.
type LLMExtractor struct {
	client      openai.Client
	model       shared.ChatModel
	temperature float64
	gazetteer   *gazetteer.Gazetteer
	log         logger.Logger
	tools       []openai.ChatCompletionToolUnionParam
}

// NewLLMExtractor creates a hosted-model extractor. Extra request options are
// appended after the ones derived from cfg.
func NewLLMExtractor(cfg *config.OpenAIConfig, g *gazetteer.Gazetteer, log logger.Logger, opts ...option.RequestOption) (*LLMExtractor, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is not configured")
	}

	base := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithBaseURL(cfg.APIBase),
	}
	if cfg.Timeout > 0 {
		base = append(base, option.WithRequestTimeout(time.Duration(cfg.Timeout)*time.Second))
	}

	return &LLMExtractor{
		client:      openai.NewClient(append(base, opts...)...),
		model:       shared.ChatModel(cfg.ChatModel),
		temperature: cfg.ChatTemperature,
		gazetteer:   g,
		log:         log,
		tools: []openai.ChatCompletionToolUnionParam{
			openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
				Name:        model.FuncSearchHomes,
				Description: openai.String("Sohbette toplanan filtreleri birleştirip ev araması başlatır."),
				Parameters:  openai.FunctionParameters(searchHomesSchema),
			}),
			openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
				Name:        model.FuncRequestLocation,
				Description: openai.String("Kullanıcının yakınındaki ilanlar için cihaz konumunu ister."),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			}),
		},
	}, nil
}

// Interpret sends the full history plus utterance and maps the reply to an
// Intent. Any transport or decoding problem is reported as ErrExtractionFailed.
func (e *LLMExtractor) Interpret(ctx context.Context, utterance string, history []model.ChatMessage) (*model.Intent, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, len(history)+2)
	messages = append(messages, openai.SystemMessage(llmSystemPrompt))
	for _, m := range history {
		switch m.Role {
		case model.RoleUser:
			messages = append(messages, openai.UserMessage(m.Content))
		case model.RoleModel:
			messages = append(messages, openai.AssistantMessage(m.Content))
		}
	}
	messages = append(messages, openai.UserMessage(utterance))

	start := time.Now()
	completion, err := e.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Messages:    messages,
		Model:       e.model,
		Tools:       e.tools,
		Temperature: openai.Float(e.temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: chat completion: %v", ErrExtractionFailed, err)
	}
	if len(completion.Choices) == 0 {
		return nil, fmt.Errorf("%w: no choices in response", ErrExtractionFailed)
	}

	msg := completion.Choices[0].Message
	e.log.Debug("chat completion received", map[string]interface{}{
		"tool_calls": len(msg.ToolCalls),
		"took_ms":    time.Since(start).Milliseconds(),
	})

	intent := &model.Intent{Kind: model.IntentPlainReply, Reply: strings.TrimSpace(msg.Content)}
	for _, call := range msg.ToolCalls {
		switch call.Function.Name {
		case model.FuncSearchHomes:
			// at most one filter update per turn
			if intent.Filters != nil {
				continue
			}
			filters, err := decodeSearchHomesArgs(call.Function.Arguments)
			if err != nil {
				return nil, fmt.Errorf("%w: %s: %v", ErrExtractionFailed, model.FuncSearchHomes, err)
			}
			intent.Filters = filters
			intent.Calls = append(intent.Calls, model.FunctionCall{Name: model.FuncSearchHomes, Args: filters})
		case model.FuncRequestLocation:
			intent.Calls = append(intent.Calls, model.FunctionCall{Name: model.FuncRequestLocation})
		default:
			e.log.Warn("ignoring unknown tool call", map[string]interface{}{"name": call.Function.Name})
		}
	}

	switch {
	case intent.Filters != nil:
		intent.Kind = model.IntentFilterUpdate
		if intent.Reply == "" {
			intent.Reply = replyFromSearch
		}
	case len(intent.Calls) > 0:
		intent.Kind = model.IntentLocationRequest
		if intent.Reply == "" {
			intent.Reply = replyLocationRequest
		}
	case intent.Reply == "":
		return nil, fmt.Errorf("%w: empty reply", ErrExtractionFailed)
	}
	return intent, nil
}

// ResolveLocation maps coordinates to the nearest known district without a
// round trip to the model.
func (e *LLMExtractor) ResolveLocation(ctx context.Context, coords model.Coordinates) (*model.Intent, error) {
	return resolveNearest(e.gazetteer, coords)
}
