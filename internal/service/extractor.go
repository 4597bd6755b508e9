package service

import (
	"context"
	"errors"
	"fmt"

	"evinburada/internal/config"
	"evinburada/internal/gazetteer"
	"evinburada/internal/logger"
	"evinburada/internal/model"
)

var (
	ErrExtractionFailed  = errors.New("intent extraction failed")
	ErrTurnInFlight      = errors.New("a turn is already in progress for this session")
	ErrSessionNotFound   = errors.New("session not found")
	ErrNoPendingLocation = errors.New("no location request is pending")
	ErrEmptyMessage      = errors.New("message is empty")
	ErrListingNotFound   = errors.New("listing not found")
	ErrInvalidLocation   = errors.New("coordinates are out of range")
)

// IntentExtractor turns one utterance into an Intent. Implementations must be
// safe for concurrent use across sessions.
type IntentExtractor interface {
	// Interpret reads utterance in the context of the prior history.
	Interpret(ctx context.Context, utterance string, history []model.ChatMessage) (*model.Intent, error)

	// ResolveLocation answers a pending location request with device coordinates.
	ResolveLocation(ctx context.Context, coords model.Coordinates) (*model.Intent, error)
}

// NewExtractor picks the backend named by cfg.Extractor.Backend. The hosted
// backend falls back to the local one when no API key is configured.
func NewExtractor(cfg *config.Config, g *gazetteer.Gazetteer, log logger.Logger) (IntentExtractor, error) {
	local := NewLocalExtractor(g)

	switch cfg.Extractor.Backend {
	case config.ExtractorLocal:
		log.Info("using local intent extractor", nil)
		return local, nil
	case config.ExtractorLLM:
		if !cfg.OpenAI.Enabled {
			log.Warn("OpenAI is not enabled, falling back to local intent extractor", map[string]interface{}{
				"hint": "set OPENAI_API_KEY to enable the hosted backend",
			})
			return local, nil
		}
		llm, err := NewLLMExtractor(&cfg.OpenAI, g, log)
		if err != nil {
			return nil, fmt.Errorf("failed to create LLM extractor: %w", err)
		}
		log.Info("using LLM intent extractor", map[string]interface{}{
			"api_base": cfg.OpenAI.APIBase,
			"model":    cfg.OpenAI.ChatModel,
		})
		return llm, nil
	default:
		return nil, fmt.Errorf("unknown extractor backend %q", cfg.Extractor.Backend)
	}
}

// resolveNearest is shared by both backends: the hosted model has no better
// knowledge of district boundaries than the gazetteer.
func resolveNearest(g *gazetteer.Gazetteer, coords model.Coordinates) (*model.Intent, error) {
	place, _, ok := g.NearestDistrict(coords)
	if !ok {
		return nil, fmt.Errorf("%w: no district known near %.4f,%.4f", ErrExtractionFailed, coords.Latitude, coords.Longitude)
	}

	province, district := place.Province, place.District
	filters := &model.SearchFilters{Province: &province, District: &district}
	return &model.Intent{
		Kind:    model.IntentFilterUpdate,
		Reply:   fmt.Sprintf("Bulunduğun konumu analiz ettim. %s bölgesine yakın olduğun için buradaki ilanları listeliyorum.", district),
		Filters: filters,
		Calls:   []model.FunctionCall{{Name: model.FuncSearchHomes, Args: filters}},
	}, nil
}
