package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"evinburada/internal/catalog"
	"evinburada/internal/logger"
	"evinburada/internal/metrics"
	"evinburada/internal/model"

	"github.com/google/uuid"
)

const (
	greeting           = "Merhaba! Ben Evinburada asistanıyım. Nasıl bir ev arıyorsunuz? Semt, oda sayısı, bütçe veya kiralık/satılık tercihinizi yazabilirsiniz."
	replyRetry         = "Üzgünüm, şu an anlayamadım. Tekrar dener misiniz?"
	replyLocationUnset = "Konumunuza erişemedim. Hangi semtte ev aradığınızı yazabilir misiniz?"
)

// TurnEventCallback is called for intermediate turn events
type TurnEventCallback func(event string, data any) error

// ChatService runs conversational turns: it serialises turns per session,
// folds extracted intents into the session filters and re-runs the matcher.
type ChatService struct {
	extractor   IntentExtractor
	backend     string
	store       SessionStore
	guard       TurnGuard
	catalog     *catalog.Catalog
	recorder    Recorder
	log         logger.Logger
	defaultSort model.SortOrder
	turnTimeout time.Duration
	now         func() time.Time
}

// ChatOption configures optional ChatService collaborators.
type ChatOption func(*ChatService)

// WithRecorder logs every completed turn to r.
func WithRecorder(r Recorder) ChatOption {
	return func(s *ChatService) { s.recorder = r }
}

// WithTurnTimeout bounds how long one extraction may take.
func WithTurnTimeout(d time.Duration) ChatOption {
	return func(s *ChatService) { s.turnTimeout = d }
}

// WithDefaultSort sets the order used when a session has none.
func WithDefaultSort(order model.SortOrder) ChatOption {
	return func(s *ChatService) { s.defaultSort = order }
}

// WithBackendName labels metrics with the extractor backend.
func WithBackendName(name string) ChatOption {
	return func(s *ChatService) { s.backend = name }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ChatOption {
	return func(s *ChatService) { s.now = now }
}

// NewChatService creates a new chat service
func NewChatService(extractor IntentExtractor, store SessionStore, guard TurnGuard, cat *catalog.Catalog, log logger.Logger, opts ...ChatOption) *ChatService {
	s := &ChatService{
		extractor:   extractor,
		backend:     "local",
		store:       store,
		guard:       guard,
		catalog:     cat,
		log:         log,
		defaultSort: model.SortNewest,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a new conversation. The first result list is the whole catalog.
func (s *ChatService) Start(ctx context.Context) (*model.TurnResponse, error) {
	startTime := time.Now()
	now := s.now()

	sess := &model.Session{
		ID:        uuid.NewString(),
		Sort:      s.defaultSort,
		CreatedAt: now,
		UpdatedAt: now,
	}
	sess.Append(model.RoleModel, greeting, now)

	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}
	s.log.Info("session started", map[string]interface{}{"session_id": sess.ID})

	return s.respond(sess, greeting, nil, false, startTime), nil
}

// Get returns the current state of a session.
func (s *ChatService) Get(ctx context.Context, id string) (*model.Session, error) {
	return s.store.Get(ctx, id)
}

// Send runs one turn. See SendStream.
func (s *ChatService) Send(ctx context.Context, id, utterance, sort string) (*model.TurnResponse, error) {
	return s.SendStream(ctx, id, utterance, sort, nil)
}

// SendStream runs one turn and reports the extracted intent through callback
// before matching. An extraction failure is not an error: the turn completes
// with filters unchanged and Failed set.
func (s *ChatService) SendStream(ctx context.Context, id, utterance, sort string, callback TurnEventCallback) (*model.TurnResponse, error) {
	utterance = strings.TrimSpace(utterance)
	if utterance == "" {
		return nil, ErrEmptyMessage
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	startTime := time.Now()
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if sort != "" {
		sess.Sort = model.ParseSortOrder(sort, sess.Sort)
	}

	prior := sess.History
	sess.Append(model.RoleUser, utterance, s.now())

	extractCtx, cancel := s.extractContext(ctx)
	intent, extractErr := s.extractor.Interpret(extractCtx, utterance, prior)
	cancel()

	reply, failed := s.apply(sess, intent, extractErr)
	if callback != nil && !failed {
		if err := callback("intent", intent); err != nil {
			return nil, err
		}
	}

	return s.finishTurn(ctx, sess, utterance, intent, reply, failed, startTime)
}

// ProvideLocation answers the pending location request of a session. A nil
// coordinate pair or Denied covers refusal and client-side timeouts.
func (s *ChatService) ProvideLocation(ctx context.Context, id string, req *model.LocationRequest) (*model.TurnResponse, error) {
	denied := req.Denied || req.Latitude == nil || req.Longitude == nil
	var coords model.Coordinates
	if !denied {
		coords = model.Coordinates{Latitude: *req.Latitude, Longitude: *req.Longitude}
		if coords.Latitude < -90 || coords.Latitude > 90 || coords.Longitude < -180 || coords.Longitude > 180 {
			return nil, ErrInvalidLocation
		}
	}

	release, err := s.acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	defer release()

	startTime := time.Now()
	sess, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !sess.PendingLocation {
		return nil, ErrNoPendingLocation
	}

	if denied {
		sess.PendingLocation = false
		sess.Append(model.RoleModel, replyLocationUnset, s.now())
		return s.finishTurn(ctx, sess, "", nil, replyLocationUnset, false, startTime)
	}

	utterance := fmt.Sprintf("Konumum: enlem: %.5f, boylam: %.5f", coords.Latitude, coords.Longitude)
	sess.Append(model.RoleUser, utterance, s.now())

	extractCtx, cancel := s.extractContext(ctx)
	intent, extractErr := s.extractor.ResolveLocation(extractCtx, coords)
	cancel()

	reply, failed := s.apply(sess, intent, extractErr)
	if failed {
		sess.PendingLocation = false
	}
	return s.finishTurn(ctx, sess, utterance, intent, reply, failed, startTime)
}

// apply folds the outcome of an extraction into sess and appends the model
// reply. It reports the reply and whether extraction failed.
func (s *ChatService) apply(sess *model.Session, intent *model.Intent, extractErr error) (string, bool) {
	now := s.now()
	if extractErr != nil || intent == nil {
		metrics.ExtractionFailures.WithLabelValues(s.backend).Inc()
		s.log.WithError(extractErr).Warn("intent extraction failed", map[string]interface{}{
			"session_id": sess.ID,
			"timeout":    errors.Is(extractErr, context.DeadlineExceeded),
		})
		sess.Append(model.RoleModel, replyRetry, now)
		return replyRetry, true
	}

	if intent.Reset {
		sess.Filters = model.SearchFilters{}
	}
	if intent.Filters != nil {
		sess.Filters.Merge(intent.Filters)
	}
	sess.PendingLocation = requestsLocation(intent)

	reply := intent.Reply
	if reply == "" {
		reply = replyCollecting
	}
	sess.Append(model.RoleModel, reply, now)
	return reply, false
}

func (s *ChatService) finishTurn(ctx context.Context, sess *model.Session, utterance string, intent *model.Intent, reply string, failed bool, startTime time.Time) (*model.TurnResponse, error) {
	sess.UpdatedAt = s.now()
	if err := s.store.Save(ctx, sess); err != nil {
		return nil, err
	}

	resp := s.respond(sess, reply, intent, failed, startTime)

	kind := model.IntentPlainReply
	if intent != nil {
		kind = intent.Kind
	}
	if failed {
		kind = "failed"
	}
	metrics.TurnsTotal.WithLabelValues(string(kind)).Inc()
	metrics.TurnDuration.WithLabelValues(s.backend).Observe(time.Since(startTime).Seconds())

	s.log.Debug("turn completed", map[string]interface{}{
		"session_id": sess.ID,
		"intent":     kind,
		"total":      resp.Total,
		"took_ms":    resp.Took,
	})

	if s.recorder != nil && utterance != "" {
		rec := &model.TurnRecord{
			SessionID:      sess.ID,
			Utterance:      utterance,
			Intent:         kind,
			Filters:        resp.Filters,
			ResultCount:    resp.Total,
			ListingIDs:     listingIDs(resp.Results),
			Failed:         failed,
			ResponseTimeMs: int(resp.Took),
		}
		// Log turn (non-blocking)
		go func() {
			if err := s.recorder.LogTurn(context.Background(), rec); err != nil {
				s.log.WithError(err).Warn("failed to record turn", map[string]interface{}{"session_id": rec.SessionID})
			}
		}()
	}

	return resp, nil
}

func (s *ChatService) respond(sess *model.Session, reply string, intent *model.Intent, failed bool, startTime time.Time) *model.TurnResponse {
	filters := sess.Filters.Clone()
	matched := Match(s.catalog.All(), filters, sess.Sort)
	metrics.MatchResults.Observe(float64(len(matched)))

	return &model.TurnResponse{
		SessionID:       sess.ID,
		Reply:           reply,
		Intent:          intent,
		Filters:         filters,
		Results:         Explain(matched, filters, s.now()),
		Total:           len(matched),
		PendingLocation: sess.PendingLocation,
		Failed:          failed,
		Took:            time.Since(startTime).Milliseconds(),
	}
}

func (s *ChatService) acquire(ctx context.Context, id string) (func(), error) {
	token, ok, err := s.guard.Acquire(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		metrics.TurnsRejected.Inc()
		return nil, ErrTurnInFlight
	}
	return func() {
		if err := s.guard.Release(context.WithoutCancel(ctx), id, token); err != nil {
			s.log.WithError(err).Warn("failed to release turn lock", map[string]interface{}{"session_id": id})
		}
	}, nil
}

func (s *ChatService) extractContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.turnTimeout > 0 {
		return context.WithTimeout(ctx, s.turnTimeout)
	}
	return context.WithCancel(ctx)
}

func requestsLocation(intent *model.Intent) bool {
	if intent.Kind == model.IntentLocationRequest {
		return true
	}
	for _, c := range intent.Calls {
		if c.Name == model.FuncRequestLocation {
			return true
		}
	}
	return false
}

func listingIDs(results []model.ListingSearchResult) []string {
	ids := make([]string, len(results))
	for i, r := range results {
		ids[i] = r.ID
	}
	return ids
}
