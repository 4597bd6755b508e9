package service

import (
	"context"
	"time"

	"evinburada/internal/catalog"
	"evinburada/internal/logger"
	"evinburada/internal/metrics"
	"evinburada/internal/model"
)

// Recorder receives turn and feedback records. Recording is best effort and
// never fails a request.
type Recorder interface {
	LogTurn(ctx context.Context, rec *model.TurnRecord) error
	LogFeedback(ctx context.Context, sessionID, listingID, action string) error
}

// SearchService handles the stateless search paths: manual filter edits,
// listing detail and feedback.
type SearchService struct {
	catalog     *catalog.Catalog
	recorder    Recorder
	log         logger.Logger
	defaultSort model.SortOrder
	now         func() time.Time
}

// NewSearchService creates a new search service. recorder may be nil.
func NewSearchService(cat *catalog.Catalog, recorder Recorder, log logger.Logger, defaultSort model.SortOrder) *SearchService {
	return &SearchService{
		catalog:     cat,
		recorder:    recorder,
		log:         log,
		defaultSort: defaultSort,
		now:         time.Now,
	}
}

// Search applies req.Filters to the catalog and returns the requested page.
// Options must already be normalised by the caller.
func (s *SearchService) Search(ctx context.Context, req *model.SearchRequest) (*model.SearchResponse, error) {
	startTime := time.Now()

	filters := req.Filters.Clone()
	order := model.ParseSortOrder(req.Sort, s.defaultSort)

	options := req.Options
	if options == nil {
		options = &model.SearchOptions{Limit: 20}
	}

	matched := Match(s.catalog.All(), filters, order)
	metrics.MatchResults.Observe(float64(len(matched)))

	total := len(matched)
	page := paginate(matched, options.Offset, options.Limit)

	pageNum := 1
	if options.Limit > 0 {
		pageNum = options.Offset/options.Limit + 1
	}

	return &model.SearchResponse{
		Results:  Explain(page, filters, s.now()),
		Total:    total,
		Page:     pageNum,
		PageSize: options.Limit,
		HasMore:  options.Offset+len(page) < total,
		Filters:  filters,
		Sort:     order,
		Took:     time.Since(startTime).Milliseconds(),
	}, nil
}

// GetListing retrieves a single listing by ID
func (s *SearchService) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l, ok := s.catalog.Get(id)
	if !ok {
		return nil, ErrListingNotFound
	}
	return &l, nil
}

// LogFeedback logs user feedback/action
func (s *SearchService) LogFeedback(ctx context.Context, req *model.FeedbackRequest) error {
	if _, ok := s.catalog.Get(req.ListingID); !ok {
		return ErrListingNotFound
	}

	metrics.FeedbackActions.WithLabelValues(req.Action).Inc()
	s.log.Info("feedback received", map[string]interface{}{
		"session_id": req.SessionID,
		"listing_id": req.ListingID,
		"action":     req.Action,
	})

	if s.recorder == nil {
		return nil
	}
	if err := s.recorder.LogFeedback(ctx, req.SessionID, req.ListingID, req.Action); err != nil {
		s.log.WithError(err).Warn("failed to record feedback", nil)
	}
	return nil
}

func paginate(listings []model.Listing, offset, limit int) []model.Listing {
	if offset < 0 {
		offset = 0
	}
	if offset >= len(listings) {
		return []model.Listing{}
	}
	end := len(listings)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return listings[offset:end]
}
