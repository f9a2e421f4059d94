package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"nmsportal/backend/libs/derive"
	"nmsportal/backend/services/portal-service/internal/models"
)

var (
	// ErrTrackUnavailable is returned when a session has no usable GPS position channels.
	ErrTrackUnavailable = errors.New("portal: track unavailable")
	// ErrUnknownChannel is returned when a requested channel is not in the derived table.
	ErrUnknownChannel = errors.New("portal: unknown channel")
	// ErrHistoryUnavailable is returned when no summary database is configured.
	ErrHistoryUnavailable = errors.New("portal: history unavailable")
)

// SessionStore lists and loads session exports.
type SessionStore interface {
	List() ([]models.SessionFile, error)
	Stat(name string) (models.SessionFile, error)
	Load(name string) (*derive.Table, error)
}

// SummaryRepository persists summaries.
type SummaryRepository interface {
	Upsert(ctx context.Context, s *models.SessionSummary) error
	History(ctx context.Context, file string, limit int) ([]models.SessionSummary, error)
}

// SummaryCache keeps recent summaries close at hand.
type SummaryCache interface {
	Get(ctx context.Context, file, units string, modified time.Time) (*models.SessionSummary, error)
	Save(ctx context.Context, s *models.SessionSummary) error
}

// RederiveResult is the outcome for one file of a bulk re-derivation.
type RederiveResult struct {
	File    string                 `json:"file"`
	Summary *models.SessionSummary `json:"summary,omitempty"`
	Error   string                 `json:"error,omitempty"`
}

// PortalService derives session files on demand and records their summaries.
type PortalService struct {
	store   SessionStore
	repo    SummaryRepository
	cache   SummaryCache
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

// NewPortalService returns service instance. repo and cache may be nil.
func NewPortalService(store SessionStore, repo SummaryRepository, cache SummaryCache, workers int, logger *zap.Logger) *PortalService {
	if workers <= 0 {
		workers = 1
	}
	return &PortalService{
		store:   store,
		repo:    repo,
		cache:   cache,
		workers: workers,
		logger:  logger,
		now:     time.Now,
	}
}

// ListSessions returns the available session files.
func (s *PortalService) ListSessions() ([]models.SessionFile, error) {
	return s.store.List()
}

// Derive loads a session file and builds its augmented table.
func (s *PortalService) Derive(ctx context.Context, name string, units derive.UnitSystem) (*derive.Session, models.SessionFile, error) {
	if err := ctx.Err(); err != nil {
		return nil, models.SessionFile{}, err
	}
	file, err := s.store.Stat(name)
	if err != nil {
		return nil, models.SessionFile{}, err
	}
	raw, err := s.store.Load(name)
	if err != nil {
		return nil, file, fmt.Errorf("load %s: %w", name, err)
	}
	session, err := derive.Build(raw, units)
	if err != nil {
		return nil, file, fmt.Errorf("derive %s: %w", name, err)
	}
	return session, file, nil
}

// Summary returns the summary of a session, from cache when the file is unchanged.
// Cache and database failures are logged and do not fail the request.
func (s *PortalService) Summary(ctx context.Context, name string, units derive.UnitSystem) (*models.SessionSummary, error) {
	if s.cache != nil {
		if file, err := s.store.Stat(name); err == nil {
			if cached, err := s.cache.Get(ctx, file.Name, string(units), file.Modified); err == nil {
				return cached, nil
			}
		}
	}

	session, file, err := s.Derive(ctx, name, units)
	if err != nil {
		return nil, err
	}
	summary := s.summarize(file, session)
	s.record(ctx, summary)
	return summary, nil
}

// Table returns the augmented table, optionally restricted to channels. Time is always kept first.
func (s *PortalService) Table(ctx context.Context, name string, units derive.UnitSystem, channels []string) (*derive.Table, error) {
	session, _, err := s.Derive(ctx, name, units)
	if err != nil {
		return nil, err
	}
	if len(channels) == 0 {
		return session.Table, nil
	}

	selected := []string{derive.ChannelTime}
	seen := map[string]bool{derive.ChannelTime: true}
	for _, ch := range channels {
		if seen[ch] {
			continue
		}
		if !session.Table.Has(ch) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownChannel, ch)
		}
		seen[ch] = true
		selected = append(selected, ch)
	}
	return session.Table.Select(selected...)
}

// Track returns the GPS trace of a session.
func (s *PortalService) Track(ctx context.Context, name string, units derive.UnitSystem) (derive.Track, error) {
	session, _, err := s.Derive(ctx, name, units)
	if err != nil {
		return derive.Track{}, err
	}
	track, ok := session.Track()
	if !ok {
		return derive.Track{}, ErrTrackUnavailable
	}
	return track, nil
}

// Rederive derives every session file in parallel and records the summaries.
// A failing file is reported in its result and does not stop the others.
func (s *PortalService) Rederive(ctx context.Context, units derive.UnitSystem) ([]RederiveResult, error) {
	if _, err := units.SpeedLabel(); err != nil {
		return nil, err
	}
	files, err := s.store.List()
	if err != nil {
		return nil, err
	}

	results := make([]RederiveResult, len(files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, f := range files {
		i, name := i, f.Name
		g.Go(func() error {
			results[i].File = name
			session, file, err := s.Derive(gctx, name, units)
			if err != nil {
				s.logger.Warn("rederive failed", zap.String("file", name), zap.Error(err))
				results[i].Error = err.Error()
				return nil
			}
			summary := s.summarize(file, session)
			s.record(gctx, summary)
			results[i].Summary = summary
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.logger.Info("rederive finished", zap.Int("files", len(files)), zap.String("units", string(units)))
	return results, nil
}

// History returns persisted summaries of a file, newest first.
func (s *PortalService) History(ctx context.Context, name string, limit int) ([]models.SessionSummary, error) {
	if s.repo == nil {
		return nil, ErrHistoryUnavailable
	}
	return s.repo.History(ctx, name, limit)
}

func (s *PortalService) summarize(file models.SessionFile, session *derive.Session) *models.SessionSummary {
	return &models.SessionSummary{
		File:            file.Name,
		Units:           string(session.Units),
		FileModified:    file.Modified,
		Samples:         session.Table.Len(),
		DurationS:       duration(session.Table),
		Summary:         session.Summary,
		Bindings:        session.Bindings.Map(),
		Channels:        session.Channels(),
		DefaultChannels: session.DefaultChannels(),
		DerivedAt:       s.now().UTC(),
	}
}

func (s *PortalService) record(ctx context.Context, summary *models.SessionSummary) {
	if s.repo != nil {
		if err := s.repo.Upsert(ctx, summary); err != nil {
			s.logger.Warn("failed to persist summary", zap.String("file", summary.File), zap.Error(err))
		}
	}
	if s.cache != nil {
		if err := s.cache.Save(ctx, summary); err != nil {
			s.logger.Warn("failed to cache summary", zap.String("file", summary.File), zap.Error(err))
		}
	}
}

// duration spans the first and last present timestamps.
func duration(t *derive.Table) float64 {
	times, ok := t.Column(derive.ChannelTime)
	if !ok {
		return 0
	}
	first, last := -1, -1
	for i, v := range times {
		if derive.IsMissing(v) {
			continue
		}
		if first < 0 {
			first = i
		}
		last = i
	}
	if first < 0 {
		return 0
	}
	return times[last] - times[first]
}
