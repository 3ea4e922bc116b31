package service

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/pkordes/tripboard/internal/broker/messages"
	"github.com/pkordes/tripboard/internal/domain"
	"github.com/pkordes/tripboard/internal/overview"
)

// SnapshotKey is the cache key of the last loaded trip list.
const SnapshotKey = "tripboard:trips:overview"

// TripSource supplies the raw documents for one fetch session.
// repo.TripDocRepo satisfies it.
type TripSource interface {
	List(ctx context.Context) ([]domain.TripDocument, error)
}

// SnapshotStore persists the last loaded view-model between processes.
// rediscache.RedisCache satisfies it.
type SnapshotStore interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// EventPublisher announces completed fetch sessions.
// Both the kafka and amqp producers satisfy it.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, key, value []byte) error
}

// OverviewService runs fetch sessions against a TripSource and keeps the
// resulting view-model on a Board.
type OverviewService struct {
	source TripSource
	board  *overview.Board
	log    *slog.Logger
	now    func() time.Time

	cache    SnapshotStore
	cacheTTL time.Duration

	events EventPublisher
	topic  string

	mu         sync.Mutex
	lastID     uint64
	lastReport overview.Report
}

// OverviewOption configures optional collaborators of an OverviewService.
type OverviewOption func(*OverviewService)

// WithSnapshotCache stores every loaded view-model under SnapshotKey.
func WithSnapshotCache(c SnapshotStore, ttl time.Duration) OverviewOption {
	return func(s *OverviewService) {
		s.cache = c
		s.cacheTTL = ttl
	}
}

// WithEvents publishes a messages.OverviewRefreshed to topic after each session.
func WithEvents(p EventPublisher, topic string) OverviewOption {
	return func(s *OverviewService) {
		s.events = p
		s.topic = topic
	}
}

func WithLogger(l *slog.Logger) OverviewOption {
	return func(s *OverviewService) { s.log = l }
}

// NewOverviewService constructs an OverviewService. board may be shared with
// other writers; sessions are ordered by the board.
func NewOverviewService(src TripSource, board *overview.Board, opts ...OverviewOption) *OverviewService {
	s := &OverviewService{
		source: src,
		board:  board,
		log:    slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refresh runs one fetch session and returns the view-model it produced with
// the aggregation report. It never fails: a source error yields the error
// view-model. If ctx is cancelled during the fetch, the session is abandoned:
// the board goes back to what it showed before the session began.
func (s *OverviewService) Refresh(ctx context.Context) (domain.TripOverviewListVM, overview.Report) {
	id := s.board.Begin()
	prev := s.board.Snapshot()
	pending, _ := overview.Aggregate(nil, overview.FetchPending)
	s.board.Apply(id, pending)

	state := overview.FetchSuccess
	docs, err := s.source.List(ctx)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			s.log.InfoContext(ctx, "trip fetch cancelled", "session", id)
			// Restore what was displayed before this session's Pending state.
			// A newer session has already rejected this id.
			s.board.Apply(id, prev)
			return s.board.Snapshot(), overview.Report{}
		}
		s.log.ErrorContext(ctx, "trip fetch failed", "session", id, "error", err)
		state = overview.FetchFailure
	}

	records := make([]domain.RawTripRecord, len(docs))
	for i, d := range docs {
		records[i] = d.Data
	}
	vm, rep := overview.Aggregate(records, state)

	for _, ne := range rep.Errors {
		s.log.DebugContext(ctx, "trip record dropped", "session", id, "field", ne.Field, "reason", string(ne.Reason))
	}

	if !s.board.Apply(id, vm) {
		s.log.DebugContext(ctx, "stale trip session discarded", "session", id)
		return vm, rep
	}
	s.recordReport(id, state, rep)

	s.log.InfoContext(ctx, "trip overview refreshed",
		"session", id,
		"status", vm.Flags.Trips.Status.String(),
		"total", rep.Total,
		"kept", rep.Kept,
		"dropped", rep.Dropped,
	)

	if state == overview.FetchSuccess {
		s.storeSnapshot(ctx, vm)
	}
	s.publish(ctx, id, vm, rep)

	return vm, rep
}

// Current returns the displayed view-model. Before the first session has been
// applied, a cached snapshot from an earlier process is preferred over the stub.
func (s *OverviewService) Current(ctx context.Context) domain.TripOverviewListVM {
	if !s.board.Touched() && s.cache != nil {
		if vm, ok := s.loadSnapshot(ctx); ok {
			return vm
		}
	}
	return s.board.Snapshot()
}

// LastReport returns the report of the newest applied successful session.
func (s *OverviewService) LastReport() overview.Report {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastReport
}

func (s *OverviewService) recordReport(id uint64, state overview.FetchState, rep overview.Report) {
	if state != overview.FetchSuccess {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if id < s.lastID {
		return
	}
	s.lastID = id
	s.lastReport = rep
}

func (s *OverviewService) storeSnapshot(ctx context.Context, vm domain.TripOverviewListVM) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(vm)
	if err != nil {
		s.log.WarnContext(ctx, "encode trip snapshot", "error", err)
		return
	}
	if err := s.cache.Set(ctx, SnapshotKey, b, s.cacheTTL); err != nil {
		s.log.WarnContext(ctx, "store trip snapshot", "error", err)
	}
}

func (s *OverviewService) loadSnapshot(ctx context.Context) (domain.TripOverviewListVM, bool) {
	b, ok, err := s.cache.Get(ctx, SnapshotKey)
	if err != nil {
		s.log.WarnContext(ctx, "load trip snapshot", "error", err)
		return domain.TripOverviewListVM{}, false
	}
	if !ok {
		return domain.TripOverviewListVM{}, false
	}
	var vm domain.TripOverviewListVM
	if err := json.Unmarshal(b, &vm); err != nil {
		s.log.WarnContext(ctx, "decode trip snapshot", "error", err)
		return domain.TripOverviewListVM{}, false
	}
	if vm.Trips == nil {
		vm.Trips = []domain.TripOverview{}
	}
	return vm, true
}

func (s *OverviewService) publish(ctx context.Context, id uint64, vm domain.TripOverviewListVM, rep overview.Report) {
	if s.events == nil {
		return
	}
	msg := messages.OverviewRefreshed{
		SessionID:   id,
		Status:      vm.Flags.Trips.Status.String(),
		Total:       rep.Total,
		Kept:        rep.Kept,
		Dropped:     rep.Dropped,
		RefreshedAt: s.now().UTC(),
	}
	for _, ne := range rep.Errors {
		msg.Reasons = append(msg.Reasons, messages.Drop{Field: ne.Field, Reason: string(ne.Reason)})
	}
	value, err := msg.Value()
	if err != nil {
		s.log.WarnContext(ctx, "encode refresh event", "error", err)
		return
	}
	if err := s.events.Publish(ctx, s.topic, msg.Key(), value); err != nil {
		s.log.WarnContext(ctx, "publish refresh event", "error", err)
	}
}
