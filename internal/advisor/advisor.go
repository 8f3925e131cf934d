package advisor

import (
	"context"
	"errors"
	"log/slog"
	"math/rand/v2"
	"sync"
	"sync/atomic"

	"github.com/couchcryptid/ans-recharge-service/internal/domain"
	"github.com/couchcryptid/ans-recharge-service/internal/observability"
)

// Options tunes synthetic series generation.
type Options struct {
	// Days is the synthetic series length. Values below 2 use the default.
	Days int
	// Seed makes synthetic series reproducible. Nil seeds from the runtime.
	Seed *uint64
}

// Service turns a user id or an access token into a load recommendation.
// Each call is one render cycle: acquire readings, classify, publish.
type Service struct {
	source    domain.RechargeSource
	publisher domain.AssessmentPublisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	days      int
	ready     atomic.Bool

	rngMu sync.Mutex
	rng   *rand.Rand
}

// New creates a Service. Pass a nil publisher to disable event publishing.
func New(source domain.RechargeSource, publisher domain.AssessmentPublisher, opts Options, logger *slog.Logger, metrics *observability.Metrics) *Service {
	days := opts.Days
	if days < 2 {
		days = domain.DefaultSyntheticDays
	}

	var seed uint64
	if opts.Seed != nil {
		seed = *opts.Seed
	} else {
		seed = rand.Uint64()
	}

	if publisher != nil {
		metrics.PublisherEnabled.Set(1)
	} else {
		metrics.PublisherEnabled.Set(0)
	}

	return &Service{
		source:    source,
		publisher: publisher,
		logger:    logger,
		metrics:   metrics,
		days:      days,
		rng:       rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// MarkReady flags the service as able to serve assessments.
func (s *Service) MarkReady() { s.ready.Store(true) }

// CheckReadiness returns nil once the service has been marked ready.
func (s *Service) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("advisor has not been started")
	}
	return nil
}

// Synthetic generates a random series for userID and classifies its latest score.
func (s *Service) Synthetic(ctx context.Context, userID string) (domain.Report, error) {
	if userID == "" {
		s.recordError(domain.VariantSynthetic, domain.ErrInputMissing)
		return domain.Report{}, domain.ErrInputMissing
	}

	series := s.generate()
	a, err := domain.AssessScores(userID, series)
	if err != nil {
		s.recordError(domain.VariantSynthetic, err)
		return domain.Report{}, err
	}

	s.complete(ctx, a)
	return domain.Report{
		Assessment: a,
		Series:     series,
		Notes:      domain.StaffNotes(userID),
	}, nil
}

// Recharge fetches the token holder's nightly recharges and classifies the
// latest one by its status code. The upstream call happens exactly once.
func (s *Service) Recharge(ctx context.Context, token domain.Token) (domain.Report, error) {
	if token.Empty() {
		s.recordError(domain.VariantLive, domain.ErrInputMissing)
		return domain.Report{}, domain.ErrInputMissing
	}

	readings, err := s.source.FetchRecharges(ctx, token)
	if err != nil {
		s.recordError(domain.VariantLive, err)
		return domain.Report{}, err
	}

	a, err := domain.AssessRecharge(readings)
	if err != nil {
		s.recordError(domain.VariantLive, err)
		return domain.Report{}, err
	}

	s.complete(ctx, a)
	return domain.Report{
		Assessment: a,
		Series:     domain.SortByDate(readings),
		Notes:      domain.StaffNotes(""),
	}, nil
}

func (s *Service) generate() []domain.RecoveryReading {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return domain.GenerateSeries(s.rng, s.days)
}

// complete records metrics and publishes the assessment. Publish failures are
// logged and never fail the render cycle.
func (s *Service) complete(ctx context.Context, a domain.Assessment) {
	s.metrics.Assessments.WithLabelValues(string(a.Variant), string(a.Recommendation)).Inc()
	s.logger.Info("assessment complete",
		"assessment_id", a.ID,
		"variant", a.Variant,
		"recommendation", a.Recommendation,
		"value", a.Latest.Value,
	)

	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, a); err != nil {
		s.metrics.PublishErrors.Inc()
		s.logger.Warn("publish assessment failed", "assessment_id", a.ID, "error", err)
	}
}

func (s *Service) recordError(v domain.Variant, err error) {
	kind := ErrorKind(err)
	s.metrics.AssessmentErrors.WithLabelValues(string(v), kind).Inc()

	switch kind {
	case KindInputMissing:
		s.logger.Debug("assessment awaiting input", "variant", v)
	case KindNoData:
		s.logger.Warn("no recovery data available", "variant", v)
	default:
		s.logger.Error("assessment failed", "variant", v, "kind", kind, "error", err)
	}
}
