package services

import (
	"context"
	"fmt"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/rs/zerolog"
)

// LifecycleService applies the time-driven transitions: events start and
// complete, campaigns past their end date complete.
type LifecycleService struct {
	base
}

// NewLifecycleService creates a new LifecycleService
func NewLifecycleService(store repositories.Store, cfg Config, logger zerolog.Logger) *LifecycleService {
	return &LifecycleService{base: newBase(store, cfg, logger, "lifecycle")}
}

// LifecycleResult counts the rows each sweep moved.
type LifecycleResult struct {
	EventsStarted      int64 `json:"eventsStarted"`
	EventsCompleted    int64 `json:"eventsCompleted"`
	CampaignsCompleted int64 `json:"campaignsCompleted"`
}

// Run performs one sweep. Each step is a single conditional bulk update, so
// a failed step leaves the earlier ones applied and the next run catches up.
func (s *LifecycleService) Run(ctx context.Context) (_ LifecycleResult, err error) {
	ctx, span := s.startSpan(ctx, "lifecycle.Run")
	defer func() {
		if err != nil {
			metrics.LifecycleRunErrors.Inc()
		}
		endSpan(span, err)
	}()

	var res LifecycleResult
	now := s.now()
	steps := []struct {
		entity string
		to     string
		dst    *int64
		fn     func(context.Context) (int64, error)
	}{
		{"event", string(models.EventOngoing), &res.EventsStarted, func(ctx context.Context) (int64, error) {
			return s.store.Events().StartDue(ctx, now)
		}},
		{"event", string(models.EventCompleted), &res.EventsCompleted, func(ctx context.Context) (int64, error) {
			return s.store.Events().CompleteDue(ctx, now)
		}},
		{"campaign", string(models.CampaignCompleted), &res.CampaignsCompleted, func(ctx context.Context) (int64, error) {
			return s.store.Campaigns().CompleteDue(ctx, now)
		}},
	}
	for _, step := range steps {
		n, err := step.fn(ctx)
		if err != nil {
			s.logger.Error().Err(err).Str("entity", step.entity).Str("to", step.to).Msg("Lifecycle step failed")
			return res, fmt.Errorf("move %s to %s: %w", step.entity, step.to, err)
		}
		*step.dst = n
		if n > 0 {
			metrics.LifecycleTransitionsTotal.WithLabelValues(step.entity, step.to).Add(float64(n))
		}
	}

	if res != (LifecycleResult{}) {
		s.logger.Info().
			Int64("eventsStarted", res.EventsStarted).
			Int64("eventsCompleted", res.EventsCompleted).
			Int64("campaignsCompleted", res.CampaignsCompleted).
			Msg("Lifecycle sweep applied")
	}
	return res, nil
}
