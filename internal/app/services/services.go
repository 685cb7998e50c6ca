// Package services holds the workflow core: one service per domain component,
// each taking a repositories.Store and running every mutation in one transaction.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/helpers"
	"github.com/alumniconnect/platform/internal/pkg/sanitize"
	"github.com/alumniconnect/platform/internal/pkg/telemetry"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Config carries the settings shared by every service.
type Config struct {
	// RequireApproval sends new events and campaigns to PENDING_APPROVAL
	// instead of publishing them directly.
	RequireApproval bool
	// Now defaults to time.Now.
	Now func() time.Time
	// PasswordCost is the bcrypt cost for new hashes; 0 means auth.BcryptCost.
	PasswordCost int
}

type base struct {
	store  repositories.Store
	cfg    Config
	logger zerolog.Logger
	tracer trace.Tracer
}

func newBase(store repositories.Store, cfg Config, logger zerolog.Logger, component string) base {
	return base{
		store:  store,
		cfg:    cfg,
		logger: logger.With().Str("component", component).Logger(),
		tracer: telemetry.Tracer("services/" + component),
	}
}

func (b base) now() time.Time {
	if b.cfg.Now != nil {
		return b.cfg.Now().UTC()
	}
	return time.Now().UTC()
}

func (b base) startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return b.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span. Domain rejections are not span failures.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.String("error.kind", apperrors.Kind(err)))
		if !apperrors.IsDomainError(err) {
			span.SetStatus(codes.Error, err.Error())
		}
	}
	span.End()
}

// logOutcome logs domain rejections at debug and infrastructure failures at error.
func (b base) logOutcome(err error, msg string, fields map[string]interface{}) {
	if err == nil {
		return
	}
	ev := b.logger.Debug()
	if !apperrors.IsDomainError(err) {
		ev = b.logger.Error()
	}
	ev.Err(err).Fields(fields).Msg(msg)
}

func idAttr(key string, id uuid.UUID) attribute.KeyValue {
	return attribute.String(key, id.String())
}

// notFound converts a repository miss into the taxonomy error for entity.
func notFound(err error, entity string, id uuid.UUID) error {
	if errors.Is(err, repositories.ErrNotFound) {
		return apperrors.NewNotFoundError(entity, id)
	}
	return fmt.Errorf("load %s %s: %w", entity, id, err)
}

// wrap annotates infrastructure errors and passes domain errors through untouched.
func wrap(err error, op string) error {
	if err == nil || apperrors.IsDomainError(err) {
		return err
	}
	return fmt.Errorf("%s: %w", op, err)
}

func pageOf(q dto.PageQuery) (repositories.Page, int, int) {
	offset, limit := helpers.CalculateOffsetLimit(q.Page, q.Size)
	page := q.Page
	if page < 1 {
		page = helpers.DefaultPage
	}
	return repositories.Page{Limit: limit, Offset: offset}, page, limit
}

func paginated[T any](items []T, total int64, page, size int) *dto.PaginatedResponse[T] {
	if items == nil {
		items = []T{}
	}
	return &dto.PaginatedResponse[T]{Items: items, Pagination: helpers.NewPaginationInfo(total, page, size)}
}

// summaries loads the public profile of every id in one call.
func summaries(ctx context.Context, store repositories.Store, ids []uuid.UUID) (map[uuid.UUID]*dto.UserSummary, error) {
	profiles, err := store.Users().Profiles(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("load profiles: %w", err)
	}
	out := make(map[uuid.UUID]*dto.UserSummary, len(ids))
	for _, id := range ids {
		out[id] = dto.NewUserSummary(id, profiles[id])
	}
	return out, nil
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

// cleanText strips markup from an optional plain-text field; blank becomes nil.
func cleanText(s *string) *string {
	if s == nil {
		return nil
	}
	v := sanitize.Text(*s)
	if v == "" {
		return nil
	}
	return &v
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func currencyOr(code string) string {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return "USD"
	}
	return code
}

func parseUUIDParam(field, raw string) (*uuid.UUID, error) {
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperrors.NewValidationError(field, "must be a UUID")
	}
	return &id, nil
}

// bestEffort runs a non-critical write outside any transaction and only logs failures.
func (b base) bestEffort(ctx context.Context, what string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		b.logger.Warn().Err(err).Str("op", what).Msg("Best-effort update failed")
	}
}
