// Package postgres implements the repositories over pgx and squirrel.
package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/db"
	"github.com/alumniconnect/platform/internal/pkg/dberrors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// querier is satisfied by both *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Store is the PostgreSQL implementation of repositories.Store.
type Store struct {
	db   *db.PostgresDB
	q    querier
	inTx bool
}

var _ repositories.Store = (*Store)(nil)

func NewStore(database *db.PostgresDB) *Store {
	return &Store{db: database, q: database.Pool}
}

func (s *Store) Users() repositories.UserRepository                 { return userRepo{s} }
func (s *Store) Events() repositories.EventRepository               { return eventRepo{s} }
func (s *Store) Registrations() repositories.RegistrationRepository { return registrationRepo{s} }
func (s *Store) Jobs() repositories.JobRepository                   { return jobRepo{s} }
func (s *Store) Companies() repositories.CompanyRepository          { return companyRepo{s} }
func (s *Store) Applications() repositories.ApplicationRepository   { return applicationRepo{s} }
func (s *Store) SavedJobs() repositories.SavedJobRepository         { return savedJobRepo{s} }
func (s *Store) Campaigns() repositories.CampaignRepository         { return campaignRepo{s} }
func (s *Store) Donations() repositories.DonationRepository         { return donationRepo{s} }
func (s *Store) Posts() repositories.PostRepository                 { return postRepo{s} }
func (s *Store) Comments() repositories.CommentRepository           { return commentRepo{s} }
func (s *Store) Likes() repositories.LikeRepository                 { return likeRepo{s} }
func (s *Store) Categories() repositories.CategoryRepository        { return categoryRepo{s} }
func (s *Store) Tags() repositories.TagRepository                   { return tagRepo{s} }
func (s *Store) ModerationLog() repositories.ModerationLogRepository {
	return moderationRepo{s}
}

// WithTx runs fn inside a transaction. Nested calls join the outer one.
func (s *Store) WithTx(ctx context.Context, fn func(tx repositories.Store) error) error {
	if s.inTx {
		return fn(s)
	}
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(&Store{db: s.db, q: tx, inTx: true})
	})
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

// atomic runs multi-statement writes in the current transaction, or a new one.
func (s *Store) atomic(ctx context.Context, fn func(q querier) error) error {
	if s.inTx {
		return fn(s.q)
	}
	return s.db.WithTransaction(ctx, func(ctx context.Context, tx pgx.Tx) error {
		return fn(tx)
	})
}

func selectOne[T any](ctx context.Context, q querier, b squirrel.SelectBuilder) (*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	item, err := pgx.CollectExactlyOneRow(rows, pgx.RowToAddrOfStructByNameLax[T])
	if dberrors.IsNoRows(err) {
		return nil, repositories.ErrNotFound
	}
	return item, err
}

func selectMany[T any](ctx context.Context, q querier, b squirrel.SelectBuilder) ([]*T, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, pgx.RowToAddrOfStructByNameLax[T])
}

func countRows(ctx context.Context, q querier, b squirrel.SelectBuilder) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	var n int64
	if err := q.QueryRow(ctx, query, args...).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func exists(ctx context.Context, q querier, table string, where squirrel.Sqlizer) (bool, error) {
	sub, args, err := psql.Select("1").From(table).Where(where).ToSql()
	if err != nil {
		return false, fmt.Errorf("build query: %w", err)
	}
	var found bool
	if err := q.QueryRow(ctx, "SELECT EXISTS ("+sub+")", args...).Scan(&found); err != nil {
		return false, err
	}
	return found, nil
}

// exec runs a write and returns the number of affected rows.
func exec(ctx context.Context, q querier, b squirrel.Sqlizer) (int64, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build query: %w", err)
	}
	tag, err := q.Exec(ctx, query, args...)
	if err != nil {
		return 0, mapWriteError(err)
	}
	return tag.RowsAffected(), nil
}

// execOne is exec for statements that must touch exactly one row.
func execOne(ctx context.Context, q querier, b squirrel.Sqlizer) error {
	n, err := exec(ctx, q, b)
	if err != nil {
		return err
	}
	if n == 0 {
		return repositories.ErrNotFound
	}
	return nil
}

func mapWriteError(err error) error {
	switch {
	case dberrors.IsUniqueViolation(err):
		return fmt.Errorf("%w: %v", repositories.ErrDuplicate, err)
	case dberrors.IsForeignKeyViolation(err):
		return fmt.Errorf("%w: %v", repositories.ErrNotFound, err)
	}
	return err
}

func paged(b squirrel.SelectBuilder, page repositories.Page) squirrel.SelectBuilder {
	if page.Limit > 0 {
		b = b.Limit(uint64(page.Limit))
	}
	if page.Offset > 0 {
		b = b.Offset(page.Offset)
	}
	return b
}

// listWithTotal runs the page query and the matching count.
func listWithTotal[T any](ctx context.Context, q querier, cols []string, table string, where squirrel.Sqlizer, orderBy []string, page repositories.Page) ([]*T, int64, error) {
	total, err := countRows(ctx, q, psql.Select("COUNT(*)").From(table).Where(where))
	if err != nil {
		return nil, 0, err
	}
	items, err := selectMany[T](ctx, q, paged(psql.Select(cols...).From(table).Where(where).OrderBy(orderBy...), page))
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// contains builds an ILIKE pattern matching s anywhere.
func contains(s string) string {
	return "%" + likeEscaper.Replace(s) + "%"
}

// searchAny matches s case-insensitively against any of columns.
func searchAny(s string, columns ...string) squirrel.Or {
	pattern := contains(s)
	or := make(squirrel.Or, 0, len(columns))
	for _, c := range columns {
		or = append(or, squirrel.ILike{c: pattern})
	}
	return or
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
