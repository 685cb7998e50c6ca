package postgres

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

var postColumns = []string{"id", "user_id", "category_id", "title", "content", "excerpt", "status", "views", "created_at", "updated_at"}

type postRepo struct{ s *Store }

func (r postRepo) Create(ctx context.Context, p *models.Post) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("posts").Columns(postColumns...).Values(
		p.ID, p.UserID, p.CategoryID, p.Title, p.Content, p.Excerpt, p.Status, p.Views, p.CreatedAt, p.UpdatedAt,
	))
	return err
}

type postTagRow struct {
	PostID uuid.UUID `db:"post_id"`
	ID     uuid.UUID `db:"id"`
	Name   string    `db:"name"`
	Slug   string    `db:"slug"`
}

// attachTags loads the tags of every post in one query.
func (r postRepo) attachTags(ctx context.Context, posts []*models.Post) error {
	if len(posts) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, len(posts))
	byID := make(map[uuid.UUID]*models.Post, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		byID[p.ID] = p
		p.Tags = nil
	}
	rows, err := selectMany[postTagRow](ctx, r.s.q, psql.Select("pt.post_id", "t.id", "t.name", "t.slug").
		From("post_tags pt").
		Join("tags t ON t.id = pt.tag_id").
		Where(squirrel.Eq{"pt.post_id": ids}).
		OrderBy("t.name"))
	if err != nil {
		return err
	}
	for _, row := range rows {
		p := byID[row.PostID]
		p.Tags = append(p.Tags, models.Tag{ID: row.ID, Name: row.Name, Slug: row.Slug})
	}
	return nil
}

func (r postRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	post, err := selectOne[models.Post](ctx, r.s.q, psql.Select(postColumns...).From("posts").Where(squirrel.Eq{"id": id}))
	if err != nil {
		return nil, err
	}
	if err := r.attachTags(ctx, []*models.Post{post}); err != nil {
		return nil, err
	}
	return post, nil
}

func (r postRepo) Update(ctx context.Context, p *models.Post) error {
	return execOne(ctx, r.s.q, psql.Update("posts").SetMap(map[string]interface{}{
		"category_id": p.CategoryID,
		"title":       p.Title,
		"content":     p.Content,
		"excerpt":     p.Excerpt,
		"status":      p.Status,
		"updated_at":  p.UpdatedAt,
	}).Where(squirrel.Eq{"id": p.ID}))
}

func (r postRepo) SetTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	return r.s.atomic(ctx, func(q querier) error {
		found, err := exists(ctx, q, "posts", squirrel.Eq{"id": postID})
		if err != nil {
			return err
		}
		if !found {
			return repositories.ErrNotFound
		}
		if _, err := exec(ctx, q, psql.Delete("post_tags").Where(squirrel.Eq{"post_id": postID})); err != nil {
			return err
		}
		if len(tagIDs) == 0 {
			return nil
		}
		insert := psql.Insert("post_tags").Columns("post_id", "tag_id")
		for _, tagID := range tagIDs {
			insert = insert.Values(postID, tagID)
		}
		_, err = exec(ctx, q, insert.Suffix("ON CONFLICT DO NOTHING"))
		return err
	})
}

// Delete removes likes on the post and its comments, then the post itself.
// Comments and tag links go with it through foreign keys.
func (r postRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.atomic(ctx, func(q querier) error {
		if _, err := exec(ctx, q, psql.Delete("likes").Where(squirrel.Or{
			squirrel.Eq{"kind": models.LikePost, "target_id": id},
			squirrel.And{
				squirrel.Eq{"kind": models.LikeComment},
				squirrel.Expr("target_id IN (SELECT id FROM comments WHERE post_id = ?)", id),
			},
		})); err != nil {
			return err
		}
		return execOne(ctx, q, psql.Delete("posts").Where(squirrel.Eq{"id": id}))
	})
}

func (r postRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	return execOne(ctx, r.s.q, psql.Update("posts").
		Set("views", squirrel.Expr("views + 1")).
		Where(squirrel.Eq{"id": id}))
}

func postWhere(f repositories.PostFilter) squirrel.And {
	where := squirrel.And{}
	if f.CategoryID != nil {
		where = append(where, squirrel.Eq{"category_id": *f.CategoryID})
	}
	if f.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *f.UserID})
	}
	if f.Status != nil {
		where = append(where, squirrel.Eq{"status": *f.Status})
	}
	if f.Search != "" {
		where = append(where, searchAny(f.Search, "title", "content"))
	}
	if f.TagSlug != "" {
		where = append(where, squirrel.Expr(
			"EXISTS (SELECT 1 FROM post_tags pt JOIN tags t ON t.id = pt.tag_id WHERE pt.post_id = posts.id AND t.slug = ?)",
			f.TagSlug,
		))
	}
	return where
}

func (r postRepo) List(ctx context.Context, filter repositories.PostFilter, page repositories.Page) ([]*models.Post, int64, error) {
	posts, total, err := listWithTotal[models.Post](ctx, r.s.q, postColumns, "posts", postWhere(filter), []string{"created_at DESC", "id"}, page)
	if err != nil {
		return nil, 0, err
	}
	if err := r.attachTags(ctx, posts); err != nil {
		return nil, 0, err
	}
	return posts, total, nil
}

func (r postRepo) Count(ctx context.Context, filter repositories.PostFilter) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("posts").Where(postWhere(filter)))
}

type categoryCount struct {
	CategoryID uuid.UUID `db:"category_id"`
	Total      int64     `db:"total"`
}

func (r postRepo) CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	rows, err := selectMany[categoryCount](ctx, r.s.q, psql.Select("category_id", "COUNT(*) AS total").
		From("posts").
		Where(squirrel.Eq{"status": models.PostPublished}).
		GroupBy("category_id"))
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]int64, len(rows))
	for _, row := range rows {
		out[row.CategoryID] = row.Total
	}
	return out, nil
}

var commentColumns = []string{"id", "post_id", "user_id", "parent_id", "content", "created_at", "updated_at"}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(ctx context.Context, c *models.Comment) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("comments").Columns(commentColumns...).Values(
		c.ID, c.PostID, c.UserID, c.ParentID, c.Content, c.CreatedAt, c.UpdatedAt,
	))
	return err
}

func (r commentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	return selectOne[models.Comment](ctx, r.s.q, psql.Select(commentColumns...).From("comments").Where(squirrel.Eq{"id": id}))
}

// Delete removes likes on the comment and its replies; replies cascade.
func (r commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	return r.s.atomic(ctx, func(q querier) error {
		if _, err := exec(ctx, q, psql.Delete("likes").
			Where(squirrel.Eq{"kind": models.LikeComment}).
			Where(squirrel.Or{
				squirrel.Eq{"target_id": id},
				squirrel.Expr("target_id IN (SELECT id FROM comments WHERE parent_id = ?)", id),
			})); err != nil {
			return err
		}
		return execOne(ctx, q, psql.Delete("comments").Where(squirrel.Eq{"id": id}))
	})
}

func (r commentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	return selectMany[models.Comment](ctx, r.s.q, psql.Select(commentColumns...).From("comments").
		Where(squirrel.Eq{"post_id": postID}).
		OrderBy("created_at", "id"))
}

func (r commentRepo) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("comments").Where(squirrel.Eq{"post_id": postID}))
}

type likeRepo struct{ s *Store }

// Create inserts with ON CONFLICT DO NOTHING so a concurrent duplicate leaves
// the surrounding transaction usable.
func (r likeRepo) Create(ctx context.Context, l *models.Like) (bool, error) {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	n, err := exec(ctx, r.s.q, psql.Insert("likes").
		Columns("id", "user_id", "kind", "target_id", "created_at").
		Values(l.ID, l.UserID, l.Kind, l.TargetID, l.CreatedAt).
		Suffix("ON CONFLICT (user_id, kind, target_id) DO NOTHING"))
	return n > 0, err
}

func likeKey(userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) squirrel.Eq {
	return squirrel.Eq{"user_id": userID, "kind": kind, "target_id": targetID}
}

func (r likeRepo) Delete(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error) {
	n, err := exec(ctx, r.s.q, psql.Delete("likes").Where(likeKey(userID, kind, targetID)))
	return n > 0, err
}

func (r likeRepo) Exists(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error) {
	return exists(ctx, r.s.q, "likes", likeKey(userID, kind, targetID))
}

func (r likeRepo) Count(ctx context.Context, kind models.LikeTarget, targetID uuid.UUID) (int64, error) {
	return countRows(ctx, r.s.q, psql.Select("COUNT(*)").From("likes").Where(squirrel.Eq{"kind": kind, "target_id": targetID}))
}

type targetCount struct {
	TargetID uuid.UUID `db:"target_id"`
	Total    int64     `db:"total"`
}

func (r likeRepo) CountMany(ctx context.Context, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	out := make(map[uuid.UUID]int64, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	rows, err := selectMany[targetCount](ctx, r.s.q, psql.Select("target_id", "COUNT(*) AS total").
		From("likes").
		Where(squirrel.Eq{"kind": kind, "target_id": targetIDs}).
		GroupBy("target_id"))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.Total
	}
	return out, nil
}

func (r likeRepo) LikedBy(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	out := make(map[uuid.UUID]bool, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	rows, err := selectMany[targetCount](ctx, r.s.q, psql.Select("target_id", "1 AS total").
		From("likes").
		Where(squirrel.Eq{"user_id": userID, "kind": kind, "target_id": targetIDs}))
	if err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = true
	}
	return out, nil
}

var categoryColumns = []string{"id", "name", "slug", "description", "color", "created_at"}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(ctx context.Context, c *models.Category) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	_, err := exec(ctx, r.s.q, psql.Insert("categories").Columns(categoryColumns...).Values(
		c.ID, c.Name, c.Slug, c.Description, c.Color, c.CreatedAt,
	))
	return err
}

func (r categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	return selectOne[models.Category](ctx, r.s.q, psql.Select(categoryColumns...).From("categories").Where(squirrel.Eq{"id": id}))
}

func (r categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	return selectMany[models.Category](ctx, r.s.q, psql.Select(categoryColumns...).From("categories").OrderBy("name", "id"))
}

type tagRepo struct{ s *Store }

// GetOrCreate relies on the no-op update so RETURNING yields the existing row.
func (r tagRepo) GetOrCreate(ctx context.Context, name, slug string) (*models.Tag, error) {
	query, args, err := psql.Insert("tags").
		Columns("id", "name", "slug").
		Values(uuid.New(), name, slug).
		Suffix("ON CONFLICT (slug) DO UPDATE SET slug = EXCLUDED.slug RETURNING id, name, slug").
		ToSql()
	if err != nil {
		return nil, err
	}
	var t models.Tag
	if err := r.s.q.QueryRow(ctx, query, args...).Scan(&t.ID, &t.Name, &t.Slug); err != nil {
		return nil, err
	}
	return &t, nil
}

var moderationColumns = []string{"id", "admin_id", "action", "target_type", "target_id", "reason", "created_at"}

type moderationRepo struct{ s *Store }

func (r moderationRepo) Append(ctx context.Context, a *models.ModerationAction) error {
	_, err := exec(ctx, r.s.q, psql.Insert("moderation_actions").Columns(moderationColumns...).Values(
		a.ID, a.AdminID, a.Action, a.TargetType, a.TargetID, a.Reason, a.CreatedAt,
	))
	return err
}

func (r moderationRepo) List(ctx context.Context, page repositories.Page) ([]*models.ModerationAction, int64, error) {
	return listWithTotal[models.ModerationAction](ctx, r.s.q, moderationColumns, "moderation_actions", squirrel.And{}, []string{"id DESC"}, page)
}
