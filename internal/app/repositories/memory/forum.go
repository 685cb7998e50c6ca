package memory

import (
	"context"
	"slices"
	"strings"

	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/google/uuid"
)

type postRepo struct{ s *Store }

func (r postRepo) withTags(p models.Post) *models.Post {
	d := r.s.d()
	p.Tags = nil
	for _, tagID := range d.postTags[p.ID] {
		if t, ok := d.tags[tagID]; ok {
			p.Tags = append(p.Tags, t)
		}
	}
	return &p
}

func (r postRepo) Create(ctx context.Context, post *models.Post) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().categories[post.CategoryID]; !ok {
		return repositories.ErrNotFound
	}
	ensureID(&post.ID)
	stored := *post
	stored.Tags = nil
	r.s.d().posts[post.ID] = stored
	return nil
}

func (r postRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	r.s.lock()
	defer r.s.unlock()
	p, ok := r.s.d().posts[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return r.withTags(p), nil
}

func (r postRepo) Update(ctx context.Context, post *models.Post) error {
	r.s.lock()
	defer r.s.unlock()
	current, ok := r.s.d().posts[post.ID]
	if !ok {
		return repositories.ErrNotFound
	}
	if _, ok := r.s.d().categories[post.CategoryID]; !ok {
		return repositories.ErrNotFound
	}
	next := *post
	next.Tags = nil
	next.Views = current.Views
	r.s.d().posts[post.ID] = next
	return nil
}

func (r postRepo) SetTags(ctx context.Context, postID uuid.UUID, tagIDs []uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().posts[postID]; !ok {
		return repositories.ErrNotFound
	}
	r.s.d().postTags[postID] = slices.Compact(slices.Clone(tagIDs))
	return nil
}

func (r postRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.posts[id]; !ok {
		return repositories.ErrNotFound
	}
	for cid, c := range d.comments {
		if c.PostID == id {
			deleteLikesOf(d, models.LikeComment, cid)
			delete(d.comments, cid)
		}
	}
	deleteLikesOf(d, models.LikePost, id)
	delete(d.postTags, id)
	delete(d.posts, id)
	return nil
}

func (r postRepo) IncrementViews(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	p, ok := r.s.d().posts[id]
	if !ok {
		return repositories.ErrNotFound
	}
	p.Views++
	r.s.d().posts[id] = p
	return nil
}

func (r postRepo) match(p models.Post, f repositories.PostFilter) bool {
	if f.CategoryID != nil && p.CategoryID != *f.CategoryID {
		return false
	}
	if f.UserID != nil && p.UserID != *f.UserID {
		return false
	}
	if f.Status != nil && p.Status != *f.Status {
		return false
	}
	if f.Search != "" && !containsFold(p.Title, f.Search) && !containsFold(p.Content, f.Search) {
		return false
	}
	if f.TagSlug != "" {
		d := r.s.d()
		found := false
		for _, tagID := range d.postTags[p.ID] {
			if d.tags[tagID].Slug == f.TagSlug {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func (r postRepo) List(ctx context.Context, filter repositories.PostFilter, page repositories.Page) ([]*models.Post, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Post
	for _, p := range r.s.d().posts {
		if r.match(p, filter) {
			out = append(out, r.withTags(p))
		}
	}
	sortBy(out, func(a, b *models.Post) int { return b.CreatedAt.Compare(a.CreatedAt) }, func(p *models.Post) uuid.UUID { return p.ID })
	return paginate(out, page), int64(len(out)), nil
}

func (r postRepo) Count(ctx context.Context, filter repositories.PostFilter) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, p := range r.s.d().posts {
		if r.match(p, filter) {
			n++
		}
	}
	return n, nil
}

func (r postRepo) CountByCategory(ctx context.Context) (map[uuid.UUID]int64, error) {
	r.s.lock()
	defer r.s.unlock()
	out := map[uuid.UUID]int64{}
	for _, p := range r.s.d().posts {
		if p.Status == models.PostPublished {
			out[p.CategoryID]++
		}
	}
	return out, nil
}

func deleteLikesOf(d *dataset, kind models.LikeTarget, targetID uuid.UUID) {
	for key := range d.likes {
		if key.kind == kind && key.targetID == targetID {
			delete(d.likes, key)
		}
	}
}

type commentRepo struct{ s *Store }

func (r commentRepo) Create(ctx context.Context, comment *models.Comment) error {
	r.s.lock()
	defer r.s.unlock()
	if _, ok := r.s.d().posts[comment.PostID]; !ok {
		return repositories.ErrNotFound
	}
	ensureID(&comment.ID)
	r.s.d().comments[comment.ID] = *comment
	return nil
}

func (r commentRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	c, ok := r.s.d().comments[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r commentRepo) Delete(ctx context.Context, id uuid.UUID) error {
	r.s.lock()
	defer r.s.unlock()
	d := r.s.d()
	if _, ok := d.comments[id]; !ok {
		return repositories.ErrNotFound
	}
	for cid, c := range d.comments {
		if c.ParentID != nil && *c.ParentID == id {
			deleteLikesOf(d, models.LikeComment, cid)
			delete(d.comments, cid)
		}
	}
	deleteLikesOf(d, models.LikeComment, id)
	delete(d.comments, id)
	return nil
}

func (r commentRepo) ListByPost(ctx context.Context, postID uuid.UUID) ([]*models.Comment, error) {
	r.s.lock()
	defer r.s.unlock()
	var out []*models.Comment
	for _, c := range r.s.d().comments {
		if c.PostID == postID {
			c := c
			out = append(out, &c)
		}
	}
	sortBy(out, func(a, b *models.Comment) int { return a.CreatedAt.Compare(b.CreatedAt) }, func(c *models.Comment) uuid.UUID { return c.ID })
	return out, nil
}

func (r commentRepo) CountByPost(ctx context.Context, postID uuid.UUID) (int64, error) {
	r.s.lock()
	defer r.s.unlock()
	var n int64
	for _, c := range r.s.d().comments {
		if c.PostID == postID {
			n++
		}
	}
	return n, nil
}

type likeRepo struct{ s *Store }

func (r likeRepo) Create(ctx context.Context, like *models.Like) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	key := likeKey{like.UserID, like.Kind, like.TargetID}
	if _, ok := r.s.d().likes[key]; ok {
		return false, nil
	}
	ensureID(&like.ID)
	r.s.d().likes[key] = *like
	return true, nil
}

func (r likeRepo) Delete(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	key := likeKey{userID, kind, targetID}
	if _, ok := r.s.d().likes[key]; !ok {
		return false, nil
	}
	delete(r.s.d().likes, key)
	return true, nil
}

func (r likeRepo) Exists(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetID uuid.UUID) (bool, error) {
	r.s.lock()
	defer r.s.unlock()
	_, ok := r.s.d().likes[likeKey{userID, kind, targetID}]
	return ok, nil
}

func (r likeRepo) Count(ctx context.Context, kind models.LikeTarget, targetID uuid.UUID) (int64, error) {
	counts, err := r.CountMany(ctx, kind, []uuid.UUID{targetID})
	return counts[targetID], err
}

func (r likeRepo) CountMany(ctx context.Context, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]int64, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make(map[uuid.UUID]int64, len(targetIDs))
	for key := range r.s.d().likes {
		if key.kind == kind && slices.Contains(targetIDs, key.targetID) {
			out[key.targetID]++
		}
	}
	return out, nil
}

func (r likeRepo) LikedBy(ctx context.Context, userID uuid.UUID, kind models.LikeTarget, targetIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make(map[uuid.UUID]bool, len(targetIDs))
	for _, id := range targetIDs {
		if _, ok := r.s.d().likes[likeKey{userID, kind, id}]; ok {
			out[id] = true
		}
	}
	return out, nil
}

type categoryRepo struct{ s *Store }

func (r categoryRepo) Create(ctx context.Context, category *models.Category) error {
	r.s.lock()
	defer r.s.unlock()
	for _, c := range r.s.d().categories {
		if c.Slug == category.Slug {
			return repositories.ErrDuplicate
		}
	}
	ensureID(&category.ID)
	r.s.d().categories[category.ID] = *category
	return nil
}

func (r categoryRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Category, error) {
	r.s.lock()
	defer r.s.unlock()
	c, ok := r.s.d().categories[id]
	if !ok {
		return nil, repositories.ErrNotFound
	}
	return &c, nil
}

func (r categoryRepo) List(ctx context.Context) ([]*models.Category, error) {
	r.s.lock()
	defer r.s.unlock()
	out := make([]*models.Category, 0, len(r.s.d().categories))
	for _, c := range r.s.d().categories {
		c := c
		out = append(out, &c)
	}
	sortBy(out, func(a, b *models.Category) int { return strings.Compare(a.Name, b.Name) }, func(c *models.Category) uuid.UUID { return c.ID })
	return out, nil
}

type tagRepo struct{ s *Store }

func (r tagRepo) GetOrCreate(ctx context.Context, name, slug string) (*models.Tag, error) {
	r.s.lock()
	defer r.s.unlock()
	for _, t := range r.s.d().tags {
		if t.Slug == slug {
			return &t, nil
		}
	}
	t := models.Tag{ID: uuid.New(), Name: name, Slug: slug}
	r.s.d().tags[t.ID] = t
	return &t, nil
}

type moderationRepo struct{ s *Store }

func (r moderationRepo) Append(ctx context.Context, action *models.ModerationAction) error {
	r.s.lock()
	defer r.s.unlock()
	r.s.d().moderation = append(r.s.d().moderation, *action)
	return nil
}

// List returns the newest entries first. ULIDs sort by creation time.
func (r moderationRepo) List(ctx context.Context, page repositories.Page) ([]*models.ModerationAction, int64, error) {
	r.s.lock()
	defer r.s.unlock()
	all := r.s.d().moderation
	out := make([]*models.ModerationAction, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		a := all[i]
		out = append(out, &a)
	}
	slices.SortStableFunc(out, func(a, b *models.ModerationAction) int { return strings.Compare(b.ID, a.ID) })
	return paginate(out, page), int64(len(out)), nil
}
