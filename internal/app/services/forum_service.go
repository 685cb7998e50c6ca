package services

import (
	"context"
	"errors"
	"fmt"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/app/repositories"
	"github.com/alumniconnect/platform/internal/pkg/apperrors"
	"github.com/alumniconnect/platform/internal/pkg/helpers"
	"github.com/alumniconnect/platform/internal/pkg/metrics"
	"github.com/alumniconnect/platform/internal/pkg/sanitize"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// ExcerptLength is the number of runes kept for a generated post excerpt.
const ExcerptLength = 200

// ForumService runs the discussion forum.
type ForumService struct {
	base
}

// NewForumService creates a new ForumService
func NewForumService(store repositories.Store, cfg Config, logger zerolog.Logger) *ForumService {
	return &ForumService{base: newBase(store, cfg, logger, "forum")}
}

func excerptOf(content string, explicit *string) string {
	if explicit != nil {
		if e := sanitize.Text(*explicit); e != "" {
			return e
		}
	}
	return helpers.Truncate(sanitize.Text(content), ExcerptLength)
}

// connectTags resolves tag names to tags, creating missing ones by slug.
func connectTags(ctx context.Context, tx repositories.Store, names []string) ([]uuid.UUID, error) {
	seen := map[string]struct{}{}
	var ids []uuid.UUID
	for _, raw := range names {
		name := sanitize.Text(raw)
		slug := helpers.Slugify(name)
		if slug == "" {
			continue
		}
		if _, ok := seen[slug]; ok {
			continue
		}
		seen[slug] = struct{}{}
		tag, err := tx.Tags().GetOrCreate(ctx, name, slug)
		if err != nil {
			return nil, fmt.Errorf("tag %q: %w", slug, err)
		}
		ids = append(ids, tag.ID)
	}
	return ids, nil
}

// CreatePost publishes a post in an existing category.
func (s *ForumService) CreatePost(ctx context.Context, caller *appAuth.Caller, req dto.CreatePostRequest) (_ *dto.PostView, err error) {
	ctx, span := s.startSpan(ctx, "forum.CreatePost")
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	title := sanitize.Text(req.Title)
	if title == "" {
		return nil, apperrors.NewValidationError("title", "title is required")
	}
	content := sanitize.HTML(req.Content)
	if sanitize.Text(content) == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}
	status := req.Status
	if status == "" {
		status = models.PostPublished
	}
	if !status.Valid() {
		return nil, apperrors.NewValidationError("status", "unknown post status")
	}

	now := s.now()
	post := &models.Post{
		ID:         uuid.New(),
		UserID:     caller.ID,
		CategoryID: req.CategoryID,
		Title:      title,
		Content:    content,
		Excerpt:    excerptOf(content, req.Excerpt),
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		if _, err := tx.Categories().GetByID(ctx, req.CategoryID); err != nil {
			return notFound(err, "category", req.CategoryID)
		}
		if err := tx.Posts().Create(ctx, post); err != nil {
			return fmt.Errorf("create post: %w", err)
		}
		tagIDs, err := connectTags(ctx, tx, req.Tags)
		if err != nil {
			return err
		}
		return tx.Posts().SetTags(ctx, post.ID, tagIDs)
	})
	if err != nil {
		return nil, wrap(err, "create post")
	}

	s.logger.Info().Str("postID", post.ID.String()).Str("authorID", caller.ID.String()).Msg("Post created")
	stored, err := s.store.Posts().GetByID(ctx, post.ID)
	if err != nil {
		return nil, notFound(err, "post", post.ID)
	}
	return s.postView(ctx, caller, stored)
}

// UpdatePost edits a post; tags are replaced when given.
func (s *ForumService) UpdatePost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostView, error) {
	err := s.store.WithTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return notFound(err, "post", postID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, p.UserID, "post"); err != nil {
			return err
		}
		if req.Title != nil {
			title := sanitize.Text(*req.Title)
			if title == "" {
				return apperrors.NewValidationError("title", "title must not be empty")
			}
			p.Title = title
		}
		if req.Content != nil {
			p.Content = sanitize.HTML(*req.Content)
			p.Excerpt = excerptOf(p.Content, req.Excerpt)
		} else if req.Excerpt != nil {
			p.Excerpt = excerptOf(p.Content, req.Excerpt)
		}
		if req.Status != nil {
			if !req.Status.Valid() {
				return apperrors.NewValidationError("status", "unknown post status")
			}
			p.Status = *req.Status
		}
		if req.CategoryID != nil {
			if _, err := tx.Categories().GetByID(ctx, *req.CategoryID); err != nil {
				return notFound(err, "category", *req.CategoryID)
			}
			p.CategoryID = *req.CategoryID
		}
		p.UpdatedAt = s.now()
		if err := tx.Posts().Update(ctx, p); err != nil {
			return fmt.Errorf("update post: %w", err)
		}
		if req.Tags != nil {
			tagIDs, err := connectTags(ctx, tx, req.Tags)
			if err != nil {
				return err
			}
			return tx.Posts().SetTags(ctx, postID, tagIDs)
		}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "update post")
	}
	p, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}
	return s.postView(ctx, caller, p)
}

// DeletePost removes a post with its comments and likes.
func (s *ForumService) DeletePost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) error {
	return wrap(s.store.WithTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return notFound(err, "post", postID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, p.UserID, "post"); err != nil {
			return err
		}
		return tx.Posts().Delete(ctx, postID)
	}), "delete post")
}

func canSeePost(caller *appAuth.Caller, p *models.Post) bool {
	return p.Status == models.PostPublished || caller.Is(p.UserID) || caller.IsAdmin()
}

// GetPost returns a post and counts the view.
func (s *ForumService) GetPost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) (*dto.PostView, error) {
	p, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}
	if !canSeePost(caller, p) {
		return nil, apperrors.NewNotFoundError("post", postID)
	}
	s.bestEffort(ctx, "post views", func(ctx context.Context) error {
		if err := s.store.Posts().IncrementViews(ctx, postID); err != nil {
			return err
		}
		p.Views++
		return nil
	})
	return s.postView(ctx, caller, p)
}

func (s *ForumService) postView(ctx context.Context, caller *appAuth.Caller, p *models.Post) (*dto.PostView, error) {
	views, err := s.postViews(ctx, caller, []*models.Post{p})
	if err != nil {
		return nil, err
	}
	return views[0], nil
}

func (s *ForumService) postViews(ctx context.Context, caller *appAuth.Caller, posts []*models.Post) ([]*dto.PostView, error) {
	ids := make([]uuid.UUID, len(posts))
	authors := make([]uuid.UUID, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		authors[i] = p.UserID
	}
	users, err := summaries(ctx, s.store, authors)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.Likes().CountMany(ctx, models.LikePost, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	liked := map[uuid.UUID]bool{}
	if caller != nil {
		if liked, err = s.store.Likes().LikedBy(ctx, caller.ID, models.LikePost, ids); err != nil {
			return nil, fmt.Errorf("load likes: %w", err)
		}
	}
	categories, err := s.categoryIndex(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]*dto.PostView, len(posts))
	for i, p := range posts {
		comments, err := s.store.Comments().CountByPost(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("count comments: %w", err)
		}
		if p.Tags == nil {
			p.Tags = []models.Tag{}
		}
		out[i] = &dto.PostView{
			Post:         *p,
			Author:       users[p.UserID],
			Category:     categories[p.CategoryID],
			LikeCount:    likes[p.ID],
			CommentCount: comments,
			IsLiked:      liked[p.ID],
		}
	}
	return out, nil
}

func (s *ForumService) categoryIndex(ctx context.Context) (map[uuid.UUID]*models.Category, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	out := make(map[uuid.UUID]*models.Category, len(categories))
	for _, c := range categories {
		out[c.ID] = c
	}
	return out, nil
}

// ListPosts lists published posts, newest first.
func (s *ForumService) ListPosts(ctx context.Context, caller *appAuth.Caller, q dto.PostListQuery) (*dto.PaginatedResponse[*dto.PostView], error) {
	published := models.PostPublished
	filter := repositories.PostFilter{Status: &published, Search: q.Search, TagSlug: helpers.Slugify(q.Tag)}
	var err error
	if filter.CategoryID, err = parseUUIDParam("categoryId", q.CategoryID); err != nil {
		return nil, err
	}
	if filter.UserID, err = parseUUIDParam("authorId", q.AuthorID); err != nil {
		return nil, err
	}

	page, pageNum, size := pageOf(q.PageQuery)
	posts, total, err := s.store.Posts().List(ctx, filter, page)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	views, err := s.postViews(ctx, caller, posts)
	if err != nil {
		return nil, err
	}
	return paginated(views, total, pageNum, size), nil
}

// ToggleLike flips the caller's like on a post or comment.
func (s *ForumService) ToggleLike(ctx context.Context, caller *appAuth.Caller, req dto.ToggleLikeRequest) (_ *dto.LikeResult, err error) {
	ctx, span := s.startSpan(ctx, "forum.ToggleLike", idAttr("target.id", req.TargetID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	if !req.Kind.Valid() {
		return nil, apperrors.NewValidationError("kind", "kind must be POST or COMMENT")
	}

	var result dto.LikeResult
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		switch req.Kind {
		case models.LikePost:
			if _, err := tx.Posts().GetByID(ctx, req.TargetID); err != nil {
				return notFound(err, "post", req.TargetID)
			}
		case models.LikeComment:
			if _, err := tx.Comments().GetByID(ctx, req.TargetID); err != nil {
				return notFound(err, "comment", req.TargetID)
			}
		}

		removed, err := tx.Likes().Delete(ctx, caller.ID, req.Kind, req.TargetID)
		if err != nil {
			return fmt.Errorf("delete like: %w", err)
		}
		if !removed {
			like := &models.Like{ID: uuid.New(), UserID: caller.ID, Kind: req.Kind, TargetID: req.TargetID, CreatedAt: s.now()}
			if _, err := tx.Likes().Create(ctx, like); err != nil {
				return fmt.Errorf("create like: %w", err)
			}
		}
		count, err := tx.Likes().Count(ctx, req.Kind, req.TargetID)
		if err != nil {
			return fmt.Errorf("count likes: %w", err)
		}
		result = dto.LikeResult{Liked: !removed, LikeCount: count}
		return nil
	})
	if err != nil {
		return nil, wrap(err, "toggle like")
	}
	kind := "post"
	if req.Kind == models.LikeComment {
		kind = "comment"
	}
	metrics.TogglesTotal.WithLabelValues(kind, toggleState(result.Liked)).Inc()
	return &result, nil
}

// CreateComment adds a comment, or a reply to a top-level comment on the same post.
func (s *ForumService) CreateComment(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID, req dto.CreateCommentRequest) (_ *dto.CommentView, err error) {
	ctx, span := s.startSpan(ctx, "forum.CreateComment", idAttr("post.id", postID))
	defer func() { endSpan(span, err) }()

	if err := appAuth.RequireAuthenticated(caller); err != nil {
		return nil, err
	}
	content := sanitize.Text(req.Content)
	if content == "" {
		return nil, apperrors.NewValidationError("content", "content is required")
	}

	var comment *models.Comment
	err = s.store.WithTx(ctx, func(tx repositories.Store) error {
		p, err := tx.Posts().GetByID(ctx, postID)
		if err != nil {
			return notFound(err, "post", postID)
		}
		if p.Status != models.PostPublished {
			return apperrors.NewStateError("comments are closed on this post").WithDetail("status", string(p.Status))
		}
		if req.ParentID != nil {
			parent, err := tx.Comments().GetByID(ctx, *req.ParentID)
			if err != nil {
				return notFound(err, "comment", *req.ParentID)
			}
			if parent.PostID != postID {
				return apperrors.NewValidationError("parentId", "parent comment belongs to another post")
			}
			if parent.ParentID != nil {
				return apperrors.NewValidationError("parentId", "replies can only be made to top-level comments")
			}
		}
		now := s.now()
		c := &models.Comment{
			ID:        uuid.New(),
			PostID:    postID,
			UserID:    caller.ID,
			ParentID:  req.ParentID,
			Content:   content,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := tx.Comments().Create(ctx, c); err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		comment = c
		return nil
	})
	if err != nil {
		return nil, wrap(err, "create comment")
	}
	users, err := summaries(ctx, s.store, []uuid.UUID{caller.ID})
	if err != nil {
		return nil, err
	}
	return &dto.CommentView{Comment: *comment, Author: users[caller.ID]}, nil
}

// DeleteComment removes a comment with its replies.
func (s *ForumService) DeleteComment(ctx context.Context, caller *appAuth.Caller, commentID uuid.UUID) error {
	return wrap(s.store.WithTx(ctx, func(tx repositories.Store) error {
		c, err := tx.Comments().GetByID(ctx, commentID)
		if err != nil {
			return notFound(err, "comment", commentID)
		}
		if err := appAuth.RequireOwnerOrAdmin(caller, c.UserID, "comment"); err != nil {
			return err
		}
		return tx.Comments().Delete(ctx, commentID)
	}), "delete comment")
}

// ListComments returns a post's top-level comments, oldest first, each with
// its replies.
func (s *ForumService) ListComments(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) ([]*dto.CommentView, error) {
	p, err := s.store.Posts().GetByID(ctx, postID)
	if err != nil {
		return nil, notFound(err, "post", postID)
	}
	if !canSeePost(caller, p) {
		return nil, apperrors.NewNotFoundError("post", postID)
	}
	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}

	ids := make([]uuid.UUID, len(comments))
	authors := make([]uuid.UUID, len(comments))
	for i, c := range comments {
		ids[i] = c.ID
		authors[i] = c.UserID
	}
	users, err := summaries(ctx, s.store, authors)
	if err != nil {
		return nil, err
	}
	likes, err := s.store.Likes().CountMany(ctx, models.LikeComment, ids)
	if err != nil {
		return nil, fmt.Errorf("count likes: %w", err)
	}
	liked := map[uuid.UUID]bool{}
	if caller != nil {
		if liked, err = s.store.Likes().LikedBy(ctx, caller.ID, models.LikeComment, ids); err != nil {
			return nil, fmt.Errorf("load likes: %w", err)
		}
	}

	byID := make(map[uuid.UUID]*dto.CommentView, len(comments))
	roots := make([]*dto.CommentView, 0, len(comments))
	for _, c := range comments {
		v := &dto.CommentView{Comment: *c, Author: users[c.UserID], LikeCount: likes[c.ID], IsLiked: liked[c.ID]}
		byID[c.ID] = v
		if c.ParentID == nil {
			roots = append(roots, v)
		}
	}
	for _, c := range comments {
		if c.ParentID == nil {
			continue
		}
		if parent, ok := byID[*c.ParentID]; ok {
			parent.Replies = append(parent.Replies, byID[c.ID])
		}
	}
	return roots, nil
}

// ListCategories returns every category with its published post count.
func (s *ForumService) ListCategories(ctx context.Context) ([]*dto.CategoryView, error) {
	categories, err := s.store.Categories().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	counts, err := s.store.Posts().CountByCategory(ctx)
	if err != nil {
		return nil, fmt.Errorf("count posts: %w", err)
	}
	out := make([]*dto.CategoryView, len(categories))
	for i, c := range categories {
		out[i] = &dto.CategoryView{Category: *c, PostCount: counts[c.ID]}
	}
	return out, nil
}

// CreateCategory adds a forum category. Admin only.
func (s *ForumService) CreateCategory(ctx context.Context, caller *appAuth.Caller, req dto.CreateCategoryRequest) (*models.Category, error) {
	if err := appAuth.RequireAdmin(caller); err != nil {
		return nil, err
	}
	name := sanitize.Text(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("name", "name is required")
	}
	slug := helpers.Slugify(req.Slug)
	if slug == "" {
		slug = helpers.Slugify(name)
	}
	if slug == "" {
		return nil, apperrors.NewValidationError("slug", "slug must contain letters or digits")
	}
	category := &models.Category{
		ID:          uuid.New(),
		Name:        name,
		Slug:        slug,
		Description: cleanText(req.Description),
		Color:       trimOptional(req.Color),
		CreatedAt:   s.now(),
	}
	if err := s.store.Categories().Create(ctx, category); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return nil, apperrors.NewConflictError("category slug already in use").WithDetail("slug", slug)
		}
		return nil, fmt.Errorf("create category: %w", err)
	}
	s.logger.Info().Str("categoryID", category.ID.String()).Str("slug", slug).Msg("Category created")
	return category, nil
}
