package controllers

import (
	"context"

	appAuth "github.com/alumniconnect/platform/internal/app/auth"
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ForumGraph is the posts, comments, likes and categories surface.
type ForumGraph interface {
	CreatePost(ctx context.Context, caller *appAuth.Caller, req dto.CreatePostRequest) (*dto.PostView, error)
	UpdatePost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID, req dto.UpdatePostRequest) (*dto.PostView, error)
	DeletePost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) error
	GetPost(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) (*dto.PostView, error)
	ListPosts(ctx context.Context, caller *appAuth.Caller, q dto.PostListQuery) (*dto.PaginatedResponse[*dto.PostView], error)
	ToggleLike(ctx context.Context, caller *appAuth.Caller, req dto.ToggleLikeRequest) (*dto.LikeResult, error)
	CreateComment(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID, req dto.CreateCommentRequest) (*dto.CommentView, error)
	DeleteComment(ctx context.Context, caller *appAuth.Caller, commentID uuid.UUID) error
	ListComments(ctx context.Context, caller *appAuth.Caller, postID uuid.UUID) ([]*dto.CommentView, error)
	ListCategories(ctx context.Context) ([]*dto.CategoryView, error)
	CreateCategory(ctx context.Context, caller *appAuth.Caller, req dto.CreateCategoryRequest) (*models.Category, error)
}

// ForumController serves /posts, /comments, /likes and /categories
type ForumController struct {
	forum ForumGraph
}

// NewForumController creates a new ForumController
func NewForumController(forum ForumGraph) *ForumController {
	return &ForumController{forum: forum}
}

func (fc *ForumController) CreatePost(c *gin.Context) {
	var req dto.CreatePostRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.forum.CreatePost(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Post created")
}

func (fc *ForumController) UpdatePost(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePostRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.forum.UpdatePost(c.Request.Context(), middleware.Caller(c), id, req)
	reply(c, res, err)
}

func (fc *ForumController) DeletePost(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := fc.forum.DeletePost(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Post deleted")
}

func (fc *ForumController) GetPost(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := fc.forum.GetPost(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (fc *ForumController) ListPosts(c *gin.Context) {
	var q dto.PostListQuery
	if !middleware.BindQuery(c, &q) {
		return
	}
	res, err := fc.forum.ListPosts(c.Request.Context(), middleware.Caller(c), q)
	reply(c, res, err)
}

func (fc *ForumController) ToggleLike(c *gin.Context) {
	var req dto.ToggleLikeRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.forum.ToggleLike(c.Request.Context(), middleware.Caller(c), req)
	reply(c, res, err)
}

func (fc *ForumController) CreateComment(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	var req dto.CreateCommentRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.forum.CreateComment(c.Request.Context(), middleware.Caller(c), id, req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Comment added")
}

func (fc *ForumController) DeleteComment(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	if err := fc.forum.DeleteComment(c.Request.Context(), middleware.Caller(c), id); err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	done(c, "Comment deleted")
}

func (fc *ForumController) ListComments(c *gin.Context) {
	id, ok := middleware.UUIDParam(c, "id")
	if !ok {
		return
	}
	res, err := fc.forum.ListComments(c.Request.Context(), middleware.Caller(c), id)
	reply(c, res, err)
}

func (fc *ForumController) ListCategories(c *gin.Context) {
	res, err := fc.forum.ListCategories(c.Request.Context())
	reply(c, res, err)
}

func (fc *ForumController) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !middleware.BindJSON(c, &req) {
		return
	}
	res, err := fc.forum.CreateCategory(c.Request.Context(), middleware.Caller(c), req)
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	created(c, res, "Category created")
}
