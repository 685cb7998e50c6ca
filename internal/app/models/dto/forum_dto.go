package dto

import (
	"github.com/alumniconnect/platform/internal/app/models"
	"github.com/google/uuid"
)

// CreatePostRequest is a new forum post
type CreatePostRequest struct {
	Title      string            `json:"title" binding:"required,max=300"`
	Content    string            `json:"content" binding:"required,max=50000"`
	Excerpt    *string           `json:"excerpt" binding:"omitempty,max=500"`
	CategoryID uuid.UUID         `json:"categoryId" binding:"required"`
	Tags       []string          `json:"tags" binding:"max=10,dive,max=40"`
	Status     models.PostStatus `json:"status"`
}

// UpdatePostRequest changes only the fields that are set
type UpdatePostRequest struct {
	Title      *string            `json:"title" binding:"omitempty,max=300"`
	Content    *string            `json:"content" binding:"omitempty,max=50000"`
	Excerpt    *string            `json:"excerpt" binding:"omitempty,max=500"`
	CategoryID *uuid.UUID         `json:"categoryId"`
	Tags       []string           `json:"tags" binding:"max=10,dive,max=40"`
	Status     *models.PostStatus `json:"status"`
}

// CreateCommentRequest is a comment or a reply to a top-level comment
type CreateCommentRequest struct {
	Content  string     `json:"content" binding:"required,max=5000"`
	ParentID *uuid.UUID `json:"parentId"`
}

// ToggleLikeRequest names the liked target
type ToggleLikeRequest struct {
	TargetID uuid.UUID         `json:"targetId" binding:"required"`
	Kind     models.LikeTarget `json:"kind" binding:"required"`
}

// CreateCategoryRequest is an admin-defined forum category
type CreateCategoryRequest struct {
	Name        string  `json:"name" binding:"required,max=80"`
	Slug        string  `json:"slug" binding:"omitempty,max=80"`
	Description *string `json:"description" binding:"omitempty,max=500"`
	Color       *string `json:"color" binding:"omitempty,hexcolor"`
}

// PostListQuery filters the forum
type PostListQuery struct {
	PageQuery
	CategoryID string `form:"categoryId" binding:"omitempty,uuid"`
	AuthorID   string `form:"authorId" binding:"omitempty,uuid"`
	Tag        string `form:"tag" binding:"max=40"`
	Search     string `form:"search" binding:"max=100"`
}

// PostView is a post with author, category and engagement counts
type PostView struct {
	models.Post
	Author       *UserSummary     `json:"author,omitempty"`
	Category     *models.Category `json:"category,omitempty"`
	LikeCount    int64            `json:"likeCount"`
	CommentCount int64            `json:"commentCount"`
	IsLiked      bool             `json:"isLiked"`
}

// CommentView is a comment with its replies, one level deep
type CommentView struct {
	models.Comment
	Author    *UserSummary   `json:"author,omitempty"`
	LikeCount int64          `json:"likeCount"`
	IsLiked   bool           `json:"isLiked"`
	Replies   []*CommentView `json:"replies,omitempty"`
}

// CategoryView is a category with its published post count
type CategoryView struct {
	models.Category
	PostCount int64 `json:"postCount"`
}
