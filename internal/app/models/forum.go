package models

import (
	"time"

	"github.com/google/uuid"
)

type PostStatus string

const (
	PostPublished PostStatus = "PUBLISHED"
	PostDraft     PostStatus = "DRAFT"
	PostArchived  PostStatus = "ARCHIVED"
)

func (s PostStatus) Valid() bool {
	return s == PostPublished || s == PostDraft || s == PostArchived
}

// Category groups forum posts.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description *string   `json:"description,omitempty" db:"description"`
	Color       *string   `json:"color,omitempty" db:"color"`
	CreatedAt   time.Time `json:"createdAt" db:"created_at"`
}

// Tag is created on first use and matched by slug afterwards.
type Tag struct {
	ID   uuid.UUID `json:"id" db:"id"`
	Name string    `json:"name" db:"name"`
	Slug string    `json:"slug" db:"slug"`
}

type Post struct {
	ID         uuid.UUID  `json:"id" db:"id"`
	UserID     uuid.UUID  `json:"userId" db:"user_id"`
	CategoryID uuid.UUID  `json:"categoryId" db:"category_id"`
	Title      string     `json:"title" db:"title"`
	Content    string     `json:"content" db:"content"`
	Excerpt    string     `json:"excerpt" db:"excerpt"`
	Status     PostStatus `json:"status" db:"status"`
	Views      int64      `json:"views" db:"views"`
	Tags       []Tag      `json:"tags"` // Relation, no db tag
	CreatedAt  time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt  time.Time  `json:"updatedAt" db:"updated_at"`
}

// Comment is top-level when ParentID is nil, otherwise a reply to a top-level comment.
type Comment struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	PostID    uuid.UUID  `json:"postId" db:"post_id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	ParentID  *uuid.UUID `json:"parentId,omitempty" db:"parent_id"`
	Content   string     `json:"content" db:"content"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time  `json:"updatedAt" db:"updated_at"`
}

// LikeTarget is the kind of entity a like points at.
type LikeTarget string

const (
	LikePost    LikeTarget = "POST"
	LikeComment LikeTarget = "COMMENT"
)

func (k LikeTarget) Valid() bool {
	return k == LikePost || k == LikeComment
}

// Like is unique per (user, kind, target).
type Like struct {
	ID        uuid.UUID  `json:"id" db:"id"`
	UserID    uuid.UUID  `json:"userId" db:"user_id"`
	Kind      LikeTarget `json:"kind" db:"kind"`
	TargetID  uuid.UUID  `json:"targetId" db:"target_id"`
	CreatedAt time.Time  `json:"createdAt" db:"created_at"`
}
