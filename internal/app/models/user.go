package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the platform-wide role of a user.
type Role string

const (
	RoleAlumni     Role = "ALUMNI"
	RoleSuperAdmin Role = "SUPER_ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleAlumni || r == RoleSuperAdmin
}

// UserStatus gates whether a user may sign in and act.
type UserStatus string

const (
	UserActive              UserStatus = "ACTIVE"
	UserSuspended           UserStatus = "SUSPENDED"
	UserInactive            UserStatus = "INACTIVE"
	UserPendingVerification UserStatus = "PENDING_VERIFICATION"
)

var userTransitions = transitionTable[UserStatus]{
	UserActive:              {UserSuspended, UserInactive},
	UserSuspended:           {UserActive, UserInactive},
	UserPendingVerification: {UserActive, UserInactive},
	UserInactive:            {UserActive},
}

// CanTransitionTo reports whether an admin may move a user from s to next.
func (s UserStatus) CanTransitionTo(next UserStatus) bool {
	return userTransitions.allows(s, next)
}

// User defines the user model based on the 'users' table
type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	Password    string     `json:"-" db:"password"` // bcrypt hash
	Role        Role       `json:"role" db:"role"`
	Status      UserStatus `json:"status" db:"status"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt   time.Time  `json:"updatedAt" db:"updated_at"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty" db:"last_login_at"`

	Profile *Profile `json:"profile,omitempty"` // Relation, no db tag
}

// Profile is the one-to-one public profile of a user.
type Profile struct {
	UserID          uuid.UUID `json:"userId" db:"user_id"`
	FullName        string    `json:"fullName" db:"full_name"`
	Avatar          *string   `json:"avatar,omitempty" db:"avatar"`
	CurrentPosition *string   `json:"currentPosition,omitempty" db:"current_position"`
	CurrentCompany  *string   `json:"currentCompany,omitempty" db:"current_company"`
	Bio             *string   `json:"bio,omitempty" db:"bio"`
	GraduationYear  *int      `json:"graduationYear,omitempty" db:"graduation_year"`
	UpdatedAt       time.Time `json:"updatedAt" db:"updated_at"`
}
