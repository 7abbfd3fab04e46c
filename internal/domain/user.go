package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// User represents a registered user of the platform. Username is the user's
// own LeetCode handle; FollowingLeetCode holds the handles of externally
// tracked users (not local accounts).
type User struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email             string         `json:"email" gorm:"uniqueIndex;not null"`
	Username          string         `json:"username" gorm:"uniqueIndex;not null"`
	PasswordHash      string         `json:"-" gorm:"not null"`
	FirstName         string         `json:"first_name"`
	LastName          string         `json:"last_name"`
	FollowingLeetCode pq.StringArray `json:"following_leetcode" gorm:"type:text[]"`
	CreatedAt         time.Time      `json:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at"`
}

// TableName specifies the table name for GORM
func (User) TableName() string {
	return "users"
}

// IsFollowing reports whether the user already follows the given LeetCode username
func (u *User) IsFollowing(leetcodeUsername string) bool {
	for _, name := range u.FollowingLeetCode {
		if name == leetcodeUsername {
			return true
		}
	}
	return false
}

// UserRepository defines the interface for user data access
// This abstraction allows for easy testing and swapping implementations
type UserRepository interface {
	Create(user *User) error
	FindByID(id uuid.UUID) (*User, error)
	FindByEmail(email string) (*User, error)
	FindByUsername(username string) (*User, error)
	Update(user *User) error
	Delete(id uuid.UUID) error
	GetFollowedUsernames(userID uuid.UUID) ([]string, error)
}

// UserCreateRequest represents the data needed to create a new user
type UserCreateRequest struct {
	Email     string `json:"email" binding:"required,email"`
	Username  string `json:"username" binding:"required,min=1,max=50"`
	Password  string `json:"password" binding:"required,min=8"`
	FirstName string `json:"first_name" binding:"max=50"`
	LastName  string `json:"last_name" binding:"max=50"`
}

// UserResponse represents the public user data returned by the API
type UserResponse struct {
	ID             uuid.UUID `json:"id"`
	Email          string    `json:"email"`
	Username       string    `json:"username"`
	FirstName      string    `json:"first_name"`
	LastName       string    `json:"last_name"`
	FollowingCount int       `json:"following_count"`
	CreatedAt      time.Time `json:"created_at"`
}

// ToResponse converts a User to a UserResponse (hides sensitive data)
func (u *User) ToResponse() UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FollowingCount: len(u.FollowingLeetCode),
		CreatedAt:      u.CreatedAt,
	}
}

// RequesterIdentity is the already-resolved identity of the user asking for a
// personalized leaderboard. The engine never touches tokens itself.
type RequesterIdentity struct {
	ID        uuid.UUID
	Username  string
	FirstName string
	LastName  string
}
