package account

import (
	"errors"
	"time"

	"github.com/MarcGrol/cafeshop/services/accountapi"
)

var (
	ErrConflict           = errors.New("user already exists")
	ErrMissingCredentials = errors.New("email and password are required")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// User is stored under its normalised email, which keeps emails unique.
type User struct {
	UID          string
	Email        string
	Name         string
	PasswordHash string `datastore:",noindex" json:",omitempty"`
	CreatedAt    time.Time
}

func (u User) toAPI() accountapi.User {
	return accountapi.User{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

// Session is stored under the fingerprint of its token, never under the token itself.
type Session struct {
	UID       string
	UserUID   string
	Email     string
	Name      string
	CreatedAt time.Time
	ExpiresAt time.Time
}

func (s Session) isValidAt(now time.Time) bool {
	return s.Email != "" && now.Before(s.ExpiresAt)
}

func (s Session) toIdentity() accountapi.Identity {
	return accountapi.Identity{
		UserUID: s.UserUID,
		Email:   s.Email,
		Name:    s.Name,
	}
}

type RegisterRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Name     string `json:"name" form:"name"`
}

type LoginRequest struct {
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	CallbackURL string `json:"-" form:"callbackUrl"`
}

// UserResponse is what leaves the service: never the password hash.
type UserResponse struct {
	UID       string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
}

func userToResponse(u User) UserResponse {
	return UserResponse{
		UID:       u.UID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
	}
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type SessionResponse struct {
	UserUID string `json:"userId"`
	Email   string `json:"email"`
	Name    string `json:"name"`
}
