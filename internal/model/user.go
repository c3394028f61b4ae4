package model

import "github.com/deppfellow/apitour/internal/schema"

type UserBase struct {
	schema.Fields `json:"-"`

	Username string  `json:"username"`
	Email    *string `json:"email" validate:"omitempty,email"`
	FullName *string `json:"full_name"`
}

// UserIn is the registration payload.
type UserIn struct {
	UserBase

	Password string `json:"password"`
}

// UserOut is what the API returns about a user; it never carries a
// password.
type UserOut struct {
	UserBase
}

// UserInDB is the stored form.
type UserInDB struct {
	UserBase

	HashedPassword string `json:"hashed_password"`
	Disabled       bool   `json:"disabled" default:"false"`
}

// AccountUser is the authenticated principal returned by /secure/users/me.
type AccountUser struct {
	schema.Fields `json:"-"`

	Username string  `json:"username"`
	Email    *string `json:"email"`
	FullName *string `json:"full_name"`
	Disabled *bool   `json:"disabled"`
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
