package service

import (
	"context"

	"github.com/pkg/errors"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/repository"
	"github.com/deppfellow/apitour/internal/server"
)

// AuthService implements the password-bearer flow against the user store.
// Tokens are usernames and hashes are prefixed strings; nothing here is
// cryptographic.
type AuthService struct {
	server *server.Server
	users  repository.Store[model.UserInDB]
}

func NewAuthService(s *server.Server, users repository.Store[model.UserInDB]) *AuthService {
	return &AuthService{
		server: s,
		users:  users,
	}
}

func fakeHashPassword(password string) string {
	return "fakehashed" + password
}

// Login exchanges credentials for a bearer token.
func (a *AuthService) Login(ctx context.Context, username, password string) (model.Token, error) {
	user, err := a.users.Get(ctx, username)
	if errors.Is(err, repository.ErrNotFound) {
		return model.Token{}, errs.NewBadRequestError("Incorrect username or password")
	}
	if err != nil {
		return model.Token{}, err
	}

	if fakeHashPassword(password) != user.HashedPassword {
		return model.Token{}, errs.NewBadRequestError("Incorrect username or password")
	}

	a.server.Logger.Info().
		Str("username", user.Username).
		Msg("issued access token")

	return model.Token{AccessToken: user.Username, TokenType: "bearer"}, nil
}

// UserForToken resolves a bearer token to its user.
func (a *AuthService) UserForToken(ctx context.Context, token string) (model.UserInDB, error) {
	user, err := a.users.Get(ctx, token)
	if errors.Is(err, repository.ErrNotFound) {
		return model.UserInDB{}, errs.NewUnauthorizedError("Invalid authentication credentials")
	}
	if err != nil {
		return model.UserInDB{}, err
	}
	return user, nil
}
