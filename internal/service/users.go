package service

import (
	"context"

	"github.com/deppfellow/apitour/internal/model"
	"github.com/deppfellow/apitour/internal/server"
)

// WelcomeEnqueuer schedules the welcome email. *job.JobService implements it.
type WelcomeEnqueuer interface {
	EnqueueWelcome(ctx context.Context, to, username string) error
}

type UserService struct {
	server  *server.Server
	welcome WelcomeEnqueuer
}

// NewUserService builds the service; welcome may be nil when background jobs
// are disabled.
func NewUserService(s *server.Server, welcome WelcomeEnqueuer) *UserService {
	return &UserService{
		server:  s,
		welcome: welcome,
	}
}

func fakePasswordHasher(password string) string {
	return "supersecret" + password
}

// Create pretends to persist a new user and returns its stored form.
func (u *UserService) Create(ctx context.Context, in model.UserIn) (model.UserInDB, error) {
	user := model.UserInDB{
		UserBase:       in.UserBase,
		HashedPassword: fakePasswordHasher(in.Password),
	}

	u.server.Logger.Info().
		Str("username", user.Username).
		Msg("User saved! ..not really")

	if u.welcome != nil && user.Email != nil {
		if err := u.welcome.EnqueueWelcome(ctx, *user.Email, user.Username); err != nil {
			// The user exists either way; the email is best effort.
			u.server.Logger.Error().
				Err(err).
				Str("username", user.Username).
				Msg("failed to enqueue welcome email")
		}
	}

	return user, nil
}
