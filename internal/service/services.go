package service

import (
	"github.com/deppfellow/apitour/internal/lib/job"
	"github.com/deppfellow/apitour/internal/repository"
	"github.com/deppfellow/apitour/internal/server"
)

type Services struct {
	Auth  *AuthService
	Users *UserService
	Items *ItemService
	Job   *job.JobService
}

func NewServices(s *server.Server, repos *repository.Repositories) (*Services, error) {
	var enqueuer WelcomeEnqueuer
	if s.Job != nil {
		enqueuer = s.Job
	}

	return &Services{
		Job:   s.Job,
		Auth:  NewAuthService(s, repos.Users),
		Users: NewUserService(s, enqueuer),
		Items: NewItemService(s, repos),
	}, nil
}
