package job

import (
	"time"

	"github.com/hibiken/asynq"

	"github.com/deppfellow/apitour/internal/lib/jsonutil"
)

const (
	TaskWelcome = "email:welcome"
)

type WelcomeEmailPayload struct {
	To       string `json:"to"`
	Username string `json:"username"`
}

func NewWelcomeEmailTask(to, username string) (*asynq.Task, error) {
	payload, err := jsonutil.Marshal(WelcomeEmailPayload{
		To:       to,
		Username: username,
	})
	if err != nil {
		return nil, err
	}

	return asynq.NewTask(
		TaskWelcome,
		payload,
		asynq.MaxRetry(3),
		asynq.Queue("default"),
		asynq.Timeout(30*time.Second),
	), nil
}
