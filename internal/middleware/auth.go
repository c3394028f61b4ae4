package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/deppfellow/apitour/internal/errs"
	"github.com/deppfellow/apitour/internal/server"
	"github.com/deppfellow/apitour/internal/service"
)

// AuthMiddleware resolves "Authorization: Bearer <token>" to a user through
// the auth service.
type AuthMiddleware struct {
	server *server.Server
	auth   *service.AuthService
}

func NewAuthMiddleware(s *server.Server, auth *service.AuthService) *AuthMiddleware {
	return &AuthMiddleware{
		server: s,
		auth:   auth,
	}
}

// bearerToken returns the credentials of a Bearer authorization header.
func bearerToken(r *http.Request) (string, bool) {
	scheme, token, found := strings.Cut(r.Header.Get(echo.HeaderAuthorization), " ")
	if !found || !strings.EqualFold(scheme, "bearer") || token == "" {
		return "", false
	}
	return token, true
}

// RequireAuth rejects requests without a valid token of an active user and
// stores the user under CurrentUserKey for the handler.
func (auth *AuthMiddleware) RequireAuth(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		logger := GetLogger(c)

		token, ok := bearerToken(c.Request())
		if !ok {
			return errs.NewUnauthorizedError("Not authenticated")
		}

		user, err := auth.auth.UserForToken(c.Request().Context(), token)
		if err != nil {
			logger.Warn().
				Str("function", "RequireAuth").
				Dur("duration", time.Since(start)).
				Msg("could not resolve bearer token")
			return err
		}

		if user.Disabled {
			return errs.NewBadRequestError("Inactive user")
		}

		c.Set(UserIDKey, user.Username)
		c.Set(CurrentUserKey, user)

		logger.Debug().
			Str("function", "RequireAuth").
			Str("user_id", user.Username).
			Dur("duration", time.Since(start)).
			Msg("user authenticated successfully")

		return next(c)
	}
}
