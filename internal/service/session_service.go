package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/vbonduro/venueadmin/internal/adminapi"
	"github.com/vbonduro/venueadmin/internal/domain"
)

// sessionAPI is the subset of adminapi.Client that SessionService requires.
type sessionAPI interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.Identity, error)
}

type SessionService struct {
	api    sessionAPI
	logger *slog.Logger
}

func NewSessionService(api sessionAPI, logger *slog.Logger) *SessionService {
	return &SessionService{api: api, logger: logger}
}

// LoginResult is the outcome of one sign-in attempt. Identity is set only
// when OK is true.
type LoginResult struct {
	OK       bool
	Identity *domain.Identity
	Notice   Notice
}

// SubmitLogin exchanges the credentials for an identity. The fields are
// passed through as typed; the API decides whether they are valid.
func (s *SessionService) SubmitLogin(ctx context.Context, username, password string) LoginResult {
	identity, err := s.api.Login(ctx, domain.Credentials{Username: username, Password: password})
	switch {
	case err == nil:
		s.logger.Info("operator signed in", "venue_id", identity.ID)
		return LoginResult{OK: true, Identity: identity, Notice: successNotice(MsgSignedIn)}
	case errors.Is(err, adminapi.ErrInvalidResponse):
		s.logger.Warn("login response missing identity", "error", err)
		return LoginResult{Notice: errorNotice(MsgInvalidResponse)}
	case errors.Is(err, adminapi.ErrRejected):
		s.logger.Info("login rejected", "error", err)
		return LoginResult{Notice: errorNotice(MsgSignInFailed)}
	default:
		s.logger.Error("error during login", "error", err)
		return LoginResult{Notice: errorNotice(MsgLoginError)}
	}
}
