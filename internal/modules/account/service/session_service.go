package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"

	"caltrack/internal/modules/account/domain"
	accountout "caltrack/internal/modules/account/port/out"
	"caltrack/internal/platform/clock"
	"caltrack/internal/platform/logging"
)

// SessionService is the single owner of the persisted credential. Every
// other component receives Session values and never touches storage.
type SessionService struct {
	clock  clock.Clock
	store  accountout.CredentialStore
	logger *slog.Logger
}

func NewSessionService(clock clock.Clock, store accountout.CredentialStore, logger *slog.Logger) *SessionService {
	return &SessionService{clock: clock, store: store, logger: logging.Component(logger, "session")}
}

// Initialize derives the session from persisted storage. A missing token is
// the guest session, not an error. A JWT whose exp claim has passed is
// purged and also yields the guest session.
func (s *SessionService) Initialize(ctx context.Context) (domain.Session, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !creds.HasToken() {
		return domain.Guest(), nil
	}
	claims := inspectToken(creds.Token)
	if !claims.expiresAt.IsZero() && !s.clock.Now().Before(claims.expiresAt) {
		s.logger.Info("persisted token expired, clearing", slog.Time("expired_at", claims.expiresAt))
		if err := s.store.Clear(ctx); err != nil {
			return domain.Session{}, err
		}
		return domain.Guest(), nil
	}
	return domain.Session{
		Authenticated:   true,
		ProfileComplete: creds.ProfileComplete,
		Subject:         claims.subject,
		ExpiresAt:       claims.expiresAt,
	}, nil
}

func (s *SessionService) Login(ctx context.Context, token string, profileComplete bool) (domain.Session, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return domain.Session{}, fmt.Errorf("login response carried no token")
	}
	if err := s.store.Save(ctx, domain.Credentials{Token: token, ProfileComplete: profileComplete}); err != nil {
		return domain.Session{}, err
	}
	claims := inspectToken(token)
	s.logger.Info("logged in", slog.String("subject", claims.subject), slog.Bool("profile_complete", profileComplete))
	return domain.Session{
		Authenticated:   true,
		ProfileComplete: profileComplete,
		Subject:         claims.subject,
		ExpiresAt:       claims.expiresAt,
	}, nil
}

func (s *SessionService) Logout(ctx context.Context) (domain.Session, error) {
	if err := s.store.Clear(ctx); err != nil {
		return domain.Session{}, err
	}
	s.logger.Info("logged out")
	return domain.Guest(), nil
}

// CompleteProfile persists the profile-complete flag for the held token.
func (s *SessionService) CompleteProfile(ctx context.Context) (domain.Session, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return domain.Session{}, err
	}
	if !creds.HasToken() {
		return domain.Guest(), nil
	}
	creds.ProfileComplete = true
	if err := s.store.Save(ctx, creds); err != nil {
		return domain.Session{}, err
	}
	claims := inspectToken(creds.Token)
	return domain.Session{
		Authenticated:   true,
		ProfileComplete: true,
		Subject:         claims.subject,
		ExpiresAt:       claims.expiresAt,
	}, nil
}

// Token implements httpapi.TokenSource.
func (s *SessionService) Token(ctx context.Context) (string, error) {
	creds, err := s.store.Load(ctx)
	if err != nil {
		return "", err
	}
	return creds.Token, nil
}

type tokenClaims struct {
	subject   string
	expiresAt time.Time
}

// inspectToken reads registered claims without verifying the signature;
// the backend remains the authority. Opaque tokens yield zero claims.
func inspectToken(token string) tokenClaims {
	claims := jwt.RegisteredClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return tokenClaims{}
	}
	out := tokenClaims{subject: claims.Subject}
	if claims.ExpiresAt != nil {
		out.expiresAt = claims.ExpiresAt.Time
	}
	return out
}
