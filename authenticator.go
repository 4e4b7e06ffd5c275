package microblog

import (
	"context"
)

// Auther implements Authenticator on top of an identity provider and
// the session token service.
type Auther struct {
	provider IdentityProvider
	tokens   TokenService
	logger   Logger
}

var _ Authenticator = (*Auther)(nil)

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, cfg Config) *Auther {
	return &Auther{
		provider: provider,
		tokens:   NewTokenService(cfg, defLogger{}),
		logger:   defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the default token service
func (s *Auther) WithTokenService(tokens TokenService) *Auther {
	if tokens != nil {
		s.tokens = tokens
	}
	return s
}

// Login verifies the credentials and returns a signed session token
func (s *Auther) Login(ctx context.Context, identifier, password string) (string, error) {
	user, err := s.provider.VerifyIdentity(ctx, identifier, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", err
	}

	if user == nil {
		s.logger.Error("Login identity is nil")
		return "", ErrIdentityNotFound
	}

	return s.tokens.Generate(user)
}

// IssueToken mints a session token for an already verified user. Used by
// sign-up to sign the new account in without a second credential check.
func (s *Auther) IssueToken(user *User) (string, error) {
	if user == nil {
		return "", ErrIdentityNotFound
	}
	return s.tokens.Generate(user)
}

// SessionFromToken validates the raw cookie token and maps it to a Session
func (s *Auther) SessionFromToken(raw string) (Session, error) {
	claims, err := s.tokens.Validate(raw)
	if err != nil {
		s.logger.Error("SessionFromToken validation failed", "error", err)
		return nil, err
	}

	session, err := sessionFromClaims(claims)
	if err != nil {
		s.logger.Error("SessionFromToken failed to create session from claims", "error", err)
		return nil, err
	}

	return session, nil
}

// UserFromSession loads the persisted user record behind a session
func (s *Auther) UserFromSession(ctx context.Context, session Session) (*User, error) {
	user, err := s.provider.FindByIdentifier(ctx, session.GetUserID())
	if err != nil {
		s.logger.Error("UserFromSession find identity by identifier", "error", err)
		return nil, err
	}

	return user, nil
}
