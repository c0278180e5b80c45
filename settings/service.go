package settings

import (
	"context"
	"errors"

	"github.com/viant/omnibar/auth"
)

// Tokens supplies the bearer token for the settings service.
type Tokens interface {
	GetToken(ctx context.Context, args *auth.TokenArgs) (string, error)
}

// Service uses Remote for signed-in users and Local otherwise.
type Service struct {
	tokens Tokens
	local  *Local
	remote *Remote
}

// NewService creates a Service.
func NewService(tokens Tokens, local *Local, remote *Remote) *Service {
	return &Service{tokens: tokens, local: local, remote: remote}
}

// token returns the bearer token, or "" when there is no session.
func (s *Service) token(ctx context.Context) (string, error) {
	token, err := s.tokens.GetToken(ctx, &auth.TokenArgs{DisableRedirect: true})
	if err != nil {
		if errors.Is(err, auth.ErrNotLoggedIn) {
			return "", nil
		}
		return "", err
	}
	return token, nil
}

// Get returns the user's settings.
func (s *Service) Get(ctx context.Context) (map[string]any, error) {
	token, err := s.token(ctx)
	if err != nil {
		return nil, err
	}
	if token == "" {
		return s.local.Get(ctx)
	}
	return s.remote.Get(ctx, token)
}

// Update merges values into namespace.
func (s *Service) Update(ctx context.Context, namespace string, values map[string]any) error {
	token, err := s.token(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		return s.local.Update(ctx, namespace, values)
	}
	s.remote.Update(token, namespace, values)
	return nil
}
