package skribble

import (
	"context"

	"golang.org/x/oauth2"
)

// TokenSource adapts the manager to the oauth2.TokenSource interface so
// it can be plugged into transports and SDKs that expect one. The
// returned source is safe for concurrent use.
func (m *TokenManager) TokenSource(ctx context.Context) oauth2.TokenSource {
	return &managerTokenSource{ctx: ctx, manager: m}
}

type managerTokenSource struct {
	ctx     context.Context
	manager *TokenManager
}

func (s *managerTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.manager.GetAccessToken(s.ctx, false)
	if err != nil {
		return nil, err
	}

	return &oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}, nil
}
