package skribble

import (
	"context"
	"net/http"
)

// MonitoringService exposes monitoring-related endpoints: system
// health and callback-heavy signature request creation.
type MonitoringService struct {
	client *Client
}

// SystemHealth checks Skribble system health via the management API.
// The endpoint is unauthenticated.
func (s *MonitoringService) SystemHealth(ctx context.Context) (*HealthStatus, error) {
	var health HealthStatus
	err := s.client.do(ctx, apiCall{
		method:     http.MethodGet,
		path:       "/health",
		management: true,
		noAuth:     true,
		out:        &health,
	})
	if err != nil {
		return nil, err
	}
	return &health, nil
}

// CreateWithCallbacks creates a signature request with callbacks for
// all lifecycle events. Convenience wrapper over
// SignatureRequestsService.Create.
func (s *MonitoringService) CreateWithCallbacks(ctx context.Context, params CreateSignatureRequestParams, callbacks []Callback) (*SignatureRequest, error) {
	params.Callbacks = callbacks
	return s.client.SignatureRequests().Create(ctx, params)
}
