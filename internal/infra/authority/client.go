package authority

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/security"
)

const maxResponseBytes = 1 << 20

// RequestSigner mints the X-Security-Request header attached to every authority call.
type RequestSigner interface {
	SignRequest() (string, error)
}

// Client talks to the identity/ownership authority over JSON.
type Client struct {
	baseURL    string
	signer     RequestSigner
	httpClient *http.Client
}

func New(baseURL string, signer RequestSigner, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type ownedServicesRequest struct {
	Username string `json:"username"`
}

type ownedServicesResponse struct {
	Services []domain.OwnedService `json:"services"`
}

func (c *Client) OwnedServices(ctx context.Context, principal string) ([]domain.OwnedService, error) {
	var out ownedServicesResponse
	if err := c.post(ctx, "/owned_services", ownedServicesRequest{Username: principal}, &out); err != nil {
		return nil, err
	}
	return out.Services, nil
}

type joinedRequest struct {
	PlatformID      string `json:"platformId"`
	SecurityRequest string `json:"securityRequest"`
}

type verdictResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason"`
}

func (c *Client) CheckJoinedFederationsRequest(ctx context.Context, platformID, securityRequest string) (domain.RequestVerdict, error) {
	var out verdictResponse
	if err := c.post(ctx, "/check_joined_federations_request", joinedRequest{PlatformID: platformID, SecurityRequest: securityRequest}, &out); err != nil {
		return domain.RequestVerdict{}, err
	}
	return domain.RequestVerdict{Valid: out.Valid, Reason: out.Reason}, nil
}

type validateResponseRequest struct {
	ServiceResponse string `json:"serviceResponse"`
	ComponentID     string `json:"componentId"`
	PlatformID      string `json:"platformId"`
}

// ValidateServiceResponse asks the authority whether a member's X-Security-Response is genuine.
func (c *Client) ValidateServiceResponse(ctx context.Context, serviceResponse, componentID, platformID string) (bool, error) {
	var out verdictResponse
	err := c.post(ctx, "/validate_service_response", validateResponseRequest{
		ServiceResponse: serviceResponse,
		ComponentID:     componentID,
		PlatformID:      platformID,
	}, &out)
	if err != nil {
		return false, err
	}
	return out.Valid, nil
}

func (c *Client) post(ctx context.Context, path string, payload, out any) error {
	if c == nil {
		return errors.New("authority client is nil")
	}
	if c.baseURL == "" {
		return fmt.Errorf("%w: authority url not configured", domain.ErrAuthorityUnreachable)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.signer != nil {
		token, err := c.signer.SignRequest()
		if err != nil {
			return err
		}
		req.Header.Set(security.HeaderSecurityRequest, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", domain.ErrAuthorityUnreachable, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return &domain.CommunicationError{Message: fmt.Sprintf("authority %s: read response: %v", path, err)}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &domain.CommunicationError{Message: fmt.Sprintf("authority %s failed: status %d: %s", path, resp.StatusCode, snippet(raw))}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &domain.CommunicationError{Message: fmt.Sprintf("authority %s: malformed response: %v", path, err)}
	}
	return nil
}

func snippet(raw []byte) string {
	s := strings.TrimSpace(string(raw))
	if len(s) > 200 {
		return s[:200]
	}
	return s
}
