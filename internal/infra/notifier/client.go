package notifier

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/security"
)

type RequestSigner interface {
	SignRequest() (string, error)
}

// MemberClient pushes federation state to one member's federation manager.
type MemberClient struct {
	signer     RequestSigner
	httpClient *http.Client
}

func NewMemberClient(signer RequestSigner, timeout time.Duration) *MemberClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MemberClient{
		signer:     signer,
		httpClient: &http.Client{Timeout: timeout},
	}
}

type PushResponse struct {
	StatusCode      int
	ServiceResponse string
}

// StatusError is a non-2xx reply from a member.
type StatusError struct {
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("federation manager replied with status %d", e.StatusCode)
}

// Push issues POST {url}/fm/federations for UPSERT and DELETE {url}/fm/federations/{id} for DELETE.
func (c *MemberClient) Push(ctx context.Context, member domain.FederationMember, fed domain.Federation, op domain.NotificationOp) (PushResponse, error) {
	if c == nil {
		return PushResponse{}, errors.New("member client is nil")
	}
	base := strings.TrimRight(strings.TrimSpace(member.InterworkingServiceURL), "/")
	if base == "" {
		return PushResponse{}, errors.New("member has no interworking service url")
	}

	var (
		method string
		target string
		body   io.Reader
	)
	switch op {
	case domain.NotifyUpsert:
		payload, err := json.Marshal(fed)
		if err != nil {
			return PushResponse{}, err
		}
		method, target, body = http.MethodPost, base+"/fm/federations", bytes.NewReader(payload)
	case domain.NotifyDelete:
		method, target = http.MethodDelete, base+"/fm/federations/"+url.PathEscape(fed.ID)
	default:
		return PushResponse{}, fmt.Errorf("unknown notification op %q", op)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return PushResponse{}, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.signer != nil {
		token, err := c.signer.SignRequest()
		if err != nil {
			return PushResponse{}, err
		}
		req.Header.Set(security.HeaderSecurityRequest, token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return PushResponse{}, err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))

	out := PushResponse{
		StatusCode:      resp.StatusCode,
		ServiceResponse: resp.Header.Get(security.HeaderSecurityResponse),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return out, &StatusError{StatusCode: resp.StatusCode}
	}
	return out, nil
}
