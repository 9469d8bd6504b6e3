package notifier

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/metrics"
	"github.com/symbiote-h2020/Administration-sub000/internal/log"
)

// FederationManagerComponent is the component id members sign their responses with.
const FederationManagerComponent = "federationManager"

type Pusher interface {
	Push(ctx context.Context, member domain.FederationMember, fed domain.Federation, op domain.NotificationOp) (PushResponse, error)
}

type ResponseValidator interface {
	ValidateServiceResponse(ctx context.Context, serviceResponse, componentID, platformID string) (bool, error)
}

// Service fans a federation change out to member platforms. Each target gets exactly one
// attempt with its own timeout; failures are logged and never returned.
type Service struct {
	pusher      Pusher
	validator   ResponseValidator
	concurrency int
	timeout     time.Duration
	logger      zerolog.Logger
}

type Option func(*Service)

func WithConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

func WithTimeout(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) { s.logger = logger }
}

func NewService(pusher Pusher, validator ResponseValidator, opts ...Option) *Service {
	s := &Service{
		pusher:      pusher,
		validator:   validator,
		concurrency: 4,
		timeout:     10 * time.Second,
		logger:      log.WithComponent("notifier"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Notify(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp) {
	_ = s.Deliver(ctx, fed, targets, op)
}

// Deliver pushes to every target and reports one result per target, in target order.
func (s *Service) Deliver(ctx context.Context, fed domain.Federation, targets []domain.FederationMember, op domain.NotificationOp) []domain.NotificationResult {
	results := make([]domain.NotificationResult, len(targets))
	if s == nil || s.pusher == nil {
		for i, t := range targets {
			results[i] = domain.NotificationResult{FederationID: fed.ID, PlatformID: t.PlatformID, URL: t.InterworkingServiceURL, Op: op, Outcome: domain.OutcomeSkipped}
		}
		return results
	}

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, target := range targets {
		g.Go(func() error {
			results[i] = s.deliverOne(ctx, fed, target, op)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (s *Service) deliverOne(ctx context.Context, fed domain.Federation, target domain.FederationMember, op domain.NotificationOp) domain.NotificationResult {
	result := domain.NotificationResult{
		FederationID: fed.ID,
		PlatformID:   target.PlatformID,
		URL:          target.InterworkingServiceURL,
		Op:           op,
	}
	defer func() {
		metrics.NotificationsTotal.WithLabelValues(string(op), string(result.Outcome)).Inc()
	}()

	if target.InterworkingServiceURL == "" {
		result.Outcome = domain.OutcomeSkipped
		s.logger.Warn().
			Str("federation_id", fed.ID).
			Str("platform_id", target.PlatformID).
			Str("op", string(op)).
			Msg("member has no interworking service url; skipping notification")
		return result
	}

	targetCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	timer := metrics.NewTimer()
	resp, err := s.pusher.Push(targetCtx, target, fed, op)
	timer.ObserveDurationVec(metrics.NotificationDuration, string(op))
	result.StatusCode = resp.StatusCode
	if err != nil {
		result.Outcome = domain.OutcomeFailed
		result.Err = err
		if errors.Is(targetCtx.Err(), context.DeadlineExceeded) {
			result.Err = errors.Join(err, context.DeadlineExceeded)
		}
		s.logger.Warn().
			Err(err).
			Str("federation_id", fed.ID).
			Str("platform_id", target.PlatformID).
			Str("url", target.InterworkingServiceURL).
			Str("op", string(op)).
			Int("status", resp.StatusCode).
			Msg("federation notification failed")
		return result
	}

	if s.validator != nil {
		if reason := s.validate(targetCtx, target, resp); reason != "" {
			result.Outcome = domain.OutcomeInvalidResponse
			s.logger.Warn().
				Str("federation_id", fed.ID).
				Str("platform_id", target.PlatformID).
				Str("op", string(op)).
				Str("reason", reason).
				Msg("federation manager response failed validation")
			return result
		}
	}

	result.Outcome = domain.OutcomeDelivered
	s.logger.Debug().
		Str("federation_id", fed.ID).
		Str("platform_id", target.PlatformID).
		Str("op", string(op)).
		Msg("federation notification delivered")
	return result
}

func (s *Service) validate(ctx context.Context, target domain.FederationMember, resp PushResponse) string {
	if resp.ServiceResponse == "" {
		return "missing service response header"
	}
	ok, err := s.validator.ValidateServiceResponse(ctx, resp.ServiceResponse, FederationManagerComponent, target.PlatformID)
	if err != nil {
		return err.Error()
	}
	if !ok {
		return "service response rejected by authority"
	}
	return ""
}
