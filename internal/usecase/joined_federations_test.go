package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
)

type stubVerifier struct {
	verdict domain.RequestVerdict
	err     error
	seen    string
}

func (v *stubVerifier) CheckJoinedFederationsRequest(_ context.Context, platformID, securityRequest string) (domain.RequestVerdict, error) {
	v.seen = platformID + "|" + securityRequest
	return v.verdict, v.err
}

type stubSigner struct {
	token string
	err   error
}

func (s stubSigner) SignResponse() (string, error) { return s.token, s.err }

func TestJoinedFederations_ReturnsMembershipsSigned(t *testing.T) {
	store := newMemStore(
		federation("fed-b", "plat-1", "plat-2"),
		federation("fed-a", "plat-2"),
		federation("fed-c", "plat-3"),
	)
	verifier := &stubVerifier{verdict: domain.RequestVerdict{Valid: true}}
	q := NewJoinedFederationsQuery(store, verifier, stubSigner{token: "signed"})

	res, err := q.Joined(context.Background(), "plat-2", "req-token")
	if err != nil {
		t.Fatalf("joined: %v", err)
	}
	if res.ServiceResponse != "signed" {
		t.Fatalf("unexpected service response %q", res.ServiceResponse)
	}
	if len(res.Federations) != 2 || res.Federations[0].ID != "fed-a" || res.Federations[1].ID != "fed-b" {
		t.Fatalf("unexpected federations: %+v", res.Federations)
	}
	if verifier.seen != "plat-2|req-token" {
		t.Fatalf("verifier saw %q", verifier.seen)
	}
}

func TestJoinedFederations_RejectedRequestStillSigned(t *testing.T) {
	verifier := &stubVerifier{verdict: domain.RequestVerdict{Valid: false, Reason: "token expired"}}
	q := NewJoinedFederationsQuery(newMemStore(federation("fed-a", "plat-2")), verifier, stubSigner{token: "signed"})

	res, err := q.Joined(context.Background(), "plat-2", "req-token")
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if !strings.Contains(err.Error(), "token expired") {
		t.Fatalf("expected reason in error, got %v", err)
	}
	if res.ServiceResponse != "signed" {
		t.Fatalf("rejected reply must still be signed")
	}
	if len(res.Federations) != 0 {
		t.Fatalf("rejected reply must not carry federations")
	}
}

func TestJoinedFederations_Failures(t *testing.T) {
	store := newMemStore(federation("fed-a", "plat-2"))

	q := NewJoinedFederationsQuery(store, &stubVerifier{verdict: domain.RequestVerdict{Valid: true}}, stubSigner{token: "signed"})
	if _, err := q.Joined(context.Background(), "plat-2", ""); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("missing request: expected ErrUnauthorized, got %v", err)
	}

	if _, err := q.Joined(context.Background(), "p2", "req"); !errors.Is(err, domain.ErrInvalidArgument) {
		t.Fatalf("bad platform id: expected ErrInvalidArgument, got %v", err)
	}

	q.Verifier = &stubVerifier{err: domain.ErrAuthorityUnreachable}
	res, err := q.Joined(context.Background(), "plat-2", "req")
	if !errors.Is(err, domain.ErrAuthorityUnreachable) {
		t.Fatalf("expected ErrAuthorityUnreachable, got %v", err)
	}
	if res.ServiceResponse != "signed" {
		t.Fatalf("authority failure must still be signed")
	}

	q.Signer = stubSigner{err: errors.New("no key")}
	if _, err := q.Joined(context.Background(), "plat-2", "req"); err == nil || !strings.Contains(err.Error(), "no key") {
		t.Fatalf("expected signer error, got %v", err)
	}
}
