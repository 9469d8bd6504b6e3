package notifier

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/symbiote-h2020/Administration-sub000/internal/domain"
	"github.com/symbiote-h2020/Administration-sub000/internal/infra/security"
)

type counterSigner struct{ n int }

func (s *counterSigner) SignRequest() (string, error) {
	s.n++
	return "req-" + string(rune('0'+s.n)), nil
}

func testFederation() domain.Federation {
	return domain.Federation{
		ID:   "fed-1",
		Name: "Federation One",
		Members: []domain.FederationMember{
			{PlatformID: "plat-1", InterworkingServiceURL: "https://plat-1.example"},
		},
	}
}

func TestMemberClient_UpsertPostsFederation(t *testing.T) {
	var (
		gotMethod, gotPath, gotHeader string
		gotBody                       domain.Federation
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		gotHeader = r.Header.Get(security.HeaderSecurityRequest)
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.Header().Set(security.HeaderSecurityResponse, "resp-token")
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	signer := &counterSigner{}
	client := NewMemberClient(signer, time.Second)
	resp, err := client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1", InterworkingServiceURL: srv.URL + "/"}, testFederation(), domain.NotifyUpsert)
	require.NoError(t, err)

	assert.Equal(t, http.MethodPost, gotMethod)
	assert.Equal(t, "/fm/federations", gotPath)
	assert.Equal(t, "req-1", gotHeader)
	assert.Equal(t, "fed-1", gotBody.ID)
	assert.Equal(t, "resp-token", resp.ServiceResponse)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMemberClient_DeleteTargetsFederationID(t *testing.T) {
	var gotMethod, gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath = r.Method, r.URL.Path
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	signer := &counterSigner{}
	client := NewMemberClient(signer, time.Second)
	_, err := client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1", InterworkingServiceURL: srv.URL}, testFederation(), domain.NotifyDelete)
	require.NoError(t, err)
	assert.Equal(t, http.MethodDelete, gotMethod)
	assert.Equal(t, "/fm/federations/fed-1", gotPath)

	_, err = client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1", InterworkingServiceURL: srv.URL}, testFederation(), domain.NotifyDelete)
	require.NoError(t, err)
	assert.Equal(t, 2, signer.n, "a fresh header is minted per call")
}

func TestMemberClient_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := NewMemberClient(nil, time.Second)
	resp, err := client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1", InterworkingServiceURL: srv.URL}, testFederation(), domain.NotifyUpsert)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
	assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
}

func TestMemberClient_RejectsBadInput(t *testing.T) {
	client := NewMemberClient(nil, time.Second)

	_, err := client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1"}, testFederation(), domain.NotifyUpsert)
	assert.Error(t, err)

	_, err = client.Push(context.Background(), domain.FederationMember{PlatformID: "plat-1", InterworkingServiceURL: "https://plat-1.example"}, testFederation(), "PATCH")
	assert.Error(t, err)
}
