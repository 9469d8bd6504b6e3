package policyopa

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"
)

func writePolicy(t *testing.T, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "create.rego"), []byte(src), 0o600); err != nil {
		t.Fatalf("write policy: %v", err)
	}
	return dir
}

func TestCreatePolicy_Embedded(t *testing.T) {
	policy, err := NewCreatePolicy(context.Background(), "")
	if err != nil {
		t.Fatalf("load embedded policy: %v", err)
	}
	if len(policy.Hash()) != 64 {
		t.Fatalf("unexpected policy hash %q", policy.Hash())
	}

	tests := []struct {
		name  string
		input usecase.CreatePolicyInput
		want  bool
	}{
		{"admin", usecase.CreatePolicyInput{IsAdmin: true, RequireOwnership: true}, true},
		{"ownership not required", usecase.CreatePolicyInput{RequireOwnership: false}, true},
		{"owns a member", usecase.CreatePolicyInput{RequireOwnership: true, OwnedMemberIDs: []string{"plat-1"}}, true},
		{"owns nothing", usecase.CreatePolicyInput{RequireOwnership: true, DeclaredMembers: []string{"plat-1"}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := policy.AllowCreate(context.Background(), tt.input)
			if err != nil {
				t.Fatalf("evaluate: %v", err)
			}
			if got != tt.want {
				t.Fatalf("allow_create = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCreatePolicy_Override(t *testing.T) {
	dir := writePolicy(t, `package administration.federation

import future.keywords.if

default allow_create := false

allow_create if count(input.declared_member_ids) >= 2
`)

	policy, err := NewCreatePolicy(context.Background(), dir)
	if err != nil {
		t.Fatalf("load override: %v", err)
	}

	ok, err := policy.AllowCreate(context.Background(), usecase.CreatePolicyInput{IsAdmin: true, DeclaredMembers: []string{"plat-1"}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if ok {
		t.Fatalf("expected override to deny a single-member federation")
	}

	ok, err = policy.AllowCreate(context.Background(), usecase.CreatePolicyInput{DeclaredMembers: []string{"plat-1", "plat-2"}})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if !ok {
		t.Fatalf("expected override to allow two members")
	}
}

func TestCreatePolicy_RejectsForbiddenBuiltins(t *testing.T) {
	dir := writePolicy(t, `package administration.federation

allow_create := http.send({"method": "get", "url": "http://example.invalid"}).status_code == 200
`)
	if _, err := NewCreatePolicy(context.Background(), dir); err == nil {
		t.Fatalf("expected http.send to be rejected")
	}
}

func TestCreatePolicy_MissingPath(t *testing.T) {
	if _, err := NewCreatePolicy(context.Background(), filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatalf("expected error for missing policy path")
	}
}
