package policyopa

import (
	"context"
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/open-policy-agent/opa/ast"
	"github.com/open-policy-agent/opa/rego"

	"github.com/symbiote-h2020/Administration-sub000/internal/usecase"
)

const createQuery = "data.administration.federation.allow_create"

//go:embed policies/create.rego
var defaultCreatePolicy string

// CreatePolicy decides whether a non-admin principal may create a federation.
type CreatePolicy struct {
	query rego.PreparedEvalQuery
	hash  string
}

// NewCreatePolicy compiles the embedded policy, or the .rego file or directory at overridePath.
func NewCreatePolicy(ctx context.Context, overridePath string) (*CreatePolicy, error) {
	capabilities := ast.CapabilitiesForThisVersion()
	capabilities.Builtins = filterBuiltins(capabilities.Builtins)
	compiler := ast.NewCompiler().WithCapabilities(capabilities)

	opts := []func(*rego.Rego){
		rego.Query(createQuery),
		rego.Compiler(compiler),
		rego.StrictBuiltinErrors(true),
	}
	var (
		hash string
		err  error
	)
	if overridePath == "" {
		opts = append(opts, rego.Module("create.rego", defaultCreatePolicy))
		hash = hashSources([]string{defaultCreatePolicy})
	} else {
		hash, err = hashPath(overridePath)
		if err != nil {
			return nil, err
		}
		opts = append(opts, rego.Load([]string{overridePath}, nil))
	}

	prepared, err := rego.New(opts...).PrepareForEval(ctx)
	if err != nil {
		return nil, fmt.Errorf("prepare create policy: %w", err)
	}
	return &CreatePolicy{query: prepared, hash: hash}, nil
}

// Hash identifies the policy source, for startup logs.
func (p *CreatePolicy) Hash() string {
	return p.hash
}

func (p *CreatePolicy) AllowCreate(ctx context.Context, input usecase.CreatePolicyInput) (bool, error) {
	if p == nil {
		return false, errors.New("create policy is nil")
	}
	if input.OwnedMemberIDs == nil {
		input.OwnedMemberIDs = []string{}
	}
	if input.DeclaredMembers == nil {
		input.DeclaredMembers = []string{}
	}
	results, err := p.query.Eval(ctx, rego.EvalInput(input))
	if err != nil {
		return false, err
	}
	if len(results) == 0 || len(results[0].Expressions) == 0 {
		return false, errors.New("empty policy result")
	}
	allowed, ok := results[0].Expressions[0].Value.(bool)
	if !ok {
		return false, fmt.Errorf("policy result is %T, want bool", results[0].Expressions[0].Value)
	}
	return allowed, nil
}

func hashPath(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("stat policy path: %w", err)
	}
	var files []string
	if info.IsDir() {
		err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && strings.HasSuffix(d.Name(), ".rego") {
				files = append(files, p)
			}
			return nil
		})
		if err != nil {
			return "", err
		}
	} else {
		files = []string{path}
	}
	sort.Strings(files)
	sources := make([]string, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return "", err
		}
		sources = append(sources, string(raw))
	}
	if len(sources) == 0 {
		return "", fmt.Errorf("no .rego files under %s", path)
	}
	return hashSources(sources), nil
}

func hashSources(sources []string) string {
	h := sha256.New()
	for _, src := range sources {
		h.Write([]byte(src))
		h.Write([]byte{0})
	}
	return hex.EncodeToString(h.Sum(nil))
}
