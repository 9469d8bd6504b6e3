package policyopa

import "github.com/open-policy-agent/opa/ast"

// Policies only need comparison and collection helpers. Anything with I/O stays out.
var allowedBuiltins = map[string]struct{}{
	"assign":            {},
	"eq":                {},
	"equal":             {},
	"neq":               {},
	"gt":                {},
	"gte":               {},
	"lt":                {},
	"lte":               {},
	"count":             {},
	"internal.member_2": {},
	"startswith":        {},
	"endswith":          {},
	"lower":             {},
	"upper":             {},
	"concat":            {},
	"contains":          {},
	"sprintf":           {},
	"trim":              {},
	"object.get":        {},
}

func filterBuiltins(builtins []*ast.Builtin) []*ast.Builtin {
	allowed := make([]*ast.Builtin, 0, len(builtins))
	for _, builtin := range builtins {
		if _, ok := allowedBuiltins[builtin.Name]; !ok {
			continue
		}
		allowed = append(allowed, builtin)
	}
	return allowed
}
