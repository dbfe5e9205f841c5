// Package auth describes which operations need a caller and who that caller is.
package auth

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
)

// MetadataKey is the key used to store the access policy in operation metadata.
const MetadataKey = "auth"

// Policy defines per-endpoint access rules.
// Operations without a Policy require an authenticated caller.
type Policy struct {
	// Public lets anonymous callers through.
	Public bool
}

// Public is the metadata entry for operations that anyone may call.
func Public() map[string]any {
	return map[string]any{MetadataKey: Policy{Public: true}}
}

// IsPublic reports whether op is declared public. Missing or malformed policies are not.
func IsPublic(op *huma.Operation) bool {
	if op == nil || op.Metadata == nil {
		return false
	}

	p, ok := op.Metadata[MetadataKey].(Policy)

	return ok && p.Public
}

// Principal is the authenticated caller of a request.
type Principal struct {
	AccountID int64
	Username  string
}

type principalKey struct{}

// ContextWithPrincipal adds the caller to context.
func ContextWithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext extracts the caller from context.
func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)

	return p, ok
}
