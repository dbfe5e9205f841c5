package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/auth"
	"go.uber.org/zap"
)

// TokenVerifier checks bearer tokens.
type TokenVerifier interface {
	ExtractSubject(token string) (string, error)
	Validate(token, expectedSubject string) bool
}

// AccountFinder loads the account a token claims to belong to.
type AccountFinder interface {
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
}

// Authenticator returns a Huma middleware that requires a valid bearer token on every
// operation not declared public through auth.MetadataKey.
func Authenticator(
	api huma.API,
	tokens TokenVerifier,
	accounts AccountFinder,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if auth.IsPublic(ctx.Operation()) {
			next(ctx)

			return
		}

		raw, ok := bearerToken(ctx.Header("Authorization"))
		if !ok {
			unauthorized(api, ctx, "missing bearer token")

			return
		}

		subject, err := tokens.ExtractSubject(raw)
		if err != nil {
			logger.Debug("rejected token", zap.String("path", getOperationPath(ctx)), zap.Error(err))
			unauthorized(api, ctx, "invalid token")

			return
		}

		acct, err := accounts.GetByUsername(ctx.Context(), subject)
		if err != nil {
			if errors.Is(err, account.ErrNotFound) {
				unauthorized(api, ctx, "invalid token")

				return
			}

			logger.Error("account lookup failed", zap.String("path", getOperationPath(ctx)), zap.Error(err))
			_ = huma.WriteErr(api, ctx, http.StatusInternalServerError, "internal server error")

			return
		}

		if !tokens.Validate(raw, acct.Username) {
			unauthorized(api, ctx, "invalid token")

			return
		}

		principal := auth.Principal{AccountID: acct.ID, Username: acct.Username}
		ctx = huma.WithContext(ctx, auth.ContextWithPrincipal(ctx.Context(), principal))

		next(ctx)
	}
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}

	token = strings.TrimSpace(token)

	return token, token != ""
}

func unauthorized(api huma.API, ctx huma.Context, msg string) {
	ctx.SetHeader("WWW-Authenticate", `Bearer realm="shortify"`)
	_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, msg)
}

// getOperationPath extracts the path from the operation, if available.
func getOperationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}
