package handlers

import (
	"context"
	"errors"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/auth"
	"github.com/serroba/shortify/internal/events"
	"github.com/serroba/shortify/internal/messaging"
	"go.uber.org/zap"
)

// AccountService registers and authenticates accounts.
type AccountService interface {
	Register(ctx context.Context, reg account.Registration) (*account.Account, error)
	Authenticate(ctx context.Context, username, password string) (*account.Account, error)
	UpdateDisplayName(ctx context.Context, id int64, displayName string) (*account.Account, error)
	ChangePassword(ctx context.Context, id int64, current, next string) error
	Get(ctx context.Context, id int64) (*account.Account, error)
}

// TokenIssuer issues bearer tokens.
type TokenIssuer interface {
	Issue(subject string) (string, error)
	ExtractExpiration(token string) (time.Time, error)
}

// AccountHandler handles registration, login and account changes.
type AccountHandler struct {
	accounts                 AccountService
	tokens                   TokenIssuer
	publishAccountRegistered messaging.Publish[events.AccountRegisteredEvent]
	logger                   *zap.Logger
}

func NewAccountHandler(
	accounts AccountService,
	tokens TokenIssuer,
	publishAccountRegistered messaging.Publish[events.AccountRegisteredEvent],
	logger *zap.Logger,
) *AccountHandler {
	return &AccountHandler{
		accounts:                 accounts,
		tokens:                   tokens,
		publishAccountRegistered: publishAccountRegistered,
		logger:                   logger,
	}
}

func (h *AccountHandler) Register(ctx context.Context, req *RegisterRequest) (*AccountResponse, error) {
	acct, err := h.accounts.Register(ctx, account.Registration{
		Username:    req.Body.Username,
		Password:    req.Body.Password,
		DisplayName: req.Body.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, account.ErrDuplicateAccount):
			return nil, huma.Error409Conflict("user already exists")
		case errors.Is(err, account.ErrPasswordTooLong):
			return nil, huma.Error422UnprocessableEntity(account.ErrPasswordTooLong.Error())
		case errors.Is(err, account.ErrInvalidAccount):
			return nil, huma.Error422UnprocessableEntity("username, password and displayName are required")
		}

		h.logger.Error("failed to register account", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to register account")
	}

	meta := RequestMetaFromContext(ctx)

	event := events.NewAccountRegistered()
	event.AccountID = acct.ID
	event.Username = acct.Username
	event.RegisteredAt = acct.CreatedAt
	event.RequestID = meta.RequestID
	event.ClientIP = meta.ClientIP

	if err := h.publishAccountRegistered(ctx, event); err != nil {
		h.logger.Error("failed to publish account registered event",
			zap.Int64("accountId", acct.ID),
			zap.Error(err),
		)
	}

	return &AccountResponse{Body: accountView(acct)}, nil
}

func (h *AccountHandler) Login(ctx context.Context, req *LoginRequest) (*LoginResponse, error) {
	acct, err := h.accounts.Authenticate(ctx, req.Body.Username, req.Body.Password)
	if err != nil {
		if errors.Is(err, account.ErrAuthenticationFailed) {
			return nil, huma.Error401Unauthorized("invalid username or password")
		}

		h.logger.Error("login failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("login failed")
	}

	token, err := h.tokens.Issue(acct.Username)
	if err != nil {
		h.logger.Error("failed to issue token", zap.Int64("accountId", acct.ID), zap.Error(err))

		return nil, huma.Error500InternalServerError("login failed")
	}

	expiresAt, err := h.tokens.ExtractExpiration(token)
	if err != nil {
		return nil, huma.Error500InternalServerError("login failed")
	}

	resp := &LoginResponse{}
	resp.Body.Status = "success"
	resp.Body.Token = token
	resp.Body.ExpiresAt = expiresAt

	return resp, nil
}

// UpdateAccount applies the requested changes to the caller's account.
func (h *AccountHandler) UpdateAccount(ctx context.Context, req *UpdateAccountRequest) (*AccountResponse, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	if req.Body.NewPassword != "" {
		err := h.accounts.ChangePassword(ctx, principal.AccountID, req.Body.CurrentPassword, req.Body.NewPassword)
		if err != nil {
			return nil, h.accountError(err)
		}
	}

	var (
		acct *account.Account
		err  error
	)

	if req.Body.DisplayName != "" {
		acct, err = h.accounts.UpdateDisplayName(ctx, principal.AccountID, req.Body.DisplayName)
	} else {
		acct, err = h.accounts.Get(ctx, principal.AccountID)
	}

	if err != nil {
		return nil, h.accountError(err)
	}

	return &AccountResponse{Body: accountView(acct)}, nil
}

func (h *AccountHandler) accountError(err error) error {
	switch {
	case errors.Is(err, account.ErrDuplicateAccount):
		return huma.Error409Conflict("display name already taken")
	case errors.Is(err, account.ErrAuthenticationFailed):
		return huma.Error403Forbidden("current password is incorrect")
	case errors.Is(err, account.ErrPasswordTooLong):
		return huma.Error422UnprocessableEntity(account.ErrPasswordTooLong.Error())
	case errors.Is(err, account.ErrInvalidAccount):
		return huma.Error422UnprocessableEntity(err.Error())
	case errors.Is(err, account.ErrNotFound):
		return huma.Error404NotFound("account not found")
	}

	h.logger.Error("failed to update account", zap.Error(err))

	return huma.Error500InternalServerError("failed to update account")
}

func accountView(acct *account.Account) AccountView {
	return AccountView{
		ID:          acct.ID,
		Username:    acct.Username,
		DisplayName: acct.DisplayName,
		CreatedAt:   acct.CreatedAt,
	}
}
