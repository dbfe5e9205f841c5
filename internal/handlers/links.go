package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/account"
	"github.com/serroba/shortify/internal/auth"
	"github.com/serroba/shortify/internal/events"
	"github.com/serroba/shortify/internal/messaging"
	"github.com/serroba/shortify/internal/shortener"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// ErrPublicAccountMissing means the system account behind anonymous shortening does not exist.
var ErrPublicAccountMissing = errors.New("public account missing")

const qrSize = 256

// LinkService saves and resolves short links.
type LinkService interface {
	Save(ctx context.Context, longURL string, ownerID int64) (shortener.SaveResult, error)
	Resolve(ctx context.Context, code string) (*shortener.ShortLink, error)
	ListByOwner(ctx context.Context, ownerID int64) ([]*shortener.ShortLink, error)
}

// LinkHandler handles shortening and redirects.
type LinkHandler struct {
	links              LinkService
	accounts           AccountFinder
	baseURL            string
	fallbackURL        string
	publicUsername     string
	publishLinkCreated messaging.Publish[events.LinkCreatedEvent]
	logger             *zap.Logger
}

// AccountFinder looks accounts up by username.
type AccountFinder interface {
	GetByUsername(ctx context.Context, username string) (*account.Account, error)
}

// LinkConfig holds the URL settings of a LinkHandler.
type LinkConfig struct {
	BaseURL        string
	FallbackURL    string
	PublicUsername string
}

func NewLinkHandler(
	links LinkService,
	accounts AccountFinder,
	cfg LinkConfig,
	publishLinkCreated messaging.Publish[events.LinkCreatedEvent],
	logger *zap.Logger,
) *LinkHandler {
	fallback := cfg.FallbackURL
	if fallback == "" {
		fallback = "/"
	}

	return &LinkHandler{
		links:              links,
		accounts:           accounts,
		baseURL:            cfg.BaseURL,
		fallbackURL:        fallback,
		publicUsername:     cfg.PublicUsername,
		publishLinkCreated: publishLinkCreated,
		logger:             logger,
	}
}

func (h *LinkHandler) Shorten(ctx context.Context, req *ShortenRequest) (*ShortenResponse, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	res, err := h.save(ctx, req.Body.LongURL, principal.AccountID)
	if err != nil {
		return nil, err
	}

	code := string(res.Code())

	resp := &ShortenResponse{}
	resp.Location = h.shortURL(code)
	resp.Body.Code = code
	resp.Body.ShortURL = h.shortURL(code)
	resp.Body.LongURL = res.Link.LongURL
	resp.Body.Created = res.Created

	return resp, nil
}

// ShortenPublic shortens on behalf of the system account.
func (h *LinkHandler) ShortenPublic(ctx context.Context, req *ShortenRequest) (*ShortenPublicResponse, error) {
	owner, err := h.accounts.GetByUsername(ctx, h.publicUsername)
	if err != nil {
		if errors.Is(err, account.ErrNotFound) {
			h.logger.Error("public shortening unavailable",
				zap.String("username", h.publicUsername),
				zap.Error(ErrPublicAccountMissing),
			)

			return nil, huma.Error503ServiceUnavailable("public shortening is unavailable")
		}

		h.logger.Error("public account lookup failed", zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to save url")
	}

	res, err := h.save(ctx, req.Body.LongURL, owner.ID)
	if err != nil {
		return nil, err
	}

	code := string(res.Code())

	resp := &ShortenPublicResponse{}
	resp.Body.Status = "success"
	resp.Body.Code = code
	resp.Body.ShortURL = h.shortURL(code)

	return resp, nil
}

func (h *LinkHandler) save(ctx context.Context, longURL string, ownerID int64) (shortener.SaveResult, error) {
	res, err := h.links.Save(ctx, longURL, ownerID)
	if err != nil {
		if errors.Is(err, shortener.ErrEmptyURL) || errors.Is(err, shortener.ErrURLTooLong) {
			return res, huma.Error422UnprocessableEntity(err.Error())
		}

		h.logger.Error("failed to save url", zap.Int64("ownerId", ownerID), zap.Error(err))

		return res, huma.Error500InternalServerError("failed to save url")
	}

	if res.Created {
		h.publishCreated(ctx, res.Link)
	}

	return res, nil
}

func (h *LinkHandler) publishCreated(ctx context.Context, link *shortener.ShortLink) {
	meta := RequestMetaFromContext(ctx)

	event := events.NewLinkCreated()
	event.LinkID = link.ID
	event.Code = string(link.EffectiveCode())
	event.LongURL = link.LongURL
	event.OwnerID = link.OwnerID
	event.CreatedAt = link.CreatedAt
	event.RequestID = meta.RequestID
	event.ClientIP = meta.ClientIP
	event.UserAgent = meta.UserAgent

	if err := h.publishLinkCreated(ctx, event); err != nil {
		h.logger.Error("failed to publish link created event",
			zap.String("code", event.Code),
			zap.Error(err),
		)
	}
}

// Redirect never fails: unresolvable codes go to the fallback URL.
func (h *LinkHandler) Redirect(ctx context.Context, req *CodeRequest) (*RedirectResponse, error) {
	link, err := h.links.Resolve(ctx, req.Code)
	if err != nil {
		h.logger.Debug("redirecting to fallback",
			zap.String("code", req.Code),
			zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
			zap.Error(err),
		)

		return &RedirectResponse{Status: http.StatusFound, Location: h.fallbackURL}, nil
	}

	return &RedirectResponse{Status: http.StatusMovedPermanently, Location: link.LongURL}, nil
}

// QRCode renders the short URL of code as a PNG.
func (h *LinkHandler) QRCode(ctx context.Context, req *CodeRequest) (*QRCodeResponse, error) {
	if _, err := h.links.Resolve(ctx, req.Code); err != nil {
		return nil, huma.Error404NotFound("short url not found")
	}

	png, err := qrcode.Encode(h.shortURL(req.Code), qrcode.Medium, qrSize)
	if err != nil {
		h.logger.Error("failed to render qr code", zap.String("code", req.Code), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to render qr code")
	}

	return &QRCodeResponse{ContentType: "image/png", Body: png}, nil
}

// ListLinks returns the links the caller created.
func (h *LinkHandler) ListLinks(ctx context.Context, _ *struct{}) (*ListLinksResponse, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	links, err := h.links.ListByOwner(ctx, principal.AccountID)
	if err != nil {
		h.logger.Error("failed to list links", zap.Int64("ownerId", principal.AccountID), zap.Error(err))

		return nil, huma.Error500InternalServerError("failed to list links")
	}

	resp := &ListLinksResponse{}
	resp.Body.Links = make([]LinkView, 0, len(links))

	for _, l := range links {
		code := string(l.EffectiveCode())
		resp.Body.Links = append(resp.Body.Links, LinkView{
			Code:      code,
			ShortURL:  h.shortURL(code),
			LongURL:   l.LongURL,
			CreatedAt: l.CreatedAt,
		})
	}

	return resp, nil
}

func (h *LinkHandler) shortURL(code string) string {
	return h.baseURL + "/" + code
}
