package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/auth"
)

// SecurityScheme is the OpenAPI security scheme name for bearer tokens.
const SecurityScheme = "bearer"

// Service routes live under /api. A single path segment at the root is a short code.
const (
	DocsPath    = "/api/docs"
	OpenAPIPath = "/api/openapi"
)

// NewAPIConfig returns the huma configuration for the shortener API.
func NewAPIConfig(title, version string) huma.Config {
	config := huma.DefaultConfig(title, version)
	config.DocsPath = DocsPath
	config.OpenAPIPath = OpenAPIPath
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		SecurityScheme: {Type: "http", Scheme: "bearer", BearerFormat: "JWT"},
	}

	return config
}

var bearer = []map[string][]string{{SecurityScheme: {}}}

// RegisterRoutes registers all shortener routes. Operations without a public policy require a bearer token.
func RegisterRoutes(api huma.API, links *LinkHandler, accounts *AccountHandler, diag *DiagHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "index",
		Method:      http.MethodGet,
		Path:        "/",
		Summary:     "List endpoints",
		Tags:        []string{"Service"},
		Metadata:    auth.Public(),
	}, diag.Index)

	huma.Register(api, huma.Operation{
		OperationID:   "register",
		Method:        http.MethodPost,
		Path:          "/register",
		Summary:       "Register an account",
		Tags:          []string{"Accounts"},
		DefaultStatus: http.StatusCreated,
		Metadata:      auth.Public(),
	}, accounts.Register)

	huma.Register(api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/login",
		Summary:     "Log in",
		Description: "Exchanges credentials for a bearer token.",
		Tags:        []string{"Accounts"},
		Metadata:    auth.Public(),
	}, accounts.Login)

	huma.Register(api, huma.Operation{
		OperationID: "update-account",
		Method:      http.MethodPatch,
		Path:        "/api/account",
		Summary:     "Update the caller's account",
		Tags:        []string{"Accounts"},
		Security:    bearer,
	}, accounts.UpdateAccount)

	huma.Register(api, huma.Operation{
		OperationID: "shorten",
		Method:      http.MethodPost,
		Path:        "/api/shorten",
		Summary:     "Create short URL",
		Description: "Shortens a URL on behalf of the caller. A URL that was already shortened keeps its first code.",
		Tags:        []string{"URLs"},
		Security:    bearer,
	}, links.Shorten)

	huma.Register(api, huma.Operation{
		OperationID: "shorten-public",
		Method:      http.MethodPost,
		Path:        "/api/shortenpublic",
		Summary:     "Create short URL anonymously",
		Description: "Shortens a URL on behalf of the system account.",
		Tags:        []string{"URLs"},
		Metadata:    auth.Public(),
	}, links.ShortenPublic)

	huma.Register(api, huma.Operation{
		OperationID: "list-links",
		Method:      http.MethodGet,
		Path:        "/api/links",
		Summary:     "List the caller's links",
		Tags:        []string{"URLs"},
		Security:    bearer,
	}, links.ListLinks)

	huma.Register(api, huma.Operation{
		OperationID: "test",
		Method:      http.MethodGet,
		Path:        "/api/test",
		Summary:     "Authenticated echo",
		Tags:        []string{"Service"},
		Security:    bearer,
	}, diag.Test)

	huma.Register(api, huma.Operation{
		OperationID: "redirect",
		Method:      http.MethodGet,
		Path:        "/{code}",
		Summary:     "Redirect to original URL",
		Description: "Redirects to the original URL, or to the fallback URL when the code does not resolve.",
		Tags:        []string{"URLs"},
		Metadata:    auth.Public(),
		Responses: map[string]*huma.Response{
			"301": {Description: "Resolved"},
			"302": {Description: "Unresolved, sent to the fallback URL"},
		},
	}, links.Redirect)

	huma.Register(api, huma.Operation{
		OperationID: "qr-code",
		Method:      http.MethodGet,
		Path:        "/{code}/qr",
		Summary:     "QR code for a short URL",
		Tags:        []string{"URLs"},
		Metadata:    auth.Public(),
		Responses: map[string]*huma.Response{
			"200": {
				Description: "PNG image",
				Content:     map[string]*huma.MediaType{"image/png": {}},
			},
		},
	}, links.QRCode)
}
