package handlers

import (
	"context"
	"slices"

	"github.com/danielgtaylor/huma/v2"
	"github.com/serroba/shortify/internal/auth"
)

// LinkCounter reports how many links are stored.
type LinkCounter interface {
	Count(ctx context.Context) (int64, error)
}

// DiagHandler serves the index listing and the authenticated echo.
type DiagHandler struct {
	name    string
	version string
	api     huma.API
	links   LinkCounter
}

func NewDiagHandler(api huma.API, name, version string, links LinkCounter) *DiagHandler {
	return &DiagHandler{name: name, version: version, api: api, links: links}
}

// Index lists every registered operation and the number of stored links.
func (h *DiagHandler) Index(ctx context.Context, _ *struct{}) (*IndexResponse, error) {
	count, err := h.links.Count(ctx)
	if err != nil {
		return nil, huma.Error500InternalServerError("failed to count links")
	}

	resp := &IndexResponse{}
	resp.Body.Name = h.name
	resp.Body.Version = h.version
	resp.Body.Docs = DocsPath
	resp.Body.Links = count
	resp.Body.Endpoints = []string{}

	oapi := h.api.OpenAPI()
	for path, item := range oapi.Paths {
		for method, op := range map[string]*huma.Operation{
			"GET": item.Get, "POST": item.Post, "PATCH": item.Patch, "PUT": item.Put, "DELETE": item.Delete,
		} {
			if op != nil {
				resp.Body.Endpoints = append(resp.Body.Endpoints, method+" "+path)
			}
		}
	}

	slices.Sort(resp.Body.Endpoints)

	return resp, nil
}

// Test echoes the authenticated subject.
func (h *DiagHandler) Test(ctx context.Context, _ *struct{}) (*TestResponse, error) {
	principal, ok := auth.PrincipalFromContext(ctx)
	if !ok {
		return nil, huma.Error401Unauthorized("authentication required")
	}

	resp := &TestResponse{}
	resp.Body.Test = "success"
	resp.Body.Subject = principal.Username

	return resp, nil
}
