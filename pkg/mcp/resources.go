package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerResources(srv *server.MCPServer, svc *Service) {
	registerParametersResource(srv, svc)
	registerHistoryResource(srv, svc)
}

func registerParametersResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"dynlink://parameters",
		"Parameters",
		mcp.WithResourceDescription("Every parameter a dynamic link accepts, in display order."),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		params := svc.Parameters()
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"parameters": params,
			"count":      len(params),
		})
	})
}

func registerHistoryResource(srv *server.MCPServer, svc *Service) {
	resource := mcp.NewResource(
		"dynlink://history",
		"History",
		mcp.WithResourceDescription("Generated links, newest first."),
		mcp.WithMIMEType("application/json"),
	)
	srv.AddResource(resource, func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		entries, err := svc.History(ctx, 0)
		if err != nil {
			return nil, err
		}
		return encodeResourceJSON(request.Params.URI, map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	})
}

func encodeResourceJSON(uri string, payload any) ([]mcp.ResourceContents, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}
