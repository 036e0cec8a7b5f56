package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

func registerTools(srv *server.MCPServer, svc *Service) {
	registerListParametersTool(srv, svc)
	registerBuildLinkTool(srv, svc)
	registerListHistoryTool(srv, svc)
}

func registerListParametersTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_parameters",
		mcp.WithDescription("List the parameters a dynamic link accepts, grouped by platform."),
	)
	srv.AddTool(tool, listParametersHandler(svc))
}

func listParametersHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		params := svc.Parameters()
		return toJSONResult(map[string]any{
			"parameters": params,
			"count":      len(params),
		})
	}
}

func registerBuildLinkTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"build_link",
		mcp.WithDescription("Build a dynamic link from a target link, a link domain and optional parameters, and shorten it."),
		mcp.WithString("link",
			mcp.Required(),
			mcp.Description("Absolute http(s) URL the dynamic link opens."),
		),
		mcp.WithString("domain",
			mcp.Description("Dynamic link domain such as example.page.link. Defaults to the configured domain."),
		),
		mcp.WithObject("params",
			mcp.Description("Optional parameters keyed by name, for example {\"source\": \"newsletter\", \"bundle-id\": \"com.example\"}. See list_parameters."),
		),
		mcp.WithBoolean("shorten",
			mcp.Description("Set to false to return only the long link."),
		),
	)
	srv.AddTool(tool, buildLinkHandler(svc))
}

func buildLinkHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args BuildRequest
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		dto, err := svc.BuildLink(ctx, args)
		if err != nil {
			if isInputError(err) {
				return mcp.NewToolResultError(err.Error()), nil
			}
			return mcp.NewToolResultError(fmt.Sprintf("shorten failed: %v (long link %s)", err, dto.Long)), nil
		}
		return toJSONResult(dto)
	}
}

func registerListHistoryTool(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool(
		"list_history",
		mcp.WithDescription("List previously generated links, newest first."),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of entries to return. 0 returns all."),
		),
	)
	srv.AddTool(tool, listHistoryHandler(svc))
}

func listHistoryHandler(svc *Service) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args struct {
			Limit int `json:"limit"`
		}
		if err := request.BindArguments(&args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("invalid arguments: %v", err)), nil
		}
		entries, err := svc.History(ctx, args.Limit)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return toJSONResult(map[string]any{
			"entries": entries,
			"count":   len(entries),
		})
	}
}

func toJSONResult(data any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(data)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal error: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}
