// Command folio-mcp serves the PDF pipeline over the Model Context Protocol
// on stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/tsawler/folio"
	"github.com/tsawler/folio/internal/app"
	"github.com/tsawler/folio/internal/config"
)

const (
	serverName    = "folio"
	serverVersion = "0.1.0"
)

// Tool argument keys, shared by the schemas and the handlers.
const (
	argPath = "path"
)

// opener builds a processor for the PDF at path. The cleanup function is
// called once the tool call is done.
type opener func(ctx context.Context, path string) (*folio.Processor, func(), error)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatalf("config: %v", err)
	}
	// stdout carries the protocol; the default logger writes to stderr.
	logger := cfg.Logger()

	open := func(ctx context.Context, path string) (*folio.Processor, func(), error) {
		return app.NewProcessor(ctx, cfg, path, logger)
	}

	s := server.NewMCPServer(serverName, serverVersion)
	registerTools(s, open)

	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("server error: %v\n", err)
	}
}

// registerTools binds the tool definitions to their handlers
func registerTools(s *server.MCPServer, open opener) {
	s.AddTool(
		mcp.NewTool("pdf_to_markdown",
			mcp.WithDescription("Convert a PDF to Markdown. Pages whose text layer "+
				"cannot be trusted are re-extracted with OCR. Warnings, if any, "+
				"are returned as a second text item."),
			mcp.WithString(argPath,
				mcp.Required(),
				mcp.Description("Absolute path of the PDF file"),
			),
		),
		markdownHandler(open),
	)

	s.AddTool(
		mcp.NewTool("pdf_page_verdicts",
			mcp.WithDescription("Process a PDF and return the trust verdict of "+
				"every page as a JSON list of {page, verdict}."),
			mcp.WithString(argPath,
				mcp.Required(),
				mcp.Description("Absolute path of the PDF file"),
			),
		),
		verdictsHandler(open),
	)
}

func pathArg(req mcp.CallToolRequest) (string, bool) {
	path, _ := req.Params.Arguments[argPath].(string)
	path = strings.TrimSpace(path)
	return path, path != ""
}

func markdownHandler(open opener) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, ok := pathArg(req)
		if !ok {
			return mcp.NewToolResultError(argPath + " is required"), nil
		}

		p, cleanup, err := open(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer cleanup()

		md, warnings, err := p.Markdown(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		result := mcp.NewToolResultText(md)
		if len(warnings) > 0 {
			result.Content = append(result.Content,
				mcp.NewTextContent("Warnings:\n"+folio.FormatWarnings(warnings)))
		}
		return result, nil
	}
}

type pageVerdict struct {
	Page    int    `json:"page"`
	Verdict string `json:"verdict"`
}

func verdictsHandler(open opener) func(context.Context, mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		path, ok := pathArg(req)
		if !ok {
			return mcp.NewToolResultError(argPath + " is required"), nil
		}

		p, cleanup, err := open(ctx, path)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		defer cleanup()

		res, _, err := p.Process(ctx)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		verdicts := make([]pageVerdict, 0, len(res.Document.Pages))
		for _, page := range res.Document.Pages {
			verdicts = append(verdicts, pageVerdict{Page: page.Number, Verdict: page.Verdict.String()})
		}
		data, err := json.Marshal(verdicts)
		if err != nil {
			return nil, fmt.Errorf("encode verdicts: %w", err)
		}
		return mcp.NewToolResultText(string(data)), nil
	}
}
