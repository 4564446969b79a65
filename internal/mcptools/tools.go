// Package mcptools serves generation and enrichment as MCP tools over stdio.
package mcptools

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"spec-synth/internal/assembler"
	"spec-synth/internal/config"
	"spec-synth/internal/logger"
	"spec-synth/internal/model"
	"spec-synth/internal/nlp"
	"spec-synth/internal/pipeline"
)

const serverName = "spec-synth"

// Tools holds what every tool call needs.
type Tools struct {
	cfg       *config.Config
	describer nlp.Describer
}

// New returns the tool set. A nil describer serves undecorated documents.
func New(cfg *config.Config, describer nlp.Describer) *Tools {
	return &Tools{cfg: cfg, describer: describer}
}

// NewServer creates the MCP server with every tool registered.
func NewServer(cfg *config.Config, describer nlp.Describer, version string) *server.MCPServer {
	s := server.NewMCPServer(
		serverName,
		version,
		server.WithToolCapabilities(false),
	)
	New(cfg, describer).Register(s)
	return s
}

// Serve runs the MCP server on stdin/stdout until the client disconnects.
func Serve(cfg *config.Config, describer nlp.Describer, version string) error {
	return server.ServeStdio(NewServer(cfg, describer, version))
}

// Register adds the tools to s.
func (t *Tools) Register(s *server.MCPServer) {
	s.AddTool(
		mcp.NewTool("generate_openapi",
			mcp.WithDescription("Generate an OpenAPI 3.0 document from a Spring project's Java sources"),
			mcp.WithString("root", mcp.Required(), mcp.Description("Project source directory")),
			mcp.WithString("level", mcp.Description("Description detail: short, medium (default) or long")),
			mcp.WithString("format", mcp.Description("yaml (default) or json")),
		),
		t.GenerateOpenAPI,
	)

	s.AddTool(
		mcp.NewTool("enrich_openapi",
			mcp.WithDescription("Add generated descriptions to an existing OpenAPI document"),
			mcp.WithString("spec", mcp.Description("The specification text (YAML or JSON)")),
			mcp.WithString("path", mcp.Description("Path of a specification file, used when spec is empty")),
			mcp.WithString("level", mcp.Description("Description detail: short, medium (default) or long")),
		),
		t.EnrichOpenAPI,
	)

	s.AddTool(
		mcp.NewTool("describe_inputs",
			mcp.WithDescription("List the description requests a generation run would send, without sending them"),
			mcp.WithString("root", mcp.Required(), mcp.Description("Project source directory")),
		),
		t.DescribeInputs,
	)
}

// GenerateOpenAPI handles generate_openapi.
func (t *Tools) GenerateOpenAPI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	root := stringArg(args, "root")
	if root == "" {
		return mcp.NewToolResultError("root is required"), nil
	}
	format := strings.ToLower(stringArg(args, "format"))
	if format != "" && format != "yaml" && format != "json" {
		return mcp.NewToolResultError("format must be yaml or json"), nil
	}
	cfg, err := t.projectConfig(root, stringArg(args, "level"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	runID := uuid.NewString()
	logger.Info("[%s] generate_openapi root=%s", runID, root)

	out, err := pipeline.Generate(ctx, cfg, pipeline.Options{Describer: t.describer, NoSpecFallback: true})
	if errors.Is(err, pipeline.ErrNoEndpoints) {
		return mcp.NewToolResultError("No endpoints found in source code."), nil
	}
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("generation failed: %v", err)), nil
	}

	body, err := out.Render(format)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("[%s] %d operations, %d enriched", runID, out.Document.OperationCount(), out.Enriched)
	return mcp.NewToolResultText(string(body)), nil
}

// EnrichOpenAPI handles enrich_openapi.
func (t *Tools) EnrichOpenAPI(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	level, err := model.ParseDetailLevel(stringArg(args, "level"))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	source := "spec"
	data := []byte(stringArg(args, "spec"))
	if len(strings.TrimSpace(string(data))) == 0 {
		path := stringArg(args, "path")
		if path == "" {
			return mcp.NewToolResultError("spec or path is required"), nil
		}
		if data, err = os.ReadFile(path); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("reading specification: %v", err)), nil
		}
		source = path
	}

	runID := uuid.NewString()
	logger.Info("[%s] enrich_openapi source=%s", runID, source)

	res, err := assembler.EnrichSpec(ctx, data, source, t.describer, assembler.SpecOptions{
		Level:   level,
		Timeout: t.cfg.NLP.SpecTimeout,
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	logger.Info("[%s] %d operations, %d enriched", runID, res.Operations, res.Enriched)
	return mcp.NewToolResultText(string(res.YAML)), nil
}

// DescribeInputs handles describe_inputs.
func (t *Tools) DescribeInputs(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	cfg, err := t.projectConfig(stringArg(req.GetArguments(), "root"), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	reqs, err := pipeline.Requests(cfg)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	data, _ := json.MarshalIndent(reqs, "", "  ")
	return mcp.NewToolResultText(string(data)), nil
}

func (t *Tools) projectConfig(root, level string) (*config.Config, error) {
	if root == "" {
		return nil, fmt.Errorf("root is required")
	}
	if info, err := os.Stat(root); err != nil || !info.IsDir() {
		return nil, fmt.Errorf("project not found: %s", root)
	}
	cfg := *t.cfg
	cfg.Project.RootDir = root
	if level != "" {
		if _, err := model.ParseDetailLevel(level); err != nil {
			return nil, err
		}
		cfg.Generation.Level = level
	}
	return &cfg, nil
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}
