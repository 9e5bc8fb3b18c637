// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the manifest read-only to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/docbrief/internal/models"
	"github.com/starford/docbrief/internal/state"
)

// ManifestURI is the resource URI of the persisted manifest.
const ManifestURI = "docbrief://manifest"

// DefaultChangelogLimit caps get_changelog when no limit is given.
const DefaultChangelogLimit = 20

// Loader reads the current manifest. state.Store satisfies it.
type Loader interface {
	Load() (*models.Manifest, error)
}

// Server wraps the MCP server with docbrief tools.
type Server struct {
	mcp    *server.MCPServer
	loader Loader
}

// New creates a new MCP server with all tools registered. version is
// reported to clients.
func New(loader Loader, version string) *Server {
	s := &Server{loader: loader}

	s.mcp = server.NewMCPServer(
		"DocBrief",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("brief_status",
		mcp.WithDescription("Summary of the build state: tracked documents, changelog size, last build time."),
	), s.briefStatus)

	s.mcp.AddTool(mcp.NewTool("list_documents",
		mcp.WithDescription("List tracked documents with fingerprint, modification time and bullet count."),
		mcp.WithString("prefix", mcp.Description("Optional path prefix filter")),
	), s.listDocuments)

	s.mcp.AddTool(mcp.NewTool("get_summary",
		mcp.WithDescription("Return the summary bullets of one tracked document."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Document identity as listed by list_documents")),
	), s.getSummary)

	s.mcp.AddTool(mcp.NewTool("get_changelog",
		mcp.WithDescription("Return the most recent changelog entries, oldest first."),
		mcp.WithNumber("limit", mcp.Description("Maximum entries to return (default 20)")),
		mcp.WithString("target", mcp.Description("Only entries for this document, or (all)")),
	), s.getChangelog)

	s.mcp.AddResource(
		mcp.NewResource(ManifestURI, "Manifest",
			mcp.WithResourceDescription("The persisted build manifest as JSON."),
			mcp.WithMIMEType("application/json"),
		),
		s.readManifestResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

type documentInfo struct {
	Path        string `json:"path"`
	Fingerprint string `json:"fingerprint"`
	MTime       string `json:"mtime"`
	Bullets     int    `json:"bullets"`
}

func (s *Server) briefStatus(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.loader.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	generated := m.GeneratedAt
	if generated == "" {
		generated = "never"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "manifest version: %d\n", m.Version)
	fmt.Fprintf(&b, "tracked files: %d\n", len(m.Files))
	fmt.Fprintf(&b, "changelog rows: %d\n", len(m.Changelog))
	fmt.Fprintf(&b, "last build: %s", generated)
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) listDocuments(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.loader.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	prefix := req.GetString("prefix", "")

	docs := []documentInfo{}
	for _, p := range m.Paths() {
		if !strings.HasPrefix(p, prefix) {
			continue
		}
		rec := m.Files[p]
		docs = append(docs, documentInfo{
			Path:        p,
			Fingerprint: rec.Fingerprint,
			MTime:       rec.MTime.Format(time.RFC3339),
			Bullets:     len(rec.Summary),
		})
	}
	out, _ := json.MarshalIndent(docs, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) getSummary(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	m, err := s.loader.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	rec, ok := m.Files[path]
	if !ok {
		return mcp.NewToolResultError(fmt.Sprintf("not tracked: %s", path)), nil
	}
	if len(rec.Summary) == 0 {
		return mcp.NewToolResultText("no summary bullets"), nil
	}
	lines := make([]string, len(rec.Summary))
	for i, b := range rec.Summary {
		lines[i] = "* " + b
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) getChangelog(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	m, err := s.loader.Load()
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	limit := intArg(req, "limit", DefaultChangelogLimit)
	if limit <= 0 {
		return mcp.NewToolResultError("'limit' must be > 0"), nil
	}
	target := req.GetString("target", "")

	entries := []models.ChangeEntry{}
	for _, e := range m.Changelog {
		if target == "" || e.Target == target {
			entries = append(entries, e)
		}
	}
	if len(entries) > limit {
		entries = entries[len(entries)-limit:]
	}
	out, _ := json.MarshalIndent(entries, "", "  ")
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) readManifestResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	m, err := s.loader.Load()
	if err != nil {
		return nil, err
	}
	data, err := state.Encode(m)
	if err != nil {
		return nil, err
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ManifestURI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// intArg extracts an integer argument from a tool request, returning
// defaultVal if the key is missing or not a number (JSON numbers are float64).
func intArg(req mcp.CallToolRequest, key string, defaultVal int) int {
	v, ok := req.GetArguments()[key].(float64)
	if !ok {
		return defaultVal
	}
	return int(v)
}
