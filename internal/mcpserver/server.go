// Package mcpserver exposes command-tree evaluation as an MCP tool.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/marcelocantos/minish/internal/ast"
	"github.com/marcelocantos/minish/internal/proc"
	"github.com/marcelocantos/minish/internal/session"
	"github.com/marcelocantos/minish/internal/tree"
)

// ToolName is the name of the evaluation tool.
const ToolName = "eval_tree"

// Config configures the server.
type Config struct {
	Version string
	Session *session.Session
	Loader  *tree.Loader
	// Dir is the working directory used when a call names none.
	Dir string
	// Environ is the environment every evaluation starts from.
	Environ []string
	Logger  *zap.Logger
}

// Result is the JSON body of a successful tool call.
type Result struct {
	Run    string `json:"run"`
	Status int    `json:"status"`
	Exited bool   `json:"exited,omitempty"`
	Stdout string `json:"stdout"`
	Stderr string `json:"stderr"`
	Dir    string `json:"dir"`
}

type handler struct {
	cfg Config
}

// New creates an MCP server with the evaluation tool registered.
func New(cfg Config) *server.MCPServer {
	cfg = withDefaults(cfg)
	s := server.NewMCPServer("minish", cfg.Version, server.WithToolCapabilities(false))
	h := &handler{cfg: cfg}
	s.AddTool(mcp.NewTool(ToolName,
		mcp.WithDescription("Evaluate a command tree. Each call starts from a fresh environment; "+
			"standard input is empty and both output streams are captured."),
		mcp.WithString("tree",
			mcp.Required(),
			mcp.Description("The command tree document"),
		),
		mcp.WithString("format",
			mcp.Description("Document format"),
			mcp.Enum("yaml", "starlark"),
		),
		mcp.WithString("dir",
			mcp.Description("Working directory for the evaluation"),
		),
	), h.evalTree)
	return s
}

func withDefaults(cfg Config) Config {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Session == nil {
		cfg.Session = &session.Session{Logger: cfg.Logger}
	}
	if cfg.Loader == nil {
		cfg.Loader = &tree.Loader{Logger: cfg.Logger}
	}
	return cfg
}

// Serve runs the server over stdin and stdout until ctx is done.
func Serve(ctx context.Context, s *server.MCPServer, stdin io.Reader, stdout io.Writer) error {
	return server.NewStdioServer(s).Listen(ctx, stdin, stdout)
}

func (h *handler) evalTree(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := req.RequireString("tree")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	format := tree.FormatYAML
	if req.GetString("format", "yaml") == "starlark" {
		format = tree.FormatStarlark
	}
	node, err := h.cfg.Loader.Parse("tree", format, []byte(doc))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	dir := req.GetString("dir", h.cfg.Dir)
	if dir == "" {
		if dir, err = os.Getwd(); err != nil {
			return nil, err
		}
	}
	if !filepath.IsAbs(dir) {
		return mcp.NewToolResultError(fmt.Sprintf("dir %q is not absolute", dir)), nil
	}

	res, err := h.run(ctx, dir, node)
	if err != nil {
		return nil, err
	}
	body, err := json.Marshal(res)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(body)), nil
}

// run evaluates node with its output captured in temporary files. The
// protocol owns the server's own stdout, so commands never write there.
func (h *handler) run(ctx context.Context, dir string, node ast.Node) (res Result, err error) {
	tmp, err := os.MkdirTemp("", "minish-mcp-")
	if err != nil {
		return res, err
	}
	defer os.RemoveAll(tmp)

	stdin, err := os.Open(os.DevNull)
	if err != nil {
		return res, err
	}
	stdout, err := os.Create(filepath.Join(tmp, "stdout"))
	if err != nil {
		return res, multierr.Append(err, stdin.Close())
	}
	stderr, err := os.Create(filepath.Join(tmp, "stderr"))
	if err != nil {
		return res, multierr.Combine(err, stdin.Close(), stdout.Close())
	}
	defer func() {
		err = multierr.Combine(err, stdin.Close(), stdout.Close(), stderr.Close())
	}()

	pc := proc.New(dir, h.cfg.Environ, proc.Stdio{In: stdin, Out: stdout, Err: stderr})
	out := h.cfg.Session.Run(ctx, pc, "mcp", node)
	res = Result{Run: out.Run, Status: out.Status, Exited: out.Exited}
	res.Dir, _ = pc.Getwd()

	if res.Stdout, err = readAll(stdout.Name()); err != nil {
		return res, err
	}
	if res.Stderr, err = readAll(stderr.Name()); err != nil {
		return res, err
	}
	return res, nil
}

func readAll(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read captured output: %w", err)
	}
	return string(data), nil
}
