package padctl

import (
	"context"
	"strings"
	"time"

	"github.com/danmuck/padctl/internal/observability"
	"github.com/danmuck/padctl/internal/tools"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// DefaultTool is the admin tool name resolved from PATH when none is configured.
const DefaultTool = "vpad"

// Controller is the operation surface consumed by the HTTP bridge and CLI.
type Controller interface {
	StartServer(ctx context.Context) Result
	StopServer(ctx context.Context) Result
	CheckServer(ctx context.Context) Result
	Status(ctx context.Context) Result
	ClearPad(ctx context.Context, pad any) Result
	ResetPasswords(ctx context.Context, pads any) Result
}

// Client drives the virtual gamepad server through its admin tool.
// It holds no mutable state; concurrent calls spawn independent processes.
type Client struct {
	runner tools.CommandRunner
	tool   string
	logger zerolog.Logger
	newID  func() string
}

var _ Controller = (*Client)(nil)

type Option func(*Client)

// WithLogger replaces the global logger for invocation logs.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient binds runner to the admin tool at tool (DefaultTool when blank).
func NewClient(runner tools.CommandRunner, tool string, opts ...Option) *Client {
	tool = strings.TrimSpace(tool)
	if tool == "" {
		tool = DefaultTool
	}
	if runner == nil {
		runner = tools.ExecRunner{}
	}
	c := &Client{
		runner: runner,
		tool:   tool,
		logger: log.Logger,
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Tool returns the admin tool path this client invokes.
func (c *Client) Tool() string {
	return c.tool
}

// StartServer runs "server start". A running server answers with its own
// business code (e.g. "server:already-running") inside a zero-exit payload.
func (c *Client) StartServer(ctx context.Context) Result {
	return Decode(c.run(ctx, "server", "start"))
}

// StopServer runs "server stop".
func (c *Client) StopServer(ctx context.Context) Result {
	return Decode(c.run(ctx, "server", "stop"))
}

// CheckServer runs "server check", the liveness probe.
func (c *Client) CheckServer(ctx context.Context) Result {
	return Decode(c.run(ctx, "server", "check"))
}

// Status runs "pad status", which reports bindings and passwords for all slots.
func (c *Client) Status(ctx context.Context) Result {
	return Decode(c.run(ctx, "pad", "status"))
}

// ClearPad clears one slot, or every slot when pad is "all". An invalid pad
// is rejected without invoking the admin tool, echoing pad back as index.
func (c *Client) ClearPad(ctx context.Context, pad any) Result {
	if IsAll(pad) {
		out := c.run(ctx, "pad", "clear-all")
		if out.Kind == tools.OutcomeCompleted && out.ExitCode == 0 {
			// clear-all does not emit a structured reply
			return Result{Code: 0, Details: clearAllOK()}
		}
		return Decode(out)
	}

	idx, err := ParsePadIndex(pad)
	if err != nil {
		observability.RecordPadRejection("clear", "invalid-index")
		c.logger.Warn().Interface("pad", pad).Msg("pad clear rejected")
		return invalidIndex(pad)
	}
	return Decode(c.run(ctx, "pad", "clear", idx.String()))
}

// ResetPasswords rotates the pairing passwords of the selected slots.
// An empty selection after normalization is a no-op success with no details.
func (c *Client) ResetPasswords(ctx context.Context, pads any) Result {
	selected := NormalizePads(pads)
	if len(selected) == 0 {
		observability.RecordPadRejection("reset-passwords", "empty-selection")
		c.logger.Debug().Interface("pads", pads).Msg("pad reset-passwords skipped")
		return Result{Code: 0}
	}

	args := make([]string, 0, len(selected)+2)
	args = append(args, "pad", "reset-passwords")
	for _, idx := range selected {
		args = append(args, idx.String())
	}
	return Decode(c.run(ctx, args...))
}

func (c *Client) run(ctx context.Context, args ...string) tools.Outcome {
	subcommand := strings.Join(args[:2], " ")
	logger := c.logger.With().
		Str("invocation_id", c.newID()).
		Str("subcommand", subcommand).
		Logger()
	logger.Debug().Strs("args", args).Msg("admin command start")

	start := time.Now()
	out := c.runner.Run(ctx, c.tool, args...)
	elapsed := time.Since(start)

	observability.RecordAdminCommand(subcommand, string(out.Kind), out.ExitCode, elapsed)

	event := logger.Debug()
	if out.Kind != tools.OutcomeCompleted || out.ExitCode != 0 {
		event = logger.Warn().Str("reason", out.Reason)
	}
	event.
		Str("outcome", string(out.Kind)).
		Int("exit_code", out.ExitCode).
		Dur("duration", elapsed).
		Msg("admin command done")
	return out
}
