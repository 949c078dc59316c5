package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"regexp"
	"syscall"

	"github.com/danmuck/padctl/internal/config"
	"github.com/danmuck/padctl/internal/observability"
	"github.com/danmuck/padctl/internal/padctl"
	"github.com/danmuck/padctl/internal/server"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "padctl",
		Short:         "Control the virtual gamepad server through its admin tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			observability.InitLogger("padctl")
		},
	}
	root.PersistentFlags().StringVarP(&a.configPath, "config", "c", "", "config file (default $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	root.PersistentFlags().StringVar(&a.tool, "tool", "", "admin tool path, overrides config")
	root.PersistentFlags().DurationVar(&a.timeout, "timeout", 0, "per-command timeout, overrides config (0 disables)")

	root.AddCommand(a.serverCmd(), a.padCmd(), a.serveCmd(), a.configCmd())
	return root
}

// operation wraps one pad control call as a cobra RunE.
func (a *app) operation(call func(ctx context.Context, c *padctl.Client, args []string) padctl.Result) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		cfg, err := a.loadConfig(flags.Changed("tool"), flags.Changed("timeout"))
		if err != nil {
			return err
		}
		return a.emit(call(cmd.Context(), a.client(cfg), args))
	}
}

func (a *app) serverCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "server",
		Short: "Server lifecycle and liveness",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "start",
			Short: "Start the virtual gamepad server",
			Args:  cobra.NoArgs,
			RunE: a.operation(func(ctx context.Context, c *padctl.Client, _ []string) padctl.Result {
				return c.StartServer(ctx)
			}),
		},
		&cobra.Command{
			Use:   "stop",
			Short: "Stop the virtual gamepad server",
			Args:  cobra.NoArgs,
			RunE: a.operation(func(ctx context.Context, c *padctl.Client, _ []string) padctl.Result {
				return c.StopServer(ctx)
			}),
		},
		&cobra.Command{
			Use:   "check",
			Short: "Probe server liveness",
			Args:  cobra.NoArgs,
			RunE: a.operation(func(ctx context.Context, c *padctl.Client, _ []string) padctl.Result {
				return c.CheckServer(ctx)
			}),
		},
	)
	return cmd
}

func (a *app) padCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pad",
		Short: "Inspect and manage pad slots",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "status",
			Short: "Show bindings and passwords for every slot",
			Args:  cobra.NoArgs,
			RunE: a.operation(func(ctx context.Context, c *padctl.Client, _ []string) padctl.Result {
				return c.Status(ctx)
			}),
		},
		&cobra.Command{
			Use:                "clear <pad|all>",
			Short:              "Clear one slot's binding, or every slot",
			DisableFlagParsing: true,
			RunE: a.padOperation(1, func(ctx context.Context, c *padctl.Client, args []string) padctl.Result {
				return c.ClearPad(ctx, args[0])
			}),
		},
		&cobra.Command{
			Use:                "reset-passwords [pad...|all]",
			Short:              "Rotate pairing passwords for the selected slots",
			DisableFlagParsing: true,
			RunE: a.padOperation(-1, func(ctx context.Context, c *padctl.Client, args []string) padctl.Result {
				return c.ResetPasswords(ctx, selectorFromArgs(args))
			}),
		},
	)
	return cmd
}

// negativeIndex matches args pflag would otherwise read as shorthand flags.
var negativeIndex = regexp.MustCompile(`^-[0-9]+$`)

// padOperation is operation for commands taking pad indices. Flag parsing is
// done here so "-1" reaches pad validation instead of failing as a flag.
// exact < 0 accepts any number of args.
func (a *app) padOperation(exact int, call func(ctx context.Context, c *padctl.Client, args []string) padctl.Result) func(*cobra.Command, []string) error {
	run := a.operation(call)
	return func(cmd *cobra.Command, raw []string) error {
		var rest, negatives []string
		for _, arg := range raw {
			if negativeIndex.MatchString(arg) {
				negatives = append(negatives, arg)
				continue
			}
			rest = append(rest, arg)
		}

		flags := cmd.Flags()
		flags.AddFlagSet(cmd.InheritedFlags())
		if err := flags.Parse(rest); err != nil {
			return err
		}
		if help, _ := flags.GetBool("help"); help {
			return cmd.Help()
		}

		args := append(flags.Args(), negatives...)
		if exact >= 0 && len(args) != exact {
			return fmt.Errorf("accepts %d arg(s), received %d", exact, len(args))
		}
		return run(cmd, args)
	}
}

func selectorFromArgs(args []string) any {
	switch {
	case len(args) == 0:
		return nil
	case len(args) == 1 && padctl.IsAll(args[0]):
		return padctl.AllPads
	default:
		return args
	}
}

func (a *app) serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP bridge for a UI process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			cfg, err := a.loadConfig(flags.Changed("tool"), flags.Changed("timeout"))
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			bridge, err := server.New(a.client(cfg), server.Options{
				ID:          "padctl",
				Addr:        cfg.Bridge.Addr,
				CorsOrigins: cfg.Bridge.CorsOrigins,
				AuthToken:   cfg.Bridge.AuthToken,
				RateLimit:   cfg.Bridge.RateLimit,
				RateBurst:   cfg.Bridge.RateBurst,
			})
			if err != nil {
				return err
			}
			log.Info().
				Str("tool", cfg.Tool).
				Bool("remote", cfg.Remote.Enabled).
				Dur("timeout", cfg.Timeout).
				Msg("padctl bridge starting")
			return bridge.Serve(ctx)
		},
	}
}

func (a *app) configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Write or validate config files",
	}

	var kind string
	var force bool
	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "Write a starter config",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.pathArg(args)
			if err := config.WriteTemplate(path, kind, force); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "wrote %s config template to %s\n", kind, path)
			return nil
		},
	}
	initCmd.Flags().StringVar(&kind, "kind", "local", "template kind: local|remote")
	initCmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")

	validateCmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := a.pathArg(args)
			if _, err := config.Load(path); err != nil {
				return err
			}
			fmt.Fprintf(a.out, "validated config at %s\n", path)
			return nil
		},
	}

	cmd.AddCommand(initCmd, validateCmd)
	return cmd
}

func (a *app) pathArg(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	return config.ResolvePath(a.configPath)
}
