package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/teemow/timetree/internal/config"
	"github.com/teemow/timetree/internal/instrumentation"
	"github.com/teemow/timetree/internal/logging"
	"github.com/teemow/timetree/internal/timetree"
	"github.com/teemow/timetree/internal/transport"
)

// version will be set by main
var version = "dev"

// SetVersion sets the version reported by the CLI
func SetVersion(v string) {
	version = v
}

// globalOptions are the persistent flags shared by all commands.
type globalOptions struct {
	configPath string
	envFile    string
	token      string
	baseURL    string
	timezone   string
	logLevel   string
	logFormat  string
}

// load resolves the configuration and builds the logger. Flags set on the
// command line win over every other source.
func (o *globalOptions) load(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(o.configPath, o.envFile)
	if err != nil {
		return nil, nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("token") {
		cfg.Token = o.token
	}
	if flags.Changed("base-url") {
		cfg.BaseURL = o.baseURL
	}
	if flags.Changed("timezone") {
		cfg.Timezone = o.timezone
	}
	if flags.Changed("log-level") {
		cfg.Logging.Level = o.logLevel
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format = o.logFormat
	}

	if err := cfg.Validate(); err != nil {
		return nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger, err := logging.NewLogger(logging.Options{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Writer: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, err
	}

	return cfg, logger, nil
}

// newClient builds a TimeTree client for cfg. metrics may be nil.
func newClient(cfg *config.Config, logger *slog.Logger, metrics *instrumentation.Metrics) (*timetree.Client, error) {
	tc := cfg.TransportConfig()
	tc.UserAgent = "timetree/" + version
	tc.Logger = logger
	tc.Metrics = metrics

	tr, err := transport.New(tc)
	if err != nil {
		return nil, fmt.Errorf("failed to create transport: %w", err)
	}

	return timetree.New(tr, timetree.WithLogger(logger), timetree.WithMetrics(metrics)), nil
}

// connect loads the configuration and returns a client without metrics.
func (o *globalOptions) connect(cmd *cobra.Command) (*timetree.Client, *config.Config, error) {
	cfg, logger, err := o.load(cmd)
	if err != nil {
		return nil, nil, err
	}
	client, err := newClient(cfg, logger, nil)
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// newRootCmd represents the base command for the timetree application
func newRootCmd() *cobra.Command {
	opts := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "timetree",
		Short: "Read and write TimeTree calendars",
		Long: `timetree talks to the TimeTree calendar API with a personal access token.

It can run as:
  - A CLI for calendars, labels, members and events
  - An MCP (Model Context Protocol) server for AI assistants`,
		Version:      version,
		SilenceUsage: true,
	}
	rootCmd.SetVersionTemplate(`{{printf "timetree version %s\n" .Version}}`)

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "Path to a YAML config file")
	pf.StringVar(&opts.envFile, "env-file", "", "Path to a .env file (default: .env when present)")
	pf.StringVar(&opts.token, "token", "", "TimeTree personal access token. Can also use "+config.EnvToken+" env var.")
	pf.StringVar(&opts.baseURL, "base-url", "", "API base URL. Can also use "+config.EnvBaseURL+" env var.")
	pf.StringVar(&opts.timezone, "timezone", "", "Default IANA zone for events (default: "+timetree.DefaultTimezone+"). Can also use "+config.EnvTimezone+" env var.")
	pf.StringVar(&opts.logLevel, "log-level", "", "Log level: debug, info, warn, error. Can also use "+config.EnvLogLevel+" env var.")
	pf.StringVar(&opts.logFormat, "log-format", "", "Log format: text, json, color. Can also use "+config.EnvLogFormat+" env var.")

	rootCmd.AddCommand(newCalendarsCmd(opts))
	rootCmd.AddCommand(newEventsCmd(opts))
	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newGenerateDocsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd
}

// Execute is the main entry point for the CLI application
func Execute() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	cancel()
	if err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "timetree version %s\n", version)
		},
	}
}
