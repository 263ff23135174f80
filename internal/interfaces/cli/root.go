// Package cli implements the legalease command line tool.  Every command
// runs the analysis pipeline in-process; documents saved with --save are
// kept in a local SQLite store that the history commands read back.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/turtacn/LegalEase-Intelligence/internal/application/analysis"
	"github.com/turtacn/LegalEase-Intelligence/internal/application/glossary"
	"github.com/turtacn/LegalEase-Intelligence/internal/config"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/database/sqlite"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/extraction"
	"github.com/turtacn/LegalEase-Intelligence/internal/infrastructure/monitoring/logging"
	"github.com/turtacn/LegalEase-Intelligence/pkg/errors"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath   string
	LogLevel     string
	OutputFormat string
	Verbose      bool
	NoColor      bool
	Timeout      time.Duration
	StorePath    string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config       *config.Config
	Logger       logging.Logger
	OutputFormat string
	Verbose      bool
	NoColor      bool
	StorePath    string

	store  *sqlite.Store
	cancel context.CancelFunc
}

// NewRootCommand creates the root command with its global flags and every
// subcommand attached.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "legalease",
		Short: "LegalEase CLI: turn legal documents into plain English",
		Long: "LegalEase simplifies contracts and other legal documents.  It recognizes\n" +
			"legal terms, detects clauses, rewrites legalese into plain English and\n" +
			"scores readability before and after.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPostRun(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.StringVarP(&opts.OutputFormat, "output", "o", "text", "output format (text, json, yaml, table)")
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "enable verbose output")
	pf.BoolVar(&opts.NoColor, "no-color", false, "disable colored output")
	pf.DurationVar(&opts.Timeout, "timeout", 2*time.Minute, "global operation timeout")
	pf.StringVar(&opts.StorePath, "store", "", "SQLite database for saved documents (default from config)")

	cmd.AddCommand(
		NewAnalyzeCmd(),
		NewSimplifyCmd(),
		NewTermsCmd(),
		NewClausesCmd(),
		NewScoreCmd(),
		NewReportCmd(),
		NewGlossaryCmd(),
		NewHistoryCmd(),
		NewVersionCmd(),
	)
	return cmd
}

// persistentPreRun initializes config and logger, then stores CLIContext.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	switch strings.ToLower(opts.OutputFormat) {
	case "text", "json", "yaml", "table":
	default:
		return errors.InvalidParam("unknown output format").WithDetail(opts.OutputFormat)
	}

	cfg, err := config.LoadOrEnv(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, err := initLogger(opts)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}

	if opts.NoColor {
		color.NoColor = true
	}

	storePath := opts.StorePath
	if storePath == "" {
		storePath = cfg.SQLite.Path
	}

	cliCtx := &CLIContext{
		Config:       cfg,
		Logger:       logger,
		OutputFormat: strings.ToLower(opts.OutputFormat),
		Verbose:      opts.Verbose,
		NoColor:      opts.NoColor,
		StorePath:    storePath,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		ctx, cliCtx.cancel = context.WithTimeout(ctx, opts.Timeout)
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, cliCtx))
	return nil
}

func persistentPostRun(cmd *cobra.Command) error {
	cliCtx, err := GetCLIContext(cmd)
	if err != nil {
		return nil
	}
	return cliCtx.Close()
}

// initLogger creates a logger configured for CLI usage (output to stderr).
func initLogger(opts *RootOptions) (logging.Logger, error) {
	level := strings.ToLower(opts.LogLevel)
	if opts.Verbose {
		level = "debug"
	}
	return logging.NewLogger(logging.LogConfig{
		Level:            level,
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		ErrorOutputPaths: []string{"stderr"},
	})
}

// GetCLIContext extracts CLIContext from a cobra command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.InvalidParam("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.InvalidParam("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Store opens the document store on first use.
func (c *CLIContext) Store() (*sqlite.Store, error) {
	if c.store != nil {
		return c.store, nil
	}
	s, err := sqlite.Open(c.StorePath, c.Logger)
	if err != nil {
		return nil, err
	}
	c.store = s
	return s, nil
}

// existingStore opens the document store only when its file is already
// there, so read-only commands do not leave an empty database behind.
func (c *CLIContext) existingStore() (*sqlite.Store, error) {
	if c.store != nil || c.StorePath == ":memory:" {
		return c.Store()
	}
	if _, err := os.Stat(c.StorePath); err != nil {
		return nil, nil
	}
	return c.Store()
}

// AnalysisService builds the in-process analysis service.  With persist set
// analyzed uploads are saved to the document store.
func (c *CLIContext) AnalysisService(persist bool) (analysis.Service, error) {
	opts := []analysis.Option{
		analysis.WithExtractor(extraction.NewService(c.Logger)),
		analysis.WithLimits(c.Config.Analysis.MaxUploadSize, c.Config.Analysis.BatchConcurrency),
	}
	if persist {
		store, err := c.Store()
		if err != nil {
			return nil, err
		}
		opts = append(opts, analysis.WithRepository(store))
	}
	return analysis.NewService(c.Logger, opts...), nil
}

// GlossaryService serves the built-in glossary merged with the stored one
// when a document store exists.  With writable set the store is created.
func (c *CLIContext) GlossaryService(writable bool) (glossary.Service, error) {
	var (
		store *sqlite.Store
		err   error
	)
	if writable {
		store, err = c.Store()
	} else {
		store, err = c.existingStore()
	}
	if err != nil {
		return nil, err
	}
	if store == nil {
		return glossary.NewService(nil, c.Logger), nil
	}
	return glossary.NewService(store.Glossary(), c.Logger), nil
}

// Close releases the store and the command timeout.
func (c *CLIContext) Close() error {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	var err error
	if c.store != nil {
		err = c.store.Close()
		c.store = nil
	}
	_ = c.Logger.Sync()
	return err
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// NewVersionCmd prints build information.
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := BuildInfo{Version: Version, Commit: GitCommit, BuildDate: BuildDate}
			return PrintResult(cmd, Result{
				Data: info,
				Text: func(w *Writer) {
					w.Linef("legalease %s (commit: %s, built: %s)", info.Version, info.Commit, info.BuildDate)
				},
			})
		},
	}
}

// BuildInfo holds version information injected at build time.
type BuildInfo struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildDate string `json:"build_date" yaml:"build_date"`
}
