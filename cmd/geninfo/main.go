// geninfo is the release helper for the custom Caddy build. It lists
// the module's dependency graph, diffs it against the manifest from the
// previous release, and emits release notes, a fresh manifest, and the
// xcaddy --with arguments as GitHub Actions step outputs.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/ivanphz/my-custom-caddy/internal/ciout"
	"github.com/ivanphz/my-custom-caddy/internal/config"
	"github.com/ivanphz/my-custom-caddy/internal/manifest"
	"github.com/ivanphz/my-custom-caddy/internal/modlist"
	"github.com/ivanphz/my-custom-caddy/internal/report"
)

var (
	// Global flags
	verbose    bool
	moduleDir  string
	configPath string
	repo       string
	timeout    time.Duration

	// Logger
	logger *zap.Logger
)

// rootCmd runs the full pipeline; generate exists as an explicit alias
// so workflows can spell out what they invoke.
var rootCmd = &cobra.Command{
	Use:   "geninfo",
	Short: "Generate release notes and xcaddy arguments from the module graph",
	Long: `geninfo inspects the Go module dependency graph of this repository,
compares it against the manifest published with the latest release, and writes:

  release_notes.md   plugin change log and status table
  manifest.json      the new baseline for the next run
  GITHUB_OUTPUT      XCADDY_ARGS and CADDY_VERSION step outputs`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Initialize logger
		cfg := zap.NewProductionConfig()
		if verbose {
			cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = cfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runGenerate,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Run the release-info pipeline (default action)",
	RunE:  runGenerate,
}

func runGenerate(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if repo != "" {
		cfg.Repo = repo
	}
	if timeout > 0 {
		cfg.FetchTimeout = timeout
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger.Info("generating release info",
		zap.String("repo", cfg.Repo),
		zap.String("dir", moduleDir))

	listCtx, cancel := context.WithTimeout(baseCtx, cfg.ListTimeout)
	defer cancel()
	lister := modlist.NewLister(modlist.GoRunner{Dir: moduleDir}, logger)
	mods, err := lister.List(listCtx)
	if err != nil {
		return fmt.Errorf("list module graph: %w", err)
	}

	snap := manifest.Normalize(mods, cfg, logger)
	logger.Info("snapshot normalized",
		zap.Int("plugins", len(snap.Plugins)),
		zap.Bool("core_found", snap.Core != nil))

	store := manifest.NewStore(cfg, logger)
	previous := store.FetchPrevious(baseCtx)

	gen := report.New(cfg, logger)
	notes := gen.Notes(snap, previous)
	xcaddyArgs := gen.BuildArgs(snap)

	sink := ciout.New(cfg, logger)
	if err := sink.WriteNotes(notes); err != nil {
		return err
	}
	if err := store.Persist(snap); err != nil {
		return err
	}

	coreVersion := ciout.UnknownCoreVersion
	if snap.Core != nil {
		coreVersion = snap.Core.Version
	}
	return sink.AppendGitHubOutputs(xcaddyArgs, coreVersion)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&moduleDir, "dir", "", "module root to inspect (default: current directory)")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "geninfo.yaml", "pipeline config file")
	rootCmd.PersistentFlags().StringVar(&repo, "repo", "", "owner/name repository (default: GITHUB_REPOSITORY)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "manifest fetch timeout (default: 30s)")
	rootCmd.AddCommand(generateCmd)
}

func main() {
	// Local runs pick up GITHUB_REPOSITORY etc. from a .env file.
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
