// Package cli provides the command-line interface for picoscreen.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/spf13/cobra"

	"github.com/raphaelgruber/picoscreen/internal/comprehend"
	"github.com/raphaelgruber/picoscreen/internal/config"
	"github.com/raphaelgruber/picoscreen/internal/metrics"
	"github.com/raphaelgruber/picoscreen/internal/pipeline"
	"github.com/raphaelgruber/picoscreen/internal/storage"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose    bool
	configPath string
	envFile    string
	inputPath  string
	localRoot  string

	// Global config, logger and metrics
	cfg          config.Config
	logger       *slog.Logger
	closeLog     func() error
	collector    *metrics.Collector
	orchestrator *pipeline.Orchestrator
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "picoscreen",
	Short: "Screen a document corpus against a PICO research question",
	Long: `Picoscreen scores documents against a clinical research question framed
as Population, Intervention, Comparison and Outcome.

Both the question and the corpus run through three medical NLP extraction
jobs. Each stage is one invocation reading JSON from --input (or stdin) and
writing JSON to stdout, so an external scheduler can chain them:

  submit  -> poll (or wait) -> combine -> score`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip setup for version and help commands
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}

		var err error
		if configPath != "" {
			cfg, err = config.LoadFile(configPath)
			if err != nil {
				return err
			}
		} else {
			cfg = config.Load()
		}
		if verbose {
			cfg.LogLevel = slog.LevelDebug
		}

		logger, closeLog = config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		slog.SetDefault(logger)
		collector = metrics.NewCollector()
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if collector != nil {
			logger.Debug("invocation metrics", collector.Snapshot().LogAttrs()...)
		}
		if closeLog != nil {
			if err := closeLog(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
			closeLog = nil
		}
	},
}

// loadAWSConfig resolves credentials and region the SDK's default way.
func loadAWSConfig(ctx context.Context) (aws.Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWSRegion))
	if err != nil {
		return aws.Config{}, fmt.Errorf("load aws config: %w", err)
	}
	return awsCfg, nil
}

// getStore returns the object store: a local directory when --local-root is
// set, S3 otherwise.
func getStore(ctx context.Context) (storage.Store, error) {
	if localRoot != "" {
		return storage.NewDirStore(localRoot), nil
	}
	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	return storage.NewS3Store(storage.NewS3Client(awsCfg, cfg.S3Endpoint), logger), nil
}

// getOrchestrator builds the orchestrator on first use.
func getOrchestrator(ctx context.Context) (*pipeline.Orchestrator, error) {
	if orchestrator != nil {
		return orchestrator, nil
	}

	awsCfg, err := loadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}
	store, err := getStore(ctx)
	if err != nil {
		return nil, err
	}

	orchestrator = pipeline.New(comprehend.NewFromConfig(awsCfg, logger), store, cfg, collector, logger)
	return orchestrator, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "YAML or TOML config file (environment overrides it)")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file exported before reading the environment")
	rootCmd.PersistentFlags().StringVarP(&inputPath, "input", "i", "-", "JSON input file, - for stdin")
	rootCmd.PersistentFlags().StringVar(&localRoot, "local-root", "", "read job output from <dir>/<bucket>/<key> instead of S3")

	// Add subcommands
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(pollCmd)
	rootCmd.AddCommand(waitCmd)
	rootCmd.AddCommand(combineCmd)
	rootCmd.AddCommand(scoreCmd)
	rootCmd.AddCommand(proximityCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "picoscreen", Version)
	},
}
