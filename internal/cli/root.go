// Package cli provides the command-line interface for anima.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/anima-ai/anima/internal/agent"
	"github.com/anima-ai/anima/internal/config"
	"github.com/anima-ai/anima/internal/db"
	"github.com/anima-ai/anima/internal/llm"
	"github.com/anima-ai/anima/internal/metrics"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	cfg       config.Config
	policy    config.Policy
	dbClient  *db.Client
	session   *agent.Session
	collector *metrics.Collector

	logCleanup func() error
)

var rootCmd = &cobra.Command{
	Use:   "anima",
	Short: "An affective conversational agent",
	Long: `Anima is a conversational agent with a simulated affective layer:
every exchange is scored, remembered and fed back into a homeostatic
state that shapes how the next response is generated. Sustained
dissatisfaction triggers creative attempts - ideas, plans, code or
image prompts - whose outcomes feed back into the same loop.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" {
			return nil
		}

		cfg = config.Load()

		var err error
		policy, err = config.LoadPolicy(cfg.PolicyFile)
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}

		logger, cleanup := config.SetupLogger(cfg.LogFile, cfg.LogLevel)
		logCleanup = cleanup

		ctx := context.Background()

		var persistence agent.Persistence
		if cfg.PersistenceEnabled {
			dbClient, err = db.NewClient(ctx, db.Config{
				URL:       cfg.SurrealDBURL,
				Namespace: cfg.SurrealDBNamespace,
				Database:  cfg.SurrealDBDatabase,
				Username:  cfg.SurrealDBUser,
				Password:  cfg.SurrealDBPass,
				AuthLevel: cfg.SurrealDBAuthLevel,
			}, logger)
			if err != nil {
				return fmt.Errorf("connect to database: %w", err)
			}
			if err := dbClient.InitSchema(ctx); err != nil {
				return fmt.Errorf("initialize schema: %w", err)
			}
			persistence = dbClient
		}

		generator, err := llm.NewGenerator(ctx, cfg, logger)
		if err != nil {
			return fmt.Errorf("init generator: %w", err)
		}

		writer, err := agent.NewFileArtifactWriter(cfg.ArtifactsDir)
		if err != nil {
			return fmt.Errorf("init artifact writer: %w", err)
		}

		collector = metrics.NewCollector()
		session = agent.NewSession(agent.Options{
			Config:      cfg,
			Policy:      policy,
			Generator:   generator,
			Persistence: persistence,
			Writer:      writer,
			Metrics:     collector,
			Logger:      logger,
		})

		if err := session.Restore(ctx); err != nil {
			return fmt.Errorf("restore session: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if dbClient != nil {
			if err := dbClient.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close database: %v\n", err)
			}
		}
		if logCleanup != nil {
			_ = logCleanup()
		}
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(benchmarkCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(memoriesCmd)
	rootCmd.AddCommand(artifactsCmd)
	rootCmd.AddCommand(resetCmd)
}
