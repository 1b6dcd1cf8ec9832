package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"relabel/internal/checkpoint"
	"relabel/internal/config"
	"relabel/internal/logging"
	"relabel/internal/oracle"
	"relabel/internal/pipeline"
	"relabel/internal/rename"

	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:   "relabel",
		Short: "AI-assisted renamer for minified JavaScript identifiers",
	}
	configPath string
	outDir     string
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVarP(&outDir, "out", "o", "", "Output directory (overrides config)")

	renameCmd.Flags().IntVar(&windowFlag, "window", 0, "Context window size in bytes handed to the oracle (overrides config)")
	renameCmd.Flags().IntVar(&intervalFlag, "interval", 0, "Processed bindings between checkpoint saves (default depends on provider)")

	rootCmd.AddCommand(renameCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mergeCmd)
}

var (
	windowFlag   int
	intervalFlag int
)

// loadSetup loads config, installs logging, and opens the checkpoint
// store under the output directory.
func loadSetup() (*config.Config, *checkpoint.Store, error) {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	if outDir != "" {
		cfg.Output.Dir = outDir
	}

	logging.Setup(cfg.Log.Filename, logging.ParseLevel(cfg.Log.Level), cfg.Log.MaxSizeMB, cfg.Log.MaxBackups, cfg.Log.MaxAgeDays)

	return cfg, checkpoint.New(cfg.Output.Dir), nil
}

var renameCmd = &cobra.Command{
	Use:   "rename [path]",
	Short: "Rename minified identifiers in every JavaScript file under path",
	Long: "Walks path for JavaScript files, asks the configured naming oracle for a better name\n" +
		"for each identifier binding, and writes the renamed files plus a consolidated mapping\n" +
		"to the output directory. Interrupted runs resume from the last checkpoint.",
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		path := "."
		if len(args) > 0 {
			path = args[0]
		}

		cfg, store, err := loadSetup()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		files, err := pipeline.ListSourceFiles(path)
		if err != nil {
			log.Fatalf("Failed to scan sources: %v", err)
		}
		if len(files) == 0 {
			fmt.Println("No JavaScript files found.")
			return
		}
		fmt.Printf("📂 Found %d source files under %s\n", len(files), path)

		ctx := context.Background()
		renamer, err := oracle.New(ctx, oracle.Options{
			Provider: cfg.AI.Provider,
			APIKey:   cfg.AI.APIKey,
			Model:    cfg.AI.Model,
			BaseURL:  cfg.AI.BaseURL,
		})
		if err != nil {
			log.Fatalf("Failed to create naming oracle: %v", err)
		}

		state := rename.NewState()
		if rec, ok := store.Load(); ok {
			state = rename.StateFromRecord(rec)
			fmt.Printf("🔄 Resuming from checkpoint: file %d, identifier %d, %d names done\n",
				rec.CurrentFileIndex, rec.CurrentIdentifierIndex, len(rec.ProcessedIdentifiers))
		}

		interval := intervalFlag
		if interval == 0 {
			interval = cfg.Rename.CheckpointInterval
		}
		if interval == 0 {
			interval = oracle.CheckpointInterval(cfg.AI.Provider)
		}
		window := windowFlag
		if window == 0 {
			window = cfg.Rename.ContextWindow
		}

		progress := func(fraction float64) {
			fmt.Printf("\r  renaming… %3.0f%%", fraction*100)
			if fraction >= 1 {
				fmt.Println()
			}
		}

		orch := rename.NewOrchestrator(renamer, store, window, interval, progress)
		driver := pipeline.NewDriver(store, cfg.Output.Dir, pipeline.NewRenameStage(orch, state))

		fmt.Printf("🚀 Renaming with %s (window %d, checkpoint every %d)\n", cfg.AI.Provider, window, interval)
		if err := driver.Run(ctx, files, state); err != nil {
			log.Fatalf("Run failed: %v", err)
		}

		fmt.Printf("🎉 Done! Renamed sources and %s written to %s\n", pipeline.MappingArtifact, cfg.Output.Dir)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show checkpoint progress and pending shards",
	Run: func(cmd *cobra.Command, args []string) {
		_, store, err := loadSetup()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		rec, ok := store.Load()
		if !ok {
			fmt.Println("No checkpoint found: nothing in progress.")
		} else {
			fmt.Printf("Checkpoint: file %d, identifier %d\n", rec.CurrentFileIndex, rec.CurrentIdentifierIndex)
			fmt.Printf("  processed identifiers: %d\n", len(rec.ProcessedIdentifiers))
			fmt.Printf("  accepted renames:      %d\n", len(rec.Renames))
		}
		fmt.Printf("Pending shards: %d\n", store.ShardCount())
	},
}

var mergeCmd = &cobra.Command{
	Use:   "merge",
	Short: "Merge persisted shards into the consolidated mapping artifact",
	Long:  "Recovery tool: folds whatever shards exist into " + pipeline.MappingArtifact + " without running the pipeline.",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, store, err := loadSetup()
		if err != nil {
			log.Fatalf("Setup failed: %v", err)
		}

		shards := store.LoadAllShards()
		if len(shards) == 0 {
			fmt.Println("No shards to merge.")
			return
		}

		driver := pipeline.NewDriver(store, cfg.Output.Dir)
		if err := driver.WriteMappingFromShards(shards); err != nil {
			log.Fatalf("Merge failed: %v", err)
		}
		fmt.Printf("✅ Merged %d shards into %s\n", len(shards), pipeline.MappingArtifact)
	},
}
