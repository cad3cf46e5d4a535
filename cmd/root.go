package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mtthwcarey/catalogger/internal/config"
)

type rootFlags struct {
	configPath string
	verbose    bool
	provider   string
	model      string
	catalog    string
	notes      string
}

func NewRootCmd() *cobra.Command {
	var flags rootFlags
	a := &app{}

	cmd := &cobra.Command{
		Use:   "catalogger",
		Short: "Catalog books from free-text descriptions",
		Long: `Catalogger turns free-text book descriptions into catalog rows.

Each description is sent to a language model to extract the title, author,
format and year, enriched with Google Books metadata and appended to a CSV
catalog. Problem entries are written to a notes file for manual review.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()

			cfg, err := config.Load(flags.configPath)
			if err != nil {
				return err
			}
			applyFlags(cmd, &cfg, flags)
			if err := cfg.Validate(); err != nil {
				return err
			}
			if err := cfg.EnsureDirs(); err != nil {
				return err
			}

			a.cfg = cfg
			return a.setupLogging(flags.verbose)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			a.close()
		},
	}

	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to a YAML or TOML config file")
	cmd.PersistentFlags().BoolVarP(&flags.verbose, "verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&flags.provider, "provider", "", "LLM provider (openai, ollama, gemini)")
	cmd.PersistentFlags().StringVar(&flags.model, "model", "", "LLM model (defaults per provider)")
	cmd.PersistentFlags().StringVar(&flags.catalog, "catalog", "", "Path to the catalog CSV file")
	cmd.PersistentFlags().StringVar(&flags.notes, "notes", "", "Path to the entry notes file")

	cmd.AddCommand(newAddCmd(a))
	cmd.AddCommand(newBatchCmd(a))
	cmd.AddCommand(newShellCmd(a))
	cmd.AddCommand(newServeCmd(a))
	cmd.AddCommand(newExportCmd(a))
	cmd.AddCommand(newHistoryCmd(a))

	return cmd
}

func applyFlags(cmd *cobra.Command, cfg *config.Config, flags rootFlags) {
	if cmd.Flags().Changed("provider") {
		cfg.LLM.Provider = flags.provider
		if !cmd.Flags().Changed("model") {
			cfg.LLM.Model = config.DefaultModel(flags.provider)
		}
	}
	if cmd.Flags().Changed("model") {
		cfg.LLM.Model = flags.model
	}
	if cmd.Flags().Changed("catalog") {
		cfg.CatalogFile = flags.catalog
	}
	if cmd.Flags().Changed("notes") {
		cfg.NotesFile = flags.notes
	}
}

func (a *app) setupLogging(verbose bool) error {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	} else if env := os.Getenv("LOG_LEVEL"); env != "" {
		if err := level.UnmarshalText([]byte(strings.ToUpper(env))); err != nil {
			return fmt.Errorf("invalid LOG_LEVEL %q: %w", env, err)
		}
	}

	var w io.Writer = os.Stderr
	if a.cfg.LogFile != "" {
		f, err := os.OpenFile(a.cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.logFile = f
		w = io.MultiWriter(os.Stderr, f)
	}

	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return nil
}
