package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/mtthwcarey/catalogger/internal/openai"
	"github.com/mtthwcarey/catalogger/internal/shell"
	"github.com/mtthwcarey/catalogger/internal/speech"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "shell",
		Short: "Start the interactive cataloging menu",
		Long: `Starts a menu that catalogs spoken or typed descriptions one at a time, or
processes a batch file.

Spoken input records a short clip with the configured record command and
transcribes it with the OpenAI transcription API, so it needs OPENAI_API_KEY.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := a.newPipeline(cmd.Context())
			if err != nil {
				return err
			}
			runner := a.runnerFor(p)

			sh := shell.New(cmd.InOrStdin(), cmd.OutOrStdout(), p, runner, a.listener())
			return sh.Run(cmd.Context())
		},
	}
}

// listener returns nil when speech input cannot be configured.
func (a *app) listener() shell.Listener {
	if a.cfg.LLM.OpenAIAPIKey == "" {
		slog.Warn("Speech input disabled", "reason", "OPENAI_API_KEY is not set")
		return nil
	}
	transcriber := openai.New(a.cfg.LLM.OpenAIAPIKey, a.cfg.LLM.OpenAIBaseURL)
	recognizer, err := speech.New(a.cfg.Speech.RecordCommand, a.cfg.Speech.Model, transcriber)
	if err != nil {
		slog.Warn("Speech input disabled", "err", err)
		return nil
	}
	return recognizer
}
