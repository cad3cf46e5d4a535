// Package speech captures a spoken book description and turns it into text.
package speech

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FilePlaceholder marks where the record command takes its output path.
const FilePlaceholder = "{file}"

// ErrNoSpeech is returned when the recording produced no usable text.
var ErrNoSpeech = errors.New("no speech recognized")

// Transcriber converts an audio file to text.
type Transcriber interface {
	Transcribe(ctx context.Context, model, audioPath string) (string, error)
}

// CommandRunner runs an external program.
type CommandRunner func(ctx context.Context, name string, args ...string) error

// Recognizer records a clip with an external command and transcribes it.
type Recognizer struct {
	command     []string
	model       string
	transcriber Transcriber
	run         CommandRunner
}

// New returns a Recognizer. command must contain FilePlaceholder.
func New(command []string, model string, transcriber Transcriber) (*Recognizer, error) {
	if len(command) == 0 {
		return nil, fmt.Errorf("record command is empty")
	}
	hasPlaceholder := false
	for _, arg := range command {
		if strings.Contains(arg, FilePlaceholder) {
			hasPlaceholder = true
		}
	}
	if !hasPlaceholder {
		return nil, fmt.Errorf("record command must contain %s", FilePlaceholder)
	}
	return &Recognizer{
		command:     command,
		model:       model,
		transcriber: transcriber,
		run:         runCommand,
	}, nil
}

// Listen records one clip and returns its transcription.
func (r *Recognizer) Listen(ctx context.Context) (string, error) {
	dir, err := os.MkdirTemp("", "catalogger-speech-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp dir: %w", err)
	}
	defer os.RemoveAll(dir)

	audioPath := filepath.Join(dir, "clip.wav")
	args := make([]string, len(r.command))
	for i, arg := range r.command {
		args[i] = strings.ReplaceAll(arg, FilePlaceholder, audioPath)
	}

	slog.Info("Listening for book description", "command", args[0])
	if err := r.run(ctx, args[0], args[1:]...); err != nil {
		return "", fmt.Errorf("failed to record audio: %w", err)
	}

	if info, err := os.Stat(audioPath); err != nil || info.Size() == 0 {
		return "", fmt.Errorf("recording is empty: %w", ErrNoSpeech)
	}

	text, err := r.transcriber.Transcribe(ctx, r.model, audioPath)
	if err != nil {
		return "", fmt.Errorf("failed to transcribe audio: %w", err)
	}
	if text == "" {
		return "", ErrNoSpeech
	}

	slog.Info("Recognized speech", "text", text)
	return text, nil
}

func runCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	output, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s: %w: %s", name, err, strings.TrimSpace(string(output)))
	}
	return nil
}
