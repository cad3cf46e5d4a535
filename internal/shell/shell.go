// Package shell implements the interactive cataloging menu.
package shell

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/mtthwcarey/catalogger/internal/pipeline"
)

// Processor catalogs a single description.
type Processor interface {
	ProcessOne(ctx context.Context, index int, description string) pipeline.Result
}

// BatchRunner catalogs a file of descriptions.
type BatchRunner interface {
	Run(ctx context.Context, path string) (pipeline.Summary, error)
}

// Listener captures a spoken description.
type Listener interface {
	Listen(ctx context.Context) (string, error)
}

type styles struct {
	title   lipgloss.Style
	option  lipgloss.Style
	muted   lipgloss.Style
	success lipgloss.Style
	failure lipgloss.Style
}

func newStyles(colorize bool) styles {
	if !colorize {
		plain := lipgloss.NewStyle()
		return styles{title: plain, option: plain, muted: plain, success: plain, failure: plain}
	}
	return styles{
		title:   lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true),
		option:  lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
		muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("241")),
		success: lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
		failure: lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
}

// Shell is the menu loop. It is not safe for concurrent use.
type Shell struct {
	in        *bufio.Reader
	out       io.Writer
	processor Processor
	batch     BatchRunner
	listener  Listener
	styles    styles
}

// New returns a shell reading choices from in and writing to out. listener
// may be nil, in which case spoken input is reported as unavailable.
func New(in io.Reader, out io.Writer, processor Processor, batch BatchRunner, listener Listener) *Shell {
	return &Shell{
		in:        bufio.NewReader(in),
		out:       out,
		processor: processor,
		batch:     batch,
		listener:  listener,
		styles:    newStyles(shouldColorize(out)),
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (s *Shell) Run(ctx context.Context) error {
	s.println(s.styles.title.Render("Starting the book cataloging tool..."))

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		s.printMenu()
		choice, err := s.prompt("Choose an option (1/2/3/4): ")
		if err != nil {
			return ignoreEOF(err)
		}

		switch choice {
		case "1":
			s.speak(ctx)
		case "2":
			description, err := s.prompt("Enter the book description: ")
			if err != nil {
				return ignoreEOF(err)
			}
			s.catalog(ctx, description)
		case "3":
			path, err := s.prompt("Enter the path to the batch file: ")
			if err != nil {
				return ignoreEOF(err)
			}
			s.runBatch(ctx, path)
		case "4":
			s.println("Exiting the book cataloging tool. Goodbye!")
			return nil
		default:
			s.println(s.styles.failure.Render(fmt.Sprintf("Invalid choice %q.", choice)))
		}
	}
}

func (s *Shell) printMenu() {
	s.println("")
	s.println(s.styles.title.Render("How would you like to input a book?"))
	for _, option := range []string{
		"1. Speak description",
		"2. Type description",
		"3. Process batch file",
		"4. Exit",
	} {
		s.println(s.styles.option.Render(option))
	}
}

func (s *Shell) speak(ctx context.Context) {
	if s.listener == nil {
		s.println(s.styles.failure.Render("Speech input is not configured."))
		s.println("No input captured. Returning to menu.")
		return
	}

	s.println(s.styles.muted.Render("You can speak now."))
	description, err := s.listener.Listen(ctx)
	if err != nil {
		slog.Warn("Speech capture failed", "err", err)
		s.println("No input captured. Returning to menu.")
		return
	}
	s.println(fmt.Sprintf("Recognized speech: %s", description))
	s.catalog(ctx, description)
}

func (s *Shell) catalog(ctx context.Context, description string) {
	s.println(s.styles.muted.Render("Extracting book details..."))
	result := s.processor.ProcessOne(ctx, 0, description)

	switch {
	case result.Outcome == pipeline.OutcomeOK:
		s.println(s.styles.success.Render("Book added successfully!"))
	case result.Saved:
		s.println(s.styles.success.Render(fmt.Sprintf("Book added with note: %s", result.Notes)))
	default:
		s.println(s.styles.failure.Render(result.Notes))
	}
}

func (s *Shell) runBatch(ctx context.Context, path string) {
	summary, err := s.batch.Run(ctx, path)
	if err != nil {
		s.println(s.styles.failure.Render(fmt.Sprintf("Batch processing failed: %v", err)))
		if len(summary.Results) == 0 {
			return
		}
	}
	s.println(s.styles.success.Render(fmt.Sprintf(
		"Processed %d descriptions: %d saved, %d noted for review.",
		len(summary.Results), summary.Saved(), summary.Noted())))
}

func (s *Shell) prompt(label string) (string, error) {
	fmt.Fprint(s.out, label)
	line, err := s.in.ReadString('\n')
	if err != nil && (line == "" || !errors.Is(err, io.EOF)) {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

func (s *Shell) println(line string) {
	fmt.Fprintln(s.out, line)
}

func ignoreEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
