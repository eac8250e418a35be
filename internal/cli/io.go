package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// readInput decodes the command's JSON input from --input or stdin.
func readInput(cmd *cobra.Command, v any) error {
	var r io.Reader = cmd.InOrStdin()
	if inputPath != "" && inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return fmt.Errorf("open input: %w", err)
		}
		defer f.Close()
		r = f
	}

	if err := json.NewDecoder(r).Decode(v); err != nil {
		return fmt.Errorf("decode input: %w", err)
	}
	return nil
}

// writeOutput encodes v as indented JSON on stdout.
func writeOutput(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// isTerminal reports whether stderr is attached to a terminal.
func isTerminal() bool {
	return term.IsTerminal(int(os.Stderr.Fd()))
}

// printStatus writes a human-readable line to stderr, styled only on a terminal.
func printStatus(style lipgloss.Style, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if isTerminal() {
		msg = style.Render(msg)
	}
	fmt.Fprintln(os.Stderr, msg)
}
