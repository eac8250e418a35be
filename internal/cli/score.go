package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/picoscreen/internal/models"
	"github.com/raphaelgruber/picoscreen/internal/pico"
)

var scoreAll bool

var combineCmd = &cobra.Command{
	Use:   "combine",
	Short: "Locate job output and load the question's PICO segments (stage C)",
	Long: `Read both sides' manifests, enumerate the corpus's document identifiers
and load the question's P, I, C and O reference bundles.

Input: {"question": <submit output>, "documents": <submit output>}

Non-completed manifests and job types that disagree on the document set
are reported under "warnings" and logged; they do not fail the command.`,
	Args: cobra.NoArgs,
	RunE: runCombine,
}

var scoreCmd = &cobra.Command{
	Use:   "score",
	Short: "Score documents against the question (stage D)",
	Long: `Score one document: input {"documentIdentifier": "...", "context": <combine output>}.

With --all the input is the combine output itself and every document is
scored with bounded concurrency (PICOSCREEN_SCORE_CONCURRENCY).

Examples:
  picoscreen score --all --input combined.json
  picoscreen score --all --local-root ./downloaded --input combined.json`,
	Args: cobra.NoArgs,
	RunE: runScore,
}

var proximityCmd = &cobra.Command{
	Use:   "proximity",
	Short: "Score one document bundle against one reference bundle",
	Long: `Compare two result bundles directly, without job context.

Input: {"document": <bundle paths>, "reference": <bundle paths>} where each
bundle names the entities, icd10CM and rxNorm result objects.`,
	Args: cobra.NoArgs,
	RunE: runProximity,
}

func init() {
	scoreCmd.Flags().BoolVar(&scoreAll, "all", false, "score every document of a combine output")
}

func runCombine(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var in models.CombineInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	o, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}

	out, err := o.Combine(ctx, in)
	if err != nil {
		return fmt.Errorf("combine: %w", err)
	}

	printStatus(defaultTheme.completedStyle(), "✓ %d documents ready to score", len(out.DocumentIdentifiers))
	for _, w := range out.Warnings {
		printStatus(defaultTheme.errorStyle(), "  • [%s/%s] %s", w.Side, w.Kind, w.Message)
	}
	return writeOutput(cmd, out)
}

func runScore(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	o, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}

	if scoreAll {
		var in models.CombineOutput
		if err := readInput(cmd, &in); err != nil {
			return err
		}
		out, err := o.ScoreAll(ctx, in)
		if err != nil {
			return fmt.Errorf("score: %w", err)
		}
		printStatus(defaultTheme.completedStyle(), "✓ Scored %d documents", len(out.Results))
		for _, f := range out.Failures {
			printStatus(defaultTheme.errorStyle(), "  • %s: %s", f.DocumentID, f.Error)
		}
		return writeOutput(cmd, out)
	}

	var in models.ScoreInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	result, err := o.Score(ctx, in)
	if err != nil {
		return fmt.Errorf("score: %w", err)
	}
	return writeOutput(cmd, result)
}

// proximityInput names the two bundles compared by the proximity command.
type proximityInput struct {
	Document  models.BundlePaths `json:"document"`
	Reference models.BundlePaths `json:"reference"`
}

func runProximity(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var in proximityInput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	store, err := getStore(ctx)
	if err != nil {
		return err
	}

	result, err := pico.CalculateProximityFromPathsQuestion(ctx, store, in.Document, in.Reference)
	if err != nil {
		return fmt.Errorf("proximity: %w", err)
	}
	return writeOutput(cmd, result)
}
