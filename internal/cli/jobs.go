package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

var (
	screeningID    string
	corpusLocation string
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Start the three extraction jobs over a corpus (stage A)",
	Long: `Start the entities, ICD-10-CM and RxNorm jobs over every document below
an s3:// prefix. Run it once for the question and once for the corpus.

Every call creates new jobs; re-running after a failure may leave orphans.

Examples:
  picoscreen submit --screening-id s1 --corpus s3://bucket/s1/question/
  echo '{"screeningId":"s1","corpusLocation":"s3://bucket/s1/docs/"}' | picoscreen submit`,
	Args: cobra.NoArgs,
	RunE: runSubmit,
}

var pollCmd = &cobra.Command{
	Use:   "poll",
	Short: "Report the combined status of a corpus's jobs (stage B)",
	Long: `Describe the three jobs once and print COMPLETED or IN_PROGRESS.
A failed or stopped job exits non-zero with all three job ids.

Input is the output of submit (or a previous poll).

Examples:
  picoscreen poll --input question-jobs.json`,
	Args: cobra.NoArgs,
	RunE: runPoll,
}

func init() {
	submitCmd.Flags().StringVar(&screeningID, "screening-id", "", "screening id used to name jobs and output folders")
	submitCmd.Flags().StringVar(&corpusLocation, "corpus", "", "s3:// prefix holding the documents")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var in models.SubmitInput
	if screeningID != "" || corpusLocation != "" {
		in = models.SubmitInput{ScreeningID: screeningID, CorpusLocation: corpusLocation}
	} else if err := readInput(cmd, &in); err != nil {
		return err
	}

	if err := cfg.ValidateSubmit(); err != nil {
		return err
	}
	o, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}

	out, err := o.Submit(ctx, in)
	if err != nil {
		return fmt.Errorf("submit: %w", err)
	}
	printStatus(defaultTheme.completedStyle(), "✓ Submitted %s", out.JobIDs)
	return writeOutput(cmd, out)
}

func runPoll(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var in models.PollOutput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	o, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}

	out, err := o.Poll(ctx, in.JobIDs)
	if err != nil {
		return fmt.Errorf("poll: %w", err)
	}
	printJobStatuses(out)
	return writeOutput(cmd, out)
}

// printJobStatuses prints one status line per job.
func printJobStatuses(out models.PollOutput) {
	printStatus(defaultTheme.statusStyle(), "%-10s %-40s %s", "TYPE", "JOB ID", "STATUS")
	for _, t := range models.JobTypes {
		style := defaultTheme.statusStyle()
		if out.Statuses[t] == models.JobStatusCompleted {
			style = defaultTheme.completedStyle()
		}
		printStatus(style, "%-10s %-40s %s", t, out.JobIDs.Get(t), out.Statuses[t])
	}
}
