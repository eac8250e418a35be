package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/raphaelgruber/picoscreen/internal/models"
)

var (
	waitInterval time.Duration
	waitTimeout  time.Duration
)

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Re-poll a corpus's jobs until they complete",
	Long: `Run stage B repeatedly until every job has completed, then print the
final poll output. On a terminal a live progress display is shown on
stderr; otherwise progress is logged.

Stopping the wait (Ctrl+C) leaves the jobs running.

Examples:
  picoscreen submit --screening-id s1 --corpus s3://bucket/s1/docs/ | picoscreen wait --interval 1m`,
	Args: cobra.NoArgs,
	RunE: runWait,
}

func init() {
	waitCmd.Flags().DurationVar(&waitInterval, "interval", 30*time.Second, "time between polls")
	waitCmd.Flags().DurationVar(&waitTimeout, "timeout", 0, "give up after this long (0 waits indefinitely)")
}

func runWait(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if waitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, waitTimeout)
		defer cancel()
	}

	var in models.PollOutput
	if err := readInput(cmd, &in); err != nil {
		return err
	}
	o, err := getOrchestrator(ctx)
	if err != nil {
		return err
	}
	poll := func(ctx context.Context) (models.PollOutput, error) {
		return o.Poll(ctx, in.JobIDs)
	}

	if isTerminal() {
		out, err := runWaitProgress(ctx, poll, in.JobIDs, waitInterval)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		if out == nil {
			return nil
		}
		return writeOutput(cmd, out)
	}

	ticker := time.NewTicker(waitInterval)
	defer ticker.Stop()
	for {
		out, err := poll(ctx)
		if err != nil {
			return fmt.Errorf("wait: %w", err)
		}
		if out.Status == models.JobStatusCompleted {
			logger.Info("jobs completed", "jobs", in.JobIDs.String())
			return writeOutput(cmd, out)
		}
		logger.Info("jobs still running", "jobs", in.JobIDs.String(), "statuses", out.Statuses)

		select {
		case <-ctx.Done():
			return fmt.Errorf("wait: %w", ctx.Err())
		case <-ticker.C:
		}
	}
}
