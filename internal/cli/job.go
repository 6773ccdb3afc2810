package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewJobCmd создаёт группу команд для наблюдения за jobs.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Inspect jobs",
	}

	cmd.AddCommand(
		newJobShowCmd(clientFn, outputFn),
		newJobStepsCmd(clientFn, outputFn),
	)

	return cmd
}

func newJobShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show job details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.GetJob(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "PIPELINE_ID", "POS", "CHANNEL", "ALLOW_FAILURE", "STATUS", "ERROR"},
				[][]string{{
					job.ID, job.PipelineID, strconv.Itoa(job.Position), job.Channel,
					strconv.FormatBool(job.AllowFailure), job.Status, job.Error,
				}},
				job,
			)
			return nil
		},
	}
}

func newJobStepsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "steps JOB_ID",
		Short: "List steps in a job",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			steps, err := client.ListSteps(args[0])
			if err != nil {
				return err
			}

			headers := []string{"POS", "STEP_ID", "CLASS", "STATUS", "EXIT_CODE"}
			rows := make([][]string, len(steps))
			for i, s := range steps {
				exitCode := ""
				if s.ExitCode != nil {
					exitCode = strconv.Itoa(*s.ExitCode)
				}
				rows[i] = []string{
					strconv.Itoa(s.Position), s.StepID, s.Class, s.Status, exitCode,
				}
			}

			out.Print(headers, rows, steps)
			return nil
		},
	}
}
