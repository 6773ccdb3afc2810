package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewPipelineCmd создаёт группу команд для наблюдения за pipelines.
func NewPipelineCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pipeline",
		Short: "Inspect pipelines",
	}

	cmd.AddCommand(
		newPipelineListCmd(clientFn, outputFn),
		newPipelineShowCmd(clientFn, outputFn),
		newPipelineJobsCmd(clientFn, outputFn),
		newPipelineReportCmd(clientFn, outputFn),
	)

	return cmd
}

func newPipelineListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List pipelines",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pipelines, err := client.ListPipelines(ListPipelinesOpts{
				Status: status,
				Limit:  limit,
			})
			if err != nil {
				return err
			}

			headers := []string{"ID", "TYPE", "BRANCH", "STATUS", "CREATED"}
			rows := make([][]string, len(pipelines))
			for i, p := range pipelines {
				rows[i] = []string{p.ID, p.Event.Type, p.Event.Branch, p.Status, p.CreatedAt}
			}

			out.Print(headers, rows, pipelines)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, PASSED, FAILED, NOT_RUN, CONFIG_ERROR)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newPipelineShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show pipeline details",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			pipeline, err := client.GetPipeline(args[0])
			if err != nil {
				return err
			}

			out.Print(
				[]string{"ID", "TYPE", "BRANCH", "TAG", "STATUS", "ERROR", "CREATED"},
				[][]string{{
					pipeline.ID, pipeline.Event.Type, pipeline.Event.Branch,
					pipeline.Event.Tag, pipeline.Status, pipeline.Error, pipeline.CreatedAt,
				}},
				pipeline,
			)
			return nil
		},
	}
}

func newPipelineJobsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "jobs PIPELINE_ID",
		Short: "List jobs in a pipeline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs(args[0])
			if err != nil {
				return err
			}

			headers := []string{"ID", "POS", "CHANNEL", "ALLOW_FAILURE", "STATUS", "ERROR"}
			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = []string{
					j.ID, strconv.Itoa(j.Position), j.Channel,
					strconv.FormatBool(j.AllowFailure), j.Status, j.Error,
				}
			}

			out.Print(headers, rows, jobs)
			return nil
		},
	}
}

func newPipelineReportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "report PIPELINE_ID",
		Short: "Show pipeline verdict report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			report, err := client.GetReport(args[0])
			if err != nil {
				return err
			}

			out.Success("Pipeline " + report.PipelineID + ": " + report.Status)

			headers := []string{"POS", "CHANNEL", "ALLOW_FAILURE", "STATUS", "VERDICT", "ERROR"}
			rows := make([][]string, len(report.Jobs))
			for i, j := range report.Jobs {
				rows[i] = []string{
					strconv.Itoa(j.Position), j.Channel,
					strconv.FormatBool(j.AllowFailure), j.Status, j.Verdict, j.Error,
				}
			}

			out.Print(headers, rows, report)
			return nil
		},
	}
}
