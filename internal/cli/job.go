package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

// NewJobCmd создаёт группу команд для управления import jobs.
func NewJobCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "job",
		Short: "Manage import jobs",
	}

	cmd.AddCommand(
		newJobListCmd(clientFn, outputFn),
		newJobStopCmd(clientFn, outputFn),
		newJobResetCmd(clientFn, outputFn),
	)

	return cmd
}

var jobHeaders = []string{"ID", "LABEL", "LANGUAGE", "STATUS", "LAST_RESULT", "REQUIRES"}

func jobRow(j JobResponse) []string {
	return []string{j.ID, j.Label, j.Language, j.Status, j.LastResult, strings.Join(j.Requirements, ",")}
}

func newJobListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List import jobs and their status",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			jobs, err := client.ListJobs()
			if err != nil {
				return err
			}

			rows := make([][]string, len(jobs))
			for i, j := range jobs {
				rows[i] = jobRow(j)
			}

			out.Print(jobHeaders, rows, jobs)
			return nil
		},
	}
}

func newJobStopCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "stop ID",
		Short: "Request a running job to stop",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.StopJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Stop requested: %s", job.ID))
			out.Print(jobHeaders, [][]string{jobRow(*job)}, job)
			return nil
		},
	}
}

func newJobResetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "reset ID",
		Short: "Reset a stuck job to IDLE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			job, err := client.ResetJob(args[0])
			if err != nil {
				return err
			}

			out.Success(fmt.Sprintf("Job reset: %s", job.ID))
			out.Print(jobHeaders, [][]string{jobRow(*job)}, job)
			return nil
		},
	}
}
