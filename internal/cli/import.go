package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
)

// NewImportCmd создаёт группу команд для запуска и просмотра импорта.
func NewImportCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Run and inspect product imports",
	}

	cmd.AddCommand(
		newImportStartCmd(clientFn, outputFn),
		newImportListCmd(clientFn, outputFn),
		newImportShowCmd(clientFn, outputFn),
	)

	return cmd
}

var batchHeaders = []string{"ID", "STATUS", "LANGUAGES", "STEP", "OK", "FAILED", "SOURCE", "CREATED"}

func batchRow(b BatchResponse) []string {
	return []string{
		b.ID,
		b.Status,
		strings.Join(b.Languages, ","),
		fmt.Sprintf("%d/%d", min(b.Step, len(b.Languages)), len(b.Languages)),
		strconv.Itoa(b.Successes),
		strconv.Itoa(b.Failures),
		b.Source,
		b.CreatedAt,
	}
}

func newImportStartCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string
	var languages []string
	var wait bool
	var interval time.Duration

	cmd := &cobra.Command{
		Use:   "start",
		Short: "Import a products file",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			req := CreateImportRequest{ProductsCSV: file}
			if len(languages) == 1 {
				req.Language = languages[0]
			} else {
				req.Languages = languages
			}

			resp, err := client.StartImport(req)
			if err != nil {
				return err
			}

			for _, w := range resp.Warnings {
				out.Warn(w)
			}
			out.Success(fmt.Sprintf("Import started: %s", resp.Batch.ID))

			b := resp.Batch
			if wait {
				b, err = waitBatch(client, out, b.ID, interval)
				if err != nil {
					return err
				}
			}

			out.Print(batchHeaders, [][]string{batchRow(b)}, b)
			out.Notices(b.Summary)

			if b.Status == "FAILED" {
				return fmt.Errorf("import %s failed", b.ID)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the products file (required)")
	cmd.Flags().StringSliceVar(&languages, "language", []string{"en"}, "Import language, repeat for several")
	cmd.Flags().BoolVar(&wait, "wait", false, "Wait until the import finishes")
	cmd.Flags().DurationVar(&interval, "interval", 2*time.Second, "Polling interval for --wait")
	cmd.MarkFlagRequired("file")

	return cmd
}

// waitBatch опрашивает batch до завершения, печатая новые сообщения.
func waitBatch(client *Client, out *Output, id string, interval time.Duration) (BatchResponse, error) {
	seen := 0
	for {
		b, err := client.GetImport(id)
		if err != nil {
			return BatchResponse{}, err
		}

		for _, msg := range b.Messages[min(seen, len(b.Messages)):] {
			out.Success(msg)
		}
		seen = len(b.Messages)

		if b.Terminal() {
			return *b, nil
		}
		time.Sleep(interval)
	}
}

func newImportListCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var status string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			batches, err := client.ListImports(ListImportsOpts{Status: status, Limit: limit})
			if err != nil {
				return err
			}

			rows := make([][]string, len(batches))
			for i, b := range batches {
				rows[i] = batchRow(b)
			}

			out.Print(batchHeaders, rows, batches)
			return nil
		},
	}

	cmd.Flags().StringVar(&status, "status", "", "Filter by status (PENDING, RUNNING, SUCCEEDED, FAILED)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum number of results")

	return cmd
}

func newImportShowCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show import progress and messages",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			b, err := client.GetImport(args[0])
			if err != nil {
				return err
			}

			out.Print(batchHeaders, [][]string{batchRow(*b)}, b)
			if out.jsonMode {
				return nil
			}

			for _, msg := range b.Messages {
				out.Success(msg)
			}
			if b.Error != "" {
				out.Error(b.Error)
			}
			out.Notices(b.Summary)
			return nil
		},
	}
}
