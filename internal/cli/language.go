package cli

import (
	"strconv"

	"github.com/spf13/cobra"
)

// NewLanguageCmd создаёт группу команд для языков.
func NewLanguageCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "language",
		Short: "Show configured languages",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List configured languages",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			langs, err := client.ListLanguages()
			if err != nil {
				return err
			}

			rows := make([][]string, len(langs))
			for i, l := range langs {
				rows[i] = []string{l.Code, l.Name, strconv.FormatBool(l.Default)}
			}

			out.Print([]string{"CODE", "NAME", "DEFAULT"}, rows, langs)
			return nil
		},
	})

	return cmd
}
