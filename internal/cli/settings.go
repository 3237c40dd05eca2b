package cli

import (
	"github.com/spf13/cobra"
)

// NewSettingsCmd создаёт группу команд для настроек импорта.
func NewSettingsCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change saved import settings",
	}

	cmd.AddCommand(
		newSettingsGetCmd(clientFn, outputFn),
		newSettingsSetCmd(clientFn, outputFn),
	)

	return cmd
}

var settingsHeaders = []string{"PRODUCTS_CSV", "LANGUAGE"}

func newSettingsGetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	return &cobra.Command{
		Use:   "get",
		Short: "Show saved settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.GetSettings()
			if err != nil {
				return err
			}

			out.Print(settingsHeaders, [][]string{{s.ProductsCSV, s.Language}}, s)
			return nil
		},
	}
}

func newSettingsSetCmd(clientFn func() *Client, outputFn func() *Output) *cobra.Command {
	var file string
	var language string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Save settings used by scheduled imports",
		RunE: func(cmd *cobra.Command, args []string) error {
			client := clientFn()
			out := outputFn()

			s, err := client.UpdateSettings(SettingsResponse{ProductsCSV: file, Language: language})
			if err != nil {
				return err
			}

			out.Success("Settings saved")
			out.Print(settingsHeaders, [][]string{{s.ProductsCSV, s.Language}}, s)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "Path to the products file (required)")
	cmd.Flags().StringVar(&language, "language", "en", "Import language")
	cmd.MarkFlagRequired("file")

	return cmd
}
