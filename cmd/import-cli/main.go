// Import CLI — инструмент командной строки для импорта продуктов
// через HTTP API.
//
// Использование:
//
//	content-import [--api-url URL] [--json] <command> <subcommand> [flags]
//
// Команды:
//
//	import    Запуск и просмотр импорта
//	job       Управление import jobs
//	language  Сконфигурированные языки
//	settings  Сохранённые настройки
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaiso/ContentImport/internal/cli"
	"github.com/shaiso/ContentImport/internal/config"
)

// version задаётся через ldflags при сборке.
var version = "dev"

func main() {
	var apiURL string
	var jsonOutput bool

	defaultURL := "http://localhost:8080"
	if cfg, err := config.Load(); err == nil {
		defaultURL = cfg.APIURL
	}

	rootCmd := &cobra.Command{
		Use:           "content-import",
		Short:         "Product content import tool",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", defaultURL, "API server URL (env IMPORT_API_URL)")
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "Output in JSON format")

	clientFn := func() *cli.Client { return cli.NewClient(apiURL) }
	outputFn := func() *cli.Output { return cli.NewOutput(jsonOutput) }

	rootCmd.AddCommand(
		cli.NewImportCmd(clientFn, outputFn),
		cli.NewJobCmd(clientFn, outputFn),
		cli.NewLanguageCmd(clientFn, outputFn),
		cli.NewSettingsCmd(clientFn, outputFn),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
