/*
Package cli provides command-line helpers shared by the janitor commands.

Output Formatting:

Results are printed as text, JSON or a go-pretty table:

	formatter := cli.NewFormatter(cli.FormatTable)
	if err := formatter.FormatTo(os.Stdout, runs); err != nil {
		return err
	}

Values implementing Tabular render as tables; DefaultFormat picks a table
for terminals and JSON for pipes.

Exit Codes:

Commands return ConfigError or CommandError; ExitCode maps them to the
process status.

Signal Handling:

	ctx, stop := cli.SetupSignalHandler(context.Background())
	defer stop()
*/
package cli
