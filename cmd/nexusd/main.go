package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
)

// CLI represents the main CLI structure
type CLI struct {
	Config    string `help:"Path to config file" type:"path"`
	LogLevel  string `help:"Log level (debug|info|warn|error)"`
	LogFormat string `help:"Log format (text|json)"`

	Serve   ServeCmd   `cmd:"" default:"1" help:"Run the Nexus HTTP server (default)"`
	Migrate MigrateCmd `cmd:"" help:"Apply database migrations and exit"`
}

func main() {
	// A missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	var cli CLI
	ctx := kong.Parse(&cli,
		kong.Name("nexusd"),
		kong.Description("Nexus conversational workspace server"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)

	err := ctx.Run(&cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
