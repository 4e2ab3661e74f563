package main

import (
	"context"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/hongminglow/orgs-be/cmd/server/internal/commands"
)

var (
	version = "dev"
	cli     struct {
		EnvFile string              `help:"dotenv file loaded before reading the environment" default:".env" type:"path"`
		Version kong.VersionFlag    `help:"Print version and exit."`
		Serve   commands.ServeCmd   `cmd:"" default:"1" help:"Start the HTTP API (default)."`
		Migrate commands.MigrateCmd `cmd:"" help:"Apply the database schema and exit."`
	}
)

func main() {
	ctx := context.Background()
	cmd := kong.Parse(&cli,
		kong.Name("orgs-be"),
		kong.Description("Users and organisations REST backend."),
		kong.Vars{
			"version": version,
		},
		kong.BindTo(ctx, (*context.Context)(nil)))

	loadLocalEnv(cli.EnvFile)

	err := cmd.Run(&commands.Globals{Version: version})
	cmd.FatalIfErrorf(err)
}

func loadLocalEnv(path string) {
	if err := godotenv.Load(path); err != nil {
		log.Info().Str("path", path).Msg("no .env file found; relying on existing environment")
	}
}
