package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/roamdeck/internal"
	pkgconfig "github.com/starford/roamdeck/pkg/config"
)

func loadOptions(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(configPath, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return []internal.Option{
		internal.WithConfig(cfg),
	}, nil
}

func initCollection(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.Init(ctx, opts...)
}

func importExport(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	s, err := internal.Import(ctx, cmd.Args().First(), opts...)
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	fmt.Println(s.String())
	return nil
}

func syncInbox(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	files, err := internal.Sync(ctx, opts...)
	if err != nil {
		return fmt.Errorf("sync: %w", err)
	}
	if len(files) == 0 {
		fmt.Println("Inbox is up to date.")
	}
	for _, f := range files {
		fmt.Printf("%s: %s\n", f.Path, f.Summary.String())
	}
	return nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := loadOptions(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:  "roamdeck",
		Usage: "Turn Roam Research exports into cloze flashcards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "init",
				Usage:  "Create the configured note model in the collection",
				Action: initCollection,
			},
			{
				Name:      "import",
				Usage:     "Import a Roam JSON or ZIP export (defaults to import.file_path)",
				ArgsUsage: "[path]",
				Action:    importExport,
			},
			{
				Name:   "sync",
				Usage:  "Import every changed export in the inbox",
				Action: syncInbox,
			},
			{
				Name:   "serve",
				Usage:  "Run the HTTP API and watch the inbox",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve MCP tools over stdio",
				Action: serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
