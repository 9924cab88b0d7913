package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/halvard/gebo/internal"
	pkgconfig "github.com/halvard/gebo/pkg/config"
	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func loadConfig(cmd *cli.Command) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadIfExists(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return cfg, nil
}

func serve(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func mcp(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunMCP(ctx, internal.WithConfig(cfg))
}

func remind(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	doc := cmd.String("doc")
	if doc == "" && !cmd.Bool("all") {
		return fmt.Errorf("either --doc or --all is required")
	}
	return internal.RunRemind(ctx, doc, int(cmd.Int("days")), internal.WithConfig(cfg))
}

func schedule(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	date := cmd.String("date")
	if date == "" {
		fmt.Print("Date (YYYY-MM-DD): ")
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil {
			return fmt.Errorf("read date: %w", err)
		}
		date = strings.TrimSpace(line)
	}
	return internal.RunSchedule(ctx, cmd.String("doc"), cmd.String("text"), date,
		int(cmd.Int("every-years")), internal.WithConfig(cfg))
}

func properties(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunProperties(ctx, internal.WithConfig(cfg))
}

func birthdays(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	return internal.RunBirthdays(ctx, int(cmd.Int("within")), internal.WithConfig(cfg))
}

func main() {
	cmd := &cli.Command{
		Name:   "gebo",
		Usage:  "Contact knowledge base with Markdown storage, birthday reminder scheduling, and an outline mutation API",
		Action: serve,
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
				Name:   "serve",
				Usage:  "Run the HTTP API, SSE stream, and file watcher",
				Action: serve,
			},
			{
				Name:   "mcp",
				Usage:  "Serve the MCP tools over stdio",
				Action: mcp,
			},
			{
				Name:  "remind",
				Usage: "Schedule birthday reminders for one contact or the whole vault",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "doc", Usage: "Document path relative to the vault"},
					&cli.BoolFlag{Name: "all", Usage: "Process every document in the vault"},
					&cli.IntFlag{Name: "days", Usage: "Days of advance warning", Value: 7},
				},
				Action: remind,
			},
			{
				Name:  "schedule",
				Usage: "Insert a reminder heading into a document",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "doc", Usage: "Document path relative to the vault", Required: true},
					&cli.StringFlag{Name: "text", Usage: "Reminder heading text", Required: true},
					&cli.StringFlag{Name: "date", Usage: "Date (YYYY-MM-DD); prompted when omitted"},
					&cli.IntFlag{Name: "every-years", Usage: "Yearly repeat interval (0 for one-off)"},
				},
				Action: schedule,
			},
			{
				Name:   "properties",
				Usage:  "Print the managed contact property keys",
				Action: properties,
			},
			{
				Name:  "birthdays",
				Usage: "List upcoming birthdays",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "within", Usage: "Horizon in days", Value: 30},
				},
				Action: birthdays,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
