package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/katha/internal"
	pkgconfig "github.com/starford/katha/pkg/config"
)

// Build information. Populated at build-time via -ldflags flag.
var version = "dev"

type flags struct {
	ConfigPath string
	LogLevel   string
	SlidesPath string
	Port       int
	Watch      bool
}

// loadConfig layers defaults, the optional config file, then flags and
// environment. A positional file argument wins over --slides.
func loadConfig(c *cli.Command, f *flags) (*internal.Config, error) {
	cfg := internal.NewDefaultConfig()

	found, err := pkgconfig.LoadOptional(f.ConfigPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found && c.IsSet("config") && f.ConfigPath != "" {
		return nil, fmt.Errorf("config file not found: %s", f.ConfigPath)
	}

	if c.IsSet("log-level") {
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(f.LogLevel)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", f.LogLevel, err)
		}
		cfg.App.LogLevel = lvl
	}
	if c.IsSet("slides") {
		cfg.Deck.Path = f.SlidesPath
	}
	if file := c.Args().First(); file != "" {
		cfg.Deck.Path = file
	}
	if c.IsSet("port") {
		cfg.App.HTTP.Port = f.Port
	}
	if c.IsSet("watch") {
		cfg.Deck.Watch = f.Watch
	}

	if err := pkgconfig.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func serve(f *flags) cli.ActionFunc {
	return func(ctx context.Context, c *cli.Command) error {
		cfg, err := loadConfig(c, f)
		if err != nil {
			return err
		}
		if err := internal.Run(ctx, internal.WithConfig(cfg)); err != nil {
			return fmt.Errorf("app run error: %w", err)
		}
		return nil
	}
}

func newApp(f *flags) *cli.Command {
	return &cli.Command{
		Name:      "katha",
		Usage:     "Present a markdown slide deck with synced presenter and audience views",
		UsageText: "katha [global options] [command] [file]",
		Version:   version,
		ArgsUsage: "[file]",
		Action:    serve(f),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				Value:       "katha.yaml",
				Sources:     cli.EnvVars("KATHA_CONFIG"),
				Destination: &f.ConfigPath,
			},
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error)",
				Sources:     cli.EnvVars("KATHA_LOG_LEVEL"),
				Destination: &f.LogLevel,
			},
			&cli.StringFlag{
				Name:        "slides",
				Usage:       "path to the deck file",
				Sources:     cli.EnvVars("KATHA_SLIDES_PATH"),
				Destination: &f.SlidesPath,
			},
			&cli.IntFlag{
				Name:        "port",
				Aliases:     []string{"p"},
				Usage:       "HTTP port",
				Sources:     cli.EnvVars("KATHA_PORT"),
				Destination: &f.Port,
			},
			&cli.BoolFlag{
				Name:        "watch",
				Usage:       "reload the deck when files change",
				Destination: &f.Watch,
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "serve",
				Usage:     "Serve the deck over HTTP with live sync",
				ArgsUsage: "[file]",
				Action:    serve(f),
			},
			newOutlineCmd(f),
			newMCPCmd(f),
			newInitCmd(f),
		},
	}
}

func main() {
	internal.Version = version

	cmd := newApp(&flags{})
	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
