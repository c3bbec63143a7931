package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/starford/katha/internal"
	"github.com/starford/katha/internal/apperr"
	"github.com/starford/katha/internal/deck"
	"github.com/starford/katha/internal/outline"
	"github.com/starford/katha/internal/storage"
)

const starterDeck = `---
title: My Talk
layout: center
---
# My Talk
<!-- Speaker notes live in HTML comments. -->
---slide---
---
clicks: 2
---
# Agenda
- First point
- Second point
---slide---
---
layout: two-cols
---
# Compare
Left column
::right::
Right column
`

func openDeck(cfg *internal.Config, logger *slog.Logger) (*deck.Deck, error) {
	store, err := storage.NewFS(cfg.Deck.Dir())
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}
	d := deck.New(store, cfg.Deck.File(), deck.WithLogger(logger))
	if err := d.Load(); err != nil {
		return nil, fmt.Errorf("load deck: %w", err)
	}
	return d, nil
}

func newOutlineCmd(f *flags) *cli.Command {
	var opts outline.Options

	return &cli.Command{
		Name:      "outline",
		Usage:     "Print the slide outline",
		UsageText: "katha outline [--notes] [--json] [file]",
		ArgsUsage: "[file]",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:        "notes",
				Usage:       "include speaker notes",
				Destination: &opts.Notes,
			},
			&cli.BoolFlag{
				Name:        "json",
				Usage:       "output as JSON lines",
				Destination: &opts.JSON,
			},
			&cli.StringFlag{
				Name:        "style",
				Usage:       "glamour style for notes (auto, dark, light, notty or a file path)",
				Destination: &opts.Style,
			},
		},
		Action: func(_ context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c, f)
			if err != nil {
				return err
			}
			d, err := openDeck(cfg, internal.NewLogger(os.Stderr, cfg.App))
			if err != nil {
				return err
			}
			return outline.Write(c.Root().Writer, d.Slides(), opts)
		},
	}
}

func newMCPCmd(f *flags) *cli.Command {
	return &cli.Command{
		Name:      "mcp",
		Usage:     "Serve deck tools to LLM clients over stdio (MCP)",
		ArgsUsage: "[file]",
		Action: func(ctx context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c, f)
			if err != nil {
				return err
			}
			return internal.RunMCP(ctx, internal.WithConfig(cfg))
		},
	}
}

func newInitCmd(f *flags) *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Write a starter deck",
		ArgsUsage: "[file]",
		Action: func(_ context.Context, c *cli.Command) error {
			cfg, err := loadConfig(c, f)
			if err != nil {
				return err
			}
			if err := os.MkdirAll(cfg.Deck.Dir(), 0o755); err != nil {
				return fmt.Errorf("create deck dir: %w", err)
			}
			store, err := storage.NewFS(cfg.Deck.Dir())
			if err != nil {
				return fmt.Errorf("init storage: %w", err)
			}

			_, err = store.Stat(cfg.Deck.File())
			switch {
			case err == nil:
				return fmt.Errorf("%s: %w", cfg.Deck.Path, apperr.ErrAlreadyExists)
			case !errors.Is(err, fs.ErrNotExist):
				return fmt.Errorf("stat deck: %w", err)
			}

			if err := store.Write(cfg.Deck.File(), []byte(starterDeck)); err != nil {
				return fmt.Errorf("write deck: %w", err)
			}
			_, err = fmt.Fprintf(c.Root().Writer, "Created %s\n", cfg.Deck.Path)
			return err
		},
	}
}
