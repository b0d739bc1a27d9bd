package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/bugskoyan/spotify/internal/app/filetypes"
	"github.com/bugskoyan/spotify/internal/auth"
	"github.com/bugskoyan/spotify/internal/forms"
)

func fileTypesCommand() *cli.Command {
	withService := func(fn func(ctx context.Context, cmd *cli.Command, svc filetypes.Service) error) cli.ActionFunc {
		return func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			ds, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()
			return fn(ctx, cmd, filetypes.New(ds))
		}
	}

	return &cli.Command{
		Name:  "filetypes",
		Usage: "Manage the accepted audio file extensions",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List accepted extensions",
				Action: withService(func(ctx context.Context, cmd *cli.Command, svc filetypes.Service) error {
					types, err := svc.List(ctx)
					if err != nil {
						return err
					}
					tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
					fmt.Fprintln(tw, "ID\tNAME")
					for _, ft := range types {
						fmt.Fprintf(tw, "%d\t%s\n", ft.ID, ft.Name)
					}
					return tw.Flush()
				}),
			},
			{
				Name:      "add",
				Usage:     "Accept a new extension",
				ArgsUsage: "NAME",
				Action: withService(func(ctx context.Context, cmd *cli.Command, svc filetypes.Service) error {
					ft, err := svc.Add(ctx, forms.FileTypeForm{Name: cmd.Args().First()})
					if err != nil {
						return err
					}
					fmt.Printf("added %s (id %d)\n", ft.Name, ft.ID)
					return nil
				}),
			},
			{
				Name:      "remove",
				Usage:     "Stop accepting an extension",
				ArgsUsage: "ID",
				Action: withService(func(ctx context.Context, cmd *cli.Command, svc filetypes.Service) error {
					id, err := strconv.ParseInt(cmd.Args().First(), 10, 64)
					if err != nil {
						return fmt.Errorf("invalid id %q: %w", cmd.Args().First(), err)
					}
					if err := svc.Remove(ctx, id); err != nil {
						return err
					}
					fmt.Printf("removed %d\n", id)
					return nil
				}),
			},
		},
	}
}

func tokenCommand() *cli.Command {
	return &cli.Command{
		Name:  "token",
		Usage: "Issue a session token for development",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "user", Usage: "Username to embed", Required: true},
			&cli.BoolFlag{Name: "admin", Usage: "Grant access to the admin API"},
			&cli.DurationFlag{Name: "ttl", Usage: "Token lifetime", Value: 24 * time.Hour},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			tokens, err := auth.NewTokenManager(cfg.Session.Secret)
			if err != nil {
				return err
			}
			token, err := tokens.Issue(auth.Viewer{Username: cmd.String("user"), Admin: cmd.Bool("admin")}, cmd.Duration("ttl"))
			if err != nil {
				return err
			}
			fmt.Println(token)
			return nil
		},
	}
}
