package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrSnakeDoc/susradar/internal/app"
	"github.com/MrSnakeDoc/susradar/internal/backup"
	"github.com/MrSnakeDoc/susradar/internal/domain"
)

func newResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <url>",
		Short: "Show the company tracking a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				c, err := a.Radar().Resolve(cmd.Context(), args[0])
				if errors.Is(err, domain.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "%s is not on the radar\n", domain.NormalizeURL(args[0]))
					return nil
				}
				if err != nil {
					return err
				}
				printCompany(cmd.OutOrStdout(), c)
				return nil
			})
		},
	}
}

func printCompany(w io.Writer, c *domain.Company) {
	fmt.Fprintf(w, "%s (%s)\n", c.Name, c.ID)
	fmt.Fprintf(w, "  sus rating: %d/%d\n", c.Rating, domain.MaxRating)
	if d := c.Description(); d != "" {
		fmt.Fprintf(w, "  %s: %s\n", c.DefaultCategory, d)
	}
	for _, link := range c.AlternativeLinks {
		fmt.Fprintf(w, "  alternative: %s\n", link)
	}
	if c.IsModified {
		fmt.Fprintln(w, "  edited locally")
	}
}

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every tracked company",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tNAME\tRATING\tORIGIN\tURLS")
				for _, e := range a.Radar().List(cmd.Context()) {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n",
						e.Company.ID, e.Company.Name, e.Company.Rating, e.Company.Origin, strings.Join(e.URLs, ","))
				}
				return tw.Flush()
			})
		},
	}
}

func newExportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write a backup of every record",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				f, err := a.Radar().Export(cmd.Context())
				if err != nil {
					return err
				}

				if output == "" {
					output = backup.Filename(time.Now())
				}
				if output == "-" {
					return backup.Encode(cmd.OutOrStdout(), f)
				}

				out, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				if err := backup.Encode(out, f); err != nil {
					_ = out.Close()
					return err
				}
				if err := out.Close(); err != nil {
					return fmt.Errorf("failed to write %s: %w", output, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "exported %d companies and %d urls to %s\n",
					f.Metadata.TotalCompanies, f.Metadata.TotalURLs, output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, \"-\" for stdout (default: susradar-backup-<timestamp>.json)")
	return cmd
}

func newImportCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Replace every record with a backup",
		Long: `Replace every record with the content of a backup file.
The current data is lost, so the command refuses to run without --yes.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", args[0], err)
			}
			defer func() { _ = in.Close() }()

			f, err := backup.Decode(in)
			if err != nil {
				return err
			}

			return withApp(cmd.Context(), func(a *app.App) error {
				res, err := a.Radar().Import(cmd.Context(), f, yes)
				if errors.Is(err, domain.ErrConfirmationRequired) {
					return fmt.Errorf("%w: rerun with --yes to replace all data", err)
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "imported %d companies and %d urls (%d dangling mappings dropped)\n",
					res.Companies, res.URLs, res.Pruned)
				return nil
			})
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Confirm that all current data is replaced")
	return cmd
}

func newSyncCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Reconcile local records with the sync server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd.Context(), func(a *app.App) error {
				s := a.Sync()
				if s == nil {
					return errors.New("no sync server configured (set SUSRADAR_REMOTE_URL)")
				}
				a.Connect(cmd.Context())

				if status {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(s.Client().Status())
				}

				res, err := s.Sync(cmd.Context())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "synced %d companies and %d urls\n", res.Companies, res.URLs)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "Print the connection status instead of syncing")
	return cmd
}
