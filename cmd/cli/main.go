package main

import (
	"fmt"
	"os"

	"github.com/marcelsud/book-manager/book"
	"github.com/marcelsud/book-manager/book/cover"
	"github.com/marcelsud/book-manager/catalog"
	"github.com/marcelsud/book-manager/config"
	"github.com/marcelsud/book-manager/internal/storage"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

/* cli - bulk operations on the book collection
 * Usage:
 *   cli validate [catalog.yaml]   checks a catalog without touching the database
 *   cli import [catalog.yaml]     creates every entry and prints the new ids
 * Exit codes: 0 = success, 1 = failure
 */

const defaultCatalog = "catalog.yaml"

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "cli",
		Short:         "Bulk operations on the book collection",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(newValidateCommand(), newImportCommand())
	return root
}

func catalogPath(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return defaultCatalog
}

func newValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [catalog.yaml]",
		Short: "Check every entry of a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := catalogPath(args)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Validating catalog file: %s\n", path)

			loader := catalog.NewLoader(afero.NewOsFs())
			if err := loader.Load(path); err != nil {
				return err
			}
			entries := loader.List()
			fmt.Fprintf(out, "Loaded %d book(s):\n", len(entries))
			for i, e := range entries {
				fmt.Fprintf(out, "%d. %s by %s", i+1, e.Title, e.Author)
				if e.Year != "" {
					fmt.Fprintf(out, " (%s)", e.Year)
				}
				fmt.Fprintln(out)
			}
			return nil
		},
	}
}

func newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import [catalog.yaml]",
		Short: "Create every entry of a catalog file",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.GetConfig()
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			fs := afero.NewOsFs()

			loader := catalog.NewLoader(fs)
			if err := loader.Load(catalogPath(args)); err != nil {
				return err
			}

			repo, err := storage.Open(ctx, cfg)
			if err != nil {
				return err
			}
			defer repo.Close(ctx)
			intake, err := cover.NewIntake(fs, cfg.UploadDir, cfg.Naming())
			if err != nil {
				return err
			}

			created, err := loader.Import(ctx, book.NewService(repo, intake))
			for _, b := range created {
				fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", b.ID, b.Title)
			}
			return err
		},
	}
}
