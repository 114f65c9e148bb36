package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/alimgiray/copyrite/cmd/copyrite/internal/clierr"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/spf13/cobra"
)

func newAliasesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aliases",
		Short: "Manage the aliases stored for a project",
	}

	cmd.PersistentFlags().String("project", "", "project the aliases belong to (defaults to DEFAULT_PROJECT)")
	cmd.PersistentFlags().String("db", "", "database path (defaults to DB_PATH)")

	cmd.AddCommand(&cobra.Command{
		Use:   "import FILE",
		Short: "Replace the project's aliases with those of a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			aliases, err := services.LoadAliasesFile(args[0])
			if err != nil {
				return clierr.Wrap(clierr.ExitUsage, "invalid aliases file", err)
			}

			dbPath, _ := cmd.Flags().GetString("db")
			aliasService, db, err := openAliasService(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			project := projectFlag(cmd)
			if err := aliasService.ImportAliases(project, aliases); err != nil {
				return clierr.Wrap(clierr.ExitFailure, "import failed", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Imported %d aliases into project %s\n", len(aliases), project)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "List the project's aliases in resolution order",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			aliasService, db, err := openAliasService(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			aliases, err := aliasService.GetAliasesByProjectID(projectFlag(cmd))
			if err != nil {
				return clierr.Wrap(clierr.ExitFailure, "failed to list aliases", err)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tNAME\tAUTHORITATIVE MAIL\tMAILS")
			for _, alias := range aliases {
				name, _ := alias.CanonicalName()
				mail, _ := alias.CanonicalMail()
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", alias.ID, orDash(name), orDash(mail), strings.Join(alias.Mails, ", "))
			}
			return tw.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "clear",
		Short: "Remove every alias stored for the project",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, _ := cmd.Flags().GetString("db")
			aliasService, db, err := openAliasService(dbPath)
			if err != nil {
				return err
			}
			defer db.Close()

			project := projectFlag(cmd)
			if err := aliasService.ClearAliases(project); err != nil {
				return clierr.Wrap(clierr.ExitFailure, "clear failed", err)
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Cleared aliases of project %s\n", project)
			return nil
		},
	})

	return cmd
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
