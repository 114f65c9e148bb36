package commands

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/alimgiray/copyrite/cmd/copyrite/internal/clierr"
	"github.com/alimgiray/copyrite/internal/repositories"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/alimgiray/copyrite/pkg/config"
	"github.com/alimgiray/copyrite/pkg/database"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/spf13/cobra"
)

// NewRootCmd constructs the copyrite root command.
func NewRootCmd() *cobra.Command {
	version := os.Getenv("COPYRITE_VERSION")
	if version == "" {
		version = "0.0.0-dev"
	}

	cmd := &cobra.Command{
		Use:           "copyrite",
		Short:         "Normalize authorship of a version-control history",
		Long:          "copyrite reads contributions from git or GitHub and collapses author identities through aliases.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			var files []string
			if envFile != "" {
				files = append(files, envFile)
			}
			if err := config.Load(files...); err != nil {
				return clierr.Wrap(clierr.ExitUsage, "invalid configuration", err)
			}

			level := config.AppConfig.Log.Level
			if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
				level = "debug"
			}
			logger.Init(level)
			return nil
		},
	}

	cmd.PersistentFlags().BoolP("verbose", "v", false, "enable debug logging")
	cmd.PersistentFlags().String("env-file", "", "env file to load instead of .env")

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of copyrite",
		Run: func(cmd *cobra.Command, args []string) {
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "copyrite version %s\n", version)
		},
	})

	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newAliasesCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// openAliasService opens the configured database
func openAliasService(dbPath string) (*services.AliasService, *sql.DB, error) {
	if dbPath == "" {
		dbPath = config.AppConfig.Database.Path
	}

	db, err := database.Open(dbPath)
	if err != nil {
		return nil, nil, clierr.Wrap(clierr.ExitFailure, "failed to open database", err)
	}

	return services.NewAliasService(repositories.NewAliasRepository(db)), db, nil
}

// projectFlag returns the --project value or the configured default project
func projectFlag(cmd *cobra.Command) string {
	if project, _ := cmd.Flags().GetString("project"); project != "" {
		return project
	}
	return config.AppConfig.Project
}
