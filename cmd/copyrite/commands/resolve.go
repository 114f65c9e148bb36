package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/alimgiray/copyrite/cmd/copyrite/internal/clierr"
	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/internal/services"
	"github.com/alimgiray/copyrite/pkg/config"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

type resolveOptions struct {
	repo        string
	github      string
	aliasesFile string
	dbPath      string
	since       string
	format      string
	output      string
	authors     bool
}

func newResolveCmd() *cobra.Command {
	opts := &resolveOptions{}

	cmd := &cobra.Command{
		Use:   "resolve [paths...]",
		Short: "Read a history and apply aliases to its contributions",
		Long: "resolve reads contributions from a local git repository (or a GitHub repository) " +
			"and rewrites author names and mails according to the aliases of a YAML file or a stored project.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runResolve(cmd, opts, args)
		},
	}

	f := cmd.Flags()
	f.StringVar(&opts.repo, "repo", ".", "local git repository to read")
	f.StringVar(&opts.github, "github", "", "read the commits of a GitHub repository (owner/repo) instead")
	f.StringVar(&opts.aliasesFile, "aliases", "", "YAML file with alias definitions")
	f.String("project", "", "use the aliases stored for this project (stored aliases are only read when --project or --db is set)")
	f.StringVar(&opts.dbPath, "db", "", "read stored aliases from this database, for --project or else DEFAULT_PROJECT")
	f.StringVar(&opts.since, "since", "", "only read contributions after this date (YYYY-MM-DD)")
	f.StringVar(&opts.format, "format", "text", "output format: text, json or xlsx")
	f.StringVarP(&opts.output, "output", "o", "", "write to this file instead of stdout")
	f.BoolVar(&opts.authors, "authors", false, "print the author summary instead of every contribution")

	return cmd
}

func runResolve(cmd *cobra.Command, opts *resolveOptions, paths []string) error {
	if opts.format != "text" && opts.format != "json" && opts.format != "xlsx" {
		return clierr.Usage("unknown format %q", opts.format)
	}

	var since *time.Time
	if opts.since != "" {
		t, err := time.Parse("2006-01-02", opts.since)
		if err != nil {
			return clierr.Usage("invalid --since date %q", opts.since)
		}
		since = &t
	}

	source, err := contributionSource(cmd.Context(), opts, since, paths)
	if err != nil {
		return err
	}

	contributions, err := source.Contributions(cmd.Context())
	if err != nil {
		return clierr.Wrap(clierr.ExitFailure, "failed to read contributions", err)
	}

	resolved, err := resolveWithAliases(cmd, opts, contributions)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if opts.output != "" {
		file, err := os.Create(opts.output)
		if err != nil {
			return clierr.Wrap(clierr.ExitFailure, "failed to create output file", err)
		}
		defer file.Close()
		out = file
	}

	return writeResolved(out, opts, resolved)
}

func contributionSource(ctx context.Context, opts *resolveOptions, since *time.Time, paths []string) (services.ContributionSource, error) {
	if opts.github != "" {
		if len(paths) > 0 {
			return nil, clierr.Usage("path filters are only supported for local repositories")
		}
		source, err := services.NewGitHubHistoryService(opts.github, config.AppConfig.GitHub.Token, since)
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitUsage, "invalid --github", err)
		}
		return source, nil
	}

	source := services.NewGitHistoryService(opts.repo, since, paths...)
	if !source.IsRepository(ctx) {
		return nil, clierr.Usage("%s is not a git repository", opts.repo)
	}
	return source, nil
}

func resolveWithAliases(cmd *cobra.Command, opts *resolveOptions, contributions []models.Contribution) ([]models.Contribution, error) {
	if opts.aliasesFile != "" {
		aliases, err := services.LoadAliasesFile(opts.aliasesFile)
		if err != nil {
			return nil, clierr.Wrap(clierr.ExitUsage, "invalid aliases file", err)
		}
		for _, mail := range services.OverlappingMails(aliases) {
			logger.WithField("mail", mail).Warn("Mail belongs to more than one alias, the first one wins")
		}
		logger.WithFields(logrus.Fields{
			"aliases":       len(aliases),
			"contributions": len(contributions),
		}).Info("Applying aliases")
		return services.ApplyAliases(contributions, aliases), nil
	}

	// DEFAULT_PROJECT only applies once a database is asked for, so a plain
	// resolve never creates the database file
	if !cmd.Flags().Changed("project") && !cmd.Flags().Changed("db") {
		logger.Info("No aliases given, contributions are left as they are")
		return services.ApplyAliases(contributions, nil), nil
	}

	aliasService, db, err := openAliasService(opts.dbPath)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	resolved, err := aliasService.ResolveContributions(projectFlag(cmd), contributions)
	if err != nil {
		return nil, clierr.Wrap(clierr.ExitFailure, "failed to resolve contributions", err)
	}
	return resolved, nil
}

func writeResolved(out io.Writer, opts *resolveOptions, contributions []models.Contribution) error {
	reports := services.NewReportService()

	switch opts.format {
	case "xlsx":
		return reports.WriteXLSX(out, contributions)
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if opts.authors {
			return enc.Encode(reports.Authors(contributions))
		}
		return enc.Encode(contributions)
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	if opts.authors {
		for _, a := range reports.Authors(contributions) {
			fmt.Fprintf(tw, "%s\t%s <%s>\t%d\n", a.Years(), a.Author, a.Mail, a.Commits)
		}
	} else {
		for _, c := range contributions {
			fmt.Fprintf(tw, "%.10s\t%s\t%s <%s>\t%s\n",
				c.Revision, c.Date.Format("2006-01-02"), c.Author, c.Mail, c.Message)
		}
	}
	return tw.Flush()
}
