package services

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/pkg/logger"
)

// ContributionSource produces the contributions of a history
type ContributionSource interface {
	Contributions(ctx context.Context) ([]models.Contribution, error)
}

const (
	fieldSeparator  = "\x1f"
	recordSeparator = "\x1e"
	gitLogFormat    = "--format=%H%x1f%an%x1f%ae%x1f%aI%x1f%s%x1e"
)

// GitHistoryService reads contributions from a local git repository
type GitHistoryService struct {
	repoPath string
	since    *time.Time
	paths    []string
}

// NewGitHistoryService creates a history reader for the repository at repoPath.
// Paths restricts the history to the given files or directories.
func NewGitHistoryService(repoPath string, since *time.Time, paths ...string) *GitHistoryService {
	return &GitHistoryService{
		repoPath: repoPath,
		since:    since,
		paths:    paths,
	}
}

// IsRepository checks if the path is inside a git working tree
func (s *GitHistoryService) IsRepository(ctx context.Context) bool {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = s.repoPath

	out, err := cmd.Output()
	return err == nil && strings.TrimSpace(string(out)) == "true"
}

// Contributions runs git log and returns one contribution per commit, newest first
func (s *GitHistoryService) Contributions(ctx context.Context) ([]models.Contribution, error) {
	args := []string{"log", gitLogFormat}
	if s.since != nil {
		args = append(args, "--since="+s.since.Format(time.RFC3339))
	}
	if len(s.paths) > 0 {
		args = append(args, "--")
		args = append(args, s.paths...)
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = s.repoPath
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to read git history of %s: %w: %s",
			s.repoPath, err, strings.TrimSpace(stderr.String()))
	}

	contributions, err := parseGitLog(stdout.String())
	if err != nil {
		return nil, err
	}

	logger.WithField("repo", s.repoPath).Debugf("Read %d contributions from git", len(contributions))
	return contributions, nil
}

func parseGitLog(output string) ([]models.Contribution, error) {
	contributions := []models.Contribution{}

	for _, record := range strings.Split(output, recordSeparator) {
		record = strings.TrimSpace(record)
		if record == "" {
			continue
		}

		fields := strings.Split(record, fieldSeparator)
		if len(fields) != 5 {
			return nil, fmt.Errorf("unexpected git log record %q", record)
		}

		date, err := time.Parse(time.RFC3339, fields[3])
		if err != nil {
			return nil, fmt.Errorf("invalid author date in commit %s: %w", fields[0], err)
		}

		contributions = append(contributions,
			models.NewContribution(fields[1], fields[2], date, fields[0], fields[4]))
	}

	return contributions, nil
}
