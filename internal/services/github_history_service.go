package services

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/alimgiray/copyrite/pkg/logger"
	"github.com/google/go-github/v57/github"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// GitHubHistoryService reads contributions from the commit list of a GitHub repository
type GitHubHistoryService struct {
	client *github.Client
	owner  string
	repo   string
	since  *time.Time
}

// NewGitHubHistoryService creates a history reader for "owner/repo".
// An empty token uses unauthenticated requests.
func NewGitHubHistoryService(fullName, token string, since *time.Time) (*GitHubHistoryService, error) {
	owner, repo, ok := strings.Cut(fullName, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("invalid repository %q, expected owner/repo", fullName)
	}

	return &GitHubHistoryService{
		client: createGitHubClient(token),
		owner:  owner,
		repo:   repo,
		since:  since,
	}, nil
}

// WithBaseURL points the service at a different API endpoint, e.g. GitHub Enterprise
func (s *GitHubHistoryService) WithBaseURL(baseURL string) (*GitHubHistoryService, error) {
	client, err := s.client.WithEnterpriseURLs(baseURL, baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid GitHub URL: %w", err)
	}
	s.client = client
	return s, nil
}

// createGitHubClient creates a GitHub client with the provided token
func createGitHubClient(token string) *github.Client {
	if token == "" {
		return github.NewClient(nil)
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{AccessToken: token},
	)
	tc := oauth2.NewClient(context.Background(), ts)
	return github.NewClient(tc)
}

// Contributions lists all commits of the repository, newest first
func (s *GitHubHistoryService) Contributions(ctx context.Context) ([]models.Contribution, error) {
	opt := &github.CommitsListOptions{
		ListOptions: github.ListOptions{PerPage: 100},
	}
	if s.since != nil {
		opt.Since = *s.since
	}

	contributions := []models.Contribution{}
	for {
		commits, resp, err := s.client.Repositories.ListCommits(ctx, s.owner, s.repo, opt)
		if err != nil {
			if resp != nil && resp.StatusCode == http.StatusConflict {
				// Empty repository
				break
			}
			return nil, fmt.Errorf("failed to list commits of %s/%s: %w", s.owner, s.repo, err)
		}

		for _, commit := range commits {
			contributions = append(contributions, contributionFromCommit(commit))
		}

		if resp.NextPage == 0 {
			break
		}
		opt.Page = resp.NextPage
	}

	logger.WithFields(logrus.Fields{
		"repo":          s.owner + "/" + s.repo,
		"contributions": len(contributions),
	}).Debug("Read contributions from GitHub")

	return contributions, nil
}

func contributionFromCommit(commit *github.RepositoryCommit) models.Contribution {
	author := commit.GetCommit().GetAuthor()
	message, _, _ := strings.Cut(commit.GetCommit().GetMessage(), "\n")

	return models.NewContribution(
		author.GetName(),
		author.GetEmail(),
		author.GetDate().Time,
		commit.GetSHA(),
		message,
	)
}
