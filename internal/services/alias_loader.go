package services

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/alimgiray/copyrite/internal/models"
	"gopkg.in/yaml.v3"
)

// ErrAliasWithoutMails is returned when an alias definition lists no mails
var ErrAliasWithoutMails = errors.New("alias has no mails")

type aliasFile struct {
	Aliases []aliasEntry `yaml:"aliases"`
}

type aliasEntry struct {
	Name              *string  `yaml:"name"`
	Mails             []string `yaml:"mails"`
	AuthoritativeMail *string  `yaml:"authoritative_mail"`
}

// LoadAliasesFile reads alias definitions from a YAML file
func LoadAliasesFile(path string) ([]models.Alias, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read aliases file: %w", err)
	}
	return ParseAliases(data)
}

// ParseAliases parses alias definitions, keeping the order in which they appear
func ParseAliases(data []byte) ([]models.Alias, error) {
	var file aliasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse aliases: %w", err)
	}

	aliases := make([]models.Alias, 0, len(file.Aliases))
	for i, entry := range file.Aliases {
		mails, err := NormalizeMails(entry.Mails)
		if err != nil {
			return nil, fmt.Errorf("alias #%d: %w", i+1, err)
		}

		alias := models.NewAlias("", trimmed(entry.Name), mails, trimmed(entry.AuthoritativeMail))
		aliases = append(aliases, *alias)
	}

	return aliases, nil
}

// NormalizeMails trims the mails and drops blank ones.
// It returns ErrAliasWithoutMails when nothing is left.
func NormalizeMails(mails []string) ([]string, error) {
	normalized := make([]string, 0, len(mails))
	for _, mail := range mails {
		if mail = strings.TrimSpace(mail); mail != "" {
			normalized = append(normalized, mail)
		}
	}
	if len(normalized) == 0 {
		return nil, ErrAliasWithoutMails
	}
	return normalized, nil
}

// OverlappingMails returns the mails claimed by more than one alias, sorted
func OverlappingMails(aliases []models.Alias) []string {
	seen := make(map[string]int)
	for _, alias := range aliases {
		unique := make(map[string]struct{})
		for _, mail := range alias.Mails {
			unique[mail] = struct{}{}
		}
		for mail := range unique {
			seen[mail]++
		}
	}

	var overlapping []string
	for mail, count := range seen {
		if count > 1 {
			overlapping = append(overlapping, mail)
		}
	}
	sort.Strings(overlapping)
	return overlapping
}

func trimmed(value *string) *string {
	if value == nil {
		return nil
	}
	v := strings.TrimSpace(*value)
	if v == "" {
		return nil
	}
	return &v
}
