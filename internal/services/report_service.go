package services

import (
	"fmt"
	"io"
	"sort"

	"github.com/alimgiray/copyrite/internal/models"
	"github.com/xuri/excelize/v2"
)

const (
	contributionsSheet = "Contributions"
	authorsSheet       = "Authors"
)

// AuthorSummary aggregates the contributions of one identity
type AuthorSummary struct {
	Author    string `json:"author"`
	Mail      string `json:"mail"`
	FirstYear int    `json:"first_year"`
	LastYear  int    `json:"last_year"`
	Commits   int    `json:"commits"`
}

// Years returns the span in copyright header form, e.g. "2019" or "2019-2021"
func (a AuthorSummary) Years() string {
	if a.FirstYear == a.LastYear {
		return fmt.Sprintf("%d", a.FirstYear)
	}
	return fmt.Sprintf("%d-%d", a.FirstYear, a.LastYear)
}

type ReportService struct{}

func NewReportService() *ReportService {
	return &ReportService{}
}

// Authors groups contributions by author and mail, ordered by first contribution
func (s *ReportService) Authors(contributions []models.Contribution) []AuthorSummary {
	type key struct{ author, mail string }

	index := make(map[key]int)
	summaries := []AuthorSummary{}
	firstSeen := make(map[key]models.Contribution)

	for _, c := range contributions {
		k := key{c.Author, c.Mail}
		year := c.Date.Year()

		i, ok := index[k]
		if !ok {
			index[k] = len(summaries)
			firstSeen[k] = c
			summaries = append(summaries, AuthorSummary{
				Author:    c.Author,
				Mail:      c.Mail,
				FirstYear: year,
				LastYear:  year,
				Commits:   1,
			})
			continue
		}

		summary := &summaries[i]
		summary.Commits++
		if year < summary.FirstYear {
			summary.FirstYear = year
		}
		if year > summary.LastYear {
			summary.LastYear = year
		}
		if c.Date.Before(firstSeen[k].Date) {
			firstSeen[k] = c
		}
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		a := firstSeen[key{summaries[i].Author, summaries[i].Mail}]
		b := firstSeen[key{summaries[j].Author, summaries[j].Mail}]
		return a.Date.Before(b.Date)
	})

	return summaries
}

// WriteXLSX writes the contributions and the author summary as an Excel workbook
func (s *ReportService) WriteXLSX(w io.Writer, contributions []models.Contribution) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", contributionsSheet); err != nil {
		return err
	}

	if err := writeRows(f, contributionsSheet,
		[]interface{}{"Revision", "Date", "Author", "Mail", "Message"},
		len(contributions), func(i int) []interface{} {
			c := contributions[i]
			return []interface{}{c.Revision, c.Date, c.Author, c.Mail, c.Message}
		}); err != nil {
		return err
	}

	if _, err := f.NewSheet(authorsSheet); err != nil {
		return err
	}

	authors := s.Authors(contributions)
	if err := writeRows(f, authorsSheet,
		[]interface{}{"Author", "Mail", "Years", "Commits"},
		len(authors), func(i int) []interface{} {
			a := authors[i]
			return []interface{}{a.Author, a.Mail, a.Years(), a.Commits}
		}); err != nil {
		return err
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func writeRows(f *excelize.File, sheet string, header []interface{}, n int, row func(i int) []interface{}) error {
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return err
	}

	for i := 0; i < n; i++ {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := row(i)
		if err := f.SetSheetRow(sheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write %s row %d: %w", sheet, i+1, err)
		}
	}

	return nil
}
