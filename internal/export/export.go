// Package export renders finished results as a spreadsheet.
package export

import (
	"fmt"
	"io"

	"github.com/mauv0809/courtqueue/internal/match"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Results"

// Header is the column order of the results sheet.
var Header = []string{
	"Player 1", "Score 1", "Score 2", "Player 2",
	"Round", "Gender", "Match type",
	"Place", "Court", "Tournament", "Group",
	"Date", "ID", "Status",
}

// WriteResults writes matches to w as an xlsx workbook with one row per match.
func WriteResults(w io.Writer, matches []*match.Match) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}
	if err := f.SetSheetRow(sheetName, "A1", &Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for i, m := range matches {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := resultRow(m)
		if err := f.SetSheetRow(sheetName, cell, &row); err != nil {
			return fmt.Errorf("failed to write match %d: %w", m.ID, err)
		}
	}

	if err := f.SetPanes(sheetName, &excelize.Panes{Freeze: true, YSplit: 1, TopLeftCell: "A2", ActivePane: "bottomLeft"}); err != nil {
		return fmt.Errorf("failed to freeze header: %w", err)
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func resultRow(m *match.Match) []any {
	var round, gender, matchType string
	if m.Tags != nil {
		round, gender, matchType = m.Tags.RoundType, m.Tags.Gender, m.Tags.MatchType
	}
	return []any{
		m.Player1, score(m.Score1), score(m.Score2), m.Player2,
		round, gender, matchType,
		m.Scope.Place, m.Scope.Court, m.Scope.Tournament, m.Scope.Group,
		m.CreatedAt.UTC().Format("2006-01-02 15:04:05"), m.ID, string(m.Status),
	}
}

func score(v *int) any {
	if v == nil {
		return ""
	}
	return *v
}
