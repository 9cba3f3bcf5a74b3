package clomap

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExportXLSX renders a Result as a two-sheet workbook: a summary sheet and
// one row per analyzed question. The caller owns the bytes; nothing is
// stored server-side.
func ExportXLSX(res Result) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	const questionSheet = "Questions"

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	summaryRows := [][]any{
		{"Total questions", res.TotalQuestions},
		{"Successfully mapped", res.SuccessfullyMapped},
		{"Unmapped questions", res.UnmappedQuestions},
		{"Processing time (ms)", res.ProcessingTimeMS},
		{"Summary", res.OverallSummary},
		{"Recommendations", strings.Join(res.Recommendations, "; ")},
	}
	for i, row := range summaryRows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write summary row: %w", err)
		}
	}

	if _, err := f.NewSheet(questionSheet); err != nil {
		return nil, fmt.Errorf("create question sheet: %w", err)
	}

	header := []any{"#", "Question", "Mapped CLOs", "Top relevance", "Cognitive level", "Issues", "Suggested rewrite"}
	if err := f.SetSheetRow(questionSheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}

	for i, q := range res.Questions {
		var clos []string
		top := 0
		for _, m := range q.MappedCLOs {
			clos = append(clos, fmt.Sprintf("CLO%d (%d)", m.CLONumber, m.RelevanceScore))
			if m.RelevanceScore > top {
				top = m.RelevanceScore
			}
		}
		rewrite := ""
		if q.Improved != nil {
			rewrite = q.Improved.Text
		}
		row := []any{
			q.Number,
			q.Text,
			strings.Join(clos, ", "),
			top,
			q.Blooms.DetectedLevel,
			strings.Join(q.Issues, "; "),
			rewrite,
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(questionSheet, cell, &row); err != nil {
			return nil, fmt.Errorf("write question row: %w", err)
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}
