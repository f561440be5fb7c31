package bankimport

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/w9840102-lang/mcqforge/internal/quiz"
)

// XLSXColumns is the header row expected by ReadXLSX, in template order.
var XLSXColumns = []string{"topic", "q", "a", "b", "c", "d", "ans"}

// RowError reports a spreadsheet row that was skipped.
type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

// ReadXLSX reads the first sheet of a workbook. The header row must name the
// columns in XLSXColumns (any order, case-insensitive). ans accepts a letter
// A-D or an index 0-3; rows with any other answer are skipped and reported.
func ReadXLSX(r io.Reader) ([]TopicRecords, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, nil, errors.New("excel workbook has no sheets")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, nil, errors.New("no data rows found")
	}

	header := map[string]int{}
	for i, h := range rows[0] {
		header[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, col := range XLSXColumns {
		if _, ok := header[col]; !ok {
			return nil, nil, fmt.Errorf("missing required column: %s", col)
		}
	}

	var (
		topics  []TopicRecords
		rowErrs []RowError
	)
	for i := 1; i < len(rows); i++ {
		row := rows[i]
		get := func(key string) string {
			idx := header[key]
			if idx >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[idx])
		}

		if isBlank(row) {
			continue
		}
		topic := get("topic")
		if topic == "" {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Error: "topic is empty"})
			continue
		}
		ans, ok := parseAnswer(get("ans"))
		if !ok {
			rowErrs = append(rowErrs, RowError{Row: i + 1, Error: fmt.Sprintf("answer %q is not A-D or 0-3", get("ans"))})
			continue
		}
		topics = append(topics, TopicRecords{Name: topic, Records: []quiz.RawQuestion{{
			Q:       get("q"),
			Options: []string{get("a"), get("b"), get("c"), get("d")},
			Ans:     ans,
		}}})
	}
	return merge(topics), rowErrs, nil
}

// WriteXLSXTemplate writes a workbook with the header row and one row per
// normalized question in topics.
func WriteXLSXTemplate(w io.Writer, topics []TopicRecords) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	sheet := f.GetSheetName(0)

	for i, h := range XLSXColumns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}
	row := 2
	for _, t := range merge(topics) {
		for _, q := range quiz.Normalize(t.Records) {
			values := []any{t.Name, q.Text, q.Options[0], q.Options[1], q.Options[2], q.Options[3], quiz.Letters[q.CorrectIndex]}
			for col, v := range values {
				cell, _ := excelize.CoordinatesToCellName(col+1, row)
				_ = f.SetCellValue(sheet, cell, v)
			}
			row++
		}
	}
	_ = f.SetColWidth(sheet, "A", "A", 18)
	_ = f.SetColWidth(sheet, "B", "B", 48)
	_ = f.SetColWidth(sheet, "C", "F", 22)

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write excel: %w", err)
	}
	return nil
}

func parseAnswer(s string) (int, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for i, l := range quiz.Letters {
		if s == l {
			return i, true
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n >= quiz.OptionCount {
		return 0, false
	}
	return n, true
}

func isBlank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
