package importexport

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/smith3v/tg-word-quiz/pkg/bot/resultlog"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"github.com/xuri/excelize/v2"
)

const resultsSheet = "results"

func BuildExportCSV(items []quiz.Item) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.Write(utf8BOM); err != nil {
		return nil, err
	}

	writer := csv.NewWriter(&buf)
	writer.UseCRLF = true

	if err := writer.Write([]string{answerHeaders[0], promptHeaders[0]}); err != nil {
		return nil, err
	}
	for _, item := range items {
		if err := writer.Write([]string{item.Answer, item.Prompt}); err != nil {
			return nil, err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ExportFilename(now time.Time) string {
	return fmt.Sprintf("words-%s.csv", now.Format("20060102"))
}

// BuildResultsXLSX lays the result log out one row per answer, in the
// column order of the original spreadsheet log.
func BuildResultsXLSX(results []db.QuizResult) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", resultsSheet); err != nil {
		return nil, err
	}
	header := []interface{}{"日時", "学籍番号", "単語", "意味", "結果"}
	if err := f.SetSheetRow(resultsSheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, r := range results {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		row := []interface{}{
			r.RecordedAt.Format(resultlog.TimestampLayout),
			strconv.Itoa(r.StudentID),
			r.Word,
			r.Prompt,
			r.Result,
		}
		if err := f.SetSheetRow(resultsSheet, cell, &row); err != nil {
			return nil, err
		}
	}
	if err := f.SetColWidth(resultsSheet, "A", "A", 20); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(resultsSheet, "B", "E", 14); err != nil {
		return nil, err
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func ResultsFilename(now time.Time) string {
	return fmt.Sprintf("results-%s.xlsx", now.Format("20060102"))
}
