package importexport

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"github.com/xuri/excelize/v2"
)

const maxDelimiterSampleRecords = 20

var (
	ErrMissingColumns  = errors.New("word list needs 単語 and 意味 columns")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

var (
	answerHeaders = []string{"単語", "word"}
	promptHeaders = []string{"意味", "meaning"}
)

// WordList is the result of parsing an uploaded file.
type WordList struct {
	Items   []quiz.Item
	Skipped int
}

// ParseWordList picks a parser from the file extension.
func ParseWordList(fileName string, data []byte) (WordList, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv", ".tsv", ".txt":
		return ParseWordListCSV(data)
	case ".xlsx":
		return ParseWordListXLSX(data)
	default:
		return WordList{}, fmt.Errorf("%w: %q", ErrUnsupportedFile, fileName)
	}
}

func ParseWordListCSV(data []byte) (WordList, error) {
	text, err := DecodeText(data)
	if err != nil {
		return WordList{}, err
	}

	reader := csv.NewReader(strings.NewReader(text))
	reader.Comma = detectCSVDelimiter([]byte(text))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var records [][]string
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return WordList{}, fmt.Errorf("read csv: %w", err)
		}
		records = append(records, record)
	}
	return buildWordList(records)
}

func ParseWordListXLSX(data []byte) (WordList, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return WordList{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return WordList{}, ErrMissingColumns
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return WordList{}, fmt.Errorf("read sheet %s: %w", sheets[0], err)
	}
	return buildWordList(rows)
}

// buildWordList finds the header row (the first non-empty record) and
// collects one item per row that has both a word and a meaning.
func buildWordList(records [][]string) (WordList, error) {
	var list WordList
	answerCol, promptCol := -1, -1
	headerSeen := false

	for _, record := range records {
		if isEmptyRecord(record) {
			if headerSeen {
				list.Skipped++
			}
			continue
		}
		if !headerSeen {
			headerSeen = true
			answerCol = findColumn(record, answerHeaders)
			promptCol = findColumn(record, promptHeaders)
			if answerCol < 0 || promptCol < 0 {
				return WordList{}, ErrMissingColumns
			}
			continue
		}
		answer := field(record, answerCol)
		prompt := field(record, promptCol)
		if answer == "" || prompt == "" {
			list.Skipped++
			continue
		}
		list.Items = append(list.Items, quiz.Item{Prompt: prompt, Answer: answer})
	}

	if !headerSeen {
		return WordList{}, ErrMissingColumns
	}
	return list, nil
}

func findColumn(header []string, names []string) int {
	for i, cell := range header {
		cell = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(cell, string(utf8BOM))))
		for _, name := range names {
			if cell == name {
				return i
			}
		}
	}
	return -1
}

func field(record []string, col int) string {
	if col >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[col])
}

func isEmptyRecord(record []string) bool {
	for _, f := range record {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

func detectCSVDelimiter(data []byte) rune {
	candidates := []rune{',', '\t', ';'}
	bestDelimiter := candidates[0]
	bestScore := -1

	for _, delimiter := range candidates {
		score, err := scoreDelimiter(data, delimiter, maxDelimiterSampleRecords)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			bestDelimiter = delimiter
		}
	}

	if bestScore <= 0 {
		return ','
	}
	return bestDelimiter
}

// scoreDelimiter counts how many sampled records agree on the most common
// multi-column width when split by delimiter.
func scoreDelimiter(data []byte, delimiter rune, maxRecords int) (int, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1

	counts := make(map[int]int)
	for seen := 0; seen < maxRecords; {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}
		if isEmptyRecord(record) {
			continue
		}
		seen++
		if len(record) >= 2 {
			counts[len(record)]++
		}
	}

	best := 0
	for _, score := range counts {
		if score > best {
			best = score
		}
	}
	return best, nil
}
