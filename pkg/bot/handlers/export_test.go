package handlers

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/smith3v/tg-word-quiz/pkg/bot/importexport"
	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/internal/testutil"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
)

func TestHandleExportWithoutWords(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	client := testutil.NewTelegramClient()
	b := testutil.NewTestBot(t, client)

	HandleExport(context.Background(), b, testutil.MessageUpdate("/export", 300))

	if got := client.LastText(t); !strings.Contains(got, "no words to export") {
		t.Fatalf("expected empty export message, got %q", got)
	}
}

func TestHandleExportSendsCSV(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)
	if err := importexport.ReplaceQuizItems(301, []quiz.Item{{Prompt: "猫", Answer: "cat"}}); err != nil {
		t.Fatalf("failed to seed list: %v", err)
	}

	client := testutil.NewTelegramClient()
	b := testutil.NewTestBot(t, client)

	HandleExport(context.Background(), b, testutil.MessageUpdate("/export", 301))

	if !strings.HasSuffix(client.Last(t).Path, "/sendDocument") {
		t.Fatalf("expected sendDocument, got %s", client.Last(t).Path)
	}
	data, filename := client.LastField(t, "document")
	if !strings.HasPrefix(filename, "words-") || !strings.HasSuffix(filename, ".csv") {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !strings.Contains(data, "単語,意味\r\ncat,猫\r\n") {
		t.Fatalf("unexpected CSV payload %q", data)
	}
}

func TestHandleResultsSendsWorkbook(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	client := testutil.NewTelegramClient()
	b := testutil.NewTestBot(t, client)

	HandleResults(context.Background(), b, testutil.MessageUpdate("/results", 302))
	if got := client.LastText(t); !strings.Contains(got, "No results recorded yet") {
		t.Fatalf("expected empty results message, got %q", got)
	}

	if err := db.DB.Create(&db.QuizResult{
		UserID:     302,
		StudentID:  1234567,
		RunID:      "run",
		Word:       "cat",
		Prompt:     "猫",
		Result:     "正解",
		RecordedAt: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}).Error; err != nil {
		t.Fatalf("failed to seed result: %v", err)
	}

	HandleResults(context.Background(), b, testutil.MessageUpdate("/results", 302))

	data, filename := client.LastField(t, "document")
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Fatalf("unexpected filename %q", filename)
	}
	if !strings.HasPrefix(data, "PK") {
		t.Fatalf("expected a zip-based workbook payload")
	}
	caption, _ := client.LastField(t, "caption")
	if !strings.Contains(caption, "1 answers") {
		t.Fatalf("unexpected caption %q", caption)
	}
}
