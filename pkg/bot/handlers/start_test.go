package handlers

import (
	"context"
	"strings"
	"testing"

	"github.com/smith3v/tg-word-quiz/pkg/db"
	"github.com/smith3v/tg-word-quiz/pkg/internal/testutil"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
)

func TestHandleStartSendsUsage(t *testing.T) {
	logger.SetLogLevel(logger.ERROR)
	client := testutil.NewTelegramClient()
	b := testutil.NewTestBot(t, client)

	HandleStart(context.Background(), b, testutil.MessageUpdate("/start", 10))

	got := client.LastText(t)
	if !strings.Contains(got, "/id 1234567") || !strings.Contains(got, "/quiz") {
		t.Fatalf("expected usage text, got %q", got)
	}
}

func TestHandleStudentIDStoresNumber(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)
	client := testutil.NewTelegramClient()
	b := testutil.NewTestBot(t, client)

	HandleStudentID(context.Background(), b, testutil.MessageUpdate("/id 2024001", 11))

	if got := client.LastText(t); !strings.Contains(got, "2024001") {
		t.Fatalf("expected confirmation, got %q", got)
	}
	id, err := db.StudentID(11)
	if err != nil {
		t.Fatalf("StudentID failed: %v", err)
	}
	if id != 2024001 {
		t.Fatalf("expected stored id 2024001, got %d", id)
	}
}

func TestHandleStudentIDRejectsBadInput(t *testing.T) {
	testutil.SetupTestDB(t)
	logger.SetLogLevel(logger.ERROR)

	for _, text := range []string{"/id", "/id 123", "/id 12345678", "/id abcdefg", "/id 0123456", "/id 1234567 extra"} {
		t.Run(text, func(t *testing.T) {
			client := testutil.NewTelegramClient()
			b := testutil.NewTestBot(t, client)

			HandleStudentID(context.Background(), b, testutil.MessageUpdate(text, 12))

			if got := client.LastText(t); !strings.Contains(got, "7-digit") {
				t.Fatalf("expected format help, got %q", got)
			}
			if id, _ := db.StudentID(12); id != 0 {
				t.Fatalf("expected nothing stored, got %d", id)
			}
		})
	}
}

func TestParseStudentID(t *testing.T) {
	id, err := parseStudentID("/id  9999999 ")
	if err != nil || id != 9999999 {
		t.Fatalf("expected 9999999, got %d, %v", id, err)
	}
	if _, err := parseStudentID("/id -123456"); err == nil {
		t.Fatal("expected error for negative number")
	}
}
