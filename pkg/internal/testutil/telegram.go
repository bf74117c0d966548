package testutil

import (
	"bytes"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	telegram "github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// Request is one Bot API call captured by TelegramClient.
type Request struct {
	Path        string
	Method      string
	ContentType string
	Body        []byte
}

// TelegramClient records Bot API calls and answers each with Response.
type TelegramClient struct {
	mu       sync.Mutex
	Requests []Request
	Response string
}

func NewTelegramClient() *TelegramClient {
	return &TelegramClient{Response: `{"ok":true,"result":{}}`}
}

func (c *TelegramClient) Do(req *http.Request) (*http.Response, error) {
	body, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read request body: %w", err)
	}
	if err := req.Body.Close(); err != nil {
		return nil, fmt.Errorf("failed to close request body: %w", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.Requests = append(c.Requests, Request{
		Path:        req.URL.Path,
		Method:      req.Method,
		ContentType: req.Header.Get("Content-Type"),
		Body:        body,
	})
	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(c.Response)),
		Header:     make(http.Header),
	}, nil
}

// NewTestBot returns a bot that sends every call to client.
func NewTestBot(t *testing.T, client *TelegramClient) *telegram.Bot {
	t.Helper()
	b, err := telegram.New("test-token",
		telegram.WithSkipGetMe(),
		telegram.WithHTTPClient(time.Second, client),
	)
	if err != nil {
		t.Fatalf("failed to create test bot: %v", err)
	}
	return b
}

func (c *TelegramClient) Last(t *testing.T) Request {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.Requests) == 0 {
		t.Fatalf("expected at least one recorded request")
	}
	return c.Requests[len(c.Requests)-1]
}

// Count returns how many calls hit the Bot API method, e.g. "sendMessage".
func (c *TelegramClient) Count(method string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	count := 0
	for _, req := range c.Requests {
		if strings.HasSuffix(req.Path, "/"+method) {
			count++
		}
	}
	return count
}

// LastText returns the text field of the last call.
func (c *TelegramClient) LastText(t *testing.T) string {
	t.Helper()
	value, _ := c.Last(t).Field(t, "text")
	return value
}

// LastField returns a multipart field of the last call and its file name.
func (c *TelegramClient) LastField(t *testing.T, name string) (string, string) {
	t.Helper()
	return c.Last(t).Field(t, name)
}

// CallbackData returns the first callback_data in the last call that
// starts with prefix.
func (c *TelegramClient) CallbackData(t *testing.T, prefix string) string {
	t.Helper()
	body := string(c.Last(t).Body)
	idx := strings.Index(body, prefix)
	if idx == -1 {
		t.Fatalf("expected callback_data with %s prefix in %q", prefix, body)
	}
	rest := body[idx:]
	end := strings.Index(rest, "\"")
	if end == -1 {
		t.Fatalf("expected closing quote for callback_data")
	}
	return rest[:end]
}

// Field reads a multipart form field. go-telegram/bot sends every call as
// multipart/form-data.
func (r Request) Field(t *testing.T, name string) (string, string) {
	t.Helper()
	mediaType, params, err := mime.ParseMediaType(r.ContentType)
	if err != nil {
		t.Fatalf("failed to parse media type: %v", err)
	}
	if !strings.HasPrefix(mediaType, "multipart/") {
		t.Fatalf("unexpected media type: %s", mediaType)
	}

	reader := multipart.NewReader(bytes.NewReader(r.Body), params["boundary"])
	for {
		part, err := reader.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("failed to read multipart part: %v", err)
		}
		if part.FormName() == name {
			data, err := io.ReadAll(part)
			if err != nil {
				t.Fatalf("failed to read multipart field: %v", err)
			}
			return string(data), part.FileName()
		}
	}
	t.Fatalf("field %q not found in %s", name, r.Path)
	return "", ""
}

// MessageUpdate is a text message in the user's private chat.
func MessageUpdate(text string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
			Text: text,
		},
	}
}

// DocumentUpdate is a file upload in the user's private chat.
func DocumentUpdate(fileName, fileID string, userID int64) *models.Update {
	return &models.Update{
		Message: &models.Message{
			From: &models.User{ID: userID},
			Chat: models.Chat{ID: userID, Type: models.ChatTypePrivate},
			Document: &models.Document{
				FileID:   fileID,
				FileName: fileName,
			},
		},
	}
}

// CallbackUpdate is a button press on messageID.
func CallbackUpdate(data string, userID, chatID int64, messageID int) *models.Update {
	return &models.Update{
		CallbackQuery: &models.CallbackQuery{
			ID:   "callback-1",
			From: models.User{ID: userID},
			Data: data,
			Message: models.MaybeInaccessibleMessage{
				Type: models.MaybeInaccessibleMessageTypeMessage,
				Message: &models.Message{
					ID:   messageID,
					Chat: models.Chat{ID: chatID, Type: models.ChatTypePrivate},
				},
			},
		},
	}
}
