package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

type stubRetriever struct {
	entries []models.IndexEntry
	gotK    int
}

func (s *stubRetriever) Retrieve(_ context.Context, _ string, topK int) []models.IndexEntry {
	s.gotK = topK
	return s.entries
}

type stubChat struct {
	answer string
	err    error
	prompt string
}

func (s *stubChat) Chat(_ context.Context, _ string, messages []ollama.Message) (string, error) {
	if len(messages) > 0 {
		s.prompt = messages[0].Content
	}
	return s.answer, s.err
}

func newTestHandler(retriever Retriever, chat ChatModel) http.Handler {
	return NewHandler(Deps{
		Retriever: retriever,
		Chat:      chat,
		ChatModel: "llama3",
		TopK:      5,
	})
}

func TestHealth(t *testing.T) {
	h := newTestHandler(&stubRetriever{}, &stubChat{})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "ok" {
		t.Errorf("body = %v", body)
	}
}

func TestQuery_AnswersFromContext(t *testing.T) {
	retriever := &stubRetriever{entries: []models.IndexEntry{
		{ChunkText: "GDP grew 7% in 2024."},
		{ChunkText: "Inflation stayed near 5%."},
	}}
	chat := &stubChat{answer: "GDP grew 7%."}
	h := newTestHandler(retriever, chat)

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"query": "How much did GDP grow?"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body)
	}
	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != "GDP grew 7%." {
		t.Errorf("answer = %q", resp.Answer)
	}
	if retriever.gotK != 5 {
		t.Errorf("topK = %d, want 5", retriever.gotK)
	}
	if !strings.Contains(chat.prompt, "GDP grew 7% in 2024.") ||
		!strings.Contains(chat.prompt, "How much did GDP grow?") {
		t.Errorf("prompt missing context or question:\n%s", chat.prompt)
	}
}

func TestQuery_NoRelevantChunks(t *testing.T) {
	h := newTestHandler(&stubRetriever{}, &stubChat{answer: "should not be called"})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"query": "anything"}`)))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var resp QueryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Answer != noAnswerMessage {
		t.Errorf("answer = %q, want the no-answer message", resp.Answer)
	}
}

func TestQuery_ChatFailure(t *testing.T) {
	retriever := &stubRetriever{entries: []models.IndexEntry{{ChunkText: "context"}}}
	h := newTestHandler(retriever, &stubChat{err: errors.New("model offline")})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query",
		strings.NewReader(`{"query": "anything"}`)))

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want 500", rec.Code)
	}
}

func TestQuery_BadRequests(t *testing.T) {
	h := newTestHandler(&stubRetriever{}, &stubChat{})

	for name, body := range map[string]string{
		"malformed json": `{"query": `,
		"empty query":    `{"query": "  "}`,
		"missing query":  `{}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/query", strings.NewReader(body)))
			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
		})
	}
}
