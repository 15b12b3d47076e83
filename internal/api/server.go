// Package api exposes the question answering endpoint over HTTP.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/openstatlab/mospi-rag/internal/ollama"
	"github.com/openstatlab/mospi-rag/pkg/models"
)

const maxQueryBodySize = 1 << 20 // 1MB

// noAnswerMessage is returned when retrieval finds nothing for a query.
const noAnswerMessage = "I could not find any relevant information to answer your question."

// Retriever finds the chunks most relevant to a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string, topK int) []models.IndexEntry
}

// ChatModel generates an answer from a prompt.
type ChatModel interface {
	Chat(ctx context.Context, model string, messages []ollama.Message) (string, error)
}

// Deps carries everything the handlers need.
type Deps struct {
	Retriever Retriever
	Chat      ChatModel
	ChatModel string
	TopK      int
}

// QueryRequest is the JSON body for POST /query.
type QueryRequest struct {
	Query string `json:"query"`
}

// QueryResponse is the JSON body returned by POST /query.
type QueryResponse struct {
	Answer string `json:"answer"`
}

// NewHandler builds the HTTP router for the chatbot API.
func NewHandler(deps Deps) http.Handler {
	r := chi.NewRouter()

	r.Get("/health", handleHealth())
	r.Post("/query", handleQuery(deps))

	return r
}

func handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func handleQuery(deps Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, maxQueryBodySize)
		defer r.Body.Close()

		var req QueryRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			httpError(w, http.StatusBadRequest, "invalid request body: %v", err)
			return
		}
		if strings.TrimSpace(req.Query) == "" {
			httpError(w, http.StatusBadRequest, "query is required")
			return
		}

		chunks := deps.Retriever.Retrieve(r.Context(), req.Query, deps.TopK)
		if len(chunks) == 0 {
			writeJSON(w, http.StatusOK, QueryResponse{Answer: noAnswerMessage})
			return
		}

		prompt := buildPrompt(req.Query, chunks)

		slog.Info("generating answer", "model", deps.ChatModel, "chunks", len(chunks))
		answer, err := deps.Chat.Chat(r.Context(), deps.ChatModel, []ollama.Message{
			{Role: "user", Content: prompt},
		})
		if err != nil {
			slog.Error("chat completion failed", "error", err)
			httpError(w, http.StatusInternalServerError, "internal server error")
			return
		}

		writeJSON(w, http.StatusOK, QueryResponse{Answer: answer})
	}
}

// buildPrompt grounds the model in the retrieved chunks and instructs it
// not to answer beyond them.
func buildPrompt(query string, chunks []models.IndexEntry) string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.ChunkText
	}
	context := strings.Join(texts, "\n")

	return fmt.Sprintf(`You are a helpful assistant that answers questions based on the provided context.
If the answer is not in the context, say that you don't know.

Context:
%s

Question: %s`, context, query)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("writing response", "error", err)
	}
}

func httpError(w http.ResponseWriter, status int, format string, args ...any) {
	writeJSON(w, status, map[string]string{"detail": fmt.Sprintf(format, args...)})
}
