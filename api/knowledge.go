package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/hulo-lang/hulomind/internal/llm"
	"github.com/hulo-lang/hulomind/internal/log"
	"github.com/hulo-lang/hulomind/internal/retrieval"
	"github.com/hulo-lang/hulomind/internal/service"
	"github.com/hulo-lang/hulomind/internal/vectorstore"
)

// maxRequestBody caps request bodies; queries are short.
const maxRequestBody = 64 * 1024

// knowledgeHandler serves the search and ask endpoints.
type knowledgeHandler struct {
	knowledge *service.Knowledge
	logger    log.Logger
}

// RegisterRoutes registers knowledge routes on the given mux.
func (h *knowledgeHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/search", h.search)
	mux.HandleFunc("POST /api/ask", h.ask)
}

// queryRequest is the shared request body for search and ask.
type queryRequest struct {
	Query string `json:"query"`
}

// searchResponse wraps a retrieval result for the wire.
type searchResponse struct {
	Results []searchResult `json:"results"`
	Rounds  int            `json:"rounds"`
}

type searchResult struct {
	ID          string  `json:"id"`
	Text        string  `json:"text"`
	Title       string  `json:"title"`
	Category    string  `json:"category"`
	Language    string  `json:"language"`
	Path        string  `json:"path"`
	HeadingPath string  `json:"heading_path,omitempty"`
	Score       float32 `json:"score"`
}

func (h *knowledgeHandler) search(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	result, err := h.knowledge.Search(r.Context(), req.Query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}

	resp := searchResponse{Results: []searchResult{}, Rounds: result.Rounds}
	for _, hit := range result.Hits {
		resp.Results = append(resp.Results, searchResult{
			ID:          hit.Chunk.ID,
			Text:        hit.Chunk.Text,
			Title:       hit.Chunk.Title,
			Category:    hit.Chunk.Category,
			Language:    hit.Chunk.Language,
			Path:        hit.Chunk.Path,
			HeadingPath: hit.Chunk.HeadingPath,
			Score:       hit.Score,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *knowledgeHandler) ask(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeQuery(w, r)
	if !ok {
		return
	}

	answer, err := h.knowledge.Ask(r.Context(), req.Query)
	if err != nil {
		h.writeServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, answer)
}

// decodeQuery parses the request body, writing the error response itself
// when parsing fails.
func (h *knowledgeHandler) decodeQuery(w http.ResponseWriter, r *http.Request) (queryRequest, bool) {
	var req queryRequest

	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "bad_request", "invalid JSON body")
		return req, false
	}
	return req, true
}

// writeServiceError maps service errors to HTTP status codes.
func (h *knowledgeHandler) writeServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidQuery), errors.Is(err, retrieval.ErrEmptyQuery):
		writeError(w, r, http.StatusBadRequest, "invalid_query", err.Error())
	case errors.Is(err, llm.ErrNoProvider):
		writeError(w, r, http.StatusServiceUnavailable, "no_provider", "no LLM provider available")
	case errors.Is(err, vectorstore.ErrStorage):
		h.logger.Error("storage failure", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, r, http.StatusServiceUnavailable, "storage_unavailable", "knowledge store unavailable")
	default:
		h.logger.Error("request failed", "error", err, "request_id", requestIDFromContext(r.Context()))
		writeError(w, r, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
