package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// Match is one entry of the response array.
type Match struct {
	Text     string            `json:"text"`
	Score    float64           `json:"score"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Response is a transport-neutral reply: an HTTP-style status and a JSON body.
type Response struct {
	Status int
	Body   []byte
}

type errorBody struct {
	Error string `json:"error"`
}

// Fixed bodies for non-client failures.
var (
	internalErrorBody = errorJSON("internal server error")
	startupFailedBody = errorJSON("service unavailable: startup failed")
	notReadyBody      = errorJSON("service not ready")
)

func errorJSON(msg string) []byte {
	data, _ := json.Marshal(errorBody{Error: msg})
	return data
}

// Handler turns raw request bytes into a response using a Ready runtime.
type Handler struct {
	rt     *Runtime
	logger *slog.Logger
}

// NewHandler creates a handler over rt.
func NewHandler(rt *Runtime, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{rt: rt, logger: logger}
}

// Handle parses, executes and serializes one request. It never panics:
// validation failures map to 400, anything else to a generic 500.
func (h *Handler) Handle(ctx context.Context, raw []byte) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "request panicked", "panic", r, "stack", string(debug.Stack()))
			resp = Response{Status: http.StatusInternalServerError, Body: internalErrorBody}
		}
	}()

	req, err := ParseRequest(raw, h.rt.Engine.Dim())
	if err != nil {
		return h.errorResponse(ctx, err)
	}
	matches, err := h.Query(ctx, req)
	if err != nil {
		return h.errorResponse(ctx, err)
	}
	body, err := json.Marshal(matches)
	if err != nil {
		return h.errorResponse(ctx, internal("encode", err))
	}
	return Response{Status: http.StatusOK, Body: body}
}

func (h *Handler) errorResponse(ctx context.Context, err error) Response {
	if IsValidation(err) {
		h.logger.DebugContext(ctx, "invalid request", "error", err)
		return Response{Status: http.StatusBadRequest, Body: errorJSON(err.Error())}
	}
	h.logger.ErrorContext(ctx, "request failed", "error", err)
	return Response{Status: http.StatusInternalServerError, Body: internalErrorBody}
}

// Query runs a validated request: embed the text when needed, search, and
// resolve hits to documents.
func (h *Handler) Query(ctx context.Context, req QueryRequest) ([]Match, error) {
	query := req.Vector
	if req.Text != nil {
		v, err := h.rt.Embedder.Embed(ctx, *req.Text)
		if err != nil {
			return nil, internal("embed", err)
		}
		query = v
	}

	k := req.K
	if req.Filter != nil {
		// filtered requests rank everything and keep the first k matches
		k = h.rt.Engine.Len()
		if k < 1 {
			k = 1
		}
	}
	hits, err := h.rt.Engine.Search(query, k)
	if err != nil {
		return nil, internal("search", err)
	}

	matches := make([]Match, 0, min(len(hits), req.K))
	for _, hit := range hits {
		if len(matches) == req.K {
			break
		}
		doc, err := h.rt.Store.Lookup(hit.ID)
		if err != nil {
			return nil, internal("lookup", fmt.Errorf("hit %d: %w", hit.ID, err))
		}
		if req.Filter != nil && !req.Filter.Match(doc.Metadata) {
			continue
		}
		matches = append(matches, Match{Text: doc.Text, Score: hit.Score, Metadata: doc.Metadata})
	}
	return matches, nil
}
