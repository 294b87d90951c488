package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/service"
)

// maxGuidedStudyBody bounds the request body the proxy will read.
const maxGuidedStudyBody = 1 << 20

// GuidedStudyHandler proxies guided study conversations to the completion API.
type GuidedStudyHandler struct {
	studyService service.GuidedStudyService
}

// NewGuidedStudyHandler creates a new GuidedStudyHandler.
func NewGuidedStudyHandler(studyService service.GuidedStudyService) *GuidedStudyHandler {
	return &GuidedStudyHandler{studyService: studyService}
}

// GuidedStudyRequest represents the HTTP request payload for guided study.
// Messages is kept raw so malformed entries can be dropped instead of failing the request.
type GuidedStudyRequest struct {
	ScriptureRef string          `json:"scriptureRef"`
	PassageText  string          `json:"passageText"`
	Locale       string          `json:"locale"`
	Messages     json.RawMessage `json:"messages"`
}

// ServeHTTP handles POST /api/guided-study.
func (h *GuidedStudyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if methodNotAllowed(w, r, http.MethodPost) {
		return
	}

	var req GuidedStudyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxGuidedStudyBody)).Decode(&req); err != nil {
		h.handleServiceError(w, r, fmt.Errorf("failed to decode request body: %w", err))
		return
	}

	var history []json.RawMessage
	if len(req.Messages) > 0 {
		if err := json.Unmarshal(req.Messages, &history); err != nil {
			logger.DebugContext(ctx, "ignoring non-array messages field", "error", err)
			history = nil
		}
	}

	resp, err := h.studyService.Study(ctx, service.GuidedStudyRequest{
		ScriptureRef: req.ScriptureRef,
		PassageText:  req.PassageText,
		Locale:       req.Locale,
		Messages:     service.FilterMessages(history),
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		logger.ErrorContext(ctx, "failed to relay upstream response", "error", err)
	}
}

// handleServiceError maps service errors to the proxy's error responses.
func (h *GuidedStudyHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	ctx := r.Context()

	var upstreamErr *service.UpstreamError
	if errors.As(err, &upstreamErr) {
		writeError(ctx, w, upstreamErr.StatusCode, upstreamErr.Body)
		return
	}

	if errors.Is(err, service.ErrMisconfigured) {
		writeError(ctx, w, http.StatusInternalServerError, "Server misconfiguration")
		return
	}

	contextutil.LoggerFromContext(ctx).ErrorContext(ctx, "guided study proxy failed", "error", err)
	writeError(ctx, w, http.StatusInternalServerError, "Proxy request failed")
}
