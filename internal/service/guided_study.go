package service

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_llm_client.go -package=mocks scripture-journey/internal/service LLMClient
//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_guided_study_service.go -package=mocks scripture-journey/internal/service GuidedStudyService

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"

	"scripture-journey/internal/contextutil"
	"scripture-journey/internal/llm"
)

// SystemPrompt frames every guided study conversation.
const SystemPrompt = `You are a gentle, knowledgeable guide helping a reader study a passage of scripture.
Ask one thoughtful question at a time and build on the reader's answers.
Stay grounded in the passage text you are given; when you bring in historical or literary context, say so.
Keep replies short (under 150 words) and answer in the reader's language.
Do not preach, and do not claim any single tradition's reading is the only correct one.`

// DefaultLocale is used when a request does not name one.
const DefaultLocale = "en"

const (
	roleSystem    = "system"
	roleUser      = "user"
	roleAssistant = "assistant"
)

// LLMClient is an interface for interacting with an LLM API.
// This interface is defined from the service layer's perspective (consumer-first).
type LLMClient interface {
	// Configured reports whether the client holds a credential for the upstream.
	Configured() bool
	// Complete sends a conversation upstream and returns the raw reply.
	Complete(ctx context.Context, messages []llm.Message, params llm.ChatParams) (*llm.RawResponse, error)
}

// ChatTurn is one prior exchange in a guided study conversation.
type ChatTurn struct {
	Role    string
	Content string
}

// GuidedStudyRequest represents a guided study request in the domain layer.
type GuidedStudyRequest struct {
	ScriptureRef string
	PassageText  string
	Locale       string
	Messages     []ChatTurn
}

// GuidedStudyResponse is the upstream reply to relay to the caller.
type GuidedStudyResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// GuidedStudyService proxies guided study conversations to the completion API.
type GuidedStudyService interface {
	// Study forwards the conversation upstream. Non-2xx replies come back as *UpstreamError.
	Study(ctx context.Context, req GuidedStudyRequest) (GuidedStudyResponse, error)
}

// guidedStudyService implements GuidedStudyService.
type guidedStudyService struct {
	llmClient LLMClient
	params    llm.ChatParams
}

// NewGuidedStudyService creates a new GuidedStudyService.
func NewGuidedStudyService(llmClient LLMClient, params llm.ChatParams) GuidedStudyService {
	return &guidedStudyService{
		llmClient: llmClient,
		params:    params,
	}
}

// Study forwards the request upstream and relays the reply.
func (s *guidedStudyService) Study(ctx context.Context, req GuidedStudyRequest) (GuidedStudyResponse, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if s.llmClient == nil || !s.llmClient.Configured() {
		logger.ErrorContext(ctx, "guided study requested without an upstream API key")
		return GuidedStudyResponse{}, ErrMisconfigured
	}

	resp, err := s.llmClient.Complete(ctx, BuildPrompt(req), s.params)
	if err != nil {
		logger.ErrorContext(ctx, "guided study upstream request failed", "error", err)
		return GuidedStudyResponse{}, WrapError(err, "failed to reach completion API")
	}

	if !resp.OK() {
		upstreamErr := NewUpstreamError(resp.StatusCode, resp.Body)
		logger.WarnContext(ctx, "guided study upstream returned an error", "status", resp.StatusCode, "body", upstreamErr.Body)
		return GuidedStudyResponse{}, upstreamErr
	}

	logger.InfoContext(ctx, "guided study request processed", "history_length", len(req.Messages), "status", resp.StatusCode, "reply_bytes", len(resp.Body))
	return GuidedStudyResponse{
		StatusCode:  resp.StatusCode,
		ContentType: resp.ContentType,
		Body:        resp.Body,
	}, nil
}

// FilterMessages keeps the entries that are user or assistant turns with string content.
// Anything else, including malformed entries, is dropped.
func FilterMessages(raw []json.RawMessage) []ChatTurn {
	turns := make([]ChatTurn, 0, len(raw))
	for _, entry := range raw {
		var msg struct {
			Role    json.RawMessage `json:"role"`
			Content json.RawMessage `json:"content"`
		}
		if err := json.Unmarshal(entry, &msg); err != nil {
			continue
		}
		role, ok := jsonString(msg.Role)
		if !ok || (role != roleUser && role != roleAssistant) {
			continue
		}
		content, ok := jsonString(msg.Content)
		if !ok {
			continue
		}
		turns = append(turns, ChatTurn{Role: role, Content: content})
	}
	return turns
}

// jsonString decodes raw only when it is a JSON string literal; null and other types are rejected.
func jsonString(raw json.RawMessage) (string, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] != '"' {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}

// BuildPrompt assembles the system prompt, the passage context turn and the prior history.
func BuildPrompt(req GuidedStudyRequest) []llm.Message {
	messages := make([]llm.Message, 0, len(req.Messages)+2)
	messages = append(messages,
		llm.Message{Role: roleSystem, Content: SystemPrompt},
		llm.Message{Role: roleUser, Content: contextTurn(req)},
	)
	for _, turn := range req.Messages {
		messages = append(messages, llm.Message{Role: turn.Role, Content: turn.Content})
	}
	return messages
}

func contextTurn(req GuidedStudyRequest) string {
	var b strings.Builder
	b.WriteString("Let's study this passage together.")
	if ref := strings.TrimSpace(req.ScriptureRef); ref != "" {
		b.WriteString("\nReference: ")
		b.WriteString(ref)
	}
	if passage := strings.TrimSpace(req.PassageText); passage != "" {
		b.WriteString("\nPassage:\n")
		b.WriteString(passage)
	}
	locale := strings.TrimSpace(req.Locale)
	if locale == "" {
		locale = DefaultLocale
	}
	b.WriteString("\nLocale: ")
	b.WriteString(locale)
	return b.String()
}
