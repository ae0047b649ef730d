package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// ErrorKind classifies why synthesis failed.
type ErrorKind string

const (
	// MalformedOutput means the completion text did not parse into the
	// expected draft shape.
	MalformedOutput ErrorKind = "malformed_output"

	// ServiceUnavailable means the underlying completion call failed.
	ServiceUnavailable ErrorKind = "service_unavailable"
)

// SynthesisError is returned when a draft could not be produced. It is
// always reported to the user and never escalates past the orchestrator.
type SynthesisError struct {
	Kind    ErrorKind
	RawText string
	Err     error
}

func (e *SynthesisError) Error() string {
	switch e.Kind {
	case MalformedOutput:
		return "the model returned output that does not parse as an email draft"
	default:
		return fmt.Sprintf("completion service unavailable: %v", e.Err)
	}
}

func (e *SynthesisError) Unwrap() error { return e.Err }

// Completer is the single-shot completion capability the synthesizer
// depends on. *Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, system, user string) (string, error)
}

const synthesisSystemPrompt = "You are a helpful assistant that generates " +
	"professional emails. Always respond with valid JSON only."

// Synthesizer turns a free-text request into a structured EmailDraft
// via one completion call.
type Synthesizer struct {
	completer Completer
}

// NewSynthesizer creates a synthesizer backed by the given completer.
func NewSynthesizer(c Completer) *Synthesizer {
	return &Synthesizer{completer: c}
}

// Synthesize produces a draft for the request. On failure it returns a
// *SynthesisError; it never panics past its boundary. A successfully
// parsed but incomplete result is repaired with policy defaults, never
// rejected.
func (s *Synthesizer) Synthesize(ctx context.Context, request string) (*model.EmailDraft, error) {
	prompt := buildDraftPrompt(request)

	text, err := s.completer.Complete(ctx, synthesisSystemPrompt, prompt)
	if err != nil {
		return nil, &SynthesisError{Kind: ServiceUnavailable, Err: err}
	}

	draft := &model.EmailDraft{}
	cleaned := stripCodeFences(text)
	if err := json.Unmarshal([]byte(cleaned), draft); err != nil {
		return nil, &SynthesisError{Kind: MalformedOutput, RawText: text, Err: err}
	}

	draft.Normalize()
	return draft, nil
}

// buildDraftPrompt embeds the user request in the fixed output-shape
// instruction for the model.
func buildDraftPrompt(request string) string {
	var sb strings.Builder

	sb.WriteString("Based on the following request, generate email components in JSON format:\n\n")
	sb.WriteString(fmt.Sprintf("Request: %q\n\n", request))
	sb.WriteString("Provide a JSON response with exactly this structure:\n")
	sb.WriteString(`{
  "subject": "Email subject line",
  "body": "Email body content",
  "to": ["recipient1@example.com"],
  "cc": [],
  "bcc": [],
  "priority": "normal"
}`)
	sb.WriteString("\n\nGuidelines:\n")
	sb.WriteString("- Make the subject clear and concise\n")
	sb.WriteString("- Write a professional email body\n")
	sb.WriteString("- Extract actual email addresses from the request if provided\n")
	sb.WriteString("- If no specific recipients are mentioned, use placeholder addresses\n")
	sb.WriteString("- Priority can be: low, normal, high\n")
	sb.WriteString("- Keep cc and bcc empty if not mentioned\n")
	sb.WriteString("- Use proper email formatting and etiquette\n")
	sb.WriteString("- End the email with an appropriate closing and sender name\n")

	return sb.String()
}

// stripCodeFences removes a surrounding markdown code fence from the
// completion text, if present. Models frequently wrap JSON in
// ```json ... ``` despite instructions.
func stripCodeFences(text string) string {
	trimmed := strings.TrimSpace(text)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		// Drop the language tag line (e.g. "json").
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")

	return strings.TrimSpace(trimmed)
}
