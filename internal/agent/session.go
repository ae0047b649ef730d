// Package agent implements the confirmation-gated orchestration loop:
// the turn-by-turn control logic that decides whether to synthesize a
// draft, await confirmation, send, or end the conversation. Its
// central invariant is that the sender is only ever invoked after an
// explicit affirmative response to a presented draft.
package agent

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/ai"
	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// State is the orchestrator's position in the conversational turn
// cycle.
type State int

const (
	// StateIdle awaits a fresh email request.
	StateIdle State = iota

	// StateAwaitingDraftGeneration covers the synthesis call.
	StateAwaitingDraftGeneration

	// StateAwaitingConfirmation holds a presented draft pending the
	// user's verdict.
	StateAwaitingConfirmation

	// StateSending covers the single send attempt.
	StateSending

	// StateDone is terminal; only an explicit exit command or
	// input-stream termination reaches it.
	StateDone
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateAwaitingDraftGeneration:
		return "awaiting_draft_generation"
	case StateAwaitingConfirmation:
		return "awaiting_confirmation"
	case StateSending:
		return "sending"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Synthesizer produces a structured draft from a free-text request.
type Synthesizer interface {
	Synthesize(ctx context.Context, request string) (*model.EmailDraft, error)
}

// Sender validates a draft and attempts delivery exactly once.
type Sender interface {
	Send(ctx context.Context, draft *model.EmailDraft) model.SendOutcome
}

// HistoryRecorder persists send attempts. May be nil on a Session.
type HistoryRecorder interface {
	RecordSend(ctx context.Context, record model.SendRecord) error
}

// Reply is what a turn hands back to the interactive surface.
type Reply struct {
	Text string

	// Draft is set when a draft is being presented for confirmation.
	Draft *model.EmailDraft

	// PlaceholderWarning flags a presented draft that still carries a
	// placeholder recipient and so cannot be approved yet.
	PlaceholderWarning bool

	// Outcome is set after a send attempt.
	Outcome *model.SendOutcome

	// Quit signals that the user ended the session.
	Quit bool
}

var exitCommands = map[string]bool{
	"quit": true,
	"exit": true,
	"bye":  true,
}

// Session is a single-user conversational session. It processes one
// turn fully, including any nested synthesizer or sender call, before
// accepting the next; it is not safe for concurrent turns.
type Session struct {
	synth   Synthesizer
	sender  Sender
	history HistoryRecorder

	transcript   *ai.ConversationContext
	state        State
	pendingDraft *model.EmailDraft
	request      string
}

// NewSession creates a session in the idle state. history may be nil.
func NewSession(synth Synthesizer, sender Sender, history HistoryRecorder) *Session {
	return &Session{
		synth:      synth,
		sender:     sender,
		history:    history,
		transcript: ai.NewConversationContext(),
		state:      StateIdle,
	}
}

// State returns the current orchestrator state.
func (s *Session) State() State {
	return s.state
}

// SetSender replaces the delivery sender for subsequent turns. Used
// after first-run setup, when the sender built at startup still holds
// pre-setup settings.
func (s *Session) SetSender(sender Sender) {
	s.sender = sender
}

// Done reports whether the session has ended.
func (s *Session) Done() bool {
	return s.state == StateDone
}

// PendingDraft returns the draft awaiting confirmation, or nil.
func (s *Session) PendingDraft() *model.EmailDraft {
	return s.pendingDraft
}

// Transcript returns the in-memory session transcript.
func (s *Session) Transcript() *ai.ConversationContext {
	return s.transcript
}

// HandleTurn processes one user turn and returns the reply to present.
// All failures are local to the turn: errors and even panics inside a
// turn reset the session to idle instead of ending it.
func (s *Session) HandleTurn(ctx context.Context, input string) (reply Reply) {
	defer func() {
		if r := recover(); r != nil {
			s.state = StateIdle
			s.pendingDraft = nil
			reply = Reply{Text: fmt.Sprintf("Error: %v", r)}
		}
	}()

	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{Text: "Please tell me what email you would like to send."}
	}

	if exitCommands[strings.ToLower(input)] {
		s.state = StateDone
		s.pendingDraft = nil
		return Reply{Text: "Goodbye!", Quit: true}
	}

	s.transcript.AddMessage(ai.RoleUser, input)

	var rep Reply
	if s.state == StateAwaitingConfirmation {
		rep = s.handleConfirmationTurn(ctx, input)
	} else {
		rep = s.handleRequestTurn(ctx, input)
	}

	s.transcript.AddMessage(ai.RoleAssistant, rep.Text)
	return rep
}

// handleRequestTurn starts a new draft from an idle session.
func (s *Session) handleRequestTurn(ctx context.Context, input string) Reply {
	if len(strings.Fields(input)) < 2 {
		// Too short to act on; stay idle and ask for detail.
		return Reply{Text: "Please be more specific. For example: " +
			"'Send a thank you email to pat@example.org for the meeting'."}
	}

	s.request = input
	return s.generateDraft(ctx)
}

// generateDraft runs the synthesizer for the accumulated request and
// presents the result. Synthesis failure reports and returns to idle.
func (s *Session) generateDraft(ctx context.Context) Reply {
	s.state = StateAwaitingDraftGeneration

	draft, err := s.synth.Synthesize(ctx, s.request)
	if err != nil {
		s.state = StateIdle
		s.pendingDraft = nil
		return Reply{Text: fmt.Sprintf("I couldn't generate that email: %v", err)}
	}

	s.pendingDraft = draft
	s.state = StateAwaitingConfirmation

	rep := Reply{
		Draft:              draft,
		PlaceholderWarning: draft.HasPlaceholderRecipient(),
	}
	if rep.PlaceholderWarning {
		rep.Text = "Here is the draft. It still uses a placeholder recipient; " +
			"please give me the real address before I can send it."
	} else {
		rep.Text = "Here is the draft. Shall I send it?"
	}
	return rep
}

// handleConfirmationTurn classifies the user's verdict on the pending
// draft. Sending happens only on an affirmative, and only when the
// draft carries no placeholder recipient.
func (s *Session) handleConfirmationTurn(ctx context.Context, input string) Reply {
	switch ai.ClassifyIntent(input) {
	case ai.IntentAffirmative:
		if s.pendingDraft.HasPlaceholderRecipient() {
			// Confirmation of a placeholder draft is not actionable.
			return Reply{
				Text: "I still need a real recipient address before sending. " +
					"Who should this go to?",
				Draft:              s.pendingDraft,
				PlaceholderWarning: true,
			}
		}
		return s.sendPending(ctx)

	case ai.IntentEdit:
		s.request = s.request + "\nAdditional instructions: " + input
		return s.generateDraft(ctx)

	default:
		// Negative or ambiguous: a declined draft is discarded and
		// never implicitly resent.
		s.pendingDraft = nil
		s.state = StateIdle
		return Reply{Text: "Okay, I won't send it. The draft has been discarded. " +
			"What would you like to do next?"}
	}
}

// sendPending performs the single send attempt for the confirmed
// draft. This is the only call site of the sender, reachable only via
// an affirmative out of the confirmation state.
func (s *Session) sendPending(ctx context.Context) Reply {
	s.state = StateSending

	draft := s.pendingDraft
	outcome := s.sender.Send(ctx, draft)
	s.recordOutcome(ctx, draft, outcome)

	s.pendingDraft = nil
	s.state = StateIdle

	return Reply{Text: outcome.String(), Outcome: &outcome}
}

// recordOutcome persists the attempt to the history store. Recording
// failures are logged, never surfaced as send failures.
func (s *Session) recordOutcome(ctx context.Context, draft *model.EmailDraft, outcome model.SendOutcome) {
	if s.history == nil {
		return
	}
	if err := s.history.RecordSend(ctx, model.RecordFromOutcome(draft, outcome)); err != nil {
		log.Printf("recording send history: %v", err)
	}
}
