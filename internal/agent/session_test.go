package agent

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// stubSynth returns a canned draft, or an error. It records every
// request it sees so tests can assert on edit accumulation.
type stubSynth struct {
	draft    *model.EmailDraft
	err      error
	requests []string
}

func (s *stubSynth) Synthesize(_ context.Context, request string) (*model.EmailDraft, error) {
	s.requests = append(s.requests, request)
	if s.err != nil {
		return nil, s.err
	}
	// Copy so a later turn cannot mutate the canned draft.
	d := *s.draft
	return &d, nil
}

// stubSender counts send attempts and returns a canned outcome.
type stubSender struct {
	outcome model.SendOutcome
	calls   int
	last    *model.EmailDraft
}

func (s *stubSender) Send(_ context.Context, draft *model.EmailDraft) model.SendOutcome {
	s.calls++
	s.last = draft
	return s.outcome
}

// stubHistory collects recorded sends.
type stubHistory struct {
	records []model.SendRecord
	err     error
}

func (s *stubHistory) RecordSend(_ context.Context, record model.SendRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func draftTo(addrs ...string) *model.EmailDraft {
	d := &model.EmailDraft{
		Subject: "Thank you",
		Body:    "Thanks for the productive meeting.",
		To:      addrs,
	}
	d.Normalize()
	return d
}

func newTestSession(synth *stubSynth, sender *stubSender, history *stubHistory) *Session {
	if synth == nil {
		synth = &stubSynth{draft: draftTo("pat@example.org")}
	}
	if sender == nil {
		sender = &stubSender{outcome: model.SendSuccess([]string{"pat@example.org"})}
	}
	var h HistoryRecorder
	if history != nil {
		h = history
	}
	return NewSession(synth, sender, h)
}

func TestEmptyInputPromptsAndStaysIdle(t *testing.T) {
	s := newTestSession(nil, nil, nil)

	reply := s.HandleTurn(context.Background(), "   ")

	assert.Contains(t, reply.Text, "what email")
	assert.Equal(t, StateIdle, s.State())
}

func TestExitCommandsEndSession(t *testing.T) {
	for _, cmd := range []string{"quit", "exit", "bye", "QUIT", "Bye"} {
		t.Run(cmd, func(t *testing.T) {
			s := newTestSession(nil, nil, nil)

			reply := s.HandleTurn(context.Background(), cmd)

			assert.True(t, reply.Quit)
			assert.Equal(t, StateDone, s.State())
			assert.True(t, s.Done())
		})
	}
}

func TestShortRequestAsksForDetail(t *testing.T) {
	synth := &stubSynth{draft: draftTo("pat@example.org")}
	s := newTestSession(synth, nil, nil)

	reply := s.HandleTurn(context.Background(), "email")

	assert.Contains(t, reply.Text, "more specific")
	assert.Equal(t, StateIdle, s.State())
	assert.Empty(t, synth.requests, "synthesizer must not run on an unusable request")
}

func TestRequestPresentsDraftForConfirmation(t *testing.T) {
	s := newTestSession(nil, nil, nil)

	reply := s.HandleTurn(context.Background(),
		"send a thank you email to pat@example.org for the meeting")

	require.NotNil(t, reply.Draft)
	assert.False(t, reply.PlaceholderWarning)
	assert.Equal(t, StateAwaitingConfirmation, s.State())
	assert.Equal(t, reply.Draft, s.PendingDraft())
}

func TestAffirmativeSendsExactlyOnce(t *testing.T) {
	sender := &stubSender{outcome: model.SendSuccess([]string{"pat@example.org"})}
	history := &stubHistory{}
	s := newTestSession(nil, sender, history)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "yes")

	assert.Equal(t, 1, sender.calls)
	require.NotNil(t, reply.Outcome)
	assert.True(t, reply.Outcome.Delivered)
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.PendingDraft())

	require.Len(t, history.records, 1)
	assert.True(t, history.records[0].Delivered)
	assert.Equal(t, "Thank you", history.records[0].Subject)
}

func TestNegativeDiscardsDraft(t *testing.T) {
	sender := &stubSender{outcome: model.SendSuccess(nil)}
	s := newTestSession(nil, sender, nil)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "no")

	assert.Equal(t, 0, sender.calls, "a declined draft must never be sent")
	assert.Contains(t, reply.Text, "discarded")
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.PendingDraft())

	// A later affirmative cannot resurrect the discarded draft.
	reply = s.HandleTurn(context.Background(), "yes")
	assert.Equal(t, 0, sender.calls)
	assert.Contains(t, reply.Text, "more specific")
}

func TestAmbiguousResponseDiscardsDraft(t *testing.T) {
	sender := &stubSender{}
	s := newTestSession(nil, sender, nil)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	s.HandleTurn(context.Background(), "hmm")

	assert.Equal(t, 0, sender.calls)
	assert.Equal(t, StateIdle, s.State())
}

func TestEditResynthesizesWithCombinedContext(t *testing.T) {
	synth := &stubSynth{draft: draftTo("pat@example.org")}
	sender := &stubSender{}
	s := newTestSession(synth, sender, nil)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "also cc lee@example.org on this")

	assert.Equal(t, 0, sender.calls)
	require.NotNil(t, reply.Draft)
	assert.Equal(t, StateAwaitingConfirmation, s.State())

	require.Len(t, synth.requests, 2)
	assert.Contains(t, synth.requests[1], "thank pat@example.org for the meeting")
	assert.Contains(t, synth.requests[1], "also cc lee@example.org on this")
}

func TestPlaceholderDraftIsNeverSentOnAffirmative(t *testing.T) {
	synth := &stubSynth{draft: draftTo(model.PlaceholderRecipient)}
	sender := &stubSender{}
	s := newTestSession(synth, sender, nil)

	reply := s.HandleTurn(context.Background(), "send a reminder about the deadline")
	assert.True(t, reply.PlaceholderWarning)

	reply = s.HandleTurn(context.Background(), "yes")

	assert.Equal(t, 0, sender.calls)
	assert.True(t, reply.PlaceholderWarning)
	assert.Contains(t, reply.Text, "real recipient")
	// The draft survives; the user can still fix the address.
	assert.Equal(t, StateAwaitingConfirmation, s.State())
	assert.NotNil(t, s.PendingDraft())
}

func TestPlaceholderResolvedByEditThenSent(t *testing.T) {
	synth := &stubSynth{draft: draftTo(model.PlaceholderRecipient)}
	sender := &stubSender{outcome: model.SendSuccess([]string{"pat@example.org"})}
	s := newTestSession(synth, sender, nil)

	s.HandleTurn(context.Background(), "send a reminder about the deadline")

	// The edit supplies the real address; the stub now returns it.
	synth.draft = draftTo("pat@example.org")
	reply := s.HandleTurn(context.Background(), "send it to pat@example.org")

	require.NotNil(t, reply.Draft)
	assert.False(t, reply.PlaceholderWarning)

	reply = s.HandleTurn(context.Background(), "yes")
	assert.Equal(t, 1, sender.calls)
	assert.True(t, reply.Outcome.Delivered)
}

func TestSetSenderReplacesDelivery(t *testing.T) {
	old := &stubSender{}
	s := newTestSession(nil, old, nil)

	replacement := &stubSender{outcome: model.SendSuccess([]string{"pat@example.org"})}
	s.SetSender(replacement)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "yes")

	assert.Equal(t, 0, old.calls)
	assert.Equal(t, 1, replacement.calls)
	require.NotNil(t, reply.Outcome)
	assert.True(t, reply.Outcome.Delivered)
}

func TestSynthesisFailureReturnsToIdle(t *testing.T) {
	synth := &stubSynth{err: assertableError("model offline")}
	sender := &stubSender{}
	s := newTestSession(synth, sender, nil)

	reply := s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")

	assert.Contains(t, reply.Text, "couldn't generate")
	assert.Equal(t, StateIdle, s.State())
	assert.Nil(t, s.PendingDraft())
	assert.Equal(t, 0, sender.calls)
}

func TestFailedSendReturnsToIdleAndIsRecorded(t *testing.T) {
	sender := &stubSender{
		outcome: model.SendFailure(model.FailureAuthentication, "535 bad credentials"),
	}
	history := &stubHistory{}
	s := newTestSession(nil, sender, history)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "yes")

	require.NotNil(t, reply.Outcome)
	assert.False(t, reply.Outcome.Delivered)
	assert.Contains(t, reply.Text, "authentication")
	assert.Equal(t, StateIdle, s.State())

	require.Len(t, history.records, 1)
	assert.False(t, history.records[0].Delivered)
	assert.Equal(t, model.FailureAuthentication, history.records[0].Failure)
}

func TestHistoryFailureDoesNotAffectReply(t *testing.T) {
	history := &stubHistory{err: assertableError("disk full")}
	s := newTestSession(nil, nil, history)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	reply := s.HandleTurn(context.Background(), "yes")

	require.NotNil(t, reply.Outcome)
	assert.True(t, reply.Outcome.Delivered)
}

func TestTurnPanicResetsToIdle(t *testing.T) {
	s := newTestSession(&stubSynth{draft: nil}, nil, nil)

	// A nil canned draft makes the stub dereference nil.
	reply := s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")

	assert.True(t, strings.HasPrefix(reply.Text, "Error:"))
	assert.Equal(t, StateIdle, s.State())

	// The session still works afterwards.
	reply = s.HandleTurn(context.Background(), "quit")
	assert.True(t, reply.Quit)
}

func TestTranscriptGrowsPerTurn(t *testing.T) {
	s := newTestSession(nil, nil, nil)

	s.HandleTurn(context.Background(), "thank pat@example.org for the meeting")
	s.HandleTurn(context.Background(), "no")

	// Two user turns plus two assistant replies.
	assert.Equal(t, 4, s.Transcript().Len())
}

func TestStateStrings(t *testing.T) {
	assert.Equal(t, "idle", StateIdle.String())
	assert.Equal(t, "awaiting_confirmation", StateAwaitingConfirmation.String())
	assert.Equal(t, "sending", StateSending.String())
	assert.Equal(t, "done", StateDone.String())
}

// assertableError is a trivial error type for stubbing failures.
type assertableError string

func (e assertableError) Error() string { return string(e) }
