package ai

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Yegnesh135/Email-Assistant-AI-Powered-Email-Automation/internal/model"
)

// fakeCompleter returns a canned completion or error.
type fakeCompleter struct {
	text string
	err  error

	lastSystem string
	lastUser   string
}

func (f *fakeCompleter) Complete(_ context.Context, system, user string) (string, error) {
	f.lastSystem = system
	f.lastUser = user
	return f.text, f.err
}

func TestSynthesizeFullDraft(t *testing.T) {
	fc := &fakeCompleter{text: `{
		"subject": "Meeting follow-up",
		"body": "Thanks for your time today.",
		"to": ["pat@example.org"],
		"cc": ["lee@example.org"],
		"bcc": [],
		"priority": "high"
	}`}
	s := NewSynthesizer(fc)

	draft, err := s.Synthesize(context.Background(), "thank pat for the meeting, cc lee")
	require.NoError(t, err)

	assert.Equal(t, "Meeting follow-up", draft.Subject)
	assert.Equal(t, "Thanks for your time today.", draft.Body)
	assert.Equal(t, []string{"pat@example.org"}, draft.To)
	assert.Equal(t, []string{"lee@example.org"}, draft.Cc)
	assert.Equal(t, []string{}, draft.Bcc)
	assert.Equal(t, model.PriorityHigh, draft.Priority)

	assert.Contains(t, fc.lastUser, "thank pat for the meeting")
}

func TestSynthesizeRepairsMissingFields(t *testing.T) {
	fc := &fakeCompleter{text: `{"subject": "Hello", "body": "Hi there."}`}
	s := NewSynthesizer(fc)

	draft, err := s.Synthesize(context.Background(), "say hello")
	require.NoError(t, err)

	assert.Equal(t, []string{model.PlaceholderRecipient}, draft.To)
	assert.Equal(t, []string{}, draft.Cc)
	assert.Equal(t, []string{}, draft.Bcc)
	assert.Equal(t, model.PriorityNormal, draft.Priority)
	assert.True(t, draft.HasPlaceholderRecipient())
}

func TestSynthesizeStripsCodeFences(t *testing.T) {
	fc := &fakeCompleter{text: "```json\n{\"subject\": \"S\", \"body\": \"B\", \"to\": [\"a@x.test\"]}\n```"}
	s := NewSynthesizer(fc)

	draft, err := s.Synthesize(context.Background(), "fenced output")
	require.NoError(t, err)
	assert.Equal(t, "S", draft.Subject)
	assert.Equal(t, []string{"a@x.test"}, draft.To)
}

func TestSynthesizeMalformedOutput(t *testing.T) {
	fc := &fakeCompleter{text: "Sorry, I can't help with that."}
	s := NewSynthesizer(fc)

	draft, err := s.Synthesize(context.Background(), "whatever")
	require.Error(t, err)
	assert.Nil(t, draft)

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, MalformedOutput, synthErr.Kind)
	assert.Equal(t, "Sorry, I can't help with that.", synthErr.RawText)
}

func TestSynthesizeServiceUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	fc := &fakeCompleter{err: cause}
	s := NewSynthesizer(fc)

	draft, err := s.Synthesize(context.Background(), "whatever")
	require.Error(t, err)
	assert.Nil(t, draft)

	var synthErr *SynthesisError
	require.ErrorAs(t, err, &synthErr)
	assert.Equal(t, ServiceUnavailable, synthErr.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestStripCodeFences(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a": 1}`, `{"a": 1}`},
		{"json fence", "```json\n{\"a\": 1}\n```", `{"a": 1}`},
		{"bare fence", "```\n{\"a\": 1}\n```", `{"a": 1}`},
		{"surrounding whitespace", "  \n```json\n{}\n```\n  ", "{}"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, stripCodeFences(tc.in))
		})
	}
}
