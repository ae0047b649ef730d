package ai

import "strings"

// Intent is the classification of a user turn while a draft is
// awaiting confirmation.
type Intent string

const (
	// IntentAffirmative approves sending the presented draft.
	IntentAffirmative Intent = "affirmative"

	// IntentNegative declines the presented draft.
	IntentNegative Intent = "negative"

	// IntentEdit supplies corrections or new information; the draft
	// should be re-synthesized with the combined context.
	IntentEdit Intent = "edit"

	// IntentAmbiguous is anything the classifier cannot place. The
	// orchestrator treats it like a decline: a draft is never sent on
	// an unclear response.
	IntentAmbiguous Intent = "ambiguous"
)

var affirmativePhrases = map[string]bool{
	"yes": true, "y": true, "yeah": true, "yep": true, "yup": true,
	"sure": true, "ok": true, "okay": true, "confirm": true,
	"confirmed": true, "send": true, "send it": true, "go ahead": true,
	"do it": true, "looks good": true, "lgtm": true, "please send": true,
	"yes please": true, "send the email": true, "go for it": true,
}

var negativePhrases = map[string]bool{
	"no": true, "n": true, "nope": true, "nah": true, "cancel": true,
	"stop": true, "abort": true, "don't": true, "dont": true,
	"do not send": true, "don't send": true, "discard": true,
	"nevermind": true, "never mind": true, "no thanks": true,
	"forget it": true,
}

var affirmativeLeads = map[string]bool{
	"yes": true, "yeah": true, "yep": true, "yup": true, "sure": true,
	"ok": true, "okay": true, "confirmed": true,
}

var negativeLeads = map[string]bool{
	"no": true, "nope": true, "nah": true, "cancel": true, "stop": true,
	"abort": true, "don't": true, "dont": true, "discard": true,
}

// ClassifyIntent classifies a confirmation-turn utterance without a
// model call. Anything carrying an address or a longer instruction is
// treated as an edit so the orchestrator re-synthesizes with it.
func ClassifyIntent(text string) Intent {
	normalized := normalizeUtterance(text)
	if normalized == "" {
		return IntentAmbiguous
	}

	if affirmativePhrases[normalized] {
		return IntentAffirmative
	}
	if negativePhrases[normalized] {
		return IntentNegative
	}

	words := strings.Fields(normalized)
	if strings.Contains(normalized, "@") || len(words) >= 4 {
		return IntentEdit
	}

	if affirmativeLeads[words[0]] {
		return IntentAffirmative
	}
	if negativeLeads[words[0]] {
		return IntentNegative
	}

	return IntentAmbiguous
}

// normalizeUtterance lowercases the text and strips trailing
// punctuation so "Yes!" and "yes" classify identically.
func normalizeUtterance(text string) string {
	s := strings.ToLower(strings.TrimSpace(text))
	s = strings.Trim(s, ".!?, ")
	return s
}
