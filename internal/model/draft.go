package model

import "strings"

// Priority is the delivery priority requested for a draft.
type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
)

// ParsePriority normalizes a free-form priority string to one of the
// known values. Anything unrecognized maps to PriorityNormal.
func ParsePriority(s string) Priority {
	switch Priority(strings.ToLower(strings.TrimSpace(s))) {
	case PriorityLow:
		return PriorityLow
	case PriorityHigh:
		return PriorityHigh
	default:
		return PriorityNormal
	}
}

// PlaceholderRecipient is substituted when synthesis produces no
// recipients at all. It signals that the user still has to supply a
// real address before the draft can be sent.
const PlaceholderRecipient = "recipient@example.com"

// placeholderDomain marks addresses the model invented rather than
// extracted from the request. example.org is deliberately not included:
// users do address real test mailboxes there.
const placeholderDomain = "@example.com"

// EmailDraft is the structured result of synthesizing a user request.
// After Normalize every field is present; a draft is never
// partially shaped.
type EmailDraft struct {
	Subject  string   `json:"subject"`
	Body     string   `json:"body"`
	To       []string `json:"to"`
	Cc       []string `json:"cc"`
	Bcc      []string `json:"bcc"`
	Priority Priority `json:"priority"`
}

// Normalize fills any missing field with its policy default: empty
// slices for recipient lists, PriorityNormal for the priority, and the
// placeholder recipient when To ends up empty. Text fields stay as
// they are; an empty subject or body is caught by send validation,
// not here.
func (d *EmailDraft) Normalize() {
	if d.To == nil {
		d.To = []string{}
	}
	if d.Cc == nil {
		d.Cc = []string{}
	}
	if d.Bcc == nil {
		d.Bcc = []string{}
	}
	d.Priority = ParsePriority(string(d.Priority))

	if len(d.To) == 0 {
		d.To = []string{PlaceholderRecipient}
	}
}

// HasPlaceholderRecipient reports whether any recipient of the draft is
// a placeholder address. Such a draft must not be sent until the user
// supplies a real address.
func (d *EmailDraft) HasPlaceholderRecipient() bool {
	for _, lists := range [][]string{d.To, d.Cc, d.Bcc} {
		for _, addr := range lists {
			if strings.HasSuffix(strings.ToLower(strings.TrimSpace(addr)), placeholderDomain) {
				return true
			}
		}
	}
	return false
}

// AllRecipients returns the envelope recipient set: To, then Cc, then
// Bcc, order-preserving. Duplicates are kept; deduplication is the
// transport's business, not ours.
func (d *EmailDraft) AllRecipients() []string {
	all := make([]string, 0, len(d.To)+len(d.Cc)+len(d.Bcc))
	all = append(all, d.To...)
	all = append(all, d.Cc...)
	all = append(all, d.Bcc...)
	return all
}
