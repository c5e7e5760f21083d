// Package reply extracts (author, body) pairs from raw completion text.
// Parsing is atomic: either the whole payload decodes or nothing does.
package reply

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Message is one parsed reply element. Unknown fields in the source JSON are
// ignored; unknown author names are passed through unvalidated, matching the
// addressing-override policy.
type Message struct {
	Author string `json:"author"`
	Body   string `json:"body"`
}

// Reply is the ordered sequence of parsed messages.
type Reply []Message

// MalformedReplyError reports model output that cannot be coerced into the
// expected array-of-objects shape.
type MalformedReplyError struct {
	Reason string
	Err    error
}

func (e *MalformedReplyError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("malformed reply: %s: %v", e.Reason, e.Err)
	}
	return "malformed reply: " + e.Reason
}

func (e *MalformedReplyError) Unwrap() error { return e.Err }

// Parse strips Markdown code fences, trims whitespace, and decodes the
// remaining text as a JSON array of {author, body} objects.
func Parse(raw string) (Reply, error) {
	clean := stripFences(raw)
	if clean == "" {
		return nil, &MalformedReplyError{Reason: "empty payload"}
	}

	// json.Unmarshal accepts the literal "null" into a slice, so the array
	// shape has to be checked up front.
	if clean[0] != '[' {
		return nil, &MalformedReplyError{Reason: "payload is not a JSON array"}
	}

	var rpl Reply
	if err := json.Unmarshal([]byte(clean), &rpl); err != nil {
		return nil, &MalformedReplyError{Reason: "decode JSON array", Err: err}
	}

	for i, m := range rpl {
		if m.Author == "" {
			return nil, &MalformedReplyError{Reason: fmt.Sprintf("element %d missing author", i)}
		}
		if m.Body == "" {
			return nil, &MalformedReplyError{Reason: fmt.Sprintf("element %d missing body", i)}
		}
	}

	return rpl, nil
}

// stripFences removes opening and closing code-fence tokens, with or without
// a language tag, from the raw text.
func stripFences(s string) string {
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}
