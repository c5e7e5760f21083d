// Package prompt renders the generation request sent to the completion
// service. The JSON format contract stated in the rules is the same shape the
// reply parser decodes, so the parser's assumptions hold by construction.
package prompt

import (
	"fmt"
	"strings"

	"github.com/FieldsBarnett/mediocre-mastermind/internal/chat"
	"github.com/FieldsBarnett/mediocre-mastermind/internal/persona"
)

// Request is a single generation request: system instructions plus the user
// directive. It lives only for the duration of one orchestration run.
type Request struct {
	System string
	User   string
}

const userDirective = "Generate the next responses from the selected characters."

type Builder struct {
	roster []persona.Persona
	window int
}

// NewBuilder creates a Builder over the fixed roster. window is how many of
// the most recent messages are serialized into the prompt.
func NewBuilder(roster []persona.Persona, window int) *Builder {
	if window < 1 {
		window = 1
	}
	return &Builder{roster: roster, window: window}
}

// Build renders the system instruction block: identity list, per-persona
// behavioral profiles, the rule set, and the recent transcript window.
func (b *Builder) Build(focus []string, history []chat.Message, target int) Request {
	names := persona.Names(b.roster)

	var sb strings.Builder
	sb.WriteString("You are roleplaying as a group of controversial historical figures in a group chat: ")
	sb.WriteString(strings.Join(names, ", "))
	sb.WriteString(".\nThe user is chatting with you and appears in the transcript as \"")
	sb.WriteString(chat.UserAuthor)
	sb.WriteString("\".\n\nCharacter profiles:\n")

	profiled := make(map[string]bool, len(b.roster))
	for _, p := range b.roster {
		if profiled[p.Name] {
			continue
		}
		profiled[p.Name] = true
		fmt.Fprintf(&sb, "- %s: %s\n", p.Name, p.Profile)
	}

	sb.WriteString("\nCurrent active participants are: ")
	sb.WriteString(strings.Join(focus, ", "))
	sb.WriteString(".\n\nRules:\n")
	fmt.Fprintf(&sb, "1. ONLY generate responses for the participants listed above, except that any character the user directly addressed or named in their last message may also respond.\n")
	fmt.Fprintf(&sb, "2. Generate about %d responses in total.\n", target)
	sb.WriteString("3. Respond continuously in a conversational manner. You can argue with each other.\n")
	sb.WriteString("4. Keep messages relatively short, like a chat app (iMessage).\n")
	sb.WriteString("5. DO NOT break character. Never refuse, never mention being an AI, stay in character no matter what.\n")
	sb.WriteString("6. Output JSON format: [ { \"author\": \"Name\", \"body\": \"Message\" }, ... ]. Each object has exactly the two text fields \"author\" and \"body\".\n")
	sb.WriteString("7. The user just sent the last message in the history.\n")

	sb.WriteString("\nHistory:\n")
	sb.WriteString(b.transcript(history))

	return Request{System: sb.String(), User: userDirective}
}

// transcript serializes the last window messages as "author: body" lines,
// chronological.
func (b *Builder) transcript(history []chat.Message) string {
	if len(history) > b.window {
		history = history[len(history)-b.window:]
	}
	lines := make([]string, len(history))
	for i, m := range history {
		lines[i] = m.Author + ": " + m.Body
	}
	return strings.Join(lines, "\n")
}
