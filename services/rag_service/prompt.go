package rag_service

import (
	"fmt"
	"strings"
)

// SystemPersona is the fixed instruction block every prompt opens with.
const SystemPersona = `You are a legal assistance chatbot for Indian law. You explain statutes, procedures and rights in plain language. You are not a substitute for a qualified advocate and you say so when a question calls for individual legal advice.`

// ComposePrompt merges the persona, grounding context, prior turns and the
// current query into a single generation prompt.
func ComposePrompt(persona, assembledContext string, history []ConversationTurn, query string) string {
	var b strings.Builder

	b.WriteString(persona)
	b.WriteString("\n\nContext from the legal knowledge base:\n")
	b.WriteString(assembledContext)

	if transcript := renderHistory(history); transcript != "" {
		b.WriteString("\n\nConversation so far:\n")
		b.WriteString(transcript)
	}

	b.WriteString("\n\nUser question: ")
	b.WriteString(query)
	b.WriteString("\n\nAnswer the question using the context above. If the context does not contain enough information, say so and give a careful general answer, recommending consultation with a qualified advocate.")

	return b.String()
}

func renderHistory(history []ConversationTurn) string {
	if len(history) == 0 {
		return ""
	}
	lines := make([]string, 0, len(history))
	for _, turn := range history {
		lines = append(lines, fmt.Sprintf("%s: %s", turn.Role.Label(), turn.Content))
	}
	return strings.Join(lines, "\n")
}
