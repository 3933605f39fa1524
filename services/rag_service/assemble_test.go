package rag_service

import (
	"strings"
	"testing"
)

func doc(title, section, text string, score float64) RetrievedDocument {
	return RetrievedDocument{
		ID:    title + "-" + section,
		Score: score,
		Text:  text,
		Metadata: map[string]string{
			"title":   title,
			"section": section,
		},
	}
}

func TestAssembleContext_EmptyListReturnsSentinel(t *testing.T) {
	got := AssembleContext(nil, DefaultContextMaxChars)
	if got != noContextSentinel {
		t.Errorf("expected sentinel, got %q", got)
	}
}

func TestAssembleContext_SortsByScoreDescending(t *testing.T) {
	docs := []RetrievedDocument{
		doc("CrPC", "154", "FIR registration.", 0.72),
		doc("IPC", "302", "Punishment for murder.", 0.91),
		doc("IPC", "304", "Culpable homicide.", 0.80),
	}

	got := AssembleContext(docs, DefaultContextMaxChars)

	first := strings.Index(got, "Section: 302")
	second := strings.Index(got, "Section: 304")
	third := strings.Index(got, "Section: 154")
	if first == -1 || second == -1 || third == -1 {
		t.Fatalf("expected all three documents in output, got:\n%s", got)
	}
	if !(first < second && second < third) {
		t.Errorf("documents not ordered by score descending: %d %d %d", first, second, third)
	}
}

func TestAssembleContext_StableForEqualScores(t *testing.T) {
	docs := []RetrievedDocument{
		doc("IPC", "first", "a", 0.8),
		doc("IPC", "second", "b", 0.8),
	}

	got := AssembleContext(docs, DefaultContextMaxChars)
	if strings.Index(got, "Section: first") > strings.Index(got, "Section: second") {
		t.Errorf("tie broke original order:\n%s", got)
	}
}

func TestAssembleContext_TruncatesAtBudget(t *testing.T) {
	// Five documents where only the first three fit the budget.
	text := strings.Repeat("x", 200)
	docs := []RetrievedDocument{
		doc("IPC", "1", text, 0.95),
		doc("IPC", "2", text, 0.90),
		doc("IPC", "3", text, 0.85),
		doc("IPC", "4", text, 0.80),
		doc("IPC", "5", text, 0.75),
	}

	blockLen := len(formatDocumentBlock(docs[0]))
	maxChars := len(contextHeader) + 3*blockLen + blockLen/2

	got := AssembleContext(docs, maxChars)

	if n := strings.Count(got, "Document: "); n != 3 {
		t.Errorf("expected exactly 3 document blocks, got %d", n)
	}
	if !strings.HasSuffix(got, truncationNotice) {
		t.Errorf("expected truncation notice at end of output")
	}
	if len(got) > maxChars+len(truncationNotice) {
		t.Errorf("output length %d exceeds budget %d plus notice", len(got), maxChars)
	}
}

func TestAssembleContext_FirstBlockOverBudget(t *testing.T) {
	docs := []RetrievedDocument{
		doc("IPC", "302", strings.Repeat("x", 500), 0.9),
	}

	got := AssembleContext(docs, 100)

	if strings.Contains(got, "Document: ") {
		t.Errorf("expected zero document blocks, got:\n%s", got)
	}
	if got != contextHeader+truncationNotice {
		t.Errorf("expected header plus truncation notice, got %q", got)
	}
}

func TestAssembleContext_BudgetNeverExceeded(t *testing.T) {
	text := strings.Repeat("y", 137)
	var docs []RetrievedDocument
	for i := 0; i < 20; i++ {
		docs = append(docs, doc("IPC", "sec", text, 0.9))
	}

	for _, maxChars := range []int{50, 200, 1000, 4000} {
		got := AssembleContext(docs, maxChars)
		if len(got) > maxChars+len(truncationNotice) {
			t.Errorf("maxChars=%d: output length %d exceeds hard ceiling", maxChars, len(got))
		}
	}
}

func TestAssembleContext_MetadataFallbacks(t *testing.T) {
	docs := []RetrievedDocument{
		{ID: "1", Score: 0.9, Text: "passage", Metadata: map[string]string{}},
	}

	got := AssembleContext(docs, DefaultContextMaxChars)
	if !strings.Contains(got, "Document: Legal Document") {
		t.Errorf("expected title fallback, got:\n%s", got)
	}
	if !strings.Contains(got, "Section: General") {
		t.Errorf("expected section fallback, got:\n%s", got)
	}
}

func TestAssembleContext_RelevancePercentage(t *testing.T) {
	docs := []RetrievedDocument{doc("IPC", "302", "text", 0.857)}
	got := AssembleContext(docs, DefaultContextMaxChars)
	if !strings.Contains(got, "Relevance: 85.7%") {
		t.Errorf("expected one-decimal relevance percentage, got:\n%s", got)
	}
}
