package rag_service

import (
	"fmt"
	"sort"
	"strings"
)

const (
	DefaultContextMaxChars = 4000

	contextHeader     = "Relevant legal documents:\n\n"
	noContextSentinel = "No relevant legal documents were found in the knowledge base."
	truncationNotice  = "\n[Further documents omitted to fit the context limit.]"
)

// AssembleContext concatenates retrieved documents, best match first, into a
// single grounding block. The budget is a hard ceiling: a block that would
// push the total past maxChars is replaced by the truncation notice and the
// remaining documents are dropped.
func AssembleContext(documents []RetrievedDocument, maxChars int) string {
	if len(documents) == 0 {
		return noContextSentinel
	}
	if maxChars < 1 {
		maxChars = DefaultContextMaxChars
	}

	sorted := make([]RetrievedDocument, len(documents))
	copy(sorted, documents)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var b strings.Builder
	b.WriteString(contextHeader)

	for _, doc := range sorted {
		block := formatDocumentBlock(doc)
		if b.Len()+len(block) > maxChars {
			b.WriteString(truncationNotice)
			break
		}
		b.WriteString(block)
	}

	return b.String()
}

func formatDocumentBlock(doc RetrievedDocument) string {
	title := metadataValue(doc.Metadata, "title", "Legal Document")
	section := metadataValue(doc.Metadata, "section", "General")

	return fmt.Sprintf("Document: %s\nSection: %s\nRelevance: %.1f%%\n%s\n---\n",
		title, section, doc.Score*100, doc.Text)
}

func metadataValue(metadata map[string]string, key, fallback string) string {
	if v, ok := metadata[key]; ok && v != "" {
		return v
	}
	return fallback
}
