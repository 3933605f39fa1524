package rag_service

import "fmt"

// Documents must score strictly above this to be cited as a source.
const sourceScoreFloor = 0.7

// Confidence is the arithmetic mean of the retrieved documents' scores, 0
// when nothing was retrieved.
func Confidence(documents []RetrievedDocument) float64 {
	if len(documents) == 0 {
		return 0
	}
	var sum float64
	for _, doc := range documents {
		sum += doc.Score
	}
	return sum / float64(len(documents))
}

// Sources renders a citation string for every document scoring above the
// floor. The slice is never nil so it serializes as [] rather than null.
func Sources(documents []RetrievedDocument) []string {
	sources := make([]string, 0, len(documents))
	for _, doc := range documents {
		if doc.Score <= sourceScoreFloor {
			continue
		}
		title := metadataValue(doc.Metadata, "title", "Legal Document")
		section := metadataValue(doc.Metadata, "section", "Section")
		sources = append(sources, fmt.Sprintf("%s - %s", title, section))
	}
	return sources
}
