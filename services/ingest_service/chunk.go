package ingest_service

import "strings"

const (
	chunkWords   = 300
	overlapWords = 50
)

// SplitIntoChunks cuts text into word windows of chunkWords with
// overlapWords of shared context between neighbours. Empty input yields no
// chunks.
func SplitIntoChunks(text string) []string {
	words := strings.Fields(text)
	if len(words) == 0 {
		return nil
	}
	if len(words) <= chunkWords {
		return []string{strings.Join(words, " ")}
	}

	stride := chunkWords - overlapWords
	var chunks []string
	for start := 0; start < len(words); start += stride {
		end := start + chunkWords
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, strings.Join(words[start:end], " "))
		if end == len(words) {
			break
		}
	}
	return chunks
}
