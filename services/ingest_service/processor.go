package ingest_service

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nyayasetu/nyayasetu/services/rag_service"
)

var mimeTypes = map[string]string{
	".pdf":  "application/pdf",
	".doc":  "application/msword",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// IngestRequest is one document to add to the knowledge base.
type IngestRequest struct {
	Title   string
	Section string
	Source  string
	Text    string
}

// IngestResult reports what the processor stored.
type IngestResult struct {
	ChunkIDs       []string `json:"chunk_ids"`
	ChunkCount     int      `json:"chunk_count"`
	WordCount      int      `json:"word_count"`
	ContentPreview string   `json:"content_preview"`
	ExtractionSecs float64  `json:"extraction_seconds"`
	EmbeddingSecs  float64  `json:"embedding_seconds"`
}

// Processor turns raw documents into embedded chunks in the chunks table.
type Processor struct {
	db        *pgxpool.Pool
	embedder  rag_service.Embedder
	logger    *slog.Logger
	extractor *DocumentExtractor
}

func NewProcessor(db *pgxpool.Pool, embedder rag_service.Embedder, logger *slog.Logger) *Processor {
	return &Processor{
		db:        db,
		embedder:  embedder,
		logger:    logger,
		extractor: NewDocumentExtractor(logger),
	}
}

// ProcessFile extracts text from an uploaded PDF or Word file and ingests it.
func (p *Processor) ProcessFile(ctx context.Context, filename, title, section string, content []byte) (*IngestResult, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	extractStart := time.Now()
	var text string
	var err error

	switch ext {
	case ".pdf":
		text, err = p.extractor.ExtractTextFromPDF(content)
	case ".doc", ".docx":
		text, err = p.extractor.ExtractTextFromWord(content, mimeTypes[ext])
	default:
		return nil, fmt.Errorf("unsupported file type: %s", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("text extraction failed: %w", err)
	}
	extractionSecs := time.Since(extractStart).Seconds()

	if title == "" {
		title = strings.TrimSuffix(filename, filepath.Ext(filename))
	}

	result, err := p.Ingest(ctx, IngestRequest{
		Title:   title,
		Section: section,
		Source:  filename,
		Text:    text,
	})
	if err != nil {
		return nil, err
	}
	result.ExtractionSecs = extractionSecs
	return result, nil
}

// ProcessURL fetches a web page and ingests its readable text.
func (p *Processor) ProcessURL(ctx context.Context, url, title, section string) (*IngestResult, error) {
	extractStart := time.Now()
	page, err := FetchWebPage(ctx, nil, url)
	if err != nil {
		return nil, fmt.Errorf("page extraction failed: %w", err)
	}
	extractionSecs := time.Since(extractStart).Seconds()

	if title == "" {
		title = page.Title
	}

	result, err := p.Ingest(ctx, IngestRequest{
		Title:   title,
		Section: section,
		Source:  url,
		Text:    page.Text,
	})
	if err != nil {
		return nil, err
	}
	result.ExtractionSecs = extractionSecs
	return result, nil
}

// Ingest chunks the text, embeds each chunk and stores it.
func (p *Processor) Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error) {
	chunks := SplitIntoChunks(req.Text)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("document contains no text to index")
	}

	result := &IngestResult{
		ChunkIDs:  make([]string, 0, len(chunks)),
		WordCount: len(strings.Fields(req.Text)),
	}
	if len(req.Text) > 250 {
		result.ContentPreview = req.Text[:250] + "..."
	} else {
		result.ContentPreview = req.Text
	}

	embedStart := time.Now()
	query := `INSERT INTO chunks (id, title, section, source, content, embedding) VALUES ($1, $2, $3, $4, $5, $6)`

	for i, chunk := range chunks {
		embedding, err := p.embedder.Embed(ctx, chunk)
		if err != nil {
			return nil, fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}

		id := uuid.New().String()
		if _, err := p.db.Exec(ctx, query, id, req.Title, req.Section, req.Source, chunk, embedding); err != nil {
			return nil, fmt.Errorf("failed to store chunk %d: %w", i, err)
		}
		result.ChunkIDs = append(result.ChunkIDs, id)
	}
	result.EmbeddingSecs = time.Since(embedStart).Seconds()
	result.ChunkCount = len(result.ChunkIDs)

	p.logger.Info("Document ingested",
		slog.String("title", req.Title),
		slog.String("source", req.Source),
		slog.Int("chunks", result.ChunkCount),
		slog.Int("words", result.WordCount))

	return result, nil
}
