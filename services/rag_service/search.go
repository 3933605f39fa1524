package rag_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// Searcher finds the stored chunks nearest to a query embedding. Results
// carry no ordering guarantee; the context assembler sorts them.
type Searcher interface {
	Search(ctx context.Context, embedding pgvector.Vector, topK int, minScore float64) ([]RetrievedDocument, error)
}

// ErrSearchConfig marks a search failure caused by a misconfigured knowledge
// base (missing table, missing extension, bad credentials) rather than an
// empty result. The pipeline still degrades to an empty document list, but
// these are alerting events for operators.
var ErrSearchConfig = errors.New("search configuration error")

const (
	DefaultTopK     = 5
	DefaultMinScore = 0.7
)

// PgvectorSearcher runs cosine similarity queries against the chunks table.
type PgvectorSearcher struct {
	db     *pgxpool.Pool
	logger *slog.Logger
}

func NewPgvectorSearcher(db *pgxpool.Pool, logger *slog.Logger) *PgvectorSearcher {
	return &PgvectorSearcher{
		db:     db,
		logger: logger,
	}
}

func (s *PgvectorSearcher) Search(ctx context.Context, embedding pgvector.Vector, topK int, minScore float64) ([]RetrievedDocument, error) {
	if topK < 1 {
		topK = DefaultTopK
	}

	// Embeddings themselves are never read back, only the similarity score.
	query := `
        SELECT id, title, section, content, 1 - (embedding <=> $1) AS score
        FROM chunks
        ORDER BY embedding <=> $1
        LIMIT $2`

	rows, err := s.db.Query(ctx, query, embedding, topK)
	if err != nil {
		return nil, classifySearchError(err)
	}
	defer rows.Close()

	documents := make([]RetrievedDocument, 0, topK)
	for rows.Next() {
		var id, title, section, content string
		var score float64
		if err := rows.Scan(&id, &title, &section, &content, &score); err != nil {
			s.logger.Error("Failed to scan search row",
				slog.String("error", err.Error()))
			continue
		}

		if score < minScore {
			continue
		}

		documents = append(documents, RetrievedDocument{
			ID:    id,
			Score: score,
			Text:  content,
			Metadata: map[string]string{
				"title":   title,
				"section": section,
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, classifySearchError(err)
	}

	s.logger.Debug("Similarity search completed",
		slog.Int("top_k", topK),
		slog.Float64("min_score", minScore),
		slog.Int("matches", len(documents)))

	return documents, nil
}

// classifySearchError separates misconfiguration from transient failures so
// the degraded-mode decision upstream stays visible and testable.
func classifySearchError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "42P01", // undefined_table
			"42704", // undefined_object, e.g. the vector type is missing
			"3D000", // invalid_catalog_name
			"28000", // invalid_authorization_specification
			"28P01": // invalid_password
			return fmt.Errorf("%w: %s (%s)", ErrSearchConfig, pgErr.Message, pgErr.Code)
		}
	}
	return fmt.Errorf("similarity search failed: %w", err)
}
