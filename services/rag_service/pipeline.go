package rag_service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/pgvector/pgvector-go"

	"github.com/nyayasetu/nyayasetu/services/llm_service"
)

// DegradationNotifier receives out-of-band notice when similarity search
// fails for configuration reasons. Implemented by the alert service.
type DegradationNotifier interface {
	NotifyDegradedSearch(reason string)
}

type PipelineOptions struct {
	TopK            int
	MinScore        float64
	ContextMaxChars int
	Timeout         time.Duration
}

func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		TopK:            DefaultTopK,
		MinScore:        DefaultMinScore,
		ContextMaxChars: DefaultContextMaxChars,
		Timeout:         30 * time.Second,
	}
}

// Pipeline runs one chat query through embed, search, assemble, prompt and
// generate. It holds no per-request state; concurrent Answer calls are
// independent.
type Pipeline struct {
	embedder Embedder
	searcher Searcher
	llm      llm_service.LLMService
	llmCfg   map[string]interface{}
	notifier DegradationNotifier
	logger   *slog.Logger
	opts     PipelineOptions
}

func NewPipeline(embedder Embedder, searcher Searcher, llm llm_service.LLMService, llmCfg map[string]interface{}, notifier DegradationNotifier, logger *slog.Logger, opts PipelineOptions) *Pipeline {
	if opts.TopK < 1 {
		opts.TopK = DefaultTopK
	}
	if opts.MinScore <= 0 {
		opts.MinScore = DefaultMinScore
	}
	if opts.ContextMaxChars < 1 {
		opts.ContextMaxChars = DefaultContextMaxChars
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Pipeline{
		embedder: embedder,
		searcher: searcher,
		llm:      llm,
		llmCfg:   llmCfg,
		notifier: notifier,
		logger:   logger,
		opts:     opts,
	}
}

// Answer produces a grounded answer for query given the caller-owned
// conversation history. Embedding and generation failures abort the request;
// search failures degrade to an answer without citations.
func (p *Pipeline) Answer(ctx context.Context, query string, history []ConversationTurn) (GeneratedAnswer, error) {
	normalized, err := NormalizeQuery(query)
	if err != nil {
		return GeneratedAnswer{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.opts.Timeout)
	defer cancel()

	start := time.Now()

	embedding, err := p.embedder.Embed(ctx, normalized)
	if err != nil {
		return GeneratedAnswer{}, err
	}

	documents := p.retrieveDocuments(ctx, embedding)

	assembled := AssembleContext(documents, p.opts.ContextMaxChars)
	prompt := ComposePrompt(SystemPersona, assembled, history, normalized)

	answer, err := p.llm.CallLLM(ctx, p.llmCfg, prompt)
	if err != nil {
		return GeneratedAnswer{}, fmt.Errorf("generation: %w", err)
	}

	p.logger.Info("Answer produced",
		slog.Int("documents", len(documents)),
		slog.Int("context_chars", len(assembled)),
		slog.Duration("elapsed", time.Since(start)))

	return GeneratedAnswer{
		Answer:     answer,
		Sources:    Sources(documents),
		Confidence: Confidence(documents),
	}, nil
}

// retrieveDocuments is the fail-open boundary: every search error is
// converted to an empty document list here, after classification. A missing
// knowledge base must not block the assistant from answering in general
// terms.
func (p *Pipeline) retrieveDocuments(ctx context.Context, embedding pgvector.Vector) []RetrievedDocument {
	documents, err := p.searcher.Search(ctx, embedding, p.opts.TopK, p.opts.MinScore)
	if err == nil {
		return documents
	}

	if errors.Is(err, ErrSearchConfig) {
		p.logger.Error("Similarity search degraded by configuration error",
			slog.String("error", err.Error()))
		if p.notifier != nil {
			p.notifier.NotifyDegradedSearch(err.Error())
		}
	} else {
		p.logger.Warn("Similarity search degraded",
			slog.String("error", err.Error()))
	}

	return nil
}
