package document

import (
	"context"
	"fmt"
	"path"
	"strings"
	"unicode/utf8"

	"github.com/futig/schedule-backend/internal/entity"
	"github.com/futig/schedule-backend/internal/triage"
	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	defaultConcurrency = 4
	documentHeader     = "=== Document: %s ==="
)

// DocumentUsecase reads, extracts and triages caller documents.
type DocumentUsecase struct {
	store       ContentStore
	extractor   TextExtractor
	engine      *triage.Engine
	concurrency int
	model       string
	logger      *zap.Logger
}

// NewUsecase creates a new document use case. model prices requests that do
// not name a model.
func NewUsecase(
	store ContentStore,
	extractor TextExtractor,
	engine *triage.Engine,
	concurrency int,
	model string,
	logger *zap.Logger,
) *DocumentUsecase {
	if concurrency < 1 {
		concurrency = defaultConcurrency
	}
	return &DocumentUsecase{
		store:       store,
		extractor:   extractor,
		engine:      engine,
		concurrency: concurrency,
		model:       model,
		logger:      logger,
	}
}

func (uc *DocumentUsecase) resolveModel(model string) string {
	if model == "" {
		return uc.model
	}
	return model
}

// AnalyzeAll triages every source in parallel and returns once all of them are
// done. Results keep the order of sources. A source that cannot be read or
// extracted yields a failed analysis instead of aborting the batch.
func (uc *DocumentUsecase) AnalyzeAll(
	ctx context.Context,
	sources []entity.DocumentSource,
	opts entity.ProcessingOptions,
	model string,
) []entity.DocumentAnalysis {
	model = uc.resolveModel(model)
	results := make([]entity.DocumentAnalysis, len(sources))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(uc.concurrency)

	for i, src := range sources {
		g.Go(func() error {
			results[i] = uc.analyze(gctx, src, opts, model)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Failed {
			failed++
		}
	}
	ctxzap.Info(ctx, "documents analyzed",
		zap.Int("document_count", len(sources)),
		zap.Int("failed_count", failed),
	)

	return results
}

func (uc *DocumentUsecase) analyze(
	ctx context.Context,
	src entity.DocumentSource,
	opts entity.ProcessingOptions,
	model string,
) entity.DocumentAnalysis {
	doc := entity.Document{Name: documentName(src), Path: src.Path}

	text, err := uc.load(ctx, src, doc.Name)
	if err != nil {
		ctxzap.Warn(ctx, "document unreadable",
			zap.String("document", doc.Name),
			zap.Error(err),
		)
		return uc.engine.Unreadable(doc, fmt.Errorf("%w: %w", entity.ErrDocumentUnreadable, err))
	}

	doc.RawText = text
	doc.TotalSizeChars = utf8.RuneCountInString(text)

	analysis := uc.engine.Analyze(doc, opts, model)
	ctxzap.Debug(ctx, "document triaged",
		zap.String("document", doc.Name),
		zap.Int("section_count", len(analysis.Sections)),
		zap.Int("size_chars", doc.TotalSizeChars),
	)
	return analysis
}

func (uc *DocumentUsecase) load(ctx context.Context, src entity.DocumentSource, name string) (string, error) {
	content := src.Content
	if content == nil {
		if src.Path == "" {
			return "", fmt.Errorf("%w: document has neither content nor path", entity.ErrMissingField)
		}
		raw, err := uc.store.ReadObject(ctx, src.Path)
		if err != nil {
			return "", fmt.Errorf("read object: %w", err)
		}
		content = raw
	}

	text, err := uc.extractor.Extract(name, content)
	if err != nil {
		return "", err
	}
	return text, nil
}

// Materialize joins the content every analysis contributes under opts and
// applies the token ceiling to the whole. It also summarizes the triage for
// the caller.
func (uc *DocumentUsecase) Materialize(
	ctx context.Context,
	analyses []entity.DocumentAnalysis,
	opts entity.ProcessingOptions,
	model string,
) (string, *entity.DocumentInsights) {
	model = uc.resolveModel(model)
	insights := &entity.DocumentInsights{
		Mode:      opts.Mode,
		Documents: make([]entity.DocumentSummary, 0, len(analyses)),
		KeyInfo:   entity.KeyInformation{Milestones: []string{}, Constraints: []string{}},
	}

	multi := len(analyses) > 1
	parts := make([]string, 0, len(analyses))
	for _, a := range analyses {
		selected := uc.engine.SelectSections(a.Document.Name, a.Sections, opts)

		summary := entity.DocumentSummary{
			Name:             a.Document.Name,
			SectionCount:     len(a.Sections),
			SelectedSections: make([]string, 0, len(selected)),
			Note:             a.Note,
			Failed:           a.Failed,
		}
		for _, s := range selected {
			summary.SelectedSections = append(summary.SelectedSections, s.ID)
			summary.TokenEstimate += s.TokenEstimate
		}
		insights.Documents = append(insights.Documents, summary)

		if !a.Failed {
			insights.KeyInfo = triage.MergeKeyInformation(insights.KeyInfo, a.KeyInfo)
		}

		if len(selected) == 0 {
			continue
		}
		body := triage.JoinSections(selected)
		if multi {
			body = fmt.Sprintf(documentHeader, a.Document.Name) + "\n" + body
		}
		parts = append(parts, body)
	}

	content, truncated := uc.engine.Truncate(strings.Join(parts, "\n\n"), opts.MaxTokens)
	insights.Truncated = truncated
	insights.TokensUsed = uc.engine.EstimateTokens(content)
	insights.EstimatedCost = uc.engine.Cost(model, insights.TokensUsed)

	ctxzap.Info(ctx, "document content materialized",
		zap.String("mode", string(opts.Mode)),
		zap.Int("tokens_used", insights.TokensUsed),
		zap.Bool("truncated", truncated),
	)

	return content, insights
}

func documentName(src entity.DocumentSource) string {
	if src.Name != "" {
		return src.Name
	}
	if src.Path != "" {
		return path.Base(src.Path)
	}
	return "document"
}
