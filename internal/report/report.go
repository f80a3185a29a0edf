// Package report combines aggregated articles with sentiment analysis into
// a persona report, optionally with a spoken summary.
package report

import (
	"context"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/analysis"
	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/news"
)

// Analyzer is the slice of the analysis client the builder needs.
type Analyzer interface {
	AnalyzeSentiment(ctx context.Context, person, text string) (*analysis.Sentiment, error)
	Summarize(ctx context.Context, person string, digests []analysis.ArticleDigest) (string, error)
}

// Speech synthesizes a summary into an audio file and returns its path.
type Speech interface {
	Synthesize(ctx context.Context, text, lang string) (string, error)
}

// AnalyzedArticle pairs an article with its sentiment. Sentiment is nil
// when analysis failed for that article.
type AnalyzedArticle struct {
	news.Article
	Sentiment *analysis.Sentiment `json:"sentiment,omitempty"`
}

// Report is the final output for one person.
type Report struct {
	Query          string            `json:"query"`
	GeneratedAt    time.Time         `json:"generated_at"`
	Articles       []AnalyzedArticle `json:"articles"`
	AnalyzedCount  int               `json:"analyzed_count"`
	OverallScore   float64           `json:"overall_score"`
	OverallLabel   string            `json:"overall_label"`
	OverallSummary string            `json:"overall_summary,omitempty"`
	AudioPath      string            `json:"audio_path,omitempty"`
}

// Builder runs per-article analysis with a pause between calls so a burst
// of articles does not hammer the model API.
type Builder struct {
	analyzer Analyzer
	speech   Speech
	delay    time.Duration
	lang     string
}

func NewBuilder(analyzer Analyzer, speech Speech, delay time.Duration, lang string) *Builder {
	return &Builder{analyzer: analyzer, speech: speech, delay: delay, lang: lang}
}

// Build analyzes each article and assembles the report. An article whose
// analysis fails is kept without sentiment; it never sinks the report.
func (b *Builder) Build(ctx context.Context, query string, articles []news.Article, withAudio bool) (*Report, error) {
	report := &Report{
		Query:       query,
		GeneratedAt: time.Now(),
		Articles:    make([]AnalyzedArticle, 0, len(articles)),
	}

	var digests []analysis.ArticleDigest
	var total float64

	for i, art := range articles {
		if i > 0 && b.delay > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(b.delay):
			}
		}

		entry := AnalyzedArticle{Article: art}
		sentiment, err := b.analyzer.AnalyzeSentiment(ctx, query, art.Content)
		if err != nil {
			logger.Warn("sentiment analysis failed", "url", art.URL, "error", err)
		} else {
			entry.Sentiment = sentiment
			total += sentiment.Score
			digests = append(digests, analysis.ArticleDigest{
				Title:   art.Title,
				Summary: sentiment.Summary,
				Score:   sentiment.Score,
			})
		}
		report.Articles = append(report.Articles, entry)
	}

	report.AnalyzedCount = len(digests)
	if len(digests) > 0 {
		report.OverallScore = total / float64(len(digests))
	}
	report.OverallLabel = analysis.LabelForScore(report.OverallScore)

	if len(digests) > 0 {
		summary, err := b.analyzer.Summarize(ctx, query, digests)
		if err != nil {
			logger.Warn("overall summary failed", "query", query, "error", err)
		} else {
			report.OverallSummary = summary
		}
	}

	if withAudio && b.speech != nil && report.OverallSummary != "" {
		path, err := b.speech.Synthesize(ctx, report.OverallSummary, b.lang)
		if err != nil {
			logger.Warn("audio synthesis failed", "query", query, "error", err)
		} else {
			report.AudioPath = path
		}
	}

	return report, nil
}
