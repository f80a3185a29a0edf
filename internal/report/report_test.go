package report

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/ziadbensaada/PersonaTracker/internal/analysis"
	"github.com/ziadbensaada/PersonaTracker/internal/news"
)

type fakeAnalyzer struct {
	scores   map[string]float64
	failFor  string
	analyzed int
}

func (f *fakeAnalyzer) AnalyzeSentiment(_ context.Context, _, text string) (*analysis.Sentiment, error) {
	f.analyzed++
	if f.failFor != "" && strings.Contains(text, f.failFor) {
		return nil, fmt.Errorf("model unavailable")
	}
	score := f.scores[text]
	return &analysis.Sentiment{
		Score:   score,
		Label:   analysis.LabelForScore(score),
		Summary: "summary of " + text,
	}, nil
}

func (f *fakeAnalyzer) Summarize(_ context.Context, person string, digests []analysis.ArticleDigest) (string, error) {
	return fmt.Sprintf("overall coverage of %s across %d articles", person, len(digests)), nil
}

type fakeSpeech struct {
	called bool
}

func (f *fakeSpeech) Synthesize(_ context.Context, _, _ string) (string, error) {
	f.called = true
	return "/tmp/audio.mp3", nil
}

func articlesFor(texts ...string) []news.Article {
	out := make([]news.Article, len(texts))
	for i, text := range texts {
		out[i] = news.Article{Title: text, URL: "http://x.test/" + text, Content: text}
	}
	return out
}

func TestBuild(t *testing.T) {
	analyzer := &fakeAnalyzer{scores: map[string]float64{"good": 0.8, "bad": -0.4}}
	b := NewBuilder(analyzer, nil, 0, "en")

	rep, err := b.Build(context.Background(), "Elon Musk", articlesFor("good", "bad"), false)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(rep.Articles) != 2 {
		t.Fatalf("got %d articles, want 2", len(rep.Articles))
	}
	if rep.AnalyzedCount != 2 {
		t.Errorf("AnalyzedCount = %d", rep.AnalyzedCount)
	}
	if diff := rep.OverallScore - 0.2; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("OverallScore = %v, want 0.2", rep.OverallScore)
	}
	if rep.OverallLabel != "Positive" {
		t.Errorf("OverallLabel = %q", rep.OverallLabel)
	}
	if !strings.Contains(rep.OverallSummary, "2 articles") {
		t.Errorf("OverallSummary = %q", rep.OverallSummary)
	}
	if rep.AudioPath != "" {
		t.Errorf("AudioPath = %q, want empty without audio", rep.AudioPath)
	}
}

func TestBuildSurvivesFailedAnalysis(t *testing.T) {
	analyzer := &fakeAnalyzer{
		scores:  map[string]float64{"good": 0.5},
		failFor: "broken",
	}
	b := NewBuilder(analyzer, nil, 0, "en")

	rep, err := b.Build(context.Background(), "Elon Musk", articlesFor("good", "broken"), false)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	if len(rep.Articles) != 2 {
		t.Fatalf("got %d articles, want 2 (failed analysis keeps the article)", len(rep.Articles))
	}
	if rep.Articles[1].Sentiment != nil {
		t.Error("failed article should have nil sentiment")
	}
	if rep.AnalyzedCount != 1 {
		t.Errorf("AnalyzedCount = %d, want 1", rep.AnalyzedCount)
	}
	if rep.OverallScore != 0.5 {
		t.Errorf("OverallScore = %v, want the average of analyzed articles only", rep.OverallScore)
	}
}

func TestBuildWithAudio(t *testing.T) {
	analyzer := &fakeAnalyzer{scores: map[string]float64{"good": 0.5}}
	speech := &fakeSpeech{}
	b := NewBuilder(analyzer, speech, 0, "en")

	rep, err := b.Build(context.Background(), "Elon Musk", articlesFor("good"), true)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if !speech.called {
		t.Error("speech synthesis was not invoked")
	}
	if rep.AudioPath != "/tmp/audio.mp3" {
		t.Errorf("AudioPath = %q", rep.AudioPath)
	}
}

func TestBuildEmptyInput(t *testing.T) {
	analyzer := &fakeAnalyzer{}
	b := NewBuilder(analyzer, nil, 0, "en")

	rep, err := b.Build(context.Background(), "Elon Musk", nil, false)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	if len(rep.Articles) != 0 || rep.AnalyzedCount != 0 {
		t.Errorf("report = %+v, want empty", rep)
	}
	if rep.OverallLabel != "Neutral" {
		t.Errorf("OverallLabel = %q, want Neutral", rep.OverallLabel)
	}
	if analyzer.analyzed != 0 {
		t.Error("no analysis calls expected for empty input")
	}
}

func TestBuildCancelledContext(t *testing.T) {
	analyzer := &fakeAnalyzer{scores: map[string]float64{}}
	b := NewBuilder(analyzer, nil, time.Minute, "en")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := b.Build(ctx, "Elon Musk", articlesFor("a", "b"), false); err == nil {
		t.Error("expected context cancellation error")
	}
}
