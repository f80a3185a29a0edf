// Package analysis runs sentiment scoring and summarization of matched
// articles through the Gemini API.
package analysis

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/ziadbensaada/PersonaTracker/internal/logger"
	"github.com/ziadbensaada/PersonaTracker/internal/metrics"
	"github.com/ziadbensaada/PersonaTracker/internal/ratelimit"
)

const maxPromptRunes = 6000

// Sentiment is the model's verdict on one article.
type Sentiment struct {
	Score    float64  `json:"score"`
	Label    string   `json:"label"`
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}

// ArticleDigest is the per-article input to the overall summary.
type ArticleDigest struct {
	Title   string
	Summary string
	Score   float64
}

// Client wraps the Gemini model behind the rate limiter.
type Client struct {
	client  *genai.Client
	model   string
	limiter *ratelimit.Limiter
}

func NewClient(ctx context.Context, apiKey, model string, limiter *ratelimit.Limiter) (*Client, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is empty")
	}
	c, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return &Client{client: c, model: model, limiter: limiter}, nil
}

func (c *Client) Close() error {
	return c.client.Close()
}

// AnalyzeSentiment scores an article's coverage of the person. The call is
// paced and budgeted by the limiter.
func (c *Client) AnalyzeSentiment(ctx context.Context, person, text string) (*Sentiment, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		if err := c.limiter.Use(); err != nil {
			return nil, err
		}
	}

	prompt := fmt.Sprintf(`Analyze the sentiment of this news article toward %q.
Respond in exactly this format:

SCORE: <number between -1.0 and 1.0>
SENTIMENT: <Positive, Negative or Neutral>
SUMMARY: <two or three sentences summarizing what the article says about %s>
KEYWORDS: <up to five comma-separated keywords>

Article:
%s`, person, person, clipText(text))

	raw, err := c.generate(ctx, prompt)
	if err != nil {
		metrics.Global.IncrementSentimentFailures()
		return nil, err
	}
	metrics.Global.IncrementSentimentCalls()
	return parseSentiment(raw), nil
}

// Summarize produces an overall picture of the person's coverage from the
// per-article digests.
func (c *Client) Summarize(ctx context.Context, person string, digests []ArticleDigest) (string, error) {
	if len(digests) == 0 {
		return "", fmt.Errorf("no articles to summarize")
	}
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", err
		}
		if err := c.limiter.Use(); err != nil {
			return "", err
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "These are summaries of recent news articles about %s, with sentiment scores from -1 to 1:\n\n", person)
	for i, d := range digests {
		fmt.Fprintf(&b, "%d. [score %.2f] %s: %s\n", i+1, d.Score, d.Title, d.Summary)
	}
	b.WriteString("\nWrite a short paragraph describing the overall media coverage of this person: the main stories, the general tone and any notable shifts.")

	return c.generate(ctx, b.String())
}

func (c *Client) generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("empty response from model")
	}
	return strings.TrimSpace(fmt.Sprintf("%v", resp.Candidates[0].Content.Parts[0])), nil
}

// clipText bounds the article text, cutting at a sentence end when one is
// close enough.
func clipText(text string) string {
	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if len(runes) <= maxPromptRunes {
		return text
	}
	clipped := string(runes[:maxPromptRunes])
	if i := strings.LastIndex(clipped, ". "); i > maxPromptRunes/2 {
		return clipped[:i+1]
	}
	return clipped
}

var (
	scoreLine     = regexp.MustCompile(`(?im)^\s*SCORE:\s*(-?\d+(?:\.\d+)?)`)
	sentimentLine = regexp.MustCompile(`(?im)^\s*SENTIMENT:\s*(\w+)`)
	summaryLine   = regexp.MustCompile(`(?ims)^\s*SUMMARY:\s*(.+?)(?:^\s*KEYWORDS:|\z)`)
	keywordsLine  = regexp.MustCompile(`(?im)^\s*KEYWORDS:\s*(.+)$`)
)

// parseSentiment reads the labeled response. Models drift from the format,
// so every field has a fallback instead of failing the article.
func parseSentiment(raw string) *Sentiment {
	s := &Sentiment{Label: "Neutral"}

	if m := scoreLine.FindStringSubmatch(raw); m != nil {
		if v, err := strconv.ParseFloat(m[1], 64); err == nil {
			s.Score = clamp(v, -1, 1)
		}
	}
	if m := sentimentLine.FindStringSubmatch(raw); m != nil {
		s.Label = normalizeLabel(m[1])
	} else {
		s.Label = labelForScore(s.Score)
	}
	if m := summaryLine.FindStringSubmatch(raw); m != nil {
		s.Summary = strings.TrimSpace(m[1])
	} else {
		logger.Debug("unlabeled sentiment response, using raw text as summary")
		s.Summary = raw
	}
	if m := keywordsLine.FindStringSubmatch(raw); m != nil {
		for _, k := range strings.FieldsFunc(m[1], func(r rune) bool { return r == ',' || r == ';' }) {
			if k = strings.TrimSpace(k); k != "" {
				s.Keywords = append(s.Keywords, k)
			}
		}
	}
	return s
}

func normalizeLabel(raw string) string {
	switch strings.ToLower(raw) {
	case "positive":
		return "Positive"
	case "negative":
		return "Negative"
	default:
		return "Neutral"
	}
}

// LabelForScore maps a score onto the three sentiment labels.
func LabelForScore(score float64) string {
	return labelForScore(score)
}

func labelForScore(score float64) string {
	switch {
	case score > 0.1:
		return "Positive"
	case score < -0.1:
		return "Negative"
	default:
		return "Neutral"
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
