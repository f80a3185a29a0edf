// Package tts turns report summaries into MP3 audio using the public Google
// Translate speech endpoint.
package tts

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/ziadbensaada/PersonaTracker/internal/retry"
)

const (
	defaultEndpoint = "https://translate.google.com/translate_tts"

	// the endpoint rejects long q parameters
	maxChunkRunes = 200
)

// Client synthesizes speech and writes the audio files to a directory.
type Client struct {
	client   *resty.Client
	dir      string
	retryCfg retry.Config
	endpoint string
}

func New(client *resty.Client, dir string, retryCfg retry.Config) (*Client, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create audio dir %s: %w", dir, err)
	}
	return &Client{client: client, dir: dir, retryCfg: retryCfg, endpoint: defaultEndpoint}, nil
}

// Synthesize converts text to speech and returns the path of the written
// MP3. Long text is split at word boundaries and the audio chunks are
// concatenated; MP3 frames tolerate simple concatenation.
func (c *Client) Synthesize(ctx context.Context, text, lang string) (string, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return "", fmt.Errorf("nothing to synthesize")
	}
	if lang == "" {
		lang = "en"
	}

	chunks := SplitChunks(text, maxChunkRunes)
	var audio bytes.Buffer

	for i, chunk := range chunks {
		err := retry.Do(ctx, c.retryCfg, func() error {
			resp, err := c.client.R().
				SetContext(ctx).
				SetQueryParams(map[string]string{
					"ie":      "UTF-8",
					"client":  "tw-ob",
					"tl":      lang,
					"q":       chunk,
					"total":   strconv.Itoa(len(chunks)),
					"idx":     strconv.Itoa(i),
					"textlen": strconv.Itoa(len(chunk)),
				}).
				Get(c.endpoint)
			if err != nil {
				return fmt.Errorf("tts request: %w", err)
			}
			if resp.StatusCode() != 200 {
				return fmt.Errorf("tts request: status %d", resp.StatusCode())
			}
			audio.Write(resp.Body())
			return nil
		})
		if err != nil {
			return "", fmt.Errorf("synthesize chunk %d/%d: %w", i+1, len(chunks), err)
		}
	}

	path := filepath.Join(c.dir, fmt.Sprintf("report_%d.mp3", time.Now().UnixNano()))
	if err := os.WriteFile(path, audio.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write audio file: %w", err)
	}
	return path, nil
}

// SplitChunks cuts text into pieces of at most max runes, breaking at word
// boundaries. A single word longer than max becomes its own chunk.
func SplitChunks(text string, max int) []string {
	var chunks []string
	var current strings.Builder
	currentLen := 0

	for _, word := range strings.Fields(text) {
		wordLen := len([]rune(word))
		if currentLen > 0 && currentLen+1+wordLen > max {
			chunks = append(chunks, current.String())
			current.Reset()
			currentLen = 0
		}
		if currentLen > 0 {
			current.WriteByte(' ')
			currentLen++
		}
		current.WriteString(word)
		currentLen += wordLen
	}
	if currentLen > 0 {
		chunks = append(chunks, current.String())
	}
	return chunks
}
