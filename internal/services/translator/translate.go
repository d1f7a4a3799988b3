package translator

import (
	"context"
	"fmt"
	"strings"

	"dubforge/internal/segment"
)

const systemPromptTemplate = `You are a professional dubbing translator. Translate each numbered line from %s to %s.

Rules:
- Keep the translation close to the original spoken length so it fits the same time window.
- Preserve tone and register; this is spoken dialogue, not prose.
- Do not merge, split, or reorder lines.
- Respond with JSON only: {"translations": ["...", "..."]} with exactly one entry per input line, in order.`

type translationPayload struct {
	Translations []string `json:"translations"`
}

// TranslateSegments fills TranslatedText on every segment, sending them to
// the model in order-preserving batches. The input slice is modified in
// place.
func (c *Client) TranslateSegments(ctx context.Context, segments []segment.Segment, sourceName, targetName string) error {
	if len(segments) == 0 {
		return nil
	}
	if strings.TrimSpace(sourceName) == "" || strings.TrimSpace(targetName) == "" {
		return fmt.Errorf("translate segments: source and target language names required")
	}

	batchSize := c.cfg.BatchSize
	for start := 0; start < len(segments); start += batchSize {
		end := start + batchSize
		if end > len(segments) {
			end = len(segments)
		}
		if err := c.translateBatch(ctx, segments[start:end], sourceName, targetName); err != nil {
			return fmt.Errorf("translate batch %d-%d: %w", start, end-1, err)
		}
	}
	return nil
}

func (c *Client) translateBatch(ctx context.Context, batch []segment.Segment, sourceName, targetName string) error {
	systemPrompt := fmt.Sprintf(systemPromptTemplate, sourceName, targetName)

	var sb strings.Builder
	for i, seg := range batch {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, strings.TrimSpace(seg.Text))
	}

	content, err := c.CompleteJSON(ctx, systemPrompt, sb.String())
	if err != nil {
		return err
	}

	var parsed translationPayload
	if err := DecodeJSON(content, &parsed); err != nil {
		// Some models answer with a bare array instead of the wrapper object.
		var bare []string
		if bareErr := DecodeJSON(content, &bare); bareErr == nil {
			parsed.Translations = bare
		} else {
			return fmt.Errorf("parse translations: %w", err)
		}
	}
	if len(parsed.Translations) != len(batch) {
		return fmt.Errorf("translation count mismatch: sent %d lines, got %d back", len(batch), len(parsed.Translations))
	}

	for i := range batch {
		translated := strings.TrimSpace(parsed.Translations[i])
		if translated == "" {
			return fmt.Errorf("empty translation for line %d (%q)", i+1, batch[i].Text)
		}
		batch[i].TranslatedText = translated
	}
	return nil
}
