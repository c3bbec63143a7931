// Package parser turns a raw markdown deck into an ordered sequence of slides:
// per-slide front-matter, speaker notes, named content slots and a slug.
package parser

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/starford/katha/internal/models"
	"github.com/starford/katha/internal/patterns"
)

// Parser splits decks into slides. The zero value is not usable; call New.
type Parser struct {
	logger *slog.Logger
}

// New creates a Parser that reports degraded slides to logger.
func New(logger *slog.Logger) *Parser {
	if logger == nil {
		logger = slog.Default()
	}
	return &Parser{logger: logger}
}

// Parse splits raw using the default logger. See (*Parser).Parse.
func Parse(raw string) []models.Slide {
	return New(nil).Parse(raw)
}

// Parse splits raw into slides. It never fails: a chunk whose front-matter
// cannot be parsed degrades to a slide holding the chunk text as its default
// slot, and whitespace-only chunks are skipped. The result is never nil.
func (p *Parser) Parse(raw string) []models.Slide {
	slides := make([]models.Slide, 0)
	if strings.TrimSpace(raw) == "" {
		return slides
	}

	for _, chunk := range patterns.SlideDelimiter.Split(raw, -1) {
		trimmed := strings.TrimSpace(chunk)
		if trimmed == "" {
			continue
		}
		ordinal := len(slides)
		slide, err := parseChunk(trimmed, ordinal)
		if err != nil {
			p.logger.Warn("parser: slide degraded",
				slog.Int("ordinal", ordinal),
				slog.String("error", err.Error()))
			slide = degraded(trimmed, ordinal)
		}
		slides = append(slides, slide)
	}

	p.logger.Debug("parser: deck parsed", slog.Int("slides", len(slides)))
	return slides
}

// parseChunk builds a slide from one trimmed, non-empty chunk.
func parseChunk(chunk string, ordinal int) (slide models.Slide, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("parser: panic: %v", r)
		}
	}()

	meta, body, err := splitFrontmatter(chunk)
	if err != nil {
		return models.Slide{}, err
	}

	notes, stripped := extractNotes(body)

	return models.Slide{
		Ordinal:    ordinal,
		Slug:       deriveSlug(meta, body, ordinal),
		Meta:       meta,
		RawContent: body,
		Slots:      splitSlots(stripped),
		Notes:      notes,
	}, nil
}

func degraded(chunk string, ordinal int) models.Slide {
	return models.Slide{
		Ordinal:    ordinal,
		Slug:       strconv.Itoa(ordinal + 1),
		Meta:       models.Meta{},
		RawContent: chunk,
		Slots:      map[string]string{patterns.DefaultSlotKey: chunk},
		Notes:      "",
	}
}

// ErrFrontmatter is returned for a front-matter block that is not a YAML mapping.
var ErrFrontmatter = errors.New("invalid front-matter")

// splitFrontmatter separates a leading YAML block fenced by --- lines from
// the body. Without an opening fence, or without a closing one, the entire
// chunk is body and meta is empty.
func splitFrontmatter(chunk string) (models.Meta, string, error) {
	meta := models.Meta{}

	first, rest, found := strings.Cut(chunk, "\n")
	if strings.TrimRight(first, "\r") != patterns.FrontMatterFence {
		return meta, chunk, nil
	}
	if !found {
		return meta, chunk, nil
	}

	var block strings.Builder
	closed := false
	body := ""
	for {
		line, next, more := strings.Cut(rest, "\n")
		if strings.TrimRight(line, "\r") == patterns.FrontMatterFence {
			closed = true
			body = next
			break
		}
		block.WriteString(line)
		block.WriteByte('\n')
		if !more {
			break
		}
		rest = next
	}
	if !closed {
		return meta, chunk, nil
	}

	if strings.TrimSpace(block.String()) != "" {
		var raw map[string]any
		if err := yaml.Unmarshal([]byte(block.String()), &raw); err != nil {
			return nil, "", fmt.Errorf("%w: %v", ErrFrontmatter, err)
		}
		for k, v := range raw {
			meta[k] = v
		}
	}

	return meta, strings.TrimLeft(body, "\r\n"), nil
}

// extractNotes removes every HTML comment from body and returns the trimmed
// comment bodies joined by newlines, plus the stripped body.
func extractNotes(body string) (string, string) {
	var notes []string
	stripped := patterns.Notes.ReplaceAllStringFunc(body, func(match string) string {
		sub := patterns.Notes.FindStringSubmatch(match)
		notes = append(notes, strings.TrimSpace(sub[1]))
		return ""
	})
	return strings.TrimSpace(strings.Join(notes, "\n")), stripped
}

// splitSlots splits body on ::name:: lines. Content before the first marker
// is the default slot; a repeated name keeps its last occurrence.
func splitSlots(body string) map[string]string {
	slots := map[string]string{}

	matches := patterns.SlotDelimiter.FindAllStringSubmatchIndex(body, -1)
	if len(matches) == 0 {
		slots[patterns.DefaultSlotKey] = strings.TrimSpace(body)
		return slots
	}

	slots[patterns.DefaultSlotKey] = strings.TrimSpace(body[:matches[0][0]])
	for i, m := range matches {
		name := body[m[2]:m[3]]
		end := len(body)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		slots[name] = strings.TrimSpace(body[m[1]:end])
	}
	return slots
}

// deriveSlug picks the explicit id, then the first H1, then the 1-based position.
func deriveSlug(meta models.Meta, body string, ordinal int) string {
	if id := meta.ID(); id != "" {
		return id
	}
	if m := patterns.FirstH1.FindStringSubmatch(body); m != nil {
		if s := Slugify(m[1]); s != "" {
			return s
		}
	}
	return strconv.Itoa(ordinal + 1)
}

// Slugify lowercases text, collapses every run of characters outside
// [a-z0-9] into one hyphen and strips leading and trailing hyphens.
func Slugify(text string) string {
	s := patterns.SlugInvalidRun.ReplaceAllString(strings.ToLower(text), "-")
	return strings.Trim(s, "-")
}
