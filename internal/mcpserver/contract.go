package mcpserver

// DeckFormatContract describes the deck authoring format for LLM consumers
// that read or draft slides.
const DeckFormatContract = `# Katha Deck Format

A deck is one Markdown file (default ` + "`slides.md`" + `). Slides are separated by a line
containing exactly ` + "`---slide---`" + `.

## Slide structure

` + "```" + `markdown
---slide---
---
layout: split          # OPTIONAL – default, title, split, quote, section,
                       #   image-left, image-right (aliases: two-cols, center,
                       #   img-left, img-right); unknown names fall back to default
id: agenda             # OPTIONAL – explicit slug, used in URLs (/agenda)
title: Agenda          # OPTIONAL – table of contents entry
clicks: 2              # OPTIONAL – number of reveal steps on this slide
theme: dark            # OPTIONAL – presentation theme
class: centered        # OPTIONAL – extra CSS class
background: /assets/bg.png
transition: fade
slideNumber: false     # OPTIONAL – hide the slide number
image: /assets/cat.png # OPTIONAL – picture for image-left / image-right
---
# Agenda
Left column content
<!-- Speaker notes live in HTML comments and are never shown on the slide. -->
::right::
Right column content
` + "```" + `

## Rules

1. **Front-matter** is optional. When present it starts on the first line of the
   slide with a ` + "`---`" + ` line and ends at the next ` + "`---`" + ` line. It must be a YAML
   mapping; anything else turns the whole slide into plain text.
2. **Slots**: a line ` + "`::name::`" + ` starts a named slot. Text before the first marker is
   the ` + "`default`" + ` slot. A repeated name keeps its last occurrence.
3. **Notes**: every ` + "`<!-- ... -->`" + ` comment is removed from the slide and collected as
   speaker notes, joined by newlines.
4. **Slugs**: the ` + "`id`" + ` key wins; otherwise the first level-1 heading, lowercased with
   runs of non ` + "`[a-z0-9]`" + ` characters collapsed to ` + "`-`" + `; otherwise the 1-based slide number.
   Duplicate slugs resolve to the first slide that carries them.
5. **Blank slides** (whitespace only between separators) are skipped and do not
   consume a slide number.
6. **Assets** placed next to the deck file are served from ` + "`/assets/<path>`" + `.

## Navigation

Slides are addressed by 1-based number (clamped to the deck) or by slug. With
` + "`clicks: N`" + `, "next" first advances the step 1..N, then moves to the next slide at step 0.
`
