package parser

import (
	"strings"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// Recognizer refines a fenced code chunk into a more specific kind. It must
// return the chunk unchanged when it does not apply.
type Recognizer func(entities.Chunk) entities.Chunk

// DefaultRecognizers returns the built-in recognizers in the order they run
func DefaultRecognizers() []Recognizer {
	return []Recognizer{RecognizeMermaid, RecognizeBash}
}

// Chunker splits slide content into markdown and fenced code chunks
type Chunker struct {
	recognizers []Recognizer
}

// NewChunker creates a chunker running recognizers over every fenced chunk.
// Without recognizers the defaults are used.
func NewChunker(recognizers ...Recognizer) *Chunker {
	if len(recognizers) == 0 {
		recognizers = DefaultRecognizers()
	}
	return &Chunker{recognizers: recognizers}
}

// Split returns the chunks of content in order. Blank markdown stretches are
// dropped; an unclosed fence runs to the end of the content.
func (c *Chunker) Split(content string) []entities.Chunk {
	lines := strings.Split(entities.NormalizeLineEndings(content), "\n")

	var chunks []entities.Chunk
	var fences fenceTracker
	markdownStart := 0
	var code *entities.Chunk
	var codeLines []string

	flushMarkdown := func(end int) {
		start, end := trimBlankLines(lines, markdownStart, end)
		if start < end {
			chunks = append(chunks, entities.Chunk{
				Kind:      entities.ChunkMarkdown,
				Content:   strings.Join(lines[start:end], "\n"),
				StartLine: start + 1,
				EndLine:   end,
			})
		}
	}
	flushCode := func(end int) {
		code.Content = strings.Join(codeLines, "\n")
		code.EndLine = end
		chunks = append(chunks, c.recognize(*code))
		code, codeLines = nil, nil
	}

	for i, line := range lines {
		wasInside := fences.inside()
		if !fences.scan(line) {
			if wasInside {
				codeLines = append(codeLines, line)
			}
			continue
		}

		if !wasInside {
			flushMarkdown(i)
			_, _, info := parseFence(line)
			code = &entities.Chunk{
				Kind:      entities.ChunkCode,
				Language:  fenceLanguage(info),
				StartLine: i + 1,
			}
			continue
		}

		flushCode(i + 1)
		markdownStart = i + 1
	}

	if code != nil {
		flushCode(len(lines))
	} else {
		flushMarkdown(len(lines))
	}

	return chunks
}

func (c *Chunker) recognize(chunk entities.Chunk) entities.Chunk {
	for _, recognizer := range c.recognizers {
		chunk = recognizer(chunk)
	}
	return chunk
}

// RecognizeMermaid marks ```mermaid fences as diagrams
func RecognizeMermaid(chunk entities.Chunk) entities.Chunk {
	if chunk.Kind == entities.ChunkCode && chunk.Language == "mermaid" {
		chunk.Kind = entities.ChunkMermaid
	}
	return chunk
}

var shellLanguages = map[string]bool{
	"bash":    true,
	"sh":      true,
	"shell":   true,
	"zsh":     true,
	"console": true,
}

// RecognizeBash marks shell fences and parses their commands
func RecognizeBash(chunk entities.Chunk) entities.Chunk {
	if chunk.Kind != entities.ChunkCode || !shellLanguages[chunk.Language] {
		return chunk
	}
	chunk.Kind = entities.ChunkBash
	chunk.Commands = ParseCommands(chunk.Content)
	return chunk
}

// ParseCommands extracts shell commands from a script: blank lines and
// comments are skipped, "$ " prompts stripped and trailing backslash
// continuations joined into one command.
func ParseCommands(script string) []string {
	var commands []string
	var pending []string

	for _, line := range strings.Split(script, "\n") {
		trimmed := strings.TrimSpace(line)

		if len(pending) == 0 {
			if trimmed == "" || strings.HasPrefix(trimmed, "#") {
				continue
			}
			if rest, ok := strings.CutPrefix(trimmed, "$"); ok {
				trimmed = strings.TrimSpace(rest)
			}
		}

		if part, ok := strings.CutSuffix(trimmed, `\`); ok {
			pending = append(pending, strings.TrimSpace(part))
			continue
		}

		pending = append(pending, trimmed)
		if command := strings.Join(nonEmpty(pending), " "); command != "" {
			commands = append(commands, command)
		}
		pending = nil
	}

	if command := strings.Join(nonEmpty(pending), " "); command != "" {
		commands = append(commands, command)
	}
	return commands
}

func nonEmpty(parts []string) []string {
	out := parts[:0:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
