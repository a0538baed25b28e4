package entities

// ChunkKind identifies what a chunk of slide content contains
type ChunkKind string

const (
	// ChunkMarkdown is plain markdown outside fenced blocks
	ChunkMarkdown ChunkKind = "markdown"
	// ChunkCode is a fenced code block with no more specific kind
	ChunkCode ChunkKind = "code"
	// ChunkMermaid is a fenced mermaid diagram
	ChunkMermaid ChunkKind = "mermaid"
	// ChunkBash is a fenced shell block with parsed commands
	ChunkBash ChunkKind = "bash"
)

// Chunk is a contiguous piece of a slide's content
type Chunk struct {
	Kind ChunkKind `json:"kind" yaml:"kind"`

	// Content is the chunk text; for fenced blocks it excludes the fences
	Content string `json:"content" yaml:"content"`

	// Language is the fence info string's first word (fenced chunks only)
	Language string `json:"language,omitempty" yaml:"language,omitempty"`

	// StartLine and EndLine are 1-based and relative to the slide content
	StartLine int `json:"startLine" yaml:"startLine"`
	EndLine   int `json:"endLine" yaml:"endLine"`

	// Commands holds the shell commands of a bash chunk
	Commands []string `json:"commands,omitempty" yaml:"commands,omitempty"`
}

// IsFenced reports whether the chunk came from a fenced code block
func (c Chunk) IsFenced() bool {
	return c.Kind != ChunkMarkdown
}

// ChunkKinds returns the distinct chunk kinds of a slide in first-seen order
func (s *Slide) ChunkKinds() []ChunkKind {
	seen := make(map[ChunkKind]bool, len(s.Chunks))
	kinds := make([]ChunkKind, 0, len(s.Chunks))
	for _, c := range s.Chunks {
		if !seen[c.Kind] {
			seen[c.Kind] = true
			kinds = append(kinds, c.Kind)
		}
	}
	return kinds
}
