package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// ImageRewriter is a goldmark AST transformer resolving relative image
// destinations against a base URL
type ImageRewriter struct {
	base *url.URL
}

// NewImageRewriter creates a rewriter for baseURL. The base is treated as a
// directory even without a trailing slash.
func NewImageRewriter(baseURL string) (*ImageRewriter, error) {
	base, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing image base URL %q: %w", baseURL, err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("image base URL %q must be absolute", baseURL)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}
	return &ImageRewriter{base: base}, nil
}

// Rewrite resolves a single image destination. Absolute URLs, protocol
// relative URLs, fragments and data URIs are returned unchanged.
func (r *ImageRewriter) Rewrite(destination string) string {
	if destination == "" || strings.HasPrefix(destination, "//") || strings.HasPrefix(destination, "#") {
		return destination
	}

	ref, err := url.Parse(destination)
	if err != nil || ref.Scheme != "" {
		return destination
	}
	return r.base.ResolveReference(ref).String()
}

// Transform implements parser.ASTTransformer
func (r *ImageRewriter) Transform(doc *ast.Document, reader text.Reader, pc parser.Context) {
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if img, ok := n.(*ast.Image); ok {
			img.Destination = []byte(r.Rewrite(string(img.Destination)))
		}
		return ast.WalkContinue, nil
	})
}

// NewHTMLMarkdown returns a goldmark instance for rendering slide content to
// HTML. With a non-empty imageBaseURL relative images are rewritten.
func NewHTMLMarkdown(imageBaseURL string) (goldmark.Markdown, error) {
	parserOptions := []parser.Option{parser.WithAutoHeadingID()}

	if imageBaseURL != "" {
		rewriter, err := NewImageRewriter(imageBaseURL)
		if err != nil {
			return nil, err
		}
		parserOptions = append(parserOptions, parser.WithASTTransformers(util.Prioritized(rewriter, 100)))
	}

	return goldmark.New(
		goldmark.WithExtensions(
			extension.GFM,           // GitHub Flavored Markdown
			extension.Typographer,   // Smart punctuation
			extension.Strikethrough, // ~~strikethrough~~
		),
		goldmark.WithParserOptions(parserOptions...),
	), nil
}

// Ensure ImageRewriter implements parser.ASTTransformer
var _ parser.ASTTransformer = (*ImageRewriter)(nil)
