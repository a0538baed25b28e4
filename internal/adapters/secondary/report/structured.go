package report

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
	"github.com/fredcamaral/slidiff/internal/domain/ports"
)

// JSONRenderer renders the report document as indented JSON
type JSONRenderer struct{}

// NewJSONRenderer creates a new JSON renderer
func NewJSONRenderer() *JSONRenderer {
	return &JSONRenderer{}
}

// Format implements ports.ReportRenderer
func (r *JSONRenderer) Format() string {
	return entities.FormatJSON
}

// Render writes the JSON report
func (r *JSONRenderer) Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(NewDocument(diff, opts)); err != nil {
		return fmt.Errorf("encoding json: %w", err)
	}
	return nil
}

// YAMLRenderer renders the report document as YAML
type YAMLRenderer struct{}

// NewYAMLRenderer creates a new YAML renderer
func NewYAMLRenderer() *YAMLRenderer {
	return &YAMLRenderer{}
}

// Format implements ports.ReportRenderer
func (r *YAMLRenderer) Format() string {
	return entities.FormatYAML
}

// Render writes the YAML report
func (r *YAMLRenderer) Render(ctx context.Context, w io.Writer, diff *entities.PresentationDiff, opts ports.ReportOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	if err := encoder.Encode(NewDocument(diff, opts)); err != nil {
		return fmt.Errorf("encoding yaml: %w", err)
	}
	return encoder.Close()
}
