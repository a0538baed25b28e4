package config

import (
	"io"

	"github.com/BurntSushi/toml"

	"github.com/fredcamaral/slidiff/internal/domain/entities"
)

// Encode writes config as indented TOML
func Encode(w io.Writer, config *entities.Config) error {
	encoder := toml.NewEncoder(w)
	encoder.Indent = "  "
	return encoder.Encode(config)
}
