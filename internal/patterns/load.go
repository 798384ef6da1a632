package patterns

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Load decodes a YAML definition and compiles it
func Load(r io.Reader, logger *zap.Logger) (*Library, error) {
	var def Definition
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&def); err != nil {
		return nil, fmt.Errorf("decode pattern library: %w", err)
	}
	if def.Version == "" {
		return nil, fmt.Errorf("pattern library has no version")
	}
	return Compile(def, logger), nil
}

// LoadFile reads a YAML definition from disk
func LoadFile(path string, logger *zap.Logger) (*Library, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open pattern library: %w", err)
	}
	defer func() { _ = f.Close() }()

	lib, err := Load(f, logger)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return lib, nil
}

// Export writes the library definition as YAML
func Export(w io.Writer, lib *Library) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(lib.Definition()); err != nil {
		return fmt.Errorf("encode pattern library: %w", err)
	}
	return enc.Close()
}
