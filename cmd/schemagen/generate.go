package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	flag "github.com/spf13/pflag"

	"github.com/compozy/unitgen/engine/generator"
	"github.com/compozy/unitgen/engine/schema"
	"github.com/compozy/unitgen/pkg/config"
	"github.com/compozy/unitgen/pkg/jsonio"
)

// GenerateSchemas writes one JSON schema per generator kind, plus the schema of
// the unitgen YAML configuration, into outDir.
func GenerateSchemas(fs afero.Fs, outDir string) ([]string, error) {
	if err := fs.MkdirAll(outDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	var written []string
	write := func(name string, s schema.Schema) error {
		path := filepath.Join(outDir, name+".json")
		if err := jsonio.WriteFileAtomic(fs, path, s); err != nil {
			return fmt.Errorf("failed to write schema for %s: %w", name, err)
		}
		written = append(written, path)
		return nil
	}
	for _, kind := range generator.Kinds {
		gen, err := generator.New(kind, generator.Options{})
		if err != nil {
			return nil, err
		}
		provider, ok := gen.(generator.SchemaProvider)
		if !ok {
			continue
		}
		if err := write(string(kind), provider.Schema()); err != nil {
			return nil, err
		}
	}
	cfgSchema, err := schema.Reflect(&config.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to reflect configuration schema: %w", err)
	}
	if err := write("unitgen-config", cfgSchema); err != nil {
		return nil, err
	}
	return written, nil
}

func main() {
	outDir := flag.StringP("out", "o", "./schemas", "Output directory")
	flag.Parse()
	written, err := GenerateSchemas(afero.NewOsFs(), *outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error generating schemas: %v\n", err)
		os.Exit(1)
	}
	for _, path := range written {
		fmt.Printf("Generated schema: %s\n", path)
	}
}
