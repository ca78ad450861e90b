// Package model loads the pre-trained inference artifacts once per process
// and hands them out read-only.
package model

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Manifest names the artifacts one deployment ships. Relative paths are
// resolved against the manifest's own directory.
type Manifest struct {
	ClassifierPath  string `yaml:"classifier"`
	VectorizerPath  string `yaml:"vectorizer"`
	LabelsPath      string `yaml:"labels"`
	SummarizerModel string `yaml:"summarizer_model"`
}

func LoadManifest(path string) (Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Manifest{}, fmt.Errorf("read artifact manifest: %w", err)
	}

	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return Manifest{}, fmt.Errorf("parse artifact manifest: %w", err)
	}
	if m.ClassifierPath == "" || m.VectorizerPath == "" || m.LabelsPath == "" {
		return Manifest{}, fmt.Errorf("artifact manifest %s must name classifier, vectorizer and labels", path)
	}

	base := filepath.Dir(path)
	m.ClassifierPath = resolve(base, m.ClassifierPath)
	m.VectorizerPath = resolve(base, m.VectorizerPath)
	m.LabelsPath = resolve(base, m.LabelsPath)
	return m, nil
}

func resolve(base, path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(base, path)
}
