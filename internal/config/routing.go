package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kirillkom/fleetdocs/internal/core/domain"
)

// Routing is the file-driven filing policy: per-category destination paths,
// chunking overrides and credential classes. The hierarchy is user-managed,
// so none of it is hardcoded.
type Routing struct {
	DefaultCredentialClass string
	Table                  domain.RouteTable
}

type routingFile struct {
	DefaultCredentialClass string                   `yaml:"default_credential_class"`
	Categories             map[string]categoryRoute `yaml:"categories"`
}

type categoryRoute struct {
	Path            []string `yaml:"path"`
	CreateMissing   bool     `yaml:"create_missing"`
	CredentialClass string   `yaml:"credential_class"`
	SplitThreshold  int      `yaml:"split_threshold"`
	ChunkPages      int      `yaml:"chunk_pages"`
}

// LoadRouting reads the filing policy file. Categories without explicit
// chunk settings inherit defaultChunk.
func LoadRouting(path string, defaultChunk domain.ChunkPolicy) (Routing, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("read routing file: %w", err)
	}
	return parseRouting(data, defaultChunk)
}

func parseRouting(data []byte, defaultChunk domain.ChunkPolicy) (Routing, error) {
	var file routingFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Routing{}, fmt.Errorf("parse routing yaml: %w", err)
	}
	if len(file.Categories) == 0 {
		return Routing{}, fmt.Errorf("routing file declares no categories")
	}

	table := make(domain.RouteTable, len(file.Categories))
	for name, route := range file.Categories {
		category, ok := domain.ParseCategory(name)
		if !ok {
			return Routing{}, fmt.Errorf("unknown document category %q", name)
		}
		if len(route.Path) == 0 {
			return Routing{}, fmt.Errorf("category %q has an empty path", name)
		}
		for _, seg := range route.Path {
			if seg == "" {
				return Routing{}, fmt.Errorf("category %q has an empty path segment", name)
			}
		}

		chunk := domain.ChunkPolicy{
			SplitThreshold: route.SplitThreshold,
			ChunkPages:     route.ChunkPages,
		}
		if chunk.SplitThreshold <= 0 {
			chunk.SplitThreshold = defaultChunk.SplitThreshold
		}
		if chunk.ChunkPages <= 0 {
			chunk.ChunkPages = defaultChunk.ChunkPages
		}
		table[category] = domain.CategoryRoute{
			PathSegments:    route.Path,
			CreateMissing:   route.CreateMissing,
			Chunk:           chunk.Normalize(),
			CredentialClass: route.CredentialClass,
		}
	}

	defaultClass := file.DefaultCredentialClass
	if defaultClass == "" {
		defaultClass = "fleet"
	}
	return Routing{
		DefaultCredentialClass: defaultClass,
		Table:                  table,
	}, nil
}

// CredentialClasses returns the class for every routed category, falling
// back to the default. Used to wire the gateway selector.
func (r Routing) CredentialClasses() map[domain.DocumentCategory]string {
	out := make(map[domain.DocumentCategory]string, len(r.Table))
	for category, route := range r.Table {
		class := route.CredentialClass
		if class == "" {
			class = r.DefaultCredentialClass
		}
		out[category] = class
	}
	return out
}
