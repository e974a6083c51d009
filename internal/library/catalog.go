// Package library is the read-only catalog of archival items that projects import from.
package library

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vox-librorum/vox-desk/internal/projects/domain"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Artifact is a catalog entry. Icon is display-only.
type Artifact struct {
	domain.Resource `yaml:",inline"`
	Icon            string `json:"icon,omitempty" yaml:"icon,omitempty"`
}

// Document is the on-disk catalog layout.
type Document struct {
	Artifacts []Artifact       `yaml:"artifacts"`
	Projects  []domain.Project `yaml:"projects,omitempty"`
}

// Library indexes a catalog document by artifact id.
type Library struct {
	doc   Document
	index map[string]int
}

// Default returns the catalog compiled into the binary.
func Default() (*Library, error) {
	return Parse(defaultCatalog)
}

// Load reads a catalog file. An empty path yields the default catalog.
func Load(path string) (*Library, error) {
	if path == "" {
		return Default()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML catalog and rejects blank or repeated artifact ids.
func Parse(data []byte) (*Library, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}

	index := make(map[string]int, len(doc.Artifacts))
	for i, a := range doc.Artifacts {
		if strings.TrimSpace(a.ID) == "" {
			return nil, fmt.Errorf("catalog entry %d has no id", i)
		}
		if _, dup := index[a.ID]; dup {
			return nil, fmt.Errorf("catalog id %q repeated", a.ID)
		}
		index[a.ID] = i
	}
	return &Library{doc: doc, index: index}, nil
}

// List returns every artifact in catalog order.
func (l *Library) List() []Artifact {
	out := make([]Artifact, len(l.doc.Artifacts))
	for i, a := range l.doc.Artifacts {
		out[i] = a.clone()
	}
	return out
}

// Get returns the resource for a catalog id.
func (l *Library) Get(id string) (domain.Resource, bool) {
	i, ok := l.index[id]
	if !ok {
		return domain.Resource{}, false
	}
	return l.doc.Artifacts[i].Resource.Clone(), true
}

// Search matches query case-insensitively against id, title, summary and tags.
// A non-empty typ restricts results to that type.
func (l *Library) Search(query, typ string) []Artifact {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Artifact, 0, len(l.doc.Artifacts))
	for _, a := range l.doc.Artifacts {
		if typ != "" && !strings.EqualFold(a.Type, typ) {
			continue
		}
		if q != "" && !a.matches(q) {
			continue
		}
		out = append(out, a.clone())
	}
	return out
}

// DemoProjects returns fresh copies of the seed investigations.
func (l *Library) DemoProjects() []domain.Project {
	out := make([]domain.Project, len(l.doc.Projects))
	for i, p := range l.doc.Projects {
		out[i] = p.Clone()
	}
	return out
}

// Len is the number of catalog artifacts.
func (l *Library) Len() int { return len(l.doc.Artifacts) }

func (a Artifact) matches(q string) bool {
	fields := []string{a.ID, a.Title, a.Summary}
	fields = append(fields, a.Tags...)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), q) {
			return true
		}
	}
	return false
}

func (a Artifact) clone() Artifact {
	a.Resource = a.Resource.Clone()
	return a
}
