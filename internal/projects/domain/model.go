package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// Resource is an archival item: a catalog artifact or the copy of one held by a project.
// Type only drives display affordances (icon, colour) and never changes behaviour.
type Resource struct {
	ID       string   `json:"id" yaml:"id"`
	Type     string   `json:"type" yaml:"type"`
	Title    string   `json:"title" yaml:"title"`
	Summary  string   `json:"summary,omitempty" yaml:"summary,omitempty"`
	Desc     string   `json:"desc,omitempty" yaml:"desc,omitempty"`
	Tags     []string `json:"tags,omitempty" yaml:"tags,omitempty"`
	Status   string   `json:"status,omitempty" yaml:"status,omitempty"`
	Origin   string   `json:"origin,omitempty" yaml:"origin,omitempty"`
	Date     string   `json:"date,omitempty" yaml:"date,omitempty"`
	Material string   `json:"material,omitempty" yaml:"material,omitempty"`
	Hazard   string   `json:"hazard,omitempty" yaml:"hazard,omitempty"`
	Img      string   `json:"img,omitempty" yaml:"img,omitempty"`
}

// Clone returns a copy that shares no slices with r.
func (r Resource) Clone() Resource {
	if r.Tags != nil {
		r.Tags = append([]string(nil), r.Tags...)
	}
	return r
}

// Project is a user investigation grouping an ordered list of resources.
// Resource order is the workspace display order.
type Project struct {
	ID          string     `json:"id" yaml:"id"`
	Title       string     `json:"title" yaml:"title"`
	Description string     `json:"description" yaml:"description"`
	Resources   []Resource `json:"resources" yaml:"resources"`
	AIContext   string     `json:"aiContext" yaml:"aiContext"`
	CreatedAt   time.Time  `json:"created_at,omitempty" yaml:"-"`
	UpdatedAt   time.Time  `json:"updated_at,omitempty" yaml:"-"`
}

// Clone returns a deep copy of p.
func (p Project) Clone() Project {
	out := p
	out.Resources = make([]Resource, len(p.Resources))
	for i, r := range p.Resources {
		out.Resources[i] = r.Clone()
	}
	return out
}

// Record is the stored and transported form of a project: the resource collection
// travels as serialized JSON text.
type Record struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"ownerId,omitempty"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	ResourcesJSON string    `json:"resources_json"`
	AIContext     string    `json:"aiContext"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewRecord serializes p for storage under ownerID.
func NewRecord(ownerID string, p Project) (Record, error) {
	res := p.Resources
	if res == nil {
		res = []Resource{}
	}
	raw, err := json.Marshal(res)
	if err != nil {
		return Record{}, fmt.Errorf("marshal resources: %w", err)
	}
	return Record{
		ID:            p.ID,
		OwnerID:       ownerID,
		Title:         p.Title,
		Description:   p.Description,
		ResourcesJSON: string(raw),
		AIContext:     p.AIContext,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}, nil
}

// Project parses the serialized resources back into ordered form.
func (r Record) Project() (Project, error) {
	res, err := ParseResources(json.RawMessage(r.ResourcesJSON))
	if err != nil {
		return Project{}, fmt.Errorf("project %s: %w", r.ID, err)
	}
	return Project{
		ID:          r.ID,
		Title:       r.Title,
		Description: r.Description,
		Resources:   res,
		AIContext:   r.AIContext,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}, nil
}

// ParseResources normalizes a resource collection that may arrive either as a JSON
// array or as a JSON string holding a serialized array. Empty input and null yield an
// empty, non-nil list.
func ParseResources(raw json.RawMessage) ([]Resource, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []Resource{}, nil
	}

	if raw[0] == '"' {
		var blob string
		if err := json.Unmarshal(raw, &blob); err != nil {
			return nil, fmt.Errorf("decode resources blob: %w", err)
		}
		return ParseResources(json.RawMessage(blob))
	}

	var out []Resource
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, fmt.Errorf("decode resources: %w", err)
	}
	if out == nil {
		out = []Resource{}
	}
	return out, nil
}
