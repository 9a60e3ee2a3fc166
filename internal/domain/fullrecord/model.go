package fullrecord

import (
	"encoding/json"
	"fmt"
)

// Layout controls how a section's items are presented.
type Layout string

const (
	// LayoutFields renders label/value pairs.
	LayoutFields Layout = "fields"
	// LayoutList renders a bulleted list (conditions, medications, results).
	LayoutList Layout = "list"
	// LayoutSteps renders a list numbered from 1 (plan steps).
	LayoutSteps Layout = "steps"
)

type Item struct {
	Label string `json:"label"`
	Value string `json:"value,omitempty"`
}

type Section struct {
	ID     string `json:"id"`
	Title  string `json:"title"`
	Layout Layout `json:"layout"`
	Items  []Item `json:"items"`
}

// Record is the detailed medical record unlocked after authentication. Its
// sections are kept in declared order.
type Record struct {
	Sections []Section `json:"sections"`
}

// Clone returns a deep copy of r.
func (r *Record) Clone() *Record {
	if r == nil {
		return nil
	}
	out := &Record{Sections: make([]Section, len(r.Sections))}
	for i, s := range r.Sections {
		s.Items = append([]Item(nil), s.Items...)
		out.Sections[i] = s
	}
	return out
}

// Decode parses a {"sections": [...]} document. Every section needs an id
// and a title; an empty layout means LayoutFields.
func Decode(data []byte) (*Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("decode full record: %w", err)
	}
	if len(rec.Sections) == 0 {
		return nil, fmt.Errorf("full record has no sections")
	}
	for i := range rec.Sections {
		s := &rec.Sections[i]
		if s.ID == "" || s.Title == "" {
			return nil, fmt.Errorf("section %d: id and title are required", i)
		}
		switch s.Layout {
		case "":
			s.Layout = LayoutFields
		case LayoutFields, LayoutList, LayoutSteps:
		default:
			return nil, fmt.Errorf("section %q: unknown layout %q", s.ID, s.Layout)
		}
	}
	return &rec, nil
}
