package view

import "github.com/ehr/emergency-view/internal/domain/fullrecord"

type Row struct {
	// Number is the 1-based position in a steps section, 0 elsewhere.
	Number int    `json:"number,omitempty"`
	Label  string `json:"label"`
	Value  string `json:"value"`
}

type SectionView struct {
	ID     string            `json:"id"`
	Title  string            `json:"title"`
	Layout fullrecord.Layout `json:"layout"`
	Rows   []Row             `json:"rows"`
}

// FullRecordView is the view-model of the authenticated record. Message is
// set instead of sections when the record could not be sourced.
type FullRecordView struct {
	Sections []SectionView `json:"sections"`
	Message  string        `json:"message,omitempty"`
}

// RenderFull projects rec into sections in declared order.
func RenderFull(rec *fullrecord.Record) FullRecordView {
	if rec == nil {
		return FullRecordView{Sections: []SectionView{}}
	}
	out := FullRecordView{Sections: make([]SectionView, 0, len(rec.Sections))}
	for _, s := range rec.Sections {
		sv := SectionView{ID: s.ID, Title: s.Title, Layout: s.Layout, Rows: make([]Row, 0, len(s.Items))}
		if sv.Layout == "" {
			sv.Layout = fullrecord.LayoutFields
		}
		for i, it := range s.Items {
			row := Row{Label: it.Label, Value: it.Value}
			if row.Value == "" {
				row.Value = placeholder
			}
			if sv.Layout == fullrecord.LayoutSteps {
				row.Number = i + 1
			}
			sv.Rows = append(sv.Rows, row)
		}
		out.Sections = append(out.Sections, sv)
	}
	return out
}
