package fullrecord

import (
	"context"
	"testing"
)

func TestReference_TwelveSectionsInOrder(t *testing.T) {
	rec := Reference()
	want := []string{
		"demographics", "chief-complaint", "present-illness", "past-medical-history",
		"medications", "allergies", "family-history", "social-history",
		"physical-exam", "labs", "imaging", "assessment-plan",
	}
	if len(rec.Sections) != len(want) {
		t.Fatalf("expected %d sections, got %d", len(want), len(rec.Sections))
	}
	for i, id := range want {
		if rec.Sections[i].ID != id {
			t.Errorf("section %d: expected %q, got %q", i, id, rec.Sections[i].ID)
		}
	}
	if rec.Sections[11].Layout != LayoutSteps {
		t.Errorf("expected plan section to be numbered steps, got %s", rec.Sections[11].Layout)
	}
}

func TestReference_ReturnsIndependentCopies(t *testing.T) {
	a := Reference()
	a.Sections[0].Items[0].Value = "changed"
	a.Sections = a.Sections[:1]

	b := Reference()
	if len(b.Sections) != 12 {
		t.Fatalf("expected 12 sections, got %d", len(b.Sections))
	}
	if b.Sections[0].Items[0].Value != "Demo Person" {
		t.Errorf("reference document was mutated: %q", b.Sections[0].Items[0].Value)
	}
}

func TestStaticSource_Get(t *testing.T) {
	rec, err := NewStaticSource().Get(context.Background(), "any-token")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Sections) != 12 {
		t.Errorf("expected 12 sections, got %d", len(rec.Sections))
	}
}

func TestRecord_CloneNil(t *testing.T) {
	var r *Record
	if r.Clone() != nil {
		t.Error("expected nil clone of nil record")
	}
}

func TestDecode(t *testing.T) {
	rec, err := Decode([]byte(`{"sections":[
		{"id":"meds","title":"Medications","items":[{"label":"Aspirin","value":"81 mg"}]},
		{"id":"plan","title":"Plan","layout":"steps","items":[{"label":"Rest"}]}
	]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rec.Sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(rec.Sections))
	}
	if rec.Sections[0].Layout != LayoutFields || rec.Sections[1].Layout != LayoutSteps {
		t.Errorf("unexpected layouts: %s, %s", rec.Sections[0].Layout, rec.Sections[1].Layout)
	}
}

func TestDecode_Invalid(t *testing.T) {
	tests := map[string]string{
		"not json":       `nope`,
		"no sections":    `{"sections":[]}`,
		"missing id":     `{"sections":[{"title":"X"}]}`,
		"unknown layout": `{"sections":[{"id":"x","title":"X","layout":"grid"}]}`,
	}
	for name, body := range tests {
		if _, err := Decode([]byte(body)); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
