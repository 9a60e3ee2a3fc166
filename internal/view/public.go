package view

import (
	"strconv"
	"strings"
	"time"

	"github.com/ehr/emergency-view/internal/domain/emergency"
)

const placeholder = "--"

// LastUpdatedLayout formats the vitals timestamp.
const LastUpdatedLayout = "Jan 2, 2006, 3:04:05 PM MST"

// Severity ranks an allergy. Higher is more dangerous.
type Severity int

const (
	SeverityUnknown Severity = iota
	SeverityMild
	SeverityModerate
	SeveritySevere
	SeverityCritical
)

// ParseSeverity maps a free-text severity to its rank. It is total:
// unrecognized and empty values rank as SeverityUnknown.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SeverityCritical
	case "severe":
		return SeveritySevere
	case "moderate":
		return SeverityModerate
	case "mild":
		return SeverityMild
	default:
		return SeverityUnknown
	}
}

// BadgeClass is the visual class of a severity badge.
func (s Severity) BadgeClass() string {
	switch s {
	case SeverityCritical:
		return "badge red"
	case SeveritySevere:
		return "badge orange"
	case SeverityModerate:
		return "badge yellow"
	case SeverityMild:
		return "badge green"
	default:
		return "badge gray"
	}
}

type Badge struct {
	Label string   `json:"label"`
	Title string   `json:"title"`
	Class string   `json:"class"`
	Rank  Severity `json:"rank"`
}

type AllergiesView struct {
	Badges []Badge `json:"badges"`
	// Empty holds the text shown instead of badges, or "".
	Empty string `json:"empty,omitempty"`
}

type Action struct {
	Label string `json:"label"`
	Href  string `json:"href"`
}

type ContactView struct {
	Name         string   `json:"name"`
	Relationship string   `json:"relationship"`
	Phone        string   `json:"phone"`
	CallActions  []Action `json:"call_actions"`
}

type VitalTile struct {
	Key      string `json:"key"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Unit     string `json:"unit"`
	Abnormal bool   `json:"abnormal,omitempty"`
}

type VitalsView struct {
	Tiles       []VitalTile `json:"tiles"`
	LastUpdated string      `json:"last_updated"`
}

// PublicView is the view-model of the public emergency summary.
type PublicView struct {
	BloodType    string        `json:"blood_type"`
	Allergies    AllergiesView `json:"allergies"`
	Contact      ContactView   `json:"contact"`
	CallNow      *Action       `json:"call_now,omitempty"`
	Instructions string        `json:"instructions"`
	// Vitals is nil when the record carries no vitals; the card is hidden.
	Vitals *VitalsView `json:"vitals,omitempty"`
}

// RenderPublic projects rec into a PublicView. Absent fields become
// placeholders or are omitted; a nil record renders as all placeholders.
// now stands in for a missing or unreadable vitals timestamp.
func RenderPublic(rec *emergency.Record, now time.Time) PublicView {
	if rec == nil {
		rec = &emergency.Record{}
	}
	v := PublicView{
		BloodType:    strOr(rec.BloodType, placeholder) + strOr(rec.RhFactor, ""),
		Allergies:    renderAllergies(rec.Allergies),
		Contact:      ContactView{Name: placeholder, Phone: placeholder, CallActions: []Action{}},
		Instructions: strOr(rec.ShortInstructions, ""),
	}

	if c := rec.EmergencyContact; c != nil {
		v.Contact.Name = strOr(c.Name, placeholder)
		v.Contact.Relationship = strOr(c.Relationship, "")
		v.Contact.Phone = strOr(c.Phone, placeholder)
		if phone := strOr(c.Phone, ""); phone != "" {
			href := "tel:" + phone
			v.Contact.CallActions = append(v.Contact.CallActions, Action{Label: "CALL " + phone, Href: href})
			v.CallNow = &Action{Label: "CALL NOW", Href: href}
		}
	}

	if rec.LastVitals != nil {
		v.Vitals = renderVitals(rec.LastVitals, rec.VitalRanges, now)
	}
	return v
}

func renderAllergies(allergies []emergency.Allergy) AllergiesView {
	if len(allergies) == 0 {
		return AllergiesView{Badges: []Badge{}, Empty: "None reported"}
	}
	badges := make([]Badge, 0, len(allergies))
	for _, a := range allergies {
		sev := strOr(a.Severity, "")
		rank := ParseSeverity(sev)
		initial := "U"
		if sev != "" {
			initial = strings.ToUpper(string([]rune(sev)[:1]))
		}
		badges = append(badges, Badge{
			Label: strOr(a.Allergen, "Unknown") + " (" + initial + ")",
			Title: strOr(a.Reaction, "No reaction provided"),
			Class: rank.BadgeClass(),
			Rank:  rank,
		})
	}
	return AllergiesView{Badges: badges}
}

func renderVitals(lv *emergency.Vitals, ranges *emergency.VitalRanges, now time.Time) *VitalsView {
	if ranges == nil {
		ranges = &emergency.VitalRanges{}
	}
	tiles := []VitalTile{}

	if present(lv.HeartRate) {
		tiles = append(tiles, VitalTile{
			Key: "heart_rate", Label: "Heart Rate", Value: num(*lv.HeartRate), Unit: "bpm",
			Abnormal: below(lv.HeartRate, ranges.HeartRateMin) || above(lv.HeartRate, ranges.HeartRateMax),
		})
	}
	if present(lv.Temperature) {
		tiles = append(tiles, VitalTile{
			Key: "temperature", Label: "Temperature", Value: num(*lv.Temperature), Unit: "°C",
			Abnormal: below(lv.Temperature, ranges.TemperatureMin) || above(lv.Temperature, ranges.TemperatureMax),
		})
	}
	if present(lv.BloodPressureSystolic) {
		dia := placeholder
		if present(lv.BloodPressureDiastolic) {
			dia = num(*lv.BloodPressureDiastolic)
		}
		tiles = append(tiles, VitalTile{
			Key: "blood_pressure", Label: "Blood Pressure", Value: num(*lv.BloodPressureSystolic) + "/" + dia, Unit: "mmHg",
			Abnormal: above(lv.BloodPressureSystolic, ranges.BloodPressureSystolic) ||
				above(lv.BloodPressureDiastolic, ranges.BloodPressureDiastolic),
		})
	}
	if present(lv.OxygenSaturation) {
		tiles = append(tiles, VitalTile{Key: "oxygen_saturation", Label: "O₂ Saturation", Value: num(*lv.OxygenSaturation), Unit: "%"})
	}
	if present(lv.RespiratoryRate) {
		tiles = append(tiles, VitalTile{Key: "respiratory_rate", Label: "Respiratory Rate", Value: num(*lv.RespiratoryRate), Unit: "breaths/min"})
	}

	updated := now
	if ts := strOr(lv.Timestamp, ""); ts != "" {
		if t, err := time.Parse(time.RFC3339, ts); err == nil {
			updated = t
		}
	}
	return &VitalsView{Tiles: tiles, LastUpdated: "Last Updated: " + updated.Format(LastUpdatedLayout)}
}

func strOr(s *string, def string) string {
	if s == nil || *s == "" {
		return def
	}
	return *s
}

// present mirrors the truthiness check of the page: zero counts as absent.
func present(f *float64) bool { return f != nil && *f != 0 }

func num(f float64) string { return strconv.FormatFloat(f, 'f', -1, 64) }

func below(v, lo *float64) bool { return present(v) && lo != nil && *v < *lo }
func above(v, hi *float64) bool { return present(v) && hi != nil && *v > *hi }
