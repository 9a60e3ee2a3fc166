package emergency

// Record is the public, safety-critical summary reachable through a share
// token. Every field is optional; renderers check presence before use.
type Record struct {
	BloodType         *string           `json:"blood_type,omitempty"`
	RhFactor          *string           `json:"rh_factor,omitempty"`
	EmergencyContact  *EmergencyContact `json:"emergency_contact,omitempty"`
	Allergies         []Allergy         `json:"allergies,omitempty"`
	ShortInstructions *string           `json:"short_instructions,omitempty"`
	LastVitals        *Vitals           `json:"last_vitals,omitempty"`
	VitalRanges       *VitalRanges      `json:"vital_ranges,omitempty"`
}

type EmergencyContact struct {
	Name         *string `json:"name,omitempty"`
	Relationship *string `json:"relationship,omitempty"`
	Phone        *string `json:"phone,omitempty"`
}

type Allergy struct {
	Allergen *string `json:"allergen,omitempty"`
	Reaction *string `json:"reaction,omitempty"`
	Severity *string `json:"severity,omitempty"`
}

// Vitals holds the most recent measurement set. Timestamp is kept as the raw
// string reported by the record endpoint; it is parsed when rendered.
type Vitals struct {
	HeartRate              *float64 `json:"heart_rate,omitempty"`
	Temperature            *float64 `json:"temperature,omitempty"`
	BloodPressureSystolic  *float64 `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *float64 `json:"blood_pressure_diastolic,omitempty"`
	OxygenSaturation       *float64 `json:"oxygen_saturation,omitempty"`
	RespiratoryRate        *float64 `json:"respiratory_rate,omitempty"`
	Timestamp              *string  `json:"timestamp,omitempty"`
}

// VitalRanges are the patient-specific normal bounds. Blood pressure values
// are upper limits.
type VitalRanges struct {
	HeartRateMin           *float64 `json:"heart_rate_min,omitempty"`
	HeartRateMax           *float64 `json:"heart_rate_max,omitempty"`
	TemperatureMin         *float64 `json:"temperature_min,omitempty"`
	TemperatureMax         *float64 `json:"temperature_max,omitempty"`
	BloodPressureSystolic  *float64 `json:"blood_pressure_systolic,omitempty"`
	BloodPressureDiastolic *float64 `json:"blood_pressure_diastolic,omitempty"`
}

// View is the envelope served by the record endpoint.
type View struct {
	PublicView      *Record `json:"public_view"`
	IsAuthenticated bool    `json:"is_authenticated"`
}

// Source tells where a fetched record came from.
type Source string

const (
	SourceDemo     Source = "demo"
	SourceAPI      Source = "api"
	SourceFallback Source = "fallback"
)

// FetchResult is what the record fetcher hands back. Record is never nil.
type FetchResult struct {
	Record            *Record `json:"record"`
	AuthenticatedHint bool    `json:"authenticated_hint"`
	Source            Source  `json:"source"`
}

func ptrStr(s string) *string      { return &s }
func ptrFloat(f float64) *float64 { return &f }
