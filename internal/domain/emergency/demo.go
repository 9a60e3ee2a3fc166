package emergency

import "time"

// DemoToken is the share token under which the in-memory repository serves
// the demo record.
const DemoToken = "demo"

const demoInstructions = "I am asthmatic. Always keep my inhaler nearby. In case of attack, use Ventolin Inhaler.\n" +
	" Do not give me any medication containing penicillin.\n" +
	"Contact my father immediately and take me to nearest hospital.\n" +
	" If I appear to have difficulty breathing or wheezing, assume it is an asthma attack. Please:\n" +
	" 1- Assist me in sitting upright and provide access to my Ventolin inhaler (usually kept in my backpack).\n" +
	"2- Administer two puffs, and wait for response. If no improvement within 10 minutes, administer two more puffs.\n" +
	"3- If breathing does not stabilize, call emergency services (123 in Egypt) immediately and transport me to the nearest hospital."

// DemoRecord returns a fresh copy of the bundled demo record. The vitals
// timestamp is the time of the call.
func DemoRecord() *Record {
	return &Record{
		BloodType: ptrStr("A"),
		RhFactor:  ptrStr("+"),
		EmergencyContact: &EmergencyContact{
			Name:         ptrStr("John Doe"),
			Relationship: ptrStr("Brother"),
			Phone:        ptrStr("+201206593899"),
		},
		Allergies: []Allergy{
			{Allergen: ptrStr("Peanuts"), Reaction: ptrStr("Anaphylaxis"), Severity: ptrStr("critical")},
			{Allergen: ptrStr("Penicillin"), Reaction: ptrStr("Rash"), Severity: ptrStr("severe")},
		},
		ShortInstructions: ptrStr(demoInstructions),
		LastVitals: &Vitals{
			HeartRate:              ptrFloat(88),
			Temperature:            ptrFloat(37.2),
			BloodPressureSystolic:  ptrFloat(130),
			BloodPressureDiastolic: ptrFloat(85),
			OxygenSaturation:       ptrFloat(96),
			RespiratoryRate:        ptrFloat(18),
			Timestamp:              ptrStr(time.Now().UTC().Format(time.RFC3339)),
		},
		VitalRanges: &VitalRanges{
			HeartRateMin:           ptrFloat(60),
			HeartRateMax:           ptrFloat(100),
			TemperatureMin:         ptrFloat(36.1),
			TemperatureMax:         ptrFloat(37.2),
			BloodPressureSystolic:  ptrFloat(120),
			BloodPressureDiastolic: ptrFloat(80),
		},
	}
}
