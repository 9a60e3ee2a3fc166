package fullrecord

// referenceRecord is the bundled document served when no per-token record
// exists. It describes the same patient as the demo emergency record.
var referenceRecord = Record{Sections: []Section{
	{ID: "demographics", Title: "Demographics", Layout: LayoutFields, Items: []Item{
		{Label: "Full Name", Value: "Demo Person"},
		{Label: "Date of Birth", Value: "1990-01-01"},
		{Label: "Sex", Value: "Male"},
		{Label: "National ID", Value: "1234"},
		{Label: "Blood Type", Value: "A+"},
		{Label: "Primary Physician", Value: "Dr. Sara Mansour"},
	}},
	{ID: "chief-complaint", Title: "Chief Complaint", Layout: LayoutFields, Items: []Item{
		{Label: "Complaint", Value: "Shortness of breath and wheezing"},
		{Label: "Onset", Value: "2 hours prior to presentation"},
	}},
	{ID: "present-illness", Title: "History of Present Illness", Layout: LayoutFields, Items: []Item{
		{Label: "Narrative", Value: "Progressive dyspnea after outdoor exercise; partial relief with two puffs of salbutamol."},
		{Label: "Triggers", Value: "Cold air, exercise, pollen"},
	}},
	{ID: "past-medical-history", Title: "Past Medical History", Layout: LayoutList, Items: []Item{
		{Label: "Asthma", Value: "Diagnosed 2004, moderate persistent"},
		{Label: "Allergic rhinitis", Value: "Seasonal"},
		{Label: "Appendectomy", Value: "2012"},
	}},
	{ID: "medications", Title: "Medications", Layout: LayoutList, Items: []Item{
		{Label: "Salbutamol (Ventolin) inhaler", Value: "100 mcg, 2 puffs as needed"},
		{Label: "Budesonide/formoterol inhaler", Value: "160/4.5 mcg, 2 puffs twice daily"},
		{Label: "Cetirizine", Value: "10 mg once daily"},
	}},
	{ID: "allergies", Title: "Allergies", Layout: LayoutList, Items: []Item{
		{Label: "Peanuts", Value: "Anaphylaxis (critical)"},
		{Label: "Penicillin", Value: "Rash (severe)"},
	}},
	{ID: "family-history", Title: "Family History", Layout: LayoutFields, Items: []Item{
		{Label: "Father", Value: "Hypertension"},
		{Label: "Mother", Value: "Asthma"},
	}},
	{ID: "social-history", Title: "Social History", Layout: LayoutFields, Items: []Item{
		{Label: "Tobacco", Value: "Never"},
		{Label: "Alcohol", Value: "None"},
		{Label: "Occupation", Value: "Student"},
	}},
	{ID: "physical-exam", Title: "Physical Examination", Layout: LayoutFields, Items: []Item{
		{Label: "General", Value: "Alert, mild respiratory distress"},
		{Label: "Chest", Value: "Bilateral expiratory wheeze"},
		{Label: "Cardiovascular", Value: "Regular rhythm, no murmurs"},
	}},
	{ID: "labs", Title: "Laboratory Results", Layout: LayoutList, Items: []Item{
		{Label: "CBC", Value: "Eosinophils 6% (mildly elevated)"},
		{Label: "Total IgE", Value: "310 IU/mL"},
		{Label: "Peak expiratory flow", Value: "68% of predicted"},
	}},
	{ID: "imaging", Title: "Imaging", Layout: LayoutList, Items: []Item{
		{Label: "Chest X-ray", Value: "Hyperinflation, no consolidation"},
	}},
	{ID: "assessment-plan", Title: "Assessment & Plan", Layout: LayoutSteps, Items: []Item{
		{Label: "Assessment", Value: "Acute asthma exacerbation, moderate"},
		{Label: "Bronchodilator", Value: "Salbutamol nebulizer every 20 minutes for 1 hour"},
		{Label: "Steroids", Value: "Prednisolone 40 mg orally for 5 days"},
		{Label: "Avoid", Value: "Penicillin-class antibiotics"},
		{Label: "Follow-up", Value: "Pulmonology review within 1 week"},
	}},
}}

// Reference returns a copy of the bundled reference document.
func Reference() *Record {
	return referenceRecord.Clone()
}
