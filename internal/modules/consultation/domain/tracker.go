package domain

type TrackedPatient struct {
	Patient       string
	Age           int
	Doctor        string
	DiagnosedDate string
	Severity      Severity
}

// Distribution holds severity shares in percent.
type Distribution struct {
	Mild     float64
	Moderate float64
	Severe   float64
}

type Tracker struct {
	Disease      string
	Patients     []TrackedPatient
	Distribution Distribution
}

// NewTracker summarises the patients with an active diagnosis of disease.
// An empty list yields a zero distribution.
func NewTracker(disease string, patients []TrackedPatient) Tracker {
	t := Tracker{Disease: disease, Patients: patients}
	if len(patients) == 0 {
		return t
	}
	var mild, moderate, severe int
	for _, p := range patients {
		switch p.Severity {
		case SeverityMild:
			mild++
		case SeverityModerate:
			moderate++
		case SeveritySevere:
			severe++
		}
	}
	total := float64(len(patients))
	t.Distribution = Distribution{
		Mild:     float64(mild) / total * 100,
		Moderate: float64(moderate) / total * 100,
		Severe:   float64(severe) / total * 100,
	}
	return t
}
