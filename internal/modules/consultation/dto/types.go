package dto

type PatientOutput struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

type DiagnosisOutput struct {
	Disease  string `json:"disease"`
	Doctor   string `json:"doctor"`
	Date     string `json:"date"`
	Notes    string `json:"notes,omitempty"`
	Severity string `json:"severity"`
	Status   string `json:"status"`
}

type VitalsOutput struct {
	BloodPressure string `json:"blood_pressure"`
	HeartRate     string `json:"heart_rate"`
	Temperature   string `json:"temperature"`
	Weight        string `json:"weight"`
	Height        string `json:"height"`
	BMI           string `json:"bmi"`
	RecordedAt    string `json:"recorded_at"`
}

type PrescriptionOutput struct {
	Medication string `json:"medication"`
	Dosage     string `json:"dosage"`
	Frequency  string `json:"frequency"`
	Doctor     string `json:"doctor"`
	Duration   string `json:"duration"`
	Date       string `json:"date"`
	Status     string `json:"status"`
	Notes      string `json:"notes,omitempty"`
}

type HistoryOutput struct {
	Condition     string `json:"condition"`
	DateDiagnosed string `json:"date_diagnosed"`
	Resolved      bool   `json:"resolved"`
	Notes         string `json:"notes,omitempty"`
}

// RecordOutput is display-ready. DisplayID is generated per assembly and is
// not a record key.
type RecordOutput struct {
	DisplayID           string               `json:"display_id"`
	Patient             PatientOutput        `json:"patient"`
	ActiveDiagnoses     []DiagnosisOutput    `json:"active_diagnoses"`
	Diagnoses           []DiagnosisOutput    `json:"diagnoses"`
	Vitals              []VitalsOutput       `json:"vitals"`
	ActivePrescriptions []PrescriptionOutput `json:"active_prescriptions"`
	Prescriptions       []PrescriptionOutput `json:"prescriptions"`
	History             []HistoryOutput      `json:"history"`
}

// Patient fields are optional on every input; blank means the patient
// currently open in the consultation panel.
type VitalsInput struct {
	Patient       string `validate:"max=120"`
	BloodPressure string `validate:"max=20"`
	HeartRate     string `validate:"omitempty,numeric"`
	Temperature   string `validate:"omitempty,numeric"`
	Weight        string `validate:"omitempty,numeric"`
	Height        string `validate:"omitempty,numeric"`
	Notes         string
}

type DiagnosisInput struct {
	Patient  string `validate:"max=120"`
	Disease  string `validate:"required,max=120"`
	Doctor   string
	Severity string `validate:"omitempty,oneof=mild moderate severe"`
	Notes    string
}

type StatusInput struct {
	Patient string `validate:"max=120"`
	Disease string `validate:"required,max=120"`
	Status  string `validate:"required,oneof=active resolved chronic"`
	Notes   string
}

type PrescriptionInput struct {
	Patient    string `validate:"max=120"`
	Medication string `validate:"required"`
	Dosage     string `validate:"required"`
	Frequency  string `validate:"required"`
	Doctor     string
	Duration   string
	Notes      string
}

type MutationOutput struct {
	Message string       `json:"message"`
	Record  RecordOutput `json:"record"`
}

type TrackedPatientOutput struct {
	Patient       string `json:"patient_name"`
	Age           int    `json:"age"`
	Doctor        string `json:"doctor"`
	DiagnosedDate string `json:"diagnosed_date"`
	Severity      string `json:"severity"`
}

type TrackerOutput struct {
	Disease  string                 `json:"disease"`
	Patients []TrackedPatientOutput `json:"patients"`
	Mild     float64                `json:"mild_percent"`
	Moderate float64                `json:"moderate_percent"`
	Severe   float64                `json:"severe_percent"`
}
