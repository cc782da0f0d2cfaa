package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	_ "modernc.org/sqlite"

	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/clock"
	apperrors "medgraph/internal/platform/errors"
)

const timeLayout = "2006-01-02T15:04:05.000000"

// Store is an embedded records service for offline and demo use. It applies
// the same existence and duplicate checks as the hosted service.
type Store struct {
	db    *sql.DB
	clock clock.Clock
}

var _ backend.Backend = (*Store)(nil)

func Open(dbPath string, clk clock.Clock) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	s := &Store{db: db, clock: clk}
	if err := s.ensureSchema(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
PRAGMA foreign_keys = ON;
CREATE TABLE IF NOT EXISTS persons (
  name TEXT PRIMARY KEY,
  age INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS diseases (
  name TEXT PRIMARY KEY,
  description TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS relationships (
  person TEXT NOT NULL REFERENCES persons(name),
  disease TEXT NOT NULL REFERENCES diseases(name),
  PRIMARY KEY (person, disease)
);
CREATE TABLE IF NOT EXISTS diagnoses (
  person TEXT NOT NULL REFERENCES persons(name),
  disease TEXT NOT NULL REFERENCES diseases(name),
  doctor TEXT NOT NULL,
  date TEXT NOT NULL,
  notes TEXT NOT NULL DEFAULT '',
  severity TEXT NOT NULL,
  status TEXT NOT NULL,
  updated_at TEXT NOT NULL DEFAULT '',
  resolution_notes TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS vitals (
  person TEXT NOT NULL REFERENCES persons(name),
  blood_pressure TEXT NOT NULL DEFAULT '',
  heart_rate TEXT NOT NULL DEFAULT '',
  temperature TEXT NOT NULL DEFAULT '',
  weight TEXT NOT NULL DEFAULT '',
  height TEXT NOT NULL DEFAULT '',
  bmi TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  recorded_at TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS prescriptions (
  person TEXT NOT NULL REFERENCES persons(name),
  medication TEXT NOT NULL,
  dosage TEXT NOT NULL DEFAULT '',
  frequency TEXT NOT NULL DEFAULT '',
  doctor TEXT NOT NULL DEFAULT '',
  duration TEXT NOT NULL DEFAULT '',
  notes TEXT NOT NULL DEFAULT '',
  prescribed_date TEXT NOT NULL,
  status TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS history (
  person TEXT NOT NULL REFERENCES persons(name),
  condition TEXT NOT NULL,
  date_diagnosed TEXT NOT NULL,
  resolved INTEGER NOT NULL DEFAULT 0,
  notes TEXT NOT NULL DEFAULT ''
);
CREATE INDEX IF NOT EXISTS idx_diagnoses_disease ON diagnoses(disease, status);
`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

func (s *Store) now() string {
	return s.clock.Now().Format(timeLayout)
}

func (s *Store) ListPersons(ctx context.Context) ([]backend.Person, error) {
	return s.queryPersons(ctx, `SELECT name, age FROM persons ORDER BY name`)
}

func (s *Store) SearchPersons(ctx context.Context, query string) ([]backend.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []backend.Person{}, nil
	}
	return s.queryPersons(ctx, `
SELECT name, age FROM persons
WHERE instr(lower(name), lower(?)) > 0
ORDER BY name
LIMIT ?`, query, backend.SearchLimit)
}

func (s *Store) queryPersons(ctx context.Context, query string, args ...any) ([]backend.Person, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query persons: %w", err)
	}
	defer rows.Close()
	out := make([]backend.Person, 0)
	for rows.Next() {
		var p backend.Person
		if err := rows.Scan(&p.Name, &p.Age); err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate persons: %w", err)
	}
	return out, nil
}

func (s *Store) ListDiseases(ctx context.Context) ([]backend.Disease, error) {
	return s.queryDiseases(ctx, `SELECT name, description FROM diseases ORDER BY name`)
}

func (s *Store) PersonDiseases(ctx context.Context, person string) ([]backend.Disease, error) {
	return s.queryDiseases(ctx, `
SELECT d.name, d.description
FROM relationships r
JOIN diseases d ON d.name = r.disease
WHERE r.person = ?
ORDER BY r.rowid`, person)
}

func (s *Store) queryDiseases(ctx context.Context, query string, args ...any) ([]backend.Disease, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query diseases: %w", err)
	}
	defer rows.Close()
	out := make([]backend.Disease, 0)
	for rows.Next() {
		var d backend.Disease
		if err := rows.Scan(&d.Name, &d.Description); err != nil {
			return nil, fmt.Errorf("scan disease: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate diseases: %w", err)
	}
	return out, nil
}

func (s *Store) exists(ctx context.Context, table, name string) (bool, error) {
	var n int
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE name = ?", table)
	if err := s.db.QueryRowContext(ctx, query, name).Scan(&n); err != nil {
		return false, fmt.Errorf("check %s: %w", table, err)
	}
	return n > 0, nil
}

func (s *Store) CreatePerson(ctx context.Context, name string, age int) (backend.Result, error) {
	found, err := s.exists(ctx, "persons", name)
	if err != nil {
		return backend.Result{}, err
	}
	if found {
		return rejected("Person '%s' already exists", name), nil
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO persons (name, age) VALUES (?, ?)`, name, age); err != nil {
		return backend.Result{}, fmt.Errorf("insert person: %w", err)
	}
	return ok("Successfully created person '%s'", name), nil
}

func (s *Store) CreateDisease(ctx context.Context, name, description string) (backend.Result, error) {
	found, err := s.exists(ctx, "diseases", name)
	if err != nil {
		return backend.Result{}, err
	}
	if found {
		return rejected("Disease '%s' already exists", name), nil
	}
	if _, err := s.db.ExecContext(ctx, `INSERT INTO diseases (name, description) VALUES (?, ?)`, name, description); err != nil {
		return backend.Result{}, fmt.Errorf("insert disease: %w", err)
	}
	return ok("Successfully created disease '%s'", name), nil
}

func (s *Store) CreateRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	if found, err := s.exists(ctx, "persons", person); err != nil {
		return backend.Result{}, err
	} else if !found {
		return rejected("Person '%s' does not exist", person), nil
	}
	if found, err := s.exists(ctx, "diseases", disease); err != nil {
		return backend.Result{}, err
	} else if !found {
		return rejected("Disease '%s' does not exist", disease), nil
	}
	res, err := s.db.ExecContext(ctx, `
INSERT INTO relationships (person, disease) VALUES (?, ?)
ON CONFLICT(person, disease) DO NOTHING`, person, disease)
	if err != nil {
		return backend.Result{}, fmt.Errorf("insert relationship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rejected("Relationship already exists between '%s' and '%s'", person, disease), nil
	}
	return ok("Successfully created relationship between '%s' and '%s'", person, disease), nil
}

func (s *Store) DeleteRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM relationships WHERE person = ? AND disease = ?`, person, disease)
	if err != nil {
		return backend.Result{}, fmt.Errorf("delete relationship: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rejected("No relationship exists between '%s' and '%s'", person, disease), nil
	}
	return ok("Successfully removed relationship between '%s' and '%s'", person, disease), nil
}

func (s *Store) RecordVitals(ctx context.Context, person string, v backend.VitalsInput) (backend.Result, error) {
	if found, err := s.exists(ctx, "persons", person); err != nil {
		return backend.Result{}, err
	} else if !found {
		return rejected("Patient '%s' not found", person), nil
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO vitals (person, blood_pressure, heart_rate, temperature, weight, height, bmi, notes, recorded_at)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		person, v.BloodPressure, v.HeartRate, v.Temperature, v.Weight, v.Height, rawBMI(v.Weight, v.Height), v.Notes, s.now())
	if err != nil {
		return backend.Result{}, fmt.Errorf("insert vitals: %w", err)
	}
	return ok("Vital signs recorded successfully"), nil
}

func (s *Store) AddDiagnosis(ctx context.Context, d backend.DiagnosisInput) (backend.Result, error) {
	personFound, err := s.exists(ctx, "persons", d.Patient)
	if err != nil {
		return backend.Result{}, err
	}
	diseaseFound, err := s.exists(ctx, "diseases", d.Disease)
	if err != nil {
		return backend.Result{}, err
	}
	if !personFound || !diseaseFound {
		return rejected("Patient or disease not found"), nil
	}
	severity := d.Severity
	if severity == "" {
		severity = "moderate"
	}
	_, err = s.db.ExecContext(ctx, `
INSERT INTO diagnoses (person, disease, doctor, date, notes, severity, status)
VALUES (?, ?, ?, ?, ?, ?, 'active')`, d.Patient, d.Disease, d.Doctor, s.now(), d.Notes, severity)
	if err != nil {
		return backend.Result{}, fmt.Errorf("insert diagnosis: %w", err)
	}
	return ok("Diagnosis created successfully"), nil
}

func (s *Store) UpdateDiagnosisStatus(ctx context.Context, u backend.StatusUpdate) (backend.Result, error) {
	res, err := s.db.ExecContext(ctx, `
UPDATE diagnoses
SET status = ?, updated_at = ?,
    resolution_notes = CASE WHEN ? <> '' THEN ? ELSE resolution_notes END
WHERE person = ? AND disease = ?`, u.Status, s.now(), u.Notes, u.Notes, u.Patient, u.Disease)
	if err != nil {
		return backend.Result{}, fmt.Errorf("update diagnosis: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return rejected("Diagnosis not found"), nil
	}
	return ok("Diagnosis status updated to %s", u.Status), nil
}

func (s *Store) AddPrescription(ctx context.Context, person string, rx backend.PrescriptionInput) (backend.Result, error) {
	if found, err := s.exists(ctx, "persons", person); err != nil {
		return backend.Result{}, err
	} else if !found {
		return rejected("Patient '%s' not found", person), nil
	}
	_, err := s.db.ExecContext(ctx, `
INSERT INTO prescriptions (person, medication, dosage, frequency, doctor, duration, notes, prescribed_date, status)
VALUES (?, ?, ?, ?, ?, ?, ?, ?, 'active')`,
		person, rx.Medication, rx.Dosage, rx.Frequency, rx.Doctor, rx.Duration, rx.Notes, s.now())
	if err != nil {
		return backend.Result{}, fmt.Errorf("insert prescription: %w", err)
	}
	return ok("Prescription added successfully"), nil
}

func (s *Store) MedicalRecord(ctx context.Context, person string) (backend.MedicalRecord, error) {
	var rec backend.MedicalRecord
	err := s.db.QueryRowContext(ctx, `SELECT name, age FROM persons WHERE name = ?`, person).
		Scan(&rec.Patient.Name, &rec.Patient.Age)
	if errors.Is(err, sql.ErrNoRows) {
		return backend.MedicalRecord{}, fmt.Errorf("patient %q: %w", person, apperrors.ErrNotFound)
	}
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load patient: %w", err)
	}

	if rec.Diagnoses, err = s.diagnoses(ctx, person); err != nil {
		return backend.MedicalRecord{}, err
	}
	if rec.Prescriptions, err = s.prescriptions(ctx, person); err != nil {
		return backend.MedicalRecord{}, err
	}
	if rec.Vitals, err = s.vitals(ctx, person); err != nil {
		return backend.MedicalRecord{}, err
	}
	if rec.History, err = s.history(ctx, person); err != nil {
		return backend.MedicalRecord{}, err
	}
	return rec, nil
}

func (s *Store) diagnoses(ctx context.Context, person string) ([]backend.Diagnosis, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT disease, doctor, date, notes, severity, status
FROM diagnoses WHERE person = ?
ORDER BY date DESC, rowid DESC`, person)
	if err != nil {
		return nil, fmt.Errorf("query diagnoses: %w", err)
	}
	defer rows.Close()
	out := make([]backend.Diagnosis, 0)
	for rows.Next() {
		var d backend.Diagnosis
		if err := rows.Scan(&d.Disease, &d.Doctor, &d.Date, &d.Notes, &d.Severity, &d.Status); err != nil {
			return nil, fmt.Errorf("scan diagnosis: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *Store) prescriptions(ctx context.Context, person string) ([]backend.Prescription, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT medication, dosage, frequency, doctor, duration, prescribed_date, status, notes
FROM prescriptions WHERE person = ?
ORDER BY prescribed_date DESC, rowid DESC`, person)
	if err != nil {
		return nil, fmt.Errorf("query prescriptions: %w", err)
	}
	defer rows.Close()
	out := make([]backend.Prescription, 0)
	for rows.Next() {
		var p backend.Prescription
		if err := rows.Scan(&p.Medication, &p.Dosage, &p.Frequency, &p.Doctor, &p.Duration, &p.Date, &p.Status, &p.Notes); err != nil {
			return nil, fmt.Errorf("scan prescription: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *Store) vitals(ctx context.Context, person string) ([]backend.Vitals, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT blood_pressure, heart_rate, temperature, weight, height, bmi, recorded_at
FROM vitals WHERE person = ?
ORDER BY recorded_at DESC, rowid DESC
LIMIT 5`, person)
	if err != nil {
		return nil, fmt.Errorf("query vitals: %w", err)
	}
	defer rows.Close()
	out := make([]backend.Vitals, 0)
	for rows.Next() {
		var v backend.Vitals
		if err := rows.Scan(&v.BloodPressure, &v.HeartRate, &v.Temperature, &v.Weight, &v.Height, &v.BMI, &v.RecordedAt); err != nil {
			return nil, fmt.Errorf("scan vitals: %w", err)
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func (s *Store) history(ctx context.Context, person string) ([]backend.HistoryEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT condition, date_diagnosed, resolved, notes
FROM history WHERE person = ?
ORDER BY date_diagnosed DESC`, person)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	out := make([]backend.HistoryEntry, 0)
	for rows.Next() {
		var h backend.HistoryEntry
		if err := rows.Scan(&h.Condition, &h.DateDiagnosed, &h.Resolved, &h.Notes); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		out = append(out, h)
	}
	return out, rows.Err()
}

// AddHistory records a past condition. The hosted service exposes no route
// for this, so it is used by seeding only.
func (s *Store) AddHistory(ctx context.Context, person string, h backend.HistoryEntry) error {
	_, err := s.db.ExecContext(ctx, `
INSERT INTO history (person, condition, date_diagnosed, resolved, notes)
VALUES (?, ?, ?, ?, ?)`, person, h.Condition, h.DateDiagnosed, h.Resolved, h.Notes)
	if err != nil {
		return fmt.Errorf("insert history: %w", err)
	}
	return nil
}

func (s *Store) SearchByDiagnosis(ctx context.Context, disease string) ([]backend.DiagnosedPatient, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT p.name, p.age, d.doctor, d.date, d.severity
FROM diagnoses d
JOIN persons p ON p.name = d.person
WHERE d.disease = ? AND d.status = 'active'
ORDER BY d.date DESC, d.rowid DESC`, disease)
	if err != nil {
		return nil, fmt.Errorf("search by diagnosis: %w", err)
	}
	defer rows.Close()
	out := make([]backend.DiagnosedPatient, 0)
	for rows.Next() {
		var p backend.DiagnosedPatient
		if err := rows.Scan(&p.Patient, &p.Age, &p.Doctor, &p.DiagnosedDate, &p.Severity); err != nil {
			return nil, fmt.Errorf("scan diagnosed patient: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// rawBMI stores the unrounded index the way the hosted service does; display
// rounding happens in the consultation view.
func rawBMI(weight, height string) string {
	w, errW := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return ""
	}
	m := h / 100
	return strconv.FormatFloat(w/(m*m), 'f', -1, 64)
}

func ok(format string, args ...any) backend.Result {
	return backend.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...any) backend.Result {
	return backend.Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
