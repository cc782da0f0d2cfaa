// Package neo4jdb speaks Cypher to the graph database behind the records
// service, using the same labels and relationship types it writes.
package neo4jdb

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/clock"
	"medgraph/internal/platform/config"
	apperrors "medgraph/internal/platform/errors"
)

const timeLayout = "2006-01-02T15:04:05.000000"

// Runner executes one Cypher statement and buffers its records.
type Runner interface {
	Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error)
}

// Executor runs statements through the driver's managed transactions.
type Executor struct {
	driver   neo4j.DriverWithContext
	database string
}

func Dial(ctx context.Context, cfg config.Neo4jConfig) (*Executor, error) {
	driver, err := neo4j.NewDriverWithContext(cfg.URI, neo4j.BasicAuth(cfg.Username, cfg.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("create neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: neo4j %s: %v", apperrors.ErrBackendUnavailable, cfg.URI, err)
	}
	return &Executor{driver: driver, database: cfg.Database}, nil
}

func (e *Executor) Run(ctx context.Context, query string, params map[string]any) (*neo4j.EagerResult, error) {
	result, err := neo4j.ExecuteQuery(ctx, e.driver, query, params,
		neo4j.EagerResultTransformer,
		neo4j.ExecuteQueryWithDatabase(e.database),
	)
	if err != nil {
		return nil, fmt.Errorf("execute cypher: %w", err)
	}
	return result, nil
}

func (e *Executor) Close() error {
	return e.driver.Close(context.Background())
}

type Store struct {
	run   Runner
	close func() error
	clock clock.Clock
}

var _ backend.Backend = (*Store)(nil)

func New(run Runner, clk clock.Clock) *Store {
	return &Store{run: run, close: func() error { return nil }, clock: clk}
}

func Open(ctx context.Context, cfg config.Neo4jConfig, clk clock.Clock) (*Store, error) {
	exec, err := Dial(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s := New(exec, clk)
	s.close = exec.Close
	return s, nil
}

func (s *Store) Close() error {
	return s.close()
}

func (s *Store) now() string {
	return s.clock.Now().Format(timeLayout)
}

func (s *Store) records(ctx context.Context, query string, params map[string]any) ([]*neo4j.Record, error) {
	res, err := s.run.Run(ctx, query, params)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}
	return res.Records, nil
}

func (s *Store) exists(ctx context.Context, query string, params map[string]any) (bool, error) {
	recs, err := s.records(ctx, query, params)
	if err != nil {
		return false, err
	}
	return len(recs) > 0, nil
}

func (s *Store) ListPersons(ctx context.Context) ([]backend.Person, error) {
	recs, err := s.records(ctx, `MATCH (p:Person) RETURN p.name AS name, p.age AS age ORDER BY p.name`, nil)
	if err != nil {
		return nil, fmt.Errorf("list persons: %w", err)
	}
	return persons(recs), nil
}

func (s *Store) SearchPersons(ctx context.Context, query string) ([]backend.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []backend.Person{}, nil
	}
	recs, err := s.records(ctx, `
MATCH (p:Person)
WHERE toLower(p.name) CONTAINS toLower($term)
RETURN p.name AS name, p.age AS age
ORDER BY p.name
LIMIT $limit`, map[string]any{"term": query, "limit": backend.SearchLimit})
	if err != nil {
		return nil, fmt.Errorf("search persons: %w", err)
	}
	return persons(recs), nil
}

func persons(recs []*neo4j.Record) []backend.Person {
	out := make([]backend.Person, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		out = append(out, backend.Person{Name: str(m["name"]), Age: integer(m["age"])})
	}
	return out
}

func (s *Store) ListDiseases(ctx context.Context) ([]backend.Disease, error) {
	recs, err := s.records(ctx, `MATCH (d:Disease) RETURN d.name AS name, d.description AS description ORDER BY d.name`, nil)
	if err != nil {
		return nil, fmt.Errorf("list diseases: %w", err)
	}
	return diseases(recs), nil
}

func (s *Store) PersonDiseases(ctx context.Context, person string) ([]backend.Disease, error) {
	recs, err := s.records(ctx, `
MATCH (p:Person {name: $name})-[:HAS_DISEASE]->(d:Disease)
RETURN d.name AS name, d.description AS description`, map[string]any{"name": person})
	if err != nil {
		return nil, fmt.Errorf("person diseases: %w", err)
	}
	return diseases(recs), nil
}

func diseases(recs []*neo4j.Record) []backend.Disease {
	out := make([]backend.Disease, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		out = append(out, backend.Disease{Name: str(m["name"]), Description: str(m["description"])})
	}
	return out
}

func (s *Store) CreatePerson(ctx context.Context, name string, age int) (backend.Result, error) {
	found, err := s.exists(ctx, `MATCH (p:Person {name: $name}) RETURN p.name AS name`, map[string]any{"name": name})
	if err != nil {
		return backend.Result{}, fmt.Errorf("check person: %w", err)
	}
	if found {
		return rejected("Person '%s' already exists", name), nil
	}
	if _, err := s.run.Run(ctx, `CREATE (p:Person {name: $name, age: $age})`, map[string]any{"name": name, "age": age}); err != nil {
		return backend.Result{}, fmt.Errorf("create person: %w", err)
	}
	return ok("Successfully created person '%s'", name), nil
}

func (s *Store) CreateDisease(ctx context.Context, name, description string) (backend.Result, error) {
	found, err := s.exists(ctx, `MATCH (d:Disease {name: $name}) RETURN d.name AS name`, map[string]any{"name": name})
	if err != nil {
		return backend.Result{}, fmt.Errorf("check disease: %w", err)
	}
	if found {
		return rejected("Disease '%s' already exists", name), nil
	}
	if _, err := s.run.Run(ctx, `CREATE (d:Disease {name: $name, description: $description})`,
		map[string]any{"name": name, "description": description}); err != nil {
		return backend.Result{}, fmt.Errorf("create disease: %w", err)
	}
	return ok("Successfully created disease '%s'", name), nil
}

func (s *Store) CreateRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	params := map[string]any{"person": person, "disease": disease}
	if found, err := s.exists(ctx, `MATCH (p:Person {name: $person}) RETURN p.name AS name`, params); err != nil {
		return backend.Result{}, fmt.Errorf("check person: %w", err)
	} else if !found {
		return rejected("Person '%s' does not exist", person), nil
	}
	if found, err := s.exists(ctx, `MATCH (d:Disease {name: $disease}) RETURN d.name AS name`, params); err != nil {
		return backend.Result{}, fmt.Errorf("check disease: %w", err)
	} else if !found {
		return rejected("Disease '%s' does not exist", disease), nil
	}
	linked, err := s.exists(ctx, `
MATCH (p:Person {name: $person})-[:HAS_DISEASE]->(d:Disease {name: $disease})
RETURN p.name AS name`, params)
	if err != nil {
		return backend.Result{}, fmt.Errorf("check relationship: %w", err)
	}
	if linked {
		return rejected("Relationship already exists between '%s' and '%s'", person, disease), nil
	}
	if _, err := s.run.Run(ctx, `
MATCH (p:Person {name: $person}), (d:Disease {name: $disease})
CREATE (p)-[:HAS_DISEASE]->(d)`, params); err != nil {
		return backend.Result{}, fmt.Errorf("create relationship: %w", err)
	}
	return ok("Successfully created relationship between '%s' and '%s'", person, disease), nil
}

func (s *Store) DeleteRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	params := map[string]any{"person": person, "disease": disease}
	linked, err := s.exists(ctx, `
MATCH (p:Person {name: $person})-[:HAS_DISEASE]->(d:Disease {name: $disease})
RETURN p.name AS name`, params)
	if err != nil {
		return backend.Result{}, fmt.Errorf("check relationship: %w", err)
	}
	if !linked {
		return rejected("No relationship exists between '%s' and '%s'", person, disease), nil
	}
	if _, err := s.run.Run(ctx, `
MATCH (p:Person {name: $person})-[r:HAS_DISEASE]->(d:Disease {name: $disease})
DELETE r`, params); err != nil {
		return backend.Result{}, fmt.Errorf("delete relationship: %w", err)
	}
	return ok("Successfully removed relationship between '%s' and '%s'", person, disease), nil
}

func (s *Store) RecordVitals(ctx context.Context, person string, v backend.VitalsInput) (backend.Result, error) {
	var bmi any
	if w, h, good := measurements(v.Weight, v.Height); good {
		m := h / 100
		bmi = w / (m * m)
	}
	recs, err := s.records(ctx, `
MATCH (p:Person {name: $name})
CREATE (v:VitalSigns {
  blood_pressure: $blood_pressure, heart_rate: $heart_rate, temperature: $temperature,
  weight: $weight, height: $height, bmi: $bmi, notes: $notes, recorded_at: $recorded_at
})
CREATE (p)-[:HAS_VITALS]->(v)
RETURN v.recorded_at AS recorded_at`, map[string]any{
		"name": person, "blood_pressure": v.BloodPressure, "heart_rate": v.HeartRate,
		"temperature": v.Temperature, "weight": v.Weight, "height": v.Height,
		"bmi": bmi, "notes": v.Notes, "recorded_at": s.now(),
	})
	if err != nil {
		return backend.Result{}, fmt.Errorf("record vitals: %w", err)
	}
	if len(recs) == 0 {
		return rejected("Patient '%s' not found", person), nil
	}
	return ok("Vital signs recorded successfully"), nil
}

func (s *Store) AddDiagnosis(ctx context.Context, d backend.DiagnosisInput) (backend.Result, error) {
	severity := d.Severity
	if severity == "" {
		severity = "moderate"
	}
	recs, err := s.records(ctx, `
MATCH (p:Person {name: $patient}), (d:Disease {name: $disease})
CREATE (p)-[r:DIAGNOSED_WITH {
  doctor: $doctor, date: $date, notes: $notes, severity: $severity, status: 'active'
}]->(d)
RETURN r.date AS date`, map[string]any{
		"patient": d.Patient, "disease": d.Disease, "doctor": d.Doctor,
		"date": s.now(), "notes": d.Notes, "severity": severity,
	})
	if err != nil {
		return backend.Result{}, fmt.Errorf("add diagnosis: %w", err)
	}
	if len(recs) == 0 {
		return rejected("Patient or disease not found"), nil
	}
	return ok("Diagnosis created successfully"), nil
}

func (s *Store) UpdateDiagnosisStatus(ctx context.Context, u backend.StatusUpdate) (backend.Result, error) {
	recs, err := s.records(ctx, `
MATCH (p:Person {name: $patient})-[r:DIAGNOSED_WITH]->(d:Disease {name: $disease})
SET r.status = $status, r.updated_at = $updated_at
SET r.resolution_notes = CASE WHEN $notes <> '' THEN $notes ELSE r.resolution_notes END
RETURN r.status AS status`, map[string]any{
		"patient": u.Patient, "disease": u.Disease, "status": u.Status,
		"notes": u.Notes, "updated_at": s.now(),
	})
	if err != nil {
		return backend.Result{}, fmt.Errorf("update diagnosis: %w", err)
	}
	if len(recs) == 0 {
		return rejected("Diagnosis not found"), nil
	}
	return ok("Diagnosis status updated to %s", u.Status), nil
}

func (s *Store) AddPrescription(ctx context.Context, person string, rx backend.PrescriptionInput) (backend.Result, error) {
	recs, err := s.records(ctx, `
MATCH (p:Person {name: $name})
CREATE (rx:Prescription {
  medication: $medication, dosage: $dosage, frequency: $frequency, doctor: $doctor,
  duration: $duration, notes: $notes, prescribed_date: $prescribed_date, status: 'active'
})
CREATE (p)-[:HAS_PRESCRIPTION]->(rx)
RETURN rx.medication AS medication`, map[string]any{
		"name": person, "medication": rx.Medication, "dosage": rx.Dosage,
		"frequency": rx.Frequency, "doctor": rx.Doctor, "duration": rx.Duration,
		"notes": rx.Notes, "prescribed_date": s.now(),
	})
	if err != nil {
		return backend.Result{}, fmt.Errorf("add prescription: %w", err)
	}
	if len(recs) == 0 {
		return rejected("Patient '%s' not found", person), nil
	}
	return ok("Prescription added successfully"), nil
}

func (s *Store) MedicalRecord(ctx context.Context, person string) (backend.MedicalRecord, error) {
	params := map[string]any{"name": person}
	recs, err := s.records(ctx, `MATCH (p:Person {name: $name}) RETURN p.name AS name, p.age AS age`, params)
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load patient: %w", err)
	}
	if len(recs) == 0 {
		return backend.MedicalRecord{}, fmt.Errorf("patient %q: %w", person, apperrors.ErrNotFound)
	}
	rec := backend.MedicalRecord{Patient: persons(recs)[0]}

	recs, err = s.records(ctx, `
MATCH (p:Person {name: $name})-[r:DIAGNOSED_WITH]->(d:Disease)
RETURN d.name AS disease, r.doctor AS doctor, r.date AS date,
       r.notes AS notes, r.severity AS severity, r.status AS status
ORDER BY r.date DESC`, params)
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load diagnoses: %w", err)
	}
	rec.Diagnoses = make([]backend.Diagnosis, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		rec.Diagnoses = append(rec.Diagnoses, backend.Diagnosis{
			Disease: str(m["disease"]), Doctor: str(m["doctor"]), Date: str(m["date"]),
			Notes: str(m["notes"]), Severity: str(m["severity"]), Status: str(m["status"]),
		})
	}

	recs, err = s.records(ctx, `
MATCH (p:Person {name: $name})-[:HAS_PRESCRIPTION]->(rx:Prescription)
RETURN rx.medication AS medication, rx.dosage AS dosage, rx.frequency AS frequency,
       rx.doctor AS doctor, rx.duration AS duration, rx.prescribed_date AS date,
       rx.status AS status, rx.notes AS notes
ORDER BY rx.prescribed_date DESC`, params)
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load prescriptions: %w", err)
	}
	rec.Prescriptions = make([]backend.Prescription, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		rec.Prescriptions = append(rec.Prescriptions, backend.Prescription{
			Medication: str(m["medication"]), Dosage: str(m["dosage"]), Frequency: str(m["frequency"]),
			Doctor: str(m["doctor"]), Duration: str(m["duration"]), Date: str(m["date"]),
			Status: str(m["status"]), Notes: str(m["notes"]),
		})
	}

	recs, err = s.records(ctx, `
MATCH (p:Person {name: $name})-[:HAS_VITALS]->(v:VitalSigns)
RETURN v.blood_pressure AS blood_pressure, v.heart_rate AS heart_rate,
       v.temperature AS temperature, v.weight AS weight, v.height AS height,
       v.bmi AS bmi, v.recorded_at AS date
ORDER BY v.recorded_at DESC
LIMIT 5`, params)
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load vitals: %w", err)
	}
	rec.Vitals = make([]backend.Vitals, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		rec.Vitals = append(rec.Vitals, backend.Vitals{
			BloodPressure: str(m["blood_pressure"]), HeartRate: str(m["heart_rate"]),
			Temperature: str(m["temperature"]), Weight: str(m["weight"]), Height: str(m["height"]),
			BMI: str(m["bmi"]), RecordedAt: str(m["date"]),
		})
	}

	recs, err = s.records(ctx, `
MATCH (p:Person {name: $name})-[:HAS_HISTORY]->(h:MedicalHistory)
RETURN h.condition AS condition, h.date_diagnosed AS date_diagnosed,
       h.resolved AS resolved, h.notes AS notes
ORDER BY h.date_diagnosed DESC`, params)
	if err != nil {
		return backend.MedicalRecord{}, fmt.Errorf("load history: %w", err)
	}
	rec.History = make([]backend.HistoryEntry, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		resolved, _ := m["resolved"].(bool)
		rec.History = append(rec.History, backend.HistoryEntry{
			Condition: str(m["condition"]), DateDiagnosed: str(m["date_diagnosed"]),
			Resolved: resolved, Notes: str(m["notes"]),
		})
	}
	return rec, nil
}

func (s *Store) SearchByDiagnosis(ctx context.Context, disease string) ([]backend.DiagnosedPatient, error) {
	recs, err := s.records(ctx, `
MATCH (p:Person)-[r:DIAGNOSED_WITH]->(d:Disease {name: $disease})
WHERE r.status = 'active'
RETURN p.name AS patient, p.age AS age, r.doctor AS doctor,
       r.date AS diagnosed_date, r.severity AS severity
ORDER BY r.date DESC`, map[string]any{"disease": disease})
	if err != nil {
		return nil, fmt.Errorf("search by diagnosis: %w", err)
	}
	out := make([]backend.DiagnosedPatient, 0, len(recs))
	for _, r := range recs {
		m := r.AsMap()
		out = append(out, backend.DiagnosedPatient{
			Patient: str(m["patient"]), Age: integer(m["age"]), Doctor: str(m["doctor"]),
			DiagnosedDate: str(m["diagnosed_date"]), Severity: str(m["severity"]),
		})
	}
	return out, nil
}

func measurements(weight, height string) (float64, float64, bool) {
	w, errW := strconv.ParseFloat(strings.TrimSpace(weight), 64)
	h, errH := strconv.ParseFloat(strings.TrimSpace(height), 64)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// str renders a property value the way it was entered; intake forms store
// numbers and strings interchangeably.
func str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

func integer(v any) int {
	switch t := v.(type) {
	case int64:
		return int(t)
	case float64:
		return int(t)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(t))
		return n
	default:
		return 0
	}
}

func ok(format string, args ...any) backend.Result {
	return backend.Result{Success: true, Message: fmt.Sprintf(format, args...)}
}

func rejected(format string, args ...any) backend.Result {
	return backend.Result{Success: false, Message: fmt.Sprintf(format, args...)}
}
