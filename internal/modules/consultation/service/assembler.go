package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"medgraph/internal/modules/consultation/domain"
	consultout "medgraph/internal/modules/consultation/port/out"
	apperrors "medgraph/internal/platform/errors"
	"medgraph/internal/platform/id"
	"medgraph/internal/platform/metrics"
)

type Options struct {
	// Doctor signs diagnoses and prescriptions that name none.
	Doctor string
}

// Assembler builds consultation records. Each selection bumps a generation;
// a record fetched for an older generation is dropped instead of shown.
type Assembler struct {
	source  consultout.RecordSource
	names   consultout.NameResolver
	ids     id.Generator
	opts    Options
	metrics *metrics.Registry
	log     *zap.Logger
	flight  singleflight.Group

	mu         sync.Mutex
	generation uint64
	current    string
}

func NewAssembler(source consultout.RecordSource, names consultout.NameResolver, ids id.Generator, opts Options, m *metrics.Registry, log *zap.Logger) *Assembler {
	if log == nil {
		log = zap.NewNop()
	}
	if ids == nil {
		ids = id.DisplayID{}
	}
	return &Assembler{source: source, names: names, ids: ids, opts: opts, metrics: m, log: log.Named("consultation")}
}

// Assemble fetches a fresh record for patient. Concurrent calls for the same
// patient share one fetch, which outlives the first caller's cancellation.
func (a *Assembler) Assemble(ctx context.Context, patient string) (domain.Record, error) {
	patient = strings.TrimSpace(patient)
	if patient == "" {
		return domain.Record{}, fmt.Errorf("%w: patient is required", apperrors.ErrInvalidInput)
	}
	v, err, _ := a.flight.Do(patient, func() (any, error) {
		return a.source.MedicalRecord(context.WithoutCancel(ctx), patient)
	})
	if err != nil {
		return domain.Record{}, fmt.Errorf("fetch medical record for %s: %w", patient, err)
	}
	return a.complete(ctx, patient, v.(domain.Record)), nil
}

// Select makes patient current and assembles its record.
func (a *Assembler) Select(ctx context.Context, patient string) (domain.Record, error) {
	patient = strings.TrimSpace(patient)
	a.mu.Lock()
	a.generation++
	gen := a.generation
	a.current = patient
	a.mu.Unlock()

	rec, err := a.Assemble(ctx, patient)
	if err != nil {
		return domain.Record{}, err
	}
	if !a.stillCurrent(gen) {
		a.metrics.FocusDiscarded("consultation")
		return domain.Record{}, apperrors.ErrSuperseded
	}
	return rec, nil
}

func (a *Assembler) Current() (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.current, a.current != ""
}

func (a *Assembler) Clear() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.generation++
	a.current = ""
}

func (a *Assembler) Tracker(ctx context.Context, disease string) (domain.Tracker, error) {
	disease = strings.TrimSpace(disease)
	if disease == "" {
		return domain.Tracker{}, fmt.Errorf("%w: disease is required", apperrors.ErrInvalidInput)
	}
	patients, err := a.source.PatientsWith(ctx, disease)
	if err != nil {
		return domain.Tracker{}, fmt.Errorf("search diagnosis %s: %w", disease, err)
	}
	return domain.NewTracker(disease, patients), nil
}

func (a *Assembler) RecordVitals(ctx context.Context, patient string, v domain.VitalsEntry) (string, domain.Record, error) {
	return a.mutate(ctx, patient, func(p string) (string, error) {
		return a.source.RecordVitals(ctx, p, v)
	})
}

func (a *Assembler) AddDiagnosis(ctx context.Context, d domain.NewDiagnosis) (string, domain.Record, error) {
	if d.Severity == "" {
		d.Severity = domain.SeverityModerate
	}
	if strings.TrimSpace(d.Doctor) == "" {
		d.Doctor = a.opts.Doctor
	}
	return a.mutate(ctx, d.Patient, func(p string) (string, error) {
		d.Patient = p
		return a.source.AddDiagnosis(ctx, d)
	})
}

func (a *Assembler) UpdateDiagnosisStatus(ctx context.Context, c domain.StatusChange) (string, domain.Record, error) {
	return a.mutate(ctx, c.Patient, func(p string) (string, error) {
		c.Patient = p
		return a.source.UpdateDiagnosisStatus(ctx, c)
	})
}

func (a *Assembler) AddPrescription(ctx context.Context, patient string, rx domain.NewPrescription) (string, domain.Record, error) {
	if strings.TrimSpace(rx.Doctor) == "" {
		rx.Doctor = a.opts.Doctor
	}
	return a.mutate(ctx, patient, func(p string) (string, error) {
		return a.source.AddPrescription(ctx, p, rx)
	})
}

// mutate applies op to patient (the current one when blank) and rebuilds the
// record from a fetch that starts after the write.
func (a *Assembler) mutate(ctx context.Context, patient string, op func(patient string) (string, error)) (string, domain.Record, error) {
	patient = strings.TrimSpace(patient)
	if patient == "" {
		current, ok := a.Current()
		if !ok {
			return "", domain.Record{}, apperrors.ErrNoFocus
		}
		patient = current
	}
	msg, err := op(patient)
	if err != nil {
		return "", domain.Record{}, err
	}
	a.flight.Forget(patient)
	raw, err := a.source.MedicalRecord(ctx, patient)
	if err != nil {
		a.log.Warn("reload after mutation failed", zap.String("patient", patient), zap.Error(err))
		return msg, domain.Record{}, fmt.Errorf("reload medical record for %s: %w", patient, err)
	}
	return msg, a.complete(ctx, patient, raw), nil
}

func (a *Assembler) complete(ctx context.Context, patient string, rec domain.Record) domain.Record {
	if rec.Patient.Name == "" {
		rec.Patient.Name = patient
	}
	if a.names != nil {
		if cached, ok := a.names.Person(ctx, patient); ok {
			rec.Patient.Name = cached.Name
			if !rec.Patient.HasAge && cached.HasAge {
				rec.Patient.Age, rec.Patient.HasAge = cached.Age, true
			}
		}
	}
	vitals := make([]domain.Vitals, len(rec.Vitals))
	for i, v := range rec.Vitals {
		v.BMI = domain.BMI(v.Weight, v.Height)
		vitals[i] = v
	}
	rec.Vitals = vitals
	rec.DisplayID = a.ids.New()
	return rec
}

func (a *Assembler) stillCurrent(gen uint64) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	return gen == a.generation
}
