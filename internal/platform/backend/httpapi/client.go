// Package httpapi is the REST client for the hosted records service.
package httpapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"medgraph/internal/platform/backend"
	"medgraph/internal/platform/config"
	apperrors "medgraph/internal/platform/errors"
)

// maxBody bounds how much of a response is read.
const maxBody = 8 << 20

type Client struct {
	base    *url.URL
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

var _ backend.Backend = (*Client)(nil)

type Option func(*Client)

// WithHTTPClient replaces the default transport, e.g. with an httptest client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(cfg config.BackendConfig, log *zap.Logger, opts ...Option) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("%w: backend.base_url %q", apperrors.ErrInvalidInput, cfg.BaseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	c := &Client{
		base: base,
		http: &http.Client{Timeout: cfg.Timeout},
		log:  log,
	}
	c.breaker = newBreaker(cfg.Breaker, log)
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// newBreaker trips on unavailability only. Business rejections and missing
// records are answers, not failures.
func newBreaker(cfg config.BreakerConfig, log *zap.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "records-api",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < cfg.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= cfg.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !errors.Is(err, apperrors.ErrBackendUnavailable)
		},
	})
}

func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// ─── reads ───────────────────────────────────────────────────────────────

func (c *Client) ListPersons(ctx context.Context) ([]backend.Person, error) {
	var rows []personJSON
	if err := c.get(ctx, []string{"api", "persons"}, nil, &rows); err != nil {
		return nil, err
	}
	return toPersons(rows), nil
}

func (c *Client) SearchPersons(ctx context.Context, query string) ([]backend.Person, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return []backend.Person{}, nil
	}
	var rows []personJSON
	if err := c.get(ctx, []string{"api", "persons", "search"}, url.Values{"q": {query}}, &rows); err != nil {
		return nil, err
	}
	out := toPersons(rows)
	if len(out) > backend.SearchLimit {
		out = out[:backend.SearchLimit]
	}
	return out, nil
}

func (c *Client) ListDiseases(ctx context.Context) ([]backend.Disease, error) {
	var rows []diseaseJSON
	if err := c.get(ctx, []string{"api", "diseases"}, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]backend.Disease, 0, len(rows))
	for _, r := range rows {
		out = append(out, backend.Disease{Name: string(r.Name), Description: string(r.Description)})
	}
	return out, nil
}

func (c *Client) PersonDiseases(ctx context.Context, person string) ([]backend.Disease, error) {
	var rows []relationshipJSON
	if err := c.get(ctx, []string{"api", "persons", person, "diseases"}, nil, &rows); err != nil {
		return nil, err
	}
	out := make([]backend.Disease, 0, len(rows))
	for _, r := range rows {
		out = append(out, backend.Disease{Name: string(r.Name), Description: string(r.Description)})
	}
	return out, nil
}

func (c *Client) MedicalRecord(ctx context.Context, person string) (backend.MedicalRecord, error) {
	var body recordJSON
	if err := c.get(ctx, []string{"api", "patients", person, "medical-record"}, nil, &body); err != nil {
		return backend.MedicalRecord{}, err
	}
	return body.toRecord(), nil
}

func (c *Client) SearchByDiagnosis(ctx context.Context, disease string) ([]backend.DiagnosedPatient, error) {
	var rows []diagnosedJSON
	if err := c.get(ctx, []string{"api", "diagnosis", "search"}, url.Values{"disease": {disease}}, &rows); err != nil {
		return nil, err
	}
	out := make([]backend.DiagnosedPatient, 0, len(rows))
	for _, r := range rows {
		out = append(out, backend.DiagnosedPatient{
			Patient: string(r.Patient), Age: int(r.Age), Doctor: string(r.Doctor),
			DiagnosedDate: string(r.Date), Severity: string(r.Severity),
		})
	}
	return out, nil
}

// ─── mutations ───────────────────────────────────────────────────────────

func (c *Client) CreatePerson(ctx context.Context, name string, age int) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPost, []string{"api", "persons"}, map[string]any{"name": name, "age": age})
}

func (c *Client) CreateDisease(ctx context.Context, name, description string) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPost, []string{"api", "diseases"}, map[string]any{"name": name, "description": description})
}

func (c *Client) CreateRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPost, []string{"api", "relationships"}, map[string]any{"person_name": person, "disease_name": disease})
}

func (c *Client) DeleteRelationship(ctx context.Context, person, disease string) (backend.Result, error) {
	return c.mutate(ctx, http.MethodDelete, []string{"api", "relationships"}, map[string]any{"person_name": person, "disease_name": disease})
}

func (c *Client) RecordVitals(ctx context.Context, person string, v backend.VitalsInput) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPost, []string{"api", "patients", person, "vitals"}, map[string]any{
		"blood_pressure": v.BloodPressure,
		"heart_rate":     v.HeartRate,
		"temperature":    v.Temperature,
		"weight":         v.Weight,
		"height":         v.Height,
		"notes":          v.Notes,
	})
}

func (c *Client) AddDiagnosis(ctx context.Context, d backend.DiagnosisInput) (backend.Result, error) {
	body := map[string]any{
		"patient_name": d.Patient,
		"disease_name": d.Disease,
		"doctor_name":  d.Doctor,
		"notes":        d.Notes,
	}
	if d.Severity != "" {
		body["severity"] = d.Severity
	}
	return c.mutate(ctx, http.MethodPost, []string{"api", "diagnosis"}, body)
}

func (c *Client) UpdateDiagnosisStatus(ctx context.Context, u backend.StatusUpdate) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPut, []string{"api", "diagnosis", "status"}, map[string]any{
		"patient_name": u.Patient,
		"disease_name": u.Disease,
		"status":       u.Status,
		"notes":        u.Notes,
	})
}

func (c *Client) AddPrescription(ctx context.Context, person string, rx backend.PrescriptionInput) (backend.Result, error) {
	return c.mutate(ctx, http.MethodPost, []string{"api", "patients", person, "prescription"}, map[string]any{
		"medication":  rx.Medication,
		"dosage":      rx.Dosage,
		"frequency":   rx.Frequency,
		"doctor_name": rx.Doctor,
		"duration":    rx.Duration,
		"notes":       rx.Notes,
	})
}

// ─── transport ───────────────────────────────────────────────────────────

type response struct {
	status int
	body   []byte
}

func (c *Client) endpoint(segments []string, query url.Values) string {
	u := *c.base
	escaped := make([]string, 0, len(segments))
	for _, s := range segments {
		escaped = append(escaped, url.PathEscape(s))
	}
	raw := strings.TrimRight(c.base.EscapedPath(), "/") + "/" + strings.Join(escaped, "/")
	u.Path, _ = url.PathUnescape(raw)
	u.RawPath = raw
	if query != nil {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// send runs one request through the breaker. Transport failures, 5xx and an
// open breaker all wrap ErrBackendUnavailable.
func (c *Client) send(ctx context.Context, method, target string, payload any) (response, error) {
	var reqBody []byte
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return response{}, fmt.Errorf("encode request: %w", err)
		}
		reqBody = b
	}

	out, err := c.breaker.Execute(func() (interface{}, error) {
		req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(reqBody))
		if err != nil {
			return nil, fmt.Errorf("build request: %w", err)
		}
		req.Header.Set("Accept", "application/json")
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		resp, err := c.http.Do(req)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %s: %v", apperrors.ErrBackendUnavailable, method, target, err)
		}
		defer resp.Body.Close()
		body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", apperrors.ErrBackendUnavailable, target, err)
		}
		if resp.StatusCode >= http.StatusInternalServerError {
			return nil, fmt.Errorf("%w: %s %s: status %d", apperrors.ErrBackendUnavailable, method, target, resp.StatusCode)
		}
		return response{status: resp.StatusCode, body: body}, nil
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return response{}, fmt.Errorf("%w: %v", apperrors.ErrBackendUnavailable, err)
	}
	if err != nil {
		c.log.Debug("request failed", zap.String("method", method), zap.String("url", target), zap.Error(err))
		return response{}, err
	}
	return out.(response), nil
}

func (c *Client) get(ctx context.Context, segments []string, query url.Values, dst any) error {
	target := c.endpoint(segments, query)
	resp, err := c.send(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	switch {
	case resp.status == http.StatusNotFound:
		return fmt.Errorf("GET %s: %w", target, apperrors.ErrNotFound)
	case resp.status >= 300:
		return fmt.Errorf("GET %s: unexpected status %d", target, resp.status)
	}
	if err := json.Unmarshal(resp.body, dst); err != nil {
		return fmt.Errorf("decode %s: %w", target, err)
	}
	return nil
}

// mutate returns the service envelope. A 4xx carrying an envelope is a
// rejection like any other.
func (c *Client) mutate(ctx context.Context, method string, segments []string, payload any) (backend.Result, error) {
	target := c.endpoint(segments, nil)
	resp, err := c.send(ctx, method, target, payload)
	if err != nil {
		return backend.Result{}, err
	}
	var res backend.Result
	if err := json.Unmarshal(resp.body, &res); err != nil {
		return backend.Result{}, fmt.Errorf("%s %s: status %d: decode envelope: %w", method, target, resp.status, err)
	}
	if res.Message == "" && resp.status >= 300 {
		res.Message = fmt.Sprintf("request failed with status %d", resp.status)
	}
	return res, nil
}
