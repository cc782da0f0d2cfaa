package in

import (
	"context"

	"medgraph/internal/modules/consultation/dto"
	consultin "medgraph/internal/modules/consultation/port/in"
)

type CLIHandler struct {
	usecase consultin.Usecase
}

func NewCLIHandler(usecase consultin.Usecase) CLIHandler {
	return CLIHandler{usecase: usecase}
}

func (h CLIHandler) Consult(ctx context.Context, patient string) (dto.RecordOutput, error) {
	return h.usecase.Assemble(ctx, patient)
}

func (h CLIHandler) RecordVitals(ctx context.Context, input dto.VitalsInput) (dto.MutationOutput, error) {
	return h.usecase.RecordVitals(ctx, input)
}

func (h CLIHandler) Diagnose(ctx context.Context, input dto.DiagnosisInput) (dto.MutationOutput, error) {
	return h.usecase.AddDiagnosis(ctx, input)
}

func (h CLIHandler) SetDiagnosisStatus(ctx context.Context, input dto.StatusInput) (dto.MutationOutput, error) {
	return h.usecase.UpdateDiagnosisStatus(ctx, input)
}

func (h CLIHandler) Prescribe(ctx context.Context, input dto.PrescriptionInput) (dto.MutationOutput, error) {
	return h.usecase.AddPrescription(ctx, input)
}

func (h CLIHandler) Tracker(ctx context.Context, disease string) (dto.TrackerOutput, error) {
	return h.usecase.Tracker(ctx, disease)
}
