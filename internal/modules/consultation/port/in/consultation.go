package in

import (
	"context"

	"medgraph/internal/modules/consultation/dto"
)

type Usecase interface {
	Select(ctx context.Context, patient string) (dto.RecordOutput, error)
	Assemble(ctx context.Context, patient string) (dto.RecordOutput, error)
	Current() (string, bool)
	Clear()

	RecordVitals(ctx context.Context, input dto.VitalsInput) (dto.MutationOutput, error)
	AddDiagnosis(ctx context.Context, input dto.DiagnosisInput) (dto.MutationOutput, error)
	UpdateDiagnosisStatus(ctx context.Context, input dto.StatusInput) (dto.MutationOutput, error)
	AddPrescription(ctx context.Context, input dto.PrescriptionInput) (dto.MutationOutput, error)

	Tracker(ctx context.Context, disease string) (dto.TrackerOutput, error)
}
