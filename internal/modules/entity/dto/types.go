package dto

type CreatePersonInput struct {
	Name string `validate:"required,max=120"`
	Age  int    `validate:"gte=0,lte=150"`
}

type CreateDiseaseInput struct {
	Name        string `validate:"required,max=120"`
	Description string `validate:"required"`
}

type EntityOutput struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	Age         int    `json:"age,omitempty"`
	Description string `json:"description,omitempty"`
	ICD10       string `json:"icd10,omitempty"`
}

type MutationOutput struct {
	Message string `json:"message"`
}
