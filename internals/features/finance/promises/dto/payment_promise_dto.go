package dto

type UpdatePromiseStatusRequest struct {
	Status string  `json:"status" validate:"required,oneof=active fulfilled broken"`
	Notes  *string `json:"notes" validate:"omitempty,max=1000"`
}

type ListQuery struct {
	EstudianteID string `query:"estudianteId"`
	Status       string `query:"status"`
}
