package holiday

import (
	"strings"

	"github.com/cmlabs-hris/hris-portal-go/internal/pkg/validator"
)

type CreateHolidayRequest struct {
	Date string `json:"date" validate:"required,date"`
	Name string `json:"name" validate:"required,max=120"`
	Type string `json:"type" validate:"required,oneof=public company"`
}

func (r *CreateHolidayRequest) Validate() error {
	r.Name = strings.TrimSpace(r.Name)
	r.Type = strings.ToLower(strings.TrimSpace(r.Type))
	if r.Type == "" {
		r.Type = string(TypePublic)
	}

	if errs := validator.Struct(r); len(errs) > 0 {
		return errs
	}
	return nil
}

type HolidayResponse struct {
	Date string `json:"date"`
	Name string `json:"name"`
	Type Type   `json:"type"`
}

func ToResponse(h Holiday) HolidayResponse {
	return HolidayResponse{
		Date: h.Date.Format(validator.DateLayout),
		Name: h.Name,
		Type: h.Type,
	}
}
