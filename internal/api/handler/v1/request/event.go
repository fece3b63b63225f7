package request

import (
	validation "github.com/go-ozzo/ozzo-validation"
)

type CreateEventRequest struct {
	Name        string `json:"name"`
	Date        string `json:"date"` // RFC 3339
	Location    string `json:"location"`
	Description string `json:"description"`
}

func (req *CreateEventRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.Name, validation.Required, validation.Length(2, 100)),
		validation.Field(&req.Date, validation.Required),
		validation.Field(&req.Location, validation.Required),
		validation.Field(&req.Description, validation.Length(0, 2000)),
	)
}
