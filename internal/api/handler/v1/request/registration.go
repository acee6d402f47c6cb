package request

import (
	"errors"

	validation "github.com/go-ozzo/ozzo-validation"
)

var errNothingToUpdate = errors.New("at least one of is_on_wait, has_attended or allow_photo is required")

type RegisterRequest struct {
	// UserID registers someone else. Only admins may set it.
	UserID     uint  `json:"user_id"`
	AllowPhoto *bool `json:"allow_photo"`
}

// AllowsPhoto defaults to true when the field is omitted.
func (req *RegisterRequest) AllowsPhoto() bool {
	return req.AllowPhoto == nil || *req.AllowPhoto
}

type AddRegistrationRequest struct {
	UserID uint `json:"user_id" binding:"required"`
}

func (req *AddRegistrationRequest) Validate() error {
	return validation.ValidateStruct(
		req,
		validation.Field(&req.UserID, validation.Required, validation.Min(uint(1))),
	)
}

type UpdateRegistrationRequest struct {
	IsOnWait    *bool `json:"is_on_wait"`
	HasAttended *bool `json:"has_attended"`
	AllowPhoto  *bool `json:"allow_photo"`
}

func (req *UpdateRegistrationRequest) Validate() error {
	if req.IsOnWait == nil && req.HasAttended == nil && req.AllowPhoto == nil {
		return errNothingToUpdate
	}

	return nil
}
