package board

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/wolfman30/hvac-dispatch/internal/dispatch"
)

// ScheduleRequest is the form-driven way to add an appointment.
type ScheduleRequest struct {
	CustomerID         string               `json:"customer_id" validate:"required"`
	TechnicianID       string               `json:"technician_id" validate:"required"`
	ServiceType        dispatch.ServiceType `json:"service_type" validate:"required,oneof=installation maintenance repair inspection"`
	ServiceDescription string               `json:"service_description" validate:"required"`
	Priority           dispatch.Priority    `json:"priority" validate:"omitempty,oneof=low normal high emergency"`
	Date               string               `json:"date" validate:"required,canonical_date"`
	TimeSlot           dispatch.TimeSlot    `json:"time_slot" validate:"required,oneof=morning afternoon evening"`
	Notes              string               `json:"notes"`
}

// TechnicianQuery asks for ranked technicians. Limit 0 returns every candidate.
type TechnicianQuery struct {
	ServiceType dispatch.ServiceType `json:"service_type" validate:"required,oneof=installation maintenance repair inspection"`
	Date        string               `json:"date" validate:"required,canonical_date"`
	TimeSlot    dispatch.TimeSlot    `json:"time_slot" validate:"required,oneof=morning afternoon evening"`
	Limit       int                  `json:"limit" validate:"gte=0"`
}

// DateQuery asks for the best days over the coming week.
type DateQuery struct {
	ServiceType dispatch.ServiceType `json:"service_type" validate:"required,oneof=installation maintenance repair inspection"`
	Priority    dispatch.Priority    `json:"priority" validate:"omitempty,oneof=low normal high emergency"`
	Limit       int                  `json:"limit" validate:"gte=0,lte=7"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("canonical_date", func(fl validator.FieldLevel) bool {
		return dispatch.ValidDate(fl.Field().String())
	})
	return v
}

// check runs struct validation and folds failures into ErrInvalidRequest.
func (b *Board) check(req any) error {
	err := b.validate.Struct(req)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "canonical_date":
			msgs = append(msgs, fe.Field()+" must be YYYY-MM-DD")
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}
