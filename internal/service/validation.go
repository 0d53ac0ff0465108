package service

import (
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/intervention-planner-api/internal/models"
	appErrors "github.com/noah-isme/intervention-planner-api/pkg/errors"
)

// newValidator returns validate (or a fresh instance) with the scheduling tags registered.
func newValidator(validate *validator.Validate) *validator.Validate {
	if validate == nil {
		validate = validator.New()
	}
	_ = validate.RegisterValidation("weekday", func(fl validator.FieldLevel) bool {
		return models.WeekDay(fl.Field().String()).Valid()
	})
	_ = validate.RegisterValidation("hhmm", func(fl validator.FieldLevel) bool {
		return models.ValidClock(fl.Field().String())
	})
	return validate
}

func validationError(err error, message string) error {
	return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
}

func validateBlocks(blocks []models.WeeklyTimeBlock) error {
	for _, block := range blocks {
		if err := block.Validate(); err != nil {
			return validationError(err, err.Error())
		}
	}
	return nil
}
