package materials

import (
	"github.com/plantstock/plantstock/internal/shared"
	"github.com/plantstock/plantstock/internal/workflow"
)

var formMessages = map[string]string{
	"Name.required": "Material name is required",
	"Name.max":      "Material name is too long",
	"Unit.required": "Unit of measure is required",
	"Unit.max":      "Unit of measure is too long",
	"Description":   "Description is too long",
}

func validateForm(f Form) error {
	if err := shared.ValidateStruct(f, formMessages); err != nil {
		return workflow.Invalid(err.Error())
	}
	return nil
}

func validateID(id int64, message string) error {
	if id <= 0 {
		return workflow.Invalid(message)
	}
	return nil
}
