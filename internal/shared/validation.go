package shared

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidateStruct checks form's validate tags. The first failing field is reported
// with the message registered under "Field.tag" or "Field" in messages.
func ValidateStruct(form any, messages map[string]string) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return errors.New(msg)
	}
	if msg, ok := messages[fe.Field()]; ok {
		return errors.New(msg)
	}
	return fmt.Errorf("%s is invalid", fe.Field())
}
