package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleForm struct {
	Name string `validate:"required"`
	Code string `validate:"required,max=4"`
}

func TestValidateStructMessages(t *testing.T) {
	messages := map[string]string{
		"Name":          "Name is required",
		"Code.max":      "Code is too long",
		"Code.required": "Code is required",
	}

	require.NoError(t, ValidateStruct(sampleForm{Name: "a", Code: "b"}, messages))

	err := ValidateStruct(sampleForm{Code: "b"}, messages)
	require.Error(t, err)
	assert.Equal(t, "Name is required", err.Error())

	err = ValidateStruct(sampleForm{Name: "a", Code: "toolong"}, messages)
	require.Error(t, err)
	assert.Equal(t, "Code is too long", err.Error())

	err = ValidateStruct(sampleForm{Name: "a"}, nil)
	require.Error(t, err)
	assert.Equal(t, "Code is invalid", err.Error())
}
