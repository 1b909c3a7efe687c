package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorMessage(t *testing.T) {
	assert.Equal(t, "price: must not be negative", Invalid("price", "must not be negative").Error())
	assert.Equal(t, "items are required", Invalid("", "items are required").Error())
}

func TestIsValidationThroughWrap(t *testing.T) {
	err := fmt.Errorf("create product: %w", Invalid("name", "name is required"))
	assert.True(t, IsValidation(err))
	assert.False(t, IsValidation(ErrNotFound))
	assert.False(t, IsValidation(errors.New("boom")))
}
