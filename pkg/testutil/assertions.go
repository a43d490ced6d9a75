package testutil

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AtharvaDeo101/KARA/internal/domain/model"
)

// AssertErrorContains checks that err contains the expected substring.
func AssertErrorContains(t *testing.T, err error, expected string) {
	t.Helper()
	require.Error(t, err)
	assert.Contains(t, err.Error(), expected)
}

// RequireValidationFields fails unless err is a *model.ValidationError naming
// exactly the given fields in order.
func RequireValidationFields(t *testing.T, err error, fields ...string) {
	t.Helper()
	var verr *model.ValidationError
	require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
	assert.Equal(t, fields, verr.Fields())
}
