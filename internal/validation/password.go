// Package validation holds input validation rules shared by the service
// layer.
package validation

import (
	"strings"

	"savornshare/internal/models"
)

const minPasswordLen = 6

// Password checks a candidate password against the account rules. The
// returned error is a validation AppError suitable for the wire.
func Password(p string) error {
	if len(strings.TrimSpace(p)) < minPasswordLen {
		return models.NewValidationError("Password should be at least 6 characters.")
	}
	return nil
}
