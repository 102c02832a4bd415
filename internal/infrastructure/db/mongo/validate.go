package mongo

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// rowValidator checks documents decoded from the database before they reach
// the core. Rows written by other clients are not trusted to be complete.
var rowValidator = validator.New()

func validateRow(kind string, v interface{}) error {
	if err := rowValidator.Struct(v); err != nil {
		return fmt.Errorf("invalid %s document: %w", kind, err)
	}
	return nil
}
