package blocks

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Request describes one download invocation. Credentials live in memory for
// the duration of the run and are never persisted or logged by this package.
type Request struct {
	Category   Category
	Field      string `validate:"required"`
	Username   string `validate:"required"`
	Password   string `validate:"required"`
	OutputDir  string `validate:"required,dir"`
	Unpack     bool
	ReportPath string
}

var validate = validator.New()

// Validate checks the request preconditions that do not need the feature
// source. Any failure here aborts before a connection is attempted.
func (r Request) Validate() error {
	if _, ok := templates[r.Category]; !ok {
		return fmt.Errorf("unknown category %v", r.Category)
	}
	if err := validate.Struct(r); err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			return err
		}
		for _, fe := range errs {
			switch fe.Field() {
			case "Field":
				return fmt.Errorf("a grid identifier attribute field is required")
			case "Username", "Password":
				return fmt.Errorf("FTP username and password are required")
			case "OutputDir":
				if fe.Tag() == "dir" {
					return fmt.Errorf("output folder %s does not exist or is not a directory", r.OutputDir)
				}
				return fmt.Errorf("an output folder is required")
			}
		}
		return err
	}
	return nil
}
