package output

import (
	"errors"

	"github.com/frahmantamala/hr-portal/internal"
)

const (
	ExitSuccess    = 0
	ExitGeneral    = 1
	ExitUsageError = 2
	ExitAuthError  = 3
	ExitConfig     = 4
	ExitNetwork    = 5
)

// ExitCode maps an error to the process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitSuccess
	}

	var appErr *internal.AppError
	if !errors.As(err, &appErr) {
		return ExitGeneral
	}

	switch appErr.Type {
	case internal.ErrorTypeValidation, internal.ErrorTypeBadRequest:
		return ExitUsageError
	case internal.ErrorTypeSessionExpired, internal.ErrorTypeUnauthorized, internal.ErrorTypeForbidden:
		return ExitAuthError
	case internal.ErrorTypeNetwork:
		return ExitNetwork
	default:
		return ExitGeneral
	}
}

// FormatError prints err, listing every field message for validation errors.
func (p *Printer) FormatError(err error) {
	var appErr *internal.AppError
	if !errors.As(err, &appErr) {
		p.Error("%v", err)
		return
	}

	fields := appErr.FieldErrors()
	if len(fields) == 0 {
		p.Error("%s", appErr.Error())
		if appErr.Type == internal.ErrorTypeSessionExpired {
			p.Warning("run `hrportal login` to start a new session")
		}
		return
	}

	for _, f := range fields {
		p.Error("%s: %s", f.Field, f.Message)
	}
}
