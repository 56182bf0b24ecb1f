package main

import "github.com/woozymasta/terra-road-forge/internal/errs"

// exitCodeFor maps a returned error to the documented exit code.
func exitCodeFor(err error) int {
	switch err.(type) {
	case *errs.ValidationError:
		return exitValidationError
	case *errs.IOError:
		return exitIOError
	case *errs.UnsupportedFormatError:
		return exitUnsupportedFormat
	case *errs.CorruptInputError:
		return exitValidationError
	default:
		return exitUnexpected
	}
}
