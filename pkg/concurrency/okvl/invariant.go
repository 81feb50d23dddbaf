package okvl

import (
	"fmt"

	multierror "github.com/hashicorp/go-multierror"

	dberr "shorekits/pkg/error"
)

// Validate checks that lm could have been produced by the setters and Combine:
// every slot holds a defined mode and the key slot covers the intent of every
// partition. All violations are reported together.
//
// SetKeyMode bypasses the partition bookkeeping, so a caller lowering the key
// directly can produce a vector that fails here.
func (lm LockMode) Validate() error {
	var result *multierror.Error

	for i, m := range lm.modes {
		if !m.IsValid() {
			result = multierror.Append(result, invariantError(fmt.Sprintf("slot %d holds undefined mode %d", i, uint8(m))))
		}
	}
	if result != nil {
		return result.ErrorOrNil()
	}

	key := lm.modes[keyIndex]
	for i, m := range lm.modes[:Partitions] {
		if !impliedBy[parentMode[m]][key] {
			result = multierror.Append(result, invariantError(fmt.Sprintf(
				"partition %d holds %s but key mode %s does not cover intent %s", i, m, key, parentMode[m])))
		}
	}
	return result.ErrorOrNil()
}

func invariantError(detail string) *dberr.DBError {
	err := dberr.New(dberr.ErrCategoryData, dberr.CodeInvariantViolation, "lock mode invariant violated")
	err.Detail = detail
	err.Operation = "Validate"
	err.Component = "OKVL"
	return err
}

// assertInvariant panics on a malformed vector in okvldebug builds and
// compiles to nothing otherwise.
func assertInvariant(lm LockMode) {
	if !debugInvariants {
		return
	}
	if err := lm.Validate(); err != nil {
		panic(err)
	}
}
