package okvl

import (
	"strconv"
	"strings"

	dberr "shorekits/pkg/error"
)

// ElementLockMode is one of the six classical hierarchical lock modes. The
// ordinal values index the lookup tables below and must not be reordered.
type ElementLockMode uint8

const (
	N   ElementLockMode = iota // no lock
	IS                         // intention shared
	IX                         // intention exclusive
	S                          // shared
	SIX                        // shared + intention exclusive
	X                          // exclusive

	elementModeCount = 6
)

var elementNames = [elementModeCount]string{"N", "IS", "IX", "S", "SIX", "X"}

// AllElementModes lists every element mode in ordinal order.
var AllElementModes = [elementModeCount]ElementLockMode{N, IS, IX, S, SIX, X}

// compat[requested][granted]
var compat = [elementModeCount][elementModeCount]bool{
	// N, IS, IX, S, SIX, X
	{true, true, true, true, true, true},      // N
	{true, true, true, true, true, false},     // IS
	{true, true, true, false, false, false},   // IX
	{true, true, false, true, false, false},   // S
	{true, true, false, false, false, false},  // SIX
	{true, false, false, false, false, false}, // X
}

// impliedBy[left][right] holds when left is dominated by right.
var impliedBy = [elementModeCount][elementModeCount]bool{
	// N, IS, IX, S, SIX, X
	{true, true, true, true, true, true},      // N
	{false, true, true, true, true, true},     // IS
	{false, false, true, false, true, true},   // IX
	{false, false, false, true, true, true},   // S
	{false, false, false, false, true, true},  // SIX
	{false, false, false, false, false, true}, // X
}

// parentMode is the intent placed on the key while a partition holds m.
var parentMode = [elementModeCount]ElementLockMode{
	N:   N,
	IS:  IS,
	IX:  IX,
	S:   IS,
	SIX: IX,
	X:   IX,
}

var combined = [elementModeCount][elementModeCount]ElementLockMode{
	// N, IS, IX, S, SIX, X
	{N, IS, IX, S, SIX, X},       // N
	{IS, IS, IX, S, SIX, X},      // IS
	{IX, IX, IX, SIX, SIX, X},    // IX
	{S, S, SIX, S, SIX, X},       // S
	{SIX, SIX, SIX, SIX, SIX, X}, // SIX
	{X, X, X, X, X, X},           // X
}

// Compatible reports whether requested may be granted while granted is held.
func Compatible(requested, granted ElementLockMode) bool {
	return compat[requested][granted]
}

// ImpliedBy reports whether holding right already satisfies a request for left.
func ImpliedBy(left, right ElementLockMode) bool {
	return impliedBy[left][right]
}

// ParentMode returns the intent mode a partition lock in m places on its key.
func ParentMode(m ElementLockMode) ElementLockMode {
	return parentMode[m]
}

// CombineElements returns the weakest mode that covers both left and right.
func CombineElements(left, right ElementLockMode) ElementLockMode {
	return combined[left][right]
}

// IsValid reports whether m is one of the six defined modes.
func (m ElementLockMode) IsValid() bool {
	return m < elementModeCount
}

// IsAbsolute reports whether m locks the whole resource rather than signalling
// finer-grained locks beneath it.
func (m ElementLockMode) IsAbsolute() bool {
	return m == S || m == X
}

func (m ElementLockMode) String() string {
	if !m.IsValid() {
		return "UNKNOWN"
	}
	return elementNames[m]
}

// ParseElementLockMode converts a mode name such as "SIX" back into its value.
// Matching is case-insensitive.
func ParseElementLockMode(s string) (ElementLockMode, error) {
	name := strings.ToUpper(strings.TrimSpace(s))
	for i, n := range elementNames {
		if n == name {
			return ElementLockMode(i), nil
		}
	}

	err := dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidLockMode, "unknown element lock mode")
	err.Detail = "got " + strconv.Quote(s)
	err.Hint = "use one of N, IS, IX, S, SIX, X"
	err.Operation = "ParseElementLockMode"
	err.Component = "OKVL"
	return 0, err
}
