package okvl

import (
	"strconv"
	"strings"

	dberr "shorekits/pkg/error"
)

// String renders lm for debugging, e.g. <key_0=S>,<key_*=IS>,<gap=N>.
// Partitions holding N are omitted; key and gap are always present.
func (lm LockMode) String() string {
	var b strings.Builder
	for i, m := range lm.modes[:Partitions] {
		if m == N {
			continue
		}
		b.WriteString("<key_")
		b.WriteString(strconv.Itoa(i))
		b.WriteByte('=')
		b.WriteString(m.String())
		b.WriteString(">,")
	}
	b.WriteString("<key_*=")
	b.WriteString(lm.modes[keyIndex].String())
	b.WriteString(">,<gap=")
	b.WriteString(lm.modes[gapIndex].String())
	b.WriteByte('>')
	return b.String()
}

// ParseLockMode reads the String form back. Slots are restored exactly as
// written; the key is not raised for the listed partitions.
func ParseLockMode(s string) (LockMode, error) {
	var lm LockMode
	var seen [ModeCount]bool

	for _, entry := range strings.Split(strings.TrimSpace(s), ",") {
		entry = strings.TrimSpace(entry)
		if !strings.HasPrefix(entry, "<") || !strings.HasSuffix(entry, ">") {
			return LockMode{}, parseError(s, "entry "+strconv.Quote(entry)+" is not of the form <slot=MODE>")
		}
		name, value, ok := strings.Cut(entry[1:len(entry)-1], "=")
		if !ok {
			return LockMode{}, parseError(s, "entry "+strconv.Quote(entry)+" has no '='")
		}

		slot, err := slotIndex(name)
		if err != nil {
			return LockMode{}, dberr.Wrap(err, dberr.CodeInvalidLockMode, "ParseLockMode", "OKVL")
		}
		if seen[slot] {
			return LockMode{}, parseError(s, "slot "+name+" listed twice")
		}
		seen[slot] = true

		mode, err := ParseElementLockMode(value)
		if err != nil {
			return LockMode{}, dberr.Wrap(err, dberr.CodeInvalidLockMode, "ParseLockMode", "OKVL")
		}
		lm.modes[slot] = mode
	}

	if !seen[keyIndex] || !seen[gapIndex] {
		return LockMode{}, parseError(s, "both <key_*=...> and <gap=...> are required")
	}
	return lm, nil
}

func slotIndex(name string) (int, error) {
	switch name {
	case "key_*":
		return keyIndex, nil
	case "gap":
		return gapIndex, nil
	}

	idx, ok := strings.CutPrefix(name, "key_")
	if !ok {
		return 0, dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidLockMode, "unknown slot "+strconv.Quote(name))
	}
	n, err := strconv.Atoi(idx)
	if err != nil || n < 0 || n >= Partitions {
		e := dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidPartition, "partition out of range")
		e.Detail = name + ", have " + strconv.Itoa(Partitions) + " partitions"
		return 0, e
	}
	return n, nil
}

func parseError(input, detail string) *dberr.DBError {
	err := dberr.New(dberr.ErrCategoryUser, dberr.CodeInvalidLockMode, "malformed lock mode "+strconv.Quote(input))
	err.Detail = detail
	err.Operation = "ParseLockMode"
	err.Component = "OKVL"
	return err
}
