// Package nmea implements validation and decoding of NMEA-0183 style
// sentences as used by marine instruments.
//
// The validator is total: every function returns a structured result and
// never panics, whatever the input. A dropped sentence is accounted for by
// the caller; nothing here is fatal.
package nmea

import (
	"fmt"
	"strings"
)

// ErrorKind classifies why a sentence failed validation.
type ErrorKind string

const (
	ErrEmpty            ErrorKind = "empty"
	ErrMissingDelimiter ErrorKind = "missing-delimiter"
	ErrMissingStar      ErrorKind = "missing-star"
	ErrTooFewFields     ErrorKind = "too-few-fields"
	ErrChecksumMismatch ErrorKind = "checksum-mismatch"
)

// minFields is the minimum comma-delimited field count for a generic
// sentence: the address field plus at least one datum.
const minFields = 2

// ChecksumResult reports the outcome of a checksum comparison.
// Found is empty when the sentence carries no '*' delimiter.
type ChecksumResult struct {
	OK       bool
	Expected string
	Found    string
}

// StructureResult reports structural validation.
type StructureResult struct {
	OK     bool
	Errors []ErrorKind
}

// ValidationResult is the combined outcome of ParseAndValidate.
type ValidationResult struct {
	OK       bool
	Errors   []ErrorKind
	Checksum ChecksumResult
}

// Has reports whether kind is among the recorded errors.
func (r StructureResult) Has(kind ErrorKind) bool { return hasKind(r.Errors, kind) }

// Has reports whether kind is among the recorded errors.
func (r ValidationResult) Has(kind ErrorKind) bool { return hasKind(r.Errors, kind) }

func hasKind(kinds []ErrorKind, kind ErrorKind) bool {
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// ComputeChecksum XORs the bytes strictly between the leading delimiter
// ('$' or '!') and '*', both exclusive, and renders the result as two
// uppercase hex digits.
//
// Malformed input still yields a defined answer: without a leading
// delimiter the XOR starts at the first byte, and without a '*' it runs to
// the end of the line.
func ComputeChecksum(sentence string) string {
	s := strings.TrimSpace(sentence)
	start := 0
	if len(s) > 0 && (s[0] == '$' || s[0] == '!') {
		start = 1
	}
	end := strings.LastIndexByte(s, '*')
	if end == -1 || end < start {
		end = len(s)
	}
	ck := byte(0)
	for i := start; i < end; i++ {
		ck ^= s[i]
	}
	return fmt.Sprintf("%02X", ck)
}

// ChecksumFromSentence extracts the two hex digits following '*'.
// ok is false when the sentence has no '*' or fewer than two trailing
// characters after it.
func ChecksumFromSentence(sentence string) (found string, ok bool) {
	s := strings.TrimSpace(sentence)
	star := strings.LastIndexByte(s, '*')
	if star == -1 {
		return "", false
	}
	tail := s[star+1:]
	if len(tail) < 2 {
		return "", false
	}
	return tail[:2], true
}

// ValidateChecksum compares the computed checksum against the one carried
// by the sentence. The comparison is case-insensitive. A sentence without
// a '*' delimiter is never checksum-valid.
func ValidateChecksum(sentence string) ChecksumResult {
	expected := ComputeChecksum(sentence)
	found, ok := ChecksumFromSentence(sentence)
	if !ok {
		return ChecksumResult{OK: false, Expected: expected}
	}
	return ChecksumResult{
		OK:       strings.EqualFold(expected, found),
		Expected: expected,
		Found:    strings.ToUpper(found),
	}
}

// ValidateStructure checks the shape of a sentence without touching the
// checksum value: leading delimiter, presence of '*', and a minimum field
// count. All detected kinds are reported, never just the first.
func ValidateStructure(sentence string) StructureResult {
	s := strings.TrimSpace(sentence)
	if s == "" {
		return StructureResult{Errors: []ErrorKind{ErrEmpty}}
	}

	var errs []ErrorKind
	body := s
	if s[0] == '$' || s[0] == '!' {
		body = s[1:]
	} else {
		errs = append(errs, ErrMissingDelimiter)
	}

	star := strings.LastIndexByte(body, '*')
	if star == -1 {
		errs = append(errs, ErrMissingStar)
	} else {
		body = body[:star]
	}

	if len(strings.Split(body, ",")) < minFields {
		errs = append(errs, ErrTooFewFields)
	}

	return StructureResult{OK: len(errs) == 0, Errors: errs}
}

// ParseAndValidate runs structural and checksum validation together.
// OK requires both to pass; Errors is the union of everything detected.
func ParseAndValidate(sentence string) ValidationResult {
	st := ValidateStructure(sentence)
	ck := ValidateChecksum(sentence)

	errs := append([]ErrorKind(nil), st.Errors...)
	if !ck.OK && !st.Has(ErrMissingStar) && !st.Has(ErrEmpty) {
		errs = append(errs, ErrChecksumMismatch)
	}

	return ValidationResult{
		OK:       st.OK && ck.OK,
		Errors:   errs,
		Checksum: ck,
	}
}
