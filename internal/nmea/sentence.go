package nmea

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Sentence is a validated, field-split sentence. Fields[0] is the address
// field; the sentence type is the address normalized to its last three
// characters so GPDPT/SDDPT/IIDPT all decode alike.
type Sentence struct {
	Raw        string
	Type       string
	Fields     []string
	ReceivedAt time.Time
}

// Parse validates a raw line and splits it into fields. The returned
// ValidationResult carries the failure detail when ok is false.
func Parse(line string, receivedAt time.Time) (Sentence, ValidationResult) {
	res := ParseAndValidate(line)
	if !res.OK {
		return Sentence{}, res
	}

	s := strings.TrimSpace(line)
	payload := s[1:strings.LastIndexByte(s, '*')]
	fields := strings.Split(payload, ",")

	addr := fields[0]
	typ := addr
	if len(typ) > 3 {
		typ = typ[len(typ)-3:]
	}

	return Sentence{
		Raw:        s,
		Type:       strings.ToUpper(typ),
		Fields:     fields,
		ReceivedAt: receivedAt,
	}, res
}

// Field returns the i-th field, "" when out of range.
func (s Sentence) Field(i int) string {
	if i < 0 || i >= len(s.Fields) {
		return ""
	}
	return strings.TrimSpace(s.Fields[i])
}

// FloatField parses the i-th field as a float. Empty fields are common in
// NMEA and simply report ok=false.
func (s Sentence) FloatField(i int) (float64, bool) {
	v := s.Field(i)
	if v == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// latLonField parses NMEA ddmm.mmmm / dddmm.mmmm plus hemisphere into
// signed decimal degrees.
func (s Sentence) latLonField(valueIdx, hemiIdx int) (float64, bool) {
	v := s.Field(valueIdx)
	hemi := strings.ToUpper(s.Field(hemiIdx))
	if v == "" || (hemi != "N" && hemi != "S" && hemi != "E" && hemi != "W") {
		return 0, false
	}

	// The last two digits of the integer part are whole minutes.
	intPart := v
	if dot := strings.IndexByte(v, '.'); dot != -1 {
		intPart = v[:dot]
	}
	if len(intPart) < 3 {
		return 0, false
	}

	deg, err := strconv.Atoi(intPart[:len(intPart)-2])
	if err != nil {
		return 0, false
	}
	mins, err := strconv.ParseFloat(v[len(intPart)-2:], 64)
	if err != nil {
		return 0, false
	}

	dec := float64(deg) + mins/60.0
	if hemi == "S" || hemi == "W" {
		dec = -dec
	}
	return dec, true
}

// Line renders a payload as a framed sentence with its checksum. Used by
// the simulator feed and tests.
func Line(payload string) string {
	ck := byte(0)
	for i := 0; i < len(payload); i++ {
		ck ^= payload[i]
	}
	return fmt.Sprintf("$%s*%02X", payload, ck)
}
