package httpapi

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number decodes a JSON number or numeric string. Anything else, including
// null and unparseable strings, decodes to 0.
type Number float64

func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*n = 0
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		*n = Number(ParseFloat(s))
		return nil
	}
	v, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		*n = 0
		return nil
	}
	*n = Number(v)
	return nil
}

func (n Number) Float() float64 { return float64(n) }

// ParseFloat reads the longest leading decimal number in s, mirroring the
// lenient parsing nutrition sources need ("12.5 g" is 12.5). No number is 0.
func ParseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	end := 0
	seenDigit, seenDot := false, false
scan:
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			seenDigit = true
			end = i + 1
		case r == '.' && !seenDot:
			seenDot = true
		case (r == '-' || r == '+') && i == 0:
		default:
			break scan
		}
	}
	if !seenDigit {
		return 0
	}
	v, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		return 0
	}
	return v
}
