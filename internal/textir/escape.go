package textir

import (
	"fmt"
	"strconv"
	"strings"
)

const hexDigits = "0123456789abcdef"

// Escape quotes s for the text format. Bytes outside printable ASCII, as well
// as '"' and '\', are written as a backslash and two lowercase hex digits.
func Escape(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 0x20 && c <= 0x7e && c != '"' && c != '\\' {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('\\')
		b.WriteByte(hexDigits[c>>4])
		b.WriteByte(hexDigits[c&0xf])
	}
	b.WriteByte('"')
	return b.String()
}

// Unescape reverses Escape.
func Unescape(quoted string) (string, error) {
	if len(quoted) < 2 || quoted[0] != '"' || quoted[len(quoted)-1] != '"' {
		return "", fmt.Errorf("textir: %q is not a quoted string", quoted)
	}
	body := quoted[1 : len(quoted)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+3 > len(body) {
			return "", fmt.Errorf("textir: truncated escape at offset %d in %q", i, quoted)
		}
		v, err := strconv.ParseUint(body[i+1:i+3], 16, 8)
		if err != nil {
			return "", fmt.Errorf("textir: bad escape at offset %d in %q", i, quoted)
		}
		b.WriteByte(byte(v))
		i += 2
	}
	return b.String(), nil
}
