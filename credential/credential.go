// Package credential holds the identifier read from a proximity credential.
package credential

import (
	"fmt"
	"strconv"
	"strings"
)

// UID is the raw unique identifier of a credential, as read from the tag.
// It is not authenticated in any way.
type UID []byte

// String renders the identifier as uppercase two-digit hex bytes separated
// by single spaces, e.g. "04 A3 FF 1B".
func (u UID) String() string {
	if len(u) == 0 {
		return ""
	}
	var sb strings.Builder
	sb.Grow(len(u)*3 - 1)
	for i, b := range u {
		if i > 0 {
			sb.WriteByte(' ')
		}
		fmt.Fprintf(&sb, "%02X", b)
	}
	return sb.String()
}

// Equal reports whether two identifiers carry the same bytes.
func (u UID) Equal(other UID) bool {
	if len(u) != len(other) {
		return false
	}
	for i := range u {
		if u[i] != other[i] {
			return false
		}
	}
	return true
}

// Parse decodes an identifier. It accepts the space separated form produced
// by String as well as a contiguous hex string ("04A3FF1B"), in either case.
func Parse(s string) (UID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty identifier")
	}

	fields := strings.Fields(s)
	if len(fields) == 1 {
		hexstr := fields[0]
		if len(hexstr)%2 != 0 {
			return nil, fmt.Errorf("odd number of hex digits in %q", hexstr)
		}
		fields = fields[:0]
		for i := 0; i < len(hexstr); i += 2 {
			fields = append(fields, hexstr[i:i+2])
		}
	}

	uid := make(UID, 0, len(fields))
	for _, f := range fields {
		if len(f) != 2 {
			return nil, fmt.Errorf("bad identifier byte %q", f)
		}
		b, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, fmt.Errorf("bad identifier byte %q: %w", f, err)
		}
		uid = append(uid, byte(b))
	}
	return uid, nil
}
