// Package chatref provides the channel identifier used as a key across
// the registry and tracker: either a numeric chat id or an @handle.
package chatref

import (
	"strconv"
	"strings"
)

// Ref identifies a channel by numeric id or by handle. It is comparable
// and safe to use as a map key. The zero value is not a valid reference.
//
// A numeric id and a handle pointing at the same channel are two distinct
// keys; callers must pick one representation and stick with it.
type Ref struct {
	id     int64
	handle string
}

// FromID builds a Ref from a numeric chat id.
func FromID(id int64) Ref {
	return Ref{id: id}
}

// FromHandle builds a Ref from a channel handle, ensuring a leading "@".
func FromHandle(handle string) Ref {
	if !strings.HasPrefix(handle, "@") {
		handle = "@" + handle
	}
	return Ref{handle: handle}
}

// Parse turns operator input into a Ref. A value matching an
// optional-minus-sign digit string is parsed as a numeric chat id;
// anything else is treated as a handle.
func Parse(s string) Ref {
	if isNumeric(s) {
		id, _ := strconv.ParseInt(s, 10, 64)
		return FromID(id)
	}
	return FromHandle(s)
}

func isNumeric(s string) bool {
	if s == "" || s == "-" {
		return false
	}
	for i, r := range s {
		if r == '-' && i == 0 {
			continue
		}
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// IsNumeric reports whether the reference carries a numeric chat id.
func (r Ref) IsNumeric() bool {
	return r.handle == ""
}

// ID returns the numeric chat id, 0 for handle references.
func (r Ref) ID() int64 {
	return r.id
}

// Handle returns the "@name" handle, empty for numeric references.
func (r Ref) Handle() string {
	return r.handle
}

func (r Ref) String() string {
	if r.IsNumeric() {
		return strconv.FormatInt(r.id, 10)
	}
	return r.handle
}
