// Package ids allocates the identifiers shared by sessions, widgets and
// instructions. All three come from one process-wide counter, so comparing two
// ids tells which object was created first.
package ids

import (
	"strconv"
	"strings"
	"sync/atomic"
)

// Prefix marks the textual form of an id, e.g. "#42".
const Prefix = "#"

// ID is a positive integer identity. The zero value is Invalid.
type ID uint64

// Invalid is what missing or unparsable ids map to. It is never allocated.
const Invalid ID = 0

var counter atomic.Uint64

// Next returns a fresh id, strictly greater than every id returned before it.
func Next() ID {
	return ID(counter.Add(1))
}

func (id ID) Valid() bool {
	return id != Invalid
}

func (id ID) String() string {
	return Prefix + strconv.FormatUint(uint64(id), 10)
}

// Parse reads the textual form. Anything that is not the prefix followed by a
// positive decimal integer yields Invalid.
func Parse(s string) ID {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, Prefix) {
		return Invalid
	}
	n, err := strconv.ParseUint(s[len(Prefix):], 10, 64)
	if err != nil {
		return Invalid
	}
	return ID(n)
}

func (id ID) MarshalText() ([]byte, error) {
	return []byte(id.String()), nil
}

func (id *ID) UnmarshalText(text []byte) error {
	*id = Parse(string(text))
	return nil
}
