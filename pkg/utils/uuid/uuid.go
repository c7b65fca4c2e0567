// Package uuid generates the random identifiers that tag a run in logs and
// reports.
package uuid

import (
	"crypto/rand"
	"fmt"
)

// New returns a random RFC 4122 version 4 UUID in its canonical
// 8-4-4-4-12 hex form.
func New() string {
	id := [16]byte{}
	if _, err := rand.Read(id[:]); err != nil {
		panic("cannot generate uuid using rand")
	}

	// Version 4, variant 10.
	id[6] = (id[6] & 0x0f) | 0x40
	id[8] = (id[8] & 0x3f) | 0x80

	return fmt.Sprintf("%x-%x-%x-%x-%x", id[0:4], id[4:6], id[6:8], id[8:10], id[10:])
}
