// Package id generates identifiers for processing jobs.
package id

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Generate returns a new job identifier of the form job-<unix>-<hex>.
// The timestamp prefix keeps identifiers roughly sortable by creation time;
// the random suffix disambiguates jobs submitted within the same second.
func Generate() string {
	now := time.Now().Unix()

	var suffix [4]byte
	if _, err := rand.Read(suffix[:]); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; degrade to a
		// timestamp-only identifier rather than panic here.
		return fmt.Sprintf("job-%d", now)
	}
	return fmt.Sprintf("job-%d-%x", now, suffix)
}
