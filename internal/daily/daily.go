// Package daily derives the shared daily challenge from the calendar date.
package daily

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"
	"time"
)

// DateKey returns YYYY-MM-DD in UTC.
func DateKey(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

// Seed returns a deterministic seed for a date using HMAC(salt, YYYY-MM-DD).
// Everyone playing on the same UTC day with the same salt gets the same rounds.
func Seed(date time.Time, salt string) int64 {
	return SeedForKey(DateKey(date), salt)
}

// SeedForKey is Seed for an already formatted date key.
func SeedForKey(dateKey, salt string) int64 {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(dateKey))
	sum := h.Sum(nil)
	// first 8 bytes, top bit cleared so the seed stays non-negative
	return int64(binary.BigEndian.Uint64(sum[:8]) >> 1)
}
