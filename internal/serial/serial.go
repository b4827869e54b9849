package serial

import (
	"math/rand/v2"
	"strings"
)

// Length is the number of digits in a robot serial.
const Length = 5

// Generate returns a serial made of Length independently drawn decimal digits.
// Serials are not unique; collisions are left to the caller.
func Generate() string {
	var b strings.Builder
	b.Grow(Length)
	for range Length {
		b.WriteByte(byte('0' + rand.IntN(10)))
	}
	return b.String()
}

// Valid reports whether s has the shape produced by Generate.
func Valid(s string) bool {
	if len(s) != Length {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
