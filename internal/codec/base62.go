// Package codec maps storage ids to short codes and back.
package codec

import (
	"errors"
	"math"
	"strings"
)

// Alphabet is the ordered symbol set. A symbol's index is its digit value.
const Alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const base = uint64(len(Alphabet))

// ErrInvalidCode is returned when a code cannot be decoded to an id.
var ErrInvalidCode = errors.New("invalid short code")

// Encode returns the base-62 representation of id. Zero encodes to "a".
func Encode(id uint64) string {
	if id == 0 {
		return Alphabet[:1]
	}

	var buf [11]byte // 62^11 > math.MaxUint64

	i := len(buf)
	for id > 0 {
		i--
		buf[i] = Alphabet[id%base]
		id /= base
	}

	return string(buf[i:])
}

// Decode parses code back into the id it was encoded from.
// Empty codes, symbols outside Alphabet and values past math.MaxUint64 yield ErrInvalidCode.
func Decode(code string) (uint64, error) {
	if code == "" {
		return 0, ErrInvalidCode
	}

	var id uint64

	for i := 0; i < len(code); i++ {
		digit := strings.IndexByte(Alphabet, code[i])
		if digit < 0 {
			return 0, ErrInvalidCode
		}

		if id > (math.MaxUint64-uint64(digit))/base {
			return 0, ErrInvalidCode
		}

		id = id*base + uint64(digit)
	}

	return id, nil
}

// Valid reports whether code is non-empty and uses only Alphabet symbols.
func Valid(code string) bool {
	if code == "" {
		return false
	}

	for i := 0; i < len(code); i++ {
		if strings.IndexByte(Alphabet, code[i]) < 0 {
			return false
		}
	}

	return true
}

// Canonical reports whether code is the exact encoding of the id it decodes to.
// Codes with redundant leading zero symbols ("ab" for "b") are not canonical.
func Canonical(code string) bool {
	id, err := Decode(code)
	if err != nil {
		return false
	}

	return Encode(id) == code
}
