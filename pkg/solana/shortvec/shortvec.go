// Package shortvec implements the compact-u16 length prefix used by Solana
// transaction encoding.
package shortvec

import (
	"io"
	"math"

	"github.com/pkg/errors"
)

const maxEncodedLen = 3

// EncodeLen writes the compact-u16 encoding of length to w.
func EncodeLen(w io.Writer, length int) (int, error) {
	if length < 0 || length > math.MaxUint16 {
		return 0, errors.Errorf("len out of range [0, %d]: %d", math.MaxUint16, length)
	}

	var buf [maxEncodedLen]byte
	n := 0
	for {
		buf[n] = byte(length & 0x7f)
		length >>= 7
		if length == 0 {
			n++
			break
		}
		buf[n] |= 0x80
		n++
	}

	return w.Write(buf[:n])
}

// DecodeLen reads a compact-u16 encoded length from r.
func DecodeLen(r io.ByteReader) (int, error) {
	var val int
	for i := 0; i < maxEncodedLen; i++ {
		b, err := r.ReadByte()
		if err != nil {
			return 0, err
		}

		val |= int(b&0x7f) << (i * 7)
		if b&0x80 == 0 {
			if val > math.MaxUint16 {
				return 0, errors.Errorf("decoded len exceeds %d", math.MaxUint16)
			}
			return val, nil
		}
	}

	return 0, errors.Errorf("encoded len exceeds %d bytes", maxEncodedLen)
}
