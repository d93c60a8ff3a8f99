package srcmap

import (
	"errors"
	"strings"
)

const base64Alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789+/"

const (
	vlqShift    = 5
	vlqBase     = 1 << vlqShift
	vlqMask     = vlqBase - 1
	vlqContinue = vlqBase
)

// ErrInvalidVLQ is returned by DecodeVLQ for malformed input.
var ErrInvalidVLQ = errors.New("invalid base64 VLQ")

// EncodeVLQ appends the base64 VLQ form of v to sb.
func EncodeVLQ(sb *strings.Builder, v int) {
	var u uint64
	if v < 0 {
		u = uint64(-int64(v))<<1 | 1
	} else {
		u = uint64(v) << 1
	}
	for {
		digit := u & vlqMask
		u >>= vlqShift
		if u > 0 {
			digit |= vlqContinue
		}
		sb.WriteByte(base64Alphabet[digit])
		if u == 0 {
			return
		}
	}
}

// DecodeVLQ reads one value from the start of s and returns it together with
// the number of bytes consumed.
func DecodeVLQ(s string) (int, int, error) {
	var (
		u     uint64
		shift uint
	)
	for i := 0; i < len(s); i++ {
		digit := strings.IndexByte(base64Alphabet, s[i])
		if digit < 0 || shift > 60 {
			return 0, 0, ErrInvalidVLQ
		}
		u |= uint64(digit&vlqMask) << shift
		if digit&vlqContinue == 0 {
			v := int(u >> 1)
			if u&1 == 1 {
				v = -v
			}
			return v, i + 1, nil
		}
		shift += vlqShift
	}
	return 0, 0, ErrInvalidVLQ
}
