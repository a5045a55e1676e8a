package core

import (
	"fmt"
	"time"

	"github.com/holiman/uint256"

	"github.com/spacemeshos/go-entrypoint/common/types"
)

const maxUint48 = 1<<48 - 1

// SignatureFailure is the marker returned when the authorization doesn't match.
var SignatureFailure = types.TemplateAddress(1)

// ValidationData is returned by accounts and sponsors.
//
// Marker is zero when validation passed, SignatureFailure when authorization
// is invalid, or the address of an external validator that must check it.
// Window bounds are unix seconds, zero ValidUntil means unbounded.
type ValidationData struct {
	Marker     Address
	ValidAfter uint64
	ValidUntil uint64
}

// Valid returns validation data without marker and with unbounded window.
func Valid() ValidationData {
	return ValidationData{}
}

// Failed returns validation data with the signature failure marker.
func Failed() ValidationData {
	return ValidationData{Marker: SignatureFailure}
}

// Window returns validation data for a bounded window.
func Window(after, until uint64) ValidationData {
	return ValidationData{ValidAfter: after, ValidUntil: until}
}

// SignatureFailed is true if the marker signals invalid authorization.
func (v ValidationData) SignatureFailed() bool {
	return v.Marker == SignatureFailure
}

// External is true if the marker names an external validator.
func (v ValidationData) External() bool {
	return v.Marker != (Address{}) && v.Marker != SignatureFailure
}

// Pack into marker | validUntil << 160 | validAfter << 208.
func (v ValidationData) Pack() *uint256.Int {
	packed := new(uint256.Int).SetBytes(v.Marker[:])
	until := uint256.NewInt(v.ValidUntil & maxUint48)
	packed.Or(packed, until.Lsh(until, 160))
	after := uint256.NewInt(v.ValidAfter & maxUint48)
	packed.Or(packed, after.Lsh(after, 208))
	return packed
}

// UnpackValidationData is the inverse of Pack.
func UnpackValidationData(packed *uint256.Int) ValidationData {
	b := packed.Bytes32()
	var v ValidationData
	copy(v.Marker[:], b[12:])
	v.ValidUntil = new(uint256.Int).Rsh(packed, 160).Uint64() & maxUint48
	v.ValidAfter = new(uint256.Int).Rsh(packed, 208).Uint64() & maxUint48
	return v
}

// CheckWindow fails with ErrValidationFailed when now is outside of [ValidAfter, ValidUntil].
func (v ValidationData) CheckWindow(now time.Time) error {
	until := v.ValidUntil
	if until == 0 {
		until = maxUint48
	}
	if until < v.ValidAfter {
		return fmt.Errorf("%w: empty window [%d, %d]", ErrValidationFailed, v.ValidAfter, v.ValidUntil)
	}
	ts := now.Unix()
	if ts < 0 {
		ts = 0
	}
	switch {
	case uint64(ts) > until:
		return fmt.Errorf("%w: expired at %d", ErrValidationFailed, v.ValidUntil)
	case uint64(ts) < v.ValidAfter:
		return fmt.Errorf("%w: not valid before %d", ErrValidationFailed, v.ValidAfter)
	}
	return nil
}

// Intersect narrows the window of v by the window of other and keeps the first non-zero marker.
func (v ValidationData) Intersect(other ValidationData) ValidationData {
	rst := v
	if rst.Marker == (Address{}) {
		rst.Marker = other.Marker
	}
	if other.ValidAfter > rst.ValidAfter {
		rst.ValidAfter = other.ValidAfter
	}
	if rst.ValidUntil == 0 || (other.ValidUntil != 0 && other.ValidUntil < rst.ValidUntil) {
		rst.ValidUntil = other.ValidUntil
	}
	return rst
}
