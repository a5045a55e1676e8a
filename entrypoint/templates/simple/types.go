package simple

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
	"github.com/spacemeshos/go-entrypoint/entrypoint/core"
)

// SpawnArguments is the immutable state of the account.
type SpawnArguments struct {
	Owner core.Address
}

func (a *SpawnArguments) EncodeScale(enc *scale.Encoder) (int, error) {
	return types.EncodeAddress(enc, a.Owner)
}

func (a *SpawnArguments) DecodeScale(dec *scale.Decoder) (int, error) {
	owner, n, err := types.DecodeAddress(dec)
	a.Owner = owner
	return n, err
}

// Session allows Key to sign operations within the window. Zero ValidUntil is unbounded.
type Session struct {
	Key        core.Address
	ValidAfter uint64
	ValidUntil uint64
}

func (s *Session) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, s.Key)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, s.ValidAfter)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, s.ValidUntil)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (s *Session) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.Key = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.ValidAfter = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		s.ValidUntil = field
	}
	return total, nil
}

// RemoveSessionArguments revoke the session of Key.
type RemoveSessionArguments struct {
	Key core.Address
}

func (a *RemoveSessionArguments) EncodeScale(enc *scale.Encoder) (int, error) {
	return types.EncodeAddress(enc, a.Key)
}

func (a *RemoveSessionArguments) DecodeScale(dec *scale.Decoder) (int, error) {
	key, n, err := types.DecodeAddress(dec)
	a.Key = key
	return n, err
}
