package multisig

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/signing"
)

func (ms *MultiSig) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact8(enc, ms.Required)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeStructSliceWithLimit(enc, ms.PublicKeys, StorageLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (ms *MultiSig) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact8(dec)
		if err != nil {
			return total, err
		}
		total += n
		ms.Required = field
	}
	{
		field, n, err := scale.DecodeStructSliceWithLimit[signing.PublicKey](dec, StorageLimit)
		if err != nil {
			return total, err
		}
		total += n
		ms.PublicKeys = field
	}
	return total, nil
}

// Part contains a reference to public key and signature from private key counterpart.
type Part struct {
	Ref uint8
	Sig signing.Signature
}

func (p *Part) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := scale.EncodeCompact8(enc, p.Ref)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := p.Sig.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (p *Part) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := scale.DecodeCompact8(dec)
		if err != nil {
			return total, err
		}
		total += n
		p.Ref = field
	}
	{
		n, err := p.Sig.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// Signatures is a collection of parts that must satisfy multisig threshold requirement.
type Signatures []Part

func (s *Signatures) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeStructSliceWithLimit(enc, *s, StorageLimit)
}

func (s *Signatures) DecodeScale(dec *scale.Decoder) (int, error) {
	field, n, err := scale.DecodeStructSliceWithLimit[Part](dec, StorageLimit)
	if err != nil {
		return n, err
	}
	*s = field
	return n, nil
}
