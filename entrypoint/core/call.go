package core

import (
	"bytes"
	"fmt"

	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
)

// MaxCalls is the maximal number of calls in one execution payload.
const MaxCalls = 32

// Payload builds a call payload from method selector and encoded arguments.
func Payload(method uint8, args codec.Encodable) []byte {
	var buf bytes.Buffer
	buf.WriteByte(method)
	if args != nil {
		if _, err := args.EncodeScale(scale.NewEncoder(&buf)); err != nil {
			panic(fmt.Sprintf("encode arguments of method %d: %v", method, err))
		}
	}
	return buf.Bytes()
}

// Method splits payload into selector and encoded arguments.
func Method(payload []byte) (uint8, []byte, error) {
	if len(payload) == 0 {
		return 0, nil, fmt.Errorf("%w: empty payload", ErrMalformed)
	}
	return payload[0], payload[1:], nil
}

// DecodeArgs decodes arguments and wraps failures into ErrMalformed.
func DecodeArgs(args []byte, value codec.Decodable) error {
	if err := codec.Decode(args, value); err != nil {
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
	return nil
}

// Call is one action executed by an account.
type Call struct {
	Target Address
	Value  uint64
	Data   []byte
}

func (c *Call) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, c.Target)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeCompact64(enc, c.Value)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, c.Data, CallLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (c *Call) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Target = field
	}
	{
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		c.Value = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, CallLimit)
		if err != nil {
			return total, err
		}
		total += n
		c.Data = field
	}
	return total, nil
}

// Calls is an ordered list of calls executed atomically.
type Calls []Call

func (c *Calls) EncodeScale(enc *scale.Encoder) (int, error) {
	return scale.EncodeStructSliceWithLimit(enc, *c, MaxCalls)
}

func (c *Calls) DecodeScale(dec *scale.Decoder) (int, error) {
	field, n, err := scale.DecodeStructSliceWithLimit[Call](dec, MaxCalls)
	if err != nil {
		return n, err
	}
	*c = field
	return n, nil
}

// Execute runs calls in order on behalf of host.Self(). The first failure is returned.
func Execute(host Host, calls Calls) error {
	for i := range calls {
		if _, err := host.Call(calls[i].Target, calls[i].Value, calls[i].Data); err != nil {
			return fmt.Errorf("call %d to %v: %w", i, calls[i].Target, err)
		}
	}
	return nil
}
