package core

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/spacemeshos/go-entrypoint/codec"
	"github.com/spacemeshos/go-entrypoint/common/types"
)

func testOperation() *Operation {
	return &Operation{
		Sender:             Address{1},
		Sequence:           types.NewSequence(types.SequenceKey{2}, 3),
		Call:               []byte{0, 1, 2},
		CallBudget:         100,
		ValidationBudget:   50,
		PreambleBudget:     30,
		FeeCeiling:         10,
		FeePriorityCeiling: 2,
		Authorization:      []byte{9, 9},
	}
}

func TestOperationHash(t *testing.T) {
	engine := Address{0xe}
	op := testOperation()
	hash := op.Hash(engine, 1)

	require.NotEqual(t, hash, op.Hash(Address{0xf}, 1))
	require.NotEqual(t, hash, op.Hash(engine, 2))

	signed := *op
	signed.Authorization = []byte{1, 2, 3, 4}
	require.Equal(t, hash, signed.Hash(engine, 1))

	for _, tc := range []struct {
		desc   string
		modify func(*Operation)
	}{
		{"sender", func(op *Operation) { op.Sender[0]++ }},
		{"sequence key", func(op *Operation) { op.Sequence.Key[0]++ }},
		{"sequence counter", func(op *Operation) { op.Sequence.Counter++ }},
		{"deployment", func(op *Operation) { op.Deployment = []byte{1} }},
		{"call", func(op *Operation) { op.Call = append(op.Call, 3) }},
		{"call budget", func(op *Operation) { op.CallBudget++ }},
		{"validation budget", func(op *Operation) { op.ValidationBudget++ }},
		{"preamble budget", func(op *Operation) { op.PreambleBudget++ }},
		{"fee ceiling", func(op *Operation) { op.FeeCeiling++ }},
		{"priority ceiling", func(op *Operation) { op.FeePriorityCeiling++ }},
		{"sponsorship", func(op *Operation) { op.Sponsorship = make([]byte, 20) }},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			modified := *op
			modified.Call = append([]byte(nil), op.Call...)
			tc.modify(&modified)
			require.NotEqual(t, hash, modified.Hash(engine, 1))
		})
	}
}

func TestOperationEncoding(t *testing.T) {
	op := testOperation()
	op.Deployment = append(Address{0xfa}.Bytes(), 1, 2)
	op.Sponsorship = append(Address{0x5a}.Bytes(), 3)
	buf, err := codec.Encode(op)
	require.NoError(t, err)
	size, err := op.Size()
	require.NoError(t, err)
	require.Len(t, buf, size)

	var decoded Operation
	require.NoError(t, codec.Decode(buf, &decoded))
	require.Equal(t, *op, decoded)
}

func TestOperationCost(t *testing.T) {
	op := testOperation()
	total, err := op.TotalBudget()
	require.NoError(t, err)
	require.EqualValues(t, 180, total)
	maxCost, err := op.MaxCost()
	require.NoError(t, err)
	require.EqualValues(t, 1800, maxCost)

	require.EqualValues(t, 7, op.Price(5))
	require.EqualValues(t, 10, op.Price(9))
	require.EqualValues(t, 10, op.Price(^uint64(0)))

	op.CallBudget = ^uint64(0)
	_, err = op.TotalBudget()
	require.ErrorIs(t, err, ErrMalformed)

	op.CallBudget = 1 << 62
	_, err = op.MaxCost()
	require.ErrorIs(t, err, ErrMalformed)
}

func TestOperationVerify(t *testing.T) {
	schedule := Schedule{Intrinsic: 10, TxData: 8}
	for _, tc := range []struct {
		desc   string
		modify func(*Operation)
		err    error
	}{
		{desc: "valid", modify: func(*Operation) {}},
		{desc: "priority above ceiling", modify: func(op *Operation) { op.FeePriorityCeiling = 11 }, err: ErrMalformed},
		{desc: "short sponsorship", modify: func(op *Operation) { op.Sponsorship = []byte{1} }, err: ErrMalformed},
		{desc: "short deployment", modify: func(op *Operation) { op.Deployment = []byte{1} }, err: ErrMalformed},
		{desc: "preamble below intrinsic", modify: func(op *Operation) { op.PreambleBudget = 20 }, err: ErrMalformed},
		{desc: "overflow", modify: func(op *Operation) { op.FeeCeiling = ^uint64(0) }, err: ErrMalformed},
	} {
		t.Run(tc.desc, func(t *testing.T) {
			op := testOperation()
			op.PreambleBudget = 1000
			tc.modify(op)
			err := op.Verify(schedule)
			if tc.err == nil {
				require.NoError(t, err)
			} else {
				require.ErrorIs(t, err, tc.err)
			}
		})
	}
}

func TestOperationParts(t *testing.T) {
	op := testOperation()
	sponsor, data := op.Sponsor()
	require.False(t, op.Sponsored())
	require.Equal(t, Address{}, sponsor)
	require.Empty(t, data)

	op.Sponsorship = append(Address{0x5a}.Bytes(), 1, 2)
	sponsor, data = op.Sponsor()
	require.True(t, op.Sponsored())
	require.Equal(t, Address{0x5a}, sponsor)
	require.Equal(t, []byte{1, 2}, data)

	op.Deployment = append(Address{0xfa}.Bytes(), 3)
	factory, args := op.Factory()
	require.Equal(t, Address{0xfa}, factory)
	require.Equal(t, []byte{3}, args)
}
