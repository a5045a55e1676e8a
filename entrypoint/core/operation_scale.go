package core

import (
	"github.com/spacemeshos/go-scale"

	"github.com/spacemeshos/go-entrypoint/common/types"
)

func (op *Operation) EncodeScale(enc *scale.Encoder) (total int, err error) {
	{
		n, err := types.EncodeAddress(enc, op.Sender)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := op.Sequence.EncodeScale(enc)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, op.Deployment, DeploymentLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, op.Call, CallLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	for _, budget := range []uint64{
		op.CallBudget, op.ValidationBudget, op.PreambleBudget,
		op.FeeCeiling, op.FeePriorityCeiling,
	} {
		n, err := scale.EncodeCompact64(enc, budget)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, op.Sponsorship, SponsorshipLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		n, err := scale.EncodeByteSliceWithLimit(enc, op.Authorization, AuthorizationLimit)
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

func (op *Operation) DecodeScale(dec *scale.Decoder) (total int, err error) {
	{
		field, n, err := types.DecodeAddress(dec)
		if err != nil {
			return total, err
		}
		total += n
		op.Sender = field
	}
	{
		n, err := op.Sequence.DecodeScale(dec)
		if err != nil {
			return total, err
		}
		total += n
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, DeploymentLimit)
		if err != nil {
			return total, err
		}
		total += n
		op.Deployment = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, CallLimit)
		if err != nil {
			return total, err
		}
		total += n
		op.Call = field
	}
	for _, budget := range []*uint64{
		&op.CallBudget, &op.ValidationBudget, &op.PreambleBudget,
		&op.FeeCeiling, &op.FeePriorityCeiling,
	} {
		field, n, err := scale.DecodeCompact64(dec)
		if err != nil {
			return total, err
		}
		total += n
		*budget = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, SponsorshipLimit)
		if err != nil {
			return total, err
		}
		total += n
		op.Sponsorship = field
	}
	{
		field, n, err := scale.DecodeByteSliceWithLimit(dec, AuthorizationLimit)
		if err != nil {
			return total, err
		}
		total += n
		op.Authorization = field
	}
	return total, nil
}
