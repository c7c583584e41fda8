package claims

import (
	"fmt"
	"math/big"
)

// BuildSchedule derives the per-recipient disbursement schedule from the
// campaign lockup terms and the individual claim amount. It is a pure
// function: given sanitized lockup terms and a positive amount it cannot
// fail.
//
// Start resolves to the lockup's fixed start when set, otherwise to the claim
// time; callers persisting a resolved zero-start lockup make every later
// claim of the campaign share the same start. The rate is the integer ceiling
// of amount/periods so the schedule fully disburses in at most Periods ticks
// without under-allocating the final tick. A cliff that resolves before the
// start is lifted to the start.
func BuildSchedule(amount *big.Int, lockup *ClaimLockup, claimTime int64) (*Schedule, error) {
	if lockup == nil {
		return nil, fmt.Errorf("claims: nil lockup")
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("claims: schedule amount must be positive")
	}
	if lockup.Periods < 1 {
		return nil, fmt.Errorf("claims: lockup periods must be at least 1")
	}
	start := lockup.Start
	if start == 0 {
		start = claimTime
	}
	cliff := lockup.Cliff
	if cliff < start {
		cliff = start
	}
	return &Schedule{
		Start:   start,
		Cliff:   cliff,
		End:     start + lockup.Period*int64(lockup.Periods),
		Period:  lockup.Period,
		Periods: lockup.Periods,
		Rate:    ceilDiv(amount, lockup.Periods),
	}, nil
}

func ceilDiv(amount *big.Int, periods uint64) *big.Int {
	divisor := new(big.Int).SetUint64(periods)
	quo, rem := new(big.Int).QuoRem(amount, divisor, new(big.Int))
	if rem.Sign() != 0 {
		quo.Add(quo, big.NewInt(1))
	}
	return quo
}
