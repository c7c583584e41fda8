package claims

import (
	"errors"
	"math/big"
)

var errNilLedgerState = errors.New("claims: ledger state not configured")

// LedgerState is the narrow storage surface the claim ledger runs on. The
// production adapter lives in core/state; tests supply an in-memory mock.
type LedgerState interface {
	ClaimsCampaignGet(id CampaignID) (*Campaign, bool, error)
	ClaimsCampaignPut(id CampaignID, c *Campaign) error
	ClaimsLockupGet(id CampaignID) (*ClaimLockup, bool, error)
	ClaimsLockupPut(id CampaignID, l *ClaimLockup) error
	ClaimsClaimed(id CampaignID, recipient [20]byte) (bool, error)
	ClaimsSetClaimed(id CampaignID, recipient [20]byte) error
}

// Ledger owns campaign records and the per-(campaign, recipient) claim flags.
// It is the exclusive mutation point for a campaign's TotalAmount: every
// write path goes through RecordClaim or Reclaim, so the running remainder
// always equals the initial amount minus the sum of recorded claims.
type Ledger struct {
	state LedgerState
}

// NewLedger wraps the supplied state backend.
func NewLedger(state LedgerState) *Ledger {
	return &Ledger{state: state}
}

// CreateCampaign stores a sanitized campaign record, and the lockup terms for
// locked campaigns. It fails with ErrDuplicateCampaign when the id is already
// taken.
func (l *Ledger) CreateCampaign(id CampaignID, campaign *Campaign, lockup *ClaimLockup) error {
	if l == nil || l.state == nil {
		return errNilLedgerState
	}
	sanitized, err := SanitizeCampaign(campaign)
	if err != nil {
		return err
	}
	if _, exists, err := l.state.ClaimsCampaignGet(id); err != nil {
		return err
	} else if exists {
		return ErrDuplicateCampaign
	}
	if lockup != nil {
		sanitizedLockup, err := SanitizeClaimLockup(lockup)
		if err != nil {
			return err
		}
		if err := l.state.ClaimsLockupPut(id, sanitizedLockup); err != nil {
			return err
		}
	}
	return l.state.ClaimsCampaignPut(id, sanitized)
}

// Campaign loads a campaign record.
func (l *Ledger) Campaign(id CampaignID) (*Campaign, error) {
	if l == nil || l.state == nil {
		return nil, errNilLedgerState
	}
	campaign, ok, err := l.state.ClaimsCampaignGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return campaign, nil
}

// Lockup loads the lockup terms attached to a locked campaign.
func (l *Ledger) Lockup(id CampaignID) (*ClaimLockup, error) {
	if l == nil || l.state == nil {
		return nil, errNilLedgerState
	}
	lockup, ok, err := l.state.ClaimsLockupGet(id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCampaignNotFound
	}
	return lockup, nil
}

// Claimed reports whether the recipient has already claimed from the
// campaign.
func (l *Ledger) Claimed(id CampaignID, recipient [20]byte) (bool, error) {
	if l == nil || l.state == nil {
		return false, errNilLedgerState
	}
	return l.state.ClaimsClaimed(id, recipient)
}

// RecordClaim atomically checks-and-sets the claim flag and decrements the
// campaign remainder. The returned value is the new remainder, surfaced in
// the claim event so indexers can reconcile without re-summing.
func (l *Ledger) RecordClaim(id CampaignID, recipient [20]byte, amount *big.Int) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilLedgerState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, ErrInsufficientAllocation
	}
	campaign, err := l.Campaign(id)
	if err != nil {
		return nil, err
	}
	claimed, err := l.state.ClaimsClaimed(id, recipient)
	if err != nil {
		return nil, err
	}
	if claimed {
		return nil, ErrAlreadyClaimed
	}
	if campaign.TotalAmount.Cmp(amount) < 0 {
		return nil, ErrInsufficientAllocation
	}
	if err := l.state.ClaimsSetClaimed(id, recipient); err != nil {
		return nil, err
	}
	campaign.TotalAmount = new(big.Int).Sub(campaign.TotalAmount, amount)
	if err := l.state.ClaimsCampaignPut(id, campaign); err != nil {
		return nil, err
	}
	return new(big.Int).Set(campaign.TotalAmount), nil
}

// ResolveLockupStart pins a zero-start lockup to the supplied claim time and
// persists it, so every recipient of the campaign shares the start fixed by
// whichever claim happened first. Fixed-start lockups are returned unchanged.
func (l *Ledger) ResolveLockupStart(id CampaignID, claimTime int64) (*ClaimLockup, error) {
	lockup, err := l.Lockup(id)
	if err != nil {
		return nil, err
	}
	if lockup.Start != 0 {
		return lockup, nil
	}
	lockup.Start = claimTime
	if lockup.Cliff < lockup.Start {
		lockup.Cliff = lockup.Start
	}
	if err := l.state.ClaimsLockupPut(id, lockup); err != nil {
		return nil, err
	}
	return lockup, nil
}

// Reclaim zeroes the campaign remainder on behalf of the manager once the
// campaign has ended, returning the amount swept.
func (l *Ledger) Reclaim(id CampaignID) (*big.Int, error) {
	if l == nil || l.state == nil {
		return nil, errNilLedgerState
	}
	campaign, err := l.Campaign(id)
	if err != nil {
		return nil, err
	}
	remainder := new(big.Int).Set(campaign.TotalAmount)
	if remainder.Sign() == 0 {
		return remainder, nil
	}
	campaign.TotalAmount = big.NewInt(0)
	if err := l.state.ClaimsCampaignPut(id, campaign); err != nil {
		return nil, err
	}
	return remainder, nil
}
