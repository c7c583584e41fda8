package events

import (
	"encoding/hex"
	"math/big"

	"lockdrop/core/types"
	"lockdrop/crypto"
)

const (
	TypeCampaignCreated    = "claims.campaign_created"
	TypeClaimLockupCreated = "claims.lockup_created"
	TypeClaimed            = "claims.claimed"
	TypeTokensClaimed      = "claims.tokens_claimed"
	TypeCampaignReclaimed  = "claims.reclaimed"
)

// CampaignCreated is emitted once when a campaign is funded and committed.
type CampaignCreated struct {
	ID          [16]byte
	Manager     [20]byte
	Token       string
	TotalAmount *big.Int
	End         int64
	Lockup      uint8
	Root        [32]byte
}

func (CampaignCreated) EventType() string { return TypeCampaignCreated }

func (e CampaignCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignCreated,
		Attributes: map[string]string{
			"id":      hex.EncodeToString(e.ID[:]),
			"manager": crypto.MustNewAddress(crypto.LockdropPrefix, e.Manager[:]).String(),
			"token":   e.Token,
			"amount":  formatAmount(e.TotalAmount),
			"end":     intToString(e.End),
			"lockup":  intToString(int64(e.Lockup)),
			"root":    hex.EncodeToString(e.Root[:]),
		},
	}
}

// ClaimLockupCreated accompanies CampaignCreated for locked campaigns and
// records the lockup terms shared by every claim in the campaign.
type ClaimLockupCreated struct {
	ID        [16]byte
	Custodian [20]byte
	Start     int64
	Cliff     int64
	Period    int64
	Periods   uint64
}

func (ClaimLockupCreated) EventType() string { return TypeClaimLockupCreated }

func (e ClaimLockupCreated) Event() *types.Event {
	return &types.Event{
		Type: TypeClaimLockupCreated,
		Attributes: map[string]string{
			"id":        hex.EncodeToString(e.ID[:]),
			"custodian": crypto.MustNewAddress(crypto.LockdropPrefix, e.Custodian[:]).String(),
			"start":     intToString(e.Start),
			"cliff":     intToString(e.Cliff),
			"period":    intToString(e.Period),
			"periods":   new(big.Int).SetUint64(e.Periods).String(),
		},
	}
}

// Claimed mirrors the per-recipient claim acknowledgement.
type Claimed struct {
	Recipient [20]byte
	Amount    *big.Int
}

func (Claimed) EventType() string { return TypeClaimed }

func (e Claimed) Event() *types.Event {
	return &types.Event{
		Type: TypeClaimed,
		Attributes: map[string]string{
			"recipient": crypto.MustNewAddress(crypto.LockdropPrefix, e.Recipient[:]).String(),
			"amount":    formatAmount(e.Amount),
		},
	}
}

// TokensClaimed carries the campaign-level view of a claim, including the
// running remainder so indexers can reconcile distributed versus remaining
// without re-summing every claim.
type TokensClaimed struct {
	CampaignID [16]byte
	Recipient  [20]byte
	Amount     *big.Int
	Remainder  *big.Int
}

func (TokensClaimed) EventType() string { return TypeTokensClaimed }

func (e TokensClaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeTokensClaimed,
		Attributes: map[string]string{
			"id":        hex.EncodeToString(e.CampaignID[:]),
			"recipient": crypto.MustNewAddress(crypto.LockdropPrefix, e.Recipient[:]).String(),
			"amount":    formatAmount(e.Amount),
			"remainder": formatAmount(e.Remainder),
		},
	}
}

// CampaignReclaimed is emitted when the manager sweeps the unclaimed remainder
// of an expired campaign.
type CampaignReclaimed struct {
	CampaignID [16]byte
	Manager    [20]byte
	Amount     *big.Int
}

func (CampaignReclaimed) EventType() string { return TypeCampaignReclaimed }

func (e CampaignReclaimed) Event() *types.Event {
	return &types.Event{
		Type: TypeCampaignReclaimed,
		Attributes: map[string]string{
			"id":      hex.EncodeToString(e.CampaignID[:]),
			"manager": crypto.MustNewAddress(crypto.LockdropPrefix, e.Manager[:]).String(),
			"amount":  formatAmount(e.Amount),
		},
	}
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

func intToString(v int64) string {
	return big.NewInt(v).String()
}
