package claims

import (
	"errors"
	"fmt"
	"math/big"
	"strings"
)

// Claim validation and bookkeeping failures. Every failure is scoped to the
// operation that raised it; none of them poison the campaign.
var (
	ErrInvalidProof           = errors.New("claims: invalid membership proof")
	ErrInvalidSignature       = errors.New("claims: invalid signature")
	ErrExpiredAuthorization   = errors.New("claims: authorization expired")
	ErrAlreadyClaimed         = errors.New("claims: recipient already claimed")
	ErrDuplicateCampaign      = errors.New("claims: campaign id already exists")
	ErrInsufficientAllocation = errors.New("claims: claim exceeds campaign remainder")
	ErrCampaignNotFound       = errors.New("claims: campaign not found")
	ErrCampaignEnded          = errors.New("claims: campaign ended")
	ErrCampaignActive         = errors.New("claims: campaign has not ended")
	ErrUnauthorized           = errors.New("claims: unauthorized caller")
	ErrInvalidLockup          = errors.New("claims: invalid lockup parameters")
)

// CampaignID is the caller-supplied 16-byte campaign identifier, unique for
// the lifetime of the system. Tooling derives it from a v4 UUID.
type CampaignID [16]byte

// TokenLockup selects how claimed tokens are disbursed.
type TokenLockup uint8

const (
	// LockupUnlocked disburses claims immediately, no custodian involved.
	LockupUnlocked TokenLockup = iota
	// LockupLocked vests claims linearly through the campaign custodian.
	LockupLocked
	// LockupVesting vests claims on the custodian's milestone terms.
	LockupVesting
)

// Valid reports whether the lockup kind is within the supported range.
func (k TokenLockup) Valid() bool {
	switch k {
	case LockupUnlocked, LockupLocked, LockupVesting:
		return true
	default:
		return false
	}
}

func (k TokenLockup) String() string {
	switch k {
	case LockupUnlocked:
		return "unlocked"
	case LockupLocked:
		return "locked"
	case LockupVesting:
		return "vesting"
	default:
		return "unknown"
	}
}

// Campaign captures the funded, Merkle-committed distribution managed by the
// claim engine. TotalAmount is decremented as claims are processed and never
// goes negative; once it reaches zero or End passes, the campaign is inert.
type Campaign struct {
	Manager     [20]byte
	Token       string
	TotalAmount *big.Int
	End         int64
	Lockup      TokenLockup
	Root        [32]byte
}

// Clone returns a deep copy so callers can mutate safely.
func (c *Campaign) Clone() *Campaign {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TotalAmount != nil {
		clone.TotalAmount = new(big.Int).Set(c.TotalAmount)
	} else {
		clone.TotalAmount = big.NewInt(0)
	}
	return &clone
}

// ClaimLockup holds the campaign-wide vesting terms, set once at creation. A
// zero Start means the first successful claim fixes the effective start for
// every recipient of the campaign.
type ClaimLockup struct {
	Custodian [20]byte
	Start     int64
	Cliff     int64
	Period    int64
	Periods   uint64
}

// Clone returns a copy of the lockup terms.
func (l *ClaimLockup) Clone() *ClaimLockup {
	if l == nil {
		return nil
	}
	clone := *l
	return &clone
}

// NormalizeToken canonicalises a token identifier. Unlike a chain with a fixed
// asset set, campaigns may distribute any registered asset, so the only
// requirements are a non-empty trimmed symbol in canonical upper case.
func NormalizeToken(symbol string) (string, error) {
	trimmed := strings.ToUpper(strings.TrimSpace(symbol))
	if trimmed == "" {
		return "", fmt.Errorf("claims: empty token symbol")
	}
	return trimmed, nil
}

// SanitizeCampaign validates and normalises a campaign definition, returning a
// cloned instance. The original value is not mutated.
func SanitizeCampaign(c *Campaign) (*Campaign, error) {
	if c == nil {
		return nil, fmt.Errorf("claims: nil campaign")
	}
	clone := c.Clone()
	token, err := NormalizeToken(clone.Token)
	if err != nil {
		return nil, err
	}
	clone.Token = token
	if clone.TotalAmount.Sign() < 0 {
		return nil, fmt.Errorf("claims: campaign amount must be non-negative")
	}
	if !clone.Lockup.Valid() {
		return nil, fmt.Errorf("claims: invalid lockup kind %d", clone.Lockup)
	}
	if clone.Manager == ([20]byte{}) {
		return nil, fmt.Errorf("claims: campaign manager required")
	}
	if clone.Root == ([32]byte{}) {
		return nil, fmt.Errorf("claims: campaign root required")
	}
	return clone, nil
}

// SanitizeClaimLockup validates lockup terms. Cliff may only be checked
// against a fixed start; zero-start campaigns resolve it at first claim.
func SanitizeClaimLockup(l *ClaimLockup) (*ClaimLockup, error) {
	if l == nil {
		return nil, fmt.Errorf("claims: nil lockup")
	}
	clone := l.Clone()
	if clone.Custodian == ([20]byte{}) {
		return nil, fmt.Errorf("claims: lockup custodian required")
	}
	if clone.Periods < 1 {
		return nil, fmt.Errorf("claims: lockup periods must be at least 1")
	}
	if clone.Period <= 0 {
		return nil, fmt.Errorf("claims: lockup period must be positive")
	}
	if clone.Start < 0 || clone.Cliff < 0 {
		return nil, fmt.Errorf("claims: lockup times must be non-negative")
	}
	if clone.Start != 0 && clone.Cliff < clone.Start {
		return nil, fmt.Errorf("claims: lockup cliff before start")
	}
	return clone, nil
}

// SignedAuthorization carries an off-channel (v, r, s) signature plus the
// nonce and expiry the signed message committed to.
type SignedAuthorization struct {
	Nonce  uint64
	Expiry int64
	V      uint8
	R      [32]byte
	S      [32]byte
}

// Schedule is the deterministic vesting schedule handed to the custodian:
// Rate tokens unlock per elapsed Period from Start, nothing before Cliff, and
// the total disbursed is capped at the claimed amount even though
// Rate*Periods may overshoot it by up to Periods-1.
type Schedule struct {
	Start   int64
	Cliff   int64
	End     int64
	Period  int64
	Periods uint64
	Rate    *big.Int
}

// DisbursementInstruction is the validated outcome of a claim: everything the
// external collaborators need, produced before any side effect runs.
type DisbursementInstruction struct {
	CampaignID CampaignID
	Recipient  [20]byte
	Token      string
	Amount     *big.Int
	Schedule   *Schedule
	Delegate   *[20]byte
	Remainder  *big.Int
}
