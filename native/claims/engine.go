package claims

import (
	"encoding/hex"
	"errors"
	"math/big"
	"time"

	"lockdrop/core/events"
	"lockdrop/crypto/merkle"
	"lockdrop/crypto/typedsig"
	"lockdrop/observability/metrics"
)

var (
	errNilTokenLedger = errors.New("claims: token ledger not configured")
	errNilCustodian   = errors.New("claims: vesting custodian not configured")
	errNilVotingVault = errors.New("claims: voting vault not configured")
)

// TokenLedger is the external fungible-token ledger. The engine debits the
// manager once at campaign creation and credits the recipient or custodian
// once per claim; it never does balance accounting of its own.
type TokenLedger interface {
	TransferInto(token string, from [20]byte, amount *big.Int) error
	TransferOut(token string, to [20]byte, amount *big.Int) error
	Approve(token string, spender [20]byte, amount *big.Int) error
}

// VestingCustodian locks claimed tokens under a schedule and exposes a
// per-plan ownership record.
type VestingCustodian interface {
	CreatePlan(owner [20]byte, token string, amount *big.Int, start, cliff, end int64, rate *big.Int, period int64) (uint64, error)
}

// VotingVault forwards governance power of locked tokens to a delegate.
type VotingVault interface {
	CreateVault(planID uint64) ([20]byte, error)
	SetDelegate(vault [20]byte, delegate [20]byte) error
}

// Engine is the claim orchestrator: it validates membership, authorization
// and delegation, records the claim, derives the vesting schedule, and issues
// the single effectful disbursement to the external collaborators.
type Engine struct {
	ledger    *Ledger
	tokens    TokenLedger
	custodian VestingCustodian
	vault     VotingVault
	emitter   events.Emitter
	domain    typedsig.Domain
	nowFn     func() int64
}

// NewEngine creates a claim engine over the supplied ledger with a no-op
// emitter. Collaborators are wired via the Set helpers.
func NewEngine(ledger *Ledger) *Engine {
	return &Engine{
		ledger:  ledger,
		emitter: events.NoopEmitter{},
		nowFn:   func() int64 { return time.Now().Unix() },
	}
}

// SetTokenLedger configures the external token ledger.
func (e *Engine) SetTokenLedger(tokens TokenLedger) { e.tokens = tokens }

// SetCustodian configures the external vesting custodian.
func (e *Engine) SetCustodian(custodian VestingCustodian) { e.custodian = custodian }

// SetVotingVault configures the external voting vault factory.
func (e *Engine) SetVotingVault(vault VotingVault) { e.vault = vault }

// SetDomain configures the typed-message domain authorizations are verified
// under.
func (e *Engine) SetDomain(domain typedsig.Domain) { e.domain = domain }

// SetEmitter configures the event emitter. Passing nil resets it to a no-op
// implementation.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetNowFunc overrides the time source, primarily for deterministic tests.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

func (e *Engine) emit(evt events.Event) {
	if e == nil || e.emitter == nil || evt == nil {
		return
	}
	e.emitter.Emit(evt)
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

// CreateUnlockedCampaign funds a campaign whose claims disburse immediately.
// Only the named manager may create it; the total amount is debited from the
// manager into system custody in the same operation.
func (e *Engine) CreateUnlockedCampaign(caller [20]byte, id CampaignID, campaign *Campaign) error {
	if campaign != nil && campaign.Lockup != LockupUnlocked {
		return ErrInvalidLockup
	}
	return e.createCampaign(caller, id, campaign, nil)
}

// CreateLockedCampaign funds a campaign whose claims vest through the
// custodian named in the lockup terms. The custodian allowance for the full
// amount is granted up front so per-claim plan funding cannot fail on
// approval.
func (e *Engine) CreateLockedCampaign(caller [20]byte, id CampaignID, campaign *Campaign, lockup *ClaimLockup) error {
	if campaign != nil && campaign.Lockup == LockupUnlocked {
		return ErrInvalidLockup
	}
	if lockup == nil {
		return ErrInvalidLockup
	}
	return e.createCampaign(caller, id, campaign, lockup)
}

func (e *Engine) createCampaign(caller [20]byte, id CampaignID, campaign *Campaign, lockup *ClaimLockup) error {
	if e == nil || e.ledger == nil {
		return errNilLedgerState
	}
	if e.tokens == nil {
		return errNilTokenLedger
	}
	sanitized, err := SanitizeCampaign(campaign)
	if err != nil {
		return err
	}
	if caller != sanitized.Manager {
		return ErrUnauthorized
	}
	if sanitized.TotalAmount.Sign() <= 0 {
		return ErrInsufficientAllocation
	}
	if sanitized.End <= e.now() {
		return ErrCampaignEnded
	}
	var sanitizedLockup *ClaimLockup
	if lockup != nil {
		if sanitizedLockup, err = SanitizeClaimLockup(lockup); err != nil {
			return err
		}
	}
	if err := e.ledger.CreateCampaign(id, sanitized, sanitizedLockup); err != nil {
		return err
	}
	if err := e.tokens.TransferInto(sanitized.Token, sanitized.Manager, sanitized.TotalAmount); err != nil {
		return err
	}
	if sanitizedLockup != nil {
		if err := e.tokens.Approve(sanitized.Token, sanitizedLockup.Custodian, sanitized.TotalAmount); err != nil {
			return err
		}
	}
	e.emit(events.CampaignCreated{
		ID:          id,
		Manager:     sanitized.Manager,
		Token:       sanitized.Token,
		TotalAmount: new(big.Int).Set(sanitized.TotalAmount),
		End:         sanitized.End,
		Lockup:      uint8(sanitized.Lockup),
		Root:        sanitized.Root,
	})
	if sanitizedLockup != nil {
		e.emit(events.ClaimLockupCreated{
			ID:        id,
			Custodian: sanitizedLockup.Custodian,
			Start:     sanitizedLockup.Start,
			Cliff:     sanitizedLockup.Cliff,
			Period:    sanitizedLockup.Period,
			Periods:   sanitizedLockup.Periods,
		})
	}
	metrics.Claims().CampaignCreated(sanitized.Lockup.String())
	return nil
}

// Claim processes a claim without a delegation request.
func (e *Engine) Claim(caller [20]byte, id CampaignID, recipient [20]byte, amount *big.Int, proof [][32]byte, auth Authorization) (*DisbursementInstruction, error) {
	return e.claim(caller, id, recipient, amount, proof, auth, NoDelegation())
}

// ClaimAndDelegate processes a claim that also assigns governance voting
// power over the newly vested tokens to a delegate.
func (e *Engine) ClaimAndDelegate(caller [20]byte, id CampaignID, recipient [20]byte, amount *big.Int, proof [][32]byte, auth Authorization, delegation Delegation) (*DisbursementInstruction, error) {
	return e.claim(caller, id, recipient, amount, proof, auth, delegation)
}

// claim runs the full state machine for one (campaign, recipient) claim.
// Everything up to RecordClaim is pure validation; the disbursement at the
// end is the only step with external side effects, and it runs exactly once,
// after all validation has passed.
func (e *Engine) claim(caller [20]byte, id CampaignID, recipient [20]byte, amount *big.Int, proof [][32]byte, auth Authorization, delegation Delegation) (*DisbursementInstruction, error) {
	instruction, campaign, err := e.validateClaim(caller, id, recipient, amount, proof, auth, delegation)
	if err != nil {
		metrics.Claims().ClaimRejected(rejectReason(err))
		return nil, err
	}
	remainder, err := e.ledger.RecordClaim(id, recipient, amount)
	if err != nil {
		metrics.Claims().ClaimRejected(rejectReason(err))
		return nil, err
	}
	instruction.Remainder = remainder
	if campaign.Lockup != LockupUnlocked {
		lockup, err := e.ledger.ResolveLockupStart(id, e.now())
		if err != nil {
			return nil, err
		}
		schedule, err := BuildSchedule(amount, lockup, e.now())
		if err != nil {
			return nil, err
		}
		instruction.Schedule = schedule
	}
	if err := e.disburse(instruction, campaign); err != nil {
		return nil, err
	}
	e.emit(events.Claimed{Recipient: recipient, Amount: new(big.Int).Set(amount)})
	e.emit(events.TokensClaimed{
		CampaignID: id,
		Recipient:  recipient,
		Amount:     new(big.Int).Set(amount),
		Remainder:  new(big.Int).Set(remainder),
	})
	metrics.Claims().ClaimProcessed(hex.EncodeToString(id[:]), remainder)
	return instruction, nil
}

// validateClaim is the pure half of the claim state machine: no state is
// mutated and no collaborator is called. It returns the instruction skeleton
// the effectful half completes.
func (e *Engine) validateClaim(caller [20]byte, id CampaignID, recipient [20]byte, amount *big.Int, proof [][32]byte, auth Authorization, delegation Delegation) (*DisbursementInstruction, *Campaign, error) {
	if e == nil || e.ledger == nil {
		return nil, nil, errNilLedgerState
	}
	campaign, err := e.ledger.Campaign(id)
	if err != nil {
		return nil, nil, err
	}
	now := e.now()
	if now >= campaign.End {
		return nil, nil, ErrCampaignEnded
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, nil, ErrInvalidProof
	}
	if !merkle.Verify(campaign.Root, merkle.LeafHash(recipient, amount), proof) {
		return nil, nil, ErrInvalidProof
	}
	switch auth.Kind {
	case AuthorizationDirect:
		if caller != recipient {
			return nil, nil, ErrUnauthorized
		}
	case AuthorizationSigned:
		if now > auth.Sig.Expiry {
			return nil, nil, ErrExpiredAuthorization
		}
		digest := ClaimAuthorizationDigest(e.domain, id, recipient, amount, auth.Sig.Nonce, auth.Sig.Expiry)
		signer, err := typedsig.Recover(digest, auth.Sig.V, auth.Sig.R, auth.Sig.S)
		if err != nil {
			return nil, nil, ErrInvalidSignature
		}
		if signer != recipient {
			return nil, nil, ErrInvalidSignature
		}
	default:
		return nil, nil, ErrUnauthorized
	}
	instruction := &DisbursementInstruction{
		CampaignID: id,
		Recipient:  recipient,
		Token:      campaign.Token,
		Amount:     new(big.Int).Set(amount),
	}
	switch delegation.Kind {
	case DelegationNone:
	case DelegationDirect:
		if campaign.Lockup == LockupUnlocked {
			return nil, nil, ErrInvalidLockup
		}
		if caller != recipient {
			return nil, nil, ErrUnauthorized
		}
		delegate := delegation.Delegate
		instruction.Delegate = &delegate
	case DelegationSigned:
		if campaign.Lockup == LockupUnlocked {
			return nil, nil, ErrInvalidLockup
		}
		if now > delegation.Sig.Expiry {
			return nil, nil, ErrExpiredAuthorization
		}
		digest := DelegationDigest(e.domain, delegation.Delegate, delegation.Sig.Nonce, delegation.Sig.Expiry)
		signer, err := typedsig.Recover(digest, delegation.Sig.V, delegation.Sig.R, delegation.Sig.S)
		if err != nil {
			return nil, nil, ErrInvalidSignature
		}
		if signer != recipient {
			return nil, nil, ErrInvalidSignature
		}
		delegate := delegation.Delegate
		instruction.Delegate = &delegate
	default:
		return nil, nil, ErrUnauthorized
	}
	return instruction, campaign, nil
}

// disburse issues the validated instruction to the external collaborators:
// immediate transfer for unlocked claims, custodian plan (plus optional
// voting vault and delegate) for locked ones.
func (e *Engine) disburse(instruction *DisbursementInstruction, campaign *Campaign) error {
	if e.tokens == nil {
		return errNilTokenLedger
	}
	if instruction.Schedule == nil {
		return e.tokens.TransferOut(instruction.Token, instruction.Recipient, instruction.Amount)
	}
	if e.custodian == nil {
		return errNilCustodian
	}
	lockup, err := e.ledger.Lockup(instruction.CampaignID)
	if err != nil {
		return err
	}
	if err := e.tokens.TransferOut(instruction.Token, lockup.Custodian, instruction.Amount); err != nil {
		return err
	}
	schedule := instruction.Schedule
	planID, err := e.custodian.CreatePlan(
		instruction.Recipient,
		instruction.Token,
		instruction.Amount,
		schedule.Start,
		schedule.Cliff,
		schedule.End,
		schedule.Rate,
		schedule.Period,
	)
	if err != nil {
		return err
	}
	if instruction.Delegate == nil {
		return nil
	}
	if e.vault == nil {
		return errNilVotingVault
	}
	vaultID, err := e.vault.CreateVault(planID)
	if err != nil {
		return err
	}
	return e.vault.SetDelegate(vaultID, *instruction.Delegate)
}

func rejectReason(err error) string {
	switch {
	case errors.Is(err, ErrInvalidProof):
		return "invalid_proof"
	case errors.Is(err, ErrInvalidSignature):
		return "invalid_signature"
	case errors.Is(err, ErrExpiredAuthorization):
		return "expired_authorization"
	case errors.Is(err, ErrAlreadyClaimed):
		return "already_claimed"
	case errors.Is(err, ErrCampaignEnded):
		return "campaign_ended"
	case errors.Is(err, ErrCampaignNotFound):
		return "campaign_not_found"
	case errors.Is(err, ErrUnauthorized):
		return "unauthorized"
	case errors.Is(err, ErrInsufficientAllocation):
		return "insufficient_allocation"
	case errors.Is(err, ErrInvalidLockup):
		return "invalid_lockup"
	default:
		return "other"
	}
}

// ReclaimUnclaimed sweeps the unclaimed remainder of an ended campaign back
// to the manager.
func (e *Engine) ReclaimUnclaimed(caller [20]byte, id CampaignID) (*big.Int, error) {
	if e == nil || e.ledger == nil {
		return nil, errNilLedgerState
	}
	if e.tokens == nil {
		return nil, errNilTokenLedger
	}
	campaign, err := e.ledger.Campaign(id)
	if err != nil {
		return nil, err
	}
	if caller != campaign.Manager {
		return nil, ErrUnauthorized
	}
	if e.now() < campaign.End {
		return nil, ErrCampaignActive
	}
	remainder, err := e.ledger.Reclaim(id)
	if err != nil {
		return nil, err
	}
	if remainder.Sign() == 0 {
		return remainder, nil
	}
	if err := e.tokens.TransferOut(campaign.Token, campaign.Manager, remainder); err != nil {
		return nil, err
	}
	e.emit(events.CampaignReclaimed{
		CampaignID: id,
		Manager:    campaign.Manager,
		Amount:     new(big.Int).Set(remainder),
	})
	return remainder, nil
}
