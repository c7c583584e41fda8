package state

import (
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/rlp"

	"lockdrop/native/claims"
	"lockdrop/storage"
)

var (
	claimsCampaignPrefix = []byte("claims/campaign/")
	claimsLockupPrefix   = []byte("claims/lockup/")
	claimsFlagPrefix     = []byte("claims/claimed/")
)

func claimsCampaignKey(id claims.CampaignID) []byte {
	buf := make([]byte, len(claimsCampaignPrefix)+len(id))
	copy(buf, claimsCampaignPrefix)
	copy(buf[len(claimsCampaignPrefix):], id[:])
	return ethcrypto.Keccak256(buf)
}

func claimsLockupKey(id claims.CampaignID) []byte {
	buf := make([]byte, len(claimsLockupPrefix)+len(id))
	copy(buf, claimsLockupPrefix)
	copy(buf[len(claimsLockupPrefix):], id[:])
	return ethcrypto.Keccak256(buf)
}

func claimsFlagKey(id claims.CampaignID, recipient [20]byte) []byte {
	buf := make([]byte, len(claimsFlagPrefix)+len(id)+len(recipient))
	copy(buf, claimsFlagPrefix)
	copy(buf[len(claimsFlagPrefix):], id[:])
	copy(buf[len(claimsFlagPrefix)+len(id):], recipient[:])
	return ethcrypto.Keccak256(buf)
}

// storedCampaign is the RLP-friendly mirror of claims.Campaign. Signed
// timestamps are stored as big integers because RLP has no signed encoding.
type storedCampaign struct {
	Manager     [20]byte
	Token       string
	TotalAmount *big.Int
	End         *big.Int
	Lockup      uint8
	Root        [32]byte
}

func newStoredCampaign(c *claims.Campaign) *storedCampaign {
	if c == nil {
		return nil
	}
	amount := big.NewInt(0)
	if c.TotalAmount != nil {
		amount = new(big.Int).Set(c.TotalAmount)
	}
	return &storedCampaign{
		Manager:     c.Manager,
		Token:       c.Token,
		TotalAmount: amount,
		End:         big.NewInt(c.End),
		Lockup:      uint8(c.Lockup),
		Root:        c.Root,
	}
}

func (s *storedCampaign) toCampaign() (*claims.Campaign, error) {
	if s == nil {
		return nil, fmt.Errorf("claims state: nil campaign record")
	}
	out := &claims.Campaign{
		Manager:     s.Manager,
		Token:       s.Token,
		TotalAmount: big.NewInt(0),
		Lockup:      claims.TokenLockup(s.Lockup),
		Root:        s.Root,
	}
	if s.TotalAmount != nil {
		out.TotalAmount = new(big.Int).Set(s.TotalAmount)
	}
	if s.End != nil {
		out.End = s.End.Int64()
	}
	if !out.Lockup.Valid() {
		return nil, fmt.Errorf("claims state: invalid lockup kind %d", s.Lockup)
	}
	return out, nil
}

type storedLockup struct {
	Custodian [20]byte
	Start     *big.Int
	Cliff     *big.Int
	Period    *big.Int
	Periods   uint64
}

func newStoredLockup(l *claims.ClaimLockup) *storedLockup {
	if l == nil {
		return nil
	}
	return &storedLockup{
		Custodian: l.Custodian,
		Start:     big.NewInt(l.Start),
		Cliff:     big.NewInt(l.Cliff),
		Period:    big.NewInt(l.Period),
		Periods:   l.Periods,
	}
}

func (s *storedLockup) toLockup() (*claims.ClaimLockup, error) {
	if s == nil {
		return nil, fmt.Errorf("claims state: nil lockup record")
	}
	out := &claims.ClaimLockup{
		Custodian: s.Custodian,
		Periods:   s.Periods,
	}
	if s.Start != nil {
		out.Start = s.Start.Int64()
	}
	if s.Cliff != nil {
		out.Cliff = s.Cliff.Int64()
	}
	if s.Period != nil {
		out.Period = s.Period.Int64()
	}
	return out, nil
}

// ClaimsStore adapts a key-value database to the claim ledger's state
// interface. Records are RLP encoded under keccak-hashed prefixed keys; the
// per-recipient claim flag is a bare presence marker.
type ClaimsStore struct {
	db storage.Database
}

// NewClaimsStore wraps the supplied database.
func NewClaimsStore(db storage.Database) *ClaimsStore {
	return &ClaimsStore{db: db}
}

func (s *ClaimsStore) ClaimsCampaignGet(id claims.CampaignID) (*claims.Campaign, bool, error) {
	raw, err := s.db.Get(claimsCampaignKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedCampaign
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("claims state: decode campaign: %w", err)
	}
	campaign, err := stored.toCampaign()
	if err != nil {
		return nil, false, err
	}
	return campaign, true, nil
}

func (s *ClaimsStore) ClaimsCampaignPut(id claims.CampaignID, c *claims.Campaign) error {
	stored := newStoredCampaign(c)
	if stored == nil {
		return fmt.Errorf("claims state: nil campaign")
	}
	raw, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("claims state: encode campaign: %w", err)
	}
	return s.db.Put(claimsCampaignKey(id), raw)
}

func (s *ClaimsStore) ClaimsLockupGet(id claims.CampaignID) (*claims.ClaimLockup, bool, error) {
	raw, err := s.db.Get(claimsLockupKey(id))
	if err != nil {
		if errors.Is(err, storage.ErrKeyNotFound) {
			return nil, false, nil
		}
		return nil, false, err
	}
	var stored storedLockup
	if err := rlp.DecodeBytes(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("claims state: decode lockup: %w", err)
	}
	lockup, err := stored.toLockup()
	if err != nil {
		return nil, false, err
	}
	return lockup, true, nil
}

func (s *ClaimsStore) ClaimsLockupPut(id claims.CampaignID, l *claims.ClaimLockup) error {
	stored := newStoredLockup(l)
	if stored == nil {
		return fmt.Errorf("claims state: nil lockup")
	}
	raw, err := rlp.EncodeToBytes(stored)
	if err != nil {
		return fmt.Errorf("claims state: encode lockup: %w", err)
	}
	return s.db.Put(claimsLockupKey(id), raw)
}

func (s *ClaimsStore) ClaimsClaimed(id claims.CampaignID, recipient [20]byte) (bool, error) {
	return s.db.Has(claimsFlagKey(id, recipient))
}

func (s *ClaimsStore) ClaimsSetClaimed(id claims.CampaignID, recipient [20]byte) error {
	return s.db.Put(claimsFlagKey(id, recipient), []byte{0x01})
}
