package token

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// AntiBotWindowBlocks is the number of height units the launch-window
// blacklist stays armed after instantiation.
const AntiBotWindowBlocks = 50

// HeightSource supplies the monotonically increasing counter the launch
// window is measured against.
type HeightSource interface {
	Height() uint64
}

// HeightFunc adapts a plain function to a HeightSource.
type HeightFunc func() uint64

func (f HeightFunc) Height() uint64 { return f() }

// PolicyConfig holds the per-instance transfer-restriction state.
type PolicyConfig struct {
	antiBotEnabled      bool
	antiBotExpiryHeight uint64
	blacklist           map[string]bool

	antiWhaleEnabled     bool
	maxTransactionAmount uint64
	maxWalletAmount      uint64
}

// Token is one self-contained fungible-token ledger: balances, allowances
// and the transfer policy configured at instantiation. All state is owned by
// this instance; no two instances share anything.
type Token struct {
	Name     string
	Symbol   string
	Decimals uint8
	Airdrop  bool // creation flag, carried as metadata only

	owner       string
	totalSupply uint64
	balances    map[string]uint64
	allowances  map[string]map[string]uint64
	policy      PolicyConfig
	heights     HeightSource
	mu          sync.RWMutex
	events      []Event
	sink        func(Event)
	log         *logrus.Entry
}

// NewToken creates a ledger and mints the full scaled supply to the owner.
// If antiBot is requested the launch-window expiry is fixed once, here, at
// the current height plus AntiBotWindowBlocks.
func NewToken(name, symbol string, decimals uint8, initialSupply uint64, owner string, antiBot, antiWhale, airdrop bool, heights HeightSource, logger *logrus.Logger) (*Token, error) {
	if owner == "" {
		return nil, ErrInvalidOwner
	}
	if heights == nil {
		heights = HeightFunc(func() uint64 { return 0 })
	}
	if logger == nil {
		logger = logrus.New()
	}

	scaled, err := scaleSupply(initialSupply, decimals)
	if err != nil {
		return nil, err
	}

	t := &Token{
		Name:       name,
		Symbol:     symbol,
		Decimals:   decimals,
		Airdrop:    airdrop,
		owner:      owner,
		balances:   make(map[string]uint64),
		allowances: make(map[string]map[string]uint64),
		policy: PolicyConfig{
			blacklist: make(map[string]bool),
		},
		heights: heights,
		events:  []Event{},
		log: logger.WithFields(logrus.Fields{
			"component": "token",
			"symbol":    symbol,
		}),
	}

	if antiBot {
		t.policy.antiBotEnabled = true
		t.policy.antiBotExpiryHeight = heights.Height() + AntiBotWindowBlocks
	}
	if antiWhale {
		// Limits start at the full supply (no effective restriction) until
		// the owner tightens them.
		t.policy.antiWhaleEnabled = true
		t.policy.maxTransactionAmount = scaled
		t.policy.maxWalletAmount = scaled
	}

	// Full supply minted to the creator.
	t.totalSupply = scaled
	t.balances[owner] = scaled
	t.emitEvent(Event{
		Type:      EventMint,
		To:        owner,
		Amount:    scaled,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("mint", owner, scaled),
	})

	t.log.WithFields(logrus.Fields{
		"owner":      owner,
		"supply":     scaled,
		"anti_bot":   antiBot,
		"anti_whale": antiWhale,
	}).Info("Token ledger created")
	return t, nil
}

// scaleSupply multiplies the supply by 10^decimals with overflow detection.
func scaleSupply(initialSupply uint64, decimals uint8) (uint64, error) {
	scaled := initialSupply
	for i := uint8(0); i < decimals; i++ {
		if scaled > ^uint64(0)/10 {
			return 0, ErrSupplyOverflow
		}
		scaled *= 10
	}
	return scaled, nil
}

func (t *Token) validateAddress(address string) bool {
	return address != "" && len(address) < 256
}

// generateTxHash generates a unique transaction hash for events
func (t *Token) generateTxHash(operation, address string, amount uint64) string {
	data := fmt.Sprintf("%s_%s_%s_%d_%d",
		t.Symbol, operation, address, amount, time.Now().UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("0x%x", hash[:8])
}

// requireOwner ensures only the instance owner can perform the action.
func (t *Token) requireOwner(caller string) error {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if caller != t.owner {
		return ErrNotOwner
	}
	return nil
}

func (t *Token) Owner() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.owner
}
