// Package factory instantiates self-contained token ledgers, charging a
// configurable creation fee with a balance-gated discount and keeping
// aggregate statistics. Every createToken call either commits completely
// (ledger registered, stats updated, excess payment refunded) or leaves all
// state untouched.
package factory

import (
	"crypto/sha256"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchforge/tokenfactory/monitoring"
	"github.com/launchforge/tokenfactory/oracle"
	"github.com/launchforge/tokenfactory/store"
	"github.com/launchforge/tokenfactory/token"
)

const (
	maxNameLength   = 50
	maxSymbolLength = 10
	minDecimals     = 6
	maxDecimals     = 18
)

// FundsSender moves collected funds out of the factory (refunds and
// withdrawals). Sends can fail; a failed send aborts and rolls back the
// enclosing call.
type FundsSender interface {
	Send(to string, amount uint64) error
}

// SenderFunc adapts a plain function to a FundsSender.
type SenderFunc func(to string, amount uint64) error

func (f SenderFunc) Send(to string, amount uint64) error { return f(to, amount) }

// Stats are the factory's aggregate counters.
type Stats struct {
	TotalTokensCreated uint64 `json:"total_tokens_created"`
	TotalFeesCollected uint64 `json:"total_fees_collected"`
}

// Config is the factory's construction-time configuration.
type Config struct {
	Owner              string
	BaseFee            uint64
	DiscountToken      string
	DiscountThreshold  uint64
	DiscountPercentage uint64
}

// Factory owns the creation fee schedule, the whitelist, the pause switch
// and the registry of ledgers it has instantiated.
type Factory struct {
	mu sync.Mutex

	owner              string
	baseFee            uint64
	discountToken      string
	discountThreshold  uint64
	discountPercentage uint64
	whitelist          map[string]bool
	paused             bool

	// Call-in-progress flags guarding the entry points that perform an
	// outbound funds transfer.
	creating    bool
	withdrawing bool

	vault  uint64 // fees collected and not yet withdrawn
	stats  Stats
	tokens map[string]*token.Token
	order  []string // ledger addresses in creation order

	balanceOracle oracle.BalanceOracle
	funds         FundsSender
	heights       token.HeightSource
	records       *store.Store
	metrics       *monitoring.Metrics

	events    []Event
	sink      func(Event)
	tokenSink func(token.Event)

	logger *logrus.Logger
	log    *logrus.Entry
}

// New creates a factory. oracle may be nil (no discount lookups); funds must
// be non-nil when refunds or withdrawals are expected to happen.
func New(cfg Config, balanceOracle oracle.BalanceOracle, funds FundsSender, heights token.HeightSource, logger *logrus.Logger) (*Factory, error) {
	if cfg.Owner == "" {
		return nil, ErrInvalidAddress
	}
	if cfg.DiscountPercentage > 100 {
		return nil, ErrInvalidPercentage
	}
	if logger == nil {
		logger = logrus.New()
	}
	if heights == nil {
		heights = token.HeightFunc(func() uint64 { return 0 })
	}
	if funds == nil {
		funds = SenderFunc(func(to string, amount uint64) error { return nil })
	}

	return &Factory{
		owner:              cfg.Owner,
		baseFee:            cfg.BaseFee,
		discountToken:      cfg.DiscountToken,
		discountThreshold:  cfg.DiscountThreshold,
		discountPercentage: cfg.DiscountPercentage,
		whitelist:          make(map[string]bool),
		tokens:             make(map[string]*token.Token),
		balanceOracle:      balanceOracle,
		funds:              funds,
		heights:            heights,
		logger:             logger,
		log:                logger.WithField("component", "factory"),
	}, nil
}

// SetRecordStore attaches a durable record store for creation and
// withdrawal records.
func (f *Factory) SetRecordStore(s *store.Store) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.records = s
}

// SetMetrics attaches Prometheus metrics.
func (f *Factory) SetMetrics(m *monitoring.Metrics) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.metrics = m
}

// CreateParams are the caller-supplied arguments of CreateToken.
type CreateParams struct {
	Name          string
	Symbol        string
	Decimals      uint8
	InitialSupply uint64
	AntiBot       bool
	AntiWhale     bool
	Airdrop       bool
	Payment       uint64
}

// CreateToken validates the parameters, charges the fee, instantiates a new
// ledger owned by the caller and refunds any excess payment. Returns the new
// ledger address and the fee charged. All-or-nothing: a failed refund
// discards the ledger and every staged state change.
func (f *Factory) CreateToken(caller string, p CreateParams) (string, uint64, error) {
	log := f.log.WithFields(logrus.Fields{
		"caller": caller,
		"name":   p.Name,
		"symbol": p.Symbol,
	})

	addr, fee, err := f.createToken(caller, p)
	if err != nil {
		if f.metrics != nil {
			f.metrics.CreateRejected.WithLabelValues(rejectLabel(err)).Inc()
		}
		log.WithError(err).Warn("CreateToken failed")
		return "", 0, err
	}

	log.WithFields(logrus.Fields{
		"token_address": addr,
		"fee_charged":   fee,
	}).Info("CreateToken successful")
	return addr, fee, nil
}

func (f *Factory) createToken(caller string, p CreateParams) (string, uint64, error) {
	if caller == "" {
		return "", 0, ErrInvalidAddress
	}
	// First failure wins; order is part of the external contract.
	if p.Name == "" || len(p.Name) > maxNameLength {
		return "", 0, ErrInvalidName
	}
	if p.Symbol == "" || len(p.Symbol) > maxSymbolLength {
		return "", 0, ErrInvalidSymbol
	}
	if p.Decimals < minDecimals || p.Decimals > maxDecimals {
		return "", 0, ErrInvalidDecimals
	}
	if p.InitialSupply == 0 {
		return "", 0, ErrInvalidSupply
	}

	f.mu.Lock()
	if f.creating {
		f.mu.Unlock()
		return "", 0, ErrReentrantCall
	}
	if f.paused {
		f.mu.Unlock()
		return "", 0, ErrPausedState
	}

	fee := f.calculateFeeLocked(caller)
	if p.Payment < fee {
		f.mu.Unlock()
		return "", 0, ErrInsufficientFee
	}

	height := f.heights.Height()
	ledger, err := token.NewToken(p.Name, p.Symbol, p.Decimals, p.InitialSupply,
		caller, p.AntiBot, p.AntiWhale, p.Airdrop, f.heights, f.logger)
	if err != nil {
		f.mu.Unlock()
		return "", 0, err
	}
	addr := f.newTokenAddress(p.Symbol, caller, height)
	refund := p.Payment - fee

	// Everything is validated and staged; the refund is the only step that
	// can still fail. The guard flag covers the outbound transfer.
	f.creating = true
	f.mu.Unlock()

	var sendErr error
	if refund > 0 {
		sendErr = f.funds.Send(caller, refund)
	}

	f.mu.Lock()
	f.creating = false
	if sendErr != nil {
		// Nothing was committed: the ledger is discarded, stats and vault
		// are untouched.
		f.mu.Unlock()
		return "", 0, fmt.Errorf("%w: %v", ErrRefundFailed, sendErr)
	}

	f.vault += fee
	f.stats.TotalTokensCreated++
	f.stats.TotalFeesCollected += fee
	f.tokens[addr] = ledger
	f.order = append(f.order, addr)
	if f.tokenSink != nil {
		ledger.SetEventSink(f.tokenSink)
	}

	f.emitEvent(Event{
		Type:      EventTokenCreated,
		Address:   addr,
		Amount:    fee,
		Timestamp: time.Now(),
		TxHash:    f.generateTxHash("create", caller+":"+addr, fee),
		Metadata: map[string]interface{}{
			"creator":       caller,
			"name":          p.Name,
			"symbol":        p.Symbol,
			"scaled_supply": ledger.TotalSupply(),
			"fee_charged":   fee,
		},
	})
	stats := f.stats
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.TokensCreated.Inc()
		f.metrics.FeesCollected.Add(float64(fee))
	}
	f.persistCreation(store.CreationRecord{
		TokenAddress: addr,
		Creator:      caller,
		Name:         p.Name,
		Symbol:       p.Symbol,
		Decimals:     p.Decimals,
		ScaledSupply: ledger.TotalSupply(),
		FeeCharged:   fee,
		AntiBot:      p.AntiBot,
		AntiWhale:    p.AntiWhale,
		Airdrop:      p.Airdrop,
		Height:       height,
		CreatedAt:    time.Now(),
	}, stats)

	return addr, fee, nil
}

// persistCreation writes the durable records. Record loss is logged, never
// surfaced: records are observational.
func (f *Factory) persistCreation(rec store.CreationRecord, stats Stats) {
	if f.records == nil {
		return
	}
	if err := f.records.SaveCreation(rec); err != nil {
		f.log.WithError(err).Error("Failed to persist creation record")
	}
	err := f.records.SaveStats(store.StatsSnapshot{
		TotalTokensCreated: stats.TotalTokensCreated,
		TotalFeesCollected: stats.TotalFeesCollected,
	})
	if err != nil {
		f.log.WithError(err).Error("Failed to persist stats snapshot")
	}
}

// newTokenAddress derives a unique pseudo-address for a new ledger.
func (f *Factory) newTokenAddress(symbol, creator string, height uint64) string {
	data := fmt.Sprintf("%s_%s_%d_%d_%d",
		symbol, creator, height, len(f.order), time.Now().UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("0x%x", hash[:20])
}

func (f *Factory) generateTxHash(operation, subject string, amount uint64) string {
	data := fmt.Sprintf("factory_%s_%s_%d_%d", operation, subject, amount, time.Now().UnixNano())
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("0x%x", hash[:8])
}

func rejectLabel(err error) string {
	switch {
	case errors.Is(err, ErrInvalidName), errors.Is(err, ErrInvalidSymbol),
		errors.Is(err, ErrInvalidDecimals), errors.Is(err, ErrInvalidSupply),
		errors.Is(err, ErrInvalidAddress):
		return "validation"
	case errors.Is(err, ErrPausedState):
		return "paused"
	case errors.Is(err, ErrInsufficientFee):
		return "insufficient_fee"
	case errors.Is(err, ErrReentrantCall):
		return "reentrant"
	case errors.Is(err, ErrRefundFailed):
		return "refund_failed"
	default:
		return "other"
	}
}

// Token returns a created ledger by address.
func (f *Factory) Token(address string) (*token.Token, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	t, ok := f.tokens[address]
	return t, ok
}

// TokenCount returns the number of ledgers created.
func (f *Factory) TokenCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.order)
}

// TokenAddresses returns the ledger addresses in creation order.
func (f *Factory) TokenAddresses() []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	addrs := make([]string, len(f.order))
	copy(addrs, f.order)
	return addrs
}

// GetBalance returns the fees collected and not yet withdrawn.
func (f *Factory) GetBalance() uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.vault
}

// GetStats returns the aggregate counters.
func (f *Factory) GetStats() Stats {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stats
}

func (f *Factory) Owner() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.owner
}

func (f *Factory) IsPaused() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused
}

func (f *Factory) IsWhitelisted(address string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.whitelist[address]
}
