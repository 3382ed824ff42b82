package factory

import (
	"github.com/launchforge/tokenfactory/oracle"
)

// FeeBreakdown is the external fee-query shape. The three feature-fee
// fields are legacy: per-feature pricing was retired in favor of the flat
// base fee, and they always report zero.
type FeeBreakdown struct {
	BaseFee      uint64 `json:"base_fee"`
	AntiBotFee   uint64 `json:"anti_bot_fee"`   // legacy, always zero
	AntiWhaleFee uint64 `json:"anti_whale_fee"` // legacy, always zero
	AirdropFee   uint64 `json:"airdrop_fee"`    // legacy, always zero
}

// GetFees returns the configured fee schedule.
func (f *Factory) GetFees() FeeBreakdown {
	f.mu.Lock()
	defer f.mu.Unlock()
	return FeeBreakdown{BaseFee: f.baseFee}
}

// CalculateFee computes the fee owed by a caller: zero for whitelisted
// callers, otherwise the base fee with the holder discount applied when the
// oracle confirms the caller's discount-asset balance meets the threshold.
func (f *Factory) CalculateFee(caller string) uint64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calculateFeeLocked(caller)
}

// calculateFeeLocked is CalculateFee without locking. A failing oracle
// lookup resolves to "no discount"; it must never abort the enclosing call.
// Caller must hold f.mu.
func (f *Factory) calculateFeeLocked(caller string) uint64 {
	if f.whitelist[caller] {
		return 0
	}

	fee := f.baseFee
	if f.discountToken == "" || f.discountPercentage == 0 || f.balanceOracle == nil {
		return fee
	}

	outcome := f.balanceOracle.BalanceOf(f.discountToken, caller)
	if f.metrics != nil {
		f.metrics.OracleLookups.WithLabelValues(outcomeLabel(outcome)).Inc()
	}
	if !outcome.OK() {
		f.log.WithError(outcome.Err).WithField("caller", caller).
			Warn("Discount lookup failed, charging full base fee")
		return fee
	}
	if outcome.Balance >= f.discountThreshold {
		fee = fee * (100 - f.discountPercentage) / 100
	}
	return fee
}

func outcomeLabel(o oracle.Outcome) string {
	switch o.Status {
	case oracle.StatusSuccess:
		return "success"
	case oracle.StatusUnavailable:
		return "unavailable"
	default:
		return "error"
	}
}
