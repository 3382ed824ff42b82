package token

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Burn destroys tokens from the caller's own balance.
func (t *Token) Burn(from string, amount uint64) error {
	log := t.log.WithFields(logrus.Fields{
		"from":   from,
		"amount": amount,
	})

	// Input validation
	if !t.validateAddress(from) {
		log.WithError(ErrInvalidAddress).Warn("Burn failed")
		return ErrInvalidAddress
	}
	if amount == 0 {
		log.WithError(ErrInvalidAmount).Warn("Burn failed")
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check sufficient balance
	if t.balances[from] < amount {
		log.WithField("balance", t.balances[from]).WithError(ErrInsufficientBalance).Warn("Burn failed")
		return ErrInsufficientBalance
	}

	// Transfer policy gate (burn sink is not a holder address)
	if err := t.authorize(from, "", amount, true); err != nil {
		log.WithError(err).Warn("Burn rejected by policy")
		return err
	}

	// Store old values for event metadata
	oldBalance := t.balances[from]
	oldTotalSupply := t.totalSupply

	// Execute burn
	t.balances[from] -= amount
	t.totalSupply -= amount

	t.emitEvent(Event{
		Type:      EventBurn,
		From:      from,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("burn", from, amount),
		Metadata: map[string]interface{}{
			"old_balance":      oldBalance,
			"new_balance":      t.balances[from],
			"old_total_supply": oldTotalSupply,
			"new_total_supply": t.totalSupply,
		},
	})

	log.WithFields(logrus.Fields{
		"balance":      t.balances[from],
		"total_supply": t.totalSupply,
	}).Info("Burn successful")
	return nil
}
