package token

import (
	"time"

	"github.com/sirupsen/logrus"
)

func (t *Token) Transfer(from, to string, amount uint64) error {
	log := t.log.WithFields(logrus.Fields{
		"from":   from,
		"to":     to,
		"amount": amount,
	})

	// Input validation
	if !t.validateAddress(from) || !t.validateAddress(to) {
		log.WithError(ErrInvalidAddress).Warn("Transfer failed")
		return ErrInvalidAddress
	}
	if amount == 0 {
		log.WithError(ErrInvalidAmount).Warn("Transfer failed")
		return ErrInvalidAmount
	}
	if from == to {
		log.WithError(ErrSameAddress).Warn("Transfer failed")
		return ErrSameAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check sufficient balance
	if t.balances[from] < amount {
		log.WithField("balance", t.balances[from]).WithError(ErrInsufficientBalance).Warn("Transfer failed")
		return ErrInsufficientBalance
	}

	// Transfer policy gate
	if err := t.authorize(from, to, amount, false); err != nil {
		log.WithError(err).Warn("Transfer rejected by policy")
		return err
	}

	// Overflow protection for recipient
	if t.balances[to] > ^uint64(0)-amount {
		log.WithError(ErrBalanceOverflow).Warn("Transfer failed")
		return ErrBalanceOverflow
	}

	// Store old values for event metadata
	oldFromBalance := t.balances[from]
	oldToBalance := t.balances[to]

	// Execute transfer
	t.balances[from] -= amount
	t.balances[to] += amount

	t.emitEvent(Event{
		Type:      EventTransfer,
		From:      from,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("transfer", from+":"+to, amount),
		Metadata: map[string]interface{}{
			"from_old_balance": oldFromBalance,
			"from_new_balance": t.balances[from],
			"to_old_balance":   oldToBalance,
			"to_new_balance":   t.balances[to],
			"total_supply":     t.totalSupply,
		},
	})

	log.WithFields(logrus.Fields{
		"from_balance": t.balances[from],
		"to_balance":   t.balances[to],
	}).Info("Transfer successful")
	return nil
}
