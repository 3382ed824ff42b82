package token

import (
	"time"

	"github.com/sirupsen/logrus"
)

func (t *Token) Approve(owner, spender string, amount uint64) error {
	// Input validation
	if !t.validateAddress(owner) || !t.validateAddress(spender) {
		return ErrInvalidAddress
	}
	if owner == spender {
		return ErrSameAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Initialize allowances map if needed
	if t.allowances[owner] == nil {
		t.allowances[owner] = make(map[string]uint64)
	}

	oldAllowance := t.allowances[owner][spender]
	t.allowances[owner][spender] = amount

	t.emitEvent(Event{
		Type:      EventApproval,
		From:      owner,
		To:        spender,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("approval", owner+":"+spender, amount),
		Metadata: map[string]interface{}{
			"old_allowance": oldAllowance,
			"new_allowance": amount,
		},
	})

	t.log.WithFields(logrus.Fields{
		"owner":     owner,
		"spender":   spender,
		"allowance": amount,
	}).Info("Approval successful")
	return nil
}

func (t *Token) Allowance(owner, spender string) (uint64, error) {
	if !t.validateAddress(owner) || !t.validateAddress(spender) {
		return 0, ErrInvalidAddress
	}

	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.allowances[owner] == nil {
		return 0, nil
	}
	return t.allowances[owner][spender], nil
}

func (t *Token) TransferFrom(owner, spender, to string, amount uint64) error {
	log := t.log.WithFields(logrus.Fields{
		"owner":   owner,
		"spender": spender,
		"to":      to,
		"amount":  amount,
	})

	// Input validation
	if !t.validateAddress(owner) || !t.validateAddress(spender) || !t.validateAddress(to) {
		log.WithError(ErrInvalidAddress).Warn("TransferFrom failed")
		return ErrInvalidAddress
	}
	if amount == 0 {
		log.WithError(ErrInvalidAmount).Warn("TransferFrom failed")
		return ErrInvalidAmount
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	// Check allowance
	if t.allowances[owner] == nil || t.allowances[owner][spender] < amount {
		log.WithError(ErrAllowanceExceeded).Warn("TransferFrom failed")
		return ErrAllowanceExceeded
	}

	// Check balance
	if t.balances[owner] < amount {
		log.WithError(ErrInsufficientBalance).Warn("TransferFrom failed")
		return ErrInsufficientBalance
	}

	// Transfer policy gate, same as a direct transfer
	if err := t.authorize(owner, to, amount, false); err != nil {
		log.WithError(err).Warn("TransferFrom rejected by policy")
		return err
	}

	// Overflow protection for recipient
	if t.balances[to] > ^uint64(0)-amount {
		log.WithError(ErrBalanceOverflow).Warn("TransferFrom failed")
		return ErrBalanceOverflow
	}

	oldAllowance := t.allowances[owner][spender]

	// Execute transfer
	t.balances[owner] -= amount
	t.balances[to] += amount
	t.allowances[owner][spender] -= amount

	t.emitEvent(Event{
		Type:      EventTransfer,
		From:      owner,
		To:        to,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("transferFrom", owner+":"+to, amount),
		Metadata: map[string]interface{}{
			"spender":       spender,
			"old_allowance": oldAllowance,
			"new_allowance": t.allowances[owner][spender],
			"transfer_type": "delegated",
		},
	})

	log.Info("TransferFrom successful")
	return nil
}
