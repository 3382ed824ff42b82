package token

import (
	"time"

	"github.com/sirupsen/logrus"
)

// SetBlacklisted adds or removes an address from the launch-window
// blacklist. Allowed only for the owner, only while anti-bot is enabled and
// the window has not expired, and never for the owner's own address.
func (t *Token) SetBlacklisted(caller, address string, blacklisted bool) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if !t.validateAddress(address) {
		return ErrInvalidAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.antiBotEnabled {
		return ErrAntiBotDisabled
	}
	if !t.launchWindowActive() {
		return ErrLaunchWindowExpired
	}
	if address == t.owner {
		return ErrCannotBlacklistOwner
	}

	t.applyBlacklist(address, blacklisted)
	return nil
}

// SetBlacklistedBatch applies the same per-entry rules as SetBlacklisted but
// silently skips entries equal to the owner instead of failing the batch.
func (t *Token) SetBlacklistedBatch(caller string, addresses []string, blacklisted bool) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.antiBotEnabled {
		return ErrAntiBotDisabled
	}
	if !t.launchWindowActive() {
		return ErrLaunchWindowExpired
	}

	for _, address := range addresses {
		if !t.validateAddress(address) || address == t.owner {
			continue
		}
		t.applyBlacklist(address, blacklisted)
	}
	return nil
}

// applyBlacklist mutates the set and emits the per-address record. Caller
// must hold t.mu.
func (t *Token) applyBlacklist(address string, blacklisted bool) {
	if blacklisted {
		t.policy.blacklist[address] = true
	} else {
		delete(t.policy.blacklist, address)
	}

	t.emitEvent(Event{
		Type:      EventBlacklistUpdated,
		To:        address,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("blacklist", address, 0),
		Metadata: map[string]interface{}{
			"blacklisted": blacklisted,
		},
	})

	t.log.WithFields(logrus.Fields{
		"address":     address,
		"blacklisted": blacklisted,
	}).Info("Blacklist updated")
}

// DisableAntiBot permanently turns off the launch-window blacklist. One-way:
// once cleared it can never be re-enabled. The blacklist set is retained but
// no longer enforced.
func (t *Token) DisableAntiBot(caller string) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.antiBotEnabled {
		return ErrAlreadyDisabled
	}
	t.policy.antiBotEnabled = false

	t.emitEvent(Event{
		Type:      EventAntiBotDisabled,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("anti_bot_off", caller, 0),
	})

	t.log.Info("Anti-bot protection disabled")
	return nil
}

// SetLimits adjusts the whale limits. Only meaningful while anti-whale is
// enabled; both values must be strictly positive.
func (t *Token) SetLimits(caller string, maxTransactionAmount, maxWalletAmount uint64) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.antiWhaleEnabled {
		return ErrAntiWhaleDisabled
	}
	if maxTransactionAmount == 0 || maxWalletAmount == 0 {
		return ErrInvalidLimits
	}

	t.policy.maxTransactionAmount = maxTransactionAmount
	t.policy.maxWalletAmount = maxWalletAmount

	t.emitEvent(Event{
		Type:      EventLimitsUpdated,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("limits", caller, maxTransactionAmount),
		Metadata: map[string]interface{}{
			"max_transaction_amount": maxTransactionAmount,
			"max_wallet_amount":      maxWalletAmount,
		},
	})

	t.log.WithFields(logrus.Fields{
		"max_transaction_amount": maxTransactionAmount,
		"max_wallet_amount":      maxWalletAmount,
	}).Info("Whale limits updated")
	return nil
}

// DisableAntiWhale turns off the whale limits and zeroes both values.
func (t *Token) DisableAntiWhale(caller string) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if !t.policy.antiWhaleEnabled {
		return ErrAlreadyDisabled
	}
	t.policy.antiWhaleEnabled = false
	t.policy.maxTransactionAmount = 0
	t.policy.maxWalletAmount = 0

	t.emitEvent(Event{
		Type:      EventAntiWhaleDisabled,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("anti_whale_off", caller, 0),
	})

	t.log.Info("Anti-whale protection disabled")
	return nil
}

// TransferOwnership hands administrative control of the instance to a new
// address. The owner exemptions and gating follow the new owner from here on.
func (t *Token) TransferOwnership(caller, newOwner string) error {
	if err := t.requireOwner(caller); err != nil {
		return err
	}
	if !t.validateAddress(newOwner) {
		return ErrInvalidAddress
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	oldOwner := t.owner
	t.owner = newOwner

	t.emitEvent(Event{
		Type:      EventOwnershipTransferred,
		From:      oldOwner,
		To:        newOwner,
		Timestamp: time.Now(),
		TxHash:    t.generateTxHash("ownership", oldOwner+":"+newOwner, 0),
	})

	t.log.WithFields(logrus.Fields{
		"old_owner": oldOwner,
		"new_owner": newOwner,
	}).Info("Ownership transferred")
	return nil
}
