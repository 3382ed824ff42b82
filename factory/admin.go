package factory

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/launchforge/tokenfactory/store"
)

// requireOwner ensures only the factory owner can perform the action.
// Caller must hold f.mu.
func (f *Factory) requireOwner(caller string) error {
	if caller != f.owner {
		return ErrNotOwner
	}
	return nil
}

// SetBaseFee updates the flat creation fee.
func (f *Factory) SetBaseFee(caller string, baseFee uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}

	old := f.baseFee
	f.baseFee = baseFee

	f.emitEvent(Event{
		Type:      EventBaseFeeUpdated,
		Amount:    baseFee,
		Timestamp: time.Now(),
		TxHash:    f.generateTxHash("base_fee", caller, baseFee),
		Metadata:  map[string]interface{}{"old_base_fee": old},
	})

	f.log.WithFields(logrus.Fields{
		"old_base_fee": old,
		"new_base_fee": baseFee,
	}).Info("Base fee updated")
	return nil
}

// SetFees is the legacy fee setter. Per-feature pricing was retired: only
// the base fee argument is honored, the three feature fees are ignored.
func (f *Factory) SetFees(caller string, baseFee, antiBotFee, antiWhaleFee, airdropFee uint64) error {
	return f.SetBaseFee(caller, baseFee)
}

// SetWhitelist adds or removes addresses from the fee-exempt whitelist.
func (f *Factory) SetWhitelist(caller string, addresses []string, whitelisted bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}

	for _, address := range addresses {
		if address == "" {
			continue
		}
		if whitelisted {
			f.whitelist[address] = true
		} else {
			delete(f.whitelist, address)
		}

		f.emitEvent(Event{
			Type:      EventWhitelistUpdated,
			Address:   address,
			Timestamp: time.Now(),
			TxHash:    f.generateTxHash("whitelist", address, 0),
			Metadata:  map[string]interface{}{"whitelisted": whitelisted},
		})
	}

	f.log.WithFields(logrus.Fields{
		"addresses":   len(addresses),
		"whitelisted": whitelisted,
	}).Info("Whitelist updated")
	return nil
}

// SetDiscountConfig updates the discount asset, threshold and percentage.
func (f *Factory) SetDiscountConfig(caller, discountToken string, threshold, percentage uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if percentage > 100 {
		return ErrInvalidPercentage
	}

	f.discountToken = discountToken
	f.discountThreshold = threshold
	f.discountPercentage = percentage

	f.emitEvent(Event{
		Type:      EventDiscountConfigUpdated,
		Address:   discountToken,
		Timestamp: time.Now(),
		TxHash:    f.generateTxHash("discount", discountToken, percentage),
		Metadata: map[string]interface{}{
			"threshold":  threshold,
			"percentage": percentage,
		},
	})

	f.log.WithFields(logrus.Fields{
		"discount_token": discountToken,
		"threshold":      threshold,
		"percentage":     percentage,
	}).Info("Discount config updated")
	return nil
}

// Withdraw sends the collected fees to the owner.
func (f *Factory) Withdraw(caller string) error {
	return f.WithdrawTo(caller, caller)
}

// WithdrawTo sends the collected fees to an explicit target. A failed send
// rolls the call back; the vault is only debited after the transfer
// succeeds.
func (f *Factory) WithdrawTo(caller, to string) error {
	f.mu.Lock()
	if err := f.requireOwner(caller); err != nil {
		f.mu.Unlock()
		return err
	}
	if to == "" {
		f.mu.Unlock()
		return ErrInvalidAddress
	}
	if f.withdrawing {
		f.mu.Unlock()
		return ErrReentrantCall
	}
	if f.vault == 0 {
		f.mu.Unlock()
		return ErrNothingToWithdraw
	}

	amount := f.vault
	f.withdrawing = true
	f.mu.Unlock()

	sendErr := f.funds.Send(to, amount)

	f.mu.Lock()
	f.withdrawing = false
	if sendErr != nil {
		f.mu.Unlock()
		f.log.WithError(sendErr).WithField("to", to).Warn("Withdrawal failed")
		return fmt.Errorf("%w: %v", ErrWithdrawFailed, sendErr)
	}

	f.vault -= amount
	txHash := f.generateTxHash("withdraw", caller+":"+to, amount)
	f.emitEvent(Event{
		Type:      EventFeesWithdrawn,
		Address:   to,
		Amount:    amount,
		Timestamp: time.Now(),
		TxHash:    txHash,
	})
	f.mu.Unlock()

	if f.metrics != nil {
		f.metrics.FeesWithdrawn.Add(float64(amount))
	}
	if f.records != nil {
		err := f.records.SaveWithdrawal(store.WithdrawalRecord{
			TxHash:    txHash,
			To:        to,
			Amount:    amount,
			Timestamp: time.Now(),
		})
		if err != nil {
			f.log.WithError(err).Error("Failed to persist withdrawal record")
		}
	}

	f.log.WithFields(logrus.Fields{
		"to":     to,
		"amount": amount,
	}).Info("Fees withdrawn")
	return nil
}

// Pause engages the creation pause switch.
func (f *Factory) Pause(caller string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if f.paused {
		return ErrAlreadyPaused
	}
	f.paused = true

	f.emitEvent(Event{
		Type:      EventPaused,
		Timestamp: time.Now(),
		TxHash:    f.generateTxHash("pause", caller, 0),
	})

	f.log.Info("Factory paused")
	return nil
}

// Unpause releases the creation pause switch.
func (f *Factory) Unpause(caller string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.requireOwner(caller); err != nil {
		return err
	}
	if !f.paused {
		return ErrNotPaused
	}
	f.paused = false

	f.emitEvent(Event{
		Type:      EventUnpaused,
		Timestamp: time.Now(),
		TxHash:    f.generateTxHash("unpause", caller, 0),
	})

	f.log.Info("Factory unpaused")
	return nil
}
