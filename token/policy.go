package token

// authorize is the transfer-policy decision evaluated before every balance
// mutation. mintOrBurn marks movements where one side is the supply itself
// rather than a holder address. Caller must hold t.mu.
func (t *Token) authorize(from, to string, amount uint64, mintOrBurn bool) error {
	// Launch-window blacklist. Active only until the expiry height is
	// reached; after that the check is skipped for the rest of the
	// instance's life, even if antiBotEnabled was never cleared.
	if t.policy.antiBotEnabled && t.heights.Height() < t.policy.antiBotExpiryHeight {
		if t.policy.blacklist[from] || t.policy.blacklist[to] {
			return ErrBlacklistedDuringLaunch
		}
	}

	// Whale limits apply only between real holders. The owner is exempt
	// both ways.
	if !t.policy.antiWhaleEnabled || mintOrBurn {
		return nil
	}
	if from == t.owner || to == t.owner {
		return nil
	}
	if amount > t.policy.maxTransactionAmount {
		return ErrExceedsMaxTransaction
	}
	if amount > t.policy.maxWalletAmount || t.balances[to] > t.policy.maxWalletAmount-amount {
		return ErrExceedsMaxWallet
	}
	return nil
}

// launchWindowActive reports whether the blacklist is still enforceable.
// Caller must hold t.mu.
func (t *Token) launchWindowActive() bool {
	return t.policy.antiBotEnabled && t.heights.Height() < t.policy.antiBotExpiryHeight
}

func (t *Token) AntiBotEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.antiBotEnabled
}

func (t *Token) AntiBotExpiryHeight() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.antiBotExpiryHeight
}

func (t *Token) IsBlacklisted(address string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.blacklist[address]
}

func (t *Token) AntiWhaleEnabled() bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.antiWhaleEnabled
}

func (t *Token) MaxTransactionAmount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.maxTransactionAmount
}

func (t *Token) MaxWalletAmount() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.policy.maxWalletAmount
}
