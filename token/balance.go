package token

func (t *Token) TotalSupply() uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.totalSupply
}

func (t *Token) BalanceOf(address string) (uint64, error) {
	if !t.validateAddress(address) {
		return 0, ErrInvalidAddress
	}

	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.balances[address], nil
}

// GetAllBalances returns a copy of every tracked balance. Addresses that
// held tokens and later emptied out stay in the map with a zero value.
func (t *Token) GetAllBalances() map[string]uint64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	balances := make(map[string]uint64)
	for addr, balance := range t.balances {
		balances[addr] = balance
	}
	return balances
}

// HolderCount returns the number of addresses with a non-zero balance.
func (t *Token) HolderCount() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	count := 0
	for _, balance := range t.balances {
		if balance > 0 {
			count++
		}
	}
	return count
}
