package oracle

import (
	"errors"
	"sync"
)

// MemoryOracle is an in-process oracle for tests and local deployments.
// It can be told to fail to exercise the no-discount fallback.
type MemoryOracle struct {
	mu       sync.RWMutex
	balances map[string]map[string]uint64 // asset -> holder -> balance
	failWith error
}

func NewMemoryOracle() *MemoryOracle {
	return &MemoryOracle{
		balances: make(map[string]map[string]uint64),
	}
}

// SetBalance records a holder's balance of an asset.
func (o *MemoryOracle) SetBalance(asset, holder string, balance uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.balances[asset] == nil {
		o.balances[asset] = make(map[string]uint64)
	}
	o.balances[asset][holder] = balance
}

// FailWith makes every subsequent lookup report the given error. Passing nil
// restores normal operation.
func (o *MemoryOracle) FailWith(err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.failWith = err
}

// Fail makes every subsequent lookup unavailable.
func (o *MemoryOracle) Fail() {
	o.FailWith(errors.New("oracle unavailable"))
}

func (o *MemoryOracle) BalanceOf(asset, holder string) Outcome {
	o.mu.RLock()
	defer o.mu.RUnlock()

	if o.failWith != nil {
		return Unavailable(o.failWith)
	}
	if o.balances[asset] == nil {
		return Success(0)
	}
	return Success(o.balances[asset][holder])
}
