// Package oracle answers "does this holder have at least N of that asset"
// questions against a foreign asset. Lookups can fail; callers are expected
// to treat any non-success outcome as "unknown" rather than an error worth
// aborting over.
package oracle

// Status classifies the result of a balance lookup.
type Status int

const (
	StatusSuccess Status = iota
	StatusUnavailable
	StatusError
)

// Outcome is the explicit result type of a lookup. Balance is meaningful
// only when Status is StatusSuccess.
type Outcome struct {
	Status  Status
	Balance uint64
	Err     error
}

func Success(balance uint64) Outcome {
	return Outcome{Status: StatusSuccess, Balance: balance}
}

func Unavailable(err error) Outcome {
	return Outcome{Status: StatusUnavailable, Err: err}
}

func Failed(err error) Outcome {
	return Outcome{Status: StatusError, Err: err}
}

// OK reports whether the lookup produced a usable balance.
func (o Outcome) OK() bool {
	return o.Status == StatusSuccess
}

// BalanceOracle resolves a holder's balance of a foreign asset.
type BalanceOracle interface {
	BalanceOf(asset, holder string) Outcome
}
