package factory

import (
	"errors"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchforge/tokenfactory/oracle"
	"github.com/launchforge/tokenfactory/store"
	"github.com/launchforge/tokenfactory/token"
)

type sentPayment struct {
	to     string
	amount uint64
}

// fakeSender records outbound transfers and can be told to fail or to call
// back into the factory mid-send.
type fakeSender struct {
	mu     sync.Mutex
	fail   bool
	sent   []sentPayment
	onSend func()
}

func (s *fakeSender) Send(to string, amount uint64) error {
	if s.onSend != nil {
		s.onSend()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.fail {
		return errors.New("send failed")
	}
	s.sent = append(s.sent, sentPayment{to: to, amount: amount})
	return nil
}

func validParams(payment uint64) CreateParams {
	return CreateParams{
		Name:          "Launch Token",
		Symbol:        "LT",
		Decimals:      6,
		InitialSupply: 1000,
		Payment:       payment,
	}
}

func newTestFactory(t *testing.T) (*Factory, *fakeSender) {
	t.Helper()
	sender := &fakeSender{}
	f, err := New(Config{Owner: "0xAdmin", BaseFee: 1000}, oracle.NewMemoryOracle(),
		sender, token.HeightFunc(func() uint64 { return 100 }), testLogger())
	require.NoError(t, err)
	return f, sender
}

func TestCreateTokenValidation(t *testing.T) {
	f, _ := newTestFactory(t)

	longName := make([]byte, 51)
	for i := range longName {
		longName[i] = 'a'
	}

	tests := []struct {
		name   string
		mutate func(*CreateParams)
		want   error
	}{
		{"empty name", func(p *CreateParams) { p.Name = "" }, ErrInvalidName},
		{"name too long", func(p *CreateParams) { p.Name = string(longName) }, ErrInvalidName},
		{"empty symbol", func(p *CreateParams) { p.Symbol = "" }, ErrInvalidSymbol},
		{"symbol too long", func(p *CreateParams) { p.Symbol = "TOOLONGSYMBOL" }, ErrInvalidSymbol},
		{"decimals too low", func(p *CreateParams) { p.Decimals = 5 }, ErrInvalidDecimals},
		{"decimals too high", func(p *CreateParams) { p.Decimals = 19 }, ErrInvalidDecimals},
		{"zero supply", func(p *CreateParams) { p.InitialSupply = 0 }, ErrInvalidSupply},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p := validParams(1000)
			tc.mutate(&p)
			_, _, err := f.CreateToken("0xCreator", p)
			assert.ErrorIs(t, err, tc.want)
		})
	}

	t.Run("First failure wins", func(t *testing.T) {
		p := validParams(1000)
		p.Name = ""
		p.Symbol = ""
		p.Decimals = 0
		_, _, err := f.CreateToken("0xCreator", p)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	t.Run("No state change on rejection", func(t *testing.T) {
		assert.Zero(t, f.GetStats().TotalTokensCreated)
		assert.Zero(t, f.GetBalance())
		assert.Zero(t, f.TokenCount())
	})
}

func TestCreateTokenPaused(t *testing.T) {
	f, _ := newTestFactory(t)
	require.NoError(t, f.Pause("0xAdmin"))

	_, _, err := f.CreateToken("0xCreator", validParams(1000))
	assert.ErrorIs(t, err, ErrPausedState)

	t.Run("Argument validation still precedes the pause gate", func(t *testing.T) {
		p := validParams(1000)
		p.Name = ""
		_, _, err := f.CreateToken("0xCreator", p)
		assert.ErrorIs(t, err, ErrInvalidName)
	})

	require.NoError(t, f.Unpause("0xAdmin"))
	_, _, err = f.CreateToken("0xCreator", validParams(1000))
	assert.NoError(t, err)
}

func TestCreateTokenSuccess(t *testing.T) {
	f, sender := newTestFactory(t)

	addr, fee, err := f.CreateToken("0xCreator", validParams(1000))
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), fee)

	t.Run("Mints the scaled supply to the caller", func(t *testing.T) {
		ledger, ok := f.Token(addr)
		require.True(t, ok)

		assert.Equal(t, "0xCreator", ledger.Owner())
		assert.Equal(t, uint64(1_000_000_000), ledger.TotalSupply())
		balance, err := ledger.BalanceOf("0xCreator")
		require.NoError(t, err)
		assert.Equal(t, uint64(1_000_000_000), balance)
	})

	t.Run("Stats and vault updated by the charged fee", func(t *testing.T) {
		stats := f.GetStats()
		assert.Equal(t, uint64(1), stats.TotalTokensCreated)
		assert.Equal(t, uint64(1000), stats.TotalFeesCollected)
		assert.Equal(t, uint64(1000), f.GetBalance())
	})

	t.Run("Exact payment means no refund", func(t *testing.T) {
		assert.Empty(t, sender.sent)
	})

	t.Run("Token-created event emitted", func(t *testing.T) {
		events := f.GetEvents()
		require.Len(t, events, 1)
		assert.Equal(t, EventTokenCreated, events[0].Type)
		assert.Equal(t, addr, events[0].Address)
		assert.Equal(t, uint64(1000), events[0].Amount)
	})
}

func TestCreateTokenFees(t *testing.T) {
	t.Run("Insufficient payment rejected", func(t *testing.T) {
		f, _ := newTestFactory(t)
		_, _, err := f.CreateToken("0xCreator", validParams(999))
		assert.ErrorIs(t, err, ErrInsufficientFee)
		assert.Zero(t, f.GetStats().TotalTokensCreated)
	})

	t.Run("Whitelisted caller creates for free", func(t *testing.T) {
		f, _ := newTestFactory(t)
		require.NoError(t, f.SetWhitelist("0xAdmin", []string{"0xVIP"}, true))

		_, fee, err := f.CreateToken("0xVIP", validParams(0))
		require.NoError(t, err)
		assert.Zero(t, fee)

		stats := f.GetStats()
		assert.Equal(t, uint64(1), stats.TotalTokensCreated)
		assert.Zero(t, stats.TotalFeesCollected)
	})

	t.Run("Excess payment refunded exactly", func(t *testing.T) {
		f, sender := newTestFactory(t)

		_, fee, err := f.CreateToken("0xCreator", validParams(1500))
		require.NoError(t, err)
		assert.Equal(t, uint64(1000), fee)

		require.Len(t, sender.sent, 1)
		assert.Equal(t, sentPayment{to: "0xCreator", amount: 500}, sender.sent[0])

		// Stats track the charged fee, not the raw payment.
		assert.Equal(t, uint64(1000), f.GetStats().TotalFeesCollected)
		assert.Equal(t, uint64(1000), f.GetBalance())
	})
}

func TestCreateTokenRefundFailure(t *testing.T) {
	f, sender := newTestFactory(t)
	sender.fail = true

	_, _, err := f.CreateToken("0xCreator", validParams(1500))
	assert.ErrorIs(t, err, ErrRefundFailed)

	t.Run("Whole call rolled back", func(t *testing.T) {
		assert.Zero(t, f.TokenCount())
		assert.Zero(t, f.GetStats().TotalTokensCreated)
		assert.Zero(t, f.GetStats().TotalFeesCollected)
		assert.Zero(t, f.GetBalance())
		assert.Empty(t, f.GetEvents())
	})

	t.Run("Factory still usable afterwards", func(t *testing.T) {
		sender.fail = false
		_, _, err := f.CreateToken("0xCreator", validParams(1500))
		assert.NoError(t, err)
	})
}

func TestCreateTokenReentrancy(t *testing.T) {
	f, sender := newTestFactory(t)

	var reentrantErr error
	sender.onSend = func() {
		sender.onSend = nil
		_, _, reentrantErr = f.CreateToken("0xCreator", validParams(1500))
	}

	_, _, err := f.CreateToken("0xCreator", validParams(1500))
	require.NoError(t, err)
	assert.ErrorIs(t, reentrantErr, ErrReentrantCall)
	assert.Equal(t, uint64(1), f.GetStats().TotalTokensCreated)
}

func TestWithdraw(t *testing.T) {
	t.Run("Nothing to withdraw", func(t *testing.T) {
		f, _ := newTestFactory(t)
		assert.ErrorIs(t, f.Withdraw("0xAdmin"), ErrNothingToWithdraw)
	})

	t.Run("Owner gated", func(t *testing.T) {
		f, _ := newTestFactory(t)
		assert.ErrorIs(t, f.Withdraw("0xMallory"), ErrNotOwner)
	})

	t.Run("Null target rejected", func(t *testing.T) {
		f, _ := newTestFactory(t)
		assert.ErrorIs(t, f.WithdrawTo("0xAdmin", ""), ErrInvalidAddress)
	})

	t.Run("Successful withdrawal empties the vault", func(t *testing.T) {
		f, sender := newTestFactory(t)
		_, _, err := f.CreateToken("0xCreator", validParams(1000))
		require.NoError(t, err)

		require.NoError(t, f.WithdrawTo("0xAdmin", "0xTreasury"))
		assert.Zero(t, f.GetBalance())
		require.Len(t, sender.sent, 1)
		assert.Equal(t, sentPayment{to: "0xTreasury", amount: 1000}, sender.sent[0])

		// Cumulative stats survive the withdrawal.
		assert.Equal(t, uint64(1000), f.GetStats().TotalFeesCollected)
	})

	t.Run("Failed transfer leaves the vault untouched", func(t *testing.T) {
		f, sender := newTestFactory(t)
		_, _, err := f.CreateToken("0xCreator", validParams(1000))
		require.NoError(t, err)

		sender.fail = true
		assert.ErrorIs(t, f.Withdraw("0xAdmin"), ErrWithdrawFailed)
		assert.Equal(t, uint64(1000), f.GetBalance())

		sender.fail = false
		assert.NoError(t, f.Withdraw("0xAdmin"))
		assert.Zero(t, f.GetBalance())
	})

	t.Run("Reentrant withdrawal rejected", func(t *testing.T) {
		f, sender := newTestFactory(t)
		_, _, err := f.CreateToken("0xCreator", validParams(1000))
		require.NoError(t, err)

		var reentrantErr error
		sender.onSend = func() {
			sender.onSend = nil
			reentrantErr = f.Withdraw("0xAdmin")
		}
		require.NoError(t, f.Withdraw("0xAdmin"))
		assert.ErrorIs(t, reentrantErr, ErrReentrantCall)
	})
}

func TestFactoryAdmin(t *testing.T) {
	t.Run("SetBaseFee", func(t *testing.T) {
		f, _ := newTestFactory(t)
		assert.ErrorIs(t, f.SetBaseFee("0xMallory", 2000), ErrNotOwner)

		require.NoError(t, f.SetBaseFee("0xAdmin", 2000))
		assert.Equal(t, uint64(2000), f.GetFees().BaseFee)
	})

	t.Run("SetFees honors only the base fee", func(t *testing.T) {
		f, _ := newTestFactory(t)
		require.NoError(t, f.SetFees("0xAdmin", 2000, 111, 222, 333))

		fees := f.GetFees()
		assert.Equal(t, uint64(2000), fees.BaseFee)
		assert.Zero(t, fees.AntiBotFee)
		assert.Zero(t, fees.AntiWhaleFee)
		assert.Zero(t, fees.AirdropFee)
	})

	t.Run("SetDiscountConfig validates the percentage", func(t *testing.T) {
		f, _ := newTestFactory(t)
		err := f.SetDiscountConfig("0xAdmin", "0xDiscountToken", 500, 101)
		assert.ErrorIs(t, err, ErrInvalidPercentage)

		assert.NoError(t, f.SetDiscountConfig("0xAdmin", "0xDiscountToken", 500, 100))
	})

	t.Run("Whitelist add and remove", func(t *testing.T) {
		f, _ := newTestFactory(t)
		require.NoError(t, f.SetWhitelist("0xAdmin", []string{"0xVIP"}, true))
		assert.True(t, f.IsWhitelisted("0xVIP"))

		require.NoError(t, f.SetWhitelist("0xAdmin", []string{"0xVIP"}, false))
		assert.False(t, f.IsWhitelisted("0xVIP"))
	})

	t.Run("Pause state errors", func(t *testing.T) {
		f, _ := newTestFactory(t)
		assert.ErrorIs(t, f.Unpause("0xAdmin"), ErrNotPaused)

		require.NoError(t, f.Pause("0xAdmin"))
		assert.ErrorIs(t, f.Pause("0xAdmin"), ErrAlreadyPaused)
		assert.True(t, f.IsPaused())
	})
}

func TestCreateTokenPersistsRecords(t *testing.T) {
	records, err := store.Open(filepath.Join(t.TempDir(), "factory.db"))
	require.NoError(t, err)
	defer records.Close()

	f, _ := newTestFactory(t)
	f.SetRecordStore(records)

	addr, _, err := f.CreateToken("0xCreator", validParams(1000))
	require.NoError(t, err)

	saved, err := records.Creations()
	require.NoError(t, err)
	require.Len(t, saved, 1)
	assert.Equal(t, addr, saved[0].TokenAddress)
	assert.Equal(t, "0xCreator", saved[0].Creator)
	assert.Equal(t, uint64(1_000_000_000), saved[0].ScaledSupply)
	assert.Equal(t, uint64(1000), saved[0].FeeCharged)

	snap, err := records.LoadStats()
	require.NoError(t, err)
	assert.Equal(t, uint64(1), snap.TotalTokensCreated)
	assert.Equal(t, uint64(1000), snap.TotalFeesCollected)
}

func TestCreatedLedgersAreIndependent(t *testing.T) {
	f, _ := newTestFactory(t)

	a, _, err := f.CreateToken("0xAlice", validParams(1000))
	require.NoError(t, err)
	b, _, err := f.CreateToken("0xBob", validParams(1000))
	require.NoError(t, err)

	ledgerA, _ := f.Token(a)
	ledgerB, _ := f.Token(b)

	require.NoError(t, ledgerA.Transfer("0xAlice", "0xCarol", 100))

	balance, err := ledgerB.BalanceOf("0xCarol")
	require.NoError(t, err)
	assert.Zero(t, balance)
	assert.Equal(t, 2, f.TokenCount())
	assert.Equal(t, []string{a, b}, f.TokenAddresses())
}
