package factory

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/launchforge/tokenfactory/oracle"
	"github.com/launchforge/tokenfactory/token"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return logger
}

func newFeeFactory(t *testing.T, cfg Config, o oracle.BalanceOracle) *Factory {
	t.Helper()
	f, err := New(cfg, o, nil, token.HeightFunc(func() uint64 { return 0 }), testLogger())
	require.NoError(t, err)
	return f
}

func TestCalculateFee(t *testing.T) {
	const discountToken = "0xDiscountToken"

	t.Run("Whitelisted caller pays nothing regardless of discount config", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 20,
		}, o)
		require.NoError(t, f.SetWhitelist("0xAdmin", []string{"0xVIP"}, true))

		assert.Zero(t, f.CalculateFee("0xVIP"))
		assert.Equal(t, uint64(1000), f.CalculateFee("0xRegular"))
	})

	t.Run("Base fee without discount config", func(t *testing.T) {
		f := newFeeFactory(t, Config{Owner: "0xAdmin", BaseFee: 1000}, oracle.NewMemoryOracle())
		assert.Equal(t, uint64(1000), f.CalculateFee("0xCaller"))
	})

	t.Run("Discount applied at or above the threshold", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		o.SetBalance(discountToken, "0xHolder", 600)
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 20,
		}, o)

		assert.Equal(t, uint64(800), f.CalculateFee("0xHolder"))
	})

	t.Run("No discount below the threshold", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		o.SetBalance(discountToken, "0xHolder", 499)
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 20,
		}, o)

		assert.Equal(t, uint64(1000), f.CalculateFee("0xHolder"))
	})

	t.Run("Integer division rounds the discounted fee down", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		o.SetBalance(discountToken, "0xHolder", 1000)
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            999,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 33,
		}, o)

		// floor(999 * 67 / 100)
		assert.Equal(t, uint64(669), f.CalculateFee("0xHolder"))
	})

	t.Run("Oracle failure yields the full base fee, never an error", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		o.SetBalance(discountToken, "0xHolder", 600)
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 20,
		}, o)

		o.Fail()
		assert.Equal(t, uint64(1000), f.CalculateFee("0xHolder"))

		o.FailWith(nil)
		assert.Equal(t, uint64(800), f.CalculateFee("0xHolder"))
	})

	t.Run("Nil oracle means no discount", func(t *testing.T) {
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 20,
		}, nil)

		assert.Equal(t, uint64(1000), f.CalculateFee("0xHolder"))
	})

	t.Run("Hundred percent discount", func(t *testing.T) {
		o := oracle.NewMemoryOracle()
		o.SetBalance(discountToken, "0xHolder", 500)
		f := newFeeFactory(t, Config{
			Owner:              "0xAdmin",
			BaseFee:            1000,
			DiscountToken:      discountToken,
			DiscountThreshold:  500,
			DiscountPercentage: 100,
		}, o)

		assert.Zero(t, f.CalculateFee("0xHolder"))
	})
}

func TestGetFees(t *testing.T) {
	f := newFeeFactory(t, Config{Owner: "0xAdmin", BaseFee: 1000}, nil)

	fees := f.GetFees()
	assert.Equal(t, uint64(1000), fees.BaseFee)
	// Legacy per-feature fees were retired and always report zero.
	assert.Zero(t, fees.AntiBotFee)
	assert.Zero(t, fees.AntiWhaleFee)
	assert.Zero(t, fees.AirdropFee)
}
