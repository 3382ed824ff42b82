package oracle

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/sirupsen/logrus"
)

// balanceOfSelector is the 4-byte selector of balanceOf(address).
var balanceOfSelector = []byte{0x70, 0xa0, 0x82, 0x31}

const ethCallTimeout = 10 * time.Second

// EthOracle resolves ERC-20 balances through an Ethereum JSON-RPC endpoint.
type EthOracle struct {
	client *ethclient.Client
	log    *logrus.Entry
}

// NewEthOracle connects to an Ethereum RPC endpoint.
func NewEthOracle(rpcURL string, logger *logrus.Logger) (*EthOracle, error) {
	client, err := ethclient.Dial(rpcURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Ethereum: %v", err)
	}
	if logger == nil {
		logger = logrus.New()
	}

	return &EthOracle{
		client: client,
		log:    logger.WithField("component", "eth_oracle"),
	}, nil
}

// BalanceOf issues an eth_call against the asset contract's
// balanceOf(address). Any transport or decode failure is reported through
// the outcome, never as a panic or propagated error.
func (o *EthOracle) BalanceOf(asset, holder string) Outcome {
	ctx, cancel := context.WithTimeout(context.Background(), ethCallTimeout)
	defer cancel()

	assetAddr := common.HexToAddress(asset)
	holderAddr := common.HexToAddress(holder)

	data := make([]byte, 0, 36)
	data = append(data, balanceOfSelector...)
	data = append(data, common.LeftPadBytes(holderAddr.Bytes(), 32)...)

	msg := ethereum.CallMsg{To: &assetAddr, Data: data}
	result, err := o.client.CallContract(ctx, msg, nil)
	if err != nil {
		o.log.WithError(err).Warn("Balance lookup failed")
		return Unavailable(err)
	}
	if len(result) < 32 {
		err := fmt.Errorf("malformed balanceOf response: %d bytes", len(result))
		o.log.WithError(err).Warn("Balance lookup failed")
		return Failed(err)
	}

	balance := new(big.Int).SetBytes(result[:32])
	if !balance.IsUint64() {
		// Larger than any threshold this system can express.
		return Success(^uint64(0))
	}
	return Success(balance.Uint64())
}

// Close releases the underlying RPC connection.
func (o *EthOracle) Close() {
	o.client.Close()
}
