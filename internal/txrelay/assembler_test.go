package txrelay

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/escrowhq/escrow-gateway/internal/gas"
	"github.com/escrowhq/escrow-gateway/internal/lib"
	"github.com/escrowhq/escrow-gateway/internal/wallet"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const testKey = "459176a7f6ffb27c8c44af1bda2b3825bba823d843bc13eb14c95b5e8b7df0c5"

type nodeMock struct {
	chainID      *big.Int
	pendingNonce uint64
	nonceErr     error
	estimateGas  uint64
	estimateErr  error
	submitErr    error
	receipt      *types.Receipt
	receiptErr   error

	submitted   []*types.Transaction
	nonceCalls  int
	gasPriceWei *big.Int
}

func (m *nodeMock) ChainID(ctx context.Context) (*big.Int, error) {
	return m.chainID, nil
}

func (m *nodeMock) PendingNonceAt(ctx context.Context, account common.Address) (uint64, error) {
	m.nonceCalls++
	return m.pendingNonce, m.nonceErr
}

func (m *nodeMock) TransactionReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	return m.receipt, m.receiptErr
}

func (m *nodeMock) CallContext(ctx context.Context, result interface{}, method string, args ...interface{}) error {
	switch method {
	case "eth_estimateGas":
		if m.estimateErr != nil {
			return m.estimateErr
		}
		*(result.(*hexutil.Uint64)) = hexutil.Uint64(m.estimateGas)
		return nil
	case "eth_sendRawTransaction":
		if m.submitErr != nil {
			return m.submitErr
		}
		raw, err := hexutil.Decode(args[0].(string))
		if err != nil {
			return err
		}
		tx := new(types.Transaction)
		if err := tx.UnmarshalBinary(raw); err != nil {
			return err
		}
		m.submitted = append(m.submitted, tx)
		*(result.(*common.Hash)) = tx.Hash()
		return nil
	default:
		return errors.New("unexpected method " + method)
	}
}

func (m *nodeMock) SuggestGasPrice(ctx context.Context) (*big.Int, error) {
	return m.gasPriceWei, nil
}

func (m *nodeMock) SuggestGasTipCap(ctx context.Context) (*big.Int, error) {
	return nil, errors.New("not supported")
}

func (m *nodeMock) HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error) {
	return nil, errors.New("not supported")
}

func newTestAssembler(t *testing.T, node *nodeMock, cfg AssemblerConfig) (*Assembler, *wallet.KeyedSigner) {
	t.Helper()
	log := lib.NewTestLogger()

	signer, err := wallet.NewKeyedSignerFromHex(testKey)
	require.NoError(t, err)

	pricer := gas.NewPricer(gas.PricerConfig{TrustedPriceGwei: 2}, node, log)
	estimator := gas.NewEstimator(node, gas.FallbackLimits{Default: 100_000}, log)

	return NewAssembler(node, signer, pricer, estimator, cfg, log), signer
}

func TestSendBuildsSignedLegacyTx(t *testing.T) {
	node := &nodeMock{chainID: big.NewInt(1337), pendingNonce: 7, estimateGas: 52_000}
	assembler, signer := newTestAssembler(t, node, AssemblerConfig{})

	to := common.HexToAddress("0x3333333333333333333333333333333333333333")
	hash, err := assembler.Send(context.Background(), CallRequest{To: to, Data: []byte{0xde, 0xad}})
	require.NoError(t, err)
	require.Len(t, node.submitted, 1)

	tx := node.submitted[0]
	require.Equal(t, hash, tx.Hash())
	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, uint64(52_000), tx.Gas())
	require.Equal(t, to, *tx.To())
	require.Equal(t, gas.GweiToWei(2), tx.GasPrice())

	sender, err := types.Sender(types.LatestSignerForChainID(big.NewInt(1337)), tx)
	require.NoError(t, err)
	require.Equal(t, signer.Address(), sender)
}

func TestSendIncrementsCachedNonce(t *testing.T) {
	node := &nodeMock{chainID: big.NewInt(1337), pendingNonce: 3, estimateGas: 30_000}
	assembler, _ := newTestAssembler(t, node, AssemblerConfig{})

	req := CallRequest{To: common.HexToAddress("0x3333333333333333333333333333333333333333")}
	for i := 0; i < 3; i++ {
		_, err := assembler.Send(context.Background(), req)
		require.NoError(t, err)
	}

	require.Equal(t, 1, node.nonceCalls)
	require.Equal(t, uint64(3), node.submitted[0].Nonce())
	require.Equal(t, uint64(4), node.submitted[1].Nonce())
	require.Equal(t, uint64(5), node.submitted[2].Nonce())
}

func TestSendResetsNonceOnSubmitFailure(t *testing.T) {
	node := &nodeMock{chainID: big.NewInt(1337), pendingNonce: 3, estimateGas: 30_000, submitErr: errors.New("nonce too low")}
	assembler, _ := newTestAssembler(t, node, AssemblerConfig{})

	req := CallRequest{To: common.HexToAddress("0x3333333333333333333333333333333333333333")}
	_, err := assembler.Send(context.Background(), req)
	require.ErrorIs(t, err, ErrSubmit)

	node.submitErr = nil
	node.pendingNonce = 9
	_, err = assembler.Send(context.Background(), req)
	require.NoError(t, err)

	require.Equal(t, 2, node.nonceCalls)
	require.Equal(t, uint64(9), node.submitted[0].Nonce())
}

func TestQuoteRejectsCostAboveCeiling(t *testing.T) {
	node := &nodeMock{chainID: big.NewInt(1337), estimateGas: 1_000_000}
	assembler, _ := newTestAssembler(t, node, AssemblerConfig{
		MaxCostWei:   big.NewInt(1), // 1 wei, anything fails
		MaxPriceGwei: 100,
	})

	_, err := assembler.Quote(context.Background(), CallRequest{To: common.Address{}})
	require.ErrorIs(t, err, gas.ErrCostLimit)

	var costErr *gas.CostLimitError
	require.ErrorAs(t, err, &costErr)
	require.Equal(t, uint64(1_000_000), costErr.GasLimit)
	require.Equal(t, gas.GweiToWei(2), costErr.GasPriceWei)
	require.Equal(t, int64(100), costErr.MaxPriceGwei)
}

func TestWaitMinedRevertedTx(t *testing.T) {
	node := &nodeMock{receipt: &types.Receipt{Status: types.ReceiptStatusFailed}}
	assembler, _ := newTestAssembler(t, node, AssemblerConfig{})

	receipt, err := assembler.WaitMined(context.Background(), common.Hash{1})
	require.ErrorIs(t, err, ErrTxReverted)
	require.NotNil(t, receipt)
}

func TestWaitMinedTimeout(t *testing.T) {
	node := &nodeMock{receiptErr: errors.New("not found")}
	assembler, _ := newTestAssembler(t, node, AssemblerConfig{
		ConfirmTimeout:      10 * time.Millisecond,
		ReceiptPollInterval: 5 * time.Millisecond,
	})

	_, err := assembler.WaitMined(context.Background(), common.Hash{1})
	require.ErrorIs(t, err, ErrConfirmationTimeout)
	require.NotErrorIs(t, err, ErrTxReverted)
}
