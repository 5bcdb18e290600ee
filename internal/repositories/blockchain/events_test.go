package blockchain

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

func TestEventMapperFundsDeposited(t *testing.T) {
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	require.NoError(t, err)

	event := parsedABI.Events["FundsDeposited"]
	buyer := common.HexToAddress("0x1111111111111111111111111111111111111111")
	amount := big.NewInt(1500000)

	data, err := event.Inputs.NonIndexed().Pack(amount)
	require.NoError(t, err)

	log := types.Log{
		Topics: []common.Hash{
			event.ID,
			common.BytesToHash(common.LeftPadBytes(buyer.Bytes(), 32)),
		},
		Data: data,
	}

	mapper := CreateEventMapper(escrowEventFactory, parsedABI)
	mapped, err := mapper(log)
	require.NoError(t, err)

	deposited, ok := mapped.(*FundsDepositedEvent)
	require.True(t, ok)
	require.Equal(t, buyer, deposited.Buyer)
	require.Equal(t, amount, deposited.Amount)
}

func TestEventMapperDisputeResolved(t *testing.T) {
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	require.NoError(t, err)

	event := parsedABI.Events["DisputeResolved"]
	data, err := event.Inputs.NonIndexed().Pack(big.NewInt(40))
	require.NoError(t, err)

	mapper := CreateEventMapper(escrowEventFactory, parsedABI)
	mapped, err := mapper(types.Log{Topics: []common.Hash{event.ID}, Data: data})
	require.NoError(t, err)

	resolved, ok := mapped.(*DisputeResolvedEvent)
	require.True(t, ok)
	require.Equal(t, int64(40), resolved.BuyerRefundPercent.Int64())
}

func TestEventMapperRejectsUnknownEvent(t *testing.T) {
	parsedABI, err := abi.JSON(strings.NewReader(escrowABI))
	require.NoError(t, err)

	mapper := CreateEventMapper(escrowEventFactory, parsedABI)
	_, err = mapper(types.Log{Topics: []common.Hash{common.HexToHash("0xdead")}})
	require.Error(t, err)
}
