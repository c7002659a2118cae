package multicall

import (
	"context"
	"errors"
	"math/big"
	"strings"
	"testing"

	ethereum "github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockCaller struct {
	lastMsg ethereum.CallMsg
	resp    []byte
	err     error
}

func (m *mockCaller) CallContract(ctx context.Context, msg ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	m.lastMsg = msg
	if m.err != nil {
		return nil, m.err
	}
	return m.resp, nil
}

var mcAddr = common.HexToAddress("0xcA11bde05977b3631167028862bE2a173976CA11")

type callReturn struct {
	Success    bool
	ReturnData []byte
}

func packResponse(t *testing.T, rets []callReturn) []byte {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(multicallABI))
	require.NoError(t, err)
	b, err := parsed.Methods["tryAggregate"].Outputs.Pack(rets)
	require.NoError(t, err)
	return b
}

func TestAggregate_PerCallResults(t *testing.T) {
	caller := &mockCaller{resp: packResponse(t, []callReturn{
		{Success: true, ReturnData: []byte{0x01, 0x02}},
		{Success: false, ReturnData: nil},
		{Success: true, ReturnData: nil}, // reported success but no data is unusable
	})}
	mc, err := New(caller, mcAddr)
	require.NoError(t, err)

	calls := []Call{
		{Target: mcAddr, CallData: []byte{0xaa}},
		{Target: mcAddr, CallData: []byte{0xbb}},
		{Target: mcAddr, CallData: []byte{0xcc}},
	}
	results, err := mc.Aggregate(context.Background(), calls)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.True(t, results[0].Success)
	assert.Equal(t, []byte{0x01, 0x02}, results[0].Data)
	assert.False(t, results[1].Success)
	assert.False(t, results[2].Success)

	require.NotNil(t, caller.lastMsg.To)
	assert.Equal(t, mcAddr, *caller.lastMsg.To)
}

func TestAggregate_BatchFailure(t *testing.T) {
	mc, err := New(&mockCaller{err: errors.New("rpc unreachable")}, mcAddr)
	require.NoError(t, err)

	_, err = mc.Aggregate(context.Background(), []Call{{Target: mcAddr}})
	assert.Error(t, err)
}

func TestAggregate_LengthMismatch(t *testing.T) {
	caller := &mockCaller{resp: packResponse(t, []callReturn{{Success: true, ReturnData: []byte{1}}})}
	mc, err := New(caller, mcAddr)
	require.NoError(t, err)

	_, err = mc.Aggregate(context.Background(), []Call{{Target: mcAddr}, {Target: mcAddr}})
	assert.Error(t, err)
}

func TestNew_RejectsZeroAddress(t *testing.T) {
	_, err := New(&mockCaller{}, common.Address{})
	assert.Error(t, err)
}
