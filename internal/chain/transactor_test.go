package chain

import (
	"context"
	"encoding/hex"
	"errors"
	"math/big"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// fakeBackend records sent transactions and mines them immediately.
type fakeBackend struct {
	mu          sync.Mutex
	sent        []*gethtypes.Transaction
	estimateErr error
	sendErr     error
	status      uint64
}

func (b *fakeBackend) PendingNonceAt(context.Context, common.Address) (uint64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return uint64(len(b.sent)), nil
}

func (b *fakeBackend) SuggestGasPrice(context.Context) (*big.Int, error) {
	return big.NewInt(2_000_000_000), nil
}

func (b *fakeBackend) EstimateGas(context.Context, ethereum.CallMsg) (uint64, error) {
	if b.estimateErr != nil {
		return 0, b.estimateErr
	}
	return 100000, nil
}

func (b *fakeBackend) SendTransaction(_ context.Context, tx *gethtypes.Transaction) error {
	if b.sendErr != nil {
		return b.sendErr
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sent = append(b.sent, tx)
	return nil
}

func (b *fakeBackend) TransactionReceipt(_ context.Context, hash common.Hash) (*gethtypes.Receipt, error) {
	return &gethtypes.Receipt{TxHash: hash, Status: b.status, GasUsed: 84000}, nil
}

func (b *fakeBackend) CodeAt(context.Context, common.Address, *big.Int) ([]byte, error) {
	return []byte{0x1}, nil
}

func testKeyHex(t *testing.T) string {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	return "0x" + hex.EncodeToString(crypto.FromECDSA(key))
}

func newTestTransactor(t *testing.T, backend *fakeBackend) *Transactor {
	t.Helper()

	tr, err := NewTransactor(&TransactorConfig{
		Backend:         backend,
		ContractAddress: testContract,
		ChainID:         11155111,
		PrivateKeyHex:   testKeyHex(t),
		Logger:          zap.NewNop(),
	})
	require.NoError(t, err)

	return tr
}

func TestNewTransactor_Validation(t *testing.T) {
	backend := &fakeBackend{}
	key := testKeyHex(t)

	tests := []struct {
		name string
		cfg  TransactorConfig
	}{
		{"nil-backend", TransactorConfig{ContractAddress: testContract, ChainID: 1, PrivateKeyHex: key, Logger: zap.NewNop()}},
		{"nil-logger", TransactorConfig{Backend: backend, ContractAddress: testContract, ChainID: 1, PrivateKeyHex: key}},
		{"no-contract", TransactorConfig{Backend: backend, ChainID: 1, PrivateKeyHex: key, Logger: zap.NewNop()}},
		{"bad-chain", TransactorConfig{Backend: backend, ContractAddress: testContract, PrivateKeyHex: key, Logger: zap.NewNop()}},
		{"bad-key", TransactorConfig{Backend: backend, ContractAddress: testContract, ChainID: 1, PrivateKeyHex: "zz", Logger: zap.NewNop()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, err := NewTransactor(&cfg)
			assert.Error(t, err)
		})
	}
}

func TestTransactor_SubmitCreateMarket(t *testing.T) {
	backend := &fakeBackend{status: gethtypes.ReceiptStatusSuccessful}
	tr := newTestTransactor(t, backend)

	tx, err := tr.Submit(context.Background(), MethodCreateMarket, big.NewInt(500_000_000), big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, backend.sent, 1)

	assert.Equal(t, common.HexToAddress(testContract), *tx.To())
	assert.Equal(t, uint64(120000), tx.Gas())
	assert.Zero(t, tx.Value().Sign())

	sender, err := gethtypes.Sender(gethtypes.NewEIP155Signer(big.NewInt(11155111)), tx)
	require.NoError(t, err)
	assert.Equal(t, tr.From(), sender)

	parsed, err := ParseABI()
	require.NoError(t, err)
	method := parsed.Methods[MethodCreateMarket]
	assert.Equal(t, method.ID, tx.Data()[:4])

	args, err := method.Inputs.Unpack(tx.Data()[4:])
	require.NoError(t, err)
	require.Len(t, args, 2)
	assert.Equal(t, int64(500_000_000), args[0].(*big.Int).Int64())
	assert.Equal(t, int64(7), args[1].(*big.Int).Int64())

	receipt, err := tr.Wait(context.Background(), tx)
	require.NoError(t, err)
	assert.Equal(t, tx.Hash(), receipt.TxHash)
	assert.Equal(t, gethtypes.ReceiptStatusSuccessful, receipt.Status)
}

func TestTransactor_EstimateFailureFallsBack(t *testing.T) {
	backend := &fakeBackend{estimateErr: errors.New("execution reverted")}
	tr := newTestTransactor(t, backend)

	tx, err := tr.Submit(context.Background(), MethodRedeem, big.NewInt(1))
	require.NoError(t, err)
	assert.Equal(t, defaultGasLimit, tx.Gas())
}

func TestTransactor_SendError(t *testing.T) {
	backend := &fakeBackend{sendErr: errors.New("insufficient funds")}
	tr := newTestTransactor(t, backend)

	_, err := tr.Submit(context.Background(), MethodBetLong, big.NewInt(0), big.NewInt(1_000_000))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "send tx")
}

func TestTransactor_PackError(t *testing.T) {
	tr := newTestTransactor(t, &fakeBackend{})

	_, err := tr.Submit(context.Background(), "noSuchMethod")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pack noSuchMethod")
}
