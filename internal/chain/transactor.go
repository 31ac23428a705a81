package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	gethtypes "github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// defaultGasLimit is used when gas estimation fails.
const defaultGasLimit = uint64(300000)

// Backend is what a Transactor needs from a node. *ethclient.Client
// satisfies it.
type Backend interface {
	bind.DeployBackend
	PendingNonceAt(ctx context.Context, account common.Address) (uint64, error)
	SuggestGasPrice(ctx context.Context) (*big.Int, error)
	EstimateGas(ctx context.Context, msg ethereum.CallMsg) (uint64, error)
	SendTransaction(ctx context.Context, tx *gethtypes.Transaction) error
}

// Transactor signs and submits writes to the gas futures contract.
type Transactor struct {
	backend    Backend
	contract   common.Address
	chainID    *big.Int
	privateKey *ecdsa.PrivateKey
	from       common.Address
	abi        abi.ABI
	logger     *zap.Logger
}

// TransactorConfig holds transactor configuration.
type TransactorConfig struct {
	Backend         Backend
	ContractAddress string
	ChainID         int64
	PrivateKeyHex   string
	Logger          *zap.Logger
}

// NewTransactor creates a transactor signing with the given key.
func NewTransactor(cfg *TransactorConfig) (*Transactor, error) {
	if cfg.Backend == nil {
		return nil, errors.New("backend cannot be nil")
	}

	if cfg.Logger == nil {
		return nil, errors.New("logger cannot be nil")
	}

	addr := common.HexToAddress(cfg.ContractAddress)
	if !common.IsHexAddress(cfg.ContractAddress) || addr == (common.Address{}) {
		return nil, ErrNoContract
	}

	if cfg.ChainID <= 0 {
		return nil, fmt.Errorf("invalid chain id %d", cfg.ChainID)
	}

	privateKey, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	parsed, err := ParseABI()
	if err != nil {
		return nil, err
	}

	return &Transactor{
		backend:    cfg.Backend,
		contract:   addr,
		chainID:    big.NewInt(cfg.ChainID),
		privateKey: privateKey,
		from:       crypto.PubkeyToAddress(privateKey.PublicKey),
		abi:        parsed,
		logger:     cfg.Logger,
	}, nil
}

// From returns the signing address.
func (t *Transactor) From() common.Address {
	return t.from
}

// Submit packs, signs and sends a contract call. It returns once the node has
// accepted the transaction; use Wait for the receipt.
func (t *Transactor) Submit(ctx context.Context, method string, args ...interface{}) (*gethtypes.Transaction, error) {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	nonce, err := t.backend.PendingNonceAt(ctx, t.from)
	if err != nil {
		return nil, fmt.Errorf("get nonce: %w", err)
	}

	gasPrice, err := t.backend.SuggestGasPrice(ctx)
	if err != nil {
		return nil, fmt.Errorf("suggest gas price: %w", err)
	}

	to := t.contract
	gasLimit, err := t.backend.EstimateGas(ctx, ethereum.CallMsg{
		From: t.from,
		To:   &to,
		Data: data,
	})
	if err != nil {
		t.logger.Warn("gas-estimate-failed",
			zap.String("method", method),
			zap.Uint64("fallback", defaultGasLimit),
			zap.Error(err))
		gasLimit = defaultGasLimit
	} else {
		gasLimit += gasLimit / 5
	}

	tx := gethtypes.NewTransaction(
		nonce,
		t.contract,
		big.NewInt(0),
		gasLimit,
		gasPrice,
		data,
	)

	signedTx, err := gethtypes.SignTx(tx, gethtypes.NewEIP155Signer(t.chainID), t.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign tx: %w", err)
	}

	err = t.backend.SendTransaction(ctx, signedTx)
	if err != nil {
		return nil, fmt.Errorf("send tx: %w", err)
	}

	t.logger.Info("tx-sent",
		zap.String("method", method),
		zap.String("tx-hash", signedTx.Hash().Hex()),
		zap.Uint64("nonce", nonce),
		zap.Uint64("gas-limit", gasLimit))

	return signedTx, nil
}

// Wait blocks until tx is mined and returns its receipt.
func (t *Transactor) Wait(ctx context.Context, tx *gethtypes.Transaction) (*gethtypes.Receipt, error) {
	receipt, err := bind.WaitMined(ctx, t.backend, tx)
	if err != nil {
		return nil, fmt.Errorf("wait for tx: %w", err)
	}
	return receipt, nil
}
