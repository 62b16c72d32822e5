package chain

import (
	"context"
	"crypto/ecdsa"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"
)

// Confirmation describes a mined, successful transaction.
type Confirmation struct {
	TxHash      string
	BlockNumber uint64
}

// TokenSubmitter signs and submits CommunalScoreToken transactions with the
// contract owner's key and awaits their confirmation.
type TokenSubmitter struct {
	client   *Client
	contract common.Address
	key      *ecdsa.PrivateKey
	owner    common.Address
	chainID  *big.Int
	abi      abi.ABI
	poll     time.Duration
	logger   *zap.Logger
}

// NewTokenSubmitter builds a submitter for the token contract at contractAddr,
// signing with the hex-encoded owner private key.
func NewTokenSubmitter(ctx context.Context, client *Client, contractAddr, ownerKeyHex string, pollInterval time.Duration, logger *zap.Logger) (*TokenSubmitter, error) {
	if !common.IsHexAddress(contractAddr) {
		return nil, fmt.Errorf("invalid contract address: %s", contractAddr)
	}
	key, err := crypto.HexToECDSA(strings.TrimPrefix(ownerKeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("parse owner key: %w", err)
	}
	chainID, err := client.GetChainID(ctx)
	if err != nil {
		return nil, fmt.Errorf("get chain id: %w", err)
	}
	parsed, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	if pollInterval <= 0 {
		pollInterval = 2 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &TokenSubmitter{
		client:   client,
		contract: common.HexToAddress(contractAddr),
		key:      key,
		owner:    crypto.PubkeyToAddress(key.PublicKey),
		chainID:  chainID,
		abi:      parsed,
		poll:     pollInterval,
		logger:   logger,
	}, nil
}

// Owner returns the signing account derived from the owner key.
func (s *TokenSubmitter) Owner() common.Address {
	return s.owner
}

// SubmitRedeem submits redeem(to, amount, reason) and returns the transaction
// hash. The call is asynchronous; use AwaitConfirmation to learn its outcome.
func (s *TokenSubmitter) SubmitRedeem(ctx context.Context, to string, amount *big.Int, reason string) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}
	return s.submit(ctx, "redeem", common.HexToAddress(to), amount, reason)
}

// SubmitMint submits mint(to, amount, reason) and returns the transaction hash.
func (s *TokenSubmitter) SubmitMint(ctx context.Context, to string, amount *big.Int, reason string) (string, error) {
	if !common.IsHexAddress(to) {
		return "", fmt.Errorf("invalid recipient address: %s", to)
	}
	return s.submit(ctx, "mint", common.HexToAddress(to), amount, reason)
}

func (s *TokenSubmitter) submit(ctx context.Context, method string, args ...interface{}) (string, error) {
	data, err := s.abi.Pack(method, args...)
	if err != nil {
		return "", fmt.Errorf("pack %s: %w", method, err)
	}

	nonce, err := s.client.PendingNonceAt(ctx, s.owner)
	if err != nil {
		return "", &NetworkError{Op: method, Err: fmt.Errorf("pending nonce: %w", err)}
	}
	gasPrice, err := s.client.SuggestGasPrice(ctx)
	if err != nil {
		return "", &NetworkError{Op: method, Err: fmt.Errorf("suggest gas price: %w", err)}
	}
	gas, err := s.client.EstimateGas(ctx, ethereum.CallMsg{
		From: s.owner,
		To:   &s.contract,
		Data: data,
	})
	if err != nil {
		// Estimation executes the call, so owner-balance and zero-address
		// failures usually surface here rather than on-chain.
		return "", &NetworkError{Op: method, Err: fmt.Errorf("estimate gas: %w", err)}
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		GasPrice: gasPrice,
		Gas:      gas,
		To:       &s.contract,
		Data:     data,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(s.chainID), s.key)
	if err != nil {
		return "", fmt.Errorf("sign %s: %w", method, err)
	}
	if err := s.client.SendTransaction(ctx, signed); err != nil {
		return "", &NetworkError{Op: method, Err: err}
	}

	txHash := signed.Hash().Hex()
	s.logger.Info("transaction submitted",
		zap.String("method", method),
		zap.String("tx_hash", txHash),
		zap.Uint64("nonce", nonce),
	)
	return txHash, nil
}

// AwaitConfirmation polls for the transaction receipt until the transaction is
// mined or ctx is cancelled. No local timeout is imposed. Returns a
// RevertError when execution reverted.
func (s *TokenSubmitter) AwaitConfirmation(ctx context.Context, txHash string) (Confirmation, error) {
	hash := common.HexToHash(txHash)

	ticker := time.NewTicker(s.poll)
	defer ticker.Stop()

	for {
		receipt, err := s.client.TransactionReceipt(ctx, hash)
		switch {
		case err == nil:
			if receipt.Status == types.ReceiptStatusSuccessful {
				s.logger.Info("transaction confirmed",
					zap.String("tx_hash", txHash),
					zap.Uint64("block", receipt.BlockNumber.Uint64()),
				)
				return Confirmation{TxHash: txHash, BlockNumber: receipt.BlockNumber.Uint64()}, nil
			}
			return Confirmation{}, &RevertError{
				TxHash: txHash,
				Reason: s.revertReason(ctx, hash, receipt),
			}
		case errors.Is(err, ethereum.NotFound):
			// Still pending.
		default:
			s.logger.Warn("receipt fetch failed", zap.Error(err), zap.String("tx_hash", txHash))
		}

		select {
		case <-ctx.Done():
			return Confirmation{}, ctx.Err()
		case <-ticker.C:
		}
	}
}

// revertReason replays the transaction as an eth_call at its inclusion block
// to recover the revert message. Best effort; returns "" when unavailable.
func (s *TokenSubmitter) revertReason(ctx context.Context, hash common.Hash, receipt *types.Receipt) string {
	tx, _, err := s.client.TransactionByHash(ctx, hash)
	if err != nil || tx == nil {
		return ""
	}
	msg := ethereum.CallMsg{
		From:     s.owner,
		To:       tx.To(),
		Gas:      tx.Gas(),
		GasPrice: tx.GasPrice(),
		Value:    tx.Value(),
		Data:     tx.Data(),
	}
	if _, err := s.client.CallContract(ctx, msg, receipt.BlockNumber); err != nil {
		return err.Error()
	}
	return ""
}
