package chain

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Token reads CommunalScoreToken state via eth_call.
type Token struct {
	client  *Client
	address common.Address
	abi     abi.ABI
}

// TokenInfo is the token's deployment metadata.
type TokenInfo struct {
	Name        string
	Symbol      string
	Decimals    uint8
	TotalSupply *big.Int
	Owner       common.Address
}

// NewToken builds a reader for the token contract at address.
func NewToken(client *Client, address string) (*Token, error) {
	if !common.IsHexAddress(address) {
		return nil, fmt.Errorf("invalid contract address: %s", address)
	}
	parsed, err := TokenABI()
	if err != nil {
		return nil, fmt.Errorf("parse token abi: %w", err)
	}
	return &Token{
		client:  client,
		address: common.HexToAddress(address),
		abi:     parsed,
	}, nil
}

// Info reads name, symbol, decimals, total supply, and owner.
func (t *Token) Info(ctx context.Context) (TokenInfo, error) {
	var info TokenInfo
	if err := t.call(ctx, "name", nil, &info.Name); err != nil {
		return TokenInfo{}, err
	}
	if err := t.call(ctx, "symbol", nil, &info.Symbol); err != nil {
		return TokenInfo{}, err
	}
	if err := t.call(ctx, "decimals", nil, &info.Decimals); err != nil {
		return TokenInfo{}, err
	}
	if err := t.call(ctx, "totalSupply", nil, &info.TotalSupply); err != nil {
		return TokenInfo{}, err
	}
	if err := t.call(ctx, "owner", nil, &info.Owner); err != nil {
		return TokenInfo{}, err
	}
	return info, nil
}

// BalanceOf reads the token balance of an account.
func (t *Token) BalanceOf(ctx context.Context, account string) (*big.Int, error) {
	if !common.IsHexAddress(account) {
		return nil, fmt.Errorf("invalid account address: %s", account)
	}
	var balance *big.Int
	if err := t.call(ctx, "balanceOf", []interface{}{common.HexToAddress(account)}, &balance); err != nil {
		return nil, err
	}
	return balance, nil
}

func (t *Token) call(ctx context.Context, method string, args []interface{}, out interface{}) error {
	data, err := t.abi.Pack(method, args...)
	if err != nil {
		return fmt.Errorf("pack %s: %w", method, err)
	}
	result, err := t.client.CallContract(ctx, ethereum.CallMsg{To: &t.address, Data: data}, nil)
	if err != nil {
		return fmt.Errorf("call %s: %w", method, err)
	}
	if err := t.abi.UnpackIntoInterface(out, method, result); err != nil {
		return fmt.Errorf("unpack %s: %w", method, err)
	}
	return nil
}
