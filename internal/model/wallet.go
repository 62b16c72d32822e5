package model

import "time"

// WalletBinding associates an application user with a blockchain wallet
// address. Overwritten whenever the user connects a wallet.
type WalletBinding struct {
	UserID        string    `json:"user_id"`
	Email         string    `json:"email"`
	WalletAddress string    `json:"wallet_address"`
	UpdatedAt     time.Time `json:"updated_at"`
}
