package types

import (
	"math/big"
	"time"
)

const (
	// FeeDecimals is the fixed-point scale of a target base fee (gwei -> wei).
	FeeDecimals = 9
	// StableDecimals is the fixed-point scale of stable-token amounts.
	StableDecimals = 6
)

// ChainMarket is the client's read-only copy of an on-chain market, optionally
// augmented with the connected address's position.
type ChainMarket struct {
	ID            uint64    `json:"id"`
	TargetBaseFee *big.Int  `json:"targetBaseFee"` // wei, 9 decimals
	Expiry        time.Time `json:"expiry"`
	TotalLong     *big.Int  `json:"totalLong"`  // 6 decimals
	TotalShort    *big.Int  `json:"totalShort"` // 6 decimals
	Resolved      bool      `json:"resolved"`
	Outcome       bool      `json:"outcome"`
	UserLong      *big.Int  `json:"userLong"`
	UserShort     *big.Int  `json:"userShort"`
}

// Expired reports whether the market's expiry is at or before now.
func (m *ChainMarket) Expired(now time.Time) bool {
	return !m.Expiry.After(now)
}

// PendingTransaction tracks a submitted write until its side effect is applied.
type PendingTransaction struct {
	Hash       string `json:"hash"`
	Method     string `json:"method"`
	Confirming bool   `json:"confirming"`
	Success    bool   `json:"success"`
}

// TxStatus is the journal status of a transaction.
type TxStatus string

const (
	TxStatusSubmitted TxStatus = "submitted"
	TxStatusConfirmed TxStatus = "confirmed"
	TxStatusFailed    TxStatus = "failed"
)

// TxRecord is a journal entry for a contract write.
type TxRecord struct {
	ID          string     `json:"id"`
	Hash        string     `json:"hash"`
	Method      string     `json:"method"`
	Args        string     `json:"args"`
	From        string     `json:"from"`
	Status      TxStatus   `json:"status"`
	GasUsed     uint64     `json:"gasUsed"`
	SubmittedAt time.Time  `json:"submittedAt"`
	ConfirmedAt *time.Time `json:"confirmedAt,omitempty"`
}
