package chain

import (
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// Contract method names.
const (
	MethodMarketCount   = "marketCount"
	MethodMarkets       = "markets"
	MethodLongBalances  = "longBalances"
	MethodShortBalances = "shortBalances"
	MethodCreateMarket  = "createMarket"
	MethodBetLong       = "betLong"
	MethodBetShort      = "betShort"
	MethodRedeem        = "redeem"
)

// GasFuturesABI is the JSON ABI of the gas futures market contract.
const GasFuturesABI = `[
	{
		"inputs": [],
		"name": "marketCount",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "uint256"}],
		"name": "markets",
		"outputs": [
			{"name": "targetBaseFee", "type": "uint256"},
			{"name": "expiry", "type": "uint256"},
			{"name": "totalLong", "type": "uint256"},
			{"name": "totalShort", "type": "uint256"},
			{"name": "resolved", "type": "bool"},
			{"name": "outcome", "type": "bool"}
		],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "uint256"}, {"name": "", "type": "address"}],
		"name": "longBalances",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [{"name": "", "type": "uint256"}, {"name": "", "type": "address"}],
		"name": "shortBalances",
		"outputs": [{"name": "", "type": "uint256"}],
		"stateMutability": "view",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "targetBaseFee", "type": "uint256"},
			{"name": "daysUntilExpiry", "type": "uint256"}
		],
		"name": "createMarket",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "marketId", "type": "uint256"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "betLong",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [
			{"name": "marketId", "type": "uint256"},
			{"name": "amount", "type": "uint256"}
		],
		"name": "betShort",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	},
	{
		"inputs": [{"name": "marketId", "type": "uint256"}],
		"name": "redeem",
		"outputs": [],
		"stateMutability": "nonpayable",
		"type": "function"
	}
]`

// ParseABI parses GasFuturesABI.
func ParseABI() (abi.ABI, error) {
	parsed, err := abi.JSON(strings.NewReader(GasFuturesABI))
	if err != nil {
		return abi.ABI{}, fmt.Errorf("parse ABI: %w", err)
	}
	return parsed, nil
}
