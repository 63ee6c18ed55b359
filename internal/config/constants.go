package config

import "time"

// GasLimitContractCall is the EstimateGas fallback for state-changing loan
// calls when the node cannot simulate the transaction.
const GasLimitContractCall = uint64(200_000)

// Timeouts used by the CLI.
const (
	RPCSelectTimeout = 10 * time.Second // rpc.Best benchmark / RPC selection
	TxConfirmTimeout = 3 * time.Minute  // receipt wait after --send
	ReceiptPollEvery = 2 * time.Second
)

// LoanFetchConcurrency caps parallel loans(id) reads in "loan list".
const LoanFetchConcurrency = 8
