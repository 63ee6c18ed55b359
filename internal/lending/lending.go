// Package lending binds the peer-to-peer NFT-collateralized loan contract.
//
// Every function maps one ABI entry to an sdk descriptor: reads call
// sdk.ReadContract, writes return an unsent *sdk.PreparedTransaction and
// events return an *sdk.PreparedEvent. Nothing here validates, retries or
// caches; errors from the sdk are returned unchanged.
package lending

import (
	"bytes"
	_ "embed"
	"math/big"

	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Deployment of the loan contract on Sepolia.
const (
	DeployedAddress = "0xbd312e3bddeb5e299126faaf610cf0c989e9c625"
	DeployedChainID = 11155111
)

//go:embed abi.json
var abiJSON []byte

// ABIJSON returns the contract ABI as JSON.
func ABIJSON() []byte {
	return bytes.Clone(abiJSON)
}

// ParseABI parses the embedded ABI.
func ParseABI() (abi.ABI, error) {
	return abi.JSON(bytes.NewReader(abiJSON))
}

// NewContract returns a handle for the loan contract at address. An empty
// address selects the Sepolia deployment.
func NewContract(address string, chainID *big.Int, client sdk.Backend) *sdk.Contract {
	if address == "" {
		address = DeployedAddress
	}
	if chainID == nil {
		chainID = big.NewInt(DeployedChainID)
	}
	return sdk.NewContract(common.HexToAddress(address), chainID, client)
}
