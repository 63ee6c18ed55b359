package cmd

import (
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/params"
)

// parseUint256 accepts decimal or 0x-prefixed hex.
func parseUint256(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	n, ok := math.ParseBig256(s)
	if s == "" || !ok || n.Sign() < 0 {
		return nil, fmt.Errorf("invalid uint256 %q", s)
	}
	return n, nil
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q", s)
	}
	return common.HexToAddress(s), nil
}

// parseEther converts a decimal ETH amount ("0.25") to wei. A "wei" suffix
// takes the amount as wei.
func parseEther(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if v, ok := strings.CutSuffix(s, "wei"); ok {
		return parseUint256(strings.TrimSpace(v))
	}
	r, ok := new(big.Rat).SetString(strings.TrimSpace(strings.TrimSuffix(s, "eth")))
	if !ok || r.Sign() < 0 {
		return nil, fmt.Errorf("invalid ETH amount %q", s)
	}
	r.Mul(r, new(big.Rat).SetInt64(params.Ether))
	if !r.IsInt() {
		return nil, fmt.Errorf("ETH amount %q has more than 18 decimals", s)
	}
	return r.Num(), nil
}

// parseSeconds accepts a whole number of seconds or a duration ("72h", "30m").
// A "d" suffix counts days.
func parseSeconds(s string) (*big.Int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty duration")
	}
	if n, ok := math.ParseBig256(s); ok {
		if n.Sign() < 0 {
			return nil, fmt.Errorf("negative duration %q", s)
		}
		return n, nil
	}
	if days, ok := strings.CutSuffix(s, "d"); ok {
		n, ok := math.ParseBig256(days)
		if days == "" || !ok || n.Sign() < 0 {
			return nil, fmt.Errorf("invalid duration %q", s)
		}
		return n.Mul(n, big.NewInt(int64(24*time.Hour/time.Second))), nil
	}
	d, err := time.ParseDuration(s)
	if err != nil || d < 0 {
		return nil, fmt.Errorf("invalid duration %q", s)
	}
	return big.NewInt(int64(d / time.Second)), nil
}

// parseBlock reads a block bound. "" and "latest" mean the chain head (nil).
func parseBlock(s string) (*big.Int, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "latest":
		return nil, nil
	case "earliest":
		return new(big.Int), nil
	}
	return parseUint256(s)
}
