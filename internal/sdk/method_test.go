package sdk

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var repayLoan = Method{
	Name:     "repayLoan",
	Selector: "0xab7b1c89",
	Inputs:   []Param{{Name: "loanId", Type: "uint256"}},
}

func TestSignatureAndSelector(t *testing.T) {
	tests := []struct {
		m        Method
		sig      string
		selector string
	}{
		{repayLoan, "repayLoan(uint256)", "0xab7b1c89"},
		{Method{Name: "owner"}, "owner()", "0x8da5cb5b"},
		{Method{Name: "renounceOwnership"}, "renounceOwnership()", "0x715018a6"},
		{Method{Name: "transferOwnership", Inputs: []Param{{Name: "newOwner", Type: "address"}}}, "transferOwnership(address)", "0xf2fde38b"},
	}
	for _, tt := range tests {
		t.Run(tt.sig, func(t *testing.T) {
			assert.Equal(t, tt.sig, tt.m.Signature())
			assert.Equal(t, tt.selector, tt.m.ComputeSelector())
		})
	}
}

func TestVerify(t *testing.T) {
	assert.NoError(t, Verify(repayLoan))

	upper := repayLoan
	upper.Selector = "0xAB7B1C89"
	assert.NoError(t, Verify(upper))

	wrong := repayLoan
	wrong.Selector = "0xdeadbeef"
	err := Verify(wrong)
	require.ErrorIs(t, err, ErrSelectorMismatch)
	assert.Contains(t, err.Error(), "repayLoan(uint256)")
}

func TestEncode(t *testing.T) {
	data, err := repayLoan.Encode(big.NewInt(7))
	require.NoError(t, err)
	require.Len(t, data, 4+32)
	assert.Equal(t, "0xab7b1c89", "0x"+common.Bytes2Hex(data[:4]))
	assert.Equal(t, big.NewInt(7), new(big.Int).SetBytes(data[4:]))
}

func TestEncodeKeepsParamOrder(t *testing.T) {
	m := Method{
		Name:     "pair",
		Selector: "0x00000000",
		Inputs:   []Param{{Name: "who", Type: "address"}, {Name: "amount", Type: "uint256"}},
	}
	who := common.HexToAddress("0x00000000000000000000000000000000000000aa")
	data, err := m.Encode(who, big.NewInt(5))
	require.NoError(t, err)
	require.Len(t, data, 4+64)
	assert.Equal(t, common.LeftPadBytes(who.Bytes(), 32), data[4:36])
	assert.Equal(t, common.LeftPadBytes([]byte{5}, 32), data[36:68])
}

func TestEncodeErrors(t *testing.T) {
	_, err := repayLoan.Encode("not a number")
	assert.Error(t, err)

	_, err = repayLoan.Encode()
	assert.Error(t, err)

	short := repayLoan
	short.Selector = "0xab7b"
	_, err = short.Encode(big.NewInt(1))
	assert.ErrorContains(t, err, "want 4 bytes")

	badType := Method{Name: "x", Selector: "0x00000000", Inputs: []Param{{Name: "v", Type: "uint7"}}}
	_, err = badType.Encode(big.NewInt(1))
	assert.ErrorContains(t, err, `param "v"`)
}

func TestEncodeRejectsNilParams(t *testing.T) {
	var unset *big.Int
	_, err := repayLoan.Encode(unset)
	require.ErrorIs(t, err, ErrNilParam)
	assert.ErrorContains(t, err, `repayLoan param "loanId"`)

	_, err = repayLoan.Encode(nil)
	assert.ErrorIs(t, err, ErrNilParam)

	pair := Method{
		Name:     "pair",
		Selector: "0x00000000",
		Inputs:   []Param{{Name: "who", Type: "address"}, {Name: "amount", Type: "uint256"}},
	}
	_, err = pair.Encode(common.Address{}, unset)
	require.ErrorIs(t, err, ErrNilParam)
	assert.ErrorContains(t, err, `"amount"`)
}

func TestMethodDecode(t *testing.T) {
	m := Method{
		Name: "pair",
		Outputs: []Param{
			{Name: "", Type: "address"},
			{Name: "", Type: "bool"},
		},
	}
	args, err := Arguments(m.Outputs)
	require.NoError(t, err)
	who := common.HexToAddress("0x00000000000000000000000000000000000000bb")
	packed, err := args.Pack(who, true)
	require.NoError(t, err)

	out, err := m.Decode(packed)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, who, out[0])
	assert.Equal(t, true, out[1])
}
