package sdk

import (
	"encoding/hex"
	"fmt"
	"reflect"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"golang.org/x/crypto/sha3"
)

// Param is one ABI parameter.
type Param struct {
	Name         string `json:"name"`
	Type         string `json:"type"`                   // canonical ABI type, e.g. "address"
	InternalType string `json:"internalType,omitempty"` // solidity type, e.g. "contract IERC721"
	Indexed      bool   `json:"indexed,omitempty"`      // events only
}

// Method describes one contract function: its selector and the ordered input
// and output parameters.
type Method struct {
	Name     string
	Selector string // 0x-prefixed, 4 bytes
	Inputs   []Param
	Outputs  []Param
}

// Signature returns the canonical signature, e.g. "repayLoan(uint256)".
func (m Method) Signature() string {
	types := make([]string, len(m.Inputs))
	for i, p := range m.Inputs {
		types[i] = p.Type
	}
	return m.Name + "(" + strings.Join(types, ",") + ")"
}

// ComputeSelector hashes the canonical signature and returns its first 4 bytes.
func (m Method) ComputeSelector() string {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(m.Signature()))
	return "0x" + hex.EncodeToString(h.Sum(nil)[:4])
}

// Verify checks the declared selector against the computed one.
func Verify(m Method) error {
	if got := m.ComputeSelector(); !strings.EqualFold(got, m.Selector) {
		return fmt.Errorf("%w: %s declares %s, computed %s", ErrSelectorMismatch, m.Signature(), m.Selector, got)
	}
	return nil
}

// Encode packs the selector followed by the ABI-encoded params.
func (m Method) Encode(params ...any) ([]byte, error) {
	id, err := hexutil.Decode(m.Selector)
	if err != nil {
		return nil, fmt.Errorf("selector %q: %w", m.Selector, err)
	}
	if len(id) != 4 {
		return nil, fmt.Errorf("selector %q: want 4 bytes, got %d", m.Selector, len(id))
	}
	inputs, err := Arguments(m.Inputs)
	if err != nil {
		return nil, err
	}
	for i, p := range params {
		if i < len(m.Inputs) && isNil(p) {
			return nil, fmt.Errorf("%w: %s param %q", ErrNilParam, m.Name, m.Inputs[i].Name)
		}
	}
	packed, err := inputs.Pack(params...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", m.Name, err)
	}
	return append(id, packed...), nil
}

// isNil reports nil interfaces and typed nil pointers, which abi packing
// cannot handle.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Ptr && rv.IsNil()
}

// Decode unpacks return data into one value per output, in declared order.
func (m Method) Decode(data []byte) ([]any, error) {
	outputs, err := Arguments(m.Outputs)
	if err != nil {
		return nil, err
	}
	return outputs.Unpack(data)
}

// Arguments converts parameter specs into go-ethereum ABI arguments.
func Arguments(params []Param) (abi.Arguments, error) {
	args := make(abi.Arguments, 0, len(params))
	for _, p := range params {
		typ, err := abi.NewType(p.Type, p.InternalType, nil)
		if err != nil {
			return nil, fmt.Errorf("param %q: %w", p.Name, err)
		}
		args = append(args, abi.Argument{Name: p.Name, Type: typ, Indexed: p.Indexed})
	}
	return args, nil
}
