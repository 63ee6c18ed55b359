package lending

import (
	"bytes"
	"errors"
	"fmt"

	"github.com/Mohsinsiddi/nftlend/internal/sdk"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

// VerifyABI checks every bound method and event against its own canonical
// signature and against the embedded ABI: selectors, parameter types and
// event indexing must all agree. It returns every mismatch found.
func VerifyABI() error {
	parsed, err := ParseABI()
	if err != nil {
		return fmt.Errorf("parsing embedded ABI: %w", err)
	}

	var errs []error
	for _, m := range Methods() {
		errs = append(errs, verifyMethod(parsed, m)...)
	}
	for _, sig := range EventSignatures() {
		errs = append(errs, verifyEvent(parsed, sig)...)
	}
	if n := len(parsed.Methods) + len(parsed.Events); n != len(Methods())+len(EventSignatures()) {
		errs = append(errs, fmt.Errorf("ABI has %d entries, %d are bound", n, len(Methods())+len(EventSignatures())))
	}
	return errors.Join(errs...)
}

func verifyMethod(parsed abi.ABI, m sdk.Method) []error {
	var errs []error
	if err := sdk.Verify(m); err != nil {
		errs = append(errs, err)
	}

	def, ok := parsed.Methods[m.Name]
	if !ok {
		return append(errs, fmt.Errorf("method %s not in ABI", m.Name))
	}
	if id, err := hexutil.Decode(m.Selector); err != nil || !bytes.Equal(id, def.ID) {
		errs = append(errs, fmt.Errorf("%w: %s bound as %s, ABI has %s", sdk.ErrSelectorMismatch, m.Name, m.Selector, hexutil.Encode(def.ID)))
	}
	if got, want := typeList(m.Outputs), argTypes(def.Outputs); got != want {
		errs = append(errs, fmt.Errorf("method %s outputs (%s), ABI has (%s)", m.Name, got, want))
	}
	return errs
}

func verifyEvent(parsed abi.ABI, sig string) []error {
	ev, err := sdk.ParseEventSignature(sig)
	if err != nil {
		return []error{err}
	}
	def, ok := parsed.Events[ev.Name]
	if !ok {
		return []error{fmt.Errorf("event %s not in ABI", ev.Name)}
	}

	var errs []error
	if ev.ID != def.ID {
		errs = append(errs, fmt.Errorf("event %s topic %s, ABI has %s", ev.Name, ev.ID.Hex(), def.ID.Hex()))
	}
	if len(ev.Inputs) == len(def.Inputs) {
		for i := range ev.Inputs {
			if ev.Inputs[i].Indexed != def.Inputs[i].Indexed {
				errs = append(errs, fmt.Errorf("event %s param %s indexed=%t, ABI has %t",
					ev.Name, ev.Inputs[i].Name, ev.Inputs[i].Indexed, def.Inputs[i].Indexed))
			}
		}
	}
	return errs
}

func typeList(params []sdk.Param) string {
	var b bytes.Buffer
	for i, p := range params {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(p.Type)
	}
	return b.String()
}

func argTypes(args abi.Arguments) string {
	var b bytes.Buffer
	for i, a := range args {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(a.Type.String())
	}
	return b.String()
}
