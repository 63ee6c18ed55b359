package sdk

import (
	"context"
	"fmt"
	"math/big"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"
)

// EventOptions describes an event to prepare.
type EventOptions struct {
	// Signature is human-readable, e.g.
	// "event OwnershipTransferred(address indexed previousOwner, address indexed newOwner)".
	Signature string
	// Filters restricts indexed parameters by name. Nil matches every event.
	// A value may be a single value or a []any of alternatives.
	Filters map[string]any
}

// PreparedEvent pairs a parsed event with its indexed-argument filters.
type PreparedEvent struct {
	Signature string
	Event     abi.Event
	Filters   map[string]any
}

// DecodedEvent is one log decoded against a PreparedEvent.
type DecodedEvent struct {
	Name        string
	Address     common.Address
	BlockNumber uint64
	TxHash      common.Hash
	LogIndex    uint
	Args        map[string]any
}

// PrepareEvent parses the signature and checks that every filter key names
// an indexed parameter.
func PrepareEvent(opts EventOptions) (*PreparedEvent, error) {
	ev, err := ParseEventSignature(opts.Signature)
	if err != nil {
		return nil, err
	}
	for key := range opts.Filters {
		arg, ok := findArg(ev.Inputs, key)
		if !ok {
			return nil, fmt.Errorf("%w %q for event %s", ErrUnknownFilter, key, ev.Name)
		}
		if !arg.Indexed {
			return nil, fmt.Errorf("%w: %s.%s", ErrNotIndexed, ev.Name, key)
		}
	}
	return &PreparedEvent{Signature: opts.Signature, Event: ev, Filters: opts.Filters}, nil
}

// ParseEventSignature parses "event Name(type [indexed] name, ...)". The
// leading "event" keyword and parameter names are optional. Tuple parameters
// are not supported.
func ParseEventSignature(sig string) (abi.Event, error) {
	s := strings.TrimSpace(sig)
	s = strings.TrimSpace(strings.TrimPrefix(s, "event "))

	anonymous := false
	if strings.HasSuffix(s, " anonymous") {
		anonymous = true
		s = strings.TrimSpace(strings.TrimSuffix(s, " anonymous"))
	}

	open := strings.IndexByte(s, '(')
	if open <= 0 || !strings.HasSuffix(s, ")") {
		return abi.Event{}, fmt.Errorf("%w: %q", ErrInvalidSignature, sig)
	}
	name := strings.TrimSpace(s[:open])
	body := strings.TrimSpace(s[open+1 : len(s)-1])

	var inputs abi.Arguments
	if body != "" {
		for _, part := range strings.Split(body, ",") {
			arg, err := parseEventParam(part)
			if err != nil {
				return abi.Event{}, fmt.Errorf("%w: %q: %v", ErrInvalidSignature, sig, err)
			}
			inputs = append(inputs, arg)
		}
	}
	return abi.NewEvent(name, name, anonymous, inputs), nil
}

func parseEventParam(part string) (abi.Argument, error) {
	fields := strings.Fields(part)
	if len(fields) == 0 {
		return abi.Argument{}, fmt.Errorf("empty parameter")
	}
	if strings.HasPrefix(fields[0], "(") || strings.HasPrefix(fields[0], "tuple") {
		return abi.Argument{}, fmt.Errorf("tuple parameters are not supported")
	}

	arg := abi.Argument{}
	rest := fields[1:]
	if len(rest) > 0 && rest[0] == "indexed" {
		arg.Indexed = true
		rest = rest[1:]
	}
	switch len(rest) {
	case 0:
	case 1:
		arg.Name = rest[0]
	default:
		return abi.Argument{}, fmt.Errorf("unexpected tokens %v", rest)
	}

	typ, err := abi.NewType(fields[0], "", nil)
	if err != nil {
		return abi.Argument{}, err
	}
	arg.Type = typ
	return arg, nil
}

// Topics returns the log topic filter: the event ID followed by one rule per
// indexed parameter. Unfiltered trailing parameters are omitted.
func (e *PreparedEvent) Topics() ([][]common.Hash, error) {
	var rules [][]any
	for _, in := range e.Event.Inputs {
		if !in.Indexed {
			continue
		}
		v, ok := e.Filters[in.Name]
		switch {
		case !ok:
			rules = append(rules, nil)
		case isAlternatives(v):
			rules = append(rules, v.([]any))
		default:
			rules = append(rules, []any{v})
		}
	}
	for len(rules) > 0 && rules[len(rules)-1] == nil {
		rules = rules[:len(rules)-1]
	}

	topics, err := abi.MakeTopics(rules...)
	if err != nil {
		return nil, fmt.Errorf("%s filters: %w", e.Event.Name, err)
	}
	return append([][]common.Hash{{e.Event.ID}}, topics...), nil
}

// Decode decodes a log emitted by this event. Indexed arguments come from the
// topics and the rest from the data.
func (e *PreparedEvent) Decode(log types.Log) (DecodedEvent, error) {
	if len(log.Topics) == 0 || log.Topics[0] != e.Event.ID {
		return DecodedEvent{}, fmt.Errorf("%w %s", ErrEventMismatch, e.Event.Name)
	}

	args := make(map[string]any, len(e.Event.Inputs))
	if err := e.Event.Inputs.NonIndexed().UnpackIntoMap(args, log.Data); err != nil {
		return DecodedEvent{}, fmt.Errorf("decoding %s data: %w", e.Event.Name, err)
	}
	var indexed abi.Arguments
	for _, in := range e.Event.Inputs {
		if in.Indexed {
			indexed = append(indexed, in)
		}
	}
	if err := abi.ParseTopicsIntoMap(args, indexed, log.Topics[1:]); err != nil {
		return DecodedEvent{}, fmt.Errorf("decoding %s topics: %w", e.Event.Name, err)
	}

	return DecodedEvent{
		Name:        e.Event.Name,
		Address:     log.Address,
		BlockNumber: log.BlockNumber,
		TxHash:      log.TxHash,
		LogIndex:    log.Index,
		Args:        args,
	}, nil
}

// EventsQuery selects logs of the given events emitted by one contract.
type EventsQuery struct {
	Contract  *Contract
	Events    []*PreparedEvent
	FromBlock *big.Int // nil = earliest the node allows
	ToBlock   *big.Int // nil = latest
}

// GetContractEvents runs one log query per event and returns the decoded
// events ordered by block and log index. Removed (reorged) logs are skipped.
func GetContractEvents(ctx context.Context, q EventsQuery) ([]DecodedEvent, error) {
	if len(q.Events) == 0 {
		return nil, ErrNoEvents
	}

	var out []DecodedEvent
	for _, ev := range q.Events {
		topics, err := ev.Topics()
		if err != nil {
			return nil, err
		}
		logs, err := q.Contract.Client.FilterLogs(ctx, ethereum.FilterQuery{
			FromBlock: q.FromBlock,
			ToBlock:   q.ToBlock,
			Addresses: []common.Address{q.Contract.Address},
			Topics:    topics,
		})
		if err != nil {
			return nil, err
		}
		logger().Debug("fetched logs",
			zap.String("event", ev.Event.Name),
			zap.Int("count", len(logs)))

		for _, l := range logs {
			if l.Removed {
				continue
			}
			d, err := ev.Decode(l)
			if err != nil {
				return nil, err
			}
			out = append(out, d)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].BlockNumber != out[j].BlockNumber {
			return out[i].BlockNumber < out[j].BlockNumber
		}
		return out[i].LogIndex < out[j].LogIndex
	})
	return out, nil
}

func findArg(args abi.Arguments, name string) (abi.Argument, bool) {
	for _, a := range args {
		if a.Name == name {
			return a, true
		}
	}
	return abi.Argument{}, false
}

func isAlternatives(v any) bool {
	_, ok := v.([]any)
	return ok
}
