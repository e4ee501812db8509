package bank

import (
	"encoding/json"
	"fmt"

	"exchangebank/internal/rounding"
	"exchangebank/internal/store"
)

type state struct {
	Store    store.Snapshot `json:"store"`
	Rounding string         `json:"rounding"`
}

// MarshalJSON serializes the bank as its store snapshot and rounding policy identifier.
// Stores that are not store.Snapshotter cannot be serialized.
func (b *Bank) MarshalJSON() ([]byte, error) {
	snap, err := store.Take(b.store)
	if err != nil {
		return nil, err
	}
	return json.Marshal(state{Store: snap, Rounding: b.rounding.Identifier()})
}

// Restore rebuilds a bank from MarshalJSON output. The rounding policy is looked up by name;
// a WithRounding option replaces it. Custom policies must be reattached that way, under the same name.
// Connections opened to rebuild the store belong to the returned bank; release them with Close.
func Restore(data []byte, opts ...Option) (*Bank, error) {
	var st state
	if err := json.Unmarshal(data, &st); err != nil {
		return nil, fmt.Errorf("decode bank state: %w", err)
	}

	s, err := store.Restore(st.Store)
	if err != nil {
		return nil, err
	}

	policy, lookupErr := rounding.Lookup(st.Rounding)
	all := make([]Option, 0, len(opts)+1)
	if lookupErr == nil {
		all = append(all, WithRounding(policy))
	}
	all = append(all, opts...)

	b, err := New(s, all...)
	if err != nil {
		_ = closeStore(s)
		return nil, err
	}
	if lookupErr != nil && b.rounding.Identifier() != st.Rounding {
		_ = closeStore(s)
		return nil, fmt.Errorf("restore rounding policy %q: %w", st.Rounding, lookupErr)
	}
	return b, nil
}
