// Package sample bundles a recorded NIFTY option-chain payload so the
// service can run without hitting NSE (development, tests, demos).
package sample

import (
	_ "embed"
	"encoding/json"
)

//go:embed nifty_option_chain.json
var niftyOptionChain []byte

// Store serves bundled sample payloads.
type Store struct{}

// NewStore creates a sample payload store.
func NewStore() *Store {
	return &Store{}
}

// OptionChain returns the recorded NIFTY option-chain payload, in the same
// shape a live fetch would produce.
func (s *Store) OptionChain() json.RawMessage {
	return json.RawMessage(niftyOptionChain)
}
