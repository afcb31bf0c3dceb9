package flow

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"oiflow/internal/chain"
	"oiflow/internal/sample"
)

// Upstream outcome errors. Handlers map both to a bad-gateway response.
var (
	// ErrNoChainData means the provider answered but the payload carried
	// no per-strike records. Treated exactly like an acquisition failure.
	ErrNoChainData = errors.New("no option chain data returned from NSE")

	// ErrProjectionUnavailable means no support/resistance pair could be
	// derived from the labeled rows.
	ErrProjectionUnavailable = errors.New("unable to derive target projection from option chain")
)

// Fetcher is the acquisition surface the service needs from the NSE client.
type Fetcher interface {
	OptionChain(ctx context.Context, symbol, expiry, instrumentType string) (json.RawMessage, error)
	IndexData(ctx context.Context) (json.RawMessage, error)
	ContractInfo(ctx context.Context, symbol string) (json.RawMessage, error)
}

// Service wires acquisition, normalization, classification and projection
// into the operations the API surface exposes.
type Service struct {
	fetcher Fetcher
	samples *sample.Store
	log     zerolog.Logger
}

// NewService creates a flow service.
func NewService(fetcher Fetcher, samples *sample.Store, log zerolog.Logger) *Service {
	return &Service{
		fetcher: fetcher,
		samples: samples,
		log:     log.With().Str("service", "flow").Logger(),
	}
}

// Query identifies one option-chain request.
type Query struct {
	Symbol         string
	Expiry         string
	InstrumentType string
	UseSample      bool
}

func (q Query) withDefaults() Query {
	if q.Symbol == "" {
		q.Symbol = "NIFTY"
	}
	if q.InstrumentType == "" {
		q.InstrumentType = "Indices"
	}
	return q
}

// Meta describes the snapshot a result was computed from.
type Meta struct {
	Symbol         string  `json:"symbol"`
	InstrumentType string  `json:"instrument_type"`
	Expiry         string  `json:"expiry,omitempty"`
	Spot           float64 `json:"spot,omitempty"`
	Timestamp      string  `json:"timestamp,omitempty"`
}

// ExpiriesResult lists available expiry dates and strikes for a symbol.
type ExpiriesResult struct {
	Symbol         string    `json:"symbol"`
	InstrumentType string    `json:"instrument_type"`
	Expiries       []string  `json:"expiries"`
	Strikes        []float64 `json:"strikes"`
}

// SummaryResult is the full classified chain with its projection.
type SummaryResult struct {
	Meta             Meta        `json:"meta"`
	TargetProjection *Projection `json:"target_projection"`
	Rows             []Row       `json:"rows"`
}

// ProjectionResult is the projection endpoint's response.
type ProjectionResult struct {
	Meta       Meta        `json:"meta"`
	Projection *Projection `json:"projection"`
}

// DirectionSignals groups the three per-side directions.
type DirectionSignals struct {
	PriceDirection  Direction `json:"priceDirection"`
	OIDirection     Direction `json:"oiDirection"`
	VolumeDirection Direction `json:"volumeDirection"`
}

// Interpretation is one (strike, side) entry of the flattened rule-engine
// output.
type Interpretation struct {
	StrikePrice float64          `json:"strikePrice"`
	OptionType  OptionSide       `json:"optionType"`
	Signals     DirectionSignals `json:"signals"`
	Label       string           `json:"interpretationLabel"`
	Description string           `json:"interpretationDescription"`
	Confidence  int              `json:"confidenceScore"`
	OIChangePct float64          `json:"oiChangePct"`
	VolumeRatio float64          `json:"volumeRatio"`
	Strength    float64          `json:"strengthScore"`
	ContextTag  string           `json:"contextTag,omitempty"`
	Tag         string           `json:"tag"`
}

// InterpretationsResult flattens rows to one entry per strike and side.
type InterpretationsResult struct {
	Meta            Meta             `json:"meta"`
	Interpretations []Interpretation `json:"interpretations"`
}

// HealthResult reports provider reachability.
type HealthResult struct {
	OK        bool    `json:"ok"`
	Timestamp string  `json:"timestamp"`
	Spot      float64 `json:"spot"`
}

// IndexDataResult carries live index rows, passed through provider-shaped.
type IndexDataResult struct {
	Data []map[string]interface{} `json:"data"`
}

// Expiries returns available expiry dates and strikes for a symbol. Live
// requests use the contract-info endpoint; sample mode derives both from the
// bundled chain payload.
func (s *Service) Expiries(ctx context.Context, q Query) (*ExpiriesResult, error) {
	q = q.withDefaults()

	result := &ExpiriesResult{Symbol: q.Symbol, InstrumentType: q.InstrumentType}

	if q.UseSample {
		snap, err := chain.Normalize(s.samples.OptionChain())
		if err != nil {
			return nil, err
		}
		result.Expiries = snap.Expiries
		result.Strikes = snap.StrikeList()
		return result, nil
	}

	raw, err := s.fetcher.ContractInfo(ctx, q.Symbol)
	if err != nil {
		return nil, err
	}
	expiries, strikes, err := chain.ContractInfo(raw)
	if err != nil {
		return nil, err
	}
	result.Expiries = expiries
	result.Strikes = strikes
	return result, nil
}

// Summary returns the classified chain for a symbol/expiry plus the derived
// target projection. An empty chain is an upstream failure: the result is
// all rows or none.
func (s *Service) Summary(ctx context.Context, q Query) (*SummaryResult, error) {
	q = q.withDefaults()

	snap, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := ClassifySnapshot(snap)
	projection, _ := BuildTargetProjection(rows, snap.Spot)

	return &SummaryResult{
		Meta:             s.meta(q, snap),
		TargetProjection: projection,
		Rows:             rows,
	}, nil
}

// TargetProjection returns just the support/resistance band. Unlike Summary,
// an underivable projection is a failure here.
func (s *Service) TargetProjection(ctx context.Context, q Query) (*ProjectionResult, error) {
	q = q.withDefaults()

	snap, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := ClassifySnapshot(snap)
	projection, ok := BuildTargetProjection(rows, snap.Spot)
	if !ok {
		return nil, ErrProjectionUnavailable
	}

	return &ProjectionResult{Meta: s.meta(q, snap), Projection: projection}, nil
}

// Interpretations returns the rule-engine output flattened to one entry per
// (strike, side).
func (s *Service) Interpretations(ctx context.Context, q Query) (*InterpretationsResult, error) {
	q = q.withDefaults()

	snap, err := s.snapshot(ctx, q)
	if err != nil {
		return nil, err
	}

	rows := ClassifySnapshot(snap)
	interpretations := make([]Interpretation, 0, 2*len(rows))
	for _, row := range rows {
		interpretations = append(interpretations,
			flatten(row.Strike, SideCall, row.CE.SideSignal),
			flatten(row.Strike, SidePut, row.PE.SideSignal),
		)
	}

	return &InterpretationsResult{Meta: s.meta(q, snap), Interpretations: interpretations}, nil
}

// Health checks provider reachability with a plain NIFTY chain fetch.
func (s *Service) Health(ctx context.Context) (*HealthResult, error) {
	raw, err := s.fetcher.OptionChain(ctx, "NIFTY", "", "Indices")
	if err != nil {
		return nil, err
	}
	snap, err := chain.Normalize(raw)
	if err != nil {
		return nil, err
	}
	return &HealthResult{OK: true, Timestamp: snap.Timestamp, Spot: snap.Spot}, nil
}

// IndexData returns live index rows, optionally filtered by a
// comma-separated list of index names (case-insensitive).
func (s *Service) IndexData(ctx context.Context, names string) (*IndexDataResult, error) {
	raw, err := s.fetcher.IndexData(ctx)
	if err != nil {
		return nil, err
	}

	var payload struct {
		Data []map[string]interface{} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode index data payload: %w", err)
	}

	if strings.TrimSpace(names) == "" {
		return &IndexDataResult{Data: payload.Data}, nil
	}

	requested := make(map[string]struct{})
	for _, name := range strings.Split(names, ",") {
		if name = strings.TrimSpace(name); name != "" {
			requested[strings.ToUpper(name)] = struct{}{}
		}
	}

	filtered := make([]map[string]interface{}, 0, len(payload.Data))
	for _, row := range payload.Data {
		indexName, _ := row["indexName"].(string)
		if _, ok := requested[strings.ToUpper(indexName)]; ok {
			filtered = append(filtered, row)
		}
	}
	return &IndexDataResult{Data: filtered}, nil
}

// snapshot acquires and normalizes a chain, enforcing the all-rows-or-none
// contract.
func (s *Service) snapshot(ctx context.Context, q Query) (*chain.Snapshot, error) {
	var raw json.RawMessage
	if q.UseSample {
		raw = s.samples.OptionChain()
	} else {
		var err error
		raw, err = s.fetcher.OptionChain(ctx, q.Symbol, q.Expiry, q.InstrumentType)
		if err != nil {
			return nil, err
		}
	}

	snap, err := chain.Normalize(raw)
	if err != nil {
		return nil, err
	}
	if len(snap.Strikes) == 0 {
		return nil, ErrNoChainData
	}
	return snap, nil
}

// meta reports the effective expiry: the requested one, or the snapshot's
// first expiry when none was requested.
func (s *Service) meta(q Query, snap *chain.Snapshot) Meta {
	expiry := q.Expiry
	if expiry == "" && len(snap.Expiries) > 0 {
		expiry = snap.Expiries[0]
	}
	return Meta{
		Symbol:         q.Symbol,
		InstrumentType: q.InstrumentType,
		Expiry:         expiry,
		Spot:           snap.Spot,
		Timestamp:      snap.Timestamp,
	}
}

func flatten(strike float64, side OptionSide, sig SideSignal) Interpretation {
	return Interpretation{
		StrikePrice: strike,
		OptionType:  side,
		Signals: DirectionSignals{
			PriceDirection:  sig.PriceDirection,
			OIDirection:     sig.OIDirection,
			VolumeDirection: sig.VolumeDirection,
		},
		Label:       sig.Label,
		Description: sig.Description,
		Confidence:  sig.Confidence,
		OIChangePct: sig.OIChangePct,
		VolumeRatio: sig.VolumeRatio,
		Strength:    sig.Strength,
		ContextTag:  sig.ContextTag,
		Tag:         sig.Tag,
	}
}
