package chain

import (
	"encoding/json"
	"fmt"
	"sort"
)

// Normalize extracts the flat per-strike record list, expiry list and spot
// price from a raw option-chain payload. A payload without records.data
// yields an empty Strikes slice, not an error - callers treat an empty
// snapshot as an upstream failure.
func Normalize(raw json.RawMessage) (*Snapshot, error) {
	var payload chainPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("decode option chain payload: %w", err)
	}

	snap := &Snapshot{
		Spot:      payload.Records.UnderlyingValue,
		Timestamp: payload.Records.Timestamp,
		Expiries:  payload.Records.ExpiryDates,
		Strikes:   make([]StrikeRecord, 0, len(payload.Records.Data)),
	}

	for _, entry := range payload.Records.Data {
		snap.Strikes = append(snap.Strikes, StrikeRecord{
			Strike: entry.StrikePrice,
			CE:     normalizeSide(entry.CE),
			PE:     normalizeSide(entry.PE),
		})
	}

	return snap, nil
}

// normalizeSide derives previous OI and previous price from the change
// fields. A missing side is a zero record.
func normalizeSide(q *sideQuote) SideRecord {
	if q == nil {
		return SideRecord{}
	}
	return SideRecord{
		OpenInterest:     q.OpenInterest,
		OIChange:         q.ChangeInOpenInterest,
		PrevOpenInterest: q.OpenInterest - q.ChangeInOpenInterest,
		Volume:           q.TotalTradedVolume,
		LastPrice:        q.LastPrice,
		PrevPrice:        q.LastPrice - q.Change,
	}
}

// ContractInfo extracts expiry dates and the strike list from a
// contract-info payload. Both are taken verbatim.
func ContractInfo(raw json.RawMessage) (expiries []string, strikes []float64, err error) {
	var payload contractInfoPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, nil, fmt.Errorf("decode contract info payload: %w", err)
	}
	return payload.ExpiryDates, payload.StrikePrices, nil
}

// StrikeList returns the distinct strikes of the snapshot, sorted ascending.
// Zero strikes are skipped.
func (s *Snapshot) StrikeList() []float64 {
	seen := make(map[float64]struct{}, len(s.Strikes))
	strikes := make([]float64, 0, len(s.Strikes))
	for _, rec := range s.Strikes {
		if rec.Strike == 0 {
			continue
		}
		if _, ok := seen[rec.Strike]; ok {
			continue
		}
		seen[rec.Strike] = struct{}{}
		strikes = append(strikes, rec.Strike)
	}
	sort.Float64s(strikes)
	return strikes
}
