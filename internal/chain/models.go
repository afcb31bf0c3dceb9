// Package chain normalizes NSE payloads into flat snapshot records.
package chain

// Raw payload shapes, mirroring the provider's JSON.

type chainPayload struct {
	Records chainRecords `json:"records"`
}

type chainRecords struct {
	ExpiryDates     []string      `json:"expiryDates"`
	Data            []strikeEntry `json:"data"`
	Timestamp       string        `json:"timestamp"`
	UnderlyingValue float64       `json:"underlyingValue"`
}

type strikeEntry struct {
	StrikePrice float64    `json:"strikePrice"`
	CE          *sideQuote `json:"CE"`
	PE          *sideQuote `json:"PE"`
}

type sideQuote struct {
	OpenInterest         float64 `json:"openInterest"`
	ChangeInOpenInterest float64 `json:"changeinOpenInterest"`
	TotalTradedVolume    float64 `json:"totalTradedVolume"`
	LastPrice            float64 `json:"lastPrice"`
	Change               float64 `json:"change"`
}

type contractInfoPayload struct {
	ExpiryDates  []string  `json:"expiryDates"`
	StrikePrices []float64 `json:"strikePrice"`
}

// SideRecord holds the per-side statistics for one strike. Previous values
// are derived from the payload's change fields; absent sides come through as
// all zeros, which the classifier's zero fallbacks depend on.
type SideRecord struct {
	OpenInterest     float64
	OIChange         float64
	PrevOpenInterest float64
	Volume           float64
	LastPrice        float64
	PrevPrice        float64
}

// StrikeRecord is one strike with both option sides.
type StrikeRecord struct {
	Strike float64
	CE     SideRecord
	PE     SideRecord
}

// Snapshot is the flattened view of one option-chain response.
type Snapshot struct {
	Spot      float64
	Timestamp string
	Expiries  []string
	Strikes   []StrikeRecord
}
