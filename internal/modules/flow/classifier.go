// Package flow turns normalized option-chain snapshots into directional
// signals, build-up interpretations and a price-target projection.
//
// Classification is pure and deterministic: the only cross-strike state is
// the per-side volume baseline computed once per snapshot.
package flow

import "oiflow/internal/chain"

// Classification thresholds.
const (
	priceChangeThresholdPct = 0.5 // |price change %| below this is neutral
	oiChangeThresholdPct    = 1.0 // |OI change %| below this is neutral
	volumeUpRatio           = 1.2
	volumeDownRatio         = 0.8
	noiseOIChangePct        = 0.5
	noiseVolumeRatio        = 1.1
	highVolumeRatio         = 1.5
)

// SideSignal is the classification outcome for one option side of a strike.
type SideSignal struct {
	PriceDirection  Direction `json:"priceDirection"`
	OIDirection     Direction `json:"oiDirection"`
	VolumeDirection Direction `json:"volumeDirection"`
	Label           string    `json:"interpretationLabel"`
	Description     string    `json:"interpretationDescription"`
	Confidence      int       `json:"confidenceScore"`
	PriceChangePct  float64   `json:"priceChangePct"`
	OIChangePct     float64   `json:"oiChangePct"`
	VolumeRatio     float64   `json:"volumeRatio"`
	Strength        float64   `json:"strengthScore"`
	ContextTag      string    `json:"contextTag,omitempty"`
	Tag             string    `json:"tag"`
}

// SideStats combines the raw per-side numbers with their classification.
type SideStats struct {
	OpenInterest float64 `json:"openInterest"`
	OIChange     float64 `json:"changeInOpenInterest"`
	Volume       float64 `json:"volume"`
	LastPrice    float64 `json:"lastPrice"`
	SideSignal
}

// Row is the classified view of one strike. Rows are constructed fresh per
// snapshot and never mutated afterwards.
type Row struct {
	Strike float64   `json:"strike"`
	Spot   float64   `json:"spot"`
	CE     SideStats `json:"CE"`
	PE     SideStats `json:"PE"`
	// Signal compares the two sides head to head.
	Signal string `json:"signal"`
}

// Row-level signals.
const (
	SignalPEBuildup = "PE Buildup (Bearish)"
	SignalCEBuildup = "CE Buildup (Bullish)"
	SignalNeutral   = "Neutral"
)

// ClassifySnapshot classifies every strike of a snapshot against the
// snapshot-wide volume baselines.
func ClassifySnapshot(snap *chain.Snapshot) []Row {
	ceVolumes := make([]float64, 0, len(snap.Strikes))
	peVolumes := make([]float64, 0, len(snap.Strikes))
	for _, rec := range snap.Strikes {
		ceVolumes = append(ceVolumes, rec.CE.Volume)
		peVolumes = append(peVolumes, rec.PE.Volume)
	}
	ceBaseline := computeBaseline(ceVolumes)
	peBaseline := computeBaseline(peVolumes)

	rows := make([]Row, 0, len(snap.Strikes))
	for _, rec := range snap.Strikes {
		rows = append(rows, Row{
			Strike: rec.Strike,
			Spot:   snap.Spot,
			CE:     classifySide(rec.CE, ceBaseline, SideCall),
			PE:     classifySide(rec.PE, peBaseline, SidePut),
			Signal: rowSignal(rec.CE, rec.PE),
		})
	}
	return rows
}

func classifySide(rec chain.SideRecord, baseline VolumeBaseline, side OptionSide) SideStats {
	priceDir, pricePct := priceDirection(rec.LastPrice, rec.PrevPrice)
	oiDir, oiPct := oiDirection(rec.OIChange, rec.PrevOpenInterest)
	volDir, ratio := volumeDirection(rec.Volume, baseline)

	var label, description, tag string
	if isNoise(oiPct, ratio) {
		label, description, tag = LabelNoise, noiseDescription, "muted"
	} else {
		label, description, tag = interpret(priceDir, oiDir, volDir)
	}

	return SideStats{
		OpenInterest: rec.OpenInterest,
		OIChange:     rec.OIChange,
		Volume:       rec.Volume,
		LastPrice:    rec.LastPrice,
		SideSignal: SideSignal{
			PriceDirection:  priceDir,
			OIDirection:     oiDir,
			VolumeDirection: volDir,
			Label:           label,
			Description:     description,
			Confidence:      confidenceScore(pricePct, rec.OIChange, volDir, ratio),
			PriceChangePct:  pricePct,
			OIChangePct:     oiPct,
			VolumeRatio:     ratio,
			Strength:        strengthScore(ratio, oiPct, pricePct),
			ContextTag:      contextTag(label, side),
			Tag:             tag,
		},
	}
}

// priceDirection classifies the move from the previous price. Without a
// previous price there is nothing to compare against.
func priceDirection(last, prev float64) (Direction, float64) {
	if prev == 0 {
		return DirectionNeutral, 0
	}
	pct := (last - prev) / prev * 100
	switch {
	case pct >= priceChangeThresholdPct:
		return DirectionUp, pct
	case pct <= -priceChangeThresholdPct:
		return DirectionDown, pct
	}
	return DirectionNeutral, pct
}

func oiDirection(change, prevOI float64) (Direction, float64) {
	if prevOI == 0 {
		return DirectionNeutral, 0
	}
	pct := change / prevOI * 100
	switch {
	case pct > oiChangeThresholdPct:
		return DirectionUp, pct
	case pct < -oiChangeThresholdPct:
		return DirectionDown, pct
	}
	return DirectionNeutral, pct
}

// volumeDirection marks a side as high-volume either relative to the side's
// average or by clearing the top-20% rank threshold.
func volumeDirection(volume float64, baseline VolumeBaseline) (Direction, float64) {
	ratio := 0.0
	if baseline.Average > 0 {
		ratio = volume / baseline.Average
	}
	switch {
	case ratio >= volumeUpRatio || volume > baseline.Top20Threshold:
		return DirectionUp, ratio
	case ratio <= volumeDownRatio:
		return DirectionDown, ratio
	}
	return DirectionNeutral, ratio
}

// isNoise filters sides whose activity is too small to interpret.
func isNoise(oiPct, volumeRatio float64) bool {
	return abs(oiPct) < noiseOIChangePct && volumeRatio < noiseVolumeRatio
}

// confidenceScore aggregates how many signals agree. Clamped to [0, 100].
func confidenceScore(pricePct, oiChange float64, volDir Direction, ratio float64) int {
	score := 50
	if abs(pricePct) >= priceChangeThresholdPct {
		score += 15
	}
	if oiChange != 0 {
		score += 15
	}
	if volDir == DirectionUp {
		score += 20
		if ratio >= highVolumeRatio {
			score += 5
		}
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// strengthScore is a relative magnitude for ranking strikes, not a
// thresholded signal.
func strengthScore(ratio, oiPct, pricePct float64) float64 {
	return 2*ratio + abs(oiPct) + abs(pricePct)
}

// rowSignal compares the two sides directly, without thresholds.
func rowSignal(ce, pe chain.SideRecord) string {
	switch {
	case pe.OIChange > ce.OIChange && pe.Volume > ce.Volume:
		return SignalPEBuildup
	case ce.OIChange > pe.OIChange && ce.Volume > pe.Volume:
		return SignalCEBuildup
	}
	return SignalNeutral
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
