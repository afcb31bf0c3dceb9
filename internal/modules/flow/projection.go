package flow

// ProjectedRange is the price band between the derived support and
// resistance levels.
type ProjectedRange struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// Projection is the price-target band derived from classified rows.
type Projection struct {
	Support    float64        `json:"support"`
	Resistance float64        `json:"resistance"`
	Range      ProjectedRange `json:"range"`
}

// indicatesLevel reports whether a label marks writer activity that pins a
// price level: on the put side it indicates support, on the call side
// resistance.
func indicatesLevel(label string) bool {
	return label == LabelStrongShortBuildup || label == LabelShortCovering
}

// BuildTargetProjection derives the support/resistance band around spot: the
// nearest strike below spot whose put side carries a support-indicating
// label, and the nearest strike above spot whose call side carries a
// resistance-indicating label. When either level cannot be derived the
// projection is unavailable - never defaulted.
func BuildTargetProjection(rows []Row, spot float64) (*Projection, bool) {
	var support, resistance float64
	var haveSupport, haveResistance bool

	for _, row := range rows {
		if row.Strike < spot && indicatesLevel(row.PE.Label) {
			if !haveSupport || row.Strike > support {
				support = row.Strike
				haveSupport = true
			}
		}
		if row.Strike > spot && indicatesLevel(row.CE.Label) {
			if !haveResistance || row.Strike < resistance {
				resistance = row.Strike
				haveResistance = true
			}
		}
	}

	if !haveSupport || !haveResistance {
		return nil, false
	}

	return &Projection{
		Support:    support,
		Resistance: resistance,
		Range:      ProjectedRange{Lower: support, Upper: resistance},
	}, true
}
