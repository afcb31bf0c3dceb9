package flow

// Direction is a signal direction, using the dashboard's arrow notation.
type Direction string

const (
	DirectionUp      Direction = "↑"
	DirectionDown    Direction = "↓"
	DirectionNeutral Direction = "→"
)

// OptionSide distinguishes calls from puts.
type OptionSide string

const (
	SideCall OptionSide = "CE"
	SidePut  OptionSide = "PE"
)

// Interpretation labels.
const (
	LabelStrongLongBuildup     = "Strong Long Build-up"
	LabelStrongShortBuildup    = "Strong Short Build-up"
	LabelShortCovering         = "Short Covering"
	LabelLongUnwinding         = "Long Unwinding"
	LabelQuietPositionBuilding = "Quiet Position Building"
	LabelNoInterestZone        = "No Interest Zone"
	LabelMixed                 = "Mixed"
	LabelNoise                 = "Noise"
)

// rule matches one (price, OI, volume) direction pattern.
type rule struct {
	price, oi, volume Direction
	label             string
	description       string
	tag               string // UI badge class
}

// interpretationRules is evaluated top to bottom; the first matching pattern
// wins. Order is part of the contract.
var interpretationRules = []rule{
	{DirectionUp, DirectionUp, DirectionUp, LabelStrongLongBuildup,
		"Rising price with rising open interest on strong volume signals fresh long positions.", "bullish"},
	{DirectionDown, DirectionUp, DirectionUp, LabelStrongShortBuildup,
		"Falling price with rising open interest on strong volume signals aggressive short positions.", "bearish"},
	{DirectionUp, DirectionDown, DirectionUp, LabelShortCovering,
		"Rising price with falling open interest on strong volume signals shorts exiting in a hurry.", "bullish"},
	{DirectionDown, DirectionDown, DirectionUp, LabelLongUnwinding,
		"Falling price with falling open interest on strong volume signals longs closing out.", "bearish"},
	{DirectionNeutral, DirectionUp, DirectionDown, LabelQuietPositionBuilding,
		"Open interest is growing on thin volume while price holds, suggesting quiet position building.", "watch"},
	{DirectionNeutral, DirectionDown, DirectionDown, LabelNoInterestZone,
		"Flat price, shrinking open interest and thin volume mark a strike the market has abandoned.", "muted"},
}

const (
	mixedDescription = "Signals disagree; no single positioning story fits this strike."
	noiseDescription = "Activity is too small relative to the chain to carry any signal."
)

// interpret resolves a direction triple against the rule table.
func interpret(price, oi, volume Direction) (label, description, tag string) {
	for _, r := range interpretationRules {
		if r.price == price && r.oi == oi && r.volume == volume {
			return r.label, r.description, r.tag
		}
	}
	return LabelMixed, mixedDescription, "neutral"
}

// Context tags: short build-up and short covering carry support/resistance
// meaning depending on which side of the chain they appear on.
const (
	TagResistanceZone      = "Resistance Zone"
	TagResistanceWeakening = "Resistance weakening"
	TagSupportZone         = "Support Zone"
	TagSupportStrength     = "Support strengthening"
)

func contextTag(label string, side OptionSide) string {
	switch {
	case label == LabelStrongShortBuildup && side == SideCall:
		return TagResistanceZone
	case label == LabelShortCovering && side == SideCall:
		return TagResistanceWeakening
	case label == LabelStrongShortBuildup && side == SidePut:
		return TagSupportZone
	case label == LabelShortCovering && side == SidePut:
		return TagSupportStrength
	}
	return ""
}
