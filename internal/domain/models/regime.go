package models

// Regime is a coarse classification of overall market state used to
// pick a factor-weight preset.
type Regime string

const (
	RegimeBull     Regime = "bull"
	RegimeBear     Regime = "bear"
	RegimeSideways Regime = "sideways"
)
