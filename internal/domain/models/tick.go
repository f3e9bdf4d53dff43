package models

// Tick is a single trade print from the live market stream, the raw
// input for daily bar building.
type Tick struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
