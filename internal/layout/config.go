package layout

import (
	"errors"
	"fmt"
	"math"
)

// Range is a half open interval [Min, Max) on the x axis.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// Contains reports whether x lies in [Min, Max).
func (r Range) Contains(x float64) bool {
	return x >= r.Min && x < r.Max
}

// Bucket maps a fixed x range to a column in the fallback strategy.
type Bucket struct {
	Key ColumnKey `json:"key"`
	Range
}

// Config carries every geometric heuristic of the layout pipeline. Values are
// in page units (points for PDF input).
type Config struct {
	// RowTolerance is the maximum y distance from a row's first token.
	RowTolerance float64
	// TableRowTolerance is used when regrouping the table body.
	TableRowTolerance float64

	ContinuationWindow float64
	NameRegionMaxX     float64
	SpecRegionMinX     float64
	SpecRegionMaxX     float64
	VoltageMaxDistance float64

	FallbackNameMaxX  float64
	FallbackRowWindow float64
	FallbackBuckets   []Bucket

	// ColumnMargin widens the first and last header columns outwards. Table
	// tokens beyond it are dropped.
	ColumnMargin float64

	// ColumnBounds are the expected x bands of header labels. A header label
	// outside its band is reported for review but still used.
	ColumnBounds map[ColumnKey]Range

	// Debug enables per-token diagnostics.
	Debug bool
}

// DefaultConfig returns heuristics tuned to the common A4 VAT invoice.
func DefaultConfig() Config {
	return Config{
		RowTolerance:       5,
		TableRowTolerance:  5,
		ContinuationWindow: 25,
		NameRegionMaxX:     100,
		SpecRegionMinX:     100,
		SpecRegionMaxX:     180,
		VoltageMaxDistance: 30,
		ColumnMargin:       30,
		FallbackNameMaxX:   100,
		FallbackRowWindow:  5,
		FallbackBuckets: []Bucket{
			{Key: ColSpec, Range: Range{Min: 100, Max: 150}},
			{Key: ColUnit, Range: Range{Min: 180, Max: 220}},
			{Key: ColQuantity, Range: Range{Min: 250, Max: 290}},
			{Key: ColPrice, Range: Range{Min: 290, Max: 380}},
			{Key: ColAmount, Range: Range{Min: 380, Max: 450}},
			{Key: ColTaxRate, Range: Range{Min: 450, Max: 530}},
			{Key: ColTax, Range: Range{Min: 530, Max: math.Inf(1)}},
		},
		ColumnBounds: map[ColumnKey]Range{
			ColName:     {Min: 0, Max: 160},
			ColSpec:     {Min: 80, Max: 230},
			ColUnit:     {Min: 150, Max: 270},
			ColQuantity: {Min: 210, Max: 330},
			ColPrice:    {Min: 260, Max: 410},
			ColAmount:   {Min: 340, Max: 490},
			ColTaxRate:  {Min: 410, Max: 560},
			ColTax:      {Min: 470, Max: 700},
		},
	}
}

// Validate rejects heuristics that cannot produce a sensible layout.
func (c Config) Validate() error {
	if c.RowTolerance < 0 || c.TableRowTolerance < 0 {
		return errors.New("row tolerances must not be negative")
	}
	if c.ColumnMargin < 0 {
		return errors.New("column margin must not be negative")
	}
	if c.ContinuationWindow < 0 || c.VoltageMaxDistance < 0 || c.FallbackRowWindow < 0 {
		return errors.New("continuation distances must not be negative")
	}
	if c.SpecRegionMinX > c.SpecRegionMaxX {
		return fmt.Errorf("spec region is empty: min %.1f > max %.1f", c.SpecRegionMinX, c.SpecRegionMaxX)
	}
	for _, b := range c.FallbackBuckets {
		if b.Min > b.Max {
			return fmt.Errorf("fallback bucket %s is empty", b.Key)
		}
	}
	return nil
}
