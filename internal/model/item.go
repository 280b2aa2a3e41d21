package model

import "encoding/json"

// Rarity is the three-level tier of a reward item.
type Rarity string

const (
	RarityCommon    Rarity = "Common"
	RarityRare      Rarity = "Rare"
	RarityLegendary Rarity = "Legendary"
)

// Rarities lists the tiers in display order.
var Rarities = []Rarity{RarityCommon, RarityRare, RarityLegendary}

// RarityOf maps the upstream highlight flags to a tier.
func RarityOf(highlight, highlightRare bool) Rarity {
	if !highlight {
		return RarityCommon
	}
	if highlightRare {
		return RarityLegendary
	}
	return RarityRare
}

// Disposition tells whether an item was kept or immediately sold.
type Disposition string

const (
	DispositionKept     Disposition = "Kept"
	DispositionAutoSold Disposition = "Auto-sold"
)

// SpinItem is one normalized reward item.
type SpinItem struct {
	Index          int         `json:"index"`
	Name           string      `json:"name"`
	Price          float64     `json:"price"`
	QuickSellPrice float64     `json:"quickSellPrice"`
	Rarity         Rarity      `json:"rarity"`
	Disposition    Disposition `json:"sold"`
	Timestamp      string      `json:"timestamp"`
}

// SpinOutcome is the result of a single box-opening request.
type SpinOutcome struct {
	Success bool
	Items   []SpinItem
	Message string
	Raw     json.RawMessage // upstream body, set only on a list response
}

// SpinFailure builds a failed outcome.
func SpinFailure(msg string) SpinOutcome {
	return SpinOutcome{Success: false, Message: msg, Items: []SpinItem{}}
}
