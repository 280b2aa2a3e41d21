package lootify

import (
	"encoding/json"
	"math"
	"strconv"
	"time"

	"LootSpinner/internal/model"
)

const notAnArray = "Unexpected response format, not an array"

// Normalize maps a raw spin response into SpinItems. Every entry yields exactly
// one item; a body that is not a JSON array yields a failed outcome.
func Normalize(raw []byte) model.SpinOutcome {
	var entries []any
	if err := json.Unmarshal(raw, &entries); err != nil || entries == nil {
		return model.SpinFailure(notAnArray)
	}

	items := make([]model.SpinItem, len(entries))
	for i, e := range entries {
		items[i] = normalizeItem(asObject(e))
	}
	return model.SpinOutcome{Success: true, Items: items, Raw: json.RawMessage(raw)}
}

func normalizeItem(obj map[string]any) model.SpinItem {
	prize := asObject(obj["prize"])

	name := asString(prize["name"])
	if name == "" {
		name = asString(obj["lootName"])
	}
	if name == "" {
		name = "Unknown Item"
	}

	disposition := model.DispositionKept
	if truthy(obj["sold"]) {
		disposition = model.DispositionAutoSold
	}

	return model.SpinItem{
		Index:          int(toFloat(obj["index"])),
		Name:           name,
		Price:          toFloat(prize["price"]),
		QuickSellPrice: toFloat(obj["quickSellPrice"]),
		Rarity:         model.RarityOf(truthy(obj["highlight"]), truthy(obj["highlightRare"])),
		Disposition:    disposition,
		Timestamp:      formatTimestamp(obj["timestamp"]),
	}
}

func asObject(v any) map[string]any {
	if m, ok := v.(map[string]any); ok {
		return m
	}
	return nil
}

func asString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case float64:
		if s == 0 {
			return ""
		}
		return model.FormatNumber(s)
	default:
		return ""
	}
}

// toFloat reads a number that the upstream may send as a JSON number or a
// numeric string. Anything else is 0.
func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) {
			return 0
		}
		return n
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// truthy follows the upstream's loose flag encoding.
func truthy(v any) bool {
	switch b := v.(type) {
	case bool:
		return b
	case float64:
		return b != 0
	case string:
		return b != ""
	case map[string]any, []any:
		return true
	default:
		return false
	}
}

func formatTimestamp(v any) string {
	var t time.Time
	switch ts := v.(type) {
	case float64:
		t = time.UnixMilli(int64(ts))
	case string:
		parsed, ok := parseTime(ts)
		if !ok {
			return "Invalid Date"
		}
		t = parsed
	default:
		return "Invalid Date"
	}
	return t.Local().Format(model.DisplayTimeLayout)
}

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseTime(s string) (time.Time, bool) {
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.UnixMilli(ms), true
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
