package loading

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// CompleteSuffix marks the completion flag of a line in the flat stored map
const CompleteSuffix = "_complete"

// MaxPacks caps stored counts read back from the database
const MaxPacks = 1_000_000

// LineProgress is what has been loaded for one line
type LineProgress struct {
	Packs    int  `json:"packs"`
	Complete bool `json:"complete"`
}

// Progress is loading progress keyed by line id. A missing line means nothing loaded.
type Progress map[string]LineProgress

// LineID builds the identity of an order line used as the progress key
func LineID(orderID, code string, index int) string {
	return orderID + "_" + code + "_" + strconv.Itoa(index)
}

// Get returns the progress of a line, zero when absent
func (p Progress) Get(lineID string) LineProgress {
	return p[lineID]
}

// Clone copies the map
func (p Progress) Clone() Progress {
	out := make(Progress, len(p))
	for k, v := range p {
		out[k] = v
	}
	return out
}

// Flatten converts to the stored shape: "<id>" -> packs and "<id>_complete" -> flag
func (p Progress) Flatten() map[string]interface{} {
	out := make(map[string]interface{}, len(p)*2)
	for id, lp := range p {
		out[id] = lp.Packs
		out[id+CompleteSuffix] = lp.Complete
	}
	return out
}

// ParseProgress reads the stored shape. Negative counts clamp to zero and
// values of any other type are ignored.
func ParseProgress(raw map[string]interface{}) Progress {
	out := make(Progress)
	for key, value := range raw {
		if id, ok := strings.CutSuffix(key, CompleteSuffix); ok {
			if flag, isBool := value.(bool); isBool {
				lp := out[id]
				lp.Complete = flag
				out[id] = lp
			}
			continue
		}
		n, ok := packsValue(value)
		if !ok {
			continue
		}
		lp := out[key]
		lp.Packs = n
		out[key] = lp
	}
	return out
}

func packsValue(v interface{}) (int, bool) {
	var f float64
	switch n := v.(type) {
	case float64:
		f = n
	case float32:
		f = float64(n)
	case int:
		f = float64(n)
	case int64:
		f = float64(n)
	case json.Number:
		parsed, err := n.Float64()
		if err != nil {
			return 0, false
		}
		f = parsed
	default:
		return 0, false
	}
	if math.IsNaN(f) || f < 0 {
		return 0, true
	}
	if f > MaxPacks {
		return MaxPacks, true
	}
	return int(math.Round(f)), true
}
