package agent

import (
	"fmt"

	"quarterly_financials/pkg/core/compute"
	"quarterly_financials/pkg/core/period"
)

// AbandonMarker is the value a model returns when a blank cannot be resolved.
const AbandonMarker = "~"

// Blank is a missing cell.
type Blank struct {
	Key     string `json:"key"`
	Year    int    `json:"year"`    // four digit fiscal year
	Quarter string `json:"quarter"` // Q1..Q4
}

// Fill is a model answer for a blank. Value is a number or AbandonMarker.
type Fill struct {
	Key     string      `json:"key"`
	Year    int         `json:"year"`
	Quarter string      `json:"quarter"`
	Value   interface{} `json:"value"`
}

// AbandonSet records blanks the model gave up on so they are not asked again.
type AbandonSet map[string]bool

func cellID(k period.Key, metric string) string {
	return k.String() + "/" + metric
}

func (b Blank) periodKey() (period.Key, error) {
	return period.NewKey(b.Year, period.Label(b.Quarter))
}

// NextBlanks returns up to limit blanks, at most one per period, walking
// periods newest first and metrics in the given order.
func NextBlanks(points compute.Points, metrics []string, abandoned AbandonSet, limit int) []Blank {
	var blanks []Blank
	for _, k := range points.Keys() {
		rec := points[k]
		for _, m := range metrics {
			if _, ok := rec[m]; ok {
				continue
			}
			if abandoned[cellID(k, m)] {
				continue
			}
			blanks = append(blanks, Blank{Key: m, Year: k.FullYear(), Quarter: string(k.Label)})
			break
		}
		if limit > 0 && len(blanks) >= limit {
			break
		}
	}
	return blanks
}

// ApplyFills writes model answers into points. Only tracked metrics of
// existing periods are written, and present values are never replaced.
func ApplyFills(points compute.Points, metrics []string, fills []Fill, abandoned AbandonSet) (filled int, gaveUp int, err error) {
	tracked := make(map[string]bool, len(metrics))
	for _, m := range metrics {
		tracked[m] = true
	}

	var rejected []string
	for _, f := range fills {
		k, keyErr := Blank{Key: f.Key, Year: f.Year, Quarter: f.Quarter}.periodKey()
		rec, ok := points[k]
		if keyErr != nil || !ok || !tracked[f.Key] {
			rejected = append(rejected, fmt.Sprintf("%s@%d%s", f.Key, f.Year, f.Quarter))
			continue
		}
		if _, exists := rec[f.Key]; exists {
			continue
		}

		switch v := f.Value.(type) {
		case float64:
			rec[f.Key] = v
			filled++
		case string:
			if v == AbandonMarker {
				abandoned[cellID(k, f.Key)] = true
				gaveUp++
				continue
			}
			rejected = append(rejected, fmt.Sprintf("%s@%s=%q", f.Key, k, v))
		default:
			rejected = append(rejected, fmt.Sprintf("%s@%s=%v", f.Key, k, v))
		}
	}

	if len(rejected) > 0 {
		err = fmt.Errorf("rejected %d fills: %v", len(rejected), rejected)
	}
	return filled, gaveUp, err
}
