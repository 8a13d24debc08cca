// Package period implements fiscal period keys such as "24Q1" and "24FY".
package period

import (
	"fmt"
	"sort"
	"strconv"
)

// Label is a fiscal period label.
type Label string

const (
	Q1 Label = "Q1"
	Q2 Label = "Q2"
	Q3 Label = "Q3"
	Q4 Label = "Q4"
	FY Label = "FY"
)

// Quarters lists the standalone quarter labels in order.
var Quarters = []Label{Q1, Q2, Q3, Q4}

// Valid reports whether l is one of Q1..Q4 or FY.
func (l Label) Valid() bool {
	switch l {
	case Q1, Q2, Q3, Q4, FY:
		return true
	}
	return false
}

// Key identifies a reporting period by two-digit fiscal year suffix and label.
type Key struct {
	Year  int // 0-99
	Label Label
}

// NewKey builds a key from a full fiscal year (e.g. 2024) and a label.
func NewKey(fiscalYear int, label Label) (Key, error) {
	if !label.Valid() {
		return Key{}, fmt.Errorf("invalid period label %q", label)
	}
	if fiscalYear < 0 {
		return Key{}, fmt.Errorf("invalid fiscal year %d", fiscalYear)
	}
	return Key{Year: fiscalYear % 100, Label: label}, nil
}

// ParseKey parses the text form produced by String, e.g. "24Q1".
func ParseKey(s string) (Key, error) {
	if len(s) != 4 {
		return Key{}, fmt.Errorf("invalid period key %q", s)
	}
	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return Key{}, fmt.Errorf("invalid period key %q: %w", s, err)
	}
	label := Label(s[2:])
	if !label.Valid() {
		return Key{}, fmt.Errorf("invalid period key %q: unknown label", s)
	}
	return Key{Year: year, Label: label}, nil
}

func (k Key) String() string {
	return fmt.Sprintf("%02d%s", k.Year, k.Label)
}

// FullYear expands the suffix into a 21st century fiscal year.
func (k Key) FullYear() int {
	return 2000 + k.Year
}

// IsAnnual reports whether the key is a full fiscal year.
func (k Key) IsAnnual() bool {
	return k.Label == FY
}

// Quarter returns 1-4 for quarter keys and 0 for FY.
func (k Key) Quarter() int {
	switch k.Label {
	case Q1:
		return 1
	case Q2:
		return 2
	case Q3:
		return 3
	case Q4:
		return 4
	}
	return 0
}

// WithLabel returns the key for another period of the same fiscal year.
func (k Key) WithLabel(l Label) Key {
	return Key{Year: k.Year, Label: l}
}

// Less orders keys by (year, quarter) ascending. FY sorts after Q4.
func (k Key) Less(other Key) bool {
	if k.Year != other.Year {
		return k.Year < other.Year
	}
	return k.rank() < other.rank()
}

func (k Key) rank() int {
	if k.Label == FY {
		return 5
	}
	return k.Quarter()
}

// MarshalText lets keys be used as JSON object keys.
func (k Key) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText parses the text form.
func (k *Key) UnmarshalText(b []byte) error {
	parsed, err := ParseKey(string(b))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// SortDescending sorts keys newest first.
func SortDescending(keys []Key) {
	sort.Slice(keys, func(i, j int) bool {
		return keys[j].Less(keys[i])
	})
}
