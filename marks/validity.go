package marks

import "strings"

// Validity is a bit mask of the derived mark data that is up to date.
type Validity uint8

// Validity bits.
const (
	// ValidArea: the viewport the batch was culled against is current.
	ValidArea Validity = 1 << iota
	// ValidShape: mark indices and transform records are current.
	ValidShape
	// ValidIcon: icon boxes are current.
	ValidIcon
	// ValidGlyph: label layouts and anchors are current.
	ValidGlyph

	// ValidAll has every bit set.
	ValidAll = ValidArea | ValidShape | ValidIcon | ValidGlyph
)

var validityNames = [...]string{"area", "shape", "icon", "glyph"}

// String returns the set bits joined by "|", or "none".
func (v Validity) String() string {
	if v&ValidAll == 0 {
		return "none"
	}
	var parts []string
	for i, name := range validityNames {
		if v&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "|")
}
