package jpetgen

import (
	"fmt"
	"strings"
)

// SourceType selects the source model which populates events.
type SourceType int

const (
	SourceUnset SourceType = iota
	RunSource
	BeamSource
	IsotopeSource
	NemaSource
	NemaMixedSource
	CosmicsSource
	endSource
)

var sourceTypeNames = [endSource]string{
	"", "run", "beam", "isotope", "nema", "nema-mixed", "cosmics",
}

func (t SourceType) String() string {
	if t < 0 || t >= endSource {
		return fmt.Sprintf("SourceType(%d)", int(t))
	}
	return sourceTypeNames[t]
}

// ParseSourceType converts a source tag into a SourceType. Tags are case
// insensitive.
func ParseSourceType(s string) (SourceType, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for t := RunSource; t < endSource; t++ {
		if sourceTypeNames[t] == s {
			return t, nil
		}
	}
	return SourceUnset, fmt.Errorf(
		"Unrecognized source type '%s'. Choose from run, beam, isotope, "+
			"nema, nema-mixed, cosmics.", s,
	)
}
