package helpers

import "strconv"

const (
	DefaultPageLimit = 10
	MaxPageLimit     = 100
)

// Page carries normalized list-endpoint pagination. Values are always safe
// to interpolate into LIMIT/OFFSET.
type Page struct {
	Limit  int
	Offset int
}

// ParsePage normalizes raw limit/offset query values. Out-of-range values
// clamp instead of erroring, and anything unparseable falls back to the
// default.
func ParsePage(limitStr, offsetStr string) Page {
	p := Page{Limit: DefaultPageLimit, Offset: 0}

	if limitStr != "" {
		if n, err := strconv.Atoi(limitStr); err == nil {
			switch {
			case n < 1:
				p.Limit = 1
			case n > MaxPageLimit:
				p.Limit = MaxPageLimit
			default:
				p.Limit = n
			}
		}
	}

	if offsetStr != "" {
		if n, err := strconv.Atoi(offsetStr); err == nil && n > 0 {
			p.Offset = n
		}
	}

	return p
}
