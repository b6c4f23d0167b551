package courts

import "strings"

// Location is a Monash sport venue with badminton courts.
type Location int

const (
	Clayton Location = iota + 1
	Caulfield
)

var locationNames = map[Location]string{
	Clayton:   "Clayton",
	Caulfield: "Caulfield",
}

// Locations lists every known venue in declaration order.
func Locations() []Location {
	return []Location{Clayton, Caulfield}
}

// ParseLocation matches s case-insensitively against the known venues.
func ParseLocation(s string) (Location, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "clayton":
		return Clayton, nil
	case "caulfield":
		return Caulfield, nil
	}
	return 0, &ConfigurationError{
		Field:  "location",
		Value:  s,
		Reason: "expected one of 'clayton' or 'caulfield'",
	}
}

func (l Location) String() string {
	if name, ok := locationNames[l]; ok {
		return name
	}
	return "Unknown"
}

// Valid reports whether l is one of the known venues.
func (l Location) Valid() bool {
	_, ok := locationNames[l]
	return ok
}

// MarshalText renders the location name, so JSON output and config keys use it.
func (l Location) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText parses a location name.
func (l *Location) UnmarshalText(text []byte) error {
	parsed, err := ParseLocation(string(text))
	if err != nil {
		return err
	}
	*l = parsed
	return nil
}
