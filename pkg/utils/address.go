package utils

import "strings"

// usStates lists the two-letter codes checked by ExtractState.
var usStates = []string{
	"AL", "AK", "AZ", "AR", "CA", "CO", "CT", "DE", "FL", "GA",
	"HI", "ID", "IL", "IN", "IA", "KS", "KY", "LA", "ME", "MD",
	"MA", "MI", "MN", "MS", "MO", "MT", "NE", "NV", "NH", "NJ",
	"NM", "NY", "NC", "ND", "OH", "OK", "OR", "PA", "RI", "SC",
	"SD", "TN", "TX", "UT", "VT", "VA", "WA", "WV", "WI", "WY", "DC",
}

// FormatAddress joins EDGAR business-address parts into a single display
// string: "street1 street2, city, state zip". Empty parts collapse cleanly.
func FormatAddress(street1, street2, city, state, zip string) string {
	street := strings.TrimSpace(street1 + " " + street2)

	var parts []string
	if street != "" {
		parts = append(parts, street)
	}
	if city != "" {
		parts = append(parts, city)
	}
	if tail := strings.TrimSpace(state + " " + zip); tail != "" {
		parts = append(parts, tail)
	}
	return strings.Join(parts, ", ")
}

// ExtractState extracts a US state (or DC) code from a free-form address
// string. Returns "" when no state is recognizable.
func ExtractState(address string) string {
	if address == "" {
		return ""
	}
	for _, state := range usStates {
		if strings.Contains(address, " "+state+" ") ||
			strings.Contains(address, ", "+state) ||
			strings.HasSuffix(address, " "+state) {
			return state
		}
	}
	return ""
}
