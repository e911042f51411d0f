package asset

import (
	"strings"
	"unicode"
)

// Venue is how an exchange matches trades.
type Venue string

const (
	VenueP2P      Venue = "p2p"
	VenueExchange Venue = "exchange"
)

// Exchange is a Nigerian trading venue tracked by the scanner.
type Exchange struct {
	ID          string
	DisplayName string
	Venue       Venue
	ReferralURL string
}

// TitleCase turns "some_exchange" into "Some Exchange".
func TitleCase(id string) string {
	words := strings.Fields(strings.ReplaceAll(id, "_", " "))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
