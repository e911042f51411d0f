package asset

// Well-known assets
var (
	USDT = NewAssetWithName("USDT", "Tether", KindCrypto, 2)
	BTC  = NewAssetWithName("BTC", "Bitcoin", KindCrypto, 8)
	ETH  = NewAssetWithName("ETH", "Ethereum", KindCrypto, 8)
	NGN  = NewAssetWithName("NGN", "Nigerian Naira", KindFiat, 2)
)

// Exchanges quoted by the scanner.
var WellKnownExchanges = []Exchange{
	{ID: "binance_p2p", DisplayName: "Binance P2P", Venue: VenueP2P},
	{ID: "bybit_p2p", DisplayName: "Bybit P2P", Venue: VenueP2P},
	{ID: "quidax", DisplayName: "Quidax", Venue: VenueExchange},
	{ID: "luno", DisplayName: "Luno", Venue: VenueExchange},
	{ID: "remitano", DisplayName: "Remitano", Venue: VenueP2P},
	{ID: "patricia", DisplayName: "Patricia", Venue: VenueExchange},
	{ID: "paxful", DisplayName: "Paxful", Venue: VenueP2P},
}

// DefaultRegistry returns a registry pre-populated with the supported
// cryptos, the naira and the known exchanges.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	r.Register(USDT)
	r.Register(BTC)
	r.Register(ETH)
	r.Register(NGN)

	for _, e := range WellKnownExchanges {
		r.RegisterExchange(e)
	}
	return r
}

// SupportedCrypto reports whether symbol is one of the scanner's cryptos.
func SupportedCrypto(symbol string) bool {
	a, ok := defaultRegistry.Get(symbol)
	return ok && !a.IsFiat()
}

// ExchangeName resolves a display name from the default registry.
func ExchangeName(id string) string {
	return defaultRegistry.ExchangeName(id)
}

var defaultRegistry = DefaultRegistry()
