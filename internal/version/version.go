// Package version holds build metadata and the feature flags reported by
// the system endpoint.
package version

// Version is overridden at build time:
//
//	go build -ldflags "-X github.com/ndewijer/Wealth-Tracker-Backend/internal/version.Version=1.2.0"
var Version = "dev"

// Features lists optional capabilities and whether this build enables them.
// Provider availability depends on configuration and is added at runtime.
func Features() map[string]bool {
	return map[string]bool{
		"price_update":     true,
		"daily_snapshots":  true,
		"symbol_search":    true,
		"exchange_rates":   true,
		"holding_updates":  true,
		"valuation_report": true,
	}
}
