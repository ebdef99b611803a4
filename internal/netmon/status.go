package netmon

import "time"

// Effective connection types, as used by the Network Information API.
const (
	EffectiveSlow2G = "slow-2g"
	Effective2G     = "2g"
	Effective3G     = "3g"
	Effective4G     = "4g"
)

// LinkInfo is connection metadata reported by the client. Nil fields are unknown.
type LinkInfo struct {
	ConnectionType *string  `json:"connection_type,omitempty"`
	EffectiveType  *string  `json:"effective_type,omitempty"`
	Downlink       *float64 `json:"downlink,omitempty"`
	RTTMs          *int64   `json:"rtt_ms,omitempty"`
}

// Status is a snapshot of the monitor state.
type Status struct {
	Online         bool     `json:"online"`
	ConnectionType *string  `json:"connection_type,omitempty"`
	EffectiveType  *string  `json:"effective_type,omitempty"`
	Downlink       *float64 `json:"downlink,omitempty"`
	RTTMs          *int64   `json:"rtt_ms,omitempty"`
}

// EffectiveTypeFor maps a round-trip time to an effective connection type.
func EffectiveTypeFor(rtt time.Duration) string {
	switch {
	case rtt >= 2000*time.Millisecond:
		return EffectiveSlow2G
	case rtt >= 1400*time.Millisecond:
		return Effective2G
	case rtt >= 270*time.Millisecond:
		return Effective3G
	default:
		return Effective4G
	}
}
