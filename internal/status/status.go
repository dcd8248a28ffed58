package status

import "fmt"

// DefaultGamePort is the port game clients assume when none is typed
const DefaultGamePort = 25565

const (
	unavailableVersion = "Unavailable"
	loadingVersion     = "Loading..."
	loadingMOTD        = "Loading server status..."
)

// Players holds the connected count and capacity reported by the status endpoint
type Players struct {
	Online int `json:"online"`
	Max    int `json:"max"`
}

// ServerStatus is a snapshot of the game server as reported by the status endpoint.
// A new value replaces the previous one wholesale on every poll.
type ServerStatus struct {
	Online  bool    `json:"online"`
	Players Players `json:"players"`
	Version string  `json:"version"`
	MOTD    string  `json:"motd"`
}

// Sentinel returns the placeholder status shown whenever a poll fails
func Sentinel(host string) ServerStatus {
	return ServerStatus{
		Online:  false,
		Players: Players{Online: 0, Max: 0},
		Version: unavailableVersion,
		MOTD:    fmt.Sprintf("%s is temporarily unavailable or not responding", host),
	}
}

// Placeholder returns the status shown before the first poll resolves
func Placeholder() ServerStatus {
	return ServerStatus{
		Version: loadingVersion,
		MOTD:    loadingMOTD,
	}
}

// PlayerPercent returns the player ratio as a percentage.
// A zero capacity yields 0. The result is not clamped, so online > max exceeds 100.
func PlayerPercent(s ServerStatus) float64 {
	if s.Players.Max == 0 {
		return 0
	}
	return 100 * float64(s.Players.Online) / float64(s.Players.Max)
}

// Address joins host and port the way players type it into the game client.
// The default game port is left off.
func Address(host string, port int) string {
	if port == DefaultGamePort || port == 0 {
		return host
	}
	return fmt.Sprintf("%s:%d", host, port)
}
