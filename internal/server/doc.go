// Package server serves the web landing page for the game server.
//
// Routes:
//   - GET /: the landing page with the live status widget and copy control
//   - GET /api/status: the current status snapshot as JSON
//   - GET /healthz: liveness probe
package server
