// Package store holds the single "current status" slot shared by the poller
// and the renderers.
//
// The slot is written by poll cycles and read by the terminal widget and the
// web landing page. Writes carry the sequence number assigned when the request
// was issued; a completion older than the last applied one is discarded, so
// overlapping cycles cannot roll the display back to a stale status.
package store
