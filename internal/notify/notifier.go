package notify

import (
	"context"
	"fmt"

	"github.com/juststeveking/lodestone/internal/store"
	"github.com/martinlindhe/notify"
)

const appName = "Lodestone"

// Notifier sends desktop notifications when the game server goes offline or comes back
type Notifier struct {
	enabled bool
	name    string
	send    func(title, message string)
}

// NewNotifier creates a new notifier instance for the named server
func NewNotifier(enabled bool, serverName string) *Notifier {
	return &Notifier{
		enabled: enabled,
		name:    serverName,
		send: func(title, message string) {
			notify.Notify(appName, title, message, "")
		},
	}
}

// NotifyOffline sends a notification that the server stopped responding
func (n *Notifier) NotifyOffline(snap store.Snapshot) {
	title := fmt.Sprintf("⚠️  %s is offline", n.name)
	message := snap.Status.MOTD
	if snap.Outcome.Err != nil {
		message = fmt.Sprintf("%s (%v)", message, snap.Outcome.Err)
	}
	n.send(title, message)
}

// NotifyOnline sends a notification that the server is reachable again
func (n *Notifier) NotifyOnline(snap store.Snapshot) {
	title := fmt.Sprintf("✅ %s is back online", n.name)
	message := fmt.Sprintf("%d/%d players • %s", snap.Status.Players.Online, snap.Status.Players.Max, snap.Status.Version)
	n.send(title, message)
}

// NotifyStatusChange notifies when the online flag flips between two applied snapshots.
// The first resolution after loading is not a change.
func (n *Notifier) NotifyStatusChange(prev, next store.Snapshot) {
	if !n.enabled || prev.Loading || next.Loading {
		return
	}

	switch {
	case prev.Status.Online && !next.Status.Online:
		n.NotifyOffline(next)
	case !prev.Status.Online && next.Status.Online:
		n.NotifyOnline(next)
	}
}

// Watch follows the store until ctx is done, notifying on every online/offline transition
func (n *Notifier) Watch(ctx context.Context, st *store.Store) {
	if !n.enabled {
		return
	}

	ch := st.Subscribe()
	defer st.Unsubscribe(ch)

	prev := st.Snapshot()
	for {
		select {
		case <-ctx.Done():
			return
		case next, ok := <-ch:
			if !ok {
				return
			}
			n.NotifyStatusChange(prev, next)
			prev = next
		}
	}
}
