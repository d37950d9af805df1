// Package activity keeps the recent activity feed shown on the dashboard, and relays new items to
// interested listeners such as monitor web sockets.
package activity

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/runic/mailman/pkg/extension/event"
)

// Kind classifies an activity item, it selects the icon shown beside it.
type Kind string

// Activity kinds.
const (
	KindMail     Kind = "mail"
	KindSecurity Kind = "security"
	KindSystem   Kind = "system"
	KindUser     Kind = "user"
)

// Item is a single entry in the activity feed.
type Item struct {
	Kind    Kind      `json:"kind"`
	Message string    `json:"message"`
	Time    time.Time `json:"time"`
}

// Ago renders the item time relative to now, ie "5 minutes ago".
func (i Item) Ago(now time.Time) string {
	if now.Sub(i.Time) < time.Second {
		return "just now"
	}
	return humanize.RelTime(i.Time, now, "ago", "from now")
}

// SeedItems returns the feed shown when the dashboard starts, relative to now.
func SeedItems(now time.Time) []Item {
	return []Item{
		{KindUser, "User john@runic.co.za logged in", now.Add(-2 * time.Hour)},
		{KindSystem, "Daily backup completed", now.Add(-time.Hour)},
		{KindSecurity, "3 spam emails blocked", now.Add(-10 * time.Minute)},
		{KindMail, "15 new emails processed", now.Add(-5 * time.Minute)},
	}
}

func configSavedItem(ev event.ConfigSaved) Item {
	return Item{
		Kind:    KindSystem,
		Message: fmt.Sprintf("Configuration %s saved (%s)", ev.Path, humanize.Bytes(uint64(ev.Size))),
		Time:    ev.Time,
	}
}

func serviceActionItem(ev event.ServiceAction) Item {
	msg := fmt.Sprintf("%s service restarted", ev.Service)
	if ev.Action == event.ActionReload {
		msg = fmt.Sprintf("%s configuration reloaded", ev.Service)
	}
	return Item{Kind: KindSystem, Message: msg, Time: ev.Time}
}

func statusRefreshedItem(ev event.StatusRefreshed) Item {
	return Item{
		Kind:    KindSystem,
		Message: fmt.Sprintf("Status of %d services refreshed", len(ev.Services)),
		Time:    ev.Time,
	}
}
