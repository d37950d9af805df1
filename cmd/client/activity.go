package main

import (
	"context"
	"flag"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/subcommands"
	"github.com/gorilla/websocket"

	"github.com/runic/mailman/pkg/rest/model"
)

type activityCmd struct {
	follow bool
	kind   string
}

func (*activityCmd) Name() string {
	return "activity"
}

func (*activityCmd) Synopsis() string {
	return "show the recent activity feed"
}

func (*activityCmd) Usage() string {
	return `activity [flags]:
	output recent activity, optionally following new events
`
}

func (a *activityCmd) SetFlags(f *flag.FlagSet) {
	f.BoolVar(&a.follow, "follow", false, "keep printing new activity until interrupted")
	f.StringVar(&a.kind, "kind", "", "with -follow, only show these comma separated kinds")
}

func (a *activityCmd) Execute(
	ctx context.Context, f *flag.FlagSet, _ ...any) subcommands.ExitStatus {
	if !a.follow {
		c, err := newClient()
		if err != nil {
			return fatal("Couldn't build client", err)
		}
		o, err := c.Overview(ctx)
		if err != nil {
			return fatal("REST call failed", err)
		}
		for i := len(o.Recent) - 1; i >= 0; i-- {
			printActivity(o.Recent[i])
		}
		return subcommands.ExitSuccess
	}

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, monitorURL(a.kind), nil)
	if err != nil {
		return fatal("WebSocket connect failed", err)
	}
	defer conn.Close()
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()
	for {
		var item model.JSONActivityV1
		if err := conn.ReadJSON(&item); err != nil {
			if ctx.Err() != nil {
				return subcommands.ExitSuccess
			}
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return subcommands.ExitSuccess
			}
			return fatal("WebSocket read failed", err)
		}
		printActivity(&item)
	}
}

func printActivity(item *model.JSONActivityV1) {
	fmt.Fprintf(os.Stdout, "%s  %-8s %s (%s)\n", item.Time.Local().Format(time.DateTime),
		item.Kind, item.Message, humanize.Time(item.Time))
}

// monitorURL is the activity WebSocket address of the server.
func monitorURL(kind string) string {
	u := strings.Replace(baseURL(), "http://", "ws://", 1) + "/api/v1/monitor/activity"
	if kind != "" {
		u += "?kind=" + url.QueryEscape(kind)
	}
	return u
}
