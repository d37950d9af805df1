package rest

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/runic/mailman/pkg/activity"
	"github.com/runic/mailman/pkg/rest/model"
	"github.com/runic/mailman/pkg/server/web"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period, must be less than pongWait.
	pingPeriod = pongWait * 9 / 10

	// Clients only send control frames.
	maxMessageSize = 512

	// Items buffered per socket before it counts as a slow listener.
	socketQueueLen = 100
)

var errSlowListener = errors.New("activity listener queue full")

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// activitySocket relays hub items of the wanted kinds to one WebSocket connection.
type activitySocket struct {
	conn   *websocket.Conn
	kinds  map[activity.Kind]bool // Nil passes every kind.
	queue  chan activity.Item
	closed chan struct{} // Closed by the reader once the peer goes away.
	logger zerolog.Logger
}

// Receive implements activity.Listener.  A full queue drops the socket rather than stall the hub.
func (s *activitySocket) Receive(item activity.Item) error {
	if s.kinds != nil && !s.kinds[item.Kind] {
		return nil
	}
	select {
	case s.queue <- item:
		return nil
	default:
		s.logger.Warn().Int("queued", len(s.queue)).Msg("Dropping slow activity listener")
		return errSlowListener
	}
}

// readLoop discards client messages until the connection fails or closes.
func (s *activitySocket) readLoop() {
	defer close(s.closed)
	s.conn.SetReadLimit(maxMessageSize)
	_ = s.conn.SetReadDeadline(time.Now().Add(pongWait))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	for {
		_, _, err := s.conn.ReadMessage()
		if err == nil {
			continue
		}
		if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure,
			websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
			s.logger.Warn().Err(err).Msg("Socket error")
		} else {
			s.logger.Debug().Msg("Closing socket")
		}
		return
	}
}

// writeLoop sends queued items and keepalive pings until the reader finishes or a write fails.
func (s *activitySocket) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()
	for {
		var err error
		select {
		case item := <-s.queue:
			err = s.write(func() error {
				return s.conn.WriteJSON(activityModel(item, time.Now()))
			})
		case <-ticker.C:
			err = s.write(func() error {
				return s.conn.WriteMessage(websocket.PingMessage, nil)
			})
		case <-s.closed:
			_ = s.write(func() error {
				return s.conn.WriteMessage(websocket.CloseMessage, nil)
			})
			return
		}
		if err != nil {
			s.logger.Debug().Err(err).Msg("Write failed")
			return
		}
	}
}

func (s *activitySocket) write(f func() error) error {
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return f()
}

// parseKinds reads the comma separated kind filter, an empty value selects every kind.
func parseKinds(value string) (map[activity.Kind]bool, error) {
	if value == "" {
		return nil, nil
	}
	kinds := make(map[activity.Kind]bool)
	for _, k := range strings.Split(value, ",") {
		kind := activity.Kind(strings.TrimSpace(k))
		switch kind {
		case activity.KindMail, activity.KindSecurity, activity.KindSystem, activity.KindUser:
			kinds[kind] = true
		default:
			return nil, fmt.Errorf("unknown activity kind: %q", k)
		}
	}
	return kinds, nil
}

// MonitorActivityV1 is a web handler which upgrades the connection to a websocket and sends the
// activity history followed by new items as they happen.  The optional kind query parameter limits
// the items sent.
func MonitorActivityV1(w http.ResponseWriter, req *http.Request, ctx *web.Context) (err error) {
	kinds, err := parseKinds(req.URL.Query().Get("kind"))
	if err != nil {
		return web.RenderJSONStatus(w, http.StatusBadRequest, &model.JSONErrorV1{Error: err.Error()})
	}
	conn, err := upgrader.Upgrade(w, req, nil)
	if err != nil {
		return err
	}
	web.ExpWebSocketConnectsCurrent.Add(1)
	defer func() {
		_ = conn.Close()
		web.ExpWebSocketConnectsCurrent.Add(-1)
	}()

	s := &activitySocket{
		conn:   conn,
		kinds:  kinds,
		queue:  make(chan activity.Item, socketQueueLen),
		closed: make(chan struct{}),
		logger: log.With().Str("module", "rest").Str("proto", "WebSocket").
			Str("remote", conn.RemoteAddr().String()).Logger(),
	}
	s.logger.Debug().Msg("Upgraded to WebSocket")

	// The hub plays back its history before any new items.
	ctx.Activity.AddListener(s)
	defer ctx.Activity.RemoveListener(s)
	go s.readLoop()
	s.writeLoop()
	return nil
}
