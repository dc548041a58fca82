package server

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"factory-monitor/internal/service"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 512
)

// wsObserver adapts a websocket connection to service.Observer.
type wsObserver struct {
	id         string
	conn       *websocket.Conn
	pingPeriod time.Duration
	pongWait   time.Duration

	writeMu   sync.Mutex
	closeOnce sync.Once
	done      chan struct{}

	logger zerolog.Logger
}

func newWSObserver(conn *websocket.Conn, pingPeriod time.Duration, logger zerolog.Logger) *wsObserver {
	if pingPeriod <= 0 {
		pingPeriod = 30 * time.Second
	}
	id := uuid.NewString()
	return &wsObserver{
		id:         id,
		conn:       conn,
		pingPeriod: pingPeriod,
		pongWait:   pingPeriod * 10 / 9,
		done:       make(chan struct{}),
		logger:     logger.With().Str("observer_id", id).Logger(),
	}
}

// ID returns the observer id.
func (o *wsObserver) ID() string {
	return o.id
}

// Send writes one text frame. The write deadline follows ctx.
func (o *wsObserver) Send(ctx context.Context, payload []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	o.writeMu.Lock()
	defer o.writeMu.Unlock()

	deadline, ok := ctx.Deadline()
	if !ok {
		deadline = time.Now().Add(writeWait)
	}
	if err := o.conn.SetWriteDeadline(deadline); err != nil {
		return err
	}
	return o.conn.WriteMessage(websocket.TextMessage, payload)
}

// Close sends a close frame and releases the connection. Safe to call more than once.
// It never takes writeMu, so it also unblocks a Send stuck on a slow peer.
func (o *wsObserver) Close() error {
	var err error
	o.closeOnce.Do(func() {
		close(o.done)
		msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
		_ = o.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		err = o.conn.Close()
	})
	return err
}

// closeWith rejects the observer with a specific close code.
func (o *wsObserver) closeWith(code int, text string) {
	o.closeOnce.Do(func() {
		close(o.done)
		msg := websocket.FormatCloseMessage(code, text)
		_ = o.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
		_ = o.conn.Close()
	})
}

// pingLoop keeps the connection alive until the observer is closed.
func (o *wsObserver) pingLoop(onFail func()) {
	ticker := time.NewTicker(o.pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-o.done:
			return
		case <-ticker.C:
			if err := o.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				o.logger.Debug().Err(err).Msg("ping failed")
				onFail()
				return
			}
		}
	}
}

// readPump discards client frames and calls onClose when the peer goes away.
func (o *wsObserver) readPump(onClose func()) {
	defer onClose()

	o.conn.SetReadLimit(maxMessageSize)
	_ = o.conn.SetReadDeadline(time.Now().Add(o.pongWait))
	o.conn.SetPongHandler(func(string) error {
		return o.conn.SetReadDeadline(time.Now().Add(o.pongWait))
	})

	for {
		if _, _, err := o.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				o.logger.Debug().Err(err).Msg("websocket read error")
			}
			return
		}
	}
}

// handleWebSocket upgrades the request and registers the connection as an observer.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.limiter != nil && !s.limiter.Allow() {
		s.logger.Warn().Str("remote", r.RemoteAddr).Msg("websocket connect rate exceeded")
		writeError(w, http.StatusTooManyRequests, "too many connection attempts")
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied with an HTTP error.
		s.logger.Debug().Err(err).Str("remote", r.RemoteAddr).Msg("websocket upgrade failed")
		return
	}

	obs := newWSObserver(conn, s.cfg.Broadcast.PingPeriod, s.logger)
	leave := func() { s.scheduler.Leave(obs.ID()) }

	if err := s.scheduler.Join(r.Context(), obs); err != nil {
		if errors.Is(err, service.ErrTooManyObservers) {
			obs.closeWith(websocket.CloseTryAgainLater, "too many observers")
		} else {
			_ = obs.Close()
		}
		s.logger.Warn().Err(err).Str("observer_id", obs.ID()).Msg("observer rejected")
		return
	}

	go obs.pingLoop(leave)
	go obs.readPump(leave)
}
