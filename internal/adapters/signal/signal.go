package signal

import (
	"context"
	"errors"
	"net/http"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/bingbing01121-art/live-test/internal/app"
	"github.com/bingbing01121-art/live-test/internal/config"
	"github.com/bingbing01121-art/live-test/internal/core"
)

var ErrBackpressure = errors.New("backpressure")

// Controller owns the websocket side of the signaling protocol: upgrade,
// pumps, envelope dispatch. All state lives in the orchestrator.
type Controller struct {
	Orch    *app.Orchestrator
	Cfg     *config.Config
	Limiter *app.AttemptLimiter
}

func NewController(orch *app.Orchestrator, cfg *config.Config, limiter *app.AttemptLimiter) *Controller {
	return &Controller{Orch: orch, Cfg: cfg, Limiter: limiter}
}

// WsSignalConn implements core.SignalConnection over a gorilla conn with a
// buffered send channel; a full buffer drops the frame instead of blocking.
type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return errors.New("connection closed")
	}
	select {
	case c.send <- f:
	default:
		return ErrBackpressure
	}
	return nil
}

func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	_ = c.conn.Close()
	c.mu.Unlock()
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// HandleSignal upgrades the request and starts the per-connection pumps. The
// client token cookie only correlates log lines across reconnects; identity
// is whatever the register message binds.
func (ctl *Controller) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	ws.SetReadLimit(ctl.Cfg.ReadLimit)

	conn := &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, 32),
	}

	cid := ctl.Orch.Connect(conn)
	log.Info().Str("module", "signal").Str("cid", string(cid)).Str("token", token).Msg("new WS connection")

	ctx, cancel := context.WithCancel(ctx)
	go ctl.writePump(ctx, conn)
	go ctl.readPump(ctx, cancel, cid, conn)
}
