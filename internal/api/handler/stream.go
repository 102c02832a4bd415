package handler

import (
	"context"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const streamWriteTimeout = 10 * time.Second

// liveView is a live read model owned by one websocket connection.
type liveView[T any] interface {
	Start(ctx context.Context) error
	Stop()
	Updates() <-chan T
}

// streamConn holds what every websocket endpoint shares.
type streamConn struct {
	// base is cancelled on server shutdown; hijacked websocket connections
	// are not tracked by the HTTP server.
	base           context.Context
	originPatterns []string
	open           prometheus.Gauge
	log            zerolog.Logger
}

// serveStream upgrades the request and writes every update of view as a
// JSON message until the peer leaves, the view closes or the server shuts
// down. Client messages are ignored. view is stopped on every path.
func serveStream[T, M any](c echo.Context, sc streamConn, view liveView[T], encode func(T) M) error {
	defer view.Stop()

	conn, err := websocket.Accept(c.Response(), c.Request(), &websocket.AcceptOptions{
		OriginPatterns: sc.originPatterns,
	})
	if err != nil {
		// Accept has already written the HTTP error.
		sc.log.Debug().Err(err).Msg("websocket upgrade failed")
		return nil
	}
	defer conn.CloseNow()

	sc.open.Inc()
	defer sc.open.Dec()

	// CloseRead cancels ctx when the peer goes away.
	ctx, cancel := context.WithCancel(conn.CloseRead(c.Request().Context()))
	defer cancel()
	stopOnShutdown := context.AfterFunc(sc.base, cancel)
	defer stopOnShutdown()

	if err := view.Start(ctx); err != nil {
		sc.log.Error().Err(err).Msg("stream start failed")
		conn.Close(websocket.StatusInternalError, "stream unavailable")
		return nil
	}
	sc.log.Debug().Msg("stream opened")

	for {
		select {
		case <-ctx.Done():
			if sc.base.Err() != nil {
				conn.Close(websocket.StatusGoingAway, "server shutting down")
			}
			sc.log.Debug().Msg("stream closed")
			return nil
		case update, ok := <-view.Updates():
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return nil
			}
			wctx, wcancel := context.WithTimeout(ctx, streamWriteTimeout)
			err := wsjson.Write(wctx, conn, encode(update))
			wcancel()
			if err != nil {
				sc.log.Debug().Err(err).Msg("stream write failed")
				return nil
			}
		}
	}
}
