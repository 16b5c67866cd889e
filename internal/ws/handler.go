package ws

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"messenger/internal/chat"
	"messenger/internal/models"
	"messenger/internal/observability"
)

// Options tunes per-connection limits.
type Options struct {
	SendBuffer    int
	MaxFrameBytes int64
	WriteTimeout  time.Duration
}

// Handler upgrades HTTP requests and feeds decoded frames to the router.
type Handler struct {
	router *chat.Router
	hub    *Hub
	opts   Options
}

// NewHandler constructs a Handler.
func NewHandler(router *chat.Router, hub *Hub, opts Options) *Handler {
	if opts.SendBuffer <= 0 {
		opts.SendBuffer = 256
	}
	if opts.MaxFrameBytes <= 0 {
		opts.MaxFrameBytes = 64 << 10
	}
	if opts.WriteTimeout <= 0 {
		opts.WriteTimeout = 10 * time.Second
	}
	return &Handler{router: router, hub: hub, opts: opts}
}

var tracer = otel.Tracer("messenger/ws")

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// Handle upgrades the connection and starts its pumps.
func (h *Handler) Handle(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "ws.handshake")
	defer span.End()
	c.Request = c.Request.WithContext(ctx)

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	info := ConnInfo{
		ConnID:      newConnID(),
		IP:          observability.IPFromRequest(c.Request),
		RequestID:   observability.RequestIDFromRequest(c.Request),
		TraceID:     span.SpanContext().TraceID().String(),
		ConnectedAt: time.Now(),
	}
	span.SetAttributes(attribute.String("ws.conn_id", info.ConnID))

	client := newClient(conn, info, h.opts.SendBuffer, h.opts.WriteTimeout)
	h.hub.add(client)
	observability.IncWSActive(wsKind)
	publishWSEvent(ctx, info, "ws_connect", "")

	go client.writePump()
	go h.readPump(context.WithoutCancel(ctx), client)
}

func (h *Handler) readPump(ctx context.Context, client *Client) {
	var closeReason string
	defer func() {
		h.router.Disconnect(client)
		client.Close()
		h.hub.remove(client)
		observability.DecWSActive(wsKind)
		publishWSEvent(ctx, client.info, "ws_disconnect", closeReason)
	}()

	client.conn.SetReadLimit(h.opts.MaxFrameBytes)
	for {
		msgType, payload, err := client.conn.ReadMessage()
		if err != nil {
			closeReason = err.Error()
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) && !client.Closed() {
				publishWSEvent(ctx, client.info, "ws_error", closeReason)
			}
			return
		}
		if msgType != websocket.TextMessage {
			continue
		}

		name, cmd, err := decodeFrame(payload)
		if err != nil {
			code := chat.Code(chat.ErrValidation)
			switch {
			case errors.Is(err, errUnknownEvent):
				name = "unknown"
			case name == "":
				name = "malformed"
			}
			observability.IncCommandError(name, code)
			client.Send(models.Event{Name: models.EventSystemMessage, Data: models.Notice{Message: err.Error(), Code: code}})
			continue
		}
		observability.IncWSEvent(wsKind, name)
		_, span := tracer.Start(ctx, "ws."+name, trace.WithAttributes(attribute.String("ws.conn_id", client.ID())))
		if err := h.router.Dispatch(client, cmd); err != nil {
			span.SetAttributes(attribute.String("messenger.error_code", chat.Code(err)))
		}
		span.End()
	}
}
