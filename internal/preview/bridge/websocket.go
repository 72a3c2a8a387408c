package bridge

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

const (
	wsWriteWait = 10 * time.Second
	wsPongWait  = 60 * time.Second
	wsPingEvery = (wsPongWait * 9) / 10
	wsQueueSize = 64
)

var errConnClosed = errors.New("bridge: websocket closed")

var Upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin: func(_ *http.Request) bool {
		return true
	},
}

type wsTransport struct {
	writeCh chan Message
	done    <-chan struct{}
}

func (t *wsTransport) Send(ctx context.Context, msg Message) error {
	select {
	case t.writeCh <- msg:
		return nil
	case <-t.done:
		return errConnClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ServeConn attaches a remote document context speaking over conn to client
// and pumps replies into it until the connection drops or ctx ends.
func ServeConn(ctx context.Context, conn *websocket.Conn, client *Client) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := conn.SetReadDeadline(time.Now().Add(wsPongWait)); err != nil {
		return err
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(wsPongWait))
	})

	writeCh := make(chan Message, wsQueueSize)
	writerDone := runWriter(ctx, conn, writeCh, true)
	detach := client.Attach(&wsTransport{writeCh: writeCh, done: writerDone})
	defer detach()

	log := logrus.WithFields(logrus.Fields{"component": "bridge.ws", "remote": conn.RemoteAddr().String()})
	log.Info("document context connected")
	defer log.Info("document context disconnected")

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			cancel()
			<-writerDone
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		client.Deliver(msg)
	}
}

// ServeHost answers requests arriving on conn from host until the
// connection drops or ctx ends. It is the document side of ServeConn.
func ServeHost(ctx context.Context, conn *websocket.Conn, host *Host) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	writeCh := make(chan Message, wsQueueSize)
	writerDone := runWriter(ctx, conn, writeCh, false)
	go func() {
		<-ctx.Done()
		_ = conn.Close()
	}()

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			cancel()
			<-writerDone
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}
		resp, ok := host.Handle(msg)
		if !ok {
			continue
		}
		select {
		case writeCh <- resp:
		case <-writerDone:
		}
	}
}

// DialHost connects host to a bridge endpoint and serves it.
func DialHost(ctx context.Context, url string, host *Host) error {
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()
	return ServeHost(ctx, conn, host)
}

func runWriter(ctx context.Context, conn *websocket.Conn, writeCh <-chan Message, ping bool) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)
		var tick <-chan time.Time
		if ping {
			ticker := time.NewTicker(wsPingEvery)
			defer ticker.Stop()
			tick = ticker.C
		}
		for {
			select {
			case <-ctx.Done():
				return
			case out := <-writeCh:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteJSON(out); err != nil {
					return
				}
			case <-tick:
				if err := conn.SetWriteDeadline(time.Now().Add(wsWriteWait)); err != nil {
					return
				}
				if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
					return
				}
			}
		}
	}()
	return done
}
