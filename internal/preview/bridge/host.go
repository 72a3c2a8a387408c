package bridge

import (
	"context"

	"github.com/sirupsen/logrus"

	"livepreview/internal/vfs"
)

// Host is the document side of the bridge. It answers requests from the
// store it owns and never mutates it.
type Host struct {
	store *vfs.Store
	log   *logrus.Entry
}

func NewHost(store *vfs.Store) *Host {
	return &Host{store: store, log: logrus.WithField("component", "bridge.host")}
}

// Handle answers a request. Messages that are not requests yield false.
func (h *Host) Handle(msg Message) (Message, bool) {
	switch msg.Type {
	case TypeRequestFile:
		return h.file(msg), true
	case TypeRequestEntry:
		return h.entry(msg), true
	default:
		return Message{}, false
	}
}

func (h *Host) file(req Message) Message {
	resp := Message{Type: TypeResponseFile, RequestID: req.RequestID}
	f, ok := h.store.FindLoose(req.Path)
	if !ok {
		resp.Error = "File not found: " + req.Path
		h.log.WithFields(logrus.Fields{"path": req.Path, "request_id": req.RequestID}).Debug("file miss")
		return resp
	}
	resp.Found = true
	resp.Content = f.Content
	resp.ResolvedPath = f.Path
	if vfs.IsScript(f.Path) {
		resp.ResolvedImports = h.store.ResolveImports(f.Path)
	}
	return resp
}

func (h *Host) entry(req Message) Message {
	resp := Message{Type: TypeResponseEntry, RequestID: req.RequestID}
	p, ok := h.store.ResolveEntry()
	if !ok {
		resp.Error = "no entry point"
		return resp
	}
	resp.Found = true
	resp.ResolvedPath = p
	return resp
}

// LocalTransport delivers requests to a Host in the same process. Each
// request is answered on its own goroutine, as the browser would post it.
type LocalTransport struct {
	host    *Host
	deliver func(Message) bool
}

func (t *LocalTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	go func() {
		if resp, ok := t.host.Handle(msg); ok {
			t.deliver(resp)
		}
	}()
	return nil
}

// Connect attaches host to client through a LocalTransport.
func Connect(client *Client, host *Host) func() {
	return client.Attach(&LocalTransport{host: host, deliver: client.Deliver})
}
