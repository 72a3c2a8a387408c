package bridge

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const DefaultTimeout = 5 * time.Second

// Transport delivers a request to the document context. Replies come back
// through Client.Deliver.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// Client is the interceptor side of the bridge. Each request owns one
// pending entry which is removed when the request returns, whatever the
// outcome.
type Client struct {
	mu        sync.Mutex
	transport Transport
	token     uint64
	pending   map[string]chan Message
	timeout   time.Duration
	log       *logrus.Entry
}

func NewClient(timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		pending: make(map[string]chan Message),
		timeout: timeout,
		log:     logrus.WithField("component", "bridge.client"),
	}
}

// Attach makes t the active document context, replacing any previous one.
// The returned func detaches t if it is still the active transport.
func (c *Client) Attach(t Transport) func() {
	c.mu.Lock()
	c.token++
	token := c.token
	c.transport = t
	c.mu.Unlock()
	c.log.Debug("document context attached")

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if c.token == token {
				c.transport = nil
				c.log.Debug("document context detached")
			}
		})
	}
}

func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.transport != nil
}

// Pending reports in-flight requests.
func (c *Client) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.pending)
}

// RequestFile asks the document context for path, which it resolves loosely.
func (c *Client) RequestFile(ctx context.Context, path string) (File, error) {
	resp, err := c.roundTrip(ctx, Message{Type: TypeRequestFile, Path: path})
	if err != nil {
		return File{}, fmt.Errorf("request %s: %w", path, err)
	}
	if !resp.Found {
		return File{}, &NotFoundError{Path: path, Reason: resp.Error}
	}
	resolved := resp.ResolvedPath
	if resolved == "" {
		resolved = path
	}
	return File{Path: resolved, Content: resp.Content, Imports: resp.ResolvedImports}, nil
}

// RequestEntry asks the document context which module boots the preview.
func (c *Client) RequestEntry(ctx context.Context) (string, error) {
	resp, err := c.roundTrip(ctx, Message{Type: TypeRequestEntry})
	if err != nil {
		return "", fmt.Errorf("request entry: %w", err)
	}
	if !resp.Found || resp.ResolvedPath == "" {
		return "", &NotFoundError{Path: "entry point", Reason: resp.Error}
	}
	return resp.ResolvedPath, nil
}

// Deliver routes a reply to its waiting request. Replies for unknown or
// already settled ids are dropped and reported as false.
func (c *Client) Deliver(msg Message) bool {
	if !msg.Type.IsResponse() {
		return false
	}
	c.mu.Lock()
	ch, ok := c.pending[msg.RequestID]
	if ok {
		delete(c.pending, msg.RequestID)
	}
	c.mu.Unlock()
	if !ok {
		c.log.WithField("request_id", msg.RequestID).Debug("dropping reply for unknown request")
		return false
	}
	ch <- msg
	return true
}

func (c *Client) roundTrip(ctx context.Context, msg Message) (Message, error) {
	c.mu.Lock()
	t := c.transport
	if t == nil {
		c.mu.Unlock()
		return Message{}, ErrNoClient
	}
	id := uuid.NewString()
	ch := make(chan Message, 1)
	c.pending[id] = ch
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	msg.RequestID = id
	if err := t.Send(ctx, msg); err != nil {
		return Message{}, fmt.Errorf("send %s: %w", msg.Type, err)
	}

	select {
	case resp := <-ch:
		return resp, nil
	case <-ctx.Done():
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			c.log.WithFields(logrus.Fields{"request_id": id, "path": msg.Path}).Warn("bridge request timed out")
			return Message{}, ErrTimeout
		}
		return Message{}, ctx.Err()
	}
}
