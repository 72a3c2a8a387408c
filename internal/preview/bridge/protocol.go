// Package bridge carries file requests from the preview interceptor to the
// context that owns the workspace store, correlating each reply by id.
package bridge

import (
	"errors"
	"fmt"
)

type MessageType string

const (
	TypeRequestFile   MessageType = "REQUEST_FILE"
	TypeResponseFile  MessageType = "RESPONSE_FILE"
	TypeRequestEntry  MessageType = "REQUEST_ENTRY"
	TypeResponseEntry MessageType = "RESPONSE_ENTRY"
)

func (t MessageType) IsResponse() bool {
	return t == TypeResponseFile || t == TypeResponseEntry
}

// Message is the single wire shape for every bridge exchange.
type Message struct {
	Type         MessageType `json:"type"`
	RequestID    string      `json:"requestId"`
	Path         string      `json:"path,omitempty"`
	Found        bool        `json:"found"`
	Content      string      `json:"content,omitempty"`
	Error        string      `json:"error,omitempty"`
	ResolvedPath string      `json:"resolvedPath,omitempty"`
	// ResolvedImports maps each local specifier of the returned file to its
	// canonical path, so the interceptor can rewrite without a store.
	ResolvedImports map[string]string `json:"resolvedImports,omitempty"`
}

var (
	ErrNoClient = errors.New("bridge: no document context attached")
	ErrTimeout  = errors.New("bridge: timed out awaiting response")
	ErrNotFound = errors.New("bridge: file not found")
)

// NotFoundError reports a miss along with the host's explanation.
type NotFoundError struct {
	Path   string
	Reason string
}

func (e *NotFoundError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Reason)
	}
	return "file not found: " + e.Path
}

func (e *NotFoundError) Unwrap() error { return ErrNotFound }

// File is a resolved reply to a file request.
type File struct {
	Path    string
	Content string
	Imports map[string]string
}
