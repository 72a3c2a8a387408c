package rpc

import (
	"net/http"

	"github.com/sirupsen/logrus"

	"livepreview/internal/preview/bridge"
)

// BridgeHandler accepts the websocket of a remote document context and
// binds it to the preview bridge client. A newer connection replaces an
// older one.
type BridgeHandler struct {
	client *bridge.Client
}

func NewBridgeHandler(client *bridge.Client) *BridgeHandler {
	return &BridgeHandler{client: client}
}

func (h *BridgeHandler) HandleBridgeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := bridge.Upgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	if err := bridge.ServeConn(r.Context(), conn, h.client); err != nil {
		logrus.WithError(err).WithField("component", "bridge.ws").Debug("bridge connection ended")
	}
}
