package server

import (
	"encoding/json"
	"net/http"

	workspacev1 "livepreview/internal/gateway/api/workspacev1"
	"livepreview/internal/gateway/handler/rpc"
	"livepreview/internal/gateway/middleware"
	"livepreview/internal/preview"
)

const BridgePath = "/bridge/ws"

// Health reports readiness details on /healthz.
type Health func() map[string]any

func NewMux(
	workspaceHandler *rpc.WorkspaceHandler,
	bridgeHandler *rpc.BridgeHandler,
	interceptor *preview.Interceptor,
	health Health,
) http.Handler {
	mux := http.NewServeMux()

	// RPC Handlers
	mux.Handle(workspacev1.NewWorkspaceServiceHandler(workspaceHandler))

	// Preview
	mux.Handle(interceptor.Scope(), interceptor)
	if bridgeHandler != nil {
		mux.HandleFunc(BridgePath, bridgeHandler.HandleBridgeWS)
	}

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		body := map[string]any{"status": "ok"}
		if health != nil {
			for k, v := range health() {
				body[k] = v
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(body)
	})

	// Middleware
	return middleware.CORS(middleware.AccessLog(mux))
}
