package rest

import (
	"log/slog"
	"net/http"

	"github.com/heartmarshall/glossync/internal/netmon"
)

type networkMonitor interface {
	Status() netmon.Status
	Report(online bool)
	ReportLink(link netmon.LinkInfo)
}

// NetworkHandler exposes the network monitor and accepts client reports.
type NetworkHandler struct {
	monitor networkMonitor
	log     *slog.Logger
}

// NewNetworkHandler creates a NetworkHandler.
func NewNetworkHandler(monitor networkMonitor, logger *slog.Logger) *NetworkHandler {
	return &NetworkHandler{monitor: monitor, log: logger.With("handler", "network")}
}

type networkReport struct {
	Online *bool `json:"online"`
	netmon.LinkInfo
}

// Status handles GET /network.
func (h *NetworkHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.monitor.Status())
}

// Report handles PUT /network.
func (h *NetworkHandler) Report(w http.ResponseWriter, r *http.Request) {
	var req networkReport
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, h.log, err)
		return
	}
	h.monitor.ReportLink(req.LinkInfo)
	if req.Online != nil {
		h.monitor.Report(*req.Online)
	}
	writeJSON(w, http.StatusOK, h.monitor.Status())
}
