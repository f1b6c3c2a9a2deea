package alerts

import (
	"net/http"

	"github.com/dawadesk/backend-pharmacy/internal/common"
)

// Handler exposes on-demand inventory scans over HTTP.
type Handler struct {
	Svc *Service
}

// Scan runs an inventory scan and returns the flagged batches.
func (h *Handler) Scan(w http.ResponseWriter, r *http.Request) {
	report, err := h.Svc.Scan(r.Context())
	if err != nil {
		common.Fail(w, common.CodeInternal, "inventory scan failed", nil)
		return
	}
	common.JSONData(w, http.StatusOK, report)
}
