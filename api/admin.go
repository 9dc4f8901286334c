package api

import (
	"crypto/subtle"
	"net/http"

	"github.com/yogitrack/studio/seed"
)

// SeedTokenHeader carries the demo seed token in production.
const SeedTokenHeader = "X-Demo-Seed-Token"

// SeedRequest is the body of POST /api/admin/seed.
type SeedRequest struct {
	Module string `json:"module"`
}

// Seed reloads demo data for one module or all of them.
// POST /api/admin/seed
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	if h.cfg.Production() && !h.seedTokenOK(r) {
		writeError(w, http.StatusForbidden, "Seeding disabled in production.", nil)
		return
	}

	var req SeedRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	module, err := seed.ParseModule(req.Module)
	if err != nil {
		allowed := make([]string, len(seed.Modules))
		for i, m := range seed.Modules {
			allowed[i] = string(m)
		}
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Message: "Invalid module", Allowed: allowed})
		return
	}

	data, err := seed.Demo()
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Seed failed", err)
		return
	}
	sum, err := seed.Load(r.Context(), h.svc.Store(), data, module, h.log)
	if err != nil {
		h.log.WithError(err).WithField("module", module).Error("seed failed")
		writeError(w, http.StatusInternalServerError, "Seed failed", err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message": "Seed completed",
		"module":  module,
		"summary": sum,
	})
}

func (h *Handler) seedTokenOK(r *http.Request) bool {
	want := h.cfg.DemoSeedToken
	got := r.Header.Get(SeedTokenHeader)
	return want != "" && subtle.ConstantTimeCompare([]byte(want), []byte(got)) == 1
}
