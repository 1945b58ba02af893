package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/fleetrics-io/fleetrics/internal/fleet/assistant"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/model"
	"github.com/fleetrics-io/fleetrics/internal/fleet/core/service"
	"github.com/fleetrics-io/fleetrics/internal/fleet/export"
	"github.com/fleetrics-io/fleetrics/internal/fleet/params"
	"github.com/fleetrics-io/fleetrics/pkg/log"
)

const archiveLinkExpiry = 24 * time.Hour

type api struct {
	session   *service.Session
	assistant *assistant.Client
	params    *params.Provider
	archive   core.ReportArchive
	logger    log.Logger
}

func (a *api) getFleet(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.session.Snapshot())
}

func (a *api) refreshFleet(w http.ResponseWriter, r *http.Request) {
	window := service.Window(r.URL.Query().Get("window"))
	if err := a.session.Refresh(r.Context(), window); err != nil {
		a.logger.Error(err, "Refresh failed")
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, a.session.Snapshot())
}

func (a *api) sortFleet(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Field string `json:"field"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	field, err := service.ParseSortField(body.Field)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	a.session.SortBy(field)
	writeJSON(w, http.StatusOK, a.session.Snapshot())
}

type tierRequest struct {
	Tier string `json:"tier"`

	// IDs limits a bulk classify; empty means the whole registry.
	IDs []string `json:"ids,omitempty"`
}

func (a *api) setVehicleTier(w http.ResponseWriter, r *http.Request) {
	var body tierRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tier, err := parseTier(body.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.session.SetTier(r.Context(), mux.Vars(r)["id"], tier); err != nil {
		a.classifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.session.Snapshot())
}

func (a *api) setFleetTier(w http.ResponseWriter, r *http.Request) {
	var body tierRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	tier, err := parseTier(body.Tier)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.session.SetTiers(r.Context(), body.IDs, tier); err != nil {
		a.classifyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, a.session.Snapshot())
}

// classifyError maps a failed persist to 502. The in-memory tiers already
// reflect the edit at this point; the client learns the durable write failed
// and may retry.
func (a *api) classifyError(w http.ResponseWriter, err error) {
	a.logger.Error(err, "Classification persist failed")
	if core.IsTransport(err) {
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeError(w, http.StatusInternalServerError, err)
}

func (a *api) getReport(w http.ResponseWriter, _ *http.Request) {
	data := export.CSV(a.session.Snapshot())
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (a *api) archiveReport(w http.ResponseWriter, r *http.Request) {
	if a.archive == nil {
		writeError(w, http.StatusNotImplemented, errors.New("report archiving is not configured"))
		return
	}
	snap := a.session.Snapshot()
	key := fmt.Sprintf("%s/%s-%s", snap.Window, time.Now().UTC().Format("20060102T150405Z"), export.Filename)
	url, err := a.archive.StoreReport(r.Context(), key, export.CSV(snap), archiveLinkExpiry)
	if err != nil {
		a.logger.Error(err, "Report archive failed")
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"objectKey": key, "url": url})
}

func (a *api) askAssistant(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Prompt string `json:"prompt"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if body.Prompt == "" {
		writeError(w, http.StatusBadRequest, errors.New("prompt must not be empty"))
		return
	}

	res, err := a.assistant.Ask(r.Context(), body.Prompt)
	if errors.Is(err, assistant.ErrBusy) {
		writeError(w, http.StatusConflict, err)
		return
	}
	// Terminal failures still carry a result; the outcome is reported as
	// panel content, not as a transport error.
	if res != nil {
		writeJSON(w, http.StatusOK, res)
		return
	}
	writeError(w, http.StatusBadGateway, err)
}

func (a *api) getParams(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, a.params.Current())
}

func (a *api) setTierParams(w http.ResponseWriter, r *http.Request) {
	tier, err := parseTier(mux.Vars(r)["tier"])
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	var tp model.TierParameters
	if err := json.NewDecoder(r.Body).Decode(&tp); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if err := a.params.SetTier(tier, tp); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	writeJSON(w, http.StatusOK, a.params.Current())
}

// parseTier is the strict variant for API input: unknown values are an
// error instead of the Light fallback the aggregation path uses.
func parseTier(s string) (model.Tier, error) {
	switch s {
	case "":
		return "", errors.New("tier is required")
	case "L", "Light", "light", "M", "Medium", "medium", "H", "Heavy", "heavy":
		return model.ParseTier(s), nil
	}
	return "", fmt.Errorf("unknown tier %q", s)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
