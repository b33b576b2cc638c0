package sizing

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"MyGens/internal/repo"
)

type Handler struct {
	Calculator *Calculator
	Repo       repo.Repository
}

func (h *Handler) Catalog(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"devices": h.Calculator.Catalog()})
}

func (h *Handler) Calc(w http.ResponseWriter, r *http.Request) {
	_, res, ok := h.decodeAndCalculate(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}

// Save calculates and records the run in sizing_results.
func (h *Handler) Save(w http.ResponseWriter, r *http.Request) {
	input, res, ok := h.decodeAndCalculate(w, r)
	if !ok {
		return
	}

	rec, err := Record(input.Method, res)
	if err != nil {
		http.Error(w, "Encoding error", http.StatusInternalServerError)
		return
	}
	saved, err := h.Repo.SaveSizing(r.Context(), rec)
	if err != nil {
		slog.Error("save sizing", "error", err)
		http.Error(w, "DB error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(map[string]any{"id": saved.ID, "result": res})
}

func (h *Handler) decodeAndCalculate(w http.ResponseWriter, r *http.Request) (Input, Result, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return input, Result{}, false
	}
	res, err := h.Calculator.Calculate(input)
	if errors.Is(err, ErrInstallationType) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return input, Result{}, false
	}
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return input, Result{}, false
	}
	return input, res, true
}

// Record flattens a result into the stored sizing row.
func Record(method string, res Result) (repo.SizingRecord, error) {
	if method == "" {
		method = "engineering"
	}
	var payload any = res.Devices
	if res.Industrial != nil {
		payload = res.Industrial
	}
	devices, err := json.Marshal(payload)
	if err != nil {
		return repo.SizingRecord{}, err
	}
	return repo.SizingRecord{
		Method:           method,
		InstallationType: string(res.InstallationType),
		Devices:          devices,
		ATSEnabled:       res.ATS,
		RunningLoad:      res.Loads.RunningLoad,
		PeakLoad:         res.Loads.PeakLoad,
		RecommendedKW:    res.RecommendedKW,
	}, nil
}
