package batch

import (
	"encoding/json"
	"net/http"

	"MyGens/internal/calc/sizing"
)

type Handler struct {
	Calculator *sizing.Calculator
}

func (h *Handler) Sizing(w http.ResponseWriter, r *http.Request) {
	var input BatchInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	res, err := Calculate(h.Calculator, input)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(res)
}
