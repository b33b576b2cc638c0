package importer

import (
	"encoding/json"
	"errors"
	"net/http"

	"MyGens/internal/calc/sizing"
)

const maxUpload = 8 << 20

type Handler struct {
	Calculator *sizing.Calculator
}

type ImportResult struct {
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Result   sizing.Result `json:"result"`
}

func (h *Handler) Sizing(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUpload)
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "File required", http.StatusBadRequest)
		return
	}
	defer file.Close()

	sheet, err := Parse(file)
	if errors.Is(err, ErrEmptySheet) {
		http.Error(w, "Empty sheet", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "Invalid file", http.StatusBadRequest)
		return
	}
	if len(sheet.Devices) == 0 {
		http.Error(w, "No valid rows", http.StatusBadRequest)
		return
	}

	res, err := h.Calculator.Calculate(sizing.Input{
		Method:           "import",
		InstallationType: sizing.Residential,
		Phase:            sizing.Phase(r.FormValue("phase")),
		Devices:          sheet.Devices,
	})
	if err != nil {
		http.Error(w, "Calculation error", http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(ImportResult{Imported: len(sheet.Devices), Skipped: sheet.Skipped, Result: res})
}
