package report

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"MyGens/internal/calc/sizing"
	"MyGens/internal/i18n"
)

type Handler struct {
	Calculator *sizing.Calculator
	Bundle     *i18n.Bundle
}

func (h *Handler) PDF(w http.ResponseWriter, r *http.Request) {
	in, res, tr, ok := h.prepare(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", "attachment; filename=\"sizing-proposal.pdf\"")
	if err := WritePDF(w, in, res, tr, time.Now()); err != nil {
		slog.Error("pdf report", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
	}
}

func (h *Handler) XLSX(w http.ResponseWriter, r *http.Request) {
	in, res, tr, ok := h.prepare(w, r)
	if !ok {
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", "attachment; filename=\"sizing-proposal.xlsx\"")
	if err := WriteXLSX(w, in, res, tr); err != nil {
		slog.Error("xlsx report", "error", err)
		http.Error(w, "Report generation error", http.StatusInternalServerError)
	}
}

func (h *Handler) prepare(w http.ResponseWriter, r *http.Request) (Input, sizing.Result, i18n.Translator, bool) {
	var input Input
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return input, sizing.Result{}, i18n.Translator{}, false
	}
	res, err := h.Calculator.Calculate(input.Sizing)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return input, sizing.Result{}, i18n.Translator{}, false
	}

	lang, ok := i18n.Parse(input.Lang)
	if !ok {
		lang = h.Bundle.FromRequest(r)
	}
	return input, res, h.Bundle.Translator(lang), true
}
