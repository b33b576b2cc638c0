// Package web renders the public site: landing page, sizing wizard and
// support form.
package web

import (
	"bytes"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"MyGens/internal/calc/sizing"
	"MyGens/internal/i18n"
	"MyGens/internal/support"
	"MyGens/internal/wizard"

	"github.com/dustin/go-humanize"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

var pages = template.Must(template.New("").Funcs(template.FuncMap{
	"kw": func(v float64) string { return humanize.FormatFloat("#,###.##", v) + " kW" },
	"pct": func(v, max float64) string {
		if max <= 0 {
			return "0"
		}
		return strconv.FormatFloat(v/max*100, 'f', 1, 64)
	},
}).ParseFS(templateFS, "templates/*.html"))

type Handler struct {
	Bundle     *i18n.Bundle
	Calculator *sizing.Calculator
	Support    *support.Service
}

type page struct {
	Tr     i18n.Translator
	Lang   i18n.Lang
	Active string
	Path   string
	Year   int
}

func (h *Handler) page(r *http.Request, active string) page {
	lang := h.Bundle.FromRequest(r)
	return page{
		Tr:     h.Bundle.Translator(lang),
		Lang:   lang,
		Active: active,
		Path:   r.URL.RequestURI(),
		Year:   time.Now().Year(),
	}
}

// Static serves the embedded stylesheet under /static/.
func Static() http.Handler {
	sub, _ := fs.Sub(staticFS, "static")
	return http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
}

func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	render(w, http.StatusOK, "index.html", h.page(r, "home"))
}

type supportPage struct {
	page
	Status string
	Form   support.Request
}

func (h *Handler) SupportForm(w http.ResponseWriter, r *http.Request) {
	render(w, http.StatusOK, "support.html", supportPage{page: h.page(r, "support")})
}

func (h *Handler) SupportSubmit(w http.ResponseWriter, r *http.Request) {
	data := supportPage{page: h.page(r, "support")}
	req := support.Request{
		Name:    r.FormValue("name"),
		Email:   r.FormValue("email"),
		Message: r.FormValue("message"),
	}

	_, err := h.Support.Submit(r.Context(), req)
	switch {
	case errors.Is(err, support.ErrMissingFields):
		data.Status = "error"
		data.Form = req
		render(w, http.StatusBadRequest, "support.html", data)
	case err != nil:
		slog.Error("support form", "error", err)
		http.Error(w, "Could not submit the request", http.StatusInternalServerError)
	default:
		data.Status = "success"
		render(w, http.StatusOK, "support.html", data)
	}
}

// ToggleLanguage flips the stored language and sends the visitor back to
// the page they came from.
func (h *Handler) ToggleLanguage(w http.ResponseWriter, r *http.Request) {
	i18n.Remember(w, h.Bundle.FromRequest(r).Toggle())
	http.Redirect(w, r, localPath(r.FormValue("next")), http.StatusSeeOther)
}

// localPath keeps redirects on this site.
func localPath(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return "/"
	}
	return next
}

type option struct {
	Value    string
	Label    string
	Selected bool
}

type deviceRow struct {
	ID        string
	Label     string
	RunningKW float64
	Count     int
}

type sizingPage struct {
	page
	Step         wizard.Step
	Method       wizard.Method
	PrevURL      string
	Result       sizing.Result
	Devices      []deviceRow
	StartMethods []option
}

func (h *Handler) Sizing(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	state := wizard.FromQuery(q)
	data := sizingPage{
		page:    h.page(r, "sizing"),
		Step:    state.Step,
		Method:  state.Method,
		PrevURL: wizardURL(state.Prev()),
	}

	if state.Step == wizard.StepLoads {
		res, err := h.Calculator.Calculate(h.formInput(state, q))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		data.Result = res
		for _, d := range res.Devices {
			data.Devices = append(data.Devices, deviceRow{
				ID:        d.ID,
				Label:     translated(data.Tr, "sizingTool.devices."+d.ID, d.Name),
				RunningKW: d.RunningKW,
				Count:     d.Count,
			})
		}
		if res.Industrial != nil {
			for _, m := range []sizing.StartMethod{sizing.StartDOL, sizing.StartStarDelta, sizing.StartSoft, sizing.StartVFD} {
				data.StartMethods = append(data.StartMethods, option{
					Value:    string(m),
					Label:    data.Tr.T("sizingTool.industrial.methods." + string(m)),
					Selected: m == res.Industrial.StartMethod,
				})
			}
		}
	}
	render(w, http.StatusOK, "sizing.html", data)
}

// formInput reads the load form. Until a device field is submitted the
// catalog default counts apply.
func (h *Handler) formInput(state wizard.State, q url.Values) sizing.Input {
	in := sizing.Input{
		Method:           string(state.Method),
		InstallationType: state.InstallationType,
		Phase:            sizing.Phase(q.Get("phase")),
		Industrial: sizing.IndustrialInput{
			BaseKW:      sizing.ParseKW(q.Get("base")),
			MotorKW:     sizing.ParseKW(q.Get("motor")),
			StartMethod: sizing.StartMethod(q.Get("start")),
		},
	}
	if q.Get("ats") == "off" {
		off := false
		in.ATS = &off
	}

	for _, d := range h.Calculator.Catalog() {
		countKey, kwKey := "count_"+d.ID, "kw_"+d.ID
		if !q.Has(countKey) && !q.Has(kwKey) {
			continue
		}
		sel := sizing.DeviceInput{ID: d.ID, Count: d.Count}
		if q.Has(countKey) {
			sel.Count, _ = strconv.Atoi(strings.TrimSpace(q.Get(countKey)))
		}
		if q.Has(kwKey) {
			v := sizing.ParseKW(q.Get(kwKey))
			sel.RunningKW = &v
		}
		in.Devices = append(in.Devices, sel)
	}
	return in
}

func wizardURL(s wizard.State) string {
	if q := s.Query().Encode(); q != "" {
		return "/sizing-tool?" + q
	}
	return "/sizing-tool"
}

func translated(tr i18n.Translator, key, fallback string) string {
	if v := tr.T(key); v != key {
		return v
	}
	return fallback
}

func render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		slog.Error("render page", "page", name, "error", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
