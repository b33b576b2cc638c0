package web

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MyGens/internal/calc/sizing"
	"MyGens/internal/i18n"
	"MyGens/internal/repo"
	"MyGens/internal/support"
	"MyGens/internal/wizard"
)

func newHandler(t *testing.T) *Handler {
	t.Helper()
	b, err := i18n.Load(i18n.English)
	require.NoError(t, err)
	return &Handler{
		Bundle:     b,
		Calculator: sizing.NewCalculator(nil),
		Support:    &support.Service{Repo: repo.Noop{}},
	}
}

func get(h http.HandlerFunc, target string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, target, nil))
	return rec
}

func TestIndex(t *testing.T) {
	h := newHandler(t)

	rec := get(h.Index, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Standby power, sized right")
	assert.Contains(t, rec.Body.String(), `lang="en"`)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(&http.Cookie{Name: i18n.CookieName, Value: "es"})
	rec = httptest.NewRecorder()
	h.Index(rec, req)
	assert.Contains(t, rec.Body.String(), "Energía de respaldo")

	assert.Equal(t, http.StatusNotFound, get(h.Index, "/missing").Code)
}

func TestSizingSteps(t *testing.T) {
	h := newHandler(t)

	body := get(h.Sizing, "/sizing-tool").Body.String()
	assert.Contains(t, body, "How would you like to size your generator?")
	assert.NotContains(t, body, "Previous step")

	body = get(h.Sizing, "/sizing-tool?method=visual").Body.String()
	assert.Contains(t, body, "What kind of installation is it?")
	assert.Contains(t, body, `href="/sizing-tool"`)
}

func TestSizingResidentialDefaults(t *testing.T) {
	h := newHandler(t)

	rec := get(h.Sizing, "/sizing-tool?method=engineering")
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "Air Conditioner")
	assert.Contains(t, body, "<dd>9 kW</dd>")
	assert.Contains(t, body, "<dd>56 %</dd>")
	assert.Contains(t, body, "<dd>38 A</dd>")
	assert.Contains(t, body, "<dd>100 A</dd>")
	assert.Contains(t, body, "<dd>Standby</dd>")
	assert.Contains(t, body, `href="/sizing-tool?method=engineering&amp;step=2"`)

	body = get(h.Sizing, "/sizing-tool?method=engineering&step=2").Body.String()
	assert.Contains(t, body, "What kind of installation is it?")
	assert.Contains(t, body, `href="/sizing-tool?method=engineering&amp;type=industrial"`)
}

func TestSizingIndustrialForm(t *testing.T) {
	h := newHandler(t)

	q := url.Values{"method": {"visual"}, "type": {"industrial"}, "base": {"20"}, "motor": {"10"}, "start": {"VFD"}, "ats": {"off"}}
	body := get(h.Sizing, "/sizing-tool?"+q.Encode()).Body.String()
	assert.Contains(t, body, "<dd>38 kW</dd>")
	assert.Contains(t, body, "<dd>46 A</dd>")
	assert.Contains(t, body, "480/277 V")
	assert.Contains(t, body, "<dd>Prime</dd>")
	assert.Contains(t, body, `<option value="VFD" selected>`)
}

func TestFormInputDevices(t *testing.T) {
	h := newHandler(t)
	q := url.Values{"count_ac": {"2"}, "kw_ac": {"-3"}, "count_waterPump": {"1"}}

	in := h.formInput(wizardState(t, "method=engineering"), q)
	require.Len(t, in.Devices, 2)
	assert.Equal(t, 2, in.Devices[0].Count)
	require.NotNil(t, in.Devices[0].RunningKW)
	assert.Zero(t, *in.Devices[0].RunningKW)
	assert.Equal(t, "waterPump", in.Devices[1].ID)
	assert.Nil(t, in.ATS)
}

func TestSupportForm(t *testing.T) {
	h := newHandler(t)

	assert.Contains(t, get(h.SupportForm, "/support").Body.String(), `name="email"`)

	form := url.Values{"name": {"Ana"}, "email": {""}, "message": {"hi"}}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/support", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.SupportSubmit(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Please fill in every field.")
	assert.Contains(t, rec.Body.String(), `value="Ana"`)

	form.Set("email", "ana@example.com")
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/support", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.SupportSubmit(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Thanks! Your message has been received.")
}

func TestToggleLanguage(t *testing.T) {
	h := newHandler(t)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/lang/toggle", strings.NewReader("next=%2Fsupport"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	h.ToggleLanguage(rec, req)

	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/support", rec.Header().Get("Location"))
	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "es", cookies[0].Value)
}

func TestLocalPath(t *testing.T) {
	for in, want := range map[string]string{
		"/sizing-tool?method=visual": "/sizing-tool?method=visual",
		"":                           "/",
		"https://evil.example":       "/",
		"//evil.example":             "/",
		"/\\evil.example":            "/",
	} {
		assert.Equal(t, want, localPath(in), in)
	}
}

func TestStatic(t *testing.T) {
	rec := httptest.NewRecorder()
	Static().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/style.css", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "--accent")
}

func wizardState(t *testing.T, raw string) wizard.State {
	t.Helper()
	q, err := url.ParseQuery(raw)
	require.NoError(t, err)
	return wizard.FromQuery(q)
}
