package importer

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"MyGens/internal/calc/sizing"
)

func workbook(t *testing.T, rows [][]any) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	_, err := f.WriteTo(&buf)
	require.NoError(t, err)
	return buf.Bytes()
}

var sample = [][]any{
	{"id", "running_kw", "alpha", "count"},
	{"ac", "2.5", "3", "1"},
	{"refrigerator", "1.2", "", "1"},
	{"welder", "3", "2", "1"},
	{"broken", "x", "1", "1"},
	{"short", "1"},
	{},
	{"lighting", "0.3", "1", "-2"},
}

func TestParse(t *testing.T) {
	sheet, err := Parse(bytes.NewReader(workbook(t, sample)))
	require.NoError(t, err)
	require.Len(t, sheet.Devices, 3)
	assert.Equal(t, 3, sheet.Skipped)

	ac := sheet.Devices[0]
	assert.Equal(t, "ac", ac.ID)
	require.NotNil(t, ac.RunningKW)
	assert.Equal(t, 2.5, *ac.RunningKW)
	require.NotNil(t, ac.Alpha)
	assert.Equal(t, 3.0, *ac.Alpha)
	assert.Nil(t, sheet.Devices[1].Alpha)
}

func TestParseEmpty(t *testing.T) {
	_, err := Parse(bytes.NewReader(workbook(t, [][]any{{"id", "running_kw", "alpha", "count"}})))
	assert.ErrorIs(t, err, ErrEmptySheet)

	_, err = Parse(strings.NewReader("not a workbook"))
	assert.Error(t, err)
}

func upload(t *testing.T, data []byte, phase string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	if data != nil {
		fw, err := mw.CreateFormFile("file", "loads.xlsx")
		require.NoError(t, err)
		_, err = fw.Write(data)
		require.NoError(t, err)
	}
	if phase != "" {
		require.NoError(t, mw.WriteField("phase", phase))
	}
	require.NoError(t, mw.Close())
	req := httptest.NewRequest(http.MethodPost, "/api/tools/sizing/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestHandler(t *testing.T) {
	h := &Handler{Calculator: sizing.NewCalculator(nil)}

	rec := httptest.NewRecorder()
	h.Sizing(rec, upload(t, workbook(t, sample), "3ph"))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	assert.Equal(t, 3, out.Imported)
	assert.Equal(t, 3, out.Skipped)
	assert.Equal(t, sizing.ThreePhase, out.Result.Phase)
	// ac 2.5 + refrigerator 1.2 + welder 3 running; ac surge dominates
	assert.Equal(t, 6.7, out.Result.Loads.RunningLoad)
	assert.Equal(t, 11.7, out.Result.Loads.PeakLoad)
}

func TestHandlerErrors(t *testing.T) {
	h := &Handler{Calculator: sizing.NewCalculator(nil)}

	rec := httptest.NewRecorder()
	h.Sizing(rec, upload(t, nil, ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Sizing(rec, upload(t, []byte("garbage"), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	h.Sizing(rec, upload(t, workbook(t, [][]any{{"id"}, {"bad", "x", "", "1"}}), ""))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandlerMatchesCatalogNames(t *testing.T) {
	h := &Handler{Calculator: sizing.NewCalculator(nil)}
	rows := [][]any{
		{"name", "running_kw", "alpha", "count"},
		{"Air Conditioner", "2.5", "", "1"},
	}

	rec := httptest.NewRecorder()
	h.Sizing(rec, upload(t, workbook(t, rows), ""))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var out ImportResult
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&out))
	require.Len(t, out.Result.Devices, 4)
	assert.Equal(t, "ac", out.Result.Devices[0].ID)
	assert.Equal(t, 3.0, out.Result.Devices[0].Alpha)
	assert.Equal(t, 7.5, out.Result.Loads.PeakLoad)
}
