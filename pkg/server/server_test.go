package server

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/matzehuels/pixelsort/pkg/cache"
	"github.com/matzehuels/pixelsort/pkg/core/pixel"
	"github.com/matzehuels/pixelsort/pkg/errors"
	"github.com/matzehuels/pixelsort/pkg/imageio"
	"github.com/matzehuels/pixelsort/pkg/pipeline"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	c, err := cache.NewFileCache(t.TempDir())
	require.NoError(t, err)
	logger := log.NewWithOptions(io.Discard, log.Options{})
	srv := httptest.NewServer(New(pipeline.NewRunner(c, nil, logger), logger).Handler())
	t.Cleanup(srv.Close)
	return srv
}

func testPNG(t *testing.T) []byte {
	t.Helper()
	g := pixel.NewGrid(6, 2)
	for i := range g.Pix {
		v := uint8(250 - i*20)
		g.Pix[i] = pixel.Pixel{R: v, G: v, B: v}
	}
	var buf bytes.Buffer
	require.NoError(t, imageio.Write(&buf, g, imageio.FormatPNG, imageio.Options{}))
	return buf.Bytes()
}

func post(t *testing.T, url string, body []byte) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/octet-stream", bytes.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeError(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	var e ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&e))
	return e
}

func TestHealthz(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/healthz")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var body map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["version"])
	assert.NotEmpty(t, body["go_version"])
	_, err = uuid.Parse(resp.Header.Get(RequestIDHeader))
	assert.NoError(t, err)
}

func TestSort(t *testing.T) {
	srv := newTestServer(t)
	input := testPNG(t)

	resp := post(t, srv.URL+"/v1/sort?by=intensity&interval=6&step=fixed&seed=3", input)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
	assert.Equal(t, "MISS", resp.Header.Get("X-Cache"))
	assert.NotEmpty(t, resp.Header.Get("X-Run-ID"))

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	g, _, err := imageio.Read(bytes.NewReader(data))
	require.NoError(t, err)
	for y := range g.Height {
		row := g.Row(y)
		for x := 1; x < len(row); x++ {
			assert.LessOrEqual(t, row[x-1].R, row[x].R, "row %d", y)
		}
	}

	again := post(t, srv.URL+"/v1/sort?by=intensity&interval=6&step=fixed&seed=3", input)
	require.Equal(t, http.StatusOK, again.StatusCode)
	assert.Equal(t, "HIT", again.Header.Get("X-Cache"))
}

func TestSortFormat(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/sort?format=jpg&quality=80", testPNG(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/jpeg", resp.Header.Get("Content-Type"))
}

func TestSortErrors(t *testing.T) {
	srv := newTestServer(t)
	input := testPNG(t)

	tests := []struct {
		name   string
		query  string
		body   []byte
		status int
		code   errors.Code
	}{
		{"zero interval", "interval=0", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"oversized window", "discretize=10000000", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"unknown param", "colour=red", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"bad bool", "reverse=maybe", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"bad seed", "seed=-1", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"hue channel", "by=hue&channel=red", input, http.StatusBadRequest, errors.ErrCodeInvalidConfig},
		{"webp output", "format=webp", input, http.StatusBadRequest, errors.ErrCodeInvalidFormat},
		{"empty body", "", nil, http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"garbage body", "", []byte("hello"), http.StatusBadRequest, errors.ErrCodeInvalidInput},
		{"concentric", "direction=concentric", input, http.StatusUnprocessableEntity, errors.ErrCodeUnsupportedTraversal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := post(t, srv.URL+"/v1/sort?"+tt.query, tt.body)
			assert.Equal(t, tt.status, resp.StatusCode)
			e := decodeError(t, resp)
			assert.Equal(t, tt.code, e.Code)
			assert.NotEmpty(t, e.Message)
			assert.Equal(t, resp.Header.Get(RequestIDHeader), e.RequestID)
		})
	}
}

func TestRequestIDPropagates(t *testing.T) {
	srv := newTestServer(t)
	id := uuid.NewString()

	req, err := http.NewRequest(http.MethodPost, srv.URL+"/v1/sort?interval=0", bytes.NewReader(testPNG(t)))
	require.NoError(t, err)
	req.Header.Set(RequestIDHeader, id)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, id, resp.Header.Get(RequestIDHeader))
	assert.Equal(t, id, decodeError(t, resp).RequestID)
}

func TestStats(t *testing.T) {
	srv := newTestServer(t)
	resp := post(t, srv.URL+"/v1/stats?by=intensity", testPNG(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var a pipeline.Analysis
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&a))
	assert.Equal(t, "intensity", a.By)
	assert.Equal(t, 12, a.Summary.Count)
	assert.Equal(t, uint8(30), a.Summary.Min)
	assert.Equal(t, uint8(250), a.Summary.Max)

	bad := post(t, srv.URL+"/v1/stats?by=nope", testPNG(t))
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	srv := newTestServer(t)
	resp, err := http.Get(srv.URL + "/v1/sort")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err    error
		status int
		code   errors.Code
	}{
		{errors.New(errors.ErrCodeInvalidPath, "x"), http.StatusBadRequest, errors.ErrCodeInvalidPath},
		{errors.New(errors.ErrCodeWorkerFailure, "x"), http.StatusInternalServerError, errors.ErrCodeWorkerFailure},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError, errors.ErrCodeInternal},
		{&http.MaxBytesError{Limit: 1}, http.StatusRequestEntityTooLarge, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		status, code := statusFor(tt.err)
		if status != tt.status || code != tt.code {
			t.Errorf("statusFor(%v) = %d %s, want %d %s", tt.err, status, code, tt.status, tt.code)
		}
	}
}

func postMultipart(t *testing.T, url, field, filename string, data []byte) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("note", "ignored"))
	fw, err := mw.CreateFormFile(field, filename)
	require.NoError(t, err)
	_, err = fw.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func TestSortMultipart(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL + "/v1/sort?by=luma&interval=3&step=fixed&seed=5"

	resp := postMultipart(t, url, "image", "photo.png", testPNG(t))
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))

	tests := []struct {
		name, field, filename string
	}{
		{"missing field", "file", "photo.png"},
		{"no file name", "image", ""},
		{"hidden", "image", ".photo.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := postMultipart(t, url, tt.field, tt.filename, testPNG(t))
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, errors.ErrCodeInvalidInput, decodeError(t, resp).Code)
		})
	}
}
