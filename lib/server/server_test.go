package server

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"

	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/imageio"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)
	s := New(&Options{Log: log, Workers: 1})
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func post(t *testing.T, ts *httptest.Server, path string, body interface{}, out interface{}) int {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(ts.URL+path, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.Header.Get(RequestIDHeader) == "" {
		t.Errorf("%s: missing request ID", path)
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("%s: %v", path, err)
		}
	}
	return resp.StatusCode
}

func TestHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d", resp.StatusCode)
	}
}

func TestRun(t *testing.T) {
	ts := newTestServer(t)
	var out runResponse
	code := post(t, ts, "/v1/run", &runRequest{
		Width:   4,
		Height:  4,
		Program: "cut [0] [2, 2]\ncolor [0.1] [255, 0, 0, 255]\n",
	}, &out)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Cost != 30 || out.Instructions != 2 {
		t.Errorf("response = %+v", out)
	}
}

func TestRunErrors(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		name string
		body interface{}
		code int
	}{
		{"syntax", &runRequest{Width: 4, Height: 4, Program: "paint [0]"}, http.StatusBadRequest},
		{"size", &runRequest{Width: 0, Height: 4}, http.StatusBadRequest},
		{"unknown field", map[string]interface{}{"width": 4, "height": 4, "extra": 1}, http.StatusBadRequest},
		{"unknown block", &runRequest{Width: 4, Height: 4, Program: "color [7] [0, 0, 0, 255]"}, http.StatusUnprocessableEntity},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var out errorResponse
			if code := post(t, ts, "/v1/run", c.body, &out); code != c.code {
				t.Errorf("status = %d, want %d (%s)", code, c.code, out.Error)
			}
			if out.Error == "" {
				t.Error("empty error message")
			}
		})
	}
}

func encodeTarget(t *testing.T, r *canvas.Raster) string {
	t.Helper()
	var buf bytes.Buffer
	if err := imageio.Encode(&buf, r, imageio.PNG); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestScore(t *testing.T) {
	ts := newTestServer(t)
	red := canvas.Color{255, 0, 0, 255}
	target := canvas.Render(2, 2, []canvas.Paint{{Rect: canvas.R(0, 0, 2, 2), Color: red}})
	var out scoreResponse
	code := post(t, ts, "/v1/score", &scoreRequest{
		Width:   2,
		Height:  2,
		Program: "color [0] [255, 0, 0, 255]",
		Target:  encodeTarget(t, target),
	}, &out)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	if out.Cost != 5 || out.Similarity != 0 || out.Total != 5 {
		t.Errorf("response = %+v", out)
	}

	// Mismatched target size.
	code = post(t, ts, "/v1/score", &scoreRequest{
		Width:   3,
		Height:  2,
		Program: "",
		Target:  encodeTarget(t, target),
	}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("mismatch: status = %d", code)
	}
}

func TestSchedule(t *testing.T) {
	ts := newTestServer(t)
	paints := []canvas.Paint{
		{Rect: canvas.R(2, 2, 6, 6), Color: canvas.Color{0, 0, 255, 255}},
		{Rect: canvas.R(0, 0, 8, 8), Color: canvas.Color{255, 0, 0, 255}},
	}
	var out scheduleResponse
	code := post(t, ts, "/v1/schedule", &scheduleRequest{Width: 8, Height: 8, Rects: paints}, &out)
	if code != http.StatusOK {
		t.Fatalf("status = %d", code)
	}
	prog, err := isl.ParseString(out.Program)
	if err != nil {
		t.Fatal(err)
	}
	res, err := interp.Run(&interp.Config{Width: 8, Height: 8}, prog)
	if err != nil {
		t.Fatal(err)
	}
	if res.Cost != out.Cost {
		t.Errorf("cost = %v, program costs %v", out.Cost, res.Cost)
	}
	if got := res.Raster.At(3, 3); got != paints[0].Color {
		t.Errorf("inner pixel = %v", got)
	}

	var eout errorResponse
	code = post(t, ts, "/v1/schedule", &scheduleRequest{
		Width:  8,
		Height: 8,
		Rects:  []canvas.Paint{paints[0], paints[0]},
	}, &eout)
	if code != http.StatusUnprocessableEntity {
		t.Errorf("cycle: status = %d", code)
	}
	if len(eout.Unscheduled) != 2 {
		t.Errorf("cycle: unscheduled = %v", eout.Unscheduled)
	}

	code = post(t, ts, "/v1/schedule", &scheduleRequest{Width: 8, Height: 8, Rule: "sideways"}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("bad rule: status = %d", code)
	}

	many := make([]canvas.Paint, MaxRects+1)
	for i := range many {
		many[i] = paints[0]
	}
	code = post(t, ts, "/v1/schedule", &scheduleRequest{Width: 8, Height: 8, Rects: many}, nil)
	if code != http.StatusBadRequest {
		t.Errorf("too many rectangles: status = %d", code)
	}
}
