package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/device/host"
	"github.com/samcharles93/prngcl/internal/generators"
	"github.com/samcharles93/prngcl/internal/logger"
)

func newTestEcho(t *testing.T) *echo.Echo {
	t.Helper()
	reg, err := generators.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	server := NewServer(Config{
		Registry: reg,
		Open: func() (device.Accelerator, error) {
			return host.New(host.Config{Align: 4, Kernels: generators.Kernels()}), nil
		},
		Logger:       logger.Discard(),
		UI:           true,
		MaxSamples:   100,
		MaxRunValues: 4096,
	})
	e := echo.New()
	server.Register(e)
	return e
}

func doJSON(t *testing.T, e *echo.Echo, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode body %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestListAndDescribeGenerators(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(t, e, http.MethodGet, "/v1/generators", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("list status: got %d body=%s", rec.Code, rec.Body.String())
	}
	list := decode[ListResponse](t, rec)
	if list.Object != "list" || len(list.Data) != len(generators.All()) {
		t.Fatalf("unexpected list: %+v", list)
	}
	if list.Data[0].Name != "CONSTANT" {
		t.Fatalf("expected registration order, got %q first", list.Data[0].Name)
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/generators/constant", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("describe status: got %d body=%s", rec.Code, rec.Body.String())
	}
	info := decode[GeneratorInfo](t, rec)
	if info.ProductionKernel != "constant_series" || info.InitKernel != "" || info.Output != "double" {
		t.Fatalf("unexpected descriptor: %+v", info)
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/generators/nope", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d body=%s", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), "not_found_error") {
		t.Fatalf("unexpected error body: %s", rec.Body.String())
	}
}

func TestSample(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/generators/CONSTANT/sample",
		`{"seed":9,"parameters":["seed1=42"],"count":3,"raw":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("sample status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decode[SampleResponse](t, rec)
	if len(resp.Uints) != 3 || resp.Uints[0] != 42 || resp.Uints[2] != 42 {
		t.Fatalf("unexpected uints: %v", resp.Uints)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/generators/PM/sample", `{"parameters":["seed1=1"],"count":2}`)
	resp = decode[SampleResponse](t, rec)
	if len(resp.Values) != 2 || resp.Values[0] != 16807.0/2147483647.0 {
		t.Fatalf("unexpected values: %v", resp.Values)
	}

	tests := []struct {
		name string
		body string
	}{
		{"too many", `{"count":101}`},
		{"bad parameter", `{"parameters":["seed1"]}`},
		{"unknown field", `{"cnt":1}`},
		{"malformed", `{`},
	}
	for _, tc := range tests {
		rec := doJSON(t, e, http.MethodPost, "/v1/generators/PM/sample", tc.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: expected 400, got %d body=%s", tc.name, rec.Code, rec.Body.String())
		}
	}
}

func TestOptions(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/generators/CONSTANT/options",
		`{"parameters":["seed1=3221225472"],"instances":3,"samples":5,"precision":"double"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("options status: got %d body=%s", rec.Code, rec.Body.String())
	}
	resp := decode[OptionsResponse](t, rec)
	want := "-D PRNG_INSTANCES=(3) -D PRNG_SAMPLES=(5) -D PRNG_PRECISION_DOUBLE -D CONSTANT_FP=(7.50000000000000000000000e-01)"
	if resp.Options != want {
		t.Fatalf("options = %q, want %q", resp.Options, want)
	}
	if resp.Defines["CONSTANT_FP"] != "7.50000000000000000000000e-01" {
		t.Fatalf("unexpected defines: %v", resp.Defines)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/generators/CONSTANT/options", `{"instances":0,"samples":5}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for empty run, got %d", rec.Code)
	}
	rec = doJSON(t, e, http.MethodPost, "/v1/generators/CONSTANT/options", `{"instances":1,"samples":1,"precision":"half"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for bad precision, got %d", rec.Code)
	}
}

func TestRunLifecycle(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)

	rec := doJSON(t, e, http.MethodPost, "/v1/generators/xor128/runs",
		`{"seed":5,"instances":4,"samples":16,"precision":"single","bins":8,"include_values":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("run status: got %d body=%s", rec.Code, rec.Body.String())
	}
	run := decode[RunResponse](t, rec)
	if !strings.HasPrefix(run.ID, "run_") || run.Generator != "XOR128" || run.Accelerator != "host" {
		t.Fatalf("unexpected run: %+v", run)
	}
	if len(run.Buffers) != 3 || run.Buffers[2].Name != "(XOR128) PRNG_randoms" {
		t.Fatalf("unexpected buffers: %+v", run.Buffers)
	}
	if run.Report.Count != 4*16*4 || run.Report.Bins != 8 || len(run.Values) != run.Report.Count {
		t.Fatalf("unexpected report: %+v values=%d", run.Report, len(run.Values))
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/runs/"+run.ID, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("get run status: got %d body=%s", rec.Code, rec.Body.String())
	}
	stored := decode[RunResponse](t, rec)
	if stored.ID != run.ID || stored.Values != nil {
		t.Fatalf("stored run should match without values: %+v", stored)
	}

	rec = doJSON(t, e, http.MethodGet, "/v1/runs/run_missing", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	rec = doJSON(t, e, http.MethodPost, "/v1/generators/PM/runs", `{"instances":64,"samples":64}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 over the value limit, got %d body=%s", rec.Code, rec.Body.String())
	}
}

func TestRunWithoutAccelerator(t *testing.T) {
	t.Parallel()
	reg, err := generators.NewRegistry()
	if err != nil {
		t.Fatalf("registry: %v", err)
	}
	e := echo.New()
	NewServer(Config{Registry: reg}).Register(e)

	rec := doJSON(t, e, http.MethodPost, "/v1/generators/PM/runs", `{"instances":1,"samples":1}`)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}

func TestInvalidRequestError(t *testing.T) {
	t.Parallel()
	err := newInvalidRequest("bad")
	if !errors.Is(err, ErrInvalidRequest) || err.Error() != "bad" {
		t.Fatalf("unexpected error: %v", err)
	}
	if p := errorParam(err); p != "" {
		t.Fatalf("unexpected param %q", p)
	}
	wrapped := fmt.Errorf("run: %w", newInvalidParam("count", "too many"))
	if !errors.Is(wrapped, ErrInvalidRequest) || errorParam(wrapped) != "count" {
		t.Fatalf("param lost through wrapping: %v", wrapped)
	}
}

func TestSampleLimitNamesParam(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodPost, "/v1/generators/CONSTANT/sample", `{"count":101}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	body := decode[map[string]ResponseError](t, rec)
	if body["error"].Param != "count" {
		t.Fatalf("param = %q, want count", body["error"].Param)
	}
}

func TestRunStoreEvicts(t *testing.T) {
	t.Parallel()
	s := NewRunStore(2)
	for _, id := range []string{"a", "b", "c"} {
		s.Put(RunResponse{ID: id, Values: []float64{1}})
	}
	if s.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", s.Len())
	}
	if _, ok := s.Get("a"); ok {
		t.Fatal("oldest run should have been evicted")
	}
	if got, ok := s.Get("c"); !ok || got.Values != nil {
		t.Fatalf("Get(c) = %+v, %v", got, ok)
	}
}

func TestDashboard(t *testing.T) {
	t.Parallel()
	e := newTestEcho(t)
	rec := doJSON(t, e, http.MethodGet, "/", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("GET / status %d", rec.Code)
	}
	if ct := rec.Header().Get(echo.HeaderContentType); !strings.HasPrefix(ct, echo.MIMETextHTML) {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(rec.Body.String(), "/v1/generators") {
		t.Fatal("dashboard does not reference the generator listing")
	}
}
