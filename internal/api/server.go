// Package api serves the generator registry over HTTP: descriptor
// listing, host-side sampling, compile-option rendering and device runs.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v5"

	"github.com/samcharles93/prngcl/internal/device"
	"github.com/samcharles93/prngcl/internal/logger"
	"github.com/samcharles93/prngcl/internal/prng"
	"github.com/samcharles93/prngcl/internal/quality"
	"github.com/samcharles93/prngcl/internal/session"
	"github.com/samcharles93/prngcl/internal/webui"
)

// Request size limits.
const (
	DefaultMaxSamples   = 1 << 16
	DefaultMaxRunValues = 1 << 22
)

type Config struct {
	Registry *prng.Registry
	// Open returns a fresh accelerator for each run. The server closes it
	// when the run is done.
	Open   func() (device.Accelerator, error)
	Logger logger.Logger
	Store  *RunStore
	// UI serves the embedded dashboard at /.
	UI bool

	MaxSamples   int
	MaxRunValues int
}

type Server struct {
	cfg   Config
	log   logger.Logger
	store *RunStore
	clock func() time.Time
}

func NewServer(cfg Config) *Server {
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = DefaultMaxSamples
	}
	if cfg.MaxRunValues <= 0 {
		cfg.MaxRunValues = DefaultMaxRunValues
	}
	store := cfg.Store
	if store == nil {
		store = NewRunStore(0)
	}
	return &Server{
		cfg:   cfg,
		log:   logger.OrDiscard(cfg.Logger).With("component", "api"),
		store: store,
		clock: time.Now,
	}
}

func (s *Server) Register(e *echo.Echo) {
	e.GET("/v1/generators", s.handleList)
	e.GET("/v1/generators/:name", s.handleDescribe)
	e.POST("/v1/generators/:name/sample", s.handleSample)
	e.POST("/v1/generators/:name/options", s.handleOptions)
	e.POST("/v1/generators/:name/runs", s.handleRun)
	e.GET("/v1/runs/:id", s.handleGetRun)
	if s.cfg.UI {
		e.GET("/", s.handleIndex)
	}
}

func (s *Server) handleIndex(c *echo.Context) error {
	return c.HTMLBlob(http.StatusOK, webui.Index())
}

func (s *Server) generator(c *echo.Context) (*prng.Descriptor, error) {
	if s.cfg.Registry == nil {
		return nil, fmt.Errorf("%w: no registry configured", prng.ErrUnknownGenerator)
	}
	return s.cfg.Registry.Get(c.Param("name"))
}

func (s *Server) handleList(c *echo.Context) error {
	var descs []*prng.Descriptor
	if s.cfg.Registry != nil {
		descs = s.cfg.Registry.All()
	}
	data := make([]GeneratorInfo, 0, len(descs))
	for _, d := range descs {
		data = append(data, NewGeneratorInfo(d))
	}
	return c.JSON(http.StatusOK, ListResponse{Object: "list", Data: data})
}

func (s *Server) handleDescribe(c *echo.Context) error {
	d, err := s.generator(c)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	return c.JSON(http.StatusOK, NewGeneratorInfo(d))
}

func instantiate(d *prng.Descriptor, req SeedRequest) (prng.Engine, error) {
	params, err := prng.ParseParameters(req.Parameters)
	if err != nil {
		return nil, err
	}
	return d.Instantiate(req.Seed, params), nil
}

func (s *Server) handleSample(c *echo.Context) error {
	d, err := s.generator(c)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	req, err := decodeJSON[SampleRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Count > s.cfg.MaxSamples {
		return writeRunError(c, newInvalidParam("count", fmt.Sprintf("count %d exceeds limit %d", req.Count, s.cfg.MaxSamples)))
	}
	e, err := instantiate(d, req.SeedRequest)
	if err != nil {
		return writeRunError(c, err)
	}

	resp := SampleResponse{Object: "sample", Generator: d.Name, Seed: req.Seed}
	if req.Raw {
		resp.Uints = make([]uint32, req.Count)
		for i := range resp.Uints {
			resp.Uints[i] = e.Uint32()
		}
	} else {
		resp.Values = make([]float64, req.Count)
		for i := range resp.Values {
			resp.Values[i] = e.Float64()
		}
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) runParameters(req OptionsRequest) (*prng.RunParameters, error) {
	precision, err := prng.ParsePrecision(req.Precision)
	if err != nil {
		return nil, newInvalidParam("precision", err.Error())
	}
	run := prng.NewRunParameters(req.Instances, req.Samples, precision)
	total, err := run.Total()
	if err != nil {
		return nil, err
	}
	if total > s.cfg.MaxRunValues/prng.VectorWidth {
		return nil, newInvalidParam("samples", fmt.Sprintf("instances*samples %d exceeds limit %d", total, s.cfg.MaxRunValues/prng.VectorWidth))
	}
	return run, nil
}

// handleOptions renders the compile options a run would use without
// provisioning anything.
func (s *Server) handleOptions(c *echo.Context) error {
	d, err := s.generator(c)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	req, err := decodeJSON[OptionsRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	run, err := s.runParameters(req)
	if err != nil {
		return writeRunError(c, err)
	}
	e, err := instantiate(d, req.SeedRequest)
	if err != nil {
		return writeRunError(c, err)
	}
	opts := prng.BaseOptions(d, run).Append(e.CompileOptions(noAlloc{}, run)...)
	defs, err := device.ParseOptions(opts.String())
	if err != nil {
		return writeRunError(c, err)
	}
	return c.JSON(http.StatusOK, OptionsResponse{
		Object:    "options",
		Generator: d.Name,
		Options:   opts.String(),
		Defines:   defs,
	})
}

func (s *Server) handleRun(c *echo.Context) error {
	d, err := s.generator(c)
	if err != nil {
		return writeNotFound(c, err.Error())
	}
	if s.cfg.Open == nil {
		return writeError(c, http.StatusInternalServerError, "server_error", "no accelerator configured", "", "")
	}
	req, err := decodeJSON[RunRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	run, err := s.runParameters(req.OptionsRequest)
	if err != nil {
		return writeRunError(c, err)
	}
	e, err := instantiate(d, req.SeedRequest)
	if err != nil {
		return writeRunError(c, err)
	}

	acc, err := s.cfg.Open()
	if err != nil {
		return writeRunError(c, err)
	}
	defer func() {
		if cerr := acc.Close(); cerr != nil {
			s.log.Warn("close accelerator", "error", cerr)
		}
	}()

	res, err := session.Run(c.Request().Context(), acc, session.Request{Descriptor: d, Engine: e, Run: run}, s.log)
	if err != nil {
		return writeRunError(c, err)
	}
	report, err := quality.Analyze(res.Values, req.Bins)
	if err != nil {
		return writeRunError(c, err)
	}

	resp := RunResponse{
		ID:          res.ID,
		Object:      "run",
		CreatedAt:   s.clock().Unix(),
		Generator:   res.Generator,
		Accelerator: res.Accelerator,
		Instances:   res.Instances,
		Samples:     res.Samples,
		Precision:   res.Precision.String(),
		Options:     res.Options,
		Buffers:     BufferInfos(res.Buffers),
		Report:      report,
		DurationMS:  float64(res.Duration.Microseconds()) / 1000,
	}
	s.store.Put(resp)
	if req.IncludeValues {
		resp.Values = res.Values
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleGetRun(c *echo.Context) error {
	resp, ok := s.store.Get(c.Param("id"))
	if !ok {
		return writeNotFound(c, fmt.Sprintf("run %q not found", c.Param("id")))
	}
	return c.JSON(http.StatusOK, resp)
}

// noAlloc is the context handed to CompileOptions when only the option
// text is wanted.
type noAlloc struct{}

func (noAlloc) AllocateBuffer(device.Staging, device.BufferKind, int, int) (device.Handle, error) {
	return device.NoBuffer, fmt.Errorf("api: options-only context cannot allocate")
}
func (noAlloc) AlignBufferSize(n int) int        { return n }
func (noAlloc) NameBuffer(device.Handle, string) {}
