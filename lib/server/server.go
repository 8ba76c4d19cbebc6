// Package server implements an HTTP service for running, scoring, and
// generating programs.
package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"

	"github.com/depp/blockpaint/lib/canvas"
	"github.com/depp/blockpaint/lib/imageio"
	"github.com/depp/blockpaint/lib/interp"
	"github.com/depp/blockpaint/lib/isl"
	"github.com/depp/blockpaint/lib/schedule"
	"github.com/depp/blockpaint/lib/score"
)

const (
	// MaxSize is the largest canvas width or height accepted.
	MaxSize = 4096
	// MaxBody is the largest request body accepted, in bytes.
	MaxBody = 32 << 20
	// MaxRects is the largest number of rectangles accepted by /v1/schedule.
	MaxRects = 10000
)

// Options configure a server.
type Options struct {
	Costs   interp.CostTable
	Workers int
	Log     logrus.FieldLogger
}

// A Server handles requests.
type Server struct {
	costs   interp.CostTable
	workers int
	log     logrus.FieldLogger
}

// New returns a new server.
func New(opts *Options) *Server {
	s := &Server{
		costs:   opts.Costs,
		workers: opts.Workers,
		log:     opts.Log,
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// Handler returns the HTTP handler for all routes.
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter()
	r.Use(s.requestLogger)
	r.Use(s.recovery)
	r.HandleFunc("/health", s.health).Methods(http.MethodGet)
	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/run", s.run).Methods(http.MethodPost)
	v1.HandleFunc("/score", s.score).Methods(http.MethodPost)
	v1.HandleFunc("/schedule", s.schedule).Methods(http.MethodPost)
	return r
}

// ListenAndServe serves requests on addr until the context is canceled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()
	s.log.WithField("addr", addr).Info("server starting")
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	s.log.Info("shutting down server")
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(sctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// An httpError is an error with an HTTP status.
type httpError struct {
	status int
	err    error
}

func (e *httpError) Error() string {
	return e.err.Error()
}

func (e *httpError) Unwrap() error {
	return e.err
}

func badRequest(format string, a ...interface{}) error {
	return &httpError{http.StatusBadRequest, fmt.Errorf(format, a...)}
}

func unprocessable(err error) error {
	return &httpError{http.StatusUnprocessableEntity, err}
}

type errorResponse struct {
	Error       string `json:"error"`
	Unscheduled []int  `json:"unscheduled,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	var he *httpError
	if errors.As(err, &he) {
		status = he.status
	}
	resp := errorResponse{Error: err.Error()}
	var ce *schedule.CycleError
	if errors.As(err, &ce) {
		resp.Unscheduled = ce.Unscheduled
	}
	entry := logger(r)
	if status >= 500 {
		entry.WithError(err).Error("request failed")
		resp.Error = "internal error"
	} else {
		entry.WithError(err).Debug("request rejected")
	}
	writeJSON(w, status, &resp)
}

func decodeRequest(r *http.Request, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, MaxBody))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return badRequest("invalid request body: %v", err)
	}
	return nil
}

func checkSize(width, height int) error {
	if width <= 0 || height <= 0 || MaxSize < width || MaxSize < height {
		return badRequest("invalid canvas size: %dx%d", width, height)
	}
	return nil
}

// runProgram parses and runs a program.
func (s *Server) runProgram(width, height int, text string) (isl.Program, *interp.Result, error) {
	if err := checkSize(width, height); err != nil {
		return nil, nil, err
	}
	prog, err := isl.Parse(bytes.NewReader([]byte(text)), "program")
	if err != nil {
		return nil, nil, badRequest("%v", err)
	}
	res, err := interp.Run(&interp.Config{Width: width, Height: height, Costs: s.costs}, prog)
	if err != nil {
		if interp.IsFatal(err) {
			return nil, nil, unprocessable(err)
		}
		return nil, nil, badRequest("%v", err)
	}
	return prog, res, nil
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type runRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Program string `json:"program"`
}

type runResponse struct {
	Cost         float64 `json:"cost"`
	Instructions int     `json:"instructions"`
}

func (s *Server) run(w http.ResponseWriter, r *http.Request) {
	var req runRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	prog, res, err := s.runProgram(req.Width, req.Height, req.Program)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	logger(r).WithFields(logrus.Fields{
		"instructions": len(prog),
		"cost":         res.Cost,
	}).Debug("ran program")
	writeJSON(w, http.StatusOK, &runResponse{
		Cost:         res.Cost,
		Instructions: len(prog),
	})
}

type scoreRequest struct {
	Width   int    `json:"width"`
	Height  int    `json:"height"`
	Program string `json:"program"`
	// Target is a base64-encoded image.
	Target string `json:"target"`
}

type scoreResponse struct {
	Cost       float64 `json:"cost"`
	Similarity float64 `json:"similarity"`
	Total      int64   `json:"total"`
}

func (s *Server) score(w http.ResponseWriter, r *http.Request) {
	var req scoreRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := base64.StdEncoding.DecodeString(req.Target)
	if err != nil {
		s.writeError(w, r, badRequest("invalid target encoding: %v", err))
		return
	}
	target, err := imageio.DecodeImage(bytes.NewReader(data))
	if err != nil {
		s.writeError(w, r, badRequest("invalid target image: %v", err))
		return
	}
	_, res, err := s.runProgram(req.Width, req.Height, req.Program)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	sim, err := score.Similarity(res.Raster, target)
	if err != nil {
		s.writeError(w, r, badRequest("%v", err))
		return
	}
	writeJSON(w, http.StatusOK, &scoreResponse{
		Cost:       res.Cost,
		Similarity: sim,
		Total:      score.Total(res.Cost, sim),
	})
}

type scheduleRequest struct {
	Width  int            `json:"width"`
	Height int            `json:"height"`
	Rects  []canvas.Paint `json:"rects"`
	Rule   string         `json:"rule"`
}

type scheduleResponse struct {
	Program string  `json:"program"`
	Cost    float64 `json:"cost"`
}

func (s *Server) schedule(w http.ResponseWriter, r *http.Request) {
	var req scheduleRequest
	if err := decodeRequest(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := checkSize(req.Width, req.Height); err != nil {
		s.writeError(w, r, err)
		return
	}
	if len(req.Rects) > MaxRects {
		s.writeError(w, r, badRequest("too many rectangles: %d, limit is %d", len(req.Rects), MaxRects))
		return
	}
	opts := schedule.Options{
		Workers: s.workers,
		Costs:   s.costs,
	}
	if req.Rule != "" {
		if err := opts.Rule.Set(req.Rule); err != nil {
			s.writeError(w, r, badRequest("%v", err))
			return
		}
	}
	prog, err := schedule.Generate(r.Context(), req.Rects, req.Width, req.Height, schedule.Fresh(), &opts)
	if err != nil {
		if errors.Is(err, schedule.ErrInvalidRect) {
			err = badRequest("%w", err)
		} else {
			err = unprocessable(err)
		}
		s.writeError(w, r, err)
		return
	}
	res, err := interp.Run(&interp.Config{Width: req.Width, Height: req.Height, Costs: s.costs}, prog)
	if err != nil {
		s.writeError(w, r, fmt.Errorf("generated program failed: %w", err))
		return
	}
	writeJSON(w, http.StatusOK, &scheduleResponse{
		Program: prog.String(),
		Cost:    res.Cost,
	})
}
