package api

import (
	"fmt"
	"net/http"
	"strconv"

	"flowcast/internal/analysis"
	"flowcast/internal/dataset"
	"flowcast/internal/simulation"

	"github.com/go-chi/render"
	"github.com/rs/zerolog/log"
)

// ForecastRequest runs the forecasters on a raw daily throughput sample.
type ForecastRequest struct {
	DailyCounts []int `json:"daily_counts" validate:"required,dive,gte=0"`
	Trials      int   `json:"trials,omitempty" validate:"gte=0"`
	HorizonDays int   `json:"horizon_days,omitempty" validate:"gte=0"`
	Backlog     int   `json:"backlog,omitempty" validate:"gte=0"`
	Seed        int64 `json:"seed,omitempty"`
}

// ForecastResponse carries the sample summary and the forecasts.
type ForecastResponse struct {
	Sample   map[string]any     `json:"sample"`
	Forecast simulation.Result  `json:"forecast"`
	Duration *simulation.Result `json:"duration,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func renderError(w http.ResponseWriter, r *http.Request, status int, err error) {
	render.Status(r, status)
	render.JSON(w, r, errorResponse{Error: err.Error()})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, map[string]string{"status": "ok"})
}

// handleAnalysis handles POST /api/v1/analysis with a multipart "file" field.
func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		renderError(w, r, http.StatusBadRequest, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Errorf("invalid multipart upload: %w", err))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Errorf("missing form field %q: %w", "file", err))
		return
	}
	defer file.Close()

	format, err := dataset.DetectFormat(header.Filename)
	if err != nil {
		renderError(w, r, http.StatusUnsupportedMediaType, err)
		return
	}
	table, err := dataset.Read(file, format)
	if err != nil {
		renderError(w, r, http.StatusUnprocessableEntity, err)
		return
	}

	report := analysis.NewSession(header.Filename, table).
		WithSimulation(s.cfg.Simulation.Bounds(), s.cfg.Simulation.Workers).
		Report(opts)

	s.metrics.datasets.Inc()
	s.metrics.observeForecast(report.Forecast)
	if report.Duration != nil {
		s.metrics.observeForecast(*report.Duration)
	}
	log.Info().
		Str("source", report.Source).
		Int("rows", report.TotalRows).
		Int("items", report.Items).
		Msg("Dataset analyzed")

	render.JSON(w, r, report)
}

// handleForecast handles POST /api/v1/forecast.
func (s *Server) handleForecast(w http.ResponseWriter, r *http.Request) {
	var req ForecastRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request body: %w", err))
		return
	}
	if err := s.validate.Struct(req); err != nil {
		renderError(w, r, http.StatusBadRequest, fmt.Errorf("invalid request: %w", err))
		return
	}

	params := s.cfg.Simulation.Params()
	if req.Trials > 0 {
		params.Trials = req.Trials
	}
	if req.HorizonDays > 0 {
		params.HorizonDays = req.HorizonDays
	}

	hist := simulation.NewHistogramFromCounts(req.DailyCounts)
	engine := simulation.NewEngine(hist, simulation.NewSource(req.Seed)).
		WithBounds(s.cfg.Simulation.Bounds()).
		WithWorkers(s.cfg.Simulation.Workers)

	resp := ForecastResponse{
		Sample:   hist.Meta,
		Forecast: engine.RunScope(params),
	}
	s.metrics.observeForecast(resp.Forecast)
	if req.Backlog > 0 {
		d := engine.RunDuration(req.Backlog, params.Trials)
		resp.Duration = &d
		s.metrics.observeForecast(d)
	}

	render.JSON(w, r, resp)
}

// options reads the simulation overrides from the query string.
func (s *Server) options(r *http.Request) (analysis.Options, error) {
	opts := analysis.Options{Params: s.cfg.Simulation.Params()}
	q := r.URL.Query()

	fields := []struct {
		key string
		set func(int64)
	}{
		{"trials", func(v int64) { opts.Params.Trials = int(v) }},
		{"horizon", func(v int64) { opts.Params.HorizonDays = int(v) }},
		{"seed", func(v int64) { opts.Seed = v }},
		{"backlog", func(v int64) { opts.Backlog = int(v) }},
	}
	for _, f := range fields {
		raw := q.Get(f.key)
		if raw == "" {
			continue
		}
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return opts, fmt.Errorf("query parameter %q must be an integer", f.key)
		}
		if v < 0 && f.key != "seed" {
			return opts, fmt.Errorf("query parameter %q must not be negative", f.key)
		}
		f.set(v)
	}
	return opts, nil
}
