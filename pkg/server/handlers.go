package server

import (
	"encoding/json"
	"net/http"

	"github.com/matzehuels/ganttrow/pkg/buildinfo"
	"github.com/matzehuels/ganttrow/pkg/chart"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/aggregate"
	"github.com/matzehuels/ganttrow/pkg/core/gantt/snap"
	"github.com/matzehuels/ganttrow/pkg/errors"
	"github.com/matzehuels/ganttrow/pkg/pipeline"
)

// =============================================================================
// Request and Response Types
// =============================================================================

// LayoutResponse is the JSON answer of POST /v1/layout.
type LayoutResponse struct {
	Layout    chart.Layout      `json:"layout"`
	Artifacts map[string]string `json:"artifacts,omitempty"`
	Rows      int               `json:"row_count"`
	Pills     int               `json:"pill_count"`
	Cached    bool              `json:"cached"`
}

// RowsRequest is the body of POST /v1/rows.
type RowsRequest struct {
	Scale         chart.Scale              `json:"scale"`
	Window        *chart.Window            `json:"window,omitempty"`
	Consolidation *aggregate.Consolidation `json:"consolidation,omitempty"`
	Row           chart.Row                `json:"row"`
	LevelHeight   int                      `json:"level_height,omitempty"`
	PillHeight    int                      `json:"pill_height,omitempty"`
	NoSnap        bool                     `json:"no_snap,omitempty"`
	Refresh       bool                     `json:"refresh,omitempty"`
}

// RowsResponse is the answer of POST /v1/rows: the row followed by its
// descendants.
type RowsResponse struct {
	Rows   []chart.RowLayout `json:"rows"`
	Cached bool              `json:"cached"`
}

// DiffRequest is the body of POST /v1/diff.
type DiffRequest struct {
	Scale            chart.Scale `json:"scale"`
	PillID           string      `json:"pill_id"`
	OffsetPx         float64     `json:"offset_px"`
	ReferenceWidthPx float64     `json:"reference_width_px"`
	OldGroupKey      string      `json:"old_group_key,omitempty"`
	NewGroupKey      string      `json:"new_group_key,omitempty"`
	Action           string      `json:"action,omitempty"`
}

// DiffResponse is the drop event plus whether it changes anything.
type DiffResponse struct {
	snap.Event
	Moved bool `json:"moved"`
}

// =============================================================================
// Handlers
// =============================================================================

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Get().Version,
	})
}

// handleLayout runs the full pipeline. With ?format=svg|json|yaml the raw
// artifact is returned; otherwise a LayoutResponse carrying the layout and
// any extra formats named in the body.
func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	var opts pipeline.Options
	if !s.decode(w, r, &opts) {
		return
	}
	if opts.Chart == nil {
		s.fail(w, r, errors.New(errors.ErrCodeInvalidInput, "chart is required"))
		return
	}

	raw := r.URL.Query().Get("format")
	if raw != "" {
		if err := pipeline.ValidateFormat(raw); err != nil {
			s.fail(w, r, err)
			return
		}
		opts.Formats = []string{raw}
	}
	if len(opts.Formats) == 0 {
		opts.Formats = []string{pipeline.FormatJSON}
	}
	s.applyDefaults(&opts)

	result, err := s.runner.Execute(r.Context(), opts)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("X-Cache", cacheHeader(result.CacheInfo.LayoutHit && result.CacheInfo.RenderHit))

	if raw != "" {
		w.Header().Set("Content-Type", contentTypes[raw])
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(result.Artifacts[raw])
		return
	}

	resp := LayoutResponse{
		Layout: result.Layout,
		Rows:   result.Stats.RowCount,
		Pills:  result.Stats.PillCount,
		Cached: result.CacheInfo.LayoutHit,
	}
	for format, data := range result.Artifacts {
		if format == pipeline.FormatJSON {
			continue
		}
		if resp.Artifacts == nil {
			resp.Artifacts = make(map[string]string)
		}
		resp.Artifacts[format] = string(data)
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleRows(w http.ResponseWriter, r *http.Request) {
	var req RowsRequest
	if !s.decode(w, r, &req) {
		return
	}

	opts := pipeline.Options{
		LevelHeight: req.LevelHeight,
		PillHeight:  req.PillHeight,
		NoSnap:      req.NoSnap,
		Refresh:     req.Refresh,
	}
	s.applyDefaults(&opts)

	c := chart.Chart{
		Scale:         req.Scale,
		Window:        req.Window,
		Consolidation: req.Consolidation,
		Rows:          []chart.Row{req.Row},
	}
	pipeline.ApplyOverrides(&c, opts)
	plan, err := c.Plan(opts.Now)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	resp := RowsResponse{Cached: true}
	for _, pr := range plan.Rows {
		row, hit, err := s.runner.LayoutRow(r.Context(), pr.Input, opts)
		if err != nil {
			s.fail(w, r, err)
			return
		}
		row.Depth = pr.Depth
		row.Parent = pr.Parent
		resp.Rows = append(resp.Rows, row)
		resp.Cached = resp.Cached && hit
	}
	w.Header().Set("X-Cache", cacheHeader(resp.Cached))
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleDiff(w http.ResponseWriter, r *http.Request) {
	var req DiffRequest
	if !s.decode(w, r, &req) {
		return
	}

	c := chart.Chart{Scale: req.Scale}
	cfg, err := c.ScaleConfig()
	if err != nil {
		s.fail(w, r, err)
		return
	}
	action, err := snap.ParseAction(req.Action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	ev, err := snap.NewEvent(cfg, req.PillID, req.OffsetPx, req.ReferenceWidthPx, req.OldGroupKey, req.NewGroupKey, action)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, DiffResponse{Event: ev, Moved: ev.Moved()})
}

// =============================================================================
// Helpers
// =============================================================================

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatYAML: "application/yaml",
}

func (s *Server) applyDefaults(opts *pipeline.Options) {
	d := s.defaults
	if opts.LevelHeight == 0 {
		opts.LevelHeight = d.LevelHeight
	}
	if opts.PillHeight == 0 {
		opts.PillHeight = d.PillHeight
	}
	if opts.Concurrency == 0 {
		opts.Concurrency = d.Concurrency
	}
	if opts.Width == 0 {
		opts.Width = d.Width
	}
	opts.FallbackUnit = d.FallbackUnit
	opts.FallbackPrecision = d.FallbackPrecision
	if opts.LabelWidth == 0 {
		opts.LabelWidth = d.LabelWidth
	}
	opts.Logger = s.logger
	opts.Now = s.now()
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		s.fail(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request body"))
		return false
	}
	return true
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "err", err)
	} else {
		s.logger.Debug("request rejected", "path", r.URL.Path, "code", code, "err", err)
	}
	writeError(w, status, code, errors.UserMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.IsInvalid(err):
		return http.StatusBadRequest
	case errors.Is(err, errors.ErrCodeNotFound), errors.Is(err, errors.ErrCodeFileNotFound):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func cacheHeader(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, message string) {
	writeJSON(w, status, map[string]string{"error": string(code), "message": message})
}
