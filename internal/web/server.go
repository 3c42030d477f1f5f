// Package web serves the chart page, the standalone SVG and a small JSON API
// over a single shared view.
package web

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"StockTracker/internal/calculator"
	"StockTracker/internal/chart"
	"StockTracker/internal/model"
	"StockTracker/internal/recorder"
	"StockTracker/internal/view"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

//go:embed templates/*.tmpl
var templateFS embed.FS

var templateFuncs = template.FuncMap{
	"pct":   func(v float64) float64 { return v * 100 },
	"deref": func(v *float64) float64 { return *v },
}

const (
	defaultLoadsLimit = 20
	maxLoadsLimit     = 200
)

// Server handles HTTP requests for the chart.
type Server struct {
	view     *view.View
	recorder recorder.Recorder
	tmpl     *template.Template
	logger   *zap.Logger
}

// NewServer creates a new Server.
func NewServer(v *view.View, rec recorder.Recorder, logger *zap.Logger) (*Server, error) {
	tmpl, err := template.New("").Funcs(templateFuncs).ParseFS(templateFS, "templates/*.tmpl")
	if err != nil {
		return nil, err
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Server{view: v, recorder: rec, tmpl: tmpl, logger: logger}, nil
}

// Router builds the gin engine.
func (s *Server) Router() *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(Logger(s.logger))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	})

	router.GET("/", s.Index)
	router.POST("/submit", s.Submit)
	router.GET("/chart.svg", s.ChartSVG)

	api := router.Group("/api")
	{
		api.POST("/load", s.LoadSymbol)
		api.GET("/series", s.GetSeries)
		api.POST("/hover", s.Hover)
		api.POST("/leave", s.Leave)
		api.GET("/loads", s.RecentLoads)
	}
	return router
}

type pageData struct {
	Symbol  string
	Loading bool
	Error   string
	Chart   *chartView
	Summary *calculator.Summary
}

// Index renders the page for the current view state
// GET /
func (s *Server) Index(c *gin.Context) {
	s.render(c, http.StatusOK, "text/html; charset=utf-8", "index", s.pageData())
}

func (s *Server) pageData() pageData {
	snap := s.view.Snapshot()
	data := pageData{Symbol: snap.Symbol, Loading: snap.Loading}
	if snap.Err != nil {
		_, data.Error = errorStatus(snap.Err)
	}
	if snap.Series != nil && snap.Frame != nil {
		data.Chart = newChartView(snap.Series, snap.Frame)
		data.Summary = s.summarize(snap.Series)
	}
	return data
}

// Submit loads the symbol from the form and redirects back to the page.
// POST /submit
func (s *Server) Submit(c *gin.Context) {
	symbol := strings.TrimSpace(c.PostForm("symbol"))
	if symbol == "" {
		data := s.pageData()
		data.Error = "symbol is required"
		s.render(c, http.StatusBadRequest, "text/html; charset=utf-8", "index", data)
		return
	}
	c.Set("symbol", symbol)

	// The outcome, including a failure, is held by the view and shown by Index.
	if err := s.view.Load(c.Request.Context(), symbol); err != nil {
		c.Error(err)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

type loadRequest struct {
	Symbol string `json:"symbol" form:"symbol"`
}

// LoadSymbol loads a symbol and reports the outcome as JSON
// POST /api/load
func (s *Server) LoadSymbol(c *gin.Context) {
	var req loadRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	symbol := strings.TrimSpace(req.Symbol)
	if symbol == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "symbol is required"})
		return
	}
	c.Set("symbol", symbol)

	if err := s.view.Load(c.Request.Context(), symbol); err != nil {
		status, msg := errorStatus(err)
		c.Error(err)
		c.JSON(status, gin.H{"error": msg, "symbol": strings.ToUpper(symbol)})
		return
	}
	s.GetSeries(c)
}

// GetSeries returns the displayed series
// GET /api/series
func (s *Server) GetSeries(c *gin.Context) {
	snap := s.view.Snapshot()
	if snap.Series == nil {
		s.abortNoSeries(c, snap)
		return
	}
	t0, t1, _ := chart.TimeExtent(snap.Series.Points)
	p0, p1, _ := chart.PriceExtent(snap.Series.Points)
	c.JSON(http.StatusOK, gin.H{
		"symbol":       snap.Series.Symbol,
		"provider":     snap.Series.Provider,
		"fetched_at":   snap.Series.FetchedAt,
		"skipped":      snap.Series.Skipped,
		"time_extent":  [2]string{t0.Format("2006-01-02"), t1.Format("2006-01-02")},
		"price_extent": [2]float64{p0, p1},
		"summary":      s.summarize(snap.Series),
		"points":       snap.Series.Points,
	})
}

func (s *Server) summarize(series *model.Series) *calculator.Summary {
	sum, err := calculator.Summarize(series.Points)
	if err != nil {
		s.logger.Warn("Failed to summarize series", zap.String("symbol", series.Symbol), zap.Error(err))
		return nil
	}
	return sum
}

// ChartSVG renders the chart as a standalone SVG document
// GET /chart.svg
func (s *Server) ChartSVG(c *gin.Context) {
	snap := s.view.Snapshot()
	if snap.Series == nil || snap.Frame == nil {
		s.abortNoSeries(c, snap)
		return
	}
	s.render(c, http.StatusOK, "image/svg+xml", "chart", newChartView(snap.Series, snap.Frame))
}

type hoverRequest struct {
	X *float64 `json:"x"`
}

// Hover resolves the pointer position to the nearest point
// POST /api/hover
func (s *Server) Hover(c *gin.Context) {
	var req hoverRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.X == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "x is required"})
		return
	}
	tip, ok := s.view.Hover(*req.X)
	if !ok {
		s.abortNoSeries(c, s.view.Snapshot())
		return
	}
	c.JSON(http.StatusOK, newTooltipResponse(tip))
}

// Leave hides the tooltip
// POST /api/leave
func (s *Server) Leave(c *gin.Context) {
	s.view.Leave()
	c.Status(http.StatusNoContent)
}

// RecentLoads returns the load history, newest first
// GET /api/loads?limit=N
func (s *Server) RecentLoads(c *gin.Context) {
	limit := defaultLoadsLimit
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxLoadsLimit)
	}

	events, err := s.recorder.RecentLoads(limit)
	if err != nil {
		s.logger.Error("Failed to read load history", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read load history"})
		return
	}
	if events == nil {
		events = []recorder.LoadEvent{}
	}
	c.JSON(http.StatusOK, events)
}

func (s *Server) abortNoSeries(c *gin.Context, snap view.Snapshot) {
	err := snap.Err
	if err == nil {
		err = view.ErrNoSeries
	}
	status, msg := errorStatus(err)
	c.JSON(status, gin.H{"error": msg, "symbol": snap.Symbol})
}

func (s *Server) render(c *gin.Context, status int, contentType, name string, data any) {
	var buf bytes.Buffer
	if err := s.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		s.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		c.String(http.StatusInternalServerError, "render failed")
		return
	}
	c.Data(status, contentType, buf.Bytes())
}
