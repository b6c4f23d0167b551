package site

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"goodminton/courts"
	"goodminton/googlecalendar"
	applog "goodminton/logger"
	"goodminton/poll"
)

// Runner answers availability requests. *poll.Runner implements it.
type Runner interface {
	Run(ctx context.Context, req *poll.Request) ([]courts.AvailabilitySummary, error)
}

type ErrorResponse struct {
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

type SummaryResponse struct {
	Location    string  `json:"location"`
	Date        string  `json:"date"`
	Start       string  `json:"start"`
	Courts      int     `json:"courts"`
	MaxDuration float64 `json:"max_duration"`
	MinDuration float64 `json:"min_duration"`
	Text        string  `json:"text"`
}

type UnitErrorResponse struct {
	Location string `json:"location"`
	Date     string `json:"date"`
	Error    string `json:"error"`
}

// FiltersResponse echoes the filters that were applied.
type FiltersResponse struct {
	WindowStart string   `json:"window_start,omitempty"`
	WindowEnd   string   `json:"window_end,omitempty"`
	MinDuration *float64 `json:"min_duration,omitempty"`
}

type AvailabilityResponse struct {
	Filters   FiltersResponse     `json:"filters"`
	Summaries []SummaryResponse   `json:"summaries"`
	Errors    []UnitErrorResponse `json:"errors"`
}

// Server exposes availability over HTTP.
type Server struct {
	Runner  Runner
	MaxDays int
	Logger  *zap.Logger
	// Now stamps generated calendars.
	Now     func() time.Time
}

func NewServer(runner Runner, maxDays int, logger *zap.Logger) *Server {
	if logger == nil {
		logger = applog.Get()
	}
	return &Server{Runner: runner, MaxDays: maxDays, Logger: logger, Now: time.Now}
}

// Router builds the gin engine serving every route.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(s.requestLogger())

	router.GET("/healthz", s.healthz)
	api := router.Group("/api")
	{
		api.GET("/availability", s.availability)
		api.GET("/availability.ics", s.availabilityICS)
	}
	return router
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.Logger.Info("Handled request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)))
	}
}

func (s *Server) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) availability(c *gin.Context) {
	req, summaries, unitErrs, ok := s.run(c)
	if !ok {
		return
	}
	resp := AvailabilityResponse{
		Filters:   filtersResponse(req),
		Summaries: make([]SummaryResponse, 0, len(summaries)),
		Errors:    make([]UnitErrorResponse, 0, len(unitErrs)),
	}
	for _, sum := range summaries {
		resp.Summaries = append(resp.Summaries, SummaryResponse{
			Location:    sum.Location.String(),
			Date:        sum.Date.Format(time.DateOnly),
			Start:       sum.Start.String(),
			Courts:      sum.Courts,
			MaxDuration: sum.MaxDuration,
			MinDuration: sum.MinDuration,
			Text:        sum.String(),
		})
	}
	for _, unitErr := range unitErrs {
		resp.Errors = append(resp.Errors, UnitErrorResponse{
			Location: unitErr.Location.String(),
			Date:     unitErr.Date.Format(time.DateOnly),
			Error:    unitErr.Err.Error(),
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) availabilityICS(c *gin.Context) {
	_, summaries, _, ok := s.run(c)
	if !ok {
		return
	}
	events := googlecalendar.EventsFromSummaries(summaries, googlecalendar.VenueLocation())
	body := googlecalendar.BuildICS(events, s.Now())
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(body))
}

// run parses the query and runs it, writing the error response itself when
// nothing can be returned.
func (s *Server) run(c *gin.Context) (*poll.Request, []courts.AvailabilitySummary, []*poll.UnitError, bool) {
	args := make(map[string]string)
	for key, values := range c.Request.URL.Query() {
		if len(values) > 0 {
			args[key] = values[0]
		}
	}
	req, err := poll.NewRequest(args, s.MaxDays)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query", Details: err.Error()})
		return nil, nil, nil, false
	}

	summaries, err := s.Runner.Run(c.Request.Context(), req)
	switch {
	case err == nil:
		return req, summaries, nil, true
	case errors.Is(err, courts.ErrConfiguration):
		c.JSON(http.StatusBadRequest, ErrorResponse{Message: "Invalid query", Details: err.Error()})
		return nil, nil, nil, false
	case summaries == nil:
		s.Logger.Error("Availability run failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, ErrorResponse{Message: "Could not read the booking pages", Details: err.Error()})
		return nil, nil, nil, false
	}
	s.Logger.Warn("Availability run was partial", zap.Error(err))
	return req, summaries, poll.UnitErrors(err), true
}

func filtersResponse(req *poll.Request) FiltersResponse {
	var resp FiltersResponse
	if req.Window != nil {
		if start, ok := req.Window.Start(); ok {
			resp.WindowStart = start.String()
		}
		if end, ok := req.Window.End(); ok {
			resp.WindowEnd = end.String()
		}
	}
	if req.MinDuration != nil {
		hours := req.MinDuration.Hours()
		resp.MinDuration = &hours
	}
	return resp
}
