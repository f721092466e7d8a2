package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/zeebo/xxh3"

	"tpchq5/internal/engine"
	"tpchq5/internal/models"
)

type Handler struct {
	eng            atomic.Pointer[engine.Engine]
	defaultThreads int
}

// NewHandler returns a handler that answers 503 until SetEngine is called.
func NewHandler(eng *engine.Engine, defaultThreads int) *Handler {
	h := &Handler{defaultThreads: max(defaultThreads, 1)}
	if eng != nil {
		h.eng.Store(eng)
	}
	return h
}

func (h *Handler) SetEngine(eng *engine.Engine) { h.eng.Store(eng) }

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	api := e.Group("/api")
	api.GET("/health", h.GetHealth)
	api.GET("/tables", h.GetTables)
	api.GET("/revenue", h.GetRevenue)
	api.GET("/revenue.arrow", h.GetRevenueArrow)
}

// --- HANDLERS ---
func getPaginationParams(c echo.Context, defaultLimit int) (int, int) {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		limit = defaultLimit
	}
	offset, err := strconv.Atoi(c.QueryParam("offset"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

func (h *Handler) loaded() (*engine.Engine, error) {
	eng := h.eng.Load()
	if eng == nil {
		return nil, echo.NewHTTPError(http.StatusServiceUnavailable, "tables are still loading")
	}
	return eng, nil
}

func (h *Handler) GetHealth(c echo.Context) error {
	if h.eng.Load() == nil {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "loading"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ready"})
}

func (h *Handler) GetTables(c echo.Context) error {
	eng, err := h.loaded()
	if err != nil {
		return err
	}
	stats := make([]models.TableStat, 0, len(engine.Schemas))
	counts := eng.Store().Stats()
	for _, s := range engine.Schemas {
		stats = append(stats, models.TableStat{Table: s.Name, Rows: counts[s.Name]})
	}
	return c.JSON(http.StatusOK, stats)
}

func (h *Handler) queryParams(c echo.Context) (engine.Params, error) {
	p := engine.Params{
		Region:    c.QueryParam("region"),
		StartDate: c.QueryParam("start_date"),
		EndDate:   c.QueryParam("end_date"),
		Threads:   h.defaultThreads,
	}
	if v := c.QueryParam("threads"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("threads %q is not an integer", v))
		}
		p.Threads = n
	}
	if err := p.Validate(); err != nil {
		return p, echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return p, nil
}

func (h *Handler) run(c echo.Context) (engine.Params, engine.Result, time.Duration, error) {
	eng, err := h.loaded()
	if err != nil {
		return engine.Params{}, nil, 0, err
	}
	p, err := h.queryParams(c)
	if err != nil {
		return p, nil, 0, err
	}
	t0 := time.Now()
	res, err := eng.Run(p)
	if err != nil {
		if errors.Is(err, engine.ErrInvalidParams) {
			return p, nil, 0, echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return p, nil, 0, echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	return p, res, time.Since(t0), nil
}

// GetRevenue runs the query with the request parameters.
func (h *Handler) GetRevenue(c echo.Context) error {
	p, res, elapsed, err := h.run(c)
	if err != nil {
		return err
	}
	nations := res.Sorted()
	c.Response().Header().Set("ETag", etag(nations))

	total := len(nations)
	limit, offset := getPaginationParams(c, total)
	page := []models.NationRevenue{}
	if offset < total {
		page = nations[offset:min(offset+limit, total)]
	}

	return c.JSON(http.StatusOK, models.RevenueReport{
		Region:    p.Region,
		StartDate: p.StartDate,
		EndDate:   p.EndDate,
		Threads:   p.Threads,
		Nations:   page,
		Total:     total,
		Limit:     limit,
		Offset:    offset,
		ElapsedMs: float64(elapsed.Microseconds()) / 1000,
	})
}

// GetRevenueArrow runs the query and streams the result as Arrow IPC.
func (h *Handler) GetRevenueArrow(c echo.Context) error {
	_, res, _, err := h.run(c)
	if err != nil {
		return err
	}
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.apache.arrow.stream")
	c.Response().Header().Set("ETag", etag(res.Sorted()))
	c.Response().WriteHeader(http.StatusOK)
	return engine.WriteArrow(c.Response(), res)
}

// etag fingerprints a sorted result at the precision of the result file.
func etag(nations []models.NationRevenue) string {
	var sb strings.Builder
	for _, n := range nations {
		fmt.Fprintf(&sb, "%s|%.2f\n", n.Nation, n.Revenue)
	}
	return fmt.Sprintf(`"%016x"`, xxh3.HashString(sb.String()))
}
