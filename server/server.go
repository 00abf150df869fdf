// Package server exposes the ledger reports and the sync trigger over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rustyeddy/propjournal/analytics"
	"github.com/rustyeddy/propjournal/ledger"
	"github.com/rustyeddy/propjournal/reconcile"
	"github.com/rustyeddy/propjournal/report"
)

// Syncer runs one reconciliation pass.
type Syncer interface {
	Run(ctx context.Context) (reconcile.Report, error)
}

type Handler struct {
	Reports *report.Service
	Syncer  Syncer
	Logger  *zap.Logger

	now func() time.Time
}

// NewEngine builds a gin engine with every route registered.
func NewEngine(h *Handler) *gin.Engine {
	engine := gin.New()
	engine.Use(gin.Recovery())
	h.Register(engine)
	return engine
}

func (h *Handler) Register(r *gin.Engine) {
	r.GET("/health", h.health)
	r.GET("/accounts", h.accounts)
	r.GET("/trades", h.trades)
	r.GET("/dashboard", h.dashboard)
	r.GET("/calendar", h.calendar)
	r.POST("/sync", h.sync)
}

func (h *Handler) logger() *zap.Logger {
	if h.Logger == nil {
		return zap.NewNop()
	}
	return h.Logger
}

func (h *Handler) today() time.Time {
	if h.now != nil {
		return h.now()
	}
	return time.Now()
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) accounts(c *gin.Context) {
	items, err := h.Reports.Accounts(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

func (h *Handler) trades(c *gin.Context) {
	accountID, ok := accountQuery(c)
	if !ok {
		return
	}
	var day time.Time
	if v := strings.TrimSpace(c.Query("date")); v != "" {
		d, err := time.Parse(analytics.DayLayout, v)
		if err != nil {
			Error(c, http.StatusBadRequest, "date must be YYYY-MM-DD", nil)
			return
		}
		day = d
	}
	items, err := h.Reports.Trades(c.Request.Context(), accountID, day)
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, items, map[string]any{"total": len(items)})
}

func (h *Handler) dashboard(c *gin.Context) {
	accountID, ok := accountQuery(c)
	if !ok {
		return
	}
	d, err := h.Reports.Dashboard(c.Request.Context(), accountID)
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, d, nil)
}

func (h *Handler) calendar(c *gin.Context) {
	accountID, ok := accountQuery(c)
	if !ok {
		return
	}
	now := h.today()
	year := intQuery(c, "year", now.Year())
	month := intQuery(c, "month", int(now.Month()))
	if month < 1 || month > 12 {
		Error(c, http.StatusBadRequest, "month must be 1-12", nil)
		return
	}
	cal, err := h.Reports.Calendar(c.Request.Context(), accountID, year, time.Month(month))
	if err != nil {
		h.fail(c, err)
		return
	}
	Ok(c, cal, nil)
}

func (h *Handler) sync(c *gin.Context) {
	if h.Syncer == nil {
		Error(c, http.StatusServiceUnavailable, "sync unavailable", nil)
		return
	}
	rep, err := h.Syncer.Run(c.Request.Context())
	if err != nil {
		h.logger().Warn("sync failed", zap.Error(err))
		Error(c, http.StatusBadGateway, err.Error(), nil)
		return
	}
	Ok(c, rep, nil)
}

func (h *Handler) fail(c *gin.Context, err error) {
	if errors.Is(err, ledger.ErrNotFound) {
		Error(c, http.StatusNotFound, err.Error(), nil)
		return
	}
	h.logger().Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	Error(c, http.StatusInternalServerError, "internal error", nil)
}

// accountQuery reads account_id; absent means all accounts. It writes a
// 400 and reports false when the value is malformed.
func accountQuery(c *gin.Context) (int64, bool) {
	v := strings.TrimSpace(c.Query("account_id"))
	if v == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(v, 10, 64)
	if err != nil || id < 0 {
		Error(c, http.StatusBadRequest, "account_id must be a positive integer", nil)
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, key string, def int) int {
	if val := c.Query(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return def
}
