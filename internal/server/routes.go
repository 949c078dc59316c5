package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/danmuck/padctl/internal/auth"
	"github.com/danmuck/padctl/internal/observability"
	"github.com/danmuck/padctl/internal/padctl"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// resetRequest is the body of POST /pads/reset-passwords. Pads accepts any
// selector form: "all", one index, or a list.
type resetRequest struct {
	Pads any `json:"pads"`
}

func (b *Bridge) RegisterRoutes() {
	b.router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(b.Appeared).String(),
			"service": b.ID,
			"version": version,
		})
	})

	b.router.GET("/ready", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"ready":   b.pads != nil,
			"uptime":  time.Since(b.Appeared).String(),
			"service": b.ID,
			"version": version,
		})
	})

	b.router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	ops := b.router.Group("/", auth.RequireToken(b.validator), b.rateLimit())

	ops.POST("/server/start", func(c *gin.Context) {
		respond(c, b.pads.StartServer(c.Request.Context()))
	})
	ops.POST("/server/stop", func(c *gin.Context) {
		respond(c, b.pads.StopServer(c.Request.Context()))
	})
	ops.GET("/server/check", func(c *gin.Context) {
		respond(c, b.pads.CheckServer(c.Request.Context()))
	})
	ops.GET("/pads/status", func(c *gin.Context) {
		respond(c, b.pads.Status(c.Request.Context()))
	})
	ops.POST("/pads/:pad/clear", func(c *gin.Context) {
		respond(c, b.pads.ClearPad(c.Request.Context(), c.Param("pad")))
	})
	ops.POST("/pads/reset-passwords", func(c *gin.Context) {
		req, err := decodeResetRequest(c.Request.Body)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		respond(c, b.pads.ResetPasswords(c.Request.Context(), req.Pads))
	})
}

func respond(c *gin.Context, res padctl.Result) {
	c.Set(observability.ResultCodeKey, res.Code)
	c.JSON(http.StatusOK, res)
}

var errBadResetBody = errors.New("reset-passwords body must be a JSON object")

func decodeResetRequest(body io.Reader) (resetRequest, error) {
	var req resetRequest
	if body == nil {
		return req, nil
	}
	dec := json.NewDecoder(body)
	dec.UseNumber()
	if err := dec.Decode(&req); err != nil {
		if errors.Is(err, io.EOF) {
			return resetRequest{}, nil
		}
		return resetRequest{}, errBadResetBody
	}
	return req, nil
}
