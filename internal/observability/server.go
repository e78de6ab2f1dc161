package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// version is reported on the health endpoint so operators can tell deployed
// builds apart.
const version = "0.1.0"

// EndpointInfo is one registered endpoint as reported by the admin API.
type EndpointInfo struct {
	Protocol uint16
	Name     string
}

// AdminServer exposes health, metrics, and the endpoint listing over HTTP.
// It is operator-facing and optional; the link runs without it.
type AdminServer struct {
	name      string
	addr      string
	endpoints func() []EndpointInfo
	log       zerolog.Logger
	startedAt time.Time
	srv       *http.Server
}

func NewAdminServer(name, addr string, endpoints func() []EndpointInfo, log zerolog.Logger) *AdminServer {
	return &AdminServer{
		name:      name,
		addr:      addr,
		endpoints: endpoints,
		log:       log,
		startedAt: time.Now(),
	}
}

func (a *AdminServer) router() *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"uptime":  time.Since(a.startedAt).String(),
			"service": a.name,
			"version": version,
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/endpoints", func(c *gin.Context) {
		list := []EndpointInfo{}
		if a.endpoints != nil {
			list = a.endpoints()
		}
		out := make([]gin.H, 0, len(list))
		for _, ep := range list {
			out = append(out, gin.H{
				"protocol": fmt.Sprintf("0x%04x", ep.Protocol),
				"name":     ep.Name,
			})
		}
		c.JSON(http.StatusOK, gin.H{"endpoints": out})
	})
	return r
}

// Start serves in a background goroutine. Listen errors surface on the log
// only; the admin surface is not allowed to take the link down.
func (a *AdminServer) Start() {
	a.srv = &http.Server{Addr: a.addr, Handler: a.router()}
	go func() {
		a.log.Info().Str("addr", a.addr).Msg("admin server listening")
		if err := a.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.log.Error().Err(err).Msg("admin server stopped")
		}
	}()
}

func (a *AdminServer) Close() error {
	if a.srv == nil {
		return nil
	}
	return a.srv.Close()
}
