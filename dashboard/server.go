// Package dashboard serves one enriched run as a table, a scatter chart and a
// map. Handlers only read the run; nothing is written back.
package dashboard

import (
	"context"
	"embed"
	"errors"
	"html/template"
	"io/fs"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ramen-dashboard/models"
	"ramen-dashboard/utils"
)

//go:embed templates/*.tmpl assets/*
var embeddedFS embed.FS

const (
	pageTitle = "Ramen For Katie"
	pageIcon  = "🍜"
)

// favicon draws pageIcon as an inline SVG so no icon file is served.
var favicon = template.URL("data:image/svg+xml,<svg xmlns='http://www.w3.org/2000/svg' viewBox='0 0 100 100'>" +
	"<text y='.9em' font-size='90'>" + pageIcon + "</text></svg>")

// Options carries presentation settings that are not part of the run.
type Options struct {
	MapboxKey      string
	IngestDuration time.Duration
}

// Server hosts the gin dashboard for a single run.
type Server struct {
	addr       string
	run        *models.Run
	opts       Options
	logger     *utils.Logger
	router     *gin.Engine
	httpServer *http.Server
	started    chan struct{}
}

// NewServer builds the router for run. It does not start listening.
func NewServer(addr string, run *models.Run, opts Options, logger *utils.Logger) (*Server, error) {
	s := &Server{
		addr:    normalizeAddress(addr),
		run:     run,
		opts:    opts,
		logger:  logger,
		started: make(chan struct{}),
	}
	router, err := s.buildRouter()
	if err != nil {
		return nil, err
	}
	s.router = router
	return s, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// URL is a browsable address for the dashboard on this host.
func (s *Server) URL() string {
	host, port, err := net.SplitHostPort(s.addr)
	if err != nil {
		return "http://" + s.addr + "/"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

// Started is closed once the listener is bound.
func (s *Server) Started() <-chan struct{} {
	return s.started
}

// Run listens and serves until ctx is cancelled or the server fails.
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	s.addr = ln.Addr().String()
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()
	close(s.started)
	s.logger.Info("[dashboard] Serving %d listings on %s", len(s.run.Listings), s.URL())

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		<-errCh
		s.logger.Info("[dashboard] Stopped")
		return nil
	case err := <-errCh:
		return err
	}
}

type tableRow struct {
	Name       string
	Address    string
	Popularity float64
	Price      float64
}

func (s *Server) buildRouter() (*gin.Engine, error) {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), requestLogger(s.logger))
	if err := router.SetTrustedProxies(nil); err != nil {
		return nil, err
	}

	tmpl, err := template.New("dashboard").ParseFS(embeddedFS, "templates/index.tmpl")
	if err != nil {
		return nil, err
	}
	router.SetHTMLTemplate(tmpl)

	assets, err := fs.Sub(embeddedFS, "assets")
	if err != nil {
		return nil, err
	}
	router.StaticFS("/assets", http.FS(assets))

	chart := NewChartSpec(s.run.Listings)
	deck := NewDeckSpec(s.run.Listings, s.opts.MapboxKey)
	rows := tableRows(s.run.Listings)
	registry := newRegistry(s.run, s.opts.IngestDuration)

	router.GET("/", func(c *gin.Context) {
		c.HTML(http.StatusOK, "index.tmpl", gin.H{
			"Title":     pageTitle,
			"Icon":      pageIcon,
			"Favicon":   favicon,
			"RunID":     s.run.ID.String(),
			"FetchedAt": s.run.FetchedAt.Format(time.RFC1123),
			"Count":     len(rows),
			"Rows":      rows,
		})
	})

	router.GET("/api/listings", func(c *gin.Context) {
		payload := make([]gin.H, 0, len(rows))
		for _, r := range rows {
			payload = append(payload, gin.H{
				"name":       r.Name,
				"Address":    r.Address,
				"Popularity": r.Popularity,
				"prices":     r.Price,
			})
		}
		c.JSON(http.StatusOK, gin.H{"run_id": s.run.ID.String(), "listings": payload})
	})

	router.GET("/api/chart", func(c *gin.Context) {
		c.JSON(http.StatusOK, chart)
	})

	router.GET("/api/map", func(c *gin.Context) {
		c.JSON(http.StatusOK, deck)
	})

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "listings": len(rows)})
	})

	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	return router, nil
}

func tableRows(listings []*models.Listing) []tableRow {
	rows := make([]tableRow, 0, len(listings))
	for _, l := range listings {
		rows = append(rows, tableRow{
			Name:       l.Name,
			Address:    l.Address,
			Popularity: l.Popularity,
			Price:      l.Price,
		})
	}
	return rows
}

func normalizeAddress(addr string) string {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "0.0.0.0:8501"
	}
	if strings.HasPrefix(addr, ":") {
		return "0.0.0.0" + addr
	}
	if _, _, err := net.SplitHostPort(addr); err == nil {
		return addr
	}
	return net.JoinHostPort(addr, "8501")
}
