package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/HRBench/internal/observability"
)

// NewRouter 组装 gin 引擎：/health、/metrics 与 /api 业务路由
func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	r.GET("/health", h.Health)
	r.GET("/metrics", gin.WrapH(observability.Handler()))

	api := r.Group("/api")
	h.RegisterRoutes(api)
	return r
}

// requestLogger 以 slog 记录请求（SSE 长连接只记录建立）
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		started := time.Now()
		c.Next()
		slog.Debug("http 请求",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration_ms", time.Since(started).Milliseconds(),
		)
	}
}

// Server 本地 HTTP 服务
type Server struct {
	ln      net.Listener
	srv     *http.Server
	baseURL string
}

// Options 服务选项
type Options struct {
	ListenAddr string // e.g. "127.0.0.1:8080"，端口 0 表示随机端口
}

// Start 监听并在后台提供服务；ctx 结束时自动关闭
func Start(ctx context.Context, handler http.Handler, opts Options) (*Server, error) {
	if handler == nil {
		return nil, fmt.Errorf("handler 不能为空")
	}
	if strings.TrimSpace(opts.ListenAddr) == "" {
		opts.ListenAddr = "127.0.0.1:0"
	}

	ln, err := net.Listen("tcp", opts.ListenAddr)
	if err != nil {
		return nil, fmt.Errorf("监听 %s 失败: %w", opts.ListenAddr, err)
	}

	s := &Server{
		ln: ln,
		srv: &http.Server{
			Handler:           handler,
			ReadHeaderTimeout: 5 * time.Second,
			// 请求 ctx 随服务 ctx 结束，SSE 长连接可及时退出
			BaseContext: func(net.Listener) context.Context { return ctx },
		},
		baseURL: "http://" + ln.Addr().String(),
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	go func() {
		if err := s.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("http server 异常退出", "error", err)
		}
	}()

	slog.Info("HTTP 服务已启动", "base_url", s.baseURL)
	return s, nil
}

// BaseURL 实际监听地址
func (s *Server) BaseURL() string {
	if s == nil {
		return ""
	}
	return s.baseURL
}

// Shutdown 优雅关闭
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil || s.srv == nil {
		return nil
	}
	return s.srv.Shutdown(ctx)
}
