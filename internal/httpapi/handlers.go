package httpapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuqie6/HRBench/internal/eventbus"
	"github.com/yuqie6/HRBench/internal/excel"
	"github.com/yuqie6/HRBench/internal/pkg/buildinfo"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
	"github.com/yuqie6/HRBench/internal/service"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// MetricsProvider 指标聚合
type MetricsProvider interface {
	CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*service.CompanyMetrics, error)
	CollectCompanyMetricsBestEffort(ctx context.Context, companyID string, year, quarter int) (*service.CompanyMetrics, error)
}

// BenchmarkProvider 基准查询与对比
type BenchmarkProvider interface {
	GetBenchmark(ctx context.Context, industry, companySize, region string, year, quarter int) (*schema.IndustryBenchmark, error)
	ListBenchmarks(ctx context.Context, filter repository.BenchmarkFilter) ([]schema.IndustryBenchmark, error)
	Compare(metrics *service.CompanyMetrics, benchmark *schema.IndustryBenchmark) (*service.ComparisonResult, error)
	CompareCompany(ctx context.Context, companyID string, year, quarter int) (*service.ComparisonResult, error)
}

// Importer 基准批次导入
type Importer interface {
	ImportBenchmarkData(ctx context.Context, rows []service.BenchmarkRow) (*service.ImportResult, error)
}

// Deps 处理器依赖
type Deps struct {
	AppName    string
	Metrics    MetricsProvider
	Benchmarks BenchmarkProvider
	Importer   Importer
	Hub        *eventbus.Hub
	BestEffort bool // 指标接口默认使用 best-effort 聚合，可被 ?best_effort= 覆盖
}

// Handler HTTP 接口处理器
type Handler struct {
	appName    string
	metrics    MetricsProvider
	benchmarks BenchmarkProvider
	importer   Importer
	hub        *eventbus.Hub
	bestEffort bool
	startTime  time.Time
}

// NewHandler 创建处理器
func NewHandler(d Deps) *Handler {
	hub := d.Hub
	if hub == nil {
		hub = eventbus.NewHub()
	}
	return &Handler{
		appName:    d.AppName,
		metrics:    d.Metrics,
		benchmarks: d.Benchmarks,
		importer:   d.Importer,
		hub:        hub,
		bestEffort: d.BestEffort,
		startTime:  time.Now(),
	}
}

// RegisterRoutes 注册 /api 下的业务路由
func (h *Handler) RegisterRoutes(r gin.IRouter) {
	companies := r.Group("/companies/:id")
	{
		companies.GET("/metrics", h.GetCompanyMetrics)
		companies.GET("/comparison", h.CompareCompany)
		companies.GET("/comparison/export", h.ExportComparison)
	}

	benchmarks := r.Group("/benchmarks")
	{
		benchmarks.GET("", h.ListBenchmarks)
		benchmarks.GET("/lookup", h.LookupBenchmark)
		benchmarks.POST("/compare", h.Compare)
		benchmarks.POST("/import", h.ImportBenchmarks)
		benchmarks.GET("/template", h.DownloadTemplate)
	}

	reference := r.Group("/reference")
	{
		reference.GET("/dimensions", h.ListDimensions)
		reference.GET("/options", h.ListOptions)
	}

	r.GET("/events", h.StreamEvents)
}

func writeError(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"error": msg})
}

// writeServiceError 将服务层错误映射为 HTTP 状态码
func writeServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidPeriod):
		writeError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrCompanyNotFound), errors.Is(err, service.ErrBenchmarkNotFound):
		writeError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrMetricsUnavailable), errors.Is(err, context.DeadlineExceeded):
		writeError(c, http.StatusServiceUnavailable, service.ErrMetricsUnavailable.Error())
	default:
		slog.Error("接口处理失败", "path", c.FullPath(), "error", err)
		writeError(c, http.StatusInternalServerError, err.Error())
	}
}

// parsePeriodQuery 读取 year/quarter 查询参数，缺省为 0
func parsePeriodQuery(c *gin.Context) (int, int, error) {
	year, err := parseIntQuery(c, "year")
	if err != nil {
		return 0, 0, err
	}
	quarter, err := parseIntQuery(c, "quarter")
	if err != nil {
		return 0, 0, err
	}
	return year, quarter, nil
}

func parseIntQuery(c *gin.Context, name string) (int, error) {
	v := strings.TrimSpace(c.Query(name))
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("参数 %s 无效", name)
	}
	return n, nil
}

func (h *Handler) useBestEffort(c *gin.Context) bool {
	v := strings.TrimSpace(c.Query("best_effort"))
	if v == "" {
		return h.bestEffort
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return h.bestEffort
	}
	return b
}

// Health 存活检查
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"ok":         true,
		"name":       h.appName,
		"version":    buildinfo.String(),
		"started_at": h.startTime.Format(time.RFC3339),
	})
}

// GetCompanyMetrics 聚合企业指标
func (h *Handler) GetCompanyMetrics(c *gin.Context) {
	if h.metrics == nil {
		writeError(c, http.StatusServiceUnavailable, "指标聚合不可用")
		return
	}
	year, quarter, err := parsePeriodQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}

	companyID := c.Param("id")
	var metrics *service.CompanyMetrics
	if h.useBestEffort(c) {
		metrics, err = h.metrics.CollectCompanyMetricsBestEffort(c.Request.Context(), companyID, year, quarter)
	} else {
		metrics, err = h.metrics.CollectCompanyMetrics(c.Request.Context(), companyID, year, quarter)
	}
	if err != nil {
		h.publishAggregationFailed(companyID, err)
		writeServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, metrics)
}

// CompareCompany 企业与所属细分行业基准对比
func (h *Handler) CompareCompany(c *gin.Context) {
	result, ok := h.compareCompany(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// ExportComparison 导出对比报告 xlsx
func (h *Handler) ExportComparison(c *gin.Context) {
	result, ok := h.compareCompany(c)
	if !ok {
		return
	}
	f, err := excel.WriteComparison(result)
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	name := fmt.Sprintf("comparison_%s_%d.xlsx", result.CompanyID, result.Period.Year)
	c.Header("Content-Disposition", "attachment; filename="+name)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *Handler) compareCompany(c *gin.Context) (*service.ComparisonResult, bool) {
	if h.benchmarks == nil {
		writeError(c, http.StatusServiceUnavailable, "基准对比不可用")
		return nil, false
	}
	year, quarter, err := parsePeriodQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return nil, false
	}
	companyID := c.Param("id")
	result, err := h.benchmarks.CompareCompany(c.Request.Context(), companyID, year, quarter)
	if err != nil {
		if errors.Is(err, service.ErrMetricsUnavailable) {
			h.publishAggregationFailed(companyID, err)
		}
		writeServiceError(c, err)
		return nil, false
	}
	h.publishComparison(result)
	return result, true
}

// ListBenchmarks 浏览基准目录
func (h *Handler) ListBenchmarks(c *gin.Context) {
	if h.benchmarks == nil {
		writeError(c, http.StatusServiceUnavailable, "基准目录不可用")
		return
	}
	year, err := parseIntQuery(c, "year")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	limit, err := parseIntQuery(c, "limit")
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	items, err := h.benchmarks.ListBenchmarks(c.Request.Context(), repository.BenchmarkFilter{
		Industry:    strings.TrimSpace(c.Query("industry")),
		CompanySize: strings.TrimSpace(c.Query("company_size")),
		Region:      strings.TrimSpace(c.Query("region")),
		Year:        year,
		Limit:       limit,
	})
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if items == nil {
		items = []schema.IndustryBenchmark{}
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

// LookupBenchmark 五元组精确查找
func (h *Handler) LookupBenchmark(c *gin.Context) {
	if h.benchmarks == nil {
		writeError(c, http.StatusServiceUnavailable, "基准目录不可用")
		return
	}
	year, quarter, err := parsePeriodQuery(c)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	b, err := h.benchmarks.GetBenchmark(c.Request.Context(), c.Query("industry"), c.Query("company_size"), c.Query("region"), year, quarter)
	if err != nil {
		writeServiceError(c, err)
		return
	}
	if b == nil {
		writeError(c, http.StatusNotFound, service.ErrBenchmarkNotFound.Error())
		return
	}
	c.JSON(http.StatusOK, b)
}

type compareRequest struct {
	Metrics   *service.CompanyMetrics   `json:"metrics"`
	Benchmark *schema.IndustryBenchmark `json:"benchmark"`
	Key       *schema.BenchmarkKey      `json:"key"`
}

// Compare 对调用方提供的指标快照执行对比；基准可直接给出或按五元组查找
func (h *Handler) Compare(c *gin.Context) {
	if h.benchmarks == nil {
		writeError(c, http.StatusServiceUnavailable, "基准对比不可用")
		return
	}
	var req compareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, http.StatusBadRequest, "参数错误")
		return
	}
	if req.Metrics == nil {
		writeError(c, http.StatusBadRequest, "metrics 不能为空")
		return
	}

	benchmark := req.Benchmark
	if benchmark == nil {
		if req.Key == nil {
			writeError(c, http.StatusBadRequest, "benchmark 与 key 不能同时为空")
			return
		}
		var err error
		benchmark, err = h.benchmarks.GetBenchmark(c.Request.Context(), req.Key.Industry, req.Key.CompanySize, req.Key.Region, req.Key.Year, req.Key.Quarter)
		if err != nil {
			writeServiceError(c, err)
			return
		}
		if benchmark == nil {
			writeError(c, http.StatusNotFound, fmt.Sprintf("%s: %s", service.ErrBenchmarkNotFound.Error(), req.Key.String()))
			return
		}
	}

	result, err := h.benchmarks.Compare(req.Metrics, benchmark)
	if err != nil {
		writeError(c, http.StatusBadRequest, err.Error())
		return
	}
	h.publishComparison(result)
	c.JSON(http.StatusOK, result)
}

type importRequest struct {
	Rows       []service.BenchmarkRow `json:"rows"`
	DataSource string                 `json:"data_source"`
}

// ImportBenchmarks 导入基准批次：JSON {rows:[...]} 或 multipart 上传 xlsx（字段名 file）
func (h *Handler) ImportBenchmarks(c *gin.Context) {
	if h.importer == nil {
		writeError(c, http.StatusServiceUnavailable, "基准导入不可用")
		return
	}

	var (
		rows   []service.BenchmarkRow
		source string
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		file, header, err := c.Request.FormFile("file")
		if err != nil {
			writeError(c, http.StatusBadRequest, "缺少上传文件")
			return
		}
		defer file.Close()
		rows, err = excel.ParseBenchmarkRows(file)
		if err != nil {
			writeError(c, http.StatusBadRequest, err.Error())
			return
		}
		source = header.Filename
	} else {
		var req importRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "参数错误")
			return
		}
		rows = req.Rows
		source = "api"
		if req.DataSource != "" {
			for i := range rows {
				if rows[i].DataSource == "" {
					rows[i].DataSource = req.DataSource
				}
			}
		}
	}
	if len(rows) == 0 {
		writeError(c, http.StatusBadRequest, "没有可导入的数据行")
		return
	}

	result, err := h.importer.ImportBenchmarkData(c.Request.Context(), rows)
	if err != nil {
		h.hub.Publish(eventbus.Event{
			Type: eventbus.TypeImportFailed,
			Data: map[string]any{"file": source, "error": err.Error()},
		})
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	h.hub.Publish(eventbus.Event{
		Type: eventbus.TypeBenchmarkImported,
		Data: map[string]any{
			"file":     source,
			"batch_id": result.BatchID,
			"success":  result.Success,
			"failed":   result.Failed,
			"errors":   result.Errors,
		},
	})
	c.JSON(http.StatusOK, result)
}

// DownloadTemplate 下载导入模板
func (h *Handler) DownloadTemplate(c *gin.Context) {
	f, err := excel.BuildImportTemplate()
	if err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	defer f.Close()

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		writeError(c, http.StatusInternalServerError, err.Error())
		return
	}
	c.Header("Content-Disposition", "attachment; filename=benchmark_template.xlsx")
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ListDimensions 对比维度表
func (h *Handler) ListDimensions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": service.Dimensions()})
}

// ListOptions 行业/规模/地区/可信度选项
func (h *Handler) ListOptions(c *gin.Context) {
	c.JSON(http.StatusOK, service.ReferenceOptions())
}

func (h *Handler) publishAggregationFailed(companyID string, err error) {
	h.hub.Publish(eventbus.Event{
		Type: eventbus.TypeAggregationFailed,
		Data: map[string]any{"company_id": companyID, "error": err.Error()},
	})
}

func (h *Handler) publishComparison(result *service.ComparisonResult) {
	h.hub.Publish(eventbus.Event{
		Type: eventbus.TypeComparisonDone,
		Data: map[string]any{
			"company_id":    result.CompanyID,
			"benchmark":     result.Benchmark.BenchmarkKey.String(),
			"overall_score": result.OverallScore,
			"overall_label": string(result.OverallLabel),
		},
	})
}
