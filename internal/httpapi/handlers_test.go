package httpapi

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"

	"github.com/yuqie6/HRBench/internal/eventbus"
	"github.com/yuqie6/HRBench/internal/excel"
	"github.com/yuqie6/HRBench/internal/repository"
	"github.com/yuqie6/HRBench/internal/schema"
	"github.com/yuqie6/HRBench/internal/service"
	"github.com/yuqie6/HRBench/internal/testutil"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// stubMetrics 返回固定指标集或固定错误
type stubMetrics struct {
	set schema.MetricSet
	err error
}

func (s *stubMetrics) collect(companyID string, year, quarter int) (*service.CompanyMetrics, error) {
	if s.err != nil {
		return nil, s.err
	}
	if year == 0 {
		year = 2024
	}
	period, err := service.NewReportingPeriod(year, quarter)
	if err != nil {
		return nil, err
	}
	return &service.CompanyMetrics{
		CompanyID:   companyID,
		Period:      period,
		PeriodLabel: period.Label(),
		MetricSet:   s.set,
	}, nil
}

func (s *stubMetrics) CollectCompanyMetrics(ctx context.Context, companyID string, year, quarter int) (*service.CompanyMetrics, error) {
	return s.collect(companyID, year, quarter)
}

func (s *stubMetrics) CollectCompanyMetricsBestEffort(ctx context.Context, companyID string, year, quarter int) (*service.CompanyMetrics, error) {
	return s.collect(companyID, year, quarter)
}

type testEnv struct {
	router     *gin.Engine
	hub        *eventbus.Hub
	metrics    *stubMetrics
	benchmarks *repository.BenchmarkRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.OpenTestDB(t)
	companies := repository.NewCompanyRepository(db)
	if err := companies.Upsert(context.Background(), &schema.Company{
		ID: "c1", Name: "星河科技", Industry: "technology", CompanySize: "medium", Region: "east",
	}); err != nil {
		t.Fatalf("seed company: %v", err)
	}

	env := &testEnv{
		hub:        eventbus.NewHub(),
		metrics:    &stubMetrics{},
		benchmarks: repository.NewBenchmarkRepository(db),
	}
	h := NewHandler(Deps{
		AppName:    "hrbench",
		Metrics:    env.metrics,
		Benchmarks: service.NewBenchmarkService(env.benchmarks, companies, env.metrics, nil),
		Importer:   service.NewImportService(env.benchmarks),
		Hub:        env.hub,
	})
	env.router = NewRouter(h)
	return env
}

func (e *testEnv) do(method, target string, body []byte, contentType string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, bytes.NewReader(body))
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) postJSON(t *testing.T, target string, payload any) *httptest.ResponseRecorder {
	t.Helper()
	b, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return e.do(http.MethodPost, target, b, "application/json")
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode body %q: %v", w.Body.String(), err)
	}
}

func importRows(t *testing.T, e *testEnv) {
	t.Helper()
	w := e.postJSON(t, "/api/benchmarks/import", gin.H{
		"data_source": "年度调研",
		"rows": []gin.H{
			{"industry": "technology", "company_size": "medium", "region": "east", "year": 2024,
				"avg_salary": 32.5, "turnover_rate": 15, "voluntary_turnover_rate": 10, "avg_training_hours": 40},
			{"industry": "finance", "company_size": "medium", "region": "east", "year": 2024, "turnover_rate": 150},
		},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("import status=%d body=%s", w.Code, w.Body.String())
	}
	var res service.ImportResult
	decode(t, w, &res)
	if res.Success != 1 || res.Failed != 1 || len(res.Errors) != 1 || res.Errors[0] != "第2行: 离职率必须在0-100之间" {
		t.Fatalf("import result=%+v", res)
	}
}

func TestHealth(t *testing.T) {
	e := newTestEnv(t)
	w := e.do(http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var body map[string]any
	decode(t, w, &body)
	if body["ok"] != true || body["name"] != "hrbench" {
		t.Fatalf("body=%v", body)
	}
}

func TestImportLookupAndList(t *testing.T) {
	e := newTestEnv(t)
	importRows(t, e)

	w := e.do(http.MethodGet, "/api/benchmarks/lookup?industry=technology&company_size=medium&region=east&year=2024", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("lookup status=%d body=%s", w.Code, w.Body.String())
	}
	var b schema.IndustryBenchmark
	decode(t, w, &b)
	if b.AvgSalary != 32.5 || b.InvoluntaryTurnoverRate != 5 || b.DataSource != "年度调研" {
		t.Fatalf("benchmark=%+v", b)
	}

	w = e.do(http.MethodGet, "/api/benchmarks/lookup?industry=technology&company_size=medium&region=east&year=2024&quarter=2", nil, "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("quarter lookup status=%d, want 404", w.Code)
	}

	w = e.do(http.MethodGet, "/api/benchmarks?industry=technology", nil, "")
	var list struct {
		Items []schema.IndustryBenchmark `json:"items"`
		Total int                        `json:"total"`
	}
	decode(t, w, &list)
	if list.Total != 1 || len(list.Items) != 1 {
		t.Fatalf("list=%+v", list)
	}

	w = e.do(http.MethodGet, "/api/benchmarks?year=abc", nil, "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("bad year status=%d, want 400", w.Code)
	}
}

func TestImportRejectsEmptyBatch(t *testing.T) {
	e := newTestEnv(t)
	w := e.postJSON(t, "/api/benchmarks/import", gin.H{"rows": []gin.H{}})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestImportMultipartTemplate(t *testing.T) {
	e := newTestEnv(t)
	events := e.hub.Subscribe(t.Context(), 4, eventbus.TypeBenchmarkImported)

	f, err := excel.BuildImportTemplate()
	if err != nil {
		t.Fatalf("template: %v", err)
	}
	xlsx, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write template: %v", err)
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "benchmarks.xlsx")
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	_, _ = part.Write(xlsx.Bytes())
	_ = mw.Close()

	w := e.do(http.MethodPost, "/api/benchmarks/import", body.Bytes(), mw.FormDataContentType())
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res service.ImportResult
	decode(t, w, &res)
	if res.Success != 1 || res.Failed != 0 {
		t.Fatalf("result=%+v", res)
	}

	select {
	case evt := <-events:
		if evt.Data["file"] != "benchmarks.xlsx" {
			t.Fatalf("event=%+v", evt)
		}
	case <-time.After(time.Second):
		t.Fatalf("benchmark_imported event not published")
	}
}

func TestCompanyMetrics_ErrorMapping(t *testing.T) {
	e := newTestEnv(t)

	e.metrics.err = &service.CategoryError{Category: service.CategoryCompensation, Err: context.DeadlineExceeded}
	w := e.do(http.MethodGet, "/api/companies/c1/metrics", nil, "")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status=%d, want 503", w.Code)
	}
	var body map[string]string
	decode(t, w, &body)
	if body["error"] != "该期间的指标暂不可用" {
		t.Fatalf("error=%q", body["error"])
	}

	e.metrics.err = service.ErrCompanyNotFound
	if w := e.do(http.MethodGet, "/api/companies/x/metrics", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("status=%d, want 404", w.Code)
	}

	e.metrics.err = nil
	if w := e.do(http.MethodGet, "/api/companies/c1/metrics?quarter=5", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/companies/c1/metrics?year=x", nil, ""); w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestCompanyMetrics_OK(t *testing.T) {
	e := newTestEnv(t)
	e.metrics.set.EmployeeCount = 120
	e.metrics.set.TurnoverRate = 12.5

	w := e.do(http.MethodGet, "/api/companies/c1/metrics?year=2024&quarter=2&best_effort=true", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var body map[string]any
	decode(t, w, &body)
	if body["employee_count"] != float64(120) || body["turnover_rate"] != 12.5 || body["period_label"] != "2024年Q2" {
		t.Fatalf("body=%v", body)
	}
}

func TestCompareCompany(t *testing.T) {
	e := newTestEnv(t)
	importRows(t, e)
	b, err := e.benchmarks.FindByKey(context.Background(), schema.BenchmarkKey{Industry: "technology", CompanySize: "medium", Region: "east", Year: 2024})
	if err != nil || b == nil {
		t.Fatalf("benchmark=%v err=%v", b, err)
	}
	e.metrics.set = b.MetricSet
	events := e.hub.Subscribe(t.Context(), 4, eventbus.TypeComparisonDone)

	w := e.do(http.MethodGet, "/api/companies/c1/comparison?year=2024", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res service.ComparisonResult
	decode(t, w, &res)
	if res.CompanyName != "星河科技" || res.OverallScore != 50 || res.OverallLabel != service.PositionAverage {
		t.Fatalf("result name=%q score=%v label=%v", res.CompanyName, res.OverallScore, res.OverallLabel)
	}
	select {
	case <-events:
	case <-time.After(time.Second):
		t.Fatalf("comparison event not published")
	}

	if w := e.do(http.MethodGet, "/api/companies/ghost/comparison?year=2024", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("unknown company status=%d, want 404", w.Code)
	}
	if w := e.do(http.MethodGet, "/api/companies/c1/comparison?year=2023", nil, ""); w.Code != http.StatusNotFound {
		t.Fatalf("missing benchmark status=%d, want 404", w.Code)
	}
}

func TestExportComparison(t *testing.T) {
	e := newTestEnv(t)
	importRows(t, e)

	w := e.do(http.MethodGet, "/api/companies/c1/comparison/export?year=2024", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Header().Get("Content-Disposition"), "comparison_c1_2024.xlsx") {
		t.Fatalf("disposition=%q", w.Header().Get("Content-Disposition"))
	}
	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("open export: %v", err)
	}
	defer f.Close()
	if idx, _ := f.GetSheetIndex(excel.ComparisonSheet); idx < 0 {
		t.Fatalf("sheets=%v", f.GetSheetList())
	}
}

func TestCompare_Body(t *testing.T) {
	e := newTestEnv(t)
	importRows(t, e)

	metrics := gin.H{"company_id": "adhoc", "period": gin.H{"year": 2024}, "avg_salary": 26, "turnover_rate": 15}
	w := e.postJSON(t, "/api/benchmarks/compare", gin.H{
		"metrics": metrics,
		"key":     gin.H{"industry": "technology", "company_size": "medium", "region": "east", "year": 2024},
	})
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var res service.ComparisonResult
	decode(t, w, &res)
	var salary *service.DimensionComparison
	for i := range res.Dimensions {
		if res.Dimensions[i].Key == "avg_salary" {
			salary = &res.Dimensions[i]
		}
	}
	if salary == nil || salary.Difference != -6.5 || salary.PositionLabel != service.PositionTop {
		t.Fatalf("avg_salary=%+v", salary)
	}

	w = e.postJSON(t, "/api/benchmarks/compare", gin.H{
		"metrics": metrics,
		"key":     gin.H{"industry": "retail", "company_size": "medium", "region": "east", "year": 2024},
	})
	if w.Code != http.StatusNotFound {
		t.Fatalf("unknown key status=%d, want 404", w.Code)
	}

	if w := e.postJSON(t, "/api/benchmarks/compare", gin.H{"key": gin.H{"industry": "technology"}}); w.Code != http.StatusBadRequest {
		t.Fatalf("missing metrics status=%d, want 400", w.Code)
	}
}

func TestTemplateAndReference(t *testing.T) {
	e := newTestEnv(t)

	w := e.do(http.MethodGet, "/api/benchmarks/template", nil, "")
	if w.Code != http.StatusOK || w.Header().Get("Content-Type") != xlsxContentType {
		t.Fatalf("status=%d type=%q", w.Code, w.Header().Get("Content-Type"))
	}
	f, err := excelize.OpenReader(w.Body)
	if err != nil {
		t.Fatalf("open template: %v", err)
	}
	_ = f.Close()

	w = e.do(http.MethodGet, "/api/reference/dimensions", nil, "")
	var dims struct {
		Items []service.ComparisonDimension `json:"items"`
	}
	decode(t, w, &dims)
	if len(dims.Items) != len(service.Dimensions()) {
		t.Fatalf("dimensions=%d", len(dims.Items))
	}

	w = e.do(http.MethodGet, "/api/reference/options", nil, "")
	var opts service.ReferenceData
	decode(t, w, &opts)
	if len(opts.CompanySizes) != 5 {
		t.Fatalf("company sizes=%v", opts.CompanySizes)
	}

	if w := e.do(http.MethodGet, "/metrics", nil, ""); w.Code != http.StatusOK {
		t.Fatalf("metrics status=%d", w.Code)
	}
}

func TestStreamEvents(t *testing.T) {
	e := newTestEnv(t)
	srv := httptest.NewServer(e.router)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, _ := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events?types=benchmark_imported", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer resp.Body.Close()
	if ct := resp.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content-type=%q", ct)
	}

	reader := bufio.NewReader(resp.Body)
	readEvent := func() (string, string) {
		var name, data string
		for {
			line, err := reader.ReadString('\n')
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			line = strings.TrimRight(line, "\n")
			switch {
			case strings.HasPrefix(line, "event: "):
				name = strings.TrimPrefix(line, "event: ")
			case strings.HasPrefix(line, "data: "):
				data = strings.TrimPrefix(line, "data: ")
			case line == "":
				return name, data
			}
		}
	}

	if name, _ := readEvent(); name != "ready" {
		t.Fatalf("first event=%q, want ready", name)
	}
	e.hub.Publish(eventbus.Event{Type: eventbus.TypeComparisonDone})
	e.hub.Publish(eventbus.Event{Type: eventbus.TypeBenchmarkImported, Data: map[string]any{"batch_id": "b1"}})

	name, data := readEvent()
	if name != eventbus.TypeBenchmarkImported || !strings.Contains(data, `"batch_id":"b1"`) {
		t.Fatalf("event=%q data=%s", name, data)
	}
}

func TestSanitizeSSEName(t *testing.T) {
	if got := sanitizeSSEName(" a\nb\r "); got != "ab" {
		t.Fatalf("got %q", got)
	}
	if got := sanitizeSSEName(""); got != "message" {
		t.Fatalf("got %q", got)
	}
}
