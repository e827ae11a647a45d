package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/yuqie6/HRBench/internal/schema"
)

func validRow(industry string) BenchmarkRow {
	return BenchmarkRow{
		Industry:          industry,
		CompanySize:       "medium",
		Region:            "east",
		Year:              2024,
		AvgSalary:         Float(32.5),
		TurnoverRate:      Float(15),
		AvgAttendanceRate: Float(95),
		DataSource:        "行业薪酬调研",
		SampleSize:        80,
	}
}

func TestImportBenchmarkData_RowIsolation(t *testing.T) {
	repo := newFakeBenchmarks()
	svc := NewImportService(repo)

	bad := validRow("finance")
	bad.TurnoverRate = Float(150)
	rows := []BenchmarkRow{validRow("technology"), bad, validRow("retail")}

	res, err := svc.ImportBenchmarkData(context.Background(), rows)
	if err != nil {
		t.Fatalf("ImportBenchmarkData err=%v", err)
	}
	if res.Success != 2 || res.Failed != 1 || res.Total != 3 {
		t.Fatalf("result=%+v, want success=2 failed=1", res)
	}
	if len(res.Errors) != 1 || res.Errors[0] != "第2行: 离职率必须在0-100之间" {
		t.Fatalf("errors=%v", res.Errors)
	}
	if res.BatchID == "" {
		t.Fatalf("batch id should be set")
	}
	if len(repo.records) != 2 {
		t.Fatalf("persisted=%d, want 2", len(repo.records))
	}
	if b, _ := repo.FindByKey(context.Background(), schema.BenchmarkKey{Industry: "finance", CompanySize: "medium", Region: "east", Year: 2024}); b != nil {
		t.Fatalf("rejected row should not be persisted")
	}
}

func TestImportBenchmarkData_MissingRegion(t *testing.T) {
	svc := NewImportService(newFakeBenchmarks())
	row := validRow("technology")
	row.Region = "  "

	res, err := svc.ImportBenchmarkData(context.Background(), []BenchmarkRow{row})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Success != 0 || res.Failed != 1 || len(res.Errors) != 1 || res.Errors[0] != "第1行: 地区不能为空" {
		t.Fatalf("result=%+v", res)
	}
}

func TestImportBenchmarkData_MultipleViolationsOneRow(t *testing.T) {
	svc := NewImportService(newFakeBenchmarks())
	row := validRow("technology")
	row.Industry = ""
	row.AvgAttendanceRate = Float(-1)
	row.EmployeeSatisfaction = Float(101)
	row.DataConfidence = "certain"

	res, err := svc.ImportBenchmarkData(context.Background(), []BenchmarkRow{row})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Failed != 1 || len(res.Errors) != 4 {
		t.Fatalf("result=%+v, want 1 failed row with 4 messages", res)
	}
	for _, msg := range res.Errors {
		if !strings.HasPrefix(msg, "第1行: ") {
			t.Fatalf("message %q missing row prefix", msg)
		}
	}
}

func TestImportBenchmarkData_UpsertOverwrites(t *testing.T) {
	repo := newFakeBenchmarks()
	svc := NewImportService(repo)
	ctx := context.Background()

	first := validRow("Technology ")
	first.VoluntaryTurnoverRate = Float(9.5)
	if _, err := svc.ImportBenchmarkData(ctx, []BenchmarkRow{first}); err != nil {
		t.Fatalf("err=%v", err)
	}
	second := validRow("technology")
	second.AvgSalary = Float(35)
	if _, err := svc.ImportBenchmarkData(ctx, []BenchmarkRow{second}); err != nil {
		t.Fatalf("err=%v", err)
	}

	if len(repo.records) != 1 {
		t.Fatalf("records=%d, want 1", len(repo.records))
	}
	b, _ := repo.FindByKey(ctx, schema.BenchmarkKey{Industry: "technology", CompanySize: "medium", Region: "east", Year: 2024})
	if b == nil || b.AvgSalary != 35 || b.DataConfidence != schema.ConfidenceMedium {
		t.Fatalf("benchmark=%+v", b)
	}
}

func TestImportBenchmarkData_DerivesInvoluntaryTurnover(t *testing.T) {
	repo := newFakeBenchmarks()
	row := validRow("technology")
	row.VoluntaryTurnoverRate = Float(9.5)
	if _, err := NewImportService(repo).ImportBenchmarkData(context.Background(), []BenchmarkRow{row}); err != nil {
		t.Fatalf("err=%v", err)
	}
	b, _ := repo.FindByKey(context.Background(), schema.BenchmarkKey{Industry: "technology", CompanySize: "medium", Region: "east", Year: 2024})
	if b == nil || b.InvoluntaryTurnoverRate != 5.5 {
		t.Fatalf("involuntary=%v, want 5.5", b)
	}
	if b.SalaryByLevel == nil || len(b.SalaryByLevel) != 5 {
		t.Fatalf("salary_by_level=%v", b.SalaryByLevel)
	}
}

func TestImportBenchmarkData_WriteFailureCountsAsFailed(t *testing.T) {
	repo := newFakeBenchmarks()
	repo.upsertErr = map[string]error{"finance": errors.New("disk full")}

	res, err := NewImportService(repo).ImportBenchmarkData(context.Background(), []BenchmarkRow{validRow("finance"), validRow("retail")})
	if err != nil {
		t.Fatalf("err=%v", err)
	}
	if res.Success != 1 || res.Failed != 1 || !strings.Contains(res.Errors[0], "写入失败") {
		t.Fatalf("result=%+v", res)
	}
}

func TestImportBenchmarkData_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res, err := NewImportService(newFakeBenchmarks()).ImportBenchmarkData(ctx, []BenchmarkRow{validRow("technology")})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if res == nil || res.Success != 0 {
		t.Fatalf("result=%+v", res)
	}
}

func TestImportBenchmarkData_VoluntaryAboveTotal(t *testing.T) {
	row := validRow("technology")
	row.VoluntaryTurnoverRate = Float(20)

	res, _ := NewImportService(newFakeBenchmarks()).ImportBenchmarkData(context.Background(), []BenchmarkRow{row})
	if res.Failed != 1 || res.Errors[0] != "第1行: 主动离职率不能高于离职率" {
		t.Fatalf("result=%+v", res)
	}
}
