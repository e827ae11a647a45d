package repository

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/yuqie6/HRBench/internal/schema"
	"github.com/yuqie6/HRBench/internal/testutil"
)

func ms(year int, month time.Month, day int) int64 {
	return time.Date(year, month, day, 10, 0, 0, 0, time.Local).UnixMilli()
}

func TestQuarterRange(t *testing.T) {
	start, end, err := QuarterRange(2024, 0)
	if err != nil {
		t.Fatalf("QuarterRange error: %v", err)
	}
	if start.Month() != time.January || end.Year() != 2025 || end.Month() != time.January {
		t.Fatalf("full year range = [%v, %v)", start, end)
	}

	start, end, err = QuarterRange(2024, 3)
	if err != nil {
		t.Fatalf("QuarterRange error: %v", err)
	}
	if start.Month() != time.July || end.Month() != time.October || end.Year() != 2024 {
		t.Fatalf("Q3 range = [%v, %v)", start, end)
	}

	start, end, _ = QuarterRange(2024, 4)
	if start.Month() != time.October || end.Year() != 2025 || end.Month() != time.January {
		t.Fatalf("Q4 range = [%v, %v)", start, end)
	}

	if _, _, err := QuarterRange(2024, 5); err == nil {
		t.Fatalf("quarter 5 should fail")
	}
	if _, _, err := QuarterRange(0, 1); err == nil {
		t.Fatalf("year 0 should fail")
	}
}

func TestTestDBMigratesAllModels(t *testing.T) {
	db := testutil.OpenTestDB(t)
	for _, m := range Models() {
		if !db.Migrator().HasTable(m) {
			t.Fatalf("test db missing table for %T", m)
		}
	}
}

func TestEmployeeRepositoryCounts(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewEmployeeRepository(db)
	ctx := context.Background()

	employees := []schema.Employee{
		{CompanyID: "c1", Status: schema.EmployeeStatusActive, CreatedAt: ms(2023, 3, 1)},
		{CompanyID: "c1", Status: schema.EmployeeStatusActive, CreatedAt: ms(2024, 2, 1)},
		{CompanyID: "c1", Status: schema.EmployeeStatusResigned, CreatedAt: ms(2023, 5, 1), TerminatedAt: ms(2024, 6, 1)},
		{CompanyID: "c1", Status: schema.EmployeeStatusTerminated, CreatedAt: ms(2022, 5, 1), TerminatedAt: ms(2024, 7, 1)},
		{CompanyID: "c1", Status: schema.EmployeeStatusTerminated, CreatedAt: ms(2022, 5, 1), TerminatedAt: ms(2023, 7, 1)},
		{CompanyID: "c2", Status: schema.EmployeeStatusActive, CreatedAt: ms(2024, 1, 1)},
	}
	if err := repo.BatchInsert(ctx, employees); err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}

	active, err := repo.CountActive(ctx, "c1")
	if err != nil || active != 2 {
		t.Fatalf("active=%d err=%v, want 2", active, err)
	}
	total, _ := repo.CountAll(ctx, "c1")
	if total != 5 {
		t.Fatalf("total=%d, want 5", total)
	}

	startMs, endMs := ms(2023, 1, 1), ms(2024, 1, 1)
	created, _ := repo.CountCreatedBetween(ctx, "c1", startMs, endMs)
	if created != 2 {
		t.Fatalf("created=%d, want 2", created)
	}

	startMs, endMs = ms(2024, 1, 1), ms(2025, 1, 1)
	left, _ := repo.CountLeftBetween(ctx, "c1", startMs, endMs, schema.EmployeeStatusTerminated, schema.EmployeeStatusResigned)
	if left != 2 {
		t.Fatalf("left=%d, want 2", left)
	}
	resigned, _ := repo.CountLeftBetween(ctx, "c1", startMs, endMs, schema.EmployeeStatusResigned)
	if resigned != 1 {
		t.Fatalf("resigned=%d, want 1", resigned)
	}
	none, _ := repo.CountLeftBetween(ctx, "c1", startMs, endMs)
	if none != 0 {
		t.Fatalf("no statuses should count 0, got %d", none)
	}
}

func TestPayrollRepositoryPaidStats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	employees := NewEmployeeRepository(db)
	repo := NewPayrollRepository(db)
	ctx := context.Background()

	if err := employees.BatchInsert(ctx, []schema.Employee{
		{ID: 1, CompanyID: "c1", Level: schema.LevelJunior, Status: schema.EmployeeStatusActive},
		{ID: 2, CompanyID: "c1", Level: schema.LevelSenior, Status: schema.EmployeeStatusActive},
	}); err != nil {
		t.Fatalf("insert employees: %v", err)
	}
	if err := repo.BatchInsert(ctx, []schema.PayrollRecord{
		{CompanyID: "c1", EmployeeID: 1, PayDate: ms(2024, 3, 1), GrossPay: 10000, Status: schema.PayrollStatusPaid},
		{CompanyID: "c1", EmployeeID: 2, PayDate: ms(2024, 3, 1), GrossPay: 30000, Status: schema.PayrollStatusPaid},
		{CompanyID: "c1", EmployeeID: 2, PayDate: ms(2024, 3, 1), GrossPay: 99999, Status: schema.PayrollStatusPending},
		{CompanyID: "c1", EmployeeID: 1, PayDate: ms(2023, 3, 1), GrossPay: 5000, Status: schema.PayrollStatusPaid},
	}); err != nil {
		t.Fatalf("insert payroll: %v", err)
	}

	stat, err := repo.GetPaidStats(ctx, "c1", ms(2024, 1, 1), ms(2025, 1, 1))
	if err != nil {
		t.Fatalf("GetPaidStats error: %v", err)
	}
	if stat.RecordCount != 2 || stat.AvgGrossPay != 20000 {
		t.Fatalf("stat=%+v, want 2 records avg 20000", stat)
	}

	empty, err := repo.GetPaidStats(ctx, "c1", ms(2020, 1, 1), ms(2021, 1, 1))
	if err != nil || empty.RecordCount != 0 || empty.AvgGrossPay != 0 {
		t.Fatalf("empty=%+v err=%v, want zero", empty, err)
	}

	levels, err := repo.GetPaidStatsByLevel(ctx, "c1", ms(2024, 1, 1), ms(2025, 1, 1))
	if err != nil {
		t.Fatalf("GetPaidStatsByLevel error: %v", err)
	}
	got := map[string]float64{}
	for _, l := range levels {
		got[l.Level] = l.AvgGrossPay
	}
	if got[schema.LevelJunior] != 10000 || got[schema.LevelSenior] != 30000 {
		t.Fatalf("levels=%v", got)
	}
}

func TestPerformanceRepositoryStats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewPerformanceRepository(db)
	ctx := context.Background()

	scores := []float64{95, 85, 82, 75, 60}
	records := make([]schema.PerformanceRecord, 0, len(scores))
	for _, s := range scores {
		records = append(records, schema.PerformanceRecord{CompanyID: "c1", FinalScore: s, ReviewedAt: ms(2024, 6, 30)})
	}
	if err := repo.BatchInsert(ctx, records); err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}

	stat, err := repo.GetStats(ctx, "c1", ms(2024, 4, 1), ms(2024, 7, 1))
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stat.Total != 5 || stat.Excellent != 1 || stat.Good != 2 || stat.Average != 1 || stat.Poor != 1 {
		t.Fatalf("stat=%+v", stat)
	}
	if math.Abs(stat.AvgScore-79.4) > 1e-9 {
		t.Fatalf("avg=%v, want 79.4", stat.AvgScore)
	}
}

func TestCandidateRepositoryHiredAndOffers(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewCandidateRepository(db)
	ctx := context.Background()

	if err := repo.BatchInsert(ctx, []schema.Candidate{
		{CompanyID: "c1", Status: schema.CandidateStatusHired, CreatedAt: ms(2024, 1, 1), UpdatedAt: ms(2024, 1, 31)},
		{CompanyID: "c1", Status: schema.CandidateStatusOfferDeclined, CreatedAt: ms(2024, 1, 1), UpdatedAt: ms(2024, 2, 1)},
		{CompanyID: "c1", Status: schema.CandidateStatusInterview, CreatedAt: ms(2024, 1, 1), UpdatedAt: ms(2024, 2, 1)},
		{CompanyID: "c1", Status: schema.CandidateStatusHired, CreatedAt: ms(2023, 1, 1), UpdatedAt: ms(2023, 2, 1)},
	}); err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}

	startMs, endMs := ms(2024, 1, 1), ms(2024, 4, 1)
	hired, err := repo.GetHiredBetween(ctx, "c1", startMs, endMs)
	if err != nil || len(hired) != 1 {
		t.Fatalf("hired=%d err=%v, want 1", len(hired), err)
	}
	offers, _ := repo.CountByStatusesBetween(ctx, "c1", startMs, endMs,
		schema.CandidateStatusOffered, schema.CandidateStatusHired, schema.CandidateStatusOfferDeclined)
	if offers != 2 {
		t.Fatalf("offers=%d, want 2", offers)
	}
}

func TestAttendanceRepositoryStats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewAttendanceRepository(db)
	ctx := context.Background()

	if err := repo.BatchInsert(ctx, []schema.AttendanceRecord{
		{CompanyID: "c1", Date: ms(2024, 5, 6), Status: schema.AttendanceStatusNormal, WorkMinutes: 600},
		{CompanyID: "c1", Date: ms(2024, 5, 7), Status: schema.AttendanceStatusLate, WorkMinutes: 480},
		{CompanyID: "c1", Date: ms(2024, 5, 8), Status: schema.AttendanceStatusEarlyLeave, WorkMinutes: 300},
		{CompanyID: "c1", Date: ms(2024, 5, 9), Status: schema.AttendanceStatusAbsent, WorkMinutes: 0},
	}); err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}

	stat, err := repo.GetStats(ctx, "c1", ms(2024, 4, 1), ms(2024, 7, 1))
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stat.Total != 4 || stat.Present != 3 {
		t.Fatalf("stat=%+v, want total 4 present 3", stat)
	}
	if math.Abs(stat.OvertimeHours-2) > 1e-9 {
		t.Fatalf("overtime=%v, want 2", stat.OvertimeHours)
	}
}

func TestTrainingRepositoryStats(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTrainingRepository(db)
	ctx := context.Background()

	if err := repo.BatchInsert(ctx, []schema.TrainingRecord{
		{CompanyID: "c1", LearningHours: 10, Status: schema.TrainingStatusCompleted, StartedAt: ms(2024, 2, 1)},
		{CompanyID: "c1", LearningHours: 20, Status: schema.TrainingStatusInProgress, StartedAt: ms(2024, 2, 2)},
	}); err != nil {
		t.Fatalf("BatchInsert error: %v", err)
	}

	stat, err := repo.GetStats(ctx, "c1", ms(2024, 1, 1), ms(2025, 1, 1))
	if err != nil {
		t.Fatalf("GetStats error: %v", err)
	}
	if stat.Total != 2 || stat.Completed != 1 || stat.AvgHours != 15 {
		t.Fatalf("stat=%+v", stat)
	}
}

func TestBenchmarkRepositoryUpsertAndFind(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewBenchmarkRepository(db)
	ctx := context.Background()

	key := schema.BenchmarkKey{Industry: "technology", CompanySize: "medium", Region: "east", Year: 2024}
	b := &schema.IndustryBenchmark{Industry: key.Industry, CompanySize: key.CompanySize, Region: key.Region, Year: key.Year, DataConfidence: schema.ConfidenceHigh}
	b.AvgSalary = 32.5
	if err := repo.Upsert(ctx, b); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}

	got, err := repo.FindByKey(ctx, key)
	if err != nil {
		t.Fatalf("FindByKey error: %v", err)
	}
	if got == nil || got.AvgSalary != 32.5 {
		t.Fatalf("got=%+v, want avg salary 32.5", got)
	}

	// 同键覆盖
	updated := &schema.IndustryBenchmark{Industry: key.Industry, CompanySize: key.CompanySize, Region: key.Region, Year: key.Year}
	updated.AvgSalary = 35
	if err := repo.Upsert(ctx, updated); err != nil {
		t.Fatalf("Upsert error: %v", err)
	}
	got, _ = repo.FindByKey(ctx, key)
	if got.AvgSalary != 35 {
		t.Fatalf("avg salary=%v, want 35", got.AvgSalary)
	}
	if n, _ := repo.Count(ctx); n != 1 {
		t.Fatalf("count=%d, want 1", n)
	}

	// 全年记录不匹配季度查询
	quarterKey := key
	quarterKey.Quarter = 2
	missing, err := repo.FindByKey(ctx, quarterKey)
	if err != nil || missing != nil {
		t.Fatalf("quarter lookup=%+v err=%v, want nil", missing, err)
	}

	list, err := repo.List(ctx, BenchmarkFilter{Industry: "technology"})
	if err != nil || len(list) != 1 {
		t.Fatalf("list=%d err=%v, want 1", len(list), err)
	}
}
