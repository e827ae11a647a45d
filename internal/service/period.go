package service

import (
	"fmt"
	"time"

	"github.com/yuqie6/HRBench/internal/repository"
)

// ReportingPeriod 统计期间：全年或某一季度
type ReportingPeriod struct {
	Year    int `json:"year"`
	Quarter int `json:"quarter,omitempty"` // 0 表示全年
}

// NewReportingPeriod 校验并构造统计期间
func NewReportingPeriod(year, quarter int) (ReportingPeriod, error) {
	if year < 1970 || year > 9999 {
		return ReportingPeriod{}, fmt.Errorf("%w: 年份 %d", ErrInvalidPeriod, year)
	}
	if quarter < 0 || quarter > 4 {
		return ReportingPeriod{}, fmt.Errorf("%w: 季度必须为 1-4，实际 %d", ErrInvalidPeriod, quarter)
	}
	return ReportingPeriod{Year: year, Quarter: quarter}, nil
}

// resolvePeriod year=0 时取 now 所在年份
func resolvePeriod(now time.Time, year, quarter int) (ReportingPeriod, error) {
	if year == 0 {
		year = now.Year()
	}
	return NewReportingPeriod(year, quarter)
}

// Window 期间对应的 [start, end)
func (p ReportingPeriod) Window() (time.Time, time.Time) {
	start, end, err := repository.QuarterRange(p.Year, p.Quarter)
	if err != nil {
		return time.Time{}, time.Time{}
	}
	return start, end
}

// PriorWindow 上一年同期
func (p ReportingPeriod) PriorWindow() (time.Time, time.Time) {
	start, end := p.Window()
	return start.AddDate(-1, 0, 0), end.AddDate(-1, 0, 0)
}

// WindowMs 毫秒形式的 [start, end)
func (p ReportingPeriod) WindowMs() (int64, int64) {
	return repository.WindowMs(p.Window())
}

// PriorWindowMs 毫秒形式的上一年同期
func (p ReportingPeriod) PriorWindowMs() (int64, int64) {
	return repository.WindowMs(p.PriorWindow())
}

// Label 展示用文本：2024年 / 2024年Q2
func (p ReportingPeriod) Label() string {
	if p.Quarter == 0 {
		return fmt.Sprintf("%d年", p.Year)
	}
	return fmt.Sprintf("%d年Q%d", p.Year, p.Quarter)
}
