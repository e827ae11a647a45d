package repository

import (
	"fmt"
	"time"
)

// QuarterRange 将 (year, quarter) 解析为本地时区的 [start, end) 区间。
// quarter=0 表示全年。
func QuarterRange(year, quarter int) (start time.Time, end time.Time, err error) {
	if year <= 0 {
		return time.Time{}, time.Time{}, fmt.Errorf("年份无效: %d", year)
	}
	if quarter < 0 || quarter > 4 {
		return time.Time{}, time.Time{}, fmt.Errorf("季度无效: %d", quarter)
	}
	if quarter == 0 {
		start = time.Date(year, time.January, 1, 0, 0, 0, 0, time.Local)
		return start, start.AddDate(1, 0, 0), nil
	}
	start = time.Date(year, time.Month((quarter-1)*3+1), 1, 0, 0, 0, 0, time.Local)
	return start, start.AddDate(0, 3, 0), nil
}

// WindowMs 将 [start, end) 转为毫秒时间戳
func WindowMs(start, end time.Time) (startMs int64, endMs int64) {
	return start.UnixMilli(), end.UnixMilli()
}
