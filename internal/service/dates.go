package service

import (
	"time"

	"github.com/mautops/timesheet-gin/internal/apperror"
)

// DateOnly 将时间截断为 UTC 零点
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DateLayout 日期字段格式
const DateLayout = "2006-01-02"

// ParseDate 解析 YYYY-MM-DD 日期
func ParseDate(field, value string) (time.Time, error) {
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, apperror.Validation(field, "must be a date in YYYY-MM-DD format")
	}
	return t, nil
}

// ISOWeeksInYear 返回 ISO 年的周数(52 或 53)
func ISOWeeksInYear(year int) int {
	_, week := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return week
}

// ISOWeekDays 返回 ISO 周的周一到周日
func ISOWeekDays(year, week int) ([]time.Time, error) {
	if year < 1 || year > 9999 {
		return nil, apperror.Validation("year", "must be between 1 and 9999")
	}
	if week < 1 || week > ISOWeeksInYear(year) {
		return nil, apperror.Validation("week", "week %d does not exist in ISO year %d", week, year)
	}

	// 1 月 4 日总在第 1 周
	jan4 := time.Date(year, time.January, 4, 0, 0, 0, 0, time.UTC)
	offset := (int(jan4.Weekday()) + 6) % 7
	monday := jan4.AddDate(0, 0, -offset+(week-1)*7)

	days := make([]time.Time, 7)
	for i := range days {
		days[i] = monday.AddDate(0, 0, i)
	}
	return days, nil
}
