package analytics

import (
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	defaultWindow = 30 * 24 * time.Hour
)

// Filters 分析查询条件。From 为当天 00:00:00.000Z，To 为当天 23:59:59.999Z
type Filters struct {
	From        time.Time
	To          time.Time
	QrCodeID    string
	ExcludeBots bool
	FromInput   string
	ToInput     string
}

// ParseFilters 解析查询串参数。非法日期回退到最近 30 天，from 晚于 to 时交换；
// bots 仅在显式为 "0" 时包含机器人流量。
func ParseFilters(from, to, qr, bots string, now time.Time) Filters {
	now = now.UTC()

	start, ok := parseDay(from)
	if !ok {
		start = now.Add(-defaultWindow)
	}
	end, ok := parseDay(to)
	if ok {
		end = end.Add(24*time.Hour - time.Millisecond)
	} else {
		end = now
	}
	if start.After(end) {
		start, end = end, start
	}

	return Filters{
		From:        start,
		To:          end,
		QrCodeID:    strings.TrimSpace(qr),
		ExcludeBots: bots != "0",
		FromInput:   start.Format(dateLayout),
		ToInput:     end.Format(dateLayout),
	}
}

func parseDay(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	t, err := time.ParseInLocation(dateLayout, raw, time.UTC)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}
