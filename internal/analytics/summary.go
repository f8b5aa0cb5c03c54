package analytics

import (
	"sort"
	"strconv"
	"strings"
	"time"

	"dynamic-qr-platform/internal/model"
)

const topQrLimit = 5

// KPIs 汇总指标
type KPIs struct {
	TotalScans       int   `json:"totalScans"`
	UniqueScans      int   `json:"uniqueScans"`
	ActiveQrCodes    int64 `json:"activeQrCodes"`
	ScansLast24Hours int   `json:"scansLast24Hours"`
}

// DailyPoint 某个 UTC 日的扫码数
type DailyPoint struct {
	Day   string `json:"day"`
	Scans int    `json:"scans"`
}

// TopQrRow 扫码数排行
type TopQrRow struct {
	QrCodeID string `json:"qrCodeId"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Scans    int    `json:"scans"`
}

// Summary 分析汇总
type Summary struct {
	KPIs        KPIs         `json:"kpis"`
	DailySeries []DailyPoint `json:"dailySeries"`
	TopQrCodes  []TopQrRow   `json:"topQrCodes"`
}

// BuildSummary 纯函数：events 已按调用方的筛选条件过滤，这里只做计算。
// 空输入返回零值结构，日序列仍覆盖 from..to 的每一天。
func BuildSummary(events []model.ScanEvent, activeQrCodes int64, from, to, now time.Time) Summary {
	floor := now.Add(-24 * time.Hour)
	last24h := 0
	for _, e := range events {
		if !e.ScannedAt.Before(floor) {
			last24h++
		}
	}

	return Summary{
		KPIs: KPIs{
			TotalScans:       len(events),
			UniqueScans:      uniqueScanCount(events),
			ActiveQrCodes:    activeQrCodes,
			ScansLast24Hours: last24h,
		},
		DailySeries: dailySeries(events, from, to),
		TopQrCodes:  topQrCodes(events),
	}
}

// 有 ipHash 的按哈希去重，没有的每条单独计数
func uniqueScanCount(events []model.ScanEvent) int {
	keys := make(map[string]struct{}, len(events))
	for i, e := range events {
		// 下标保证没有 ID 的记录也互不合并
		key := "event:" + strconv.Itoa(i)
		if e.IPHash != nil {
			key = "ip:" + *e.IPHash
		}
		keys[key] = struct{}{}
	}
	return len(keys)
}

func utcDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

func dailySeries(events []model.ScanEvent, from, to time.Time) []DailyPoint {
	points := make([]DailyPoint, 0)
	index := make(map[string]int)

	for cursor, upper := utcDay(from), utcDay(to); !cursor.After(upper); cursor = cursor.AddDate(0, 0, 1) {
		day := cursor.Format(dateLayout)
		index[day] = len(points)
		points = append(points, DailyPoint{Day: day})
	}

	for _, e := range events {
		if i, ok := index[e.ScannedAt.UTC().Format(dateLayout)]; ok {
			points[i].Scans++
		}
	}
	return points
}

func topQrCodes(events []model.ScanEvent) []TopQrRow {
	grouped := make(map[string]*TopQrRow)
	for _, e := range events {
		row, ok := grouped[e.QrCodeID]
		if !ok {
			row = &TopQrRow{QrCodeID: e.QrCodeID}
			if e.QrCode != nil {
				row.Name = e.QrCode.Name
				row.Slug = e.QrCode.Slug
			}
			grouped[e.QrCodeID] = row
		}
		row.Scans++
	}

	rows := make([]TopQrRow, 0, len(grouped))
	for _, row := range grouped {
		rows = append(rows, *row)
	}
	sort.Slice(rows, func(i, j int) bool {
		if rows[i].Scans != rows[j].Scans {
			return rows[i].Scans > rows[j].Scans
		}
		if c := strings.Compare(rows[i].Name, rows[j].Name); c != 0 {
			return c < 0
		}
		return rows[i].QrCodeID < rows[j].QrCodeID
	})

	if len(rows) > topQrLimit {
		rows = rows[:topQrLimit]
	}
	return rows
}
