package analytics

import (
	"strconv"
	"strings"
	"time"

	"dynamic-qr-platform/internal/model"
)

// CSVHeader 导出列，顺序固定
var CSVHeader = []string{
	"scanned_at",
	"qr_code_id",
	"qr_name",
	"qr_slug",
	"destination_url",
	"ip_hash",
	"is_bot",
	"country",
	"city",
	"referrer",
	"user_agent",
}

// CSVRow 一行导出数据
type CSVRow struct {
	ScannedAt      time.Time
	QrCodeID       string
	QrName         string
	QrSlug         string
	DestinationURL string
	IPHash         *string
	IsBot          bool
	Country        *string
	City           *string
	Referrer       *string
	UserAgent      *string
}

// RowFromEvent 由带二维码信息的扫码记录生成导出行
func RowFromEvent(e model.ScanEvent) CSVRow {
	row := CSVRow{
		ScannedAt: e.ScannedAt,
		QrCodeID:  e.QrCodeID,
		IPHash:    e.IPHash,
		IsBot:     e.IsBot,
		Country:   e.Country,
		City:      e.City,
		Referrer:  e.Referrer,
		UserAgent: e.UserAgent,
	}
	if e.QrCode != nil {
		row.QrName = e.QrCode.Name
		row.QrSlug = e.QrCode.Slug
		row.DestinationURL = e.QrCode.DestinationURL
	}
	return row
}

func (r CSVRow) fields() []string {
	return []string{
		r.ScannedAt.UTC().Format("2006-01-02T15:04:05.000Z"),
		r.QrCodeID,
		r.QrName,
		r.QrSlug,
		r.DestinationURL,
		deref(r.IPHash),
		strconv.FormatBool(r.IsBot),
		deref(r.Country),
		deref(r.City),
		deref(r.Referrer),
		deref(r.UserAgent),
	}
}

// FormatCSV 表头加每行一条，行间以 \n 分隔，末尾不带换行。
// 行数上限由调用方控制。
func FormatCSV(rows []CSVRow) string {
	var b strings.Builder
	writeLine(&b, CSVHeader)
	for _, row := range rows {
		b.WriteByte('\n')
		writeLine(&b, row.fields())
	}
	return b.String()
}

func writeLine(b *strings.Builder, cells []string) {
	for i, cell := range cells {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(escapeCell(cell))
	}
}

// 含逗号、引号或换行时整体加引号，内部引号成对转义
func escapeCell(value string) string {
	if !strings.ContainsAny(value, ",\"\n") {
		return value
	}
	return `"` + strings.ReplaceAll(value, `"`, `""`) + `"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
