package analytics

import (
	"context"
	"time"

	"dynamic-qr-platform/internal/model"
	"dynamic-qr-platform/internal/store"

	"go.uber.org/zap"
)

// ExportMaxRows 单次导出的行数上限
const ExportMaxRows = 50000

// QrCodeReader 分析服务依赖的二维码查询
type QrCodeReader interface {
	GetOwned(ctx context.Context, userID, id string) (*model.QrCode, error)
	CountActive(ctx context.Context, userID string) (int64, error)
	Options(ctx context.Context, userID string) ([]store.QrCodeOption, error)
}

// ScanEventReader 分析服务依赖的扫码记录查询
type ScanEventReader interface {
	ListForSummary(ctx context.Context, f store.ScanFilter) ([]model.ScanEvent, error)
	ListForExport(ctx context.Context, f store.ScanFilter, limit int) ([]model.ScanEvent, error)
}

// Service 分析查询：先校验归属，再读取并汇总
type Service struct {
	qrCodes QrCodeReader
	scans   ScanEventReader
	now     func() time.Time
	logger  *zap.Logger
}

// NewService 创建分析服务
func NewService(qrCodes QrCodeReader, scans ScanEventReader, logger *zap.Logger) *Service {
	return &Service{
		qrCodes: qrCodes,
		scans:   scans,
		now:     time.Now,
		logger:  logger.Named("analytics"),
	}
}

// Snapshot 生成用户的分析汇总；qrCodeId 不属于该用户时返回 store.ErrNotFound
func (s *Service) Snapshot(ctx context.Context, userID string, f Filters) (Summary, error) {
	if err := s.assertOwnership(ctx, userID, f.QrCodeID); err != nil {
		return Summary{}, err
	}

	events, err := s.scans.ListForSummary(ctx, toScanFilter(userID, f))
	if err != nil {
		return Summary{}, err
	}
	active, err := s.qrCodes.CountActive(ctx, userID)
	if err != nil {
		return Summary{}, err
	}

	s.logger.Debug("生成分析汇总",
		zap.String("user_id", userID),
		zap.Int("events", len(events)),
		zap.String("from", f.FromInput),
		zap.String("to", f.ToInput),
	)
	return BuildSummary(events, active, f.From, f.To, s.now().UTC()), nil
}

// ExportRows 导出行，按扫码时间倒序，最多 ExportMaxRows 行
func (s *Service) ExportRows(ctx context.Context, userID string, f Filters) ([]CSVRow, error) {
	if err := s.assertOwnership(ctx, userID, f.QrCodeID); err != nil {
		return nil, err
	}

	events, err := s.scans.ListForExport(ctx, toScanFilter(userID, f), ExportMaxRows)
	if err != nil {
		return nil, err
	}
	rows := make([]CSVRow, 0, len(events))
	for _, e := range events {
		rows = append(rows, RowFromEvent(e))
	}
	return rows, nil
}

// Options 筛选用的二维码列表
func (s *Service) Options(ctx context.Context, userID string) ([]store.QrCodeOption, error) {
	return s.qrCodes.Options(ctx, userID)
}

func (s *Service) assertOwnership(ctx context.Context, userID, qrCodeID string) error {
	if qrCodeID == "" {
		return nil
	}
	_, err := s.qrCodes.GetOwned(ctx, userID, qrCodeID)
	return err
}

func toScanFilter(userID string, f Filters) store.ScanFilter {
	return store.ScanFilter{
		UserID:      userID,
		From:        f.From,
		To:          f.To,
		QrCodeID:    f.QrCodeID,
		ExcludeBots: f.ExcludeBots,
	}
}
