package shortcode

import (
	"context"
	"crypto/rand"
	"math/big"
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	// Charset slug 只允许小写字母和数字
	Charset = "abcdefghijklmnopqrstuvwxyz0123456789"
	// CodeLength 是生成的 slug 的长度
	CodeLength = 7
	// ChannelBufferSize 是预生成通道的缓冲区大小
	ChannelBufferSize = 200
	// MinFillThreshold 是触发补充的最小阈值
	MinFillThreshold = 20
)

// SlugChecker 查询 slug 是否已被任何二维码占用
type SlugChecker interface {
	SlugExists(ctx context.Context, slug string) (bool, error)
}

// Generator 为未指定 slug 的二维码预生成可用 slug。
// 取出后到写库之间仍可能被占用，写库时的唯一约束兜底。
type Generator struct {
	checker   SlugChecker
	codeChan  chan string
	mu        sync.Mutex
	isFilling bool
	stopChan  chan struct{}
	stopOnce  sync.Once
	interval  time.Duration
	logger    *zap.SugaredLogger
}

// NewGenerator 创建生成器
func NewGenerator(checker SlugChecker, logger *zap.SugaredLogger) *Generator {
	return &Generator{
		checker:  checker,
		codeChan: make(chan string, ChannelBufferSize),
		stopChan: make(chan struct{}),
		interval: 5 * time.Second,
		logger:   logger.Named("slug_generator"),
	}
}

// Start 启动后台生成和补充任务
func (g *Generator) Start() {
	g.logger.Info("启动 slug 生成器...")
	go g.fillChannel() // 初始填充
	go g.monitorAndRefill()
}

// Stop 停止生成器，可重复调用
func (g *Generator) Stop() {
	g.stopOnce.Do(func() {
		g.logger.Info("正在停止 slug 生成器...")
		close(g.stopChan)
	})
}

// GetCode 取出一个可用 slug，ctx 结束前通道一直为空时返回 ctx 的错误
func (g *Generator) GetCode(ctx context.Context) (string, error) {
	select {
	case code := <-g.codeChan:
		if len(g.codeChan) < MinFillThreshold {
			go g.fillChannel()
		}
		return code, nil
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// monitorAndRefill 定期检查通道水位
func (g *Generator) monitorAndRefill() {
	ticker := time.NewTicker(g.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if len(g.codeChan) < MinFillThreshold {
				g.fillChannel()
			}
		case <-g.stopChan:
			g.logger.Info("已停止监控和补充任务。")
			return
		}
	}
}

// fillChannel 生成 slug 填满通道，同一时刻只有一个填充任务
func (g *Generator) fillChannel() {
	g.mu.Lock()
	if g.isFilling {
		g.mu.Unlock()
		return
	}
	g.isFilling = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		g.isFilling = false
		g.mu.Unlock()
	}()

	g.logger.Debugf("通道中剩余 %d 个 slug，开始补充...", len(g.codeChan))
	for len(g.codeChan) < ChannelBufferSize {
		select {
		case <-g.stopChan:
			g.logger.Info("填充任务已中断。")
			return
		default:
		}

		code, err := g.generateUniqueCode()
		if err != nil {
			g.logger.Errorf("生成 slug 时出错: %v", err)
			time.Sleep(100 * time.Millisecond) // 避免在错误情况下快速循环
			continue
		}
		if code == "" {
			time.Sleep(100 * time.Millisecond)
			continue
		}
		select {
		case g.codeChan <- code:
		case <-g.stopChan:
			return
		}
	}
	g.logger.Debugf("slug 通道已填满，现有 %d 个。", len(g.codeChan))
}

// generateUniqueCode 尝试最多 10 次，全部冲突时返回空串
func (g *Generator) generateUniqueCode() (string, error) {
	for i := 0; i < 10; i++ {
		code, err := generateRandomString(CodeLength)
		if err != nil {
			return "", err
		}
		if !g.isCodeExist(code) {
			return code, nil
		}
	}
	g.logger.Warn("已尝试10次生成 slug，但均存在冲突。")
	return "", nil
}

// generateRandomString 使用加密安全的随机数生成器
func generateRandomString(length int) (string, error) {
	b := make([]byte, length)
	for i := range b {
		num, err := rand.Int(rand.Reader, big.NewInt(int64(len(Charset))))
		if err != nil {
			return "", err
		}
		b[i] = Charset[num.Int64()]
	}
	return string(b), nil
}

func (g *Generator) isCodeExist(code string) bool {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	exists, err := g.checker.SlugExists(ctx, code)
	if err != nil {
		g.logger.Errorf("查询数据库时出错: %v", err)
		// 不确定时视为已存在
		return true
	}
	return exists
}
