package scan

import (
	"net/url"
	"strings"
)

// NormalizeSlug 将路径段规范化为查找键：解码百分号编码、去空白、转小写、去掉首尾的 /。
// 返回空串表示 slug 无效，由调用方处理。
//
// 单次处理可能暴露新的可处理内容（例如 "%2541" 解码后得到 "%41"），
// 因此重复执行直到结果不再变化，保证 NormalizeSlug 幂等。
func NormalizeSlug(raw string) string {
	current := raw
	for i := 0; i < 2*len(raw)+2; i++ {
		next := normalizeOnce(current)
		if next == current {
			return next
		}
		current = next
	}
	return current
}

func normalizeOnce(raw string) string {
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		// 非法的百分号编码按原样处理
		decoded = raw
	}
	decoded = strings.ToLower(strings.TrimSpace(decoded))
	return strings.Trim(decoded, "/")
}
