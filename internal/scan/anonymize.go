package scan

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// HashIP 用 HMAC-SHA256 对 IP 做带密钥的匿名化，输出 64 位十六进制串。
// ip 为空时返回 nil。相同的 (ip, secret) 总是得到相同结果，用于独立扫码去重。
func HashIP(ip, secret string) *string {
	if ip == "" {
		return nil
	}
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(ip))
	sum := hex.EncodeToString(mac.Sum(nil))
	return &sum
}
