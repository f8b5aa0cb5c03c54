package scan

import (
	"net/http"
	"regexp"
	"strings"
)

// Signals 从请求头提取的客户端信息，空串表示缺失
type Signals struct {
	ClientIP  string
	Country   string
	City      string
	UserAgent string
	Referrer  string
	IsBot     bool
}

// 按优先级排列的客户端 IP 请求头
var ipHeaders = []string{"X-Forwarded-For", "X-Real-Ip", "Cf-Connecting-Ip", "X-Client-Ip"}

// 平台注入的地理位置请求头
var (
	countryHeaders = []string{"X-Vercel-Ip-Country", "Cf-Ipcountry", "X-Country-Code"}
	cityHeaders    = []string{"X-Vercel-Ip-City", "X-City"}
)

// Extract 汇总 IP、地理位置、UA、来源与机器人判定
func Extract(h http.Header) Signals {
	ua := h.Get("User-Agent")
	return Signals{
		ClientIP:  ClientIP(h),
		Country:   firstHeader(h, countryHeaders),
		City:      firstHeader(h, cityHeaders),
		UserAgent: ua,
		Referrer:  h.Get("Referer"),
		IsBot:     IsLikelyBot(ua),
	}
}

// ClientIP 依次检查 x-forwarded-for、x-real-ip、cf-connecting-ip、x-client-ip，
// 取第一个逗号分隔值；IPv6 的方括号会被去掉。都不存在时返回空串。
func ClientIP(h http.Header) string {
	for _, name := range ipHeaders {
		value := firstCSVValue(h.Get(name))
		if value == "" {
			continue
		}
		if strings.HasPrefix(value, "[") && strings.HasSuffix(value, "]") {
			value = value[1 : len(value)-1]
		}
		return value
	}
	return ""
}

func firstCSVValue(raw string) string {
	if raw == "" {
		return ""
	}
	first, _, _ := strings.Cut(raw, ",")
	return strings.TrimSpace(first)
}

func firstHeader(h http.Header, names []string) string {
	for _, name := range names {
		if v := h.Get(name); v != "" {
			return v
		}
	}
	return ""
}

// BotRule 一条有序判定规则，命中即返回 Verdict
type BotRule struct {
	Name    string
	Match   func(ua string) bool
	Verdict bool
}

var (
	botSignature = regexp.MustCompile(`(?i)bot|crawler|spider|slurp|headless|preview|facebookexternalhit|whatsapp|curl|wget|python|go-http|java/|libwww|httpunit|nutch|phpcrawl|msnbot|adidxbot|blekkobot|teoma|gigabot|dotbot|yandex|baiduspider`)
	mobileDevice = regexp.MustCompile(`(?i)iphone|ipad|android|mobile|webos|blackberry|opera mini|iemobile`)
	desktopOS    = regexp.MustCompile(`(?i)windows nt|macintosh.*mac os x|x11|cros`)
	linuxOS      = regexp.MustCompile(`(?i)linux`)
	androidOS    = regexp.MustCompile(`(?i)android`)
)

// BotRules 自上而下求值、首个命中生效。
// 扫码几乎都来自手机相机或扫码应用，桌面系统直接访问跳转地址按自动化流量处理。
var BotRules = []BotRule{
	{Name: "signature", Match: botSignature.MatchString, Verdict: true},
	{Name: "mobile", Match: mobileDevice.MatchString, Verdict: false},
	{Name: "desktop", Match: isDesktop, Verdict: true},
}

func isDesktop(ua string) bool {
	if desktopOS.MatchString(ua) {
		return true
	}
	return linuxOS.MatchString(ua) && !androidOS.MatchString(ua)
}

// IsLikelyBot 按 BotRules 判定；UA 缺失或无规则命中时视为真人
func IsLikelyBot(ua string) bool {
	return Classify(ua, BotRules)
}

// Classify 用给定规则表判定 UA
func Classify(ua string, rules []BotRule) bool {
	if ua == "" {
		return false
	}
	for _, rule := range rules {
		if rule.Match(ua) {
			return rule.Verdict
		}
	}
	return false
}
