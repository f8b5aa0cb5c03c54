package scan

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func header(kv ...string) http.Header {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Set(kv[i], kv[i+1])
	}
	return h
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name string
		h    http.Header
		want string
	}{
		{name: "取 x-forwarded-for 第一个值", h: header("X-Forwarded-For", "1.2.3.4, 5.6.7.8"), want: "1.2.3.4"},
		{name: "回退到 x-real-ip", h: header("X-Real-IP", "9.9.9.9"), want: "9.9.9.9"},
		{name: "回退到 cf-connecting-ip", h: header("CF-Connecting-IP", "8.8.8.8"), want: "8.8.8.8"},
		{name: "回退到 x-client-ip", h: header("X-Client-IP", "7.7.7.7"), want: "7.7.7.7"},
		{name: "x-forwarded-for 优先", h: header("X-Real-IP", "9.9.9.9", "X-Forwarded-For", "1.1.1.1"), want: "1.1.1.1"},
		{name: "去掉 IPv6 方括号", h: header("X-Forwarded-For", "[2001:db8::1], 10.0.0.1"), want: "2001:db8::1"},
		{name: "空的转发值被跳过", h: header("X-Forwarded-For", " , 1.1.1.1", "X-Real-IP", "2.2.2.2"), want: "2.2.2.2"},
		{name: "都不存在", h: header(), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClientIP(tt.h))
		})
	}
}

func TestExtractGeo(t *testing.T) {
	s := Extract(header("X-Vercel-IP-Country", "DE", "X-Vercel-IP-City", "Berlin"))
	assert.Equal(t, "DE", s.Country)
	assert.Equal(t, "Berlin", s.City)

	s = Extract(header("CF-IPCountry", "FR"))
	assert.Equal(t, "FR", s.Country)
	assert.Empty(t, s.City)

	s = Extract(header())
	assert.Empty(t, s.Country)
	assert.Empty(t, s.City)
}

func TestExtract(t *testing.T) {
	h := header(
		"X-Forwarded-For", "1.2.3.4",
		"User-Agent", "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15",
		"Referer", "https://instagram.com/",
	)
	s := Extract(h)
	assert.Equal(t, "1.2.3.4", s.ClientIP)
	assert.Equal(t, "https://instagram.com/", s.Referrer)
	assert.False(t, s.IsBot)
}

func TestIsLikelyBot(t *testing.T) {
	tests := []struct {
		name string
		ua   string
		want bool
	}{
		{name: "Googlebot", ua: "Googlebot/2.1 (+http://www.google.com/bot.html)", want: true},
		{name: "含 bot 字样", ua: "SomeBot", want: true},
		{name: "curl", ua: "curl/8.4.0", want: true},
		{name: "WhatsApp 预览", ua: "WhatsApp/2.23.20.0 A", want: true},
		{name: "爬虫伪装成 iPhone 仍判为机器人", ua: "Mozilla/5.0 (iPhone) facebookexternalhit/1.1", want: true},
		{name: "iPhone Safari", ua: "Mozilla/5.0 (iPhone; CPU iPhone OS 17_0 like Mac OS X) AppleWebKit/605.1.15", want: false},
		{name: "Android Chrome", ua: "Mozilla/5.0 (Linux; Android 14) AppleWebKit/537.36 Chrome/120.0.0.0 Mobile", want: false},
		{name: "iPad", ua: "Mozilla/5.0 (iPad; CPU OS 17_0 like Mac OS X)", want: false},
		{name: "桌面 Chrome", ua: "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 Chrome/120.0.0.0", want: true},
		{name: "桌面 Safari", ua: "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 Safari/605.1.15", want: true},
		{name: "桌面 Linux", ua: "Mozilla/5.0 (X11; Linux x86_64) Firefox/121.0", want: true},
		{name: "ChromeOS", ua: "Mozilla/5.0 (CrOS x86_64 14541.0.0)", want: true},
		{name: "未知 UA", ua: "SomeScannerApp/1.0", want: false},
		{name: "UA 缺失", ua: "", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsLikelyBot(tt.ua))
		})
	}
}

func TestClassifyFirstMatchWins(t *testing.T) {
	rules := []BotRule{
		{Name: "always-human", Match: func(string) bool { return true }, Verdict: false},
		{Name: "always-bot", Match: func(string) bool { return true }, Verdict: true},
	}
	assert.False(t, Classify("anything", rules))
	assert.False(t, Classify("anything", nil))
}
