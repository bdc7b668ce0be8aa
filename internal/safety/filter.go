// Package safety 实现合成请求的关键词过滤。
//
// 过滤是朴素的小写子串匹配，不做语义理解：含有拒绝词的正常句子会被
// 误拒（false positive），换种说法的冒充请求也拦不住（false negative）。
// 拒绝词列表是可配置的策略数据，不是硬编码逻辑。
package safety

import "strings"

// defaultDenyPhrases 内置拒绝词，对应"克隆指定第三方声音"类请求。
var defaultDenyPhrases = []string{
	"clone",
	"make it like",
	"impostor",
}

// Filter 对请求文本做拒绝词匹配。
type Filter struct {
	phrases []string
}

// NewFilter 创建过滤器。phrases 为空时使用内置默认列表。
// 所有词条统一转为小写保存。
func NewFilter(phrases []string) *Filter {
	if len(phrases) == 0 {
		phrases = defaultDenyPhrases
	}
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		p = strings.TrimSpace(strings.ToLower(p))
		if p != "" {
			lowered = append(lowered, p)
		}
	}
	return &Filter{phrases: lowered}
}

// Match 返回文本命中的第一个拒绝词；未命中时返回 ("", false)。
// 匹配对大小写不敏感。
func (f *Filter) Match(text string) (string, bool) {
	lowered := strings.ToLower(text)
	for _, p := range f.phrases {
		if strings.Contains(lowered, p) {
			return p, true
		}
	}
	return "", false
}
