package bot

import "strings"

// parseCommand 从消息文本中解析命令。
// 支持 "/cmd args" 和群组里的 "/cmd@botname args" 形式；
// 命令统一转为小写。非命令文本返回 ok=false。
func parseCommand(text string) (cmd, args string, ok bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "/") {
		return "", "", false
	}

	token := text[1:]
	rest := ""
	if i := strings.IndexAny(token, " \t\n"); i >= 0 {
		rest = strings.TrimSpace(token[i+1:])
		token = token[:i]
	}
	if token == "" {
		return "", "", false
	}

	// 去掉 @botname 后缀
	if i := strings.Index(token, "@"); i >= 0 {
		token = token[:i]
	}

	return strings.ToLower(token), rest, true
}
