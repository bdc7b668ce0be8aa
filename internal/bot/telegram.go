package bot

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"time"

	"github.com/mymmrac/telego"
	tu "github.com/mymmrac/telego/telegoutil"

	"github.com/iabetor/voxbuddy/internal/config"
	"github.com/iabetor/voxbuddy/internal/logger"
)

// handlerFunc 命令处理函数。args 为命令后的剩余文本。
type handlerFunc func(ctx context.Context, msg *telego.Message, args string)

// Bot 是 Telegram 前端：长轮询接收更新，把命令分发给 Service，
// 并负责文件的下载与上传。
type Bot struct {
	bot        *telego.Bot
	svc        *Service
	cfg        config.TelegramConfig
	httpClient *http.Client
	allowed    map[int64]struct{}
	routes     map[string]handlerFunc
}

// New 创建 Telegram 机器人。
func New(cfg config.TelegramConfig, svc *Service) (*Bot, error) {
	var opts []telego.BotOption

	transport := &http.Transport{}
	if cfg.Proxy != "" {
		proxyURL, err := url.Parse(cfg.Proxy)
		if err != nil {
			return nil, fmt.Errorf("代理地址 %q 无效: %w", cfg.Proxy, err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
		opts = append(opts, telego.WithHTTPClient(&http.Client{Transport: transport}))
	}

	tgBot, err := telego.NewBot(cfg.Token, opts...)
	if err != nil {
		return nil, fmt.Errorf("创建 Telegram 机器人失败: %w", err)
	}

	allowed := make(map[int64]struct{}, len(cfg.AllowFrom))
	for _, id := range cfg.AllowFrom {
		allowed[id] = struct{}{}
	}

	b := &Bot{
		bot: tgBot,
		svc: svc,
		cfg: cfg,
		httpClient: &http.Client{
			Transport: transport,
			Timeout:   2 * time.Minute,
		},
		allowed: allowed,
	}

	// 无状态分发表：命令 → 处理函数。所有状态都在用户存储里。
	b.routes = map[string]handlerFunc{
		"start":   b.handleStart,
		"consent": b.handleConsent,
		"ans":     b.handleAns,
		"help":    b.handleHelp,
	}

	return b, nil
}

// Run 启动长轮询并阻塞处理更新，直到 ctx 取消。
func (b *Bot) Run(ctx context.Context) error {
	updates, err := b.bot.UpdatesViaLongPolling(ctx, &telego.GetUpdatesParams{
		Timeout: b.cfg.PollTimeout,
	})
	if err != nil {
		return fmt.Errorf("启动长轮询失败: %w", err)
	}

	logger.Infof("[bot] Telegram 机器人已连接 (username=%s)", b.bot.Username())

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				logger.Warn("[bot] 更新通道已关闭")
				return nil
			}
			// 每个更新在独立协程中处理，分发循环不被阻塞
			go b.handleUpdate(ctx, update)
		}
	}
}

// handleUpdate 处理单个更新。任何 panic 都被隔离在本次请求内。
func (b *Bot) handleUpdate(ctx context.Context, update telego.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil {
		return
	}

	uid := msg.From.ID
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("[bot] 处理用户 %d 的消息时 panic: %v", uid, r)
			b.sendText(ctx, msg.Chat.ID, replyGenericError)
		}
	}()

	// 白名单检查在任何下载动作之前
	if !b.isAllowed(uid) {
		logger.Debugf("[bot] 用户 %d 不在白名单内，忽略", uid)
		return
	}

	if msg.Voice != nil || msg.Audio != nil {
		b.handleMedia(ctx, msg)
		return
	}

	cmd, args, ok := parseCommand(msg.Text)
	if !ok {
		return
	}
	handler, ok := b.routes[cmd]
	if !ok {
		// 未识别的命令交给传输层默认行为：忽略
		logger.Debugf("[bot] 未识别的命令 /%s，忽略", cmd)
		return
	}
	handler(ctx, msg, args)
}

// isAllowed 报告用户是否允许使用本机器人。白名单为空时全部放行。
func (b *Bot) isAllowed(uid int64) bool {
	if len(b.allowed) == 0 {
		return true
	}
	_, ok := b.allowed[uid]
	return ok
}

func (b *Bot) handleStart(ctx context.Context, msg *telego.Message, _ string) {
	b.sendText(ctx, msg.Chat.ID, b.svc.StartReply())
}

func (b *Bot) handleHelp(ctx context.Context, msg *telego.Message, _ string) {
	b.sendText(ctx, msg.Chat.ID, b.svc.HelpReply())
}

func (b *Bot) handleConsent(ctx context.Context, msg *telego.Message, _ string) {
	b.sendText(ctx, msg.Chat.ID, b.svc.Consent(msg.From.ID))
}

// handleMedia 处理语音/音频上传：下载到暂存文件后交给 Service 提交。
func (b *Bot) handleMedia(ctx context.Context, msg *telego.Message) {
	uid := msg.From.ID

	var fileID, ext string
	var duration int
	switch {
	case msg.Voice != nil:
		fileID = msg.Voice.FileID
		duration = msg.Voice.Duration
		ext = ".ogg"
	case msg.Audio != nil:
		fileID = msg.Audio.FileID
		duration = msg.Audio.Duration
		ext = ".dat" // 容器格式未知，由 ffmpeg 按内容识别
	default:
		return
	}

	if reply, ok := b.svc.SampleDurationReply(duration); !ok {
		b.sendText(ctx, msg.Chat.ID, reply)
		return
	}

	scratch, err := b.svc.ScratchPath(uid, ext)
	if err != nil {
		logger.Errorf("[bot] 用户 %d 的暂存路径不可用: %v", uid, err)
		b.sendText(ctx, msg.Chat.ID, replyGenericError)
		return
	}

	if err := b.downloadFile(ctx, fileID, scratch); err != nil {
		removeQuietly(scratch)
		logger.Errorf("[bot] 下载用户 %d 的语音失败: %v", uid, err)
		b.sendText(ctx, msg.Chat.ID, replyGenericError)
		return
	}

	b.sendText(ctx, msg.Chat.ID, b.svc.Ingest(ctx, uid, scratch))
}

// handleAns 处理 /ans 合成请求。校验通过后先回执，再等待合成结果。
func (b *Bot) handleAns(ctx context.Context, msg *telego.Message, args string) {
	uid := msg.From.ID

	reply, ok := b.svc.ValidateAnswer(uid, args)
	b.sendText(ctx, msg.Chat.ID, reply)
	if !ok {
		return
	}

	_ = b.bot.SendChatAction(ctx, tu.ChatAction(tu.ID(msg.Chat.ID), telego.ChatActionTyping))

	outPath, failReply, ok := b.svc.RenderAnswer(uid, args)
	if !ok {
		b.sendText(ctx, msg.Chat.ID, failReply)
		return
	}

	b.sendAudio(ctx, msg.Chat.ID, outPath)
}

// sendText 发送文本回复，失败只记日志。
func (b *Bot) sendText(ctx context.Context, chatID int64, text string) {
	if _, err := b.bot.SendMessage(ctx, tu.Message(tu.ID(chatID), text)); err != nil {
		logger.Errorf("[bot] 发送文本消息失败 (chat=%d): %v", chatID, err)
	}
}

// sendAudio 把合成结果作为音频回复上传。
func (b *Bot) sendAudio(ctx context.Context, chatID int64, path string) {
	f, err := os.Open(path)
	if err != nil {
		logger.Errorf("[bot] 打开合成结果 %s 失败: %v", path, err)
		b.sendText(ctx, chatID, fmt.Sprintf(replySynthFailedFmt, "输出文件缺失"))
		return
	}
	defer f.Close()

	params := tu.Audio(tu.ID(chatID), tu.File(f))
	params.Title = "VoxBuddy TTS"
	if _, err := b.bot.SendAudio(ctx, params); err != nil {
		logger.Errorf("[bot] 发送音频回复失败 (chat=%d): %v", chatID, err)
		b.sendText(ctx, chatID, replyGenericError)
	}
}
