package bot

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/iabetor/voxbuddy/internal/logger"
	"github.com/iabetor/voxbuddy/internal/safety"
	"github.com/iabetor/voxbuddy/internal/store"
	"github.com/iabetor/voxbuddy/internal/worker"
)

// AudioConverter 音频规范化的最小接口。
type AudioConverter interface {
	Convert(ctx context.Context, src, dst string) error
}

// Service 实现与传输层无关的请求处理逻辑。
// 所有方法返回面向用户的回复文案；Telegram 层只负责收发。
type Service struct {
	store     *store.Store
	converter AudioConverter
	pool      *worker.Pool
	filter    *safety.Filter

	// engineReady 引擎是否在启动时初始化成功。初始化失败不阻止
	// 进程运行，只是所有合成请求得到"不可用"回复。
	engineReady bool

	minSampleSec int
	maxSampleSec int
}

// NewService 创建请求处理服务。
func NewService(st *store.Store, conv AudioConverter, pool *worker.Pool, filter *safety.Filter,
	engineReady bool, minSampleSec, maxSampleSec int) *Service {
	return &Service{
		store:        st,
		converter:    conv,
		pool:         pool,
		filter:       filter,
		engineReady:  engineReady,
		minSampleSec: minSampleSec,
		maxSampleSec: maxSampleSec,
	}
}

// StartReply 返回 /start 的使用说明。
func (s *Service) StartReply() string { return replyStart }

// HelpReply 返回 /help 的帮助文案。
func (s *Service) HelpReply() string { return replyHelp }

// Consent 记录用户授权并返回回复文案。
func (s *Service) Consent(uid int64) string {
	if err := s.store.GrantConsent(uid); err != nil {
		logger.Errorf("[bot] 记录用户 %d 授权失败: %v", uid, err)
		return replyGenericError
	}
	return replyConsent
}

// SampleDurationReply 校验语音时长（秒）。超出配置范围时返回
// (拒绝文案, false)；时长未知（0）或在范围内时返回 ("", true)。
func (s *Service) SampleDurationReply(seconds int) (string, bool) {
	if seconds <= 0 {
		return "", true
	}
	if s.minSampleSec > 0 && seconds < s.minSampleSec {
		return fmt.Sprintf(replySampleTooShortFmt, seconds, s.minSampleSec), false
	}
	if s.maxSampleSec > 0 && seconds > s.maxSampleSec {
		return fmt.Sprintf(replySampleTooLongFmt, seconds, s.maxSampleSec), false
	}
	return "", true
}

// ScratchPath 返回用户目录内一个新的上传暂存文件路径。
func (s *Service) ScratchPath(uid int64, ext string) (string, error) {
	dir, err := s.store.UserDir(uid)
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "upload_"+uuid.NewString()+ext), nil
}

// Ingest 处理一次语音样本上传：规范化、校验授权/槽位、提交。
// srcPath 为已下载的原始音频，无论成功与否都会被清理；
// 未提交的转换产物同样在每个退出路径上清理。
func (s *Service) Ingest(ctx context.Context, uid int64, srcPath string) string {
	defer removeQuietly(srcPath)

	dir, err := s.store.UserDir(uid)
	if err != nil {
		logger.Errorf("[bot] 用户 %d 目录不可用: %v", uid, err)
		return replyGenericError
	}

	converted := filepath.Join(dir, "sample_"+uuid.NewString()+".wav")
	if err := s.converter.Convert(ctx, srcPath, converted); err != nil {
		removeQuietly(converted)
		logger.Warnf("[bot] 用户 %d 的样本转换失败: %v", uid, err)
		return replyConversionFailed
	}

	switch err := s.store.CommitSample(uid, converted); {
	case errors.Is(err, store.ErrNoConsent):
		removeQuietly(converted)
		return replyConsentRequired
	case errors.Is(err, store.ErrSampleExists):
		removeQuietly(converted)
		return replySampleExists
	case err != nil:
		removeQuietly(converted)
		logger.Errorf("[bot] 用户 %d 的样本提交失败: %v", uid, err)
		return replyGenericError
	}

	return replySampleSaved
}

// ValidateAnswer 执行合成请求的前置检查（文本、安全过滤、样本、引擎）。
// 通过时返回 (确认文案, true)，调用方应先发送确认再执行合成；
// 未通过时返回 (拒绝文案, false)，合成引擎不会被触碰。
func (s *Service) ValidateAnswer(uid int64, text string) (string, bool) {
	if strings.TrimSpace(text) == "" {
		return replyUsage, false
	}

	if phrase, hit := s.filter.Match(text); hit {
		logger.Infof("[bot] 用户 %d 的请求命中拒绝词 %q", uid, phrase)
		return replyPolicyRefusal, false
	}

	if !s.store.HasSample(uid) {
		return replyNoSample, false
	}

	if !s.engineReady {
		return replyEngineUnavailable, false
	}

	return replyAck, true
}

// RenderAnswer 提交合成任务并阻塞等待结果。
// 成功时返回 (输出文件路径, "", true)；失败时返回 ("", 失败文案, false)。
// 调用方必须先通过 ValidateAnswer。
func (s *Service) RenderAnswer(uid int64, text string) (string, string, bool) {
	outPath := s.store.ReplyPath(uid)

	ch, err := s.pool.Submit(worker.Job{
		UserID:     uid,
		Text:       text,
		SpeakerWAV: s.store.SamplePath(uid),
		OutputPath: outPath,
	})
	switch {
	case errors.Is(err, worker.ErrBusy):
		return "", replyBusy, false
	case err != nil:
		logger.Errorf("[bot] 用户 %d 的任务提交失败: %v", uid, err)
		return "", replyGenericError, false
	}

	res := <-ch
	if res.Err != nil {
		return "", fmt.Sprintf(replySynthFailedFmt, res.Err), false
	}

	info, err := os.Stat(outPath)
	if err != nil || info.Size() == 0 {
		return "", fmt.Sprintf(replySynthFailedFmt, "输出文件缺失"), false
	}

	return outPath, "", true
}

// removeQuietly 删除文件，失败只记日志。
func removeQuietly(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warnf("[bot] 清理临时文件 %s 失败: %v", path, err)
	}
}
