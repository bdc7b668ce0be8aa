package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/iabetor/voxbuddy/internal/logger"
)

const (
	// consentFile 同意标记文件，存在即表示用户已授权。
	consentFile = "consent.txt"
	// consentContent 同意标记文件内容。
	consentContent = "consent_given"
	// sampleFile 已提交的说话人样本文件，每个用户至多一个。
	sampleFile = "speaker.wav"
	// replyFile 合成结果槽位，每次成功请求覆盖复用。
	replyFile = "ans_reply.wav"
)

var (
	// ErrNoConsent 表示用户尚未授权。
	ErrNoConsent = errors.New("用户尚未授权")
	// ErrSampleExists 表示说话人样本已存在，不允许覆盖。
	ErrSampleExists = errors.New("说话人样本已存在")
	// ErrNoSample 表示用户尚未提交说话人样本。
	ErrNoSample = errors.New("说话人样本不存在")
)

// State 表示用户的同意/样本状态。
type State int

const (
	// StateNew — 尚未授权。
	StateNew State = iota
	// StateConsented — 已授权，等待样本上传。
	StateConsented
	// StateSampled — 已授权且样本已提交。
	StateSampled
)

var stateNames = [...]string{
	"New",
	"Consented",
	"Sampled",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "Unknown"
}

// Store 管理按用户 ID 分目录的扁平文件存储。
// 状态转换只有两条：授权（New → Consented）和首次样本提交
// （Consented → Sampled）。两者都不会被自动撤销。
type Store struct {
	baseDir string

	// 每用户一把提交锁，序列化 check-then-commit 路径，
	// 避免同一用户的并发上传都看到"无样本"而重复提交。
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

// New 创建用户存储，baseDir 下按 users/<id>/ 组织。
func New(baseDir string) (*Store, error) {
	usersDir := filepath.Join(baseDir, "users")
	if err := os.MkdirAll(usersDir, 0755); err != nil {
		return nil, fmt.Errorf("创建用户数据目录失败: %w", err)
	}

	logger.Infof("[store] 用户存储已初始化 (dir=%s)", usersDir)

	return &Store{
		baseDir: baseDir,
		locks:   make(map[int64]*sync.Mutex),
	}, nil
}

// UserDir 返回指定用户的数据目录，不存在时创建（懒初始化）。
func (s *Store) UserDir(uid int64) (string, error) {
	dir := filepath.Join(s.baseDir, "users", strconv.FormatInt(uid, 10))
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("创建用户目录失败: %w", err)
	}
	return dir, nil
}

// lockFor 返回指定用户的提交锁。
func (s *Store) lockFor(uid int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[uid]
	if !ok {
		l = &sync.Mutex{}
		s.locks[uid] = l
	}
	return l
}

// GrantConsent 记录用户授权。重复授权是幂等的。
func (s *Store) GrantConsent(uid int64) error {
	dir, err := s.UserDir(uid)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, consentFile), []byte(consentContent), 0644); err != nil {
		return fmt.Errorf("写入同意标记失败: %w", err)
	}
	logger.Infof("[store] 用户 %d 已授权", uid)
	return nil
}

// HasConsent 报告用户是否已授权。
func (s *Store) HasConsent(uid int64) bool {
	dir := filepath.Join(s.baseDir, "users", strconv.FormatInt(uid, 10))
	_, err := os.Stat(filepath.Join(dir, consentFile))
	return err == nil
}

// HasSample 报告用户是否已提交说话人样本。
func (s *Store) HasSample(uid int64) bool {
	_, err := os.Stat(s.SamplePath(uid))
	return err == nil
}

// SamplePath 返回用户说话人样本的路径（文件不一定存在）。
func (s *Store) SamplePath(uid int64) string {
	return filepath.Join(s.baseDir, "users", strconv.FormatInt(uid, 10), sampleFile)
}

// ReplyPath 返回用户合成结果槽位的路径（每次请求覆盖）。
func (s *Store) ReplyPath(uid int64) string {
	return filepath.Join(s.baseDir, "users", strconv.FormatInt(uid, 10), replyFile)
}

// UserState 返回用户当前的同意/样本状态。
func (s *Store) UserState(uid int64) State {
	if s.HasSample(uid) {
		return StateSampled
	}
	if s.HasConsent(uid) {
		return StateConsented
	}
	return StateNew
}

// CommitSample 将转换好的样本文件原子地提交到用户的样本槽位。
// 仅当用户已授权且样本槽位为空时成功；否则返回 ErrNoConsent 或
// ErrSampleExists，且已提交的状态保持不变。srcPath 必须与用户目录
// 在同一文件系统上（提交通过 rename 完成）。
//
// 失败时 srcPath 不会被移动，由调用方负责清理。
func (s *Store) CommitSample(uid int64, srcPath string) error {
	l := s.lockFor(uid)
	l.Lock()
	defer l.Unlock()

	if !s.HasConsent(uid) {
		return ErrNoConsent
	}
	if s.HasSample(uid) {
		return ErrSampleExists
	}

	if err := os.Rename(srcPath, s.SamplePath(uid)); err != nil {
		return fmt.Errorf("提交说话人样本失败: %w", err)
	}

	logger.Infof("[store] 用户 %d 的说话人样本已提交 (%s → %s)", uid, filepath.Base(srcPath), sampleFile)
	return nil
}
