package bot

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/mymmrac/telego"

	"github.com/iabetor/voxbuddy/internal/logger"
)

// downloadFile 通过 Bot API 解析文件地址并下载到 dst。
func (b *Bot) downloadFile(ctx context.Context, fileID, dst string) error {
	file, err := b.bot.GetFile(ctx, &telego.GetFileParams{FileID: fileID})
	if err != nil {
		return fmt.Errorf("获取文件信息失败: %w", err)
	}
	if file.FilePath == "" {
		return fmt.Errorf("文件 %s 没有可下载的路径", fileID)
	}

	downloadURL := b.bot.FileDownloadURL(file.FilePath)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, downloadURL, nil)
	if err != nil {
		return fmt.Errorf("构造下载请求失败: %w", err)
	}

	resp, err := b.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("下载失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("下载失败: HTTP %d", resp.StatusCode)
	}

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("创建暂存文件失败: %w", err)
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("写入暂存文件失败: %w", err)
	}

	logger.Debugf("[bot] 已下载 %d 字节到 %s", n, dst)
	return nil
}
