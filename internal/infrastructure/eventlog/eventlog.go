// Package eventlog 提供用量事件的本地 JSONL 落盘
// 仅供 webhook-sink 开发工具使用，生产侧的持久化由网关负责。
package eventlog

import (
	"bufio"
	"context"
	"encoding/json"
	"os"
	"sync"

	"github.com/dmitrynovikov21/leo-backend/pkg/logger"
)

// Writer 追加写入 JSONL 文件
// path 为空时退化为纯日志输出。
type Writer struct {
	mu   sync.Mutex
	file *os.File
	w    *bufio.Writer
}

// NewWriter 创建事件写入器
func NewWriter(path string) (*Writer, error) {
	wr := &Writer{}
	if path == "" {
		logger.Info(context.Background(), "sink log path not set; events will only be logged")
		return wr, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	wr.file = f
	wr.w = bufio.NewWriterSize(f, 1<<20)
	logger.Info(context.Background(), "writing usage events to file", "path", path)
	return wr, nil
}

// Append 追加一条事件记录
func (wr *Writer) Append(ctx context.Context, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}

	wr.mu.Lock()
	defer wr.mu.Unlock()

	if wr.w == nil {
		logger.Info(ctx, "usage event received", "event", string(b))
		return nil
	}

	if _, err := wr.w.Write(b); err != nil {
		return err
	}
	if _, err := wr.w.WriteString("\n"); err != nil {
		return err
	}
	return wr.w.Flush()
}

// Close 刷新缓冲并关闭文件
func (wr *Writer) Close() error {
	wr.mu.Lock()
	defer wr.mu.Unlock()

	if wr.w != nil {
		_ = wr.w.Flush()
	}
	if wr.file != nil {
		return wr.file.Close()
	}
	return nil
}
