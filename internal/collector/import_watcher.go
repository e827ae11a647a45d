package collector

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/yuqie6/HRBench/internal/eventbus"
	"github.com/yuqie6/HRBench/internal/service"
)

// BenchmarkImporter 批次导入
type BenchmarkImporter interface {
	ImportBenchmarkData(ctx context.Context, rows []service.BenchmarkRow) (*service.ImportResult, error)
}

// ImportReport 一个投放文件的处理结果
type ImportReport struct {
	File   string                `json:"file"`
	Result *service.ImportResult `json:"result,omitempty"`
	Err    error                 `json:"-"`
}

// ImportWatcherConfig 投放目录配置
type ImportWatcherConfig struct {
	Dir        string        // 投放目录（不递归）
	Extensions []string      // 可导入扩展名
	Debounce   time.Duration // 文件最后一次写入后的静默时间
	BufferSize int           // 结果缓冲区大小
}

// DefaultImportWatcherConfig 默认配置
func DefaultImportWatcherConfig() *ImportWatcherConfig {
	return &ImportWatcherConfig{
		Dir:        "./data/inbox",
		Extensions: DefaultExtensions,
		Debounce:   2 * time.Second,
		BufferSize: 64,
	}
}

const (
	processedDir = "processed"
	failedDir    = "failed"
)

// ImportWatcher 监控投放目录，新文件写入完成后自动导入基准目录；
// 处理完的文件移入 processed/ 或 failed/ 子目录
type ImportWatcher struct {
	watcher    *fsnotify.Watcher
	dir        string
	extensions map[string]bool
	debounce   time.Duration
	importer   BenchmarkImporter
	publisher  eventbus.Publisher
	results    chan ImportReport
	stopChan   chan struct{}
	running    bool
	mu         sync.Mutex
	stopOnce   sync.Once
	timers     map[string]*time.Timer // 防抖：file -> 延迟导入
	inflight   map[string]bool        // 正在导入的文件，期间的写入事件忽略
	wg         sync.WaitGroup
}

// NewImportWatcher 创建投放目录监控；publisher 可为 nil
func NewImportWatcher(cfg *ImportWatcherConfig, importer BenchmarkImporter, publisher eventbus.Publisher) (*ImportWatcher, error) {
	if cfg == nil {
		cfg = DefaultImportWatcherConfig()
	}
	if importer == nil {
		return nil, fmt.Errorf("导入服务未配置")
	}
	exts := cfg.Extensions
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	extMap := make(map[string]bool, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		extMap[ext] = true
	}
	buffer := cfg.BufferSize
	if buffer <= 0 {
		buffer = 64
	}

	absDir, err := filepath.Abs(cfg.Dir)
	if err != nil {
		return nil, fmt.Errorf("获取绝对路径失败: %w", err)
	}
	if err := os.MkdirAll(absDir, 0o755); err != nil {
		return nil, fmt.Errorf("创建投放目录失败: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("创建文件监控器失败: %w", err)
	}
	if err := watcher.Add(absDir); err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("监控投放目录失败: %w", err)
	}

	return &ImportWatcher{
		watcher:    watcher,
		dir:        absDir,
		extensions: extMap,
		debounce:   cfg.Debounce,
		importer:   importer,
		publisher:  publisher,
		results:    make(chan ImportReport, buffer),
		stopChan:   make(chan struct{}),
		timers:     make(map[string]*time.Timer),
		inflight:   make(map[string]bool),
	}, nil
}

// Dir 监控目录（绝对路径）
func (w *ImportWatcher) Dir() string {
	return w.dir
}

// Results 处理结果通道
func (w *ImportWatcher) Results() <-chan ImportReport {
	return w.results
}

// Start 先导入目录中已有的文件，再开始监控
func (w *ImportWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return fmt.Errorf("读取投放目录失败: %w", err)
	}
	for _, e := range entries {
		if !e.IsDir() && w.accepts(e.Name()) {
			w.schedule(ctx, filepath.Join(w.dir, e.Name()))
		}
	}

	slog.Info("基准投放目录监控启动", "dir", w.dir, "debounce", w.debounce)
	go w.watchLoop(ctx)
	return nil
}

// Stop 停止监控（可重复调用），等待进行中的导入结束
func (w *ImportWatcher) Stop() error {
	w.stopOnce.Do(func() {
		w.mu.Lock()
		w.running = false
		for path, t := range w.timers {
			if t.Stop() {
				w.wg.Done()
			}
			delete(w.timers, path)
		}
		w.mu.Unlock()

		close(w.stopChan)
		_ = w.watcher.Close()
		w.wg.Wait()
		slog.Info("基准投放目录监控已停止")
	})
	return nil
}

func (w *ImportWatcher) watchLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			_ = w.Stop()
			return
		case <-w.stopChan:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleFsEvent(ctx, event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			slog.Error("投放目录监控错误", "error", err)
		}
	}
}

func (w *ImportWatcher) handleFsEvent(ctx context.Context, event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	if filepath.Dir(event.Name) != w.dir || !w.accepts(event.Name) {
		return
	}
	w.schedule(ctx, event.Name)
}

func (w *ImportWatcher) accepts(name string) bool {
	base := filepath.Base(name)
	if strings.HasPrefix(base, ".") || strings.HasPrefix(base, "~$") {
		return false
	}
	return w.extensions[strings.ToLower(filepath.Ext(base))]
}

// schedule 防抖：同一文件在静默期内的多次写入只触发一次导入；
// 只有最后登记的定时器会执行导入
func (w *ImportWatcher) schedule(ctx context.Context, path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running || w.inflight[path] {
		return
	}
	if t, ok := w.timers[path]; ok && t.Stop() {
		t.Reset(w.debounce)
		return
	}
	w.wg.Add(1)
	var t *time.Timer
	t = time.AfterFunc(w.debounce, func() {
		defer w.wg.Done()
		if !w.begin(path, t) {
			return
		}
		defer w.finish(path)
		w.process(ctx, path)
	})
	w.timers[path] = t
}

// begin 登记导入；定时器已被替换或文件正在导入时返回 false
func (w *ImportWatcher) begin(path string, t *time.Timer) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timers[path] != t || w.inflight[path] {
		return false
	}
	delete(w.timers, path)
	w.inflight[path] = true
	return true
}

func (w *ImportWatcher) finish(path string) {
	w.mu.Lock()
	delete(w.inflight, path)
	w.mu.Unlock()
}

func (w *ImportWatcher) process(ctx context.Context, path string) {
	if _, err := os.Stat(path); err != nil {
		return
	}
	report := ImportReport{File: filepath.Base(path)}

	rows, err := LoadRowsFromFile(path)
	if err == nil {
		report.Result, err = w.importer.ImportBenchmarkData(ctx, rows)
	}
	report.Err = err

	target := processedDir
	if err != nil {
		target = failedDir
		slog.Warn("基准批次文件导入失败", "file", report.File, "error", err)
		w.publish(eventbus.Event{
			Type: eventbus.TypeImportFailed,
			Data: map[string]any{"file": report.File, "error": err.Error()},
		})
	} else {
		slog.Info("基准批次文件已导入", "file", report.File, "batch_id", report.Result.BatchID,
			"success", report.Result.Success, "failed", report.Result.Failed)
		w.publish(eventbus.Event{
			Type: eventbus.TypeBenchmarkImported,
			Data: map[string]any{
				"file":     report.File,
				"batch_id": report.Result.BatchID,
				"success":  report.Result.Success,
				"failed":   report.Result.Failed,
				"errors":   report.Result.Errors,
			},
		})
	}
	if moveErr := w.archive(path, target); moveErr != nil {
		slog.Warn("归档批次文件失败", "file", report.File, "error", moveErr)
	}

	select {
	case w.results <- report:
	default:
		slog.Warn("导入结果缓冲区已满，丢弃结果", "file", report.File)
	}
}

func (w *ImportWatcher) publish(evt eventbus.Event) {
	if w.publisher != nil {
		w.publisher.Publish(evt)
	}
}

// archive 移入子目录，文件名加时间戳避免覆盖
func (w *ImportWatcher) archive(path, sub string) error {
	dir := filepath.Join(w.dir, sub)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	name := fmt.Sprintf("%s_%s", time.Now().Format("20060102150405"), filepath.Base(path))
	return os.Rename(path, filepath.Join(dir, name))
}
