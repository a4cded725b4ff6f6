// Package upload validates, compresses and concurrently stores a batch of
// media files, reporting one result per input file in input order.
package upload

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/DjordjeVuckovic/alumni-memories/internal/apperr"
	"github.com/DjordjeVuckovic/alumni-memories/internal/imaging"
	"github.com/DjordjeVuckovic/alumni-memories/internal/metrics"
	"github.com/DjordjeVuckovic/alumni-memories/internal/notify"
	"github.com/DjordjeVuckovic/alumni-memories/internal/objectstore"
	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

type File struct {
	Name        string
	ContentType string
	Data        []byte
}

type Result struct {
	Success        bool   `json:"success"`
	URL            string `json:"url,omitempty"`
	Err            error  `json:"-"`
	Error          string `json:"error,omitempty"`
	FileName       string `json:"fileName"`
	OriginalSize   int64  `json:"originalSize"`
	CompressedSize int64  `json:"compressedSize,omitempty"`
}

type Stats struct {
	Total           int   `json:"total"`
	Succeeded       int   `json:"succeeded"`
	Failed          int   `json:"failed"`
	OriginalBytes   int64 `json:"originalBytes"`
	CompressedBytes int64 `json:"compressedBytes"`
}

// State is the observable pipeline state. Progress is keyed by input index
// and holds percentages in [0, 100].
type State struct {
	IsUploading     bool            `json:"isUploading"`
	Progress        map[int]float64 `json:"uploadProgress"`
	OverallProgress float64         `json:"overallProgress"`
	Results         []Result        `json:"uploadResults"`
}

// ProgressEvent is passed to the progress callback after every chunk.
type ProgressEvent struct {
	Index   int
	Percent float64
	Overall float64
}

type Option func(p *Pipeline)

func WithNotifier(n notify.Notifier) Option {
	return func(p *Pipeline) {
		p.notifier = n
	}
}

func WithProgress(fn func(ProgressEvent)) Option {
	return func(p *Pipeline) {
		p.onProgress = fn
	}
}

// WithKeyFunc overrides how object keys are derived from folder and file name.
func WithKeyFunc(fn func(folder, name string) string) Option {
	return func(p *Pipeline) {
		p.newKey = fn
	}
}

func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) {
		p.now = now
	}
}

type Pipeline struct {
	bucket     objectstore.Bucket
	notifier   notify.Notifier
	onProgress func(ProgressEvent)
	newKey     func(folder, name string) string
	now        func() time.Time

	mu        sync.Mutex
	batch     uint64
	cancel    context.CancelFunc
	uploading bool
	progress  map[int]float64
	results   []Result
}

func NewPipeline(bucket objectstore.Bucket, opts ...Option) *Pipeline {
	p := &Pipeline{
		bucket:   bucket,
		notifier: notify.Nop{},
		newKey:   objectKey,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// UploadFiles stores files and returns one result per file, aligned with the
// input. A file that fails never affects its siblings. When the batch breaks
// the options themselves (invalid options or too many files) every file gets
// a validation failure.
func (p *Pipeline) UploadFiles(ctx context.Context, files []File, opts Options) []Result {
	targets := make([]int, len(files))
	for i := range files {
		targets[i] = i
	}
	return p.run(ctx, files, targets, nil, opts)
}

// run uploads files[i] for every i in targets. Results of other indices are
// taken from prev. Progress is keyed by the index into files.
func (p *Pipeline) run(ctx context.Context, files []File, targets []int, prev []Result, opts Options) []Result {
	start := time.Now()
	results := make([]Result, len(files))
	copy(results, prev)

	var batchErr error
	if err := opts.Validate(); err != nil {
		batchErr = err
	} else if len(targets) > opts.MaxFiles {
		batchErr = apperr.NewValidation(fmt.Sprintf("too many files: %d, at most %d per upload", len(targets), opts.MaxFiles))
	}
	if batchErr != nil {
		for _, i := range targets {
			results[i] = failure(files[i], batchErr)
		}
		slog.Warn("Upload batch rejected", "error", batchErr, "files", len(targets))
		p.finish(ctx, p.begin(ctx, nil), results, targets, start)
		return results
	}

	types := make(map[int]string, len(targets))
	var valid []int
	for _, i := range targets {
		ct, err := validateFile(files[i], opts)
		if err != nil {
			results[i] = failure(files[i], err)
			continue
		}
		types[i] = ct
		valid = append(valid, i)
	}

	batch := p.begin(ctx, valid)

	var g errgroup.Group
	for _, i := range valid {
		ct := types[i]
		g.Go(func() error {
			results[i] = p.uploadOne(batch.ctx, batch.id, i, files[i], ct, opts)
			return nil
		})
	}
	_ = g.Wait()

	p.finish(ctx, batch, results, targets, start)
	return results
}

// CancelUploads aborts the current batch on a best-effort basis and resets
// the visible state. Transfers past their last read may still complete.
func (p *Pipeline) CancelUploads() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.batch++
	p.uploading = false
	p.progress = nil
	p.results = nil
	slog.Info("Uploads canceled")
}

// RetryFailedUploads uploads again the files of original whose last result
// failed and merges the new outcomes into the previous results by index.
// original must be the slice given to the previous UploadFiles call. The
// retry is a batch of its own: canceling or superseding it keeps its results
// out of State and Stats.
func (p *Pipeline) RetryFailedUploads(ctx context.Context, original []File, opts Options) []Result {
	p.mu.Lock()
	prev := cloneResults(p.results)
	p.mu.Unlock()

	if len(prev) != len(original) {
		slog.Warn("Retry without matching previous batch; uploading all files", "previous", len(prev), "files", len(original))
		return p.UploadFiles(ctx, original, opts)
	}

	var failed []int
	for i, r := range prev {
		if !r.Success {
			failed = append(failed, i)
		}
	}
	if len(failed) == 0 {
		return prev
	}
	return p.run(ctx, original, failed, prev, opts)
}

// Stats summarizes the results of the last batch.
func (p *Pipeline) Stats() Stats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return summarize(p.results)
}

func (p *Pipeline) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()

	st := State{
		IsUploading: p.uploading,
		Results:     cloneResults(p.results),
	}
	if p.progress != nil {
		st.Progress = make(map[int]float64, len(p.progress))
		for k, v := range p.progress {
			st.Progress[k] = v
		}
		st.OverallProgress = overall(p.progress)
	}
	return st
}

type batch struct {
	id  uint64
	ctx context.Context
}

func (p *Pipeline) begin(ctx context.Context, valid []int) batch {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
	}
	bctx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.batch++
	p.uploading = len(valid) > 0
	p.results = nil
	p.progress = make(map[int]float64, len(valid))
	for _, i := range valid {
		p.progress[i] = 0
	}
	return batch{id: p.batch, ctx: bctx}
}

func (p *Pipeline) finish(ctx context.Context, b batch, results []Result, targets []int, start time.Time) {
	stats := summarize(results)
	attempted := make([]Result, 0, len(targets))
	for _, i := range targets {
		attempted = append(attempted, results[i])
	}
	run := summarize(attempted)

	p.mu.Lock()
	current := b.id == p.batch
	if current {
		p.uploading = false
		p.results = cloneResults(results)
		if p.cancel != nil {
			p.cancel()
			p.cancel = nil
		}
	}
	p.mu.Unlock()

	metrics.RecordUpload(run.Succeeded, run.Failed, run.OriginalBytes, run.CompressedBytes, time.Since(start).Seconds())
	slog.Info("Upload batch finished", "attempted", run.Total, "succeeded", stats.Succeeded, "failed", stats.Failed, "current", current)

	if current && stats.Total > 0 {
		p.notifier.Notify(ctx, summaryNotification(results, stats, p.now()))
	}
}

func (p *Pipeline) uploadOne(ctx context.Context, batchID uint64, i int, f File, contentType string, opts Options) Result {
	res := Result{FileName: f.Name, OriginalSize: int64(len(f.Data))}

	data := f.Data
	if opts.Compression.Enabled && imaging.IsImage(contentType) {
		c := opts.Compression
		out, err := imaging.Compress(data, contentType, c.MaxWidth, c.MaxHeight, c.Quality)
		if err != nil {
			slog.Warn("Image compression failed", "file", f.Name, "error", err)
			return failure(f, apperr.NewValidationWrap(fmt.Sprintf("%s is not a readable image", f.Name), err))
		}
		data, contentType = out.Data, out.ContentType
	}
	res.CompressedSize = int64(len(data))

	name := withExtension(f.Name, contentType)
	key := p.newKey(opts.Folder, name)

	url, err := p.bucket.Put(ctx, key, bytes.NewReader(data), int64(len(data)), func(written, total int64) {
		p.reportProgress(batchID, i, written, total)
	})
	if err != nil {
		slog.Error("Upload failed", "file", f.Name, "key", key, "error", err)
		r := failure(f, err)
		r.CompressedSize = res.CompressedSize
		return r
	}

	res.Success = true
	res.URL = url
	return res
}

func (p *Pipeline) reportProgress(batchID uint64, i int, written, total int64) {
	pct := 100.0
	if total > 0 {
		pct = float64(written) / float64(total) * 100
	}
	pct = min(pct, 100)

	p.mu.Lock()
	if batchID != p.batch || p.progress == nil {
		p.mu.Unlock()
		return
	}
	p.progress[i] = pct
	ev := ProgressEvent{Index: i, Percent: pct, Overall: overall(p.progress)}
	p.mu.Unlock()

	if p.onProgress != nil {
		p.onProgress(ev)
	}
}

// validateFile checks f against opts and returns its content type as detected
// from the data. The declared type is not trusted: a file is accepted only
// when its sniffed type is on the allowlist.
func validateFile(f File, opts Options) (string, error) {
	switch {
	case strings.TrimSpace(f.Name) == "":
		return "", apperr.NewValidation("file name is required")
	case len(f.Data) == 0:
		return "", apperr.NewValidation(fmt.Sprintf("%s is empty", f.Name))
	case int64(len(f.Data)) > opts.MaxFileSize:
		return "", apperr.NewValidation(fmt.Sprintf("%s exceeds the %d byte limit", f.Name, opts.MaxFileSize))
	}

	detected := mimetype.Detect(f.Data)
	ct, ok := opts.match(detected)
	if !ok {
		return "", apperr.NewValidation(fmt.Sprintf("%s has unsupported type %s", f.Name, detected.String()))
	}
	if declared := strings.TrimSpace(f.ContentType); declared != "" && !detected.Is(declared) {
		slog.Debug("Declared content type differs from content", "file", f.Name, "declared", declared, "detected", ct)
	}
	return ct, nil
}

// withExtension replaces the extension of name with the canonical one for contentType.
func withExtension(name, contentType string) string {
	base := strings.TrimSuffix(name, path.Ext(name))
	if m := mimetype.Lookup(contentType); m != nil && m.Extension() != "" {
		return base + m.Extension()
	}
	return base
}

func objectKey(folder, name string) string {
	base := path.Base(strings.ReplaceAll(name, "\\", "/"))
	base = strings.Map(func(r rune) rune {
		if r == ' ' || r == '/' || r == '?' || r == '#' || r == '%' {
			return '_'
		}
		return r
	}, base)
	return path.Join(folder, uuid.NewString()+"_"+base)
}

func failure(f File, err error) Result {
	return Result{
		FileName:     f.Name,
		OriginalSize: int64(len(f.Data)),
		Err:          err,
		Error:        err.Error(),
	}
}

func overall(progress map[int]float64) float64 {
	if len(progress) == 0 {
		return 0
	}
	var sum float64
	for _, v := range progress {
		sum += v
	}
	return sum / float64(len(progress))
}

func summarize(results []Result) Stats {
	s := Stats{Total: len(results)}
	for _, r := range results {
		s.OriginalBytes += r.OriginalSize
		if r.Success {
			s.Succeeded++
			s.CompressedBytes += r.CompressedSize
		} else {
			s.Failed++
		}
	}
	return s
}

func summaryNotification(results []Result, s Stats, now time.Time) notify.Notification {
	if s.Failed == 0 {
		return notify.Notification{
			Level:   notify.LevelSuccess,
			Title:   "Upload complete",
			Message: fmt.Sprintf("%d file(s) uploaded", s.Succeeded),
			Time:    now,
		}
	}

	var names []string
	for _, r := range results {
		if !r.Success {
			names = append(names, r.FileName)
		}
	}
	return notify.Notification{
		Level:   notify.LevelError,
		Title:   "Some uploads failed",
		Message: fmt.Sprintf("Failed to upload %s (%d of %d succeeded)", strings.Join(names, ", "), s.Succeeded, s.Total),
		Time:    now,
	}
}

func cloneResults(in []Result) []Result {
	if in == nil {
		return nil
	}
	return append([]Result(nil), in...)
}
