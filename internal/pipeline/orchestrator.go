package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"gavel/internal/acquire"
	"gavel/internal/catalog"
	"gavel/internal/chunkplan"
	"gavel/internal/config"
	"gavel/internal/hearing"
	"gavel/internal/jobs"
	"gavel/internal/logging"
	"gavel/internal/media/audioseg"
	"gavel/internal/media/ffprobe"
	"gavel/internal/transcribe"
	"gavel/internal/transcript"
	"gavel/internal/workspace"
)

// Request carries one transcription submission. Identity fields are
// sanitized during processing; callers pass them raw.
type Request struct {
	SourceURL   string
	Year        string
	Committee   string
	BillName    string
	VideoTitle  string
	HearingDate string
	Room        string
	AMPM        string
	BillIDs     []string
}

// Validate reports the required fields that are missing after
// sanitization. An empty slice means the request is complete.
func (r Request) Validate() []string {
	var missing []string
	checks := []struct {
		name  string
		value string
	}{
		{"source_url", r.SourceURL},
		{"year", hearing.SanitizeComponent(r.Year)},
		{"committee", hearing.SanitizeComponent(r.Committee)},
		{"bill_name", hearing.SanitizeComponent(r.BillName)},
		{"video_title", hearing.SanitizeComponent(r.VideoTitle)},
		{"hearing_date", r.HearingDate},
	}
	for _, check := range checks {
		if check.value == "" {
			missing = append(missing, check.name)
		}
	}
	return missing
}

// Outcome is the result of a finished pipeline run.
type Outcome struct {
	Metadata   hearing.Metadata
	Transcript transcript.Record
	FolderPath string
	Cached     bool
	Warnings   []string
}

// ErrQueueFull reports that the job queue has no room for another
// submission. Callers should retry later.
var ErrQueueFull = errors.New("transcription queue is full")

// maxChunkWorkers caps within-job chunk parallelism regardless of the
// configured worker count.
const maxChunkWorkers = 4

// queuedJob is one accepted submission waiting for a pipeline worker.
type queuedJob struct {
	ctx context.Context
	id  string
	req Request
}

// Orchestrator drives jobs through the pipeline stages. Submissions feed
// a bounded queue consumed by a fixed pool of pipeline workers, so a burst
// of requests cannot start an unbounded number of jobs.
type Orchestrator struct {
	cfg        *config.Config
	catalog    *catalog.Catalog
	store      jobs.Store
	fetcher    acquire.Fetcher
	extractor  *audioseg.Extractor
	worker     *transcribe.ChunkWorker
	model      string
	workspaces *workspace.Manager
	logger     *slog.Logger

	probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)

	queue    chan queuedJob
	inflight sync.WaitGroup
}

func New(cfg *config.Config, cat *catalog.Catalog, store jobs.Store, fetcher acquire.Fetcher, capability transcribe.Transcriber, workspaces *workspace.Manager, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	strategy, err := audioseg.ParseStrategy(cfg.Transcribe.Extraction)
	if err != nil {
		// Load-time validation rejects unknown strategies; fall back for
		// hand-built configs in tests.
		strategy = audioseg.StrategyReencode
	}
	maxActive := cfg.Jobs.MaxActive
	if maxActive < 1 {
		maxActive = 1
	}
	queueDepth := cfg.Jobs.QueueDepth
	if queueDepth < 1 {
		queueDepth = 1
	}

	extractor := audioseg.NewExtractor(cfg.FFmpegBinary(), strategy)
	o := &Orchestrator{
		cfg:        cfg,
		catalog:    cat,
		store:      store,
		fetcher:    fetcher,
		extractor:  extractor,
		worker:     transcribe.NewChunkWorker(extractor, capability, logger),
		model:      capability.Model(),
		workspaces: workspaces,
		logger:     logger,
		probe:      ffprobe.Inspect,
		queue:      make(chan queuedJob, queueDepth),
	}
	for i := 0; i < maxActive; i++ {
		go o.drainQueue()
	}
	return o
}

// drainQueue runs queued jobs for the life of the process.
func (o *Orchestrator) drainQueue() {
	for item := range o.queue {
		o.Execute(item.ctx, item.id, item.req)
		o.inflight.Done()
	}
}

// WithExtractorRunner overrides ffmpeg invocation, used by tests.
func (o *Orchestrator) WithExtractorRunner(runner func(ctx context.Context, name string, args ...string) error) {
	o.extractor.WithCommandRunner(runner)
}

// WithProbe overrides duration probing, used by tests.
func (o *Orchestrator) WithProbe(probe func(ctx context.Context, binary, path string) (ffprobe.Result, error)) {
	if probe != nil {
		o.probe = probe
	}
}

// Submit registers a queued job and hands it to the worker pool. The
// background run outlives the submitting request's context. When the queue
// is saturated the job is recorded as failed and ErrQueueFull is returned.
func (o *Orchestrator) Submit(ctx context.Context, req Request) (*jobs.Job, error) {
	job, err := o.store.Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("create job: %w", err)
	}

	o.inflight.Add(1)
	select {
	case o.queue <- queuedJob{ctx: context.WithoutCancel(ctx), id: job.ID, req: req}:
		return job, nil
	default:
		o.inflight.Done()
		if failErr := o.store.Fail(ctx, job.ID, ErrQueueFull.Error()); failErr != nil {
			o.logger.Error("failed to record rejected job", logging.Error(failErr))
		}
		return nil, ErrQueueFull
	}
}

// Wait blocks until all accepted jobs have finished.
func (o *Orchestrator) Wait() {
	o.inflight.Wait()
}

// Execute runs one job to a terminal status. Failures are recorded on
// the job rather than returned.
func (o *Orchestrator) Execute(ctx context.Context, jobID string, req Request) {
	logger := o.logger.With(logging.String("job_id", jobID))

	if err := o.store.SetStatus(ctx, jobID, jobs.StatusProcessing); err != nil {
		logger.Error("failed to mark job processing", logging.Error(err))
		return
	}

	outcome, err := o.run(ctx, jobID, req, logger)
	if err != nil {
		logger.Error("job failed", logging.Error(err))
		if failErr := o.store.Fail(ctx, jobID, err.Error()); failErr != nil {
			logger.Error("failed to record job failure", logging.Error(failErr))
		}
		return
	}

	result := &jobs.Result{
		Metadata:   outcome.Metadata,
		Transcript: outcome.Transcript,
		FolderPath: outcome.FolderPath,
		Cached:     outcome.Cached,
	}
	if err := o.store.Complete(ctx, jobID, result, outcome.Warnings); err != nil {
		logger.Error("failed to record job completion", logging.Error(err))
	}
}

func (o *Orchestrator) run(ctx context.Context, jobID string, req Request, logger *slog.Logger) (*Outcome, error) {
	started := time.Now()

	key := hearing.NewKey(req.Year, req.Committee, req.BillName, req.VideoTitle)
	folderPath := key.FolderPath()
	logger = logger.With(logging.String("folder_path", folderPath))

	cached, err := o.catalog.IsCached(ctx, folderPath)
	if err != nil {
		return nil, fmt.Errorf("cache check: %w", err)
	}
	if cached {
		stored, err := o.catalog.Load(ctx, folderPath)
		if err != nil {
			return nil, fmt.Errorf("load cached artifacts: %w", err)
		}
		logger.Info("cache hit, skipping transcription")
		return &Outcome{
			Metadata:   stored.Metadata,
			Transcript: stored.Transcript,
			FolderPath: folderPath,
			Cached:     true,
		}, nil
	}

	workDir, err := o.workspaces.Create(jobID)
	if err != nil {
		return nil, fmt.Errorf("create workspace: %w", err)
	}
	defer func() {
		if err := o.workspaces.Remove(workDir); err != nil {
			logger.Warn("failed to remove workspace", logging.Error(err))
		}
	}()

	if err := o.store.SetProgress(ctx, jobID, "downloading audio"); err != nil {
		logger.Warn("failed to update progress", logging.Error(err))
	}
	source, err := o.fetcher.Fetch(ctx, req.SourceURL, workDir)
	if err != nil {
		return nil, fmt.Errorf("fetch audio: %w", err)
	}
	logger.Info("audio acquired",
		logging.String("title", source.Title),
		logging.Float64("reported_duration", source.DurationSeconds),
	)

	duration := o.probeDuration(ctx, source, logger)
	windows := chunkplan.Plan(duration, o.cfg.ChunkSeconds(), o.cfg.Transcribe.MinChunkSeconds)
	logger.Info("chunk plan ready",
		logging.Float64("duration", duration),
		logging.Int("chunks", len(windows)),
	)

	chunkResults, warnings := o.transcribeChunks(ctx, jobID, source.AudioPath, windows, workDir, logger)
	if len(chunkResults) == 0 {
		return nil, fmt.Errorf("all %d chunks failed", len(windows))
	}

	segmentLists := make([][]transcript.Segment, 0, len(chunkResults))
	texts := make([]string, 0, len(chunkResults))
	for _, result := range chunkResults {
		segmentLists = append(segmentLists, result.Segments)
		texts = append(texts, result.Text)
	}
	segments, text := transcript.Merge(segmentLists, texts)

	meta := hearing.Metadata{
		HearingID:  key.HearingID(),
		Title:      source.Title,
		Date:       req.HearingDate,
		Duration:   duration,
		SourceURL:  req.SourceURL,
		Year:       key.Year,
		Committee:  key.Committee,
		BillName:   key.Bill,
		BillIDs:    req.BillIDs,
		VideoTitle: key.VideoTitle,
		Room:       hearing.SanitizeComponent(req.Room),
		AMPM:       hearing.SanitizeComponent(req.AMPM),
		FolderPath: folderPath,
		CreatedAt:  hearing.Now(),
	}
	record := transcript.Record{
		HearingID:      key.HearingID(),
		Text:           text,
		Language:       o.cfg.Transcribe.Language,
		Duration:       duration,
		ProcessingTime: time.Since(started).Seconds(),
		Model:          o.model,
		Segments:       segments,
		TotalSegments:  len(segments),
		CreatedAt:      hearing.Now(),
	}

	if err := o.catalog.Save(ctx, folderPath, meta, record); err != nil {
		return nil, fmt.Errorf("publish artifacts: %w", err)
	}
	logger.Info("transcription complete",
		logging.Int("segments", len(segments)),
		logging.Duration("elapsed", time.Since(started)),
	)

	return &Outcome{
		Metadata:   meta,
		Transcript: record,
		FolderPath: folderPath,
		Warnings:   warnings,
	}, nil
}

// probeDuration prefers a container-level probe of the downloaded audio
// and falls back to the downloader's reported duration.
func (o *Orchestrator) probeDuration(ctx context.Context, source acquire.Source, logger *slog.Logger) float64 {
	result, err := o.probe(ctx, o.cfg.FFprobeBinary(), source.AudioPath)
	if err != nil {
		logger.Warn("ffprobe failed, using reported duration", logging.Error(err))
		return source.DurationSeconds
	}
	if probed := result.DurationSeconds(); probed > 0 {
		return probed
	}
	return source.DurationSeconds
}

// transcribeChunks fans windows out to the worker pool and returns the
// successful results in window order plus one warning per failed chunk.
func (o *Orchestrator) transcribeChunks(ctx context.Context, jobID, audioPath string, windows []chunkplan.Window, workDir string, logger *slog.Logger) ([]transcribe.ChunkResult, []string) {
	results := make([]transcribe.ChunkResult, len(windows))
	var done atomic.Int64
	total := len(windows)

	limit := o.cfg.Transcribe.Workers
	if limit > maxChunkWorkers {
		limit = maxChunkWorkers
	}
	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(limit)
	for i, window := range windows {
		i, window := i, window
		group.Go(func() error {
			results[i] = o.worker.Process(groupCtx, audioPath, window, workDir)
			completed := done.Add(1)
			if err := o.store.SetProgress(ctx, jobID, fmt.Sprintf("%d/%d", completed, total)); err != nil {
				logger.Warn("failed to update progress", logging.Error(err))
			}
			return nil
		})
	}
	_ = group.Wait()

	var (
		succeeded []transcribe.ChunkResult
		warnings  []string
	)
	for _, result := range results {
		if result.Err != nil {
			warnings = append(warnings, fmt.Sprintf("chunk %d failed: %v", result.Index, result.Err))
			continue
		}
		succeeded = append(succeeded, result)
	}
	return succeeded, warnings
}
