package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"gavel/internal/acquire"
	"gavel/internal/blobstore"
	"gavel/internal/catalog"
	"gavel/internal/jobs"
	"gavel/internal/logging"
	"gavel/internal/media/ffprobe"
	"gavel/internal/testsupport"
	"gavel/internal/transcribe"
	"gavel/internal/transcript"
	"gavel/internal/workspace"
)

type fakeFetcher struct {
	duration float64
	title    string
	calls    atomic.Int64
	err      error
	// gate, when set, blocks Fetch until closed.
	gate chan struct{}
}

func (f *fakeFetcher) Fetch(ctx context.Context, sourceURL, destDir string) (acquire.Source, error) {
	f.calls.Add(1)
	if f.gate != nil {
		<-f.gate
	}
	if f.err != nil {
		return acquire.Source{}, f.err
	}
	audioPath := filepath.Join(destDir, "audio.wav")
	if err := os.WriteFile(audioPath, []byte("wav"), 0o644); err != nil {
		return acquire.Source{}, err
	}
	return acquire.Source{AudioPath: audioPath, DurationSeconds: f.duration, Title: f.title}, nil
}

// chunkTranscriber answers per chunk based on the chunk file name and can
// be told to fail specific chunk indexes.
type chunkTranscriber struct {
	failIndexes map[int]bool
	calls       atomic.Int64
}

func (c *chunkTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (transcribe.Result, error) {
	c.calls.Add(1)
	base := filepath.Base(audioPath)
	var index int
	if _, err := fmt.Sscanf(base, "chunk_%d", &index); err != nil {
		return transcribe.Result{}, fmt.Errorf("unexpected chunk path %q", audioPath)
	}
	if c.failIndexes[index] {
		return transcribe.Result{}, fmt.Errorf("model crashed on chunk %d", index)
	}
	text := fmt.Sprintf("part %d", index)
	return transcribe.Result{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: text}},
		Text:     text,
	}, nil
}

func (c *chunkTranscriber) Model() string { return "large-v3" }

type harness struct {
	orchestrator *Orchestrator
	store        jobs.Store
	catalog      *catalog.Catalog
	fetcher      *fakeFetcher
	capability   *chunkTranscriber
}

func newHarness(t *testing.T, durationSeconds float64, failIndexes map[int]bool) *harness {
	t.Helper()

	cfg := testsupport.NewConfig(t)

	cat := catalog.New(blobstore.NewMemoryStore(), "")
	store := jobs.NewMemoryStore()
	fetcher := &fakeFetcher{duration: durationSeconds, title: "Budget Hearing Day One"}
	capability := &chunkTranscriber{failIndexes: failIndexes}

	workspaces, err := workspace.NewManager(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatal(err)
	}

	orchestrator := New(cfg, cat, store, fetcher, capability, workspaces, logging.NewNop())
	orchestrator.WithExtractorRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})
	orchestrator.WithProbe(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: fmt.Sprintf("%f", durationSeconds)}}, nil
	})

	return &harness{
		orchestrator: orchestrator,
		store:        store,
		catalog:      cat,
		fetcher:      fetcher,
		capability:   capability,
	}
}

func sampleRequest() Request {
	return Request{
		SourceURL:   "https://youtu.be/abc",
		Year:        "2024",
		Committee:   "Finance Committee",
		BillName:    "HB 101",
		VideoTitle:  "Day One",
		HearingDate: "2024-03-01",
		Room:        "Room 5",
		AMPM:        "AM",
		BillIDs:     []string{"HB101"},
	}
}

func runJob(t *testing.T, h *harness, req Request) *jobs.Job {
	t.Helper()
	ctx := context.Background()
	job, err := h.store.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	h.orchestrator.Execute(ctx, job.ID, req)
	got, err := h.store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	return got
}

func TestExecuteEndToEnd(t *testing.T) {
	h := newHarness(t, 1500, nil) // 25 minutes -> 3 chunks of <=10 minutes
	job := runJob(t, h, sampleRequest())

	if job.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", job.Status, job.Error)
	}
	if job.Result == nil {
		t.Fatal("missing result")
	}
	if got := job.Result.FolderPath; got != "2024/Finance_Committee/HB_101/Day_One" {
		t.Errorf("unexpected folder path %q", got)
	}
	if job.Result.Cached {
		t.Error("first run must not be cached")
	}
	if len(job.Warnings) != 0 {
		t.Errorf("unexpected warnings %v", job.Warnings)
	}

	record := job.Result.Transcript
	if len(record.Segments) != 3 || record.TotalSegments != 3 {
		t.Fatalf("expected 3 merged segments, got %d", len(record.Segments))
	}
	// chunk i starts at 600*i; local timestamps inside each chunk are 1..2
	for i, segment := range record.Segments {
		if segment.ID != i {
			t.Errorf("segment %d has id %d", i, segment.ID)
		}
		wantStart := float64(i)*600 + 1
		if segment.Start != wantStart {
			t.Errorf("segment %d starts at %v, want %v", i, segment.Start, wantStart)
		}
	}
	if record.Text != "part 0 part 1 part 2" {
		t.Errorf("unexpected stitched text %q", record.Text)
	}
	if record.Model != "large-v3" {
		t.Errorf("unexpected model %q", record.Model)
	}

	meta := job.Result.Metadata
	if meta.Committee != "Finance_Committee" || meta.Room != "Room_5" {
		t.Errorf("identity not sanitized: %+v", meta)
	}
	if meta.Duration != 1500 {
		t.Errorf("unexpected duration %v", meta.Duration)
	}

	// both artifacts published
	cached, err := h.catalog.IsCached(context.Background(), job.Result.FolderPath)
	if err != nil || !cached {
		t.Fatalf("artifacts not published: cached=%v err=%v", cached, err)
	}
}

func TestExecuteCacheHitSkipsWork(t *testing.T) {
	h := newHarness(t, 1500, nil)
	first := runJob(t, h, sampleRequest())
	if first.Status != jobs.StatusCompleted {
		t.Fatalf("first run failed: %s", first.Error)
	}
	fetchesAfterFirst := h.fetcher.calls.Load()
	transcriptionsAfterFirst := h.capability.calls.Load()

	second := runJob(t, h, sampleRequest())
	if second.Status != jobs.StatusCompleted {
		t.Fatalf("second run failed: %s", second.Error)
	}
	if !second.Result.Cached {
		t.Error("second run must report cached result")
	}
	if h.fetcher.calls.Load() != fetchesAfterFirst {
		t.Error("cache hit must not download audio")
	}
	if h.capability.calls.Load() != transcriptionsAfterFirst {
		t.Error("cache hit must not transcribe")
	}
	if second.Result.Transcript.Text != first.Result.Transcript.Text {
		t.Error("cached transcript must match original")
	}
}

func TestExecuteToleratesPartialChunkFailure(t *testing.T) {
	h := newHarness(t, 1500, map[int]bool{1: true})
	job := runJob(t, h, sampleRequest())

	if job.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed despite chunk failure, got %s (%s)", job.Status, job.Error)
	}
	if len(job.Warnings) != 1 || !strings.Contains(job.Warnings[0], "chunk 1") {
		t.Fatalf("expected warning for chunk 1, got %v", job.Warnings)
	}
	record := job.Result.Transcript
	if len(record.Segments) != 2 {
		t.Fatalf("expected 2 surviving segments, got %d", len(record.Segments))
	}
	if record.Text != "part 0 part 2" {
		t.Errorf("unexpected stitched text %q", record.Text)
	}
	// ids renumbered contiguously even with a gap in sources
	if record.Segments[0].ID != 0 || record.Segments[1].ID != 1 {
		t.Errorf("segment ids not contiguous: %d, %d", record.Segments[0].ID, record.Segments[1].ID)
	}
}

func TestExecuteFailsWhenAllChunksFail(t *testing.T) {
	h := newHarness(t, 1500, map[int]bool{0: true, 1: true, 2: true})
	job := runJob(t, h, sampleRequest())

	if job.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if !strings.Contains(job.Error, "all 3 chunks failed") {
		t.Errorf("unexpected error %q", job.Error)
	}
	// a failed run must not publish artifacts
	cached, err := h.catalog.IsCached(context.Background(), "2024/Finance_Committee/HB_101/Day_One")
	if err != nil || cached {
		t.Fatalf("failed run must not cache: cached=%v err=%v", cached, err)
	}
}

func TestExecuteFailsWhenDownloadFails(t *testing.T) {
	h := newHarness(t, 1500, nil)
	h.fetcher.err = fmt.Errorf("yt-dlp: exit status 1")
	job := runJob(t, h, sampleRequest())

	if job.Status != jobs.StatusFailed {
		t.Fatalf("expected failed, got %s", job.Status)
	}
	if !strings.Contains(job.Error, "fetch audio") {
		t.Errorf("unexpected error %q", job.Error)
	}
}

func TestExecuteShortRecordingSingleChunk(t *testing.T) {
	h := newHarness(t, 480, nil) // under one chunk length
	job := runJob(t, h, sampleRequest())

	if job.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", job.Status, job.Error)
	}
	if got := len(job.Result.Transcript.Segments); got != 1 {
		t.Fatalf("expected single chunk, got %d segments", got)
	}
	if h.capability.calls.Load() != 1 {
		t.Errorf("expected one transcription call, got %d", h.capability.calls.Load())
	}
}

func TestSubmitRunsInBackground(t *testing.T) {
	h := newHarness(t, 480, nil)
	job, err := h.orchestrator.Submit(context.Background(), sampleRequest())
	if err != nil {
		t.Fatal(err)
	}
	if job.Status != jobs.StatusQueued {
		t.Fatalf("submission must return a queued job, got %s", job.Status)
	}
	h.orchestrator.Wait()

	got, err := h.store.Get(context.Background(), job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed after wait, got %s (%s)", got.Status, got.Error)
	}
}

// trackingTranscriber records how many transcriptions run at once.
type trackingTranscriber struct {
	inflight atomic.Int64
	peak     atomic.Int64
	calls    atomic.Int64
}

func (c *trackingTranscriber) Transcribe(ctx context.Context, audioPath, workDir string) (transcribe.Result, error) {
	c.calls.Add(1)
	cur := c.inflight.Add(1)
	defer c.inflight.Add(-1)
	for {
		old := c.peak.Load()
		if cur <= old || c.peak.CompareAndSwap(old, cur) {
			break
		}
	}
	time.Sleep(10 * time.Millisecond)
	return transcribe.Result{
		Segments: []transcript.Segment{{Start: 1, End: 2, Text: "x"}},
		Text:     "x",
	}, nil
}

func (c *trackingTranscriber) Model() string { return "large-v3" }

func TestChunkPoolCappedRegardlessOfConfig(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Transcribe.Workers = 12

	cat := catalog.New(blobstore.NewMemoryStore(), "")
	store := jobs.NewMemoryStore()
	fetcher := &fakeFetcher{duration: 7200, title: "Marathon Hearing"} // 12 chunks
	capability := &trackingTranscriber{}

	workspaces, err := workspace.NewManager(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatal(err)
	}
	orchestrator := New(cfg, cat, store, fetcher, capability, workspaces, logging.NewNop())
	orchestrator.WithExtractorRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})
	orchestrator.WithProbe(func(ctx context.Context, binary, path string) (ffprobe.Result, error) {
		return ffprobe.Result{Format: ffprobe.Format{Duration: "7200.000000"}}, nil
	})

	ctx := context.Background()
	job, err := store.Create(ctx)
	if err != nil {
		t.Fatal(err)
	}
	orchestrator.Execute(ctx, job.ID, sampleRequest())

	got, err := store.Get(ctx, job.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed, got %s (%s)", got.Status, got.Error)
	}
	if calls := capability.calls.Load(); calls != 12 {
		t.Fatalf("expected 12 transcriptions, got %d", calls)
	}
	if peak := capability.peak.Load(); peak > 4 {
		t.Fatalf("chunk pool ran %d transcriptions at once, cap is 4", peak)
	}
}

func TestSubmitRejectsWhenQueueFull(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Jobs.MaxActive = 1
	cfg.Jobs.QueueDepth = 1

	cat := catalog.New(blobstore.NewMemoryStore(), "")
	store := jobs.NewMemoryStore()
	fetcher := &fakeFetcher{duration: 480, title: "Gated Hearing", gate: make(chan struct{})}
	capability := &chunkTranscriber{}

	workspaces, err := workspace.NewManager(cfg.Paths.StagingDir)
	if err != nil {
		t.Fatal(err)
	}
	orchestrator := New(cfg, cat, store, fetcher, capability, workspaces, logging.NewNop())
	orchestrator.WithExtractorRunner(func(ctx context.Context, name string, args ...string) error {
		return nil
	})

	ctx := context.Background()
	first, err := orchestrator.Submit(ctx, sampleRequest())
	if err != nil {
		t.Fatal(err)
	}
	// wait for the single worker to pick the job up and block in Fetch
	for fetcher.calls.Load() == 0 {
		time.Sleep(time.Millisecond)
	}

	second := sampleRequest()
	second.VideoTitle = "Day Two"
	if _, err := orchestrator.Submit(ctx, second); err != nil {
		t.Fatalf("queued submission rejected: %v", err)
	}

	third := sampleRequest()
	third.VideoTitle = "Day Three"
	rejected, err := orchestrator.Submit(ctx, third)
	if !errors.Is(err, ErrQueueFull) {
		t.Fatalf("expected ErrQueueFull, got job=%v err=%v", rejected, err)
	}

	close(fetcher.gate)
	orchestrator.Wait()

	got, err := store.Get(ctx, first.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Status != jobs.StatusCompleted {
		t.Fatalf("expected completed after drain, got %s (%s)", got.Status, got.Error)
	}
}

func TestRequestValidate(t *testing.T) {
	if missing := sampleRequest().Validate(); len(missing) != 0 {
		t.Fatalf("complete request reported missing %v", missing)
	}

	req := sampleRequest()
	req.SourceURL = ""
	req.Committee = "///" // sanitizes to empty
	missing := req.Validate()
	if len(missing) != 2 || missing[0] != "source_url" || missing[1] != "committee" {
		t.Fatalf("unexpected missing fields %v", missing)
	}
}
