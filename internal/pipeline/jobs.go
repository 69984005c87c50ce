package pipeline

import (
	"crypto/sha256"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dgallion1/binkread/internal/summarize"
)

// JobStatus represents the state of a summarization job.
type JobStatus string

const (
	StatusQueued      JobStatus = "queued"
	StatusExtracting  JobStatus = "extracting"
	StatusSummarizing JobStatus = "summarizing"
	StatusCompleted   JobStatus = "completed"
	StatusFailed      JobStatus = "failed"
	StatusCached      JobStatus = "cached"
)

// Done reports whether the status is final.
func (s JobStatus) Done() bool {
	return s == StatusCompleted || s == StatusFailed || s == StatusCached
}

// Job tracks the state of a single document summarization.
type Job struct {
	mu sync.Mutex

	ID       string
	Status   JobStatus
	Phase    string
	Filename string
	Title    string

	Progress Progress

	ContentHash string
	Summary     string
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Internal: not serialized.
	fileData []byte
	errors   []string
}

// Progress tracks processing progress.
type Progress struct {
	TotalChunks     int      `json:"total_chunks"`
	ChunksProcessed int      `json:"chunks_processed"`
	ChunksSkipped   int      `json:"chunks_skipped"`
	ChunksFailed    int      `json:"chunks_failed"`
	Errors          []string `json:"errors"`
}

// NewJob creates a queued job holding data.
func NewJob(filename string, data []byte) *Job {
	now := time.Now()
	return &Job{
		ID:        uuid.NewString(),
		Status:    StatusQueued,
		Phase:     "queued",
		Filename:  filename,
		CreatedAt: now,
		UpdatedAt: now,
		fileData:  data,
	}
}

// JobStore is a thread-safe in-memory job registry with TTL eviction.
type JobStore struct {
	mu   sync.Mutex
	jobs map[string]*Job
	ttl  time.Duration
}

func NewJobStore(ttl time.Duration) *JobStore {
	return &JobStore{
		jobs: make(map[string]*Job),
		ttl:  ttl,
	}
}

func (s *JobStore) Put(job *Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.ID] = job
}

func (s *JobStore) Get(id string) *Job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.jobs[id]
}

// Len returns the number of tracked jobs.
func (s *JobStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.jobs)
}

// Cleanup removes finished jobs not touched within the TTL. Jobs still in
// flight are kept regardless of age.
func (s *JobStore) Cleanup() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now()
	for id, job := range s.jobs {
		job.mu.Lock()
		expired := job.Status.Done() && now.Sub(job.UpdatedAt) > s.ttl
		job.mu.Unlock()
		if expired {
			delete(s.jobs, id)
		}
	}
}

// SetStatus updates job status atomically.
func (j *Job) SetStatus(status JobStatus, phase string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = phase
	j.UpdatedAt = time.Now()
}

// AddError records an error.
func (j *Job) AddError(err string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.errors = append(j.errors, err)
	j.Progress.Errors = j.errors
	j.UpdatedAt = time.Now()
}

// RecordChunk applies one pipeline chunk event to the progress counters.
func (j *Job) RecordChunk(ev summarize.ChunkEvent, total int) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Progress.TotalChunks = total
	j.Progress.ChunksProcessed++
	switch ev.Outcome {
	case summarize.OutcomeSkipped:
		j.Progress.ChunksSkipped++
	case summarize.OutcomeFailed:
		j.Progress.ChunksFailed++
		if ev.Err != nil {
			j.errors = append(j.errors, ev.Err.Error())
			j.Progress.Errors = j.errors
		}
	}
	j.UpdatedAt = time.Now()
}

// Finish stores the summary and final status.
func (j *Job) Finish(status JobStatus, out *Outcome) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.Status = status
	j.Phase = "done"
	if out != nil {
		j.Summary = out.Summary
		j.Title = out.Title
		j.ContentHash = out.ContentHash
		j.Progress.TotalChunks = out.ChunksTotal
		j.Progress.ChunksProcessed = out.ChunksTotal
		j.Progress.ChunksSkipped = out.ChunksSkipped
		j.Progress.ChunksFailed = out.ChunksFailed
	}
	j.fileData = nil
	j.UpdatedAt = time.Now()
}

// FileData returns the raw file bytes.
func (j *Job) FileData() []byte {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.fileData
}

// JobSnapshot is a read-only, JSON-safe copy of job state.
type JobSnapshot struct {
	ID          string    `json:"job_id"`
	Status      JobStatus `json:"status"`
	Phase       string    `json:"phase"`
	Filename    string    `json:"filename"`
	Title       string    `json:"title,omitempty"`
	ContentHash string    `json:"content_hash,omitempty"`
	Progress    Progress  `json:"progress"`
	Summary     string    `json:"summary,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Snapshot returns a JSON-safe copy of the job state.
func (j *Job) Snapshot() JobSnapshot {
	j.mu.Lock()
	defer j.mu.Unlock()
	errs := make([]string, len(j.errors))
	copy(errs, j.errors)
	p := j.Progress
	p.Errors = errs
	return JobSnapshot{
		ID:          j.ID,
		Status:      j.Status,
		Phase:       j.Phase,
		Filename:    j.Filename,
		Title:       j.Title,
		ContentHash: j.ContentHash,
		Progress:    p,
		Summary:     j.Summary,
		CreatedAt:   j.CreatedAt,
		UpdatedAt:   j.UpdatedAt,
	}
}

// ContentHashHex computes SHA-256 of content and returns hex string.
func ContentHashHex(data []byte) string {
	h := sha256.Sum256(data)
	return fmt.Sprintf("%x", h[:])
}
