package pipeline

import (
	"context"
	"log/slog"
)

// Worker processes queued summarization jobs one at a time.
type Worker struct {
	summarizer *Summarizer
	log        *slog.Logger
}

func NewWorker(s *Summarizer, log *slog.Logger) *Worker {
	return &Worker{summarizer: s, log: log}
}

// Process runs the document flow for job and records the final state on it.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "filename", job.Filename)
	log.Info("job started")

	out, err := w.summarizer.run(ctx, job.FileData(), job.Filename, job)
	if err != nil {
		job.AddError(err.Error())
		job.Finish(StatusFailed, out)
		log.Error("job failed", "error", err)
		return
	}

	status := StatusCompleted
	if out.Cached {
		status = StatusCached
	}
	job.Finish(status, out)
	log.Info("job finished", "status", status, "chunks", out.ChunksTotal)
}
