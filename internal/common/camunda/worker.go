// internal/common/camunda/worker.go
package camunda

import (
	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/worker"
	"github.com/camunda/zeebe/clients/go/v8/pkg/zbc"

	"smartdm-service/internal/common/config"
)

type Logger interface {
	Info(msg string, fields map[string]interface{})
}

// JobHandlerFunc matches the Handle method of every worker package.
type JobHandlerFunc func(client worker.JobClient, job entities.Job)

// Workers tracks opened job workers so they can be closed together.
type Workers struct {
	workers []worker.JobWorker
	logger  Logger
}

func NewWorkers(log Logger) *Workers {
	return &Workers{logger: log}
}

// Start opens a job worker for taskType unless it is disabled in config.
func (w *Workers) Start(client zbc.Client, taskType string, wcfg config.WorkerConfig, handler JobHandlerFunc) {
	if !wcfg.Enabled {
		w.logger.Info("worker disabled", map[string]interface{}{"taskType": taskType})
		return
	}

	jobWorker := client.NewJobWorker().
		JobType(taskType).
		Handler(worker.JobHandler(handler)).
		MaxJobsActive(wcfg.MaxJobsActive).
		Timeout(config.GetDuration(wcfg.Timeout)).
		Open()
	w.workers = append(w.workers, jobWorker)

	w.logger.Info("worker started", map[string]interface{}{
		"taskType":      taskType,
		"maxJobsActive": wcfg.MaxJobsActive,
		"timeout_ms":    wcfg.Timeout,
	})
}

// Close stops every worker and waits for in-flight jobs.
func (w *Workers) Close() {
	for _, jw := range w.workers {
		jw.Close()
		jw.AwaitClose()
	}
	w.workers = nil
}

// Count reports how many workers are open.
func (w *Workers) Count() int {
	return len(w.workers)
}
