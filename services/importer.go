package services

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/goblin987/legendary-meme/types"
	"github.com/goblin987/legendary-meme/websocket"
)

// ImportService manages jobs that pull remote tracks into the music folder
// under their convention-normalized filenames.
type ImportService interface {
	Start()
	AddJob(url, name string) *types.ImportJob
	GetJob(id string) (*types.ImportJob, bool)
	GetAllJobs() []*types.ImportJob
	CancelJob(id string) bool
}

type importService struct {
	jobs       map[string]*types.ImportJob
	queue      chan *types.ImportJob
	mu         sync.RWMutex
	maxWorkers int
	musicDir   string
	hub        websocket.Hub
	client     *http.Client
}

// NewImportService creates a new import service
func NewImportService(maxWorkers int, musicDir string, hub websocket.Hub) ImportService {
	return &importService{
		jobs:       make(map[string]*types.ImportJob),
		queue:      make(chan *types.ImportJob, 100),
		maxWorkers: maxWorkers,
		musicDir:   musicDir,
		hub:        hub,
		client:     &http.Client{Timeout: 10 * time.Minute},
	}
}

// AddJob queues an import of a remote track
func (is *importService) AddJob(url, name string) *types.ImportJob {
	is.mu.Lock()
	defer is.mu.Unlock()

	job := &types.ImportJob{
		ID:        uuid.New().String(),
		URL:       url,
		Name:      name,
		Filename:  NormalizeFilename(name),
		Status:    types.JobStatusQueued,
		Total:     -1,
		CreatedAt: time.Now(),
	}

	is.jobs[job.ID] = job
	is.queue <- job

	return snapshotJob(job)
}

// GetJob retrieves a job by ID
func (is *importService) GetJob(id string) (*types.ImportJob, bool) {
	is.mu.RLock()
	defer is.mu.RUnlock()
	job, exists := is.jobs[id]
	if !exists {
		return nil, false
	}
	return snapshotJob(job), true
}

// GetAllJobs returns all jobs
func (is *importService) GetAllJobs() []*types.ImportJob {
	is.mu.RLock()
	defer is.mu.RUnlock()

	jobs := make([]*types.ImportJob, 0, len(is.jobs))
	for _, job := range is.jobs {
		jobs = append(jobs, snapshotJob(job))
	}
	return jobs
}

// snapshotJob copies a job into a caller-owned value. Workers keep mutating
// the stored struct under the service lock, so live pointers never leave it.
func snapshotJob(job *types.ImportJob) *types.ImportJob {
	copied := *job
	return &copied
}

// CancelJob cancels a queued job. Jobs already downloading keep going.
func (is *importService) CancelJob(id string) bool {
	is.mu.Lock()
	defer is.mu.Unlock()

	job, exists := is.jobs[id]
	if !exists || job.Status != types.JobStatusQueued {
		return false
	}

	is.applyStatus(job, types.JobStatusCancelled, "")
	return true
}

// Start begins processing jobs
func (is *importService) Start() {
	for i := 0; i < is.maxWorkers; i++ {
		go is.worker()
	}
}

// worker processes jobs from the queue
func (is *importService) worker() {
	for job := range is.queue {
		// Cancellation may land between queueing and pickup
		if !is.beginJob(job.ID) {
			continue
		}

		err := is.runImport(job)
		if err != nil {
			is.setStatus(job.ID, types.JobStatusFailed, err.Error())
			log.Printf("Import %s failed: %v", job.ID, err)
		} else {
			is.setStatus(job.ID, types.JobStatusCompleted, "")
			log.Printf("Import %s completed: %s", job.ID, job.Filename)
		}
	}
}

// runImport downloads the job's URL into the music folder, reporting
// progress through the hub as bytes arrive.
func (is *importService) runImport(job *types.ImportJob) error {
	target := filepath.Join(is.musicDir, job.Filename)

	progress := func(received, total int64) {
		is.updateProgress(job.ID, received, total)
	}

	if err := FetchTrack(is.client, job.URL, target, progress); err != nil {
		return err
	}
	return nil
}

// FetchTrack downloads url into target, calling onProgress (if non-nil)
// after every chunk. The partial file is removed on failure. Shared by the
// job workers and the CLI import mode.
func FetchTrack(client *http.Client, url, target string, onProgress func(received, total int64)) error {
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("failed to fetch track: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %s from %s", resp.Status, url)
	}

	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create music folder: %w", err)
	}

	file, err := os.Create(target)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	total := resp.ContentLength
	var received int64
	buf := make([]byte, 32*1024)
	for {
		n, readErr := resp.Body.Read(buf)
		if n > 0 {
			if _, err := file.Write(buf[:n]); err != nil {
				file.Close()
				os.Remove(target)
				return fmt.Errorf("failed to write file: %w", err)
			}
			received += int64(n)
			if onProgress != nil {
				onProgress(received, total)
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			file.Close()
			os.Remove(target)
			return fmt.Errorf("failed to read response: %w", readErr)
		}
	}

	return file.Close()
}

// updateProgress updates job byte counts and broadcasts the percentage
func (is *importService) updateProgress(id string, received, total int64) {
	is.mu.Lock()
	defer is.mu.Unlock()

	job, exists := is.jobs[id]
	if !exists {
		return
	}
	job.Received = received
	job.Total = total

	if is.hub != nil && total > 0 {
		percent := float64(received) / float64(total) * 100
		is.hub.BroadcastProgress(id, "progress", string(job.Status),
			fmt.Sprintf("Downloaded %d of %d bytes", received, total), percent)
	}
}

// beginJob moves a queued job to processing. Returns false when the job was
// cancelled (or vanished) before a worker picked it up.
func (is *importService) beginJob(id string) bool {
	is.mu.Lock()
	defer is.mu.Unlock()

	job, exists := is.jobs[id]
	if !exists || job.Status != types.JobStatusQueued {
		return false
	}

	is.applyStatus(job, types.JobStatusProcessing, "")
	return true
}

// setStatus updates job status and broadcasts the transition
func (is *importService) setStatus(id string, status types.JobStatus, errorMsg string) {
	is.mu.Lock()
	defer is.mu.Unlock()

	job, exists := is.jobs[id]
	if !exists {
		return
	}

	is.applyStatus(job, status, errorMsg)
}

// applyStatus mutates the job and broadcasts. Callers hold the write lock.
func (is *importService) applyStatus(job *types.ImportJob, status types.JobStatus, errorMsg string) {
	job.Status = status
	if errorMsg != "" {
		job.Error = errorMsg
	}

	now := time.Now()
	switch status {
	case types.JobStatusProcessing:
		if job.StartedAt == nil {
			job.StartedAt = &now
		}
	case types.JobStatusCompleted, types.JobStatusFailed, types.JobStatusCancelled:
		job.CompletedAt = &now
	}

	if is.hub == nil {
		return
	}

	msgType := "status"
	message := string(status)
	progress := 0.0
	if job.Total > 0 {
		progress = float64(job.Received) / float64(job.Total) * 100
	}

	switch status {
	case types.JobStatusCompleted:
		msgType = "complete"
		progress = 100.0
		message = fmt.Sprintf("%s imported as %s", job.Name, job.Filename)
	case types.JobStatusFailed:
		msgType = "error"
		message = errorMsg
	case types.JobStatusProcessing:
		message = fmt.Sprintf("Importing %s", job.Name)
	}

	is.hub.BroadcastProgress(job.ID, msgType, string(status), message, progress)
}
