package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"mp3catalog/internal/pipeline"
	"mp3catalog/internal/report"
)

// CatalogRequest starts a cataloging run over a directory. The boolean
// overrides are pointers so "not sent" is distinguishable from false.
type CatalogRequest struct {
	Directory       string `json:"directory"`
	Simulate        *bool  `json:"simulate,omitempty"`
	ExternalLookups *bool  `json:"external_lookups,omitempty"`
	UpdateTags      *bool  `json:"update_tags,omitempty"`
}

type JobResponse struct {
	ID          string       `json:"id"`
	Directory   string       `json:"directory"`
	Status      JobStatus    `json:"status"`
	Progress    int          `json:"progress"`
	Total       int          `json:"total"`
	Stats       report.Stats `json:"statistics"`
	Error       string       `json:"error,omitempty"`
	CreatedAt   string       `json:"created_at"`
	StartedAt   *string      `json:"started_at,omitempty"`
	CompletedAt *string      `json:"completed_at,omitempty"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req CatalogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Directory == "" {
		http.Error(w, "Directory is required", http.StatusBadRequest)
		return
	}

	jobConfig := s.config
	jobConfig.BasePath = req.Directory
	if req.Simulate != nil {
		jobConfig.Simulate = *req.Simulate
	}
	if req.ExternalLookups != nil {
		jobConfig.ExternalLookups = *req.ExternalLookups
	}
	if req.UpdateTags != nil {
		jobConfig.UpdateTags = *req.UpdateTags
	}

	if err := jobConfig.Validate(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	job := s.jobMgr.CreateJob(req.Directory, jobConfig)
	s.logger.Info("Created job %s for %s", job.ID, req.Directory)

	go s.processJob(job)

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.jobToResponse(job))
}

func (s *Server) handleListJobs(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	jobs := s.jobMgr.ListJobs()
	responses := make([]*JobResponse, len(jobs))
	for i, job := range jobs {
		responses[i] = s.jobToResponse(job)
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(responses)
}

func (s *Server) handleJobAction(w http.ResponseWriter, r *http.Request) {
	// /api/jobs/{id} or /api/jobs/{id}/cancel
	path := strings.TrimPrefix(r.URL.Path, "/api/jobs/")
	parts := strings.Split(path, "/")
	if len(parts) == 0 || parts[0] == "" {
		http.Error(w, "Job ID required", http.StatusBadRequest)
		return
	}

	jobID := parts[0]

	if r.Method == http.MethodGet && len(parts) == 1 {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(s.jobToResponse(job))
		return
	}

	if r.Method == http.MethodPost && len(parts) == 2 && parts[1] == "cancel" {
		job, err := s.jobMgr.GetJob(jobID)
		if err != nil {
			http.Error(w, err.Error(), http.StatusNotFound)
			return
		}

		if job.Cancel != nil {
			job.Cancel()
		}

		s.jobMgr.UpdateJob(jobID, func(j *Job) {
			j.Status = StatusCancelled
		})

		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(map[string]string{"status": "cancelled"})
		return
	}

	http.Error(w, "Invalid request", http.StatusBadRequest)
}

// processJob runs the pipeline for a job, mirroring its hooks into job
// updates so websocket subscribers see live progress.
func (s *Server) processJob(job *Job) {
	ctx, cancel := context.WithCancel(s.ctx)
	defer cancel()

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Cancel = cancel
		j.Status = StatusRunning
	})

	s.logger.Info("Starting job %s", job.ID)

	p, err := pipeline.New(job.Config, s.logger)
	if err != nil {
		s.failJob(job.ID, err)
		return
	}

	p.Hooks = pipeline.Hooks{
		OnFilesScanned: func(total int) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Total = total
			})
		},
		OnProgress: func(file string) {
			s.jobMgr.UpdateJob(job.ID, func(j *Job) {
				j.Progress++
				j.Stats = p.Report().Statistics
			})
		},
	}

	if err := p.Run(ctx); err != nil {
		s.failJob(job.ID, err)
		return
	}

	s.jobMgr.UpdateJob(job.ID, func(j *Job) {
		j.Stats = p.Report().Statistics
		if j.Status != StatusCancelled {
			j.Status = StatusCompleted
		}
	})

	s.logger.Info("Job %s finished", job.ID)
}

func (s *Server) failJob(id string, err error) {
	s.logger.Error("Job %s failed: %v", id, err)
	s.jobMgr.UpdateJob(id, func(j *Job) {
		j.Status = StatusFailed
		j.Error = err.Error()
	})
}

func (s *Server) jobToResponse(job *Job) *JobResponse {
	resp := &JobResponse{
		ID:        job.ID,
		Directory: job.Directory,
		Status:    job.Status,
		Progress:  job.Progress,
		Total:     job.Total,
		Stats:     job.Stats,
		Error:     job.Error,
		CreatedAt: job.CreatedAt.Format("2006-01-02 15:04:05"),
	}

	if job.StartedAt != nil {
		started := job.StartedAt.Format("2006-01-02 15:04:05")
		resp.StartedAt = &started
	}

	if job.CompletedAt != nil {
		completed := job.CompletedAt.Format("2006-01-02 15:04:05")
		resp.CompletedAt = &completed
	}

	return resp
}
