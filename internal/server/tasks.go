package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"priorityflow/internal/domain"
	"priorityflow/internal/render"
	"priorityflow/internal/storage"
)

// taskPayload is the JSON write shape; derived fields (score, label) are not
// accepted, they are always recomputed server-side.
type taskPayload struct {
	Title          string   `json:"title"`
	Description    string   `json:"description"`
	Status         string   `json:"status"`
	Category       string   `json:"category"`
	DueDate        string   `json:"dueDate"`
	RequiredInfo   []string `json:"requiredInfo"`
	ReceivedInfo   []string `json:"receivedInfo"`
	BusinessImpact string   `json:"businessImpact"`
	Effort         int      `json:"effort"`
	Dependencies   []int64  `json:"dependencies"`
	Tags           []string `json:"tags"`
}

func (p taskPayload) apply(task *domain.Task) {
	task.Title = strings.TrimSpace(p.Title)
	task.Description = p.Description
	if p.Status != "" {
		task.Status = domain.ParseStatus(p.Status)
	}
	if p.Category != "" {
		task.Category = domain.ParseCategory(p.Category)
	}
	if p.BusinessImpact != "" {
		task.BusinessImpact = domain.ParseImpact(p.BusinessImpact)
	}
	task.DueDate = p.DueDate
	if p.Effort != 0 {
		task.Effort = p.Effort
	}
	if p.RequiredInfo != nil {
		task.RequiredInfo = p.RequiredInfo
	}
	if p.ReceivedInfo != nil {
		task.ReceivedInfo = p.ReceivedInfo
	}
	if p.Dependencies != nil {
		task.Dependencies = p.Dependencies
	}
	if p.Tags != nil {
		task.Tags = p.Tags
	}
}

func (s *Server) handleTaskCreate(w http.ResponseWriter, r *http.Request) {
	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	task := domain.NewTask("")
	payload.apply(task)

	saved, err := s.tasks.Save(task)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

func (s *Server) handleTaskUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	task, err := s.tasks.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}

	var payload taskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	payload.apply(task)

	saved, err := s.tasks.Save(task)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, saved)
}

func (s *Server) handleTaskGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := s.tasks.Get(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleTaskDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := s.tasks.Delete(id); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleTaskList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := domain.TaskFilter{Search: query.Get("q")}
	for _, v := range query["status"] {
		filter.Statuses = append(filter.Statuses, domain.ParseStatus(v))
	}
	for _, v := range query["label"] {
		filter.Labels = append(filter.Labels, domain.ParseLabel(v))
	}
	for _, v := range query["category"] {
		filter.Categories = append(filter.Categories, domain.ParseCategory(v))
	}

	tasks, err := s.tasks.List(filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (s *Server) handleTaskTop(w http.ResponseWriter, r *http.Request) {
	top, err := s.tasks.Top()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, top)
}

func (s *Server) handleFlow(w http.ResponseWriter, r *http.Request) {
	tasks, err := s.tasks.List(domain.TaskFilter{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	switch format := r.URL.Query().Get("format"); format {
	case "", "dot":
		w.Header().Set("Content-Type", "text/vnd.graphviz; charset=utf-8")
		_, _ = w.Write([]byte(render.DOT(tasks)))
	case "mermaid":
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(render.Mermaid(tasks)))
	default:
		writeError(w, http.StatusBadRequest, "unknown format "+format)
	}
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid task id")
		return 0, false
	}
	return id, true
}

func writeStoreError(w http.ResponseWriter, err error) {
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeError(w, http.StatusInternalServerError, err.Error())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
