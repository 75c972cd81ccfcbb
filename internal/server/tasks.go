package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"flowdash/internal/models"
	"flowdash/internal/storage"
)

// taskRequest decodes create and update bodies. Pointer fields keep
// "not sent" distinct from "sent empty" for partial updates.
type taskRequest struct {
	Title    *string `json:"title"`
	Content  *string `json:"content"`
	Priority *string `json:"priority"`
	Status   *string `json:"status"`
}

// handleListTasks returns the whole collection, newest first.
func (s *Server) handleListTasks(c *gin.Context) {
	tasks, err := s.store.ListTasks(c.Request.Context())
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}
	c.JSON(http.StatusOK, tasks)
}

// handleCreateTask inserts a new task, defaulting priority and status.
func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Title == nil || strings.TrimSpace(*req.Title) == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("title is required"))
		return
	}
	if req.Content == nil || *req.Content == "" {
		s.respondError(c, http.StatusBadRequest, fmt.Errorf("content is required"))
		return
	}

	draft := storage.Draft{
		Title:    *req.Title,
		Content:  *req.Content,
		Priority: models.PriorityMedium,
		Status:   models.StatusTodo,
	}
	if req.Priority != nil {
		p, err := models.ParsePriority(*req.Priority)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		draft.Priority = p
	}
	if req.Status != nil {
		st, err := models.ParseStatus(*req.Status)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		draft.Status = st
	}

	task, err := s.store.CreateTask(c.Request.Context(), draft)
	if err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// handleUpdateTask applies a partial update; omitted fields keep their
// stored value.
func (s *Server) handleUpdateTask(c *gin.Context) {
	id := c.Param("id")

	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondError(c, http.StatusBadRequest, err)
		return
	}

	var update storage.TaskUpdate
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			s.respondError(c, http.StatusBadRequest, fmt.Errorf("title must not be empty"))
			return
		}
		update.Title = req.Title
	}
	if req.Content != nil {
		update.Content = req.Content
	}
	if req.Priority != nil {
		p, err := models.ParsePriority(*req.Priority)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		update.Priority = &p
	}
	if req.Status != nil {
		st, err := models.ParseStatus(*req.Status)
		if err != nil {
			s.respondError(c, http.StatusBadRequest, err)
			return
		}
		update.Status = &st
	}

	task, err := s.store.UpdateTask(c.Request.Context(), id, update)
	if err != nil {
		s.respondStoreError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// handleDeleteTask removes a task. Deleting an id that is already gone is
// acknowledged the same way.
func (s *Server) handleDeleteTask(c *gin.Context) {
	if err := s.store.DeleteTask(c.Request.Context(), c.Param("id")); err != nil {
		s.respondError(c, http.StatusInternalServerError, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "task deleted"})
}
