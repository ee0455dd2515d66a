package web

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gongahkia/dueday/internal/dates"
	duerr "github.com/gongahkia/dueday/internal/errors"
	"github.com/gongahkia/dueday/internal/log"
	"github.com/gongahkia/dueday/internal/model"
	"github.com/gongahkia/dueday/internal/store"
)

const maxTitleSize = 1 << 10 // 1KB

// defaultWindow is the calendar span used when to is omitted.
const defaultWindow = 7 * 24 * time.Hour

type parseRequest struct {
	TaskTitle string `json:"taskTitle"`
	Timezone  string `json:"timezone"`
}

// todoRequest is the flat body accepted by create and update. When TaskTitle
// is set the todo is quick-added from free text and the structured fields
// are ignored.
type todoRequest struct {
	TaskTitle          string     `json:"taskTitle"`
	Timezone           string     `json:"timezone"`
	Text               string     `json:"text"`
	Notes              string     `json:"notes"`
	Category           string     `json:"category"`
	Color              string     `json:"color"`
	DueDate            *time.Time `json:"dueDate"`
	Priority           string     `json:"priority"`
	IsRecurring        bool       `json:"isRecurring"`
	RecurrencePattern  string     `json:"recurrencePattern"`
	RecurrenceInterval int        `json:"recurrenceInterval"`
	RecurrenceEndsAt   *time.Time `json:"recurrenceEndsAt"`
	CustomRule         string     `json:"recurrenceCustomRule"`
	Completed          bool       `json:"completed"`
}

func (r todoRequest) task() (model.Task, error) {
	category, err := model.ParseCategory(r.Category)
	if err != nil {
		return model.Task{}, err
	}
	priority, err := model.ParsePriority(r.Priority)
	if err != nil {
		return model.Task{}, err
	}
	pattern, err := model.ParsePattern(r.RecurrencePattern)
	if err != nil {
		return model.Task{}, err
	}
	return model.Task{
		Text:        r.Text,
		Notes:       r.Notes,
		Category:    category,
		Color:       r.Color,
		DueDate:     r.DueDate,
		Priority:    priority,
		IsRecurring: r.IsRecurring,
		Rule: model.RecurrenceRule{
			Pattern:  pattern,
			Interval: r.RecurrenceInterval,
			EndsAt:   r.RecurrenceEndsAt,
		},
		CustomRule: r.CustomRule,
		Completed:  r.Completed,
	}, nil
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleReady(c *gin.Context) {
	if err := s.svc.Ready(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

func (s *Server) handleParseTaskDetails(c *gin.Context) {
	var req parseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, &duerr.ValidationError{Field: "body", Message: "invalid JSON", Err: err})
		return
	}
	title := strings.TrimSpace(req.TaskTitle)
	if title == "" {
		fail(c, &duerr.ValidationError{Field: "taskTitle", Message: "must not be empty"})
		return
	}
	if len(title) > maxTitleSize {
		fail(c, &duerr.ValidationError{Field: "taskTitle", Message: "exceeds maximum size of 1KB"})
		return
	}
	ok(c, http.StatusOK, s.svc.Parse(title, req.Timezone))
}

func (s *Server) handleListTodos(c *gin.Context) {
	f := store.Filter{IncludeCompleted: c.Query("completed") == "true"}
	if v := c.Query("category"); v != "" {
		category, err := model.ParseCategory(v)
		if err != nil {
			fail(c, err)
			return
		}
		f.Category = category
	}
	if v := c.Query("before"); v != "" {
		before, _, err := dates.ParseInstant(v, s.svc.Zone)
		if err != nil {
			fail(c, &duerr.ValidationError{Field: "before", Message: err.Error()})
			return
		}
		f.DueBefore = &before
	}

	todos, err := s.svc.List(c.Request.Context(), f)
	if err != nil {
		fail(c, err)
		return
	}
	if todos == nil {
		todos = []model.Task{}
	}
	ok(c, http.StatusOK, todos)
}

func (s *Server) handleCreateTodo(c *gin.Context) {
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, &duerr.ValidationError{Field: "body", Message: "invalid JSON", Err: err})
		return
	}

	if title := strings.TrimSpace(req.TaskTitle); title != "" {
		task, parsed, err := s.svc.QuickAdd(c.Request.Context(), title, req.Timezone)
		if err != nil {
			fail(c, err)
			return
		}
		ok(c, http.StatusCreated, gin.H{"todo": task, "parsed": parsed})
		return
	}

	task, err := req.task()
	if err != nil {
		fail(c, err)
		return
	}
	created, err := s.svc.Create(c.Request.Context(), task, req.Timezone)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusCreated, gin.H{"todo": created})
}

func (s *Server) handleGetTodo(c *gin.Context) {
	id, err := todoID(c)
	if err != nil {
		fail(c, err)
		return
	}
	task, err := s.svc.Get(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, task)
}

func (s *Server) handleUpdateTodo(c *gin.Context) {
	id, err := todoID(c)
	if err != nil {
		fail(c, err)
		return
	}
	var req todoRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, &duerr.ValidationError{Field: "body", Message: "invalid JSON", Err: err})
		return
	}
	task, err := req.task()
	if err != nil {
		fail(c, err)
		return
	}
	task.ID = id
	updated, err := s.svc.Update(c.Request.Context(), task, req.Timezone)
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, updated)
}

func (s *Server) handleDeleteTodo(c *gin.Context) {
	id, err := todoID(c)
	if err != nil {
		fail(c, err)
		return
	}
	if err := s.svc.Delete(c.Request.Context(), id); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Todo deleted",
	})
}

func (s *Server) handleCompleteTodo(c *gin.Context) {
	id, err := todoID(c)
	if err != nil {
		fail(c, err)
		return
	}
	done, spawned, err := s.svc.Complete(c.Request.Context(), id, c.Query("timezone"))
	if err != nil {
		fail(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"todo": done, "next": spawned})
}

func (s *Server) handleCalendar(c *gin.Context) {
	zone := c.Query("timezone")
	loc := s.svc.Zone
	if zone != "" {
		loc, _ = dates.LoadZone(zone)
	}

	from := dates.StartOfDay(s.svc.Clock.Now(), loc)
	if v := c.Query("from"); v != "" {
		t, _, err := dates.ParseInstant(v, loc)
		if err != nil {
			fail(c, &duerr.ValidationError{Field: "from", Message: err.Error()})
			return
		}
		from = t
	}
	to := from.Add(defaultWindow)
	if v := c.Query("to"); v != "" {
		t, dateOnly, err := dates.ParseInstant(v, loc)
		if err != nil {
			fail(c, &duerr.ValidationError{Field: "to", Message: err.Error()})
			return
		}
		if dateOnly {
			t = dates.EndOfDay(t, loc)
		}
		to = t
	}

	occurrences, err := s.svc.Calendar(c.Request.Context(), from, to, zone)
	if err != nil {
		fail(c, err)
		return
	}
	if occurrences == nil {
		occurrences = []model.Occurrence{}
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    occurrences,
		"count":   len(occurrences),
	})
}

func todoID(c *gin.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id < 1 {
		return 0, &duerr.ValidationError{Field: "id", Message: "must be a positive integer"}
	}
	return id, nil
}

func ok(c *gin.Context, status int, data any) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// fail maps typed errors onto status codes. Anything untyped is a 500 and
// its message is not echoed back.
func fail(c *gin.Context, err error) {
	var (
		validErr    *duerr.ValidationError
		notFoundErr *duerr.NotFoundError
	)
	switch {
	case errors.As(err, &validErr):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": validErr.Error()})
	case errors.As(err, &notFoundErr):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": notFoundErr.Error()})
	default:
		log.Error("request failed", err, "path", c.FullPath())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "internal server error"})
	}
}
