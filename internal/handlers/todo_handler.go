package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"todolist/internal/middleware"
	"todolist/internal/models"
	"todolist/internal/repository"
)

type TodoHandler struct {
	todos repository.TodoRepository
	v     *validator.Validate
}

func NewTodoHandler(todos repository.TodoRepository) *TodoHandler {
	return &TodoHandler{todos: todos, v: validator.New()}
}

// @Tags Todos
// @Summary List the current user's todos
// @Produce json
// @Success 200 {object} handlers.Response
// @Failure 401 {object} handlers.Response
// @Router /todolist [get]
func (h *TodoHandler) List(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	todos, err := h.todos.ListByUser(r.Context(), user.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list todos")
		return
	}
	if todos == nil {
		todos = []models.Todo{}
	}
	writeJSON(w, http.StatusOK, "ok", todos)
}

// @Tags Todos
// @Summary Create a todo
// @Accept json
// @Produce json
// @Param body body models.CreateTodoRequest true "Todo text"
// @Success 201 {object} handlers.Response
// @Failure 400 {object} handlers.Response
// @Router /todolist [post]
func (h *TodoHandler) Create(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())

	var req models.CreateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := h.v.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// New todos always start out not completed.
	todo := &models.Todo{
		ID:     uuid.NewString(),
		Text:   req.Text,
		UserID: user.ID,
	}
	if err := h.todos.Create(r.Context(), todo); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to create todo")
		return
	}

	writeJSON(w, http.StatusCreated, "todo created", todo)
}

// @Tags Todos
// @Summary Update a todo
// @Accept json
// @Produce json
// @Param id path string true "Todo ID"
// @Param body body models.UpdateTodoRequest true "Fields to update"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /todolist/{id} [put]
func (h *TodoHandler) Update(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	todoID := chi.URLParam(r, "id")

	var req models.UpdateTodoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	todo, err := h.todos.Update(r.Context(), user.ID, todoID, &req)
	if err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "todo updated", todo)
}

// @Tags Todos
// @Summary Delete a todo
// @Produce json
// @Param id path string true "Todo ID"
// @Success 200 {object} handlers.Response
// @Failure 404 {object} handlers.Response
// @Router /todolist/{id} [delete]
func (h *TodoHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user := middleware.UserFrom(r.Context())
	todoID := chi.URLParam(r, "id")

	if err := h.todos.Delete(r.Context(), user.ID, todoID); err != nil {
		writeBusinessError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, "todo deleted", nil)
}
