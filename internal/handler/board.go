package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/taskboard/internal/editor"
	"github.com/BuzzLyutic/taskboard/internal/gateway"
	"github.com/BuzzLyutic/taskboard/internal/model"
	"github.com/BuzzLyutic/taskboard/internal/service"
	"github.com/BuzzLyutic/taskboard/internal/view"
	"github.com/BuzzLyutic/taskboard/pkg/respond"
)

// BoardHandler exposes the board to a UI over JSON.
type BoardHandler struct {
	board    *service.Board
	pageSize int
	logger   *zap.Logger
}

func NewBoardHandler(b *service.Board, pageSize int, logger *zap.Logger) *BoardHandler {
	if pageSize <= 0 {
		pageSize = view.DefaultPageSize
	}
	return &BoardHandler{
		board:    b,
		pageSize: pageSize,
		logger:   logger,
	}
}

func (h *BoardHandler) Routes(r chi.Router) {
	r.Route("/api", func(r chi.Router) {
		r.Get("/board", h.Snapshot)
		r.Post("/board/reload", h.Reload)
		r.Delete("/board/banner", h.DismissBanner)
		r.Get("/board/tasks", h.AllTasks)
		r.Get("/board/stats", h.Stats)

		r.Get("/task-types", h.TaskTypes)
		r.Get("/tasks", h.Query)
		r.Post("/tasks/{id}/edit", h.Edit)
		r.Post("/tasks/{id}/toggle", h.Toggle)
		r.Delete("/tasks/{id}", h.Delete)

		r.Get("/view", h.View)
		r.Put("/view/search", h.Search)
		r.Put("/view/sort", h.SetSort)
		r.Post("/view/sort/{key}", h.Sort)
		r.Put("/view/page", h.Page)
		r.Post("/view/page/{nav}", h.Navigate)

		r.Get("/editor", h.Editor)
		r.Put("/editor/draft", h.ReplaceDraft)
		r.Patch("/editor/draft", h.PatchDraft)
		r.Post("/editor/submit", h.Submit)
		r.Post("/editor/cancel", h.Cancel)
	})
}

func (h *BoardHandler) Snapshot(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot())
}

func (h *BoardHandler) Reload(w http.ResponseWriter, r *http.Request) {
	h.board.Load(r.Context())
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot())
}

func (h *BoardHandler) DismissBanner(w http.ResponseWriter, r *http.Request) {
	h.board.DismissBanner()
	w.WriteHeader(http.StatusNoContent)
}

// AllTasks returns the whole collection, unfiltered and unpaged.
func (h *BoardHandler) AllTasks(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.board.Tasks())
}

func (h *BoardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.board.Stats())
}

// TaskTypes lists the selectable types with their badge colors.
func (h *BoardHandler) TaskTypes(w http.ResponseWriter, r *http.Request) {
	type entry struct {
		Name    model.TaskType `json:"name"`
		Palette model.Palette  `json:"palette"`
	}
	out := make([]entry, 0, len(model.TaskTypes))
	for _, t := range model.TaskTypes {
		out = append(out, entry{Name: t, Palette: t.Palette()})
	}
	respond.JSON(w, r, http.StatusOK, out)
}

// Query computes a page from query parameters without changing board state:
// ?search=&sort=&dir=&page=
func (h *BoardHandler) Query(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	st := view.NewState(h.pageSize)
	st.Search = q.Get("search")

	key, ok := view.ParseSortKey(q.Get("sort"))
	if !ok {
		respond.Error(w, r, http.StatusBadRequest, "unknown sort key")
		return
	}
	st.Sort.Key = key
	if view.Direction(q.Get("dir")) == view.Desc {
		st.Sort.Direction = view.Desc
	}
	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			respond.Error(w, r, http.StatusBadRequest, "invalid page")
			return
		}
		st.Page = n
	}

	respond.JSON(w, r, http.StatusOK, h.board.Query(st))
}

func (h *BoardHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.board.Edit(id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot().Editor)
}

func (h *BoardHandler) Toggle(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	status, err := h.board.ToggleStatus(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, map[string]int64{"id": id, "status": int64(status)})
}

func (h *BoardHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	if err := h.board.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) View(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

func (h *BoardHandler) Search(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Term string `json:"term"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	h.board.SetSearch(req.Term)
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

func (h *BoardHandler) Sort(w http.ResponseWriter, r *http.Request) {
	key, ok := view.ParseSortKey(chi.URLParam(r, "key"))
	if !ok || key == view.SortNone {
		respond.Error(w, r, http.StatusBadRequest, "unknown sort key")
		return
	}
	h.board.ToggleSort(key)
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

// SetSort picks key and direction explicitly: {"key": "date", "direction": "desc"}.
// An empty key clears sorting.
func (h *BoardHandler) SetSort(w http.ResponseWriter, r *http.Request) {
	var req view.Sort
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	key, ok := view.ParseSortKey(string(req.Key))
	if !ok {
		respond.Error(w, r, http.StatusBadRequest, "unknown sort key")
		return
	}
	switch req.Direction {
	case view.Asc, view.Desc:
	case "":
		req.Direction = view.Asc
	default:
		respond.Error(w, r, http.StatusBadRequest, "unknown sort direction")
		return
	}
	h.board.SetSort(view.Sort{Key: key, Direction: req.Direction})
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

func (h *BoardHandler) Page(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Page int `json:"page"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	h.board.SetPage(req.Page)
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

func (h *BoardHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	if _, err := h.board.Navigate(chi.URLParam(r, "nav")); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.View())
}

func (h *BoardHandler) Editor(w http.ResponseWriter, r *http.Request) {
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot().Editor)
}

func (h *BoardHandler) ReplaceDraft(w http.ResponseWriter, r *http.Request) {
	var req model.Task
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.board.SetDraft(req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot().Editor)
}

// PatchDraft sets individual form fields: {"task": "...", "date": "..."}.
func (h *BoardHandler) PatchDraft(w http.ResponseWriter, r *http.Request) {
	var req map[string]string
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}
	if err := h.board.SetFields(req); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot().Editor)
}

func (h *BoardHandler) Submit(w http.ResponseWriter, r *http.Request) {
	errs, err := h.board.Submit(r.Context())
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	if !errs.OK() {
		respond.Fields(w, r, http.StatusUnprocessableEntity, "validation error", errs)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot())
}

func (h *BoardHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if err := h.board.Cancel(); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, h.board.Snapshot().Editor)
}

func (h *BoardHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrUnknownTask), errors.Is(err, gateway.ErrNotFound):
		respond.Error(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, editor.ErrNotEditing):
		respond.Error(w, r, http.StatusConflict, "not editing")
	case errors.Is(err, editor.ErrUnknownField), errors.Is(err, editor.ErrInvalidValue),
		errors.Is(err, service.ErrBadPage),
		errors.Is(err, gateway.ErrInvalidStatus), errors.Is(err, gateway.ErrInvalidTaskType):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, gateway.ErrRemote):
		respond.Error(w, r, http.StatusBadGateway, h.board.Banner())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		respond.Error(w, r, http.StatusGatewayTimeout, "request cancelled")
	default:
		h.logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}
