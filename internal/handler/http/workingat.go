package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/workingat"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

type WorkingAtHandler interface {
	Assign(w http.ResponseWriter, r *http.Request)
	UpdateShifts(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListByRegister(w http.ResponseWriter, r *http.Request)
}

type workingAtHandlerImpl struct {
	workingAtService workingat.WorkingAtService
}

func NewWorkingAtHandler(workingAtService workingat.WorkingAtService) WorkingAtHandler {
	return &workingAtHandlerImpl{
		workingAtService: workingAtService,
	}
}

// Assign implements WorkingAtHandler.
func (h *workingAtHandlerImpl) Assign(w http.ResponseWriter, r *http.Request) {
	var req workingat.AssignEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	wa, err := h.workingAtService.AssignEmployee(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Employee assigned", wa)
}

// UpdateShifts implements WorkingAtHandler.
func (h *workingAtHandlerImpl) UpdateShifts(w http.ResponseWriter, r *http.Request) {
	var req workingat.UpdateShiftsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	wa, err := h.workingAtService.UpdateShifts(r.Context(), chi.URLParam(r, "workingAtId"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, wa)
}

// Get implements WorkingAtHandler.
func (h *workingAtHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	wa, err := h.workingAtService.GetWorkingAt(r.Context(), chi.URLParam(r, "workingAtId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, wa)
}

// ListByRegister implements WorkingAtHandler.
func (h *workingAtHandlerImpl) ListByRegister(w http.ResponseWriter, r *http.Request) {
	relations, err := h.workingAtService.ListByRegister(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, relations)
}
