package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/register"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

type RegisterHandler interface {
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
}

type registerHandlerImpl struct {
	registerService register.RegisterService
}

func NewRegisterHandler(registerService register.RegisterService) RegisterHandler {
	return &registerHandlerImpl{
		registerService: registerService,
	}
}

// Create implements RegisterHandler.
func (h *registerHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	var req register.UpsertRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	reg, err := h.registerService.CreateRegister(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Register created", reg)
}

// Update implements RegisterHandler.
func (h *registerHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req register.UpsertRegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	reg, err := h.registerService.UpdateRegister(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, reg)
}

// Get implements RegisterHandler.
func (h *registerHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	reg, err := h.registerService.GetRegister(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, reg)
}

// List implements RegisterHandler.
func (h *registerHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	regs, err := h.registerService.ListRegisters(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, regs)
}
