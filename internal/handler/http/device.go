package http

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/device"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

type LocalDeviceHandler interface {
	Pair(w http.ResponseWriter, r *http.Request)
	List(w http.ResponseWriter, r *http.Request)
	Unpair(w http.ResponseWriter, r *http.Request)
}

type localDeviceHandlerImpl struct {
	deviceService device.LocalDeviceService
}

func NewLocalDeviceHandler(deviceService device.LocalDeviceService) LocalDeviceHandler {
	return &localDeviceHandlerImpl{
		deviceService: deviceService,
	}
}

// Pair implements LocalDeviceHandler.
func (h *localDeviceHandlerImpl) Pair(w http.ResponseWriter, r *http.Request) {
	var req device.PairDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request format", nil)
		return
	}

	d, err := h.deviceService.PairDevice(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Created(w, "Device paired", d)
}

// List implements LocalDeviceHandler.
func (h *localDeviceHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	devices, err := h.deviceService.ListDevices(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, devices)
}

// Unpair implements LocalDeviceHandler.
func (h *localDeviceHandlerImpl) Unpair(w http.ResponseWriter, r *http.Request) {
	err := h.deviceService.UnpairDevice(r.Context(), chi.URLParam(r, "id"), chi.URLParam(r, "deviceId"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.SuccessWithMessage(w, "Device unpaired", nil)
}
