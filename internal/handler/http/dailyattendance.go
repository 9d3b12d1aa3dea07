package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/attendly/attendance-backend-go/internal/domain/dailyattendance"
	"github.com/attendly/attendance-backend-go/internal/handler/http/response"
)

type DailyAttendanceHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
}

type dailyAttendanceHandlerImpl struct {
	dailyService dailyattendance.DailyAttendanceService
}

func NewDailyAttendanceHandler(dailyService dailyattendance.DailyAttendanceService) DailyAttendanceHandler {
	return &dailyAttendanceHandlerImpl{
		dailyService: dailyService,
	}
}

// Get implements DailyAttendanceHandler. The date is a YYYYMMDD path segment;
// an absent rollup is created lazily.
func (h *dailyAttendanceHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	date, err := strconv.Atoi(chi.URLParam(r, "date"))
	if err != nil || date < 19000101 || date > 99991231 {
		response.BadRequest(w, "date must be a YYYYMMDD integer", nil)
		return
	}

	daily, err := h.dailyService.GetDaily(r.Context(), chi.URLParam(r, "id"), date)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, daily.ToResponse())
}
