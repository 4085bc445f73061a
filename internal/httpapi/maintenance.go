package httpapi

import (
	"net/http"

	"codeberg.org/mutker/producflow/internal/domain"
)

// listAlerts serves active alerts, optionally narrowed to one priority.
func (s *Server) listAlerts(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := domain.AlertFilter{Status: domain.AlertActive, Skip: skip, Limit: limit}
	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := domain.AlertPriority(raw)
		if !priority.IsValid() {
			s.writeError(w, r, badRequest("invalid priority: "+raw))
			return
		}
		filter.Priority = &priority
	}

	alerts, err := s.store.Alerts(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *Server) createAlert(w http.ResponseWriter, r *http.Request) {
	var in domain.MaintenanceAlertCreate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	a, err := s.store.CreateAlert(r.Context(), in.Build(s.now().UTC()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context())

	writeJSON(w, http.StatusOK, a)
}

func (s *Server) listMaintenanceLogs(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	equipmentID, err := optionalID(r, "equipment_id")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := domain.LogFilter{EquipmentID: equipmentID, Skip: skip, Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.LogStatus(raw)
		if !status.IsValid() {
			s.writeError(w, r, badRequest("invalid status: "+raw))
			return
		}
		filter.Status = &status
	}

	logs, err := s.store.MaintenanceLogs(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, logs)
}

func (s *Server) getMaintenanceLog(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.store.GetMaintenanceLog(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *Server) createMaintenanceLog(w http.ResponseWriter, r *http.Request) {
	var in domain.MaintenanceLogCreate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.store.CreateMaintenanceLog(r.Context(), in.Build(s.now().UTC()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, l)
}

// updateMaintenanceLogStatus takes status and completed_date as query
// parameters. Completing a log without a date stamps the current time.
func (s *Server) updateMaintenanceLogStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	completed, err := optionalDate(r, "completed_date")
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	upd := domain.LogStatusUpdate{
		Status:        domain.LogStatus(r.URL.Query().Get("status")),
		CompletedDate: completed,
	}
	if err := upd.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	l, err := s.store.UpdateMaintenanceLogStatus(r.Context(), id, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"message":        "Status updated successfully",
		"status":         l.Status,
		"completed_date": l.CompletedDate,
	})
}
