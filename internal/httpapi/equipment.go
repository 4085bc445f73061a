package httpapi

import (
	"net/http"

	"codeberg.org/mutker/producflow/internal/domain"
)

func (s *Server) listEquipment(w http.ResponseWriter, r *http.Request) {
	skip, limit, err := pagination(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	filter := domain.EquipmentFilter{Skip: skip, Limit: limit}
	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.EquipmentStatus(raw)
		if !status.IsValid() {
			s.writeError(w, r, badRequest("invalid status: "+raw))
			return
		}
		filter.Status = &status
	}

	items, err := s.store.ListEquipment(r.Context(), filter)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

func (s *Server) getEquipment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.store.GetEquipment(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) createEquipment(w http.ResponseWriter, r *http.Request) {
	var in domain.EquipmentCreate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	e, err := s.store.CreateEquipment(r.Context(), in.Build(s.now().UTC()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context())

	writeJSON(w, http.StatusOK, e)
}

func (s *Server) listSensorReadings(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	limit, err := intParam(r.URL.Query().Get("limit"), "limit", defaultLimit)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if limit <= 0 {
		s.writeError(w, r, badRequest("limit must be positive"))
		return
	}

	readings, err := s.store.SensorReadings(r.Context(), id, min(limit, maxLimit))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, readings)
}

func (s *Server) createSensorReading(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var in domain.SensorReadingCreate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}

	reading, err := s.collector.Record(r.Context(), id, in)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reading)
}
