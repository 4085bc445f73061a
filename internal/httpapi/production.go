package httpapi

import (
	"net/http"

	"codeberg.org/mutker/producflow/internal/domain"
)

func (s *Server) productionMetrics(w http.ResponseWriter, r *http.Request) {
	asOf, err := dateParam(r, "as_of", s.now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	m, err := s.reporter.ProductionMetrics(r.Context(), asOf)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m)
}

// dashboardSummary also refreshes the equipment_status gauges.
func (s *Server) dashboardSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := s.reporter.DashboardSummary(r.Context())
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.metrics.SetEquipmentStatus(map[domain.EquipmentStatus]int{
		domain.EquipmentOperational: summary.EquipmentOperational,
		domain.EquipmentWarning:     summary.EquipmentWarning,
		domain.EquipmentCritical:    summary.EquipmentCritical,
		domain.EquipmentMaintenance: summary.EquipmentMaintenance,
	})

	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) listProductionRecords(w http.ResponseWriter, r *http.Request) {
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
	shift, err := shiftParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	records, err := s.store.ProductionRecords(r.Context(), domain.ProductionFilter{
		EquipmentID: equipmentID,
		Shift:       shift,
		Skip:        skip,
		Limit:       limit,
		NewestFirst: true,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}

func (s *Server) getProductionRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.store.GetProductionRecord(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) createProductionRecord(w http.ResponseWriter, r *http.Request) {
	var in domain.ProductionRecordCreate
	if err := decodeJSON(r, &in); err != nil {
		s.writeError(w, r, err)
		return
	}
	if err := in.Validate(); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.store.CreateProductionRecord(r.Context(), in.Build(s.now().UTC()))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context())

	writeJSON(w, http.StatusOK, rec)
}

// updateProductionRecord applies a partial update; omitted fields keep
// their stored values.
func (s *Server) updateProductionRecord(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	var upd domain.ProductionRecordUpdate
	if err := decodeJSON(r, &upd); err != nil {
		s.writeError(w, r, err)
		return
	}

	rec, err := s.store.UpdateProductionRecord(r.Context(), id, upd)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.invalidate(r.Context())

	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) shiftSummaries(w http.ResponseWriter, r *http.Request) {
	date, err := dateParam(r, "date", s.now().UTC())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	shift, err := shiftParam(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	summaries, err := s.reporter.ShiftSummaries(r.Context(), date, shift)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func shiftParam(r *http.Request) (*domain.Shift, error) {
	raw := r.URL.Query().Get("shift")
	if raw == "" {
		return nil, nil
	}
	shift, err := domain.ParseShift(raw)
	if err != nil {
		return nil, err
	}
	return &shift, nil
}
