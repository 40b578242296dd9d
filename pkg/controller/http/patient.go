package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

func patientID(r *http.Request) model.PatientID {
	return model.PatientID(chi.URLParam(r, "patientID"))
}

func (s *Server) listPatientsHandler(w http.ResponseWriter, r *http.Request) {
	patients, err := s.uc.Patient.List(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"patients": patients})
}

func (s *Server) putPatientHandler(w http.ResponseWriter, r *http.Request) {
	var patient model.Patient
	if err := decodeJSON(r, &patient); err != nil {
		handleError(w, r, err)
		return
	}

	stored, err := s.uc.Patient.Put(r.Context(), &patient)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, stored)
}

func (s *Server) getPatientHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := s.uc.Patient.Get(r.Context(), patientID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, patient)
}

func (s *Server) listMessagesHandler(w http.ResponseWriter, r *http.Request) {
	turns, err := s.uc.Patient.Messages(r.Context(), patientID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"messages": turns})
}

func (s *Server) listRequestsHandler(w http.ResponseWriter, r *http.Request) {
	requests, err := s.uc.Patient.Requests(r.Context(), patientID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{"requests": requests})
}

func (s *Server) knowledgeHandler(w http.ResponseWriter, r *http.Request) {
	knowledge, err := s.uc.Patient.Knowledge(r.Context(), patientID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"patient_name": knowledge.PatientName,
		"profile":      knowledge.Profile,
		"entities":     knowledge.Entities,
		"text":         knowledge.Format(),
	})
}

func (s *Server) summaryHandler(w http.ResponseWriter, r *http.Request) {
	summary, err := s.uc.Patient.Summary(r.Context(), patientID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, summary)
}
