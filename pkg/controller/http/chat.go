package http

import (
	"net/http"

	"github.com/secmon-lab/healthbot/pkg/domain/model"
)

type messageRequest struct {
	Message string `json:"message"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request, id model.PatientID) {
	var req messageRequest
	if err := decodeJSON(r, &req); err != nil {
		handleError(w, r, err)
		return
	}

	result, err := s.uc.Chat.HandleMessage(r.Context(), id, req.Message)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, result)
}

func (s *Server) postMessageHandler(w http.ResponseWriter, r *http.Request) {
	s.handleMessage(w, r, patientID(r))
}

func (s *Server) getChatHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := s.uc.Patient.First(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}

	turns, err := s.uc.Patient.Messages(r.Context(), patient.ID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]any{
		"patient":  patient,
		"messages": turns,
	})
}

func (s *Server) postChatHandler(w http.ResponseWriter, r *http.Request) {
	patient, err := s.uc.Patient.First(r.Context())
	if err != nil {
		handleError(w, r, err)
		return
	}
	s.handleMessage(w, r, patient.ID)
}
