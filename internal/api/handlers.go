package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/visionclara/clinic-scheduling/internal/directory"
	"github.com/visionclara/clinic-scheduling/internal/scheduling"
)

// The UI asserts on these strings, substring-wise, so they must stay
// exactly as the original system wrote them.
const (
	msgBooked          = "Cita agendada exitosamente"
	msgCancelled       = "Cita cancelada exitosamente"
	msgCleared         = "Todas las citas han sido eliminadas"
	msgUnknownPatient  = "Paciente no registrado en el sistema"
	msgUnknownDoctor   = "Doctor no encontrado"
	msgInvalidDate     = "Formato de fecha inválido (usar YYYY-MM-DD)"
	msgPastDate        = "La fecha de la cita debe ser futura"
	msgPatientConflict = "Ya existe una cita para este paciente en esta fecha y hora"
	msgDoctorConflict  = "El doctor ya tiene una cita agendada en este horario"
	msgApptNotFound    = "Cita no encontrada"
	msgPatientNotFound = "Paciente no encontrado"
	msgInvalidBody     = "Solicitud inválida"
	msgInvalidApptID   = "Identificador de cita inválido"
	msgScheduleBusy    = "El sistema está procesando otra reserva, intente nuevamente"
	msgInternalError   = "Error interno del sistema"
	stateOperational   = "Operativo"
)

func getPatientHandler(dir *directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rut := chi.URLParam(r, "rut")
		p, ok := dir.Patient(rut)
		if !ok {
			writeError(w, http.StatusNotFound, msgPatientNotFound)
			return
		}
		writeJSON(w, http.StatusOK, p)
	}
}

func listDoctorsHandler(dir *directory.Directory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, dir.Doctors())
	}
}

func listAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appts, err := svc.List(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func listPatientAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rut := chi.URLParam(r, "rut")
		appts, err := svc.ListByPatient(r.Context(), rut)
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponses(appts))
	}
}

func bookAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidBody)
			return
		}

		appt, err := svc.Book(r.Context(), scheduling.BookingRequest{
			PatientRUT: req.PatientRUT,
			DoctorID:   string(req.DoctorID),
			Date:       req.Date,
			Hour:       req.Hour,
			VisitType:  req.VisitType,
		})
		if err != nil {
			handleBookError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, BookAppointmentResponse{
			Success: true,
			Message: msgBooked,
			Cita:    toAppointmentResponse(*appt),
		})
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	var missing *scheduling.MissingFieldError
	switch {
	case errors.As(err, &missing):
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Campo requerido: %s", missing.Field))
	case errors.Is(err, scheduling.ErrUnknownPatient):
		writeError(w, http.StatusBadRequest, msgUnknownPatient)
	case errors.Is(err, scheduling.ErrUnknownDoctor):
		writeError(w, http.StatusBadRequest, msgUnknownDoctor)
	case errors.Is(err, scheduling.ErrInvalidDate):
		writeError(w, http.StatusBadRequest, msgInvalidDate)
	case errors.Is(err, scheduling.ErrPastDate):
		writeError(w, http.StatusBadRequest, msgPastDate)
	case errors.Is(err, scheduling.ErrPatientSlotTaken):
		writeError(w, http.StatusBadRequest, msgPatientConflict)
	case errors.Is(err, scheduling.ErrDoctorSlotTaken):
		writeError(w, http.StatusBadRequest, msgDoctorConflict)
	case errors.Is(err, scheduling.ErrScheduleBusy):
		writeError(w, http.StatusConflict, msgScheduleBusy)
	default:
		writeError(w, http.StatusInternalServerError, msgInternalError)
	}
}

func cancelAppointmentHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := strconv.Atoi(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, msgInvalidApptID)
			return
		}

		if err := svc.Cancel(r.Context(), id); err != nil {
			if errors.Is(err, scheduling.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, msgApptNotFound)
				return
			}
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgCancelled})
	}
}

func resetAppointmentsHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Reset(r.Context()); err != nil {
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}
		writeJSON(w, http.StatusOK, MessageResponse{Success: true, Message: msgCleared})
	}
}

func statusHandler(svc *scheduling.Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap, err := svc.Status(r.Context())
		if err != nil {
			writeError(w, http.StatusInternalServerError, msgInternalError)
			return
		}

		state := stateOperational
		if !snap.Operational {
			state = "Degradado"
		}
		writeJSON(w, http.StatusOK, StatusResponse{
			State:              state,
			RegisteredPatients: snap.PatientCount,
			AvailableDoctors:   snap.DoctorCount,
			BookedAppointments: snap.AppointmentCount,
			Timestamp:          snap.GeneratedAt.Format(createdAtLayout),
		})
	}
}
