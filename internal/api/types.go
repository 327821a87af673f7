package api

import (
	"encoding/json"

	"github.com/visionclara/clinic-scheduling/internal/scheduling"
)

// flexString decodes both a JSON string and a JSON number into a string.
// The booking form posts doctor_id as a string, but API clients tend to
// send the raw integer.
type flexString string

func (f *flexString) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*f = ""
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type BookAppointmentRequest struct {
	PatientRUT string     `json:"rut_paciente"`
	DoctorID   flexString `json:"doctor_id"`
	Date       string     `json:"fecha"`
	Hour       string     `json:"hora"`
	VisitType  string     `json:"tipo_consulta"`
}

// createdAtLayout is how fecha_creacion is rendered, second precision.
const createdAtLayout = "2006-01-02 15:04:05"

type AppointmentResponse struct {
	ID          int    `json:"id"`
	PatientRUT  string `json:"rut_paciente"`
	PatientName string `json:"nombre_paciente"`
	DoctorID    int    `json:"doctor_id"`
	DoctorName  string `json:"nombre_doctor"`
	Date        string `json:"fecha"`
	Hour        string `json:"hora"`
	VisitType   string `json:"tipo_consulta"`
	Status      string `json:"estado"`
	CreatedAt   string `json:"fecha_creacion"`
}

func toAppointmentResponse(a scheduling.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:          a.ID,
		PatientRUT:  a.PatientRUT,
		PatientName: a.PatientName,
		DoctorID:    a.DoctorID,
		DoctorName:  a.DoctorName,
		Date:        a.Date,
		Hour:        a.Hour,
		VisitType:   a.VisitType,
		Status:      string(a.Status),
		CreatedAt:   a.CreatedAt.Format(createdAtLayout),
	}
}

func toAppointmentResponses(appts []scheduling.Appointment) []AppointmentResponse {
	out := make([]AppointmentResponse, 0, len(appts))
	for _, a := range appts {
		out = append(out, toAppointmentResponse(a))
	}
	return out
}

type BookAppointmentResponse struct {
	Success bool                `json:"success"`
	Message string              `json:"mensaje"`
	Cita    AppointmentResponse `json:"cita"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"mensaje"`
}

type StatusResponse struct {
	State              string `json:"estado"`
	RegisteredPatients int    `json:"pacientes_registrados"`
	AvailableDoctors   int    `json:"doctores_disponibles"`
	BookedAppointments int    `json:"citas_agendadas"`
	Timestamp          string `json:"timestamp"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}
