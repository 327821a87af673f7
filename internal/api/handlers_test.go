package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/visionclara/clinic-scheduling/internal/directory"
	"github.com/visionclara/clinic-scheduling/internal/scheduling"
)

func newTestRouter() http.Handler {
	dir := directory.Seed(0)
	svc := scheduling.NewService(dir, scheduling.NewMemoryStore(), nil)
	return NewRouter(RouterConfig{
		Service:   svc,
		Directory: dir,
		Logger:    zerolog.Nop(),
		Env:       "test",
		Version:   "test",
	})
}

func doJSON(t *testing.T, router http.Handler, method, path string, payload any) *httptest.ResponseRecorder {
	t.Helper()

	var body *bytes.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		require.NoError(t, err)
		body = bytes.NewReader(data)
	} else {
		body = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func tomorrow() string {
	return time.Now().AddDate(0, 0, 1).Format(scheduling.DateLayout)
}

func validBooking() map[string]any {
	return map[string]any{
		"rut_paciente":  "12345678-9",
		"doctor_id":     "1",
		"fecha":         tomorrow(),
		"hora":          "10:30",
		"tipo_consulta": "Control de rutina",
	}
}

func TestBookEndpoint_Success(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BookAppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.True(t, resp.Success)
	assert.Contains(t, resp.Message, "exitosamente")
	assert.Equal(t, 1, resp.Cita.ID)
	assert.Equal(t, "Juan Pérez", resp.Cita.PatientName)
	assert.Equal(t, "Dra. María González", resp.Cita.DoctorName)
	assert.Equal(t, "Agendada", resp.Cita.Status)
}

func TestBookEndpoint_NumericDoctorID(t *testing.T) {
	router := newTestRouter()

	payload := validBooking()
	payload["doctor_id"] = 2
	rec := doJSON(t, router, http.MethodPost, "/api/agendar", payload)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp BookAppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Cita.DoctorID)
	assert.Equal(t, "Dr. Carlos Soto", resp.Cita.DoctorName)
}

func TestBookEndpoint_DuplicateSlot(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "existe")
}

func TestBookEndpoint_PastDate(t *testing.T) {
	router := newTestRouter()

	payload := validBooking()
	payload["fecha"] = "2020-01-01"
	rec := doJSON(t, router, http.MethodPost, "/api/agendar", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "futura")
}

func TestBookEndpoint_UnknownPatient(t *testing.T) {
	router := newTestRouter()

	payload := validBooking()
	payload["rut_paciente"] = "00000000-0"
	rec := doJSON(t, router, http.MethodPost, "/api/agendar", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Paciente no registrado en el sistema", resp.Error)
}

func TestBookEndpoint_MissingField(t *testing.T) {
	router := newTestRouter()

	payload := validBooking()
	delete(payload, "hora")
	rec := doJSON(t, router, http.MethodPost, "/api/agendar", payload)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Campo requerido: hora", resp.Error)
}

func TestBookEndpoint_MalformedBody(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/agendar", bytes.NewReader([]byte("{no es json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	var booked BookAppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/cancelar/%d", booked.Cita.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp MessageResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "cancelada exitosamente")
}

func TestCancelEndpoint_NotFound(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/cancelar/9999", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no encontrada")
}

func TestCancelEndpoint_InvalidID(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/cancelar/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCancelledSlotCanBeRebooked(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	var booked BookAppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &booked))

	rec = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/cancelar/%d", booked.Cita.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestResetEndpoint_Idempotent(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	for i := 0; i < 2; i++ {
		rec = doJSON(t, router, http.MethodPost, "/api/limpiar", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp MessageResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Contains(t, resp.Message, "eliminadas")
	}

	rec = doJSON(t, router, http.MethodGet, "/api/citas", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appts []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
	assert.Empty(t, appts)

	rec = doJSON(t, router, http.MethodGet, "/api/estado", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, 0, status.BookedAppointments)
}

func TestListByPatientEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodPost, "/api/agendar", validBooking())
	require.Equal(t, http.StatusOK, rec.Code)

	other := validBooking()
	other["rut_paciente"] = "98765432-1"
	other["hora"] = "11:00"
	rec = doJSON(t, router, http.MethodPost, "/api/agendar", other)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, router, http.MethodGet, "/api/citas/98765432-1", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var appts []AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &appts))
	require.Len(t, appts, 1)
	assert.Equal(t, "Ana Silva", appts[0].PatientName)
}

func TestPatientEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/paciente/12345678-9", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var p directory.Patient
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "Juan Pérez", p.Name)
	assert.Len(t, p.History, 2)
}

func TestPatientEndpoint_NotFound(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/paciente/00000000-0", nil)
	require.Equal(t, http.StatusNotFound, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Error, "no encontrado")
}

func TestDoctorsEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/doctores", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var docs []directory.Doctor
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &docs))
	require.Len(t, docs, 3)
	assert.Equal(t, "Dra. María González", docs[0].Name)
	assert.Equal(t, "Dra. Patricia Rojas", docs[2].Name)
}

func TestStatusEndpoint(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/estado", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var status StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, "Operativo", status.State)
	assert.Equal(t, 2, status.RegisteredPatients)
	assert.Equal(t, 3, status.AvailableDoctors)
	assert.NotEmpty(t, status.Timestamp)
}

func TestHealthEndpoints(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/health/live", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Memory mode: no postgres/redis to ping, readiness still ok.
	rec = doJSON(t, router, http.MethodGet, "/health/ready", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var ready ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &ready))
	assert.Equal(t, "ok", ready.Status)
	assert.Equal(t, "skipped", ready.Dependencies["postgres"])
}

func TestRequestIDHeader(t *testing.T) {
	router := newTestRouter()

	rec := doJSON(t, router, http.MethodGet, "/api/estado", nil)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/api/estado", nil)
	req.Header.Set("X-Request-ID", "fixed-id")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, "fixed-id", rec.Header().Get("X-Request-ID"))
}
