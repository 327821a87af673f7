package scheduling

import (
	"context"
	"sync"
)

// MemoryStore is the default store: an in-process slice in creation
// order. All methods take the store lock, so individual calls are atomic
// with respect to each other.
type MemoryStore struct {
	mu    sync.Mutex
	appts []Appointment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Append(ctx context.Context, appt Appointment) (Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt.ID = len(s.appts) + 1
	s.appts = append(s.appts, appt)
	return appt, nil
}

func (s *MemoryStore) List(ctx context.Context) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, len(s.appts))
	copy(out, s.appts)
	return out, nil
}

func (s *MemoryStore) ListByPatient(ctx context.Context, rut string) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Appointment, 0)
	for _, a := range s.appts {
		if a.PatientRUT == rut {
			out = append(out, a)
		}
	}
	return out, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.appts), nil
}

func (s *MemoryStore) SetStatus(ctx context.Context, id int, st Status) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.appts {
		if s.appts[i].ID == id {
			s.appts[i].Status = st
			return nil
		}
	}
	return ErrAppointmentNotFound
}

func (s *MemoryStore) Clear(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.appts = nil
	return nil
}

func (s *MemoryStore) HasPatientSlot(ctx context.Context, rut, date, hour string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appts {
		if a.Status == StatusScheduled && a.PatientRUT == rut && a.Date == date && a.Hour == hour {
			return true, nil
		}
	}
	return false, nil
}

func (s *MemoryStore) HasDoctorSlot(ctx context.Context, doctorID int, date, hour string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.appts {
		if a.Status == StatusScheduled && a.DoctorID == doctorID && a.Date == date && a.Hour == hour {
			return true, nil
		}
	}
	return false, nil
}
