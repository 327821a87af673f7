package directory

import (
	"fmt"

	"github.com/brianvoe/gofakeit/v7"
)

// SeedPatients is the fixed demo roster of Clínica Visión Clara.
func SeedPatients() []Patient {
	return []Patient{
		{
			RUT:   "12345678-9",
			Name:  "Juan Pérez",
			Email: "juan.perez@email.com",
			Phone: "+56912345678",
			History: []Visit{
				{
					Date:      "2025-11-15",
					VisitType: "Control de rutina",
					Diagnosis: "Miopía leve (-1.5)",
					Doctor:    "Dra. María González",
				},
				{
					Date:      "2025-10-10",
					VisitType: "Examen de vista",
					Diagnosis: "Visión normal",
					Doctor:    "Dr. Carlos Soto",
				},
			},
		},
		{
			RUT:   "98765432-1",
			Name:  "Ana Silva",
			Email: "ana.silva@email.com",
			Phone: "+56987654321",
			History: []Visit{
				{
					Date:      "2025-12-01",
					VisitType: "Examen de fondo de ojo",
					Diagnosis: "Normal",
					Doctor:    "Dra. María González",
				},
			},
		},
	}
}

func SeedDoctors() []Doctor {
	return []Doctor{
		{ID: 1, Name: "Dra. María González", Specialty: "Oftalmología General"},
		{ID: 2, Name: "Dr. Carlos Soto", Specialty: "Cirugía Refractiva"},
		{ID: 3, Name: "Dra. Patricia Rojas", Specialty: "Retina y Vítreo"},
	}
}

// Seed builds the directory with the fixed demo data plus count generated
// patients. Generated patients have empty histories; they exist so load
// runs have more RUTs to book with than the two demo patients.
func Seed(synthetic int) *Directory {
	patients := SeedPatients()
	for i := 0; i < synthetic; i++ {
		patients = append(patients, syntheticPatient(i))
	}
	return New(patients, SeedDoctors())
}

func syntheticPatient(n int) Patient {
	// RUTs here only need to be unique and well-formed, not valid
	// check-digit RUTs.
	body := 20000000 + n
	return Patient{
		RUT:   fmt.Sprintf("%d-%d", body, gofakeit.Number(0, 9)),
		Name:  gofakeit.Name(),
		Email: gofakeit.Email(),
		Phone: fmt.Sprintf("+569%08d", gofakeit.Number(0, 99999999)),
	}
}
