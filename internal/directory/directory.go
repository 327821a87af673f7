package directory

// Visit is one entry in a patient's clinical history.
type Visit struct {
	Date      string `json:"fecha"`
	VisitType string `json:"tipo"`
	Diagnosis string `json:"diagnostico"`
	Doctor    string `json:"doctor"`
}

type Patient struct {
	RUT     string  `json:"rut"`
	Name    string  `json:"nombre"`
	Email   string  `json:"email"`
	Phone   string  `json:"telefono"`
	History []Visit `json:"historial"`
}

type Doctor struct {
	ID        int    `json:"id"`
	Name      string `json:"nombre"`
	Specialty string `json:"especialidad"`
}

// Directory is the read-only reference data for patients and doctors.
// It is built once at startup and never mutated afterwards, so lookups
// need no locking.
type Directory struct {
	patients map[string]Patient
	doctors  []Doctor
	byDoctor map[int]Doctor
}

func New(patients []Patient, doctors []Doctor) *Directory {
	d := &Directory{
		patients: make(map[string]Patient, len(patients)),
		doctors:  make([]Doctor, 0, len(doctors)),
		byDoctor: make(map[int]Doctor, len(doctors)),
	}
	for _, p := range patients {
		d.patients[p.RUT] = p
	}
	for _, doc := range doctors {
		d.doctors = append(d.doctors, doc)
		d.byDoctor[doc.ID] = doc
	}
	return d
}

// Patient looks up a patient by RUT. Exact match only.
func (d *Directory) Patient(rut string) (Patient, bool) {
	p, ok := d.patients[rut]
	return p, ok
}

// Doctor looks up a doctor by its integer identifier.
func (d *Directory) Doctor(id int) (Doctor, bool) {
	doc, ok := d.byDoctor[id]
	return doc, ok
}

// Doctors returns all doctors in seed order.
func (d *Directory) Doctors() []Doctor {
	out := make([]Doctor, len(d.doctors))
	copy(out, d.doctors)
	return out
}

func (d *Directory) PatientCount() int { return len(d.patients) }

func (d *Directory) DoctorCount() int { return len(d.doctors) }
