package entity

// DoctorFilter is a domain-level filter for searching doctors.
// Used by repository layer to avoid coupling with delivery DTOs.
type DoctorFilter struct {
	Name           string // Filter by doctor full name (ILIKE)
	Specialization string // Filter by specialization (ILIKE)
	MinExperience  int    // Minimum experience years, 0 = no filter
}
