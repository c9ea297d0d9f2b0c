package domain

// Doctor is a directory entry used to enrich appointment listings.
type Doctor struct {
	ID        int64
	Name      string
	Specialty string
}
