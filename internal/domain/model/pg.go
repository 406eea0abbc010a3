package model

type PgStatus string

const (
	PgStatusActive   PgStatus = "ACTIVE"
	PgStatusInactive PgStatus = "INACTIVE"
	// PgStatusKept allows existing payment methods to keep paying but forbids new registrations.
	PgStatusKept PgStatus = "KEPT"
)

const PgNameKCP = "KCP"

// Pg is a payment gateway provider record.
type Pg struct {
	ID     int64
	Name   string
	Status PgStatus
}

func (p *Pg) IsPayable() bool {
	return p != nil && (p.Status == PgStatusActive || p.Status == PgStatusKept)
}

func (p *Pg) AcceptsRegistration() bool { return p != nil && p.Status == PgStatusActive }

// CardIssuer is static reference data scoped to a PG.
type CardIssuer struct {
	ID           int64
	PgID         int64
	Code         string
	Name         string
	Color        string
	LogoImageURL string
}
