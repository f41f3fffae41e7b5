package leave

import "time"

type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	StatusRejected Status = "REJECTED"
)

const DefaultReason = "Not provided"

// Leave is a request to be away for an inclusive range of calendar days.
type Leave struct {
	ID         string
	StaffID    string
	CompanyID  string
	StartDate  time.Time
	EndDate    time.Time
	Reason     string
	Status     Status
	ReviewedBy *string
	ReviewedAt *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Covers reports whether day ("YYYY-MM-DD") falls within the leave range.
func (l Leave) Covers(day string) bool {
	return l.StartDate.Format("2006-01-02") <= day && day <= l.EndDate.Format("2006-01-02")
}
