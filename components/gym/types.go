package gym

import (
	"time"
)

// Membership statuses reported by the backend.
const (
	StatusActive   = "Active"
	StatusExpired  = "Expired"
	StatusOnHold   = "On Hold"
	StatusInactive = "Inactive"
)

// Payment statuses.
const (
	PaymentPaid    = "Paid"
	PaymentPending = "Pending"
	PaymentPartial = "Partial"
	PaymentFailed  = "Failed"
)

// Attendance types.
const (
	AttendanceManual    = "Manual"
	AttendanceBiometric = "Biometric"
)

// Plan duration units.
const (
	UnitDays   = "days"
	UnitMonths = "months"
)

// AccessTypes lists the capability tags a plan may grant.
var AccessTypes = []string{"Gym", "Classes", "Personal Training", "Spa", "Swimming"}

// Specializations lists the trainer specialization tags offered by the backend.
var Specializations = []string{
	"Yoga",
	"Cardio",
	"Strength Training",
	"CrossFit",
	"Pilates",
	"Zumba",
	"Martial Arts",
	"Swimming",
	"Personal Training",
}

// Address is the postal address attached to a member.
type Address struct {
	Street  string `json:"street"`
	City    string `json:"city"`
	State   string `json:"state"`
	ZipCode string `json:"zipCode"`
}

// Member is a gym member as returned by the backend.
type Member struct {
	ID               string       `json:"_id"`
	MemberID         string       `json:"memberId"`
	FullName         string       `json:"fullName"`
	Gender           string       `json:"gender,omitempty"`
	Phone            string       `json:"phone,omitempty"`
	Email            string       `json:"email,omitempty"`
	DateOfBirth      time.Time    `json:"dateOfBirth"`
	Address          *Address     `json:"address,omitempty"`
	MembershipStatus string       `json:"membershipStatus"`
	JoinDate         time.Time    `json:"joinDate"`
	PlanStartDate    *time.Time   `json:"planStartDate,omitempty"`
	PlanEndDate      *time.Time   `json:"planEndDate,omitempty"`
	CurrentPlan      Ref[Plan]    `json:"currentPlan"`
	AssignedTrainer  Ref[Trainer] `json:"assignedTrainer"`
}

// EntityID implements Identified.
func (m Member) EntityID() string { return m.ID }

// IsActive reports whether the membership is currently active.
func (m Member) IsActive() bool {
	return m.MembershipStatus == StatusActive
}

// MemberSummary is the trimmed member document embedded in other entities.
type MemberSummary struct {
	ID               string `json:"_id"`
	MemberID         string `json:"memberId"`
	FullName         string `json:"fullName"`
	Phone            string `json:"phone,omitempty"`
	MembershipStatus string `json:"membershipStatus,omitempty"`
}

// EntityID implements Identified.
func (m MemberSummary) EntityID() string { return m.ID }

// PlanDuration is the length of a plan.
type PlanDuration struct {
	Value int    `json:"value"`
	Unit  string `json:"unit"`
}

// Plan is a membership plan.
type Plan struct {
	ID          string       `json:"_id"`
	PlanName    string       `json:"planName"`
	Price       float64      `json:"price"`
	Duration    PlanDuration `json:"duration"`
	AccessType  []string     `json:"accessType"`
	Description string       `json:"description,omitempty"`
	Features    []string     `json:"features,omitempty"`
	IsActive    bool         `json:"isActive"`
}

// EntityID implements Identified.
func (p Plan) EntityID() string { return p.ID }

// Trainer is a gym trainer.
type Trainer struct {
	ID              string               `json:"_id"`
	TrainerID       string               `json:"trainerId,omitempty"`
	FullName        string               `json:"fullName"`
	Gender          string               `json:"gender,omitempty"`
	Phone           string               `json:"phone,omitempty"`
	Email           string               `json:"email,omitempty"`
	Specialization  []string             `json:"specialization"`
	Experience      int                  `json:"experience"`
	Price           float64              `json:"price"`
	Salary          float64              `json:"salary,omitempty"`
	IsActive        bool                 `json:"isActive"`
	AssignedMembers []Ref[MemberSummary] `json:"assignedMembers,omitempty"`
}

// EntityID implements Identified.
func (t Trainer) EntityID() string { return t.ID }

// AttendanceRecord is a single check-in. A nil CheckOutTime means the member
// is still in the gym.
type AttendanceRecord struct {
	ID             string             `json:"_id"`
	Member         Ref[MemberSummary] `json:"member"`
	Date           time.Time          `json:"date"`
	CheckInTime    time.Time          `json:"checkInTime"`
	CheckOutTime   *time.Time         `json:"checkOutTime"`
	AttendanceType string             `json:"attendanceType"`
	Status         string             `json:"status,omitempty"`
}

// CheckedOut reports whether the record has a check-out time.
func (a AttendanceRecord) CheckedOut() bool {
	return a.CheckOutTime != nil && !a.CheckOutTime.IsZero()
}

// Payment is a recorded payment.
type Payment struct {
	ID            string             `json:"_id"`
	Member        Ref[MemberSummary] `json:"member"`
	Plan          Ref[Plan]          `json:"plan"`
	FinalAmount   float64            `json:"finalAmount"`
	PaymentStatus string             `json:"paymentStatus"`
	PaymentMethod string             `json:"paymentMethod,omitempty"`
	PaymentDate   time.Time          `json:"paymentDate"`
	ReceiptNumber string             `json:"receiptNumber,omitempty"`
}

// MemberDetails is the member profile payload with history.
type MemberDetails struct {
	Member            Member             `json:"member"`
	AttendanceHistory []AttendanceRecord `json:"attendanceHistory"`
	PaymentHistory    []Payment          `json:"paymentHistory"`
}

// MemberQuery filters member listings.
type MemberQuery struct {
	Status string
	Search string
	Limit  int
}

// CheckInRequest records a member entering the gym.
type CheckInRequest struct {
	MemberID       string `json:"memberId"`
	AttendanceType string `json:"attendanceType"`
}

// DashboardSummary mirrors the backend's /dashboard/stats payload.
type DashboardSummary struct {
	Members struct {
		Total  int `json:"total"`
		Active int `json:"active"`
	} `json:"members"`
	Attendance struct {
		Today int `json:"today"`
	} `json:"attendance"`
	Revenue struct {
		Monthly float64 `json:"monthly"`
	} `json:"revenue"`
	Alerts struct {
		ExpiringMemberships int `json:"expiringMemberships"`
	} `json:"alerts"`
	RecentMembers    []Member           `json:"recentMembers"`
	PlanDistribution []PlanDistribution `json:"planDistribution"`
	PendingPayments  []Payment          `json:"pendingPayments,omitempty"`
}

// User is the authenticated staff account.
type User struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     string `json:"role,omitempty"`
}

// Credentials are posted to the login endpoint.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// LoginResult is returned by a successful login.
type LoginResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
