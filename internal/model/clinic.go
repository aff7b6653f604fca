package model

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

const DefaultTimezone = "America/Sao_Paulo"

// Address is the structured postal address stored as a JSONB sub-document.
type Address struct {
	Street       string   `json:"street"`
	Number       string   `json:"number"`
	Complement   string   `json:"complement,omitempty"`
	Neighborhood string   `json:"neighborhood"`
	City         string   `json:"city"`
	State        string   `json:"state"`
	ZipCode      string   `json:"zip_code"`
	Country      string   `json:"country"`
	Latitude     *float64 `json:"latitude,omitempty"`
	Longitude    *float64 `json:"longitude,omitempty"`
}

func (a Address) Value() (driver.Value, error) { return json.Marshal(a) }
func (a *Address) Scan(src interface{}) error  { return scanJSON(src, a) }

// ClinicSettings holds operational toggles for a clinic.
type ClinicSettings struct {
	TelemedicineEnabled  bool   `json:"telemedicine_enabled"`
	OnlineBookingEnabled bool   `json:"online_booking_enabled"`
	SlotDurationMinutes  int    `json:"slot_duration_minutes,omitempty"`
	CancellationPolicy   string `json:"cancellation_policy,omitempty"`
	MaxAdvanceDays       int    `json:"max_advance_days,omitempty"`
}

func (s ClinicSettings) Value() (driver.Value, error) { return json.Marshal(s) }
func (s *ClinicSettings) Scan(src interface{}) error  { return scanJSON(src, s) }

// DaySchedule is an open/close interval for one weekday.
type DaySchedule struct {
	Open   string `json:"open"`
	Close  string `json:"close"`
	Closed bool   `json:"closed,omitempty"`
}

// WorkingHours maps lowercase weekday names to schedules.
type WorkingHours map[string]DaySchedule

func (h WorkingHours) Value() (driver.Value, error) {
	if h == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(h)
}

func (h *WorkingHours) Scan(src interface{}) error { return scanJSON(src, h) }

// Clinic is the legal identity of a care-providing business unit.
type Clinic struct {
	Base
	LegalName    string         `db:"legal_name" json:"legal_name"`
	TradeName    string         `db:"trade_name" json:"trade_name"`
	CNPJ         string         `db:"cnpj" json:"cnpj"`
	CNES         *string        `db:"cnes" json:"cnes,omitempty"`
	Email        string         `db:"email" json:"email"`
	Phone        string         `db:"phone" json:"phone"`
	Website      *string        `db:"website" json:"website,omitempty"`
	Address      Address        `db:"address" json:"address"`
	Settings     ClinicSettings `db:"settings" json:"settings"`
	WorkingHours WorkingHours   `db:"working_hours" json:"working_hours"`
	LogoURL      *string        `db:"logo_url" json:"logo_url,omitempty"`
	BrandColor   *string        `db:"brand_color" json:"brand_color,omitempty"`
	Timezone     string         `db:"timezone" json:"timezone"`
	Active       bool           `db:"active" json:"active"`
}

// ClinicCounts is the denormalized membership/appointment summary returned
// with listings and detail views.
type ClinicCounts struct {
	Doctors      int64 `db:"doctor_count" json:"doctors"`
	Patients     int64 `db:"patient_count" json:"patients"`
	Employees    int64 `db:"employee_count" json:"employees"`
	Appointments int64 `db:"appointment_count" json:"appointments"`
	Rooms        int64 `db:"room_count" json:"rooms"`
}

// ClinicSummary is a clinic row with counts and its active rooms, as
// returned by listings.
type ClinicSummary struct {
	Clinic
	Counts ClinicCounts `json:"counts"`
	Rooms  []*Room      `json:"rooms"`
}

// ClinicDetail is the full read model served by Get: the clinic plus its
// doctor memberships, rooms, and counts.
type ClinicDetail struct {
	Clinic
	Counts  ClinicCounts          `json:"counts"`
	Doctors []*ClinicDoctorDetail `json:"doctors"`
	Rooms   []*Room               `json:"rooms"`
}

// ClinicFilter is the typed query specification for listings. Optional
// fields are pointers; nil means "not filtered".
type ClinicFilter struct {
	Pagination
	Search           string   `form:"search"`
	City             string   `form:"city"`
	State            string   `form:"state"`
	Active           *bool    `form:"active"`
	HasTelemedicine  *bool    `form:"hasTelemedicine"`
	HasOnlineBooking *bool    `form:"hasOnlineBooking"`
	SortBy           string   `form:"sortBy"`
	SortOrder        string   `form:"sortOrder"`
	IncludeDeleted   bool     `form:"includeDeleted"`
	Latitude         *float64 `form:"lat"`
	Longitude        *float64 `form:"lng"`
	RadiusKm         *float64 `form:"radius"`
}

// ClinicStats aggregates appointment and membership figures over a date
// range. Only metrics actually computed from rows are included.
type ClinicStats struct {
	TotalAppointments        int64     `db:"total_appointments" json:"total_appointments"`
	CompletedAppointments    int64     `db:"completed_appointments" json:"completed_appointments"`
	CancelledAppointments    int64     `db:"cancelled_appointments" json:"cancelled_appointments"`
	NoShowAppointments       int64     `db:"no_show_appointments" json:"no_show_appointments"`
	TelemedicineAppointments int64     `db:"telemedicine_appointments" json:"telemedicine_appointments"`
	TotalPatients            int64     `db:"total_patients" json:"total_patients"`
	ActiveDoctors            int64     `db:"active_doctors" json:"active_doctors"`
	NewPatients              int64     `db:"new_patients" json:"new_patients"`
	OccupancyRate            int       `json:"occupancy_rate"`
	PeriodStart              time.Time `json:"period_start"`
	PeriodEnd                time.Time `json:"period_end"`
}
