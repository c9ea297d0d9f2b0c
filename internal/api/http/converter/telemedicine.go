package converter

import (
	"fmt"
	"time"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/service"
)

type AppointmentSummary struct {
	ID              string     `json:"id"`
	DoctorID        int64      `json:"doctorId"`
	DoctorName      string     `json:"doctorName"`
	DoctorSpecialty string     `json:"doctorSpecialty"`
	PatientEmail    string     `json:"patientEmail"`
	Date            string     `json:"date"`
	AppointmentDate *time.Time `json:"appointmentDate"`
	Reason          string     `json:"reason"`
	Status          string     `json:"status"`
	RoomID          string     `json:"roomId"`
	CanJoin         bool       `json:"canJoin"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
	HasNext    bool  `json:"hasNext"`
	HasPrev    bool  `json:"hasPrev"`
}

type AppointmentPage struct {
	Items      []AppointmentSummary `json:"items"`
	Pagination Pagination           `json:"pagination"`
}

func AppointmentListingToAPI(listing *service.AppointmentListing) *AppointmentPage {
	items := make([]AppointmentSummary, 0, len(listing.Items))
	for _, appt := range listing.Items {
		summary := AppointmentSummary{
			ID:              appt.ID,
			DoctorID:        appt.DoctorID,
			DoctorName:      fmt.Sprintf("Doctor #%d", appt.DoctorID),
			PatientEmail:    appt.CreatedBy,
			Date:            appt.Date,
			AppointmentDate: appt.AppointmentDate,
			Reason:          appt.Reason,
			Status:          appt.Status,
			RoomID:          domain.RoomIDForAppointment(appt.ID),
			CanJoin:         appt.Joinable(),
		}
		if summary.Status == "" {
			summary.Status = domain.AppointmentStatusBooked
		}
		if doctor, ok := listing.DoctorsBy[appt.DoctorID]; ok {
			summary.DoctorName = doctor.Name
			summary.DoctorSpecialty = doctor.Specialty
		}
		items = append(items, summary)
	}

	limit := listing.Limit
	if limit < 1 {
		limit = 1
	}
	totalPages := int((listing.Total + int64(limit) - 1) / int64(limit))
	if totalPages < 1 {
		totalPages = 1
	}

	return &AppointmentPage{
		Items: items,
		Pagination: Pagination{
			Page:       listing.Page,
			Limit:      listing.Limit,
			Total:      listing.Total,
			TotalPages: totalPages,
			HasNext:    listing.Page < totalPages,
			HasPrev:    listing.Page > 1,
		},
	}
}
