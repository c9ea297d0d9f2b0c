package converter

import (
	"testing"

	"github.com/aureliov/medicall/internal/domain"
	"github.com/aureliov/medicall/internal/service"
	"github.com/stretchr/testify/require"
)

func TestAppointmentListingToAPI(t *testing.T) {
	req := require.New(t)

	listing := &service.AppointmentListing{
		Items: []*domain.Appointment{
			{
				ID:        "64f1b2c3d4e5f6a7b8c9d0e1",
				DoctorID:  7,
				CreatedBy: "patient@example.com",
				Status:    domain.AppointmentStatusBooked,
				Reason:    "checkup",
			},
			{
				ID:        "64f1b2c3d4e5f6a7b8c9d0e2",
				DoctorID:  9,
				CreatedBy: "patient@example.com",
				Status:    "completed",
			},
		},
		DoctorsBy: map[int64]*domain.Doctor{
			7: {ID: 7, Name: "Dr. Chen", Specialty: "Cardiology"},
		},
		Total: 5,
		Page:  2,
		Limit: 2,
	}

	page := AppointmentListingToAPI(listing)
	req.Len(page.Items, 2)

	first := page.Items[0]
	req.Equal("Dr. Chen", first.DoctorName)
	req.Equal("Cardiology", first.DoctorSpecialty)
	req.Equal("appointment:64f1b2c3d4e5f6a7b8c9d0e1", first.RoomID)
	req.True(first.CanJoin)

	// Unknown doctors fall back to a placeholder name; non-booked
	// appointments are not joinable.
	second := page.Items[1]
	req.Equal("Doctor #9", second.DoctorName)
	req.False(second.CanJoin)

	req.Equal(3, page.Pagination.TotalPages)
	req.True(page.Pagination.HasNext)
	req.True(page.Pagination.HasPrev)
}

func TestAppointmentListingToAPIEmpty(t *testing.T) {
	req := require.New(t)

	page := AppointmentListingToAPI(&service.AppointmentListing{Page: 1, Limit: 20})
	req.Empty(page.Items)
	req.Equal(1, page.Pagination.TotalPages)
	req.False(page.Pagination.HasNext)
	req.False(page.Pagination.HasPrev)
}
