package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/aureliov/medicall/internal/api/http/converter"
	"github.com/aureliov/medicall/internal/service"
	"github.com/gin-gonic/gin"
)

type TelemedicineController struct {
	telemedicine service.TelemedicineInteractor
}

func NewTelemedicineController(telemedicine service.TelemedicineInteractor) *TelemedicineController {
	return &TelemedicineController{telemedicine: telemedicine}
}

func (c *TelemedicineController) GetICEServers(ctx *gin.Context) {
	servers, hasTURN := c.telemedicine.ICEServers()
	ctx.JSON(http.StatusOK, gin.H{
		"iceServers": servers,
		"hasTurn":    hasTURN,
	})
}

func (c *TelemedicineController) ListAppointments(ctx *gin.Context) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	query := service.AppointmentQuery{
		Page:   positiveInt(ctx.Query("page"), 1),
		Limit:  positiveInt(ctx.Query("limit"), 0),
		Status: ctx.Query("status"),
	}

	listing, err := c.telemedicine.ListAppointments(ctx.Request.Context(), identity, query)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "failed_to_fetch_telemedicine_appointments"})
		return
	}

	ctx.JSON(http.StatusOK, converter.AppointmentListingToAPI(listing))
}

func (c *TelemedicineController) GetMessages(ctx *gin.Context) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	messages, err := c.telemedicine.MessageHistory(
		ctx.Request.Context(),
		identity,
		ctx.Param("appointmentId"),
		positiveInt(ctx.Query("limit"), 0),
	)
	if err != nil {
		status, reason := restError(err, "failed_to_fetch_telemedicine_messages")
		ctx.JSON(status, gin.H{"error": reason})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"items": messages})
}

func (c *TelemedicineController) CreateMessage(ctx *gin.Context) {
	identity, ok := identityFromContext(ctx)
	if !ok {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	type request struct {
		Text   string `json:"text"`
		Type   string `json:"type"`
		RoomID string `json:"roomId"`
	}
	var req request
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	msg, err := c.telemedicine.CreateMessage(ctx.Request.Context(), identity, ctx.Param("appointmentId"), service.CreateMessageInput{
		Text:        req.Text,
		MessageType: req.Type,
		RoomID:      req.RoomID,
	})
	if err != nil {
		status, reason := restError(err, "failed_to_create_telemedicine_message")
		ctx.JSON(status, gin.H{"error": reason})
		return
	}

	ctx.JSON(http.StatusCreated, msg)
}

// restError maps service failures onto HTTP statuses, surfacing the stable
// reason strings verbatim and hiding everything else behind the fallback.
func restError(err error, fallback string) (int, string) {
	switch {
	case errors.Is(err, service.ErrInvalidAppointmentID):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrAppointmentNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, service.ErrAppointmentAccessDenied):
		return http.StatusForbidden, err.Error()
	case errors.Is(err, service.ErrMessageTextRequired):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, service.ErrCarePointDoctorOnly):
		return http.StatusForbidden, err.Error()
	default:
		return http.StatusInternalServerError, fallback
	}
}

func positiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(value)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}
