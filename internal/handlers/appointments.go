package handlers

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"hospital-appointment-server/internal/booking"
	"hospital-appointment-server/internal/middleware"
	"hospital-appointment-server/internal/models"
	"hospital-appointment-server/internal/utils"
)

// AppointmentHandler exposes the booking engine over HTTP. All slot and
// lifecycle rules live in the booking service; the handler only resolves
// the caller's profile and translates errors.
type AppointmentHandler struct {
	DB      *gorm.DB
	Service *booking.Service
}

// NewAppointmentHandler creates a new AppointmentHandler.
func NewAppointmentHandler(db *gorm.DB, service *booking.Service) *AppointmentHandler {
	return &AppointmentHandler{DB: db, Service: service}
}

func (h *AppointmentHandler) callerPatient(c *gin.Context) (*models.PatientProfile, bool) {
	return callerPatientProfile(c, h.DB)
}

func (h *AppointmentHandler) callerDoctor(c *gin.Context) (*models.DoctorProfile, bool) {
	return callerDoctorProfile(c, h.DB)
}

// BookAppointmentRequest represents the request body for booking.
type BookAppointmentRequest struct {
	DoctorID string `json:"doctorId" binding:"required,uuid"`
	Date     string `json:"date" binding:"required"` // YYYY-MM-DD
	Time     string `json:"time" binding:"required"` // HH:MM
	Reason   string `json:"reason"`
}

// BookAppointment books a slot with a doctor for the calling patient.
func (h *AppointmentHandler) BookAppointment(c *gin.Context) {
	var req BookAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, ok := h.callerPatient(c)
	if !ok {
		return
	}

	appt, err := h.Service.Book(c.Request.Context(), patient.ID, req.DoctorID, req.Date, req.Time, req.Reason)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Created(c, "Appointment booked successfully", appt)
}

// AdminAppointmentView decorates an appointment with the participant
// names for the admin listing.
type AdminAppointmentView struct {
	models.Appointment
	PatientName string `json:"patientName"`
	DoctorName  string `json:"doctorName"`
}

// GetAppointments lists appointments for the logged-in user. Patients and
// doctors see their own; admins see everything, with an optional ?search=
// over the participant names. An optional ?status= filter narrows the list.
func (h *AppointmentHandler) GetAppointments(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)
	status := models.AppointmentStatus(c.Query("status"))

	switch role {
	case models.RolePatient:
		patient, ok := h.callerPatient(c)
		if !ok {
			return
		}
		appointments, err := h.Service.ListForPatient(c.Request.Context(), patient.ID, status)
		if err != nil {
			respondBookingError(c, err)
			return
		}
		utils.Success(c, "Appointments fetched successfully", appointments)

	case models.RoleDoctor:
		doctor, ok := h.callerDoctor(c)
		if !ok {
			return
		}
		appointments, err := h.Service.ListForDoctor(c.Request.Context(), doctor.ID, status)
		if err != nil {
			respondBookingError(c, err)
			return
		}
		utils.Success(c, "Appointments fetched successfully", appointments)

	case models.RoleAdmin:
		query := h.DB.Model(&models.Appointment{}).
			Preload("Patient").Preload("Doctor").
			Order("appointments.date desc, appointments.time desc")
		if status != "" {
			query = query.Where("appointments.status = ?", status)
		}
		if search := c.Query("search"); search != "" {
			pattern := "%" + search + "%"
			query = query.
				Joins("JOIN patient_profiles ON patient_profiles.id = appointments.patient_id").
				Joins("JOIN doctor_profiles ON doctor_profiles.id = appointments.doctor_id").
				Where("patient_profiles.name LIKE ? OR doctor_profiles.name LIKE ?", pattern, pattern)
		}
		var appointments []models.Appointment
		if err := query.Find(&appointments).Error; err != nil {
			utils.InternalServerError(c, "Failed to fetch appointments: "+err.Error())
			return
		}
		views := make([]AdminAppointmentView, 0, len(appointments))
		for _, appt := range appointments {
			views = append(views, AdminAppointmentView{
				Appointment: appt,
				PatientName: appt.Patient.Name,
				DoctorName:  appt.Doctor.Name,
			})
		}
		utils.Success(c, "Appointments fetched successfully", views)

	default:
		utils.Forbidden(c, "User role not permitted to view appointments")
	}
}

// GetAppointmentByID fetches one appointment. Accessible by the involved
// patient, the assigned doctor, or an admin.
func (h *AppointmentHandler) GetAppointmentByID(c *gin.Context) {
	appt, err := h.Service.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondBookingError(c, err)
		return
	}

	userID, _ := middleware.GetUserIDFromContext(c)
	role, _ := middleware.GetUserRoleFromContext(c)

	authorized := role == models.RoleAdmin
	switch role {
	case models.RolePatient:
		if profile, err := models.PatientProfileForUser(h.DB, userID); err == nil {
			authorized = profile.ID == appt.PatientID
		}
	case models.RoleDoctor:
		if profile, err := models.DoctorProfileForUser(h.DB, userID); err == nil {
			authorized = profile.ID == appt.DoctorID
		}
	}

	if !authorized {
		utils.Forbidden(c, "You are not authorized to view this appointment")
		return
	}

	utils.Success(c, "Appointment fetched successfully", appt)
}

// RescheduleAppointmentRequest represents the request body for rescheduling.
type RescheduleAppointmentRequest struct {
	Date string `json:"date" binding:"required"`
	Time string `json:"time" binding:"required"`
}

// RescheduleAppointment moves the calling patient's booked appointment to
// a new slot.
func (h *AppointmentHandler) RescheduleAppointment(c *gin.Context) {
	var req RescheduleAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	patient, ok := h.callerPatient(c)
	if !ok {
		return
	}

	appt, err := h.Service.Reschedule(c.Request.Context(), c.Param("id"), patient.ID, req.Date, req.Time)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Appointment rescheduled successfully", appt)
}

// CancelAppointment cancels a booked appointment. Patients cancel their
// own; doctors cancel appointments assigned to them.
func (h *AppointmentHandler) CancelAppointment(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	var callerID string
	switch role {
	case models.RolePatient:
		patient, ok := h.callerPatient(c)
		if !ok {
			return
		}
		callerID = patient.ID
	case models.RoleDoctor:
		doctor, ok := h.callerDoctor(c)
		if !ok {
			return
		}
		callerID = doctor.ID
	default:
		utils.Forbidden(c, "Only the patient or the assigned doctor may cancel")
		return
	}

	appt, err := h.Service.Cancel(c.Request.Context(), c.Param("id"), callerID, role)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Appointment cancelled successfully", appt)
}

// CompleteAppointmentRequest represents the request body for completing an
// appointment with its treatment record.
type CompleteAppointmentRequest struct {
	Diagnosis    string `json:"diagnosis" binding:"required"`
	Prescription string `json:"prescription"`
	Notes        string `json:"notes"`
}

// CompleteAppointmentResponse bundles the completed appointment with the
// treatment created alongside it.
type CompleteAppointmentResponse struct {
	Appointment *models.Appointment `json:"appointment"`
	Treatment   *models.Treatment   `json:"treatment"`
}

// CompleteAppointment marks an appointment completed and records the
// treatment in the same transaction.
func (h *AppointmentHandler) CompleteAppointment(c *gin.Context) {
	var req CompleteAppointmentRequest
	if !utils.BindAndValidate(c, &req) {
		return
	}

	doctor, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	appt, treatment, err := h.Service.Complete(c.Request.Context(), c.Param("id"), doctor.ID,
		req.Diagnosis, req.Prescription, req.Notes)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Appointment completed and treatment recorded", CompleteAppointmentResponse{
		Appointment: appt,
		Treatment:   treatment,
	})
}

// GetTreatmentHistory returns the calling patient's treatment records.
func (h *AppointmentHandler) GetTreatmentHistory(c *gin.Context) {
	patient, ok := h.callerPatient(c)
	if !ok {
		return
	}

	treatments, err := h.Service.TreatmentHistory(c.Request.Context(), patient.ID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Treatment history fetched successfully", treatments)
}

// GetPatientHistory lets a doctor review the treatment history of a
// patient they have an appointment with.
func (h *AppointmentHandler) GetPatientHistory(c *gin.Context) {
	doctor, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	patientID := c.Param("patientId")

	// The doctor must actually have an appointment with this patient.
	var count int64
	if err := h.DB.Model(&models.Appointment{}).
		Where("doctor_id = ? AND patient_id = ?", doctor.ID, patientID).
		Count(&count).Error; err != nil {
		utils.InternalServerError(c, "Database error: "+err.Error())
		return
	}
	if count == 0 {
		utils.Forbidden(c, "You have no appointments with this patient")
		return
	}

	treatments, err := h.Service.TreatmentHistory(c.Request.Context(), patientID)
	if err != nil {
		respondBookingError(c, err)
		return
	}

	utils.Success(c, "Patient history fetched successfully", treatments)
}

// GetDoctorPatients returns the distinct patients the calling doctor has
// seen or will see.
func (h *AppointmentHandler) GetDoctorPatients(c *gin.Context) {
	doctor, ok := h.callerDoctor(c)
	if !ok {
		return
	}

	var patients []models.PatientProfile
	err := h.DB.
		Joins("JOIN appointments ON appointments.patient_id = patient_profiles.id").
		Where("appointments.doctor_id = ?", doctor.ID).
		Distinct("patient_profiles.*").
		Find(&patients).Error
	if err != nil {
		utils.InternalServerError(c, "Failed to fetch patients: "+err.Error())
		return
	}

	utils.Success(c, "Patients fetched successfully", patients)
}

// DashboardStats carries per-role appointment counters.
type DashboardStats struct {
	Total     int64 `json:"total"`
	Booked    int64 `json:"booked"`
	Completed int64 `json:"completed"`
	Cancelled int64 `json:"cancelled"`
}

// GetDashboardStats returns appointment counters scoped to the caller.
func (h *AppointmentHandler) GetDashboardStats(c *gin.Context) {
	role, _ := middleware.GetUserRoleFromContext(c)

	var column, id string
	switch role {
	case models.RolePatient:
		patient, ok := h.callerPatient(c)
		if !ok {
			return
		}
		column, id = "patient_id", patient.ID
	case models.RoleDoctor:
		doctor, ok := h.callerDoctor(c)
		if !ok {
			return
		}
		column, id = "doctor_id", doctor.ID
	default:
		utils.Forbidden(c, "No dashboard for this role")
		return
	}

	countByStatus := func(status models.AppointmentStatus, dst *int64) error {
		query := h.DB.Model(&models.Appointment{}).Where(column+" = ?", id)
		if status != "" {
			query = query.Where("status = ?", status)
		}
		return query.Count(dst).Error
	}

	var stats DashboardStats
	for status, dst := range map[models.AppointmentStatus]*int64{
		"":                     &stats.Total,
		models.StatusBooked:    &stats.Booked,
		models.StatusCompleted: &stats.Completed,
		models.StatusCancelled: &stats.Cancelled,
	} {
		if err := countByStatus(status, dst); err != nil {
			utils.InternalServerError(c, "Database error: "+err.Error())
			return
		}
	}

	utils.Success(c, "Dashboard stats fetched successfully", stats)
}
