package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go-consultation-booking/internal/delivery/dto"
	"go-consultation-booking/internal/delivery/http/middleware"
	"go-consultation-booking/internal/usecase"
	"go-consultation-booking/pkg/response"
	"go-consultation-booking/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type DoctorHandler struct {
	doctorUsecase usecase.DoctorProfileUsecase
	validator     *validator.CustomValidator
}

func NewDoctorHandler(doctorUsecase usecase.DoctorProfileUsecase, validator *validator.CustomValidator) *DoctorHandler {
	return &DoctorHandler{
		doctorUsecase: doctorUsecase,
		validator:     validator,
	}
}

// GetDoctors handles GET /doctors with optional search filters as query
// parameters (name, specialization, min_experience). Without filters it
// returns all doctors currently open for booking.
func (h *DoctorHandler) GetDoctors(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	name := query.Get("name")
	specialization := query.Get("specialization")
	minExperience, _ := strconv.Atoi(query.Get("min_experience"))

	var (
		doctors *dto.DoctorListResponse
		err     error
	)
	if name == "" && specialization == "" && minExperience == 0 {
		doctors, err = h.doctorUsecase.ListAvailable(r.Context())
	} else {
		doctors, err = h.doctorUsecase.Search(r.Context(), &dto.SearchDoctorsRequest{
			Name:           name,
			Specialization: specialization,
			MinExperience:  minExperience,
		})
	}
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) GetDoctor(w http.ResponseWriter, r *http.Request) {
	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorUsecase.GetDoctor(r.Context(), doctorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor retrieved successfully", doctor)
}

func (h *DoctorHandler) GetSpecializations(w http.ResponseWriter, r *http.Request) {
	specializations, err := h.doctorUsecase.ListSpecializations(r.Context())
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Specializations retrieved successfully", specializations)
}

// GetPendingDoctors lists doctor applications awaiting admin review.
func (h *DoctorHandler) GetPendingDoctors(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctors, err := h.doctorUsecase.ListPending(r.Context(), actor)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Pending doctors retrieved successfully", doctors)
}

func (h *DoctorHandler) ApproveDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	doctor, err := h.doctorUsecase.Approve(r.Context(), actor, doctorID)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor approved successfully", doctor)
}

func (h *DoctorHandler) RejectDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	if err := h.doctorUsecase.Reject(r.Context(), actor, doctorID); err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor application rejected", nil)
}

func (h *DoctorHandler) PurgeDoctor(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	doctorID, err := uuid.Parse(mux.Vars(r)["id"])
	if err != nil {
		response.BadRequest(w, "Invalid doctor ID")
		return
	}

	if err := h.doctorUsecase.Purge(r.Context(), actor, doctorID); err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Doctor removed successfully", nil)
}

// UpdateAvailability lets the authenticated doctor open or close their
// calendar for new bookings.
func (h *DoctorHandler) UpdateAvailability(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActorFromContext(r.Context())
	if !ok {
		response.Unauthorized(w, "")
		return
	}

	var req dto.UpdateAvailabilityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Validate(&req); err != nil {
		response.ValidationError(w, h.validator.FormatValidationErrors(err))
		return
	}

	doctor, err := h.doctorUsecase.SetAvailability(r.Context(), actor, &req)
	if err != nil {
		writeDomainError(w, err)
		return
	}

	response.Success(w, http.StatusOK, "Availability updated successfully", doctor)
}
