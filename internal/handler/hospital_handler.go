package handler

import (
	"net/http"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/service"
	"blood-request-coordinator/pkg/utils"

	"github.com/gin-gonic/gin"
)

type HospitalHandler struct {
	hospitalService *service.HospitalService
	queryService    *service.QueryService
}

func NewHospitalHandler(hospitalService *service.HospitalService, queryService *service.QueryService) *HospitalHandler {
	return &HospitalHandler{
		hospitalService: hospitalService,
		queryService:    queryService,
	}
}

func hospitalList(hospitals []models.Hospital) interface{} {
	return gin.H{
		"hospitals": hospitals,
		"count":     len(hospitals),
	}
}

// GetActiveHospitals lists hospitals that can receive requests
func (h *HospitalHandler) GetActiveHospitals(c *gin.Context) {
	hospitals, err := h.queryService.ActiveHospitals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, hospitalList(hospitals))
}

// StreamActiveHospitals streams the public hospital list
func (h *HospitalHandler) StreamActiveHospitals(c *gin.Context) {
	sub, err := h.queryService.WatchActiveHospitals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	streamSnapshots(c, sub, hospitalList)
}

// GetAllHospitals lists every hospital regardless of status
func (h *HospitalHandler) GetAllHospitals(c *gin.Context) {
	hospitals, err := h.queryService.AllHospitals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, hospitalList(hospitals))
}

// StreamAllHospitals streams the admin hospital list
func (h *HospitalHandler) StreamAllHospitals(c *gin.Context) {
	sub, err := h.queryService.WatchAllHospitals(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	streamSnapshots(c, sub, hospitalList)
}

// CreateHospital registers a hospital. New hospitals start inactive.
func (h *HospitalHandler) CreateHospital(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	hospital, err := h.hospitalService.CreateHospital(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, hospital)
}

// UpdateHospitalStatus activates or deactivates a hospital
func (h *HospitalHandler) UpdateHospitalStatus(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.hospitalService.UpdateHospitalStatus(c.Request.Context(), c.Param("id"), payload["status"]); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Hospital status updated")
}

// DeleteHospital removes a hospital together with all of its requests
func (h *HospitalHandler) DeleteHospital(c *gin.Context) {
	if err := h.hospitalService.DeleteHospital(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Hospital and its requests deleted")
}

// ResetDatabase wipes every hospital and request
func (h *HospitalHandler) ResetDatabase(c *gin.Context) {
	if err := h.hospitalService.ResetDatabase(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Database reset")
}
