package handler

import (
	"net/http"

	"blood-request-coordinator/internal/models"
	"blood-request-coordinator/internal/service"
	"blood-request-coordinator/pkg/utils"

	"github.com/gin-gonic/gin"
)

type RequestHandler struct {
	requestService *service.RequestService
	queryService   *service.QueryService
	shareService   *service.ShareService
}

func NewRequestHandler(
	requestService *service.RequestService,
	queryService *service.QueryService,
	shareService *service.ShareService,
) *RequestHandler {
	return &RequestHandler{
		requestService: requestService,
		queryService:   queryService,
		shareService:   shareService,
	}
}

func requestList(requests []models.BloodRequest) interface{} {
	return gin.H{
		"requests": requests,
		"count":    len(requests),
	}
}

func singleRequest(request *models.BloodRequest) interface{} {
	return gin.H{"request": request}
}

// GetOpenRequests lists open requests for the public board
func (h *RequestHandler) GetOpenRequests(c *gin.Context) {
	requests, err := h.queryService.PublicRequests(c.Request.Context(), service.RequestQuery{
		HospitalID: c.Query("hospitalId"),
		BloodGroup: c.Query("bloodGroup"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, requestList(requests))
}

// StreamOpenRequests streams the public board with the same filters as
// GetOpenRequests
func (h *RequestHandler) StreamOpenRequests(c *gin.Context) {
	sub, err := h.queryService.WatchPublicRequests(c.Request.Context(), service.RequestQuery{
		HospitalID: c.Query("hospitalId"),
		BloodGroup: c.Query("bloodGroup"),
	})
	if err != nil {
		respondError(c, err)
		return
	}
	streamSnapshots(c, sub, requestList)
}

// GetHospitalRequests lists every request of one hospital for its dashboard
func (h *RequestHandler) GetHospitalRequests(c *gin.Context) {
	requests, err := h.queryService.DashboardRequests(c.Request.Context(), c.Param("hospitalId"), c.Query("bloodGroup"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, requestList(requests))
}

// StreamHospitalRequests streams a hospital dashboard
func (h *RequestHandler) StreamHospitalRequests(c *gin.Context) {
	sub, err := h.queryService.WatchDashboardRequests(c.Request.Context(), c.Param("hospitalId"), c.Query("bloodGroup"))
	if err != nil {
		respondError(c, err)
		return
	}
	streamSnapshots(c, sub, requestList)
}

// GetRequest returns a single request for the verification page
func (h *RequestHandler) GetRequest(c *gin.Context) {
	request, err := h.queryService.GetRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if request == nil {
		utils.ErrorResponse(c, http.StatusNotFound, service.MsgRequestMissing)
		return
	}
	utils.SuccessResponse(c, request)
}

// StreamRequest emits the request on every change, and a null request once
// it is deleted.
func (h *RequestHandler) StreamRequest(c *gin.Context) {
	sub, err := h.queryService.WatchRequest(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	streamSnapshots(c, sub, singleRequest)
}

// ShareRequest renders the broadcast messages for a request
func (h *RequestHandler) ShareRequest(c *gin.Context) {
	messages, err := h.shareService.Messages(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	utils.SuccessResponse(c, messages)
}

// CreateRequest posts a new blood request on behalf of a hospital
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	request, err := h.requestService.CreateBloodRequest(c.Request.Context(), payload)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.CreatedResponse(c, request)
}

// UpdateRequest edits the mutable fields of a request
func (h *RequestHandler) UpdateRequest(c *gin.Context) {
	payload, err := readPayload(c)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.requestService.UpdateBloodRequest(c.Request.Context(), c.Param("id"), payload); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Request updated")
}

// CloseRequest marks a request fulfilled. Closing twice is not an error.
func (h *RequestHandler) CloseRequest(c *gin.Context) {
	if err := h.requestService.CloseBloodRequest(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Request closed")
}

// DeleteRequest removes a request. Deleting a missing one succeeds.
func (h *RequestHandler) DeleteRequest(c *gin.Context) {
	if err := h.requestService.DeleteBloodRequest(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	utils.MessageResponse(c, "Request deleted")
}
