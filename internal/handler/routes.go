package handler

import (
	"github.com/gin-gonic/gin"
)

// Handlers groups everything RegisterRoutes mounts
type Handlers struct {
	Hospital *HospitalHandler
	Request  *RequestHandler
	Chat     *ChatHandler
}

// RegisterRoutes mounts the API under group, normally /api/v1
func RegisterRoutes(api *gin.RouterGroup, h Handlers) {
	// Public board and verification page
	requests := api.Group("/requests")
	{
		requests.GET("", h.Request.GetOpenRequests)
		requests.GET("/stream", h.Request.StreamOpenRequests)
		requests.GET("/:id", h.Request.GetRequest)
		requests.GET("/:id/stream", h.Request.StreamRequest)
		requests.GET("/:id/share", h.Request.ShareRequest)

		// Hospital dashboard mutations
		requests.POST("", h.Request.CreateRequest)
		requests.PUT("/:id", h.Request.UpdateRequest)
		requests.POST("/:id/close", h.Request.CloseRequest)
		requests.DELETE("/:id", h.Request.DeleteRequest)
	}

	api.GET("/hospitals", h.Hospital.GetActiveHospitals)
	api.GET("/hospitals/stream", h.Hospital.StreamActiveHospitals)
	api.POST("/chat", h.Chat.Chat)

	dashboard := api.Group("/dashboard/hospitals/:hospitalId")
	{
		dashboard.GET("/requests", h.Request.GetHospitalRequests)
		dashboard.GET("/requests/stream", h.Request.StreamHospitalRequests)
	}

	admin := api.Group("/admin")
	{
		admin.GET("/hospitals", h.Hospital.GetAllHospitals)
		admin.GET("/hospitals/stream", h.Hospital.StreamAllHospitals)
		admin.POST("/hospitals", h.Hospital.CreateHospital)
		admin.PATCH("/hospitals/:id/status", h.Hospital.UpdateHospitalStatus)
		admin.DELETE("/hospitals/:id", h.Hospital.DeleteHospital)
		admin.POST("/reset", h.Hospital.ResetDatabase)
	}
}
