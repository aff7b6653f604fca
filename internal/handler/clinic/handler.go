package clinic

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/healthflow/clinic-api/internal/handler"
	"github.com/healthflow/clinic-api/internal/middleware"
	"github.com/healthflow/clinic-api/internal/model"
	clinicService "github.com/healthflow/clinic-api/internal/service/clinic"
	"github.com/healthflow/clinic-api/pkg/auth"
)

type Handler struct {
	service clinicService.ClinicServicer
}

func NewHandler(service clinicService.ClinicServicer) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the clinic surface. Listing is open to every
// authenticated role; mutations are gated per operation.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, authMW *middleware.AuthMiddleware) {
	allRoles := []string{
		auth.RoleSuperAdmin, auth.RoleClinicAdmin, auth.RoleDoctor,
		auth.RoleNurse, auth.RoleReceptionist, auth.RolePatient,
	}
	staffRoles := []string{
		auth.RoleSuperAdmin, auth.RoleClinicAdmin, auth.RoleDoctor,
		auth.RoleNurse, auth.RoleReceptionist,
	}
	adminRoles := []string{auth.RoleSuperAdmin, auth.RoleClinicAdmin}

	clinics := r.Group("/clinics")
	{
		clinics.GET("", authMW.RequireRoles(allRoles...), h.ListClinics)
		clinics.GET("/:id", authMW.RequireRoles(allRoles...), h.GetClinic)
		clinics.GET("/cnpj/:cnpj", authMW.RequireRoles(staffRoles...), h.GetClinicByCNPJ)
		clinics.GET("/cnes/:cnes", authMW.RequireRoles(staffRoles...), h.GetClinicByCNES)
		clinics.POST("", authMW.RequireRoles(auth.RoleSuperAdmin), h.CreateClinic)
		clinics.PUT("/:id", authMW.RequireRoles(adminRoles...), h.UpdateClinic)
		clinics.DELETE("/:id", authMW.RequireRoles(auth.RoleSuperAdmin), h.DeleteClinic)

		clinics.GET("/:id/doctors", authMW.RequireRoles(staffRoles...), h.ListDoctors)
		clinics.POST("/:id/doctors", authMW.RequireRoles(adminRoles...), h.AddDoctor)
		clinics.DELETE("/:id/doctors/:doctorId", authMW.RequireRoles(adminRoles...), h.RemoveDoctor)

		clinics.GET("/:id/patients", authMW.RequireRoles(staffRoles...), h.ListPatients)
		clinics.POST("/:id/patients", authMW.RequireRoles(staffRoles...), h.AddPatient)

		clinics.GET("/:id/rooms", authMW.RequireRoles(staffRoles...), h.ListRooms)
		clinics.POST("/:id/rooms", authMW.RequireRoles(adminRoles...), h.AddRoom)
		clinics.PUT("/:id/rooms/:roomId", authMW.RequireRoles(adminRoles...), h.UpdateRoom)
		clinics.DELETE("/:id/rooms/:roomId", authMW.RequireRoles(adminRoles...), h.DeactivateRoom)

		clinics.GET("/:id/stats", authMW.RequireRoles(adminRoles...), h.GetStats)
	}
}

func (h *Handler) ListClinics(c *gin.Context) {
	var filter model.ClinicFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	page, err := h.service.List(c.Request.Context(), &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) GetClinic(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	detail, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(detail))
}

func (h *Handler) GetClinicByCNPJ(c *gin.Context) {
	clinic, err := h.service.GetByCNPJ(c.Request.Context(), c.Param("cnpj"))
	if err != nil {
		c.Error(err)
		return
	}
	if clinic == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("clínica não encontrada"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) GetClinicByCNES(c *gin.Context) {
	clinic, err := h.service.GetByCNES(c.Request.Context(), c.Param("cnes"))
	if err != nil {
		c.Error(err)
		return
	}
	if clinic == nil {
		c.JSON(http.StatusNotFound, handler.NewErrorResponse("clínica não encontrada"))
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) CreateClinic(c *gin.Context) {
	var in clinicService.CreateClinicInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	clinic, err := h.service.Create(c.Request.Context(), &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(clinic))
}

func (h *Handler) UpdateClinic(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var in clinicService.UpdateClinicInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	clinic, err := h.service.Update(c.Request.Context(), id, &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(clinic))
}

func (h *Handler) DeleteClinic(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, actorID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var filter model.DoctorMembershipFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	page, err := h.service.ListDoctors(c.Request.Context(), id, &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) AddDoctor(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var in clinicService.AddDoctorInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	membership, err := h.service.AddDoctor(c.Request.Context(), id, &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(membership))
}

func (h *Handler) RemoveDoctor(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}
	doctorID, ok := parseID(c, "doctorId", "invalid doctor ID")
	if !ok {
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	if err := h.service.RemoveDoctor(c.Request.Context(), id, doctorID, actorID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ListPatients(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var filter model.PatientMembershipFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	page, err := h.service.ListPatients(c.Request.Context(), id, &filter)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(page))
}

func (h *Handler) AddPatient(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var in clinicService.AddPatientInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	membership, err := h.service.AddPatient(c.Request.Context(), id, &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(membership))
}

func (h *Handler) ListRooms(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	activeOnly, _ := strconv.ParseBool(c.DefaultQuery("activeOnly", "false"))

	rooms, err := h.service.ListRooms(c.Request.Context(), id, activeOnly)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(rooms))
}

func (h *Handler) AddRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var in clinicService.CreateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	room, err := h.service.AddRoom(c.Request.Context(), id, &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, handler.NewSuccessResponse(room))
}

func (h *Handler) UpdateRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId", "invalid room ID")
	if !ok {
		return
	}

	var in clinicService.UpdateRoomInput
	if err := c.ShouldBindJSON(&in); err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(err.Error()))
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	room, err := h.service.UpdateRoom(c.Request.Context(), id, roomID, &in, actorID)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(room))
}

func (h *Handler) DeactivateRoom(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}
	roomID, ok := parseID(c, "roomId", "invalid room ID")
	if !ok {
		return
	}

	actorID, ok := middleware.ActorID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, handler.NewErrorResponse("invalid actor"))
		return
	}

	if err := h.service.DeactivateRoom(c.Request.Context(), id, roomID, actorID); err != nil {
		c.Error(err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) GetStats(c *gin.Context) {
	id, ok := parseID(c, "id", "invalid clinic ID")
	if !ok {
		return
	}

	var rng model.StatsRange
	if v := c.Query("startDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid startDate, expected YYYY-MM-DD"))
			return
		}
		rng.Start = t
	}
	if v := c.Query("endDate"); v != "" {
		t, err := time.Parse("2006-01-02", v)
		if err != nil {
			c.JSON(http.StatusBadRequest, handler.NewErrorResponse("invalid endDate, expected YYYY-MM-DD"))
			return
		}
		// The range's upper bound is exclusive; include the whole end date.
		rng.End = t.AddDate(0, 0, 1)
	}

	stats, err := h.service.Stats(c.Request.Context(), id, rng)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, handler.NewSuccessResponse(stats))
}

func parseID(c *gin.Context, param, message string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(param))
	if err != nil {
		c.JSON(http.StatusBadRequest, handler.NewErrorResponse(message))
		return uuid.Nil, false
	}
	return id, true
}
