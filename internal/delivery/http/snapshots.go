package http

import (
	"errors"
	"net/http"
	"strconv"

	"golang-finance/internal/dto"
	"golang-finance/internal/repository"

	"github.com/labstack/echo/v4"
)

func (h *HttpAPIHandler) SetupSnapshots(base *echo.Group) {
	v1 := base.Group("/v1/snapshots")
	{
		v1.POST("", h.CreateSnapshot)
		v1.GET("", h.ListSnapshots)
		v1.GET("/:id", h.GetSnapshot)
		v1.PUT("/:id", h.UpdateSnapshot)
		v1.DELETE("/:id", h.DeleteSnapshot)
	}
}

func (h *HttpAPIHandler) CreateSnapshot(c echo.Context) error {
	var req dto.SnapshotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	snapshot, err := h.service.SnapshotService.Create(c.Request().Context(), &req)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusCreated, dto.NewBaseResponse(http.StatusCreated, "Snapshot created", snapshot))
}

func (h *HttpAPIHandler) ListSnapshots(c echo.Context) error {
	snapshots, err := h.service.SnapshotService.List(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Snapshots", snapshots))
}

func (h *HttpAPIHandler) GetSnapshot(c echo.Context) error {
	id, err := snapshotID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid snapshot id"))
	}

	snapshot, err := h.service.SnapshotService.GetByID(c.Request().Context(), id)
	if err != nil {
		return snapshotErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Snapshot", snapshot))
}

func (h *HttpAPIHandler) UpdateSnapshot(c echo.Context) error {
	id, err := snapshotID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid snapshot id"))
	}

	var req dto.SnapshotRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid request body"))
	}
	if err := h.validator.Struct(&req); err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse(err.Error()))
	}

	snapshot, err := h.service.SnapshotService.Update(c.Request().Context(), id, &req)
	if err != nil {
		return snapshotErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Snapshot updated", snapshot))
}

func (h *HttpAPIHandler) DeleteSnapshot(c echo.Context) error {
	id, err := snapshotID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, dto.NewBadRequestResponse("invalid snapshot id"))
	}

	if err := h.service.SnapshotService.Delete(c.Request().Context(), id); err != nil {
		return snapshotErrorResponse(c, err)
	}
	return c.JSON(http.StatusOK, dto.NewSuccessResponse("Snapshot deleted", nil))
}

func snapshotID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

func snapshotErrorResponse(c echo.Context, err error) error {
	if errors.Is(err, repository.ErrSnapshotNotFound) {
		return c.JSON(http.StatusNotFound, dto.NewBaseResponse(http.StatusNotFound, "snapshot not found", nil))
	}
	return c.JSON(http.StatusInternalServerError, dto.NewBaseResponse(http.StatusInternalServerError, err.Error(), nil))
}
