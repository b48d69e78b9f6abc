package handler

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/salonhub/salon-booking/internal/auth"
	"github.com/salonhub/salon-booking/internal/middleware"
	"github.com/salonhub/salon-booking/internal/model"
	"github.com/salonhub/salon-booking/internal/repository"
)

// SalonHandler serves tenant bootstrap and membership administration: the
// write side of the RBAC tables the resolver reads.
type SalonHandler struct {
	Salons   *repository.SalonRepo
	RBAC     *repository.RBACRepo
	Resolver *auth.Resolver
}

func NewSalonHandler(salons *repository.SalonRepo, rbac *repository.RBACRepo, resolver *auth.Resolver) *SalonHandler {
	return &SalonHandler{Salons: salons, RBAC: rbac, Resolver: resolver}
}

type createSalonReq struct {
	Name        string `json:"name"`
	Slug        string `json:"slug"`
	Description string `json:"description"`
	Address     string `json:"address"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
}

type salonResp struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	IsActive bool   `json:"is_active"`
}

type memberReq struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
}

// CreateSalon creates a tenant and makes the caller its owner. Any
// authenticated user may open a salon; subsequent membership changes go
// through the permission-guarded member endpoints.
func (h *SalonHandler) CreateSalon(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createSalonReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.ToLower(strings.TrimSpace(req.Slug))
	if req.Name == "" || req.Slug == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "name/slug required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	salonID, err := h.Salons.Create(ctx, model.Salon{
		Name:        req.Name,
		Slug:        req.Slug,
		Description: req.Description,
		Address:     req.Address,
		Phone:       req.Phone,
		Email:       req.Email,
	})
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "slug already in use"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create salon failed"})
	}

	owner, err := h.RBAC.GetRoleByName(ctx, model.RoleOwner)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "role catalog missing"})
	}
	if _, err := h.RBAC.GrantRole(ctx, uid, salonID, owner.ID); err != nil && !errors.Is(err, repository.ErrGrantExists) {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant owner failed"})
	}

	return c.JSON(http.StatusCreated, salonResp{ID: salonID, Name: req.Name, Slug: req.Slug, IsActive: true})
}

// GetSalon returns a salon's public record.
func (h *SalonHandler) GetSalon(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("salon_id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	s, err := h.Salons.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "salon not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, salonResp{ID: s.ID, Name: s.Name, Slug: s.Slug, IsActive: s.IsActive})
}

// GrantMemberRole assigns a role to a user within the salon. Guarded by
// the members.manage permission.
func (h *SalonHandler) GrantMemberRole(c echo.Context) error {
	salonID, err := strconv.ParseUint(c.Param("salon_id"), 10, 64)
	if err != nil || salonID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 || strings.TrimSpace(req.Role) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/role required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.RBAC.GetRoleByName(ctx, strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	if _, err := h.RBAC.GrantRole(ctx, req.UserID, salonID, role.ID); err != nil {
		if errors.Is(err, repository.ErrGrantExists) {
			// The triple exists; it may have been deactivated earlier.
			if _, err := h.RBAC.ReactivateGrant(ctx, req.UserID, salonID, role.ID); err != nil {
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
			}
			return c.NoContent(http.StatusNoContent)
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "grant failed"})
	}
	return c.NoContent(http.StatusCreated)
}

// RevokeMemberRole deactivates a role grant. The next authorization check
// for that user and salon no longer sees it; no token reissue involved.
func (h *SalonHandler) RevokeMemberRole(c echo.Context) error {
	salonID, err := strconv.ParseUint(c.Param("salon_id"), 10, 64)
	if err != nil || salonID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon id"})
	}
	var req memberReq
	if err := c.Bind(&req); err != nil || req.UserID == 0 || strings.TrimSpace(req.Role) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id/role required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	role, err := h.RBAC.GetRoleByName(ctx, strings.ToLower(strings.TrimSpace(req.Role)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown role"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}

	// Deactivating an absent or already-inactive grant is a no-op.
	if _, err := h.RBAC.DeactivateGrant(ctx, req.UserID, salonID, role.ID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "revoke failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// MyPermissions returns the caller's effective permission set in the salon.
func (h *SalonHandler) MyPermissions(c echo.Context) error {
	uid := middleware.UserID(c)
	if uid == 0 {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	salonID, err := strconv.ParseUint(c.Param("salon_id"), 10, 64)
	if err != nil || salonID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid salon id"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	perms, err := h.Resolver.EffectivePermissions(ctx, uid, salonID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"salon_id": salonID, "permissions": perms})
}
