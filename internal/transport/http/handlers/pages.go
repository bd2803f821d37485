package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/wisatahub/platform-gateway/internal/core/domain"
	"github.com/wisatahub/platform-gateway/internal/transport/http/middleware"
)

// PageHandler serves placeholder responses for the routed page areas. The
// real UI lives in a separate frontend; these stubs make the gateway's
// routing observable end to end, echoing what the gateway attached to the
// request.
type PageHandler struct{}

// NewPageHandler constructs a page handler.
func NewPageHandler() *PageHandler {
	return &PageHandler{}
}

// PageResponse echoes the request context the gateway resolved.
type PageResponse struct {
	Page     string `json:"page"`
	Locale   string `json:"locale,omitempty"`
	Role     string `json:"role,omitempty"`
	BranchID string `json:"branch_id,omitempty"`
	UserID   string `json:"user_id,omitempty"`
}

// Page returns a handler rendering the named page stub.
func (h *PageHandler) Page(name string) gin.HandlerFunc {
	return h.page(name, http.StatusOK)
}

// NotFound renders the 404 stub for unrouted but allowed paths.
func (h *PageHandler) NotFound() gin.HandlerFunc {
	return h.page("not_found", http.StatusNotFound)
}

func (h *PageHandler) page(name string, status int) gin.HandlerFunc {
	return func(c *gin.Context) {
		response := PageResponse{
			Page:     name,
			Locale:   middleware.GetLocale(c),
			BranchID: middleware.GetBranchID(c),
		}

		if role := middleware.GetResolvedRole(c); role != domain.RoleNone {
			response.Role = role.String()
		}
		if identity := middleware.GetIdentity(c); identity != nil {
			response.UserID = identity.UserID
		}

		c.JSON(status, response)
	}
}
