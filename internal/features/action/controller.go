package action

import (
	"errors"
	"strconv"

	"wa-assist/internal/events"
	"wa-assist/internal/middleware"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

type ActionController struct {
	Service ActionService
}

func NewActionController(service ActionService) *ActionController {
	return &ActionController{
		Service: service,
	}
}

// CreateAction godoc
// @Summary Create action
// @Description Create a new event action for the workspace
// @Tags actions
// @Accept json
// @Produce json
// @Param action body ActionConfig true "Action Details"
// @Success 201 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/actions [post]
func (ctrl *ActionController) CreateAction(c *fiber.Ctx) error {
	var action ActionConfig
	if err := c.BodyParser(&action); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	tenantOID, err := primitive.ObjectIDFromHex(middleware.TenantID(c))
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid tenant",
		})
	}
	action.TenantID = tenantOID

	if err := ctrl.Service.CreateAction(c.UserContext(), &action); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Action created successfully",
		"data":    action,
	})
}

// ListActions godoc
// @Summary List actions
// @Description List the workspace's configured actions
// @Tags actions
// @Produce json
// @Success 200 {array} ActionConfig
// @Failure 500 {object} map[string]interface{}
// @Router /api/actions [get]
func (ctrl *ActionController) ListActions(c *fiber.Ctx) error {
	actions, err := ctrl.Service.ListActions(c.UserContext(), middleware.TenantID(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": actions,
	})
}

// GetAction godoc
// @Summary Get action
// @Description Get an action by ID
// @Tags actions
// @Produce json
// @Param id path string true "Action ID"
// @Success 200 {object} ActionConfig
// @Failure 404 {object} map[string]interface{}
// @Router /api/actions/{id} [get]
func (ctrl *ActionController) GetAction(c *fiber.Ctx) error {
	action, err := ctrl.Service.GetAction(c.UserContext(), middleware.TenantID(c), c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(action)
}

// UpdateAction godoc
// @Summary Update action
// @Description Update an existing action
// @Tags actions
// @Accept json
// @Produce json
// @Param id path string true "Action ID"
// @Param action body ActionConfig true "Action Updates"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/actions/{id} [put]
func (ctrl *ActionController) UpdateAction(c *fiber.Ctx) error {
	var action ActionConfig
	if err := c.BodyParser(&action); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	err := ctrl.Service.UpdateAction(c.UserContext(), middleware.TenantID(c), c.Params("id"), &action)
	if err != nil {
		status := fiber.StatusBadRequest
		if errors.Is(err, mongo.ErrNoDocuments) {
			status = fiber.StatusNotFound
		}
		return c.Status(status).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Action updated successfully",
	})
}

// DeleteAction godoc
// @Summary Delete action
// @Description Delete an action by ID; deleting a missing id succeeds
// @Tags actions
// @Param id path string true "Action ID"
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} map[string]interface{}
// @Router /api/actions/{id} [delete]
func (ctrl *ActionController) DeleteAction(c *fiber.Ctx) error {
	if err := ctrl.Service.DeleteAction(c.UserContext(), middleware.TenantID(c), c.Params("id")); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"message": "Action deleted successfully",
	})
}

type testSendRequest struct {
	Action ActionConfig `json:"action"`
	Event  events.Kind  `json:"event"`
	Tags   []string     `json:"tags,omitempty"`
}

// SendTest godoc
// @Summary Test-send a draft action
// @Description Run one synchronous delivery attempt for a draft action against a sample payload
// @Tags actions
// @Accept json
// @Produce json
// @Param request body testSendRequest true "Draft action and event"
// @Success 200 {object} DeliveryResult
// @Failure 400 {object} map[string]interface{}
// @Router /api/actions/test [post]
func (ctrl *ActionController) SendTest(c *fiber.Ctx) error {
	var req testSendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	if !req.Event.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unknown event kind",
		})
	}
	if err := req.Action.Validate(); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	result := ctrl.Service.SendTest(c.UserContext(), middleware.TenantID(c), req.Action, req.Event, req.Tags)
	return c.JSON(result)
}

type publishRequest struct {
	Event events.Kind    `json:"event"`
	Data  map[string]any `json:"data"`
}

// PublishEvent godoc
// @Summary Publish a business event
// @Description Internal ingress for sibling services; dispatch is fire-and-forget
// @Tags events
// @Accept json
// @Produce json
// @Param request body publishRequest true "Event"
// @Success 202 {object} map[string]interface{}
// @Failure 400 {object} map[string]interface{}
// @Router /api/events/publish [post]
func (ctrl *ActionController) PublishEvent(c *fiber.Ctx) error {
	var req publishRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid request body",
		})
	}

	ctrl.Service.Publish(c.UserContext(), middleware.TenantID(c), req.Event, req.Data)

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message": "Event accepted",
	})
}

// ListActionDeliveries godoc
// @Summary List an action's deliveries
// @Description Recent delivery attempts for one action, newest first
// @Tags deliveries
// @Produce json
// @Param id path string true "Action ID"
// @Success 200 {array} DeliveryLog
// @Failure 500 {object} map[string]interface{}
// @Router /api/actions/{id}/deliveries [get]
func (ctrl *ActionController) ListActionDeliveries(c *fiber.Ctx) error {
	logs, err := ctrl.Service.ListActionDeliveries(c.UserContext(), middleware.TenantID(c), c.Params("id"), queryLimit(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": logs,
	})
}

// ListDeliveries godoc
// @Summary List workspace deliveries
// @Description Recent delivery attempts across all actions, newest first
// @Tags deliveries
// @Produce json
// @Success 200 {array} DeliveryLog
// @Failure 500 {object} map[string]interface{}
// @Router /api/deliveries [get]
func (ctrl *ActionController) ListDeliveries(c *fiber.Ctx) error {
	logs, err := ctrl.Service.ListDeliveries(c.UserContext(), middleware.TenantID(c), queryLimit(c))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	return c.JSON(fiber.Map{
		"data": logs,
	})
}

// ExportDeliveries godoc
// @Summary Export workspace deliveries
// @Description Download recent delivery attempts as an Excel workbook
// @Tags deliveries
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Success 200 {file} binary
// @Failure 500 {object} map[string]interface{}
// @Router /api/deliveries/export [get]
func (ctrl *ActionController) ExportDeliveries(c *fiber.Ctx) error {
	logs, err := ctrl.Service.ListDeliveries(c.UserContext(), middleware.TenantID(c), 1000)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	content, err := BuildDeliveryWorkbook(logs)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	c.Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Set("Content-Disposition", `attachment; filename="deliveries.xlsx"`)
	return c.Send(content)
}

func queryLimit(c *fiber.Ctx) int64 {
	limit, err := strconv.ParseInt(c.Query("limit", "50"), 10, 64)
	if err != nil || limit <= 0 {
		return 50
	}
	return limit
}
