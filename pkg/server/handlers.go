package server

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"github.com/lakewatch/lakeview/pkg/history"
	"github.com/lakewatch/lakeview/pkg/session"
	"github.com/sirupsen/logrus"
)

// ErrBadToggle is returned when a toggle request is missing the table name
var ErrBadToggle = fiber.NewError(fiber.StatusBadRequest, "toggle requires a table name")

// handlers wires the session's views and transitions to routes.
type handlers struct {
	session *session.Session
	log     logrus.FieldLogger
}

func newHandlers(sess *session.Session, log logrus.FieldLogger) *handlers {
	return &handlers{
		session: sess,
		log:     log.WithField("component", "server.handlers"),
	}
}

func (h *handlers) register(router fiber.Router) {
	router.Get("/summary", h.getSummary)
	router.Get("/tables", h.getTables)
	router.Get("/series/records", h.getRecordSeries)
	router.Get("/series/sizes", h.getSizeSeries)
	router.Get("/operations", h.getOperations)
	router.Get("/churn", h.getChurn)
	router.Get("/activity", h.getActivity)
	router.Get("/selection", h.getSelection)
	router.Put("/selection/filter", h.putFilter)
	router.Put("/selection/toggle", h.putToggle)
}

func (h *handlers) getSummary(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"rows": h.session.Summary()})
}

func (h *handlers) getTables(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"tables": h.session.Tables()})
}

func (h *handlers) getRecordSeries(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"series": h.session.RecordSeries()})
}

func (h *handlers) getSizeSeries(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"series": h.session.SizeSeries()})
}

func (h *handlers) getOperations(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"rows": h.session.OperationBreakdown()})
}

func (h *handlers) getChurn(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"rows": h.session.FileChurn()})
}

func (h *handlers) getActivity(c fiber.Ctx) error {
	return c.JSON(fiber.Map{"rows": h.session.ActivityTimeline()})
}

func (h *handlers) getSelection(c fiber.Ctx) error {
	return c.JSON(h.session.State())
}

func (h *handlers) putFilter(c fiber.Ctx) error {
	var req struct {
		Filter string `json:"filter"`
	}
	if err := c.Bind().Body(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid filter payload")
	}

	h.session.SetFilter(req.Filter)
	return c.JSON(h.session.State())
}

func (h *handlers) putToggle(c fiber.Ctx) error {
	var req struct {
		Name    string `json:"name"`
		Checked bool   `json:"checked"`
	}
	if err := c.Bind().Body(&req); err != nil || req.Name == "" {
		return ErrBadToggle
	}

	if err := h.session.Toggle(c.Context(), req.Name, req.Checked); err != nil {
		h.log.WithError(err).WithField("table", req.Name).Error("Toggle load failed")
		if errors.Is(err, history.ErrProviderUnavailable) {
			return fiber.NewError(fiber.StatusBadGateway, "history provider unavailable")
		}
		return fiber.NewError(fiber.StatusInternalServerError, "failed to load table history")
	}
	return c.JSON(h.session.State())
}
