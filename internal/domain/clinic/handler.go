package clinic

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/clinic/clinic/internal/platform/envelope"
	"github.com/clinic/clinic/internal/platform/validation"
	"github.com/clinic/clinic/pkg/pagination"
)

const (
	patientNotFound = "Patient not found"
	doctorNotFound  = "Doctor not found"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/patients", h.ListPatients)
	api.GET("/patients/:id", h.GetPatient)
	api.POST("/patients", h.CreatePatient)
	api.PUT("/patients/:id", h.UpdatePatient)
	api.PATCH("/patients/:id", h.PatchPatient)
	api.DELETE("/patients/:id", h.DeletePatient)

	api.GET("/doctors", h.ListDoctors)
	api.GET("/doctors/:id", h.GetDoctor)
	api.POST("/doctors", h.CreateDoctor)
	api.PUT("/doctors/:id", h.UpdateDoctor)
	api.PATCH("/doctors/:id", h.PatchDoctor)
	api.DELETE("/doctors/:id", h.DeleteDoctor)
}

// -- Patient Handlers --

func (h *Handler) ListPatients(c echo.Context) error {
	pg := pagination.FromContext(c)
	patients, total, err := h.svc.ListPatients(c.Request().Context(), pg)
	if err != nil {
		return envelope.FromError(c, err, "patient.list", "")
	}
	return envelope.List(c, "patients", envelope.ListMessage("patients", pg.Query, len(patients)),
		patients, pagination.NewPage(pg, total, len(patients)))
}

func (h *Handler) GetPatient(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, patientNotFound)
	}
	p, err := h.svc.GetPatient(c.Request().Context(), id)
	if err != nil {
		return envelope.FromError(c, err, "patient.get", patientNotFound)
	}
	return envelope.OK(c, "Patient found", p)
}

func (h *Handler) CreatePatient(c echo.Context) error {
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, "patient.create", "")
	}
	p, err := h.svc.CreatePatient(c.Request().Context(), raw)
	if err != nil {
		return envelope.FromError(c, err, "patient.create", "")
	}
	return envelope.OK(c, "Patient created successfully", p)
}

func (h *Handler) UpdatePatient(c echo.Context) error {
	return h.writePatient(c, "patient.update", h.svc.UpdatePatient)
}

func (h *Handler) PatchPatient(c echo.Context) error {
	return h.writePatient(c, "patient.patch", h.svc.PatchPatient)
}

func (h *Handler) writePatient(c echo.Context, op string, write func(ctx context.Context, id uuid.UUID, raw Raw) (*Patient, error)) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, patientNotFound)
	}
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, op, patientNotFound)
	}
	p, err := write(c.Request().Context(), id, raw)
	if err != nil {
		return envelope.FromError(c, err, op, patientNotFound)
	}
	return envelope.OK(c, "Patient updated successfully", p)
}

func (h *Handler) DeletePatient(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, patientNotFound)
	}
	if err := h.svc.DeletePatient(c.Request().Context(), id); err != nil {
		return envelope.FromError(c, err, "patient.delete", patientNotFound)
	}
	return envelope.Message(c, http.StatusOK, "Patient deleted successfully")
}

// -- Doctor Handlers --

func (h *Handler) ListDoctors(c echo.Context) error {
	pg := pagination.FromContext(c)
	doctors, total, err := h.svc.ListDoctors(c.Request().Context(), pg)
	if err != nil {
		return envelope.FromError(c, err, "doctor.list", "")
	}
	return envelope.List(c, "doctors", envelope.ListMessage("doctors", pg.Query, len(doctors)),
		doctors, pagination.NewPage(pg, total, len(doctors)))
}

func (h *Handler) GetDoctor(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, doctorNotFound)
	}
	d, err := h.svc.GetDoctor(c.Request().Context(), id)
	if err != nil {
		return envelope.FromError(c, err, "doctor.get", doctorNotFound)
	}
	return envelope.OK(c, "Doctor found", d)
}

func (h *Handler) CreateDoctor(c echo.Context) error {
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, "doctor.create", "")
	}
	d, err := h.svc.CreateDoctor(c.Request().Context(), raw)
	if err != nil {
		return envelope.FromError(c, err, "doctor.create", "")
	}
	return envelope.OK(c, "Doctor created successfully", d)
}

func (h *Handler) UpdateDoctor(c echo.Context) error {
	return h.writeDoctor(c, "doctor.update", h.svc.UpdateDoctor)
}

func (h *Handler) PatchDoctor(c echo.Context) error {
	return h.writeDoctor(c, "doctor.patch", h.svc.PatchDoctor)
}

func (h *Handler) writeDoctor(c echo.Context, op string, write func(ctx context.Context, id uuid.UUID, raw Raw) (*Doctor, error)) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, doctorNotFound)
	}
	raw, err := validation.DecodeBody(c.Request().Body)
	if err != nil {
		return envelope.FromError(c, err, op, doctorNotFound)
	}
	d, err := write(c.Request().Context(), id, raw)
	if err != nil {
		return envelope.FromError(c, err, op, doctorNotFound)
	}
	return envelope.OK(c, "Doctor updated successfully", d)
}

func (h *Handler) DeleteDoctor(c echo.Context) error {
	id, ok := parseID(c)
	if !ok {
		return envelope.NotFound(c, doctorNotFound)
	}
	if err := h.svc.DeleteDoctor(c.Request().Context(), id); err != nil {
		return envelope.FromError(c, err, "doctor.delete", doctorNotFound)
	}
	return envelope.Message(c, http.StatusOK, "Doctor deleted successfully")
}

// parseID reads the :id path parameter. A malformed id cannot match any
// record, so callers answer it with the not-found envelope.
func parseID(c echo.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	return id, err == nil
}
