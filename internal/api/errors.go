package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/inventory"
	"mundox-portal-bff/internal/lab"
	"mundox-portal-bff/internal/mw"
)

const (
	msgInvalidBody     = "Datos de la solicitud inválidos"
	msgMissingRange    = "Los parámetros from y to son obligatorios"
	msgInvalidDate     = "Fecha inválida, use el formato AAAA-MM-DD"
	msgInvalidRFID     = "Código RFID inválido"
	msgInvalidLimit    = "El parámetro limit debe ser un número"
	msgPushUnavailable = "Las notificaciones push no están configuradas"
)

var (
	errBadBody     = errors.New("malformed request body")
	errInvalidRFID = errors.New("invalid RFID tag")
)

type errorMapping struct {
	err    error
	status int
	msg    string
}

var errorMappings = []errorMapping{
	{errBadBody, http.StatusBadRequest, msgInvalidBody},
	{errInvalidRFID, http.StatusBadRequest, msgInvalidRFID},
	{lab.ErrInvalidComputer, http.StatusBadRequest, "El computador seleccionado no existe"},
	{lab.ErrInvalidBlock, http.StatusBadRequest, "Bloque horario inválido"},
	{lab.ErrNoBlocks, http.StatusBadRequest, "Debe seleccionar al menos un bloque horario"},
	{lab.ErrTooManyBlocks, http.StatusBadRequest, "Solo se permiten 2 bloques por día"},
	{lab.ErrDuplicateBlock, http.StatusBadRequest, "El bloque horario está repetido"},
	{lab.ErrMissingDate, http.StatusBadRequest, "La fecha de reserva es obligatoria"},
	{lab.ErrPastDate, http.StatusBadRequest, "No se puede reservar en una fecha pasada"},
	{lab.ErrMissingField, http.StatusBadRequest, "Faltan campos obligatorios"},
	{lab.ErrUnknownOption, http.StatusBadRequest, "Valor no permitido"},
	{lab.ErrInvalidStatus, http.StatusBadRequest, "Estado de reserva inválido"},
	{lab.ErrInvalidRange, http.StatusBadRequest, "Rango de fechas inválido"},
	{lab.ErrInvalidTransition, http.StatusConflict, "La reserva no puede pasar a ese estado"},
	{inventory.ErrUnknownAction, http.StatusBadRequest, "Acción desconocida"},
	{inventory.ErrUnknownState, http.StatusBadRequest, "Estado de ubicación inválido"},
	{inventory.ErrInvalidTransition, http.StatusConflict, "La acción no está permitida en el estado actual del producto"},
}

// writeError maps a local validation error to its status and message.
// Anything unrecognized is a 500 with the generic message.
func (h *Handler) writeError(c *gin.Context, err error) {
	for _, m := range errorMappings {
		if errors.Is(err, m.err) {
			mw.AbortJSON(c, m.status, m.msg)
			return
		}
	}
	h.internalError(c, err)
}

func (h *Handler) internalError(c *gin.Context, err error) {
	h.log.Error("Request failed",
		zap.String("path", c.Request.URL.Path),
		zap.String("request_id", mw.GetRequestID(c)),
		zap.Error(err),
	)
	_ = c.Error(err)
	mw.AbortJSON(c, http.StatusInternalServerError, mw.MsgInternal)
}
