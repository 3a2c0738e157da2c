package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/lab"
	"mundox-portal-bff/internal/mw"
	"mundox-portal-bff/internal/notification"
)

// GetTimeBlocks handles GET /api/lab/time-blocks.
func (h *Handler) GetTimeBlocks(c *gin.Context) {
	c.JSON(http.StatusOK, lab.Catalog())
}

// GetComputers handles GET /api/lab/computers.
func (h *Handler) GetComputers(c *gin.Context) {
	c.JSON(http.StatusOK, h.validator.Roster().Computers())
}

// GetLabOptions handles GET /api/lab/options.
func (h *Handler) GetLabOptions(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"options":         h.validator.Options(),
		"maxBlocksPerDay": lab.MaxBlocksPerDay,
		"maxRangeDays":    h.cfg.Lab.MaxRangeDays,
	})
}

// CreateReservation validates a submission locally, then forwards the
// original body. A successful submission notifies the admins.
func (h *Handler) CreateReservation(c *gin.Context) {
	body, err := readBody(c)
	if err != nil || len(body) == 0 {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	var r lab.Reservation
	if err := json.Unmarshal(body, &r); err != nil {
		h.log.Debug("Rejected undecodable reservation", zap.Error(err))
		h.writeError(c, decodeError(err))
		return
	}
	if err := h.validator.ValidateSubmission(r); err != nil {
		h.writeError(c, err)
		return
	}

	resp, ok := h.call(c, http.MethodPost, "lab-reservations", body)
	if !ok {
		return
	}
	if resp.OK() && h.notifier != nil {
		h.notifier.Dispatch(notification.Message{
			Title: "Nueva reserva de laboratorio",
			Body:  fmt.Sprintf("PC %d, %s, bloques %s", r.ComputerNumber, r.ReservationDate, joinBlocks(r.TimeBlocks)),
		})
	}
	relay(c, resp)
}

// decodeError keeps block errors from the JSON decoder distinguishable.
func decodeError(err error) error {
	if errors.Is(err, lab.ErrInvalidBlock) {
		return err
	}
	return fmt.Errorf("%w: %v", errBadBody, err)
}

func joinBlocks(blocks []lab.Block) string {
	labels := make([]string, len(blocks))
	for i, b := range blocks {
		labels[i] = b.Label()
	}
	return strings.Join(labels, ", ")
}

// GetAvailability computes the free/occupied grid for [from, to] from the
// approved reservations the backend returns for that range.
func (h *Handler) GetAvailability(c *gin.Context) {
	rawFrom, rawTo := c.Query("from"), c.Query("to")
	if rawFrom == "" || rawTo == "" {
		mw.AbortJSON(c, http.StatusBadRequest, msgMissingRange)
		return
	}
	from, err := lab.ParseDate(rawFrom)
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidDate)
		return
	}
	to, err := lab.ParseDate(rawTo)
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidDate)
		return
	}
	if err := lab.ValidateRange(from, to, h.cfg.Lab.MaxRangeDays); err != nil {
		h.writeError(c, err)
		return
	}

	query := url.Values{
		"status": {string(lab.StatusApproved)},
		"from":   {from.String()},
		"to":     {to.String()},
	}
	body, ok := h.fetch(c, "lab-reservations", query)
	if !ok {
		return
	}

	reservations, affected, err := lab.DecodeList(body)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if len(affected) > 0 {
		h.log.Warn("Dropped undecodable reservation data", zap.Strings("reservations", affected))
	}

	availability, err := lab.ComputeAvailability(from, to, h.validator.Roster(), reservations)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, availability)
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateReservationStatus checks the transition against the backend's
// current status before forwarding it.
func (h *Handler) UpdateReservationStatus(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	var req statusRequest
	if err := json.Unmarshal(body, &req); err != nil || req.Status == "" {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	target := lab.Status(req.Status)

	path := "lab-reservations/" + escaped(c, "id")
	current, ok := h.fetch(c, path, nil)
	if !ok {
		return
	}
	existing, err := lab.DecodeReservation(current)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if !existing.Status.Valid() {
		h.internalError(c, fmt.Errorf("reservation %s has unknown status %q", existing.ID, existing.Status))
		return
	}
	if err := lab.ValidateTransition(existing.Status, target); err != nil {
		h.writeError(c, err)
		return
	}

	h.forward(c, http.MethodPatch, path+"/status", body)
}
