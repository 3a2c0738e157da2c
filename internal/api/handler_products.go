package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"mundox-portal-bff/internal/inventory"
	"mundox-portal-bff/internal/mw"
	"mundox-portal-bff/internal/parse"
)

// GetProductByRFID normalizes the tag before looking it up.
func (h *Handler) GetProductByRFID(c *gin.Context) {
	tag, err := parse.HexTag(c.Param("hex"))
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidRFID)
		return
	}
	h.forward(c, http.MethodGet, "products/rfid/"+tag, nil)
}

// productFields are the optional fields checked before a create or update.
type productFields struct {
	HexValue        *string `json:"hexValue"`
	EstadoUbicacion *string `json:"estadoUbicacion"`
}

// checkProductBody validates hexValue and estadoUbicacion when present.
// It returns the body with hexValue normalized.
func checkProductBody(body []byte) ([]byte, error) {
	var f productFields
	if err := json.Unmarshal(body, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	if f.EstadoUbicacion != nil && !inventory.LocationState(*f.EstadoUbicacion).Valid() {
		return nil, fmt.Errorf("%w: %q", inventory.ErrUnknownState, *f.EstadoUbicacion)
	}
	if f.HexValue == nil || *f.HexValue == "" {
		return body, nil
	}

	tag, err := parse.HexTag(*f.HexValue)
	if err != nil {
		return nil, errInvalidRFID
	}
	if tag == *f.HexValue {
		return body, nil
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadBody, err)
	}
	encoded, err := json.Marshal(tag)
	if err != nil {
		return nil, err
	}
	doc["hexValue"] = encoded
	return json.Marshal(doc)
}

// SaveProduct handles POST /api/products and PUT /api/products/:id.
func (h *Handler) SaveProduct(c *gin.Context) {
	body, err := readBody(c)
	if err != nil || len(body) == 0 {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	body, err = checkProductBody(body)
	if err != nil {
		h.writeError(c, err)
		return
	}

	path := "products"
	if id := c.Param("id"); id != "" {
		path += "/" + escaped(c, "id")
	}
	h.forward(c, c.Request.Method, path, body)
}

// ProductAction checks the action against the product's current location
// state, then asks the backend to carry it out.
func (h *Handler) ProductAction(c *gin.Context) {
	action, err := inventory.ParseAction(c.Param("action"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	body, err := readBody(c)
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}

	path := "products/" + escaped(c, "id")
	current, ok := h.fetch(c, path, nil)
	if !ok {
		return
	}
	product, err := inventory.DecodeProduct(current)
	if err != nil {
		h.internalError(c, err)
		return
	}
	if _, err := inventory.Apply(product.EstadoUbicacion, action); err != nil {
		h.writeError(c, err)
		return
	}

	h.forward(c, http.MethodPost, path+"/"+string(action), body)
}
