package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mundox-portal-bff/internal/backend"
	"mundox-portal-bff/internal/mw"
)

// relay writes the backend's status, content type and body back unchanged.
func relay(c *gin.Context, resp *backend.Response) {
	contentType := resp.ContentType
	if contentType == "" {
		contentType = "application/json"
	}
	if len(resp.Body) == 0 {
		c.Status(resp.Status)
		return
	}
	c.Data(resp.Status, contentType, resp.Body)
}

// call performs one backend request on behalf of the caller, forwarding the
// inbound query and token. On transport failure it has already answered 500.
func (h *Handler) call(c *gin.Context, method, path string, body []byte) (*backend.Response, bool) {
	req := backend.Request{
		Method:      method,
		Path:        path,
		Query:       c.Request.URL.Query(),
		Body:        body,
		Token:       mw.GetToken(c),
		ContentType: c.ContentType(),
	}
	resp, err := h.backend.Do(c.Request.Context(), req)
	if err != nil {
		h.internalError(c, err)
		return nil, false
	}
	return resp, true
}

// fetch reads path as the caller and returns its JSON body. A non-2xx answer
// is relayed as-is; in either failure case the response is already written.
func (h *Handler) fetch(c *gin.Context, path string, query url.Values) (json.RawMessage, bool) {
	var body json.RawMessage
	_, err := h.backend.GetJSON(c.Request.Context(), path, query, mw.GetToken(c), &body)
	if err != nil {
		var statusErr *backend.StatusError
		if errors.As(err, &statusErr) {
			h.log.Debug("Backend refused read",
				zap.String("path", path),
				zap.Int("status", statusErr.Response.Status),
				zap.String("message", backend.ErrorMessage(statusErr.Response.Body)),
			)
			relay(c, statusErr.Response)
			return nil, false
		}
		h.internalError(c, err)
		return nil, false
	}
	return body, true
}

// forward relays one request to path and writes the backend's answer.
func (h *Handler) forward(c *gin.Context, method, path string, body []byte) {
	if resp, ok := h.call(c, method, path, body); ok {
		relay(c, resp)
	}
}

// readBody returns the raw request body, nil for an empty one.
func readBody(c *gin.Context) ([]byte, error) {
	if c.Request.Body == nil || c.Request.Body == http.NoBody {
		return nil, nil
	}
	return c.GetRawData()
}

// Proxy forwards the request as-is to path, with :name segments filled from
// the route params.
func (h *Handler) Proxy(path string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := readBody(c)
		if err != nil {
			mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
			return
		}
		h.forward(c, c.Request.Method, expandPath(path, c.Params), body)
	}
}

// AdminProxy forwards /api/admin/*path to {backend}/admin/*path.
func (h *Handler) AdminProxy(c *gin.Context) {
	body, err := readBody(c)
	if err != nil {
		mw.AbortJSON(c, http.StatusBadRequest, msgInvalidBody)
		return
	}
	sub := strings.TrimPrefix(c.Param("path"), "/")
	if strings.Contains(sub, "..") {
		mw.AbortJSON(c, http.StatusBadRequest, mw.MsgRejected)
		return
	}
	h.forward(c, c.Request.Method, "admin/"+sub, body)
}

func expandPath(path string, params gin.Params) string {
	segments := strings.Split(path, "/")
	for i, seg := range segments {
		if strings.HasPrefix(seg, ":") {
			v, _ := params.Get(seg[1:])
			segments[i] = url.PathEscape(v)
		}
	}
	return strings.Join(segments, "/")
}

func escaped(c *gin.Context, name string) string {
	return url.PathEscape(c.Param(name))
}
