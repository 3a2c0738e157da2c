package mw

import "github.com/gin-gonic/gin"

// User-facing error strings. The portal front-end shows them verbatim.
const (
	MsgInternal        = "Error interno del servidor"
	MsgUnauthorized    = "No autorizado"
	MsgForbidden       = "Acceso denegado"
	MsgTooManyRequests = "Demasiadas solicitudes, intente más tarde"
	MsgRejected        = "Solicitud rechazada"
	MsgTooLarge        = "La solicitud es demasiado grande"
)

// AbortJSON aborts the chain with the uniform {"error": msg} body.
func AbortJSON(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
