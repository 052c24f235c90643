package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

func fail(ctx *gin.Context, status int, msg string) {
	ctx.JSON(status, gin.H{"ok": false, "error": msg})
}

// failStore maps a backing-store failure to a 500 envelope. The underlying
// error is echoed outside release mode and suppressed in production.
func failStore(ctx *gin.Context, err error) {
	log.Printf("store error on %s %s: %v", ctx.Request.Method, ctx.Request.URL.Path, err)

	msg := "Internal server error"
	if gin.Mode() != gin.ReleaseMode {
		msg = err.Error()
	}

	ctx.JSON(http.StatusInternalServerError, gin.H{"ok": false, "error": msg})
}
