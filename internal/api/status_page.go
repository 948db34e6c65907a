package api

import (
	"embed"

	"github.com/gin-contrib/static"
	"github.com/gin-gonic/gin"
)

// Embedded status page. web/ holds a small static page that polls the
// stats endpoints; shipping it inside the binary keeps the server free of
// runtime file dependencies.
//
//go:embed web
var statusPage embed.FS

func mountStatusPage(r *gin.Engine) {
	fs, err := static.EmbedFolder(statusPage, "web")
	if err != nil {
		panic("api: embedded status page: " + err.Error())
	}
	r.Use(static.Serve("/", fs))
}
