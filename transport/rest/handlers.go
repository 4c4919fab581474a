package rest

import (
	_ "embed"
	"net/http"

	"github.com/gin-gonic/gin"
)

//go:embed web/index.html
var indexPage []byte

type Response struct {
	Success bool `json:"success"`
	Code    int  `json:"code"`
	Extras  any  `json:"extras"`
}

type Handlers struct {
	sessions sessionCounter
}

func NewHandlers(sessions sessionCounter) *Handlers {
	return &Handlers{sessions: sessions}
}

// Index - the board page, which talks to /ws.
func (that *Handlers) Index(c *gin.Context) {
	c.Data(http.StatusOK, "text/html; charset=utf-8", indexPage)
}

func (that *Handlers) Ping(c *gin.Context) {
	c.String(http.StatusOK, "pong")
}

// Stats - number of games being played right now.
func (that *Handlers) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Code:    http.StatusOK,
		Extras:  gin.H{"sessions": that.sessions.Count()},
	})
}
