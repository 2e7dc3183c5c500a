package handlers

import (
	"html/template"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/teich/phone-gate-bridge/domain"
)

var dashboardTemplate = template.Must(template.New("dashboard").Parse(`<!DOCTYPE html>
<html>
<head>
<title>Phone Gate Bridge</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; width: 100%; }
th, td { border: 1px solid #ccc; padding: 0.4em 0.8em; text-align: left; }
th { background: #f0f0f0; }
.ALLOWED { color: #2a7; }
.BLOCKED { color: #c33; }
.UNLOCK_SUCCEEDED { color: #2a7; font-weight: bold; }
.UNLOCK_FAILED { color: #c33; font-weight: bold; }
</style>
</head>
<body>
<h1>Recent calls</h1>
<table>
<tr><th>Time</th><th>From</th><th>Stage</th><th>Decision</th><th>Door</th><th>Detail</th><th>Call SID</th></tr>
{{range .Events}}<tr>
<td>{{.CreatedAt.Format "2006-01-02 15:04:05"}}</td>
<td>{{.FromNumber}}</td>
<td>{{.Stage}}</td>
<td class="{{.Decision}}">{{.Decision}}</td>
<td>{{.DoorName}}</td>
<td>{{.Detail}}</td>
<td>{{.CallSid}}</td>
</tr>{{end}}
</table>
</body>
</html>
`))

// DashboardHandlers renders the read-only activity dashboard
type DashboardHandlers struct {
	events domain.ActivityLog
	limit  int
}

// NewDashboardHandlers creates new dashboard handlers
func NewDashboardHandlers(events domain.ActivityLog, limit int) *DashboardHandlers {
	return &DashboardHandlers{events: events, limit: limit}
}

// Show renders the recent call events, newest first
func (h *DashboardHandlers) Show(c *gin.Context) {
	events, err := h.events.Recent(c.Request.Context(), h.limit)
	if err != nil {
		log.Printf("dashboard query failed: %v", err)
		c.String(http.StatusInternalServerError, "dashboard unavailable")
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.Status(http.StatusOK)
	if err := dashboardTemplate.Execute(c.Writer, gin.H{"Events": events}); err != nil {
		log.Printf("dashboard render failed: %v", err)
	}
}
