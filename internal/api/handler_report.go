package api

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"robot-factory-backend/internal/report"
)

// DownloadWeeklyReport handles GET /download_weekly_report/.
func (h *Handler) DownloadWeeklyReport(c *gin.Context) {
	r, err := h.reports.Weekly(c.Request.Context())
	if err != nil {
		h.internalError(c, err)
		return
	}

	h.log.Info("weekly report generated",
		zap.String("filename", r.Filename),
		zap.Time("week_start", r.WeekStart),
		zap.Time("week_end", r.WeekEnd),
		zap.Int("bytes", len(r.Content)),
	)

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, r.Filename))
	c.Data(http.StatusOK, report.ContentType, r.Content)
}
