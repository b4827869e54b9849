package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"robot-factory-backend/internal/model"
)

const (
	msgInvalidJSON     = "Ошибка: Некорректный формат JSON"
	msgFieldsRequired  = "Ошибка: Поля 'model', 'version' и 'created' обязательны"
	msgInvalidDate     = "Ошибка: Некорректный формат даты (ожидается 'YYYY-MM-DD HH:MM:SS')"
	msgValidationError = "Ошибка валидации данных"
	msgInternalError   = "Внутренняя ошибка сервера"
	msgRobotCreated    = "Робот успешно создан"
)

// createdLayouts are tried in order; fractional seconds are accepted after the seconds field.
var createdLayouts = func() []string {
	var layouts []string
	for _, clock := range []string{"15:04:05", "15:04"} {
		for _, sep := range []string{" ", "T"} {
			for _, zone := range []string{"Z07:00", "-0700", "-07", ""} {
				layouts = append(layouts, "2006-01-02"+sep+clock+zone)
			}
		}
	}
	return layouts
}()

type createRobotRequest struct {
	Model     string `json:"model"`
	Version   string `json:"version"`
	Created   string `json:"created"`
	Available bool   `json:"available"`
}

type robotData struct {
	Serial  string `json:"serial"`
	Model   string `json:"model"`
	Version string `json:"version"`
	Created string `json:"created"`
}

// parseCreated reads a timestamp, interpreting values without an offset in loc.
func parseCreated(value string, loc *time.Location) (time.Time, bool) {
	for _, layout := range createdLayouts {
		if t, err := time.ParseInLocation(layout, value, loc); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// CreateRobot handles POST /robots/.
func (h *Handler) CreateRobot(c *gin.Context) {
	var req createRobotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidJSON})
		return
	}

	if req.Model == "" || req.Version == "" || req.Created == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgFieldsRequired})
		return
	}

	created, ok := parseCreated(req.Created, h.loc)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"message": msgInvalidDate})
		return
	}

	robot := model.Robot{
		Serial:    h.newSerial(),
		Model:     req.Model,
		Version:   req.Version,
		Created:   created,
		Available: req.Available,
	}

	if err := h.validate.Struct(&robot); err != nil {
		if errs, ok := fieldErrors(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"message": msgValidationError, "errors": errs})
			return
		}
		h.internalError(c, err)
		return
	}

	if err := h.store.CreateRobot(c.Request.Context(), &robot); err != nil {
		h.internalError(c, err)
		return
	}

	h.log.Info("robot created",
		zap.String("serial", robot.Serial),
		zap.String("model", robot.Model),
		zap.String("version", robot.Version),
	)

	c.JSON(http.StatusCreated, gin.H{
		"message": msgRobotCreated,
		"data": robotData{
			Serial:  robot.Serial,
			Model:   req.Model,
			Version: req.Version,
			Created: req.Created,
		},
	})
}

// internalError reports an unexpected failure, including its text, as a 500.
func (h *Handler) internalError(c *gin.Context, err error) {
	h.log.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
	_ = c.Error(err)
	c.JSON(http.StatusInternalServerError, gin.H{"message": msgInternalError, "error": err.Error()})
}
