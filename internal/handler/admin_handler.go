package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/flight-delay-backend-go/internal/middleware"
	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/service"
	"github.com/jengzang/flight-delay-backend-go/pkg/response"
)

const (
	defaultRunLimit = 20
	maxRunLimit     = 200
)

// RunLister lists recorded training runs, newest first
type RunLister interface {
	List(ctx context.Context, limit int) ([]*models.TrainingRun, error)
}

// AdminHandler handles the authenticated operational endpoints
type AdminHandler struct {
	predictor *service.Predictor
	retrainer *service.Retrainer
	runs      RunLister
	logger    *zap.Logger
}

// NewAdminHandler creates a new admin handler. retrainer and runs may be nil
// when no training data source is configured.
func NewAdminHandler(predictor *service.Predictor, retrainer *service.Retrainer, runs RunLister, logger *zap.Logger) *AdminHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AdminHandler{predictor: predictor, retrainer: retrainer, runs: runs, logger: logger}
}

// Reload handles POST /api/admin/reload
func (h *AdminHandler) Reload(c *gin.Context) {
	st, err := h.predictor.Reload()
	data := gin.H{"status": st.Status()}
	if err != nil {
		data["warning"] = err.Error()
	}
	h.logger.Info("reload requested", zap.String("user", c.GetString(middleware.ContextUserKey)), zap.String("mode", st.Mode()))
	response.Success(c, data)
}

// Retrain handles POST /api/admin/retrain
func (h *AdminHandler) Retrain(c *gin.Context) {
	if h.retrainer == nil {
		response.Error(c, http.StatusServiceUnavailable, "training data source not configured")
		return
	}

	if err := h.retrainer.Start(c.Request.Context()); err != nil {
		if errors.Is(err, service.ErrRetrainRunning) {
			response.Conflict(c, err.Error())
			return
		}
		response.InternalError(c, err.Error())
		return
	}
	h.logger.Info("retrain requested", zap.String("user", c.GetString(middleware.ContextUserKey)))
	response.Accepted(c, gin.H{"started": true})
}

// TrainingRuns handles GET /api/admin/training-runs
func (h *AdminHandler) TrainingRuns(c *gin.Context) {
	if h.runs == nil {
		response.Error(c, http.StatusServiceUnavailable, "training data source not configured")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultRunLimit)))
	if err != nil || limit < 1 {
		response.BadRequest(c, "Invalid limit parameter")
		return
	}
	limit = min(limit, maxRunLimit)

	runs, err := h.runs.List(c.Request.Context(), limit)
	if err != nil {
		response.InternalError(c, err.Error())
		return
	}
	response.Success(c, runs)
}
