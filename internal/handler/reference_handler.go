package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jengzang/flight-delay-backend-go/internal/reference"
)

// ListAirports handles GET /api/airports
func ListAirports(c *gin.Context) {
	c.JSON(http.StatusOK, reference.Airports())
}

// ListAirlines handles GET /api/airlines
func ListAirlines(c *gin.Context) {
	c.JSON(http.StatusOK, reference.Airlines())
}
