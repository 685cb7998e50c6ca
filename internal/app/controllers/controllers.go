// Package controllers handles HTTP request handling. Handlers bind input,
// call one service operation and render the result; all rules live in services.
package controllers

import (
	"net/http"

	"github.com/alumniconnect/platform/internal/app/models/dto"
	"github.com/alumniconnect/platform/internal/middleware"
	"github.com/gin-gonic/gin"
)

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data, ""))
}

func created(c *gin.Context, data interface{}, message string) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data, message))
}

func done(c *gin.Context, message string) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(nil, message))
}

// reply renders data, or the error mapped by middleware.HandleAPIError.
func reply(c *gin.Context, data interface{}, err error) {
	if err != nil {
		middleware.HandleAPIError(c, err)
		return
	}
	success(c, data)
}
