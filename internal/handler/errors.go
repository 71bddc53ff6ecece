package handler

import (
	"errors"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/jengzang/reallocation-screener/internal/loader"
	"github.com/jengzang/reallocation-screener/internal/screening"
	"github.com/jengzang/reallocation-screener/internal/upload"
	"github.com/jengzang/reallocation-screener/pkg/response"
)

// fail maps service errors onto HTTP statuses
func fail(c *gin.Context, logger *zap.Logger, err error) {
	switch {
	case errors.Is(err, screening.ErrNoData):
		response.NotFound(c, screening.ErrNoData.Error())
	case errors.Is(err, screening.ErrInvalidRange), errors.Is(err, upload.ErrMalformed):
		response.BadRequest(c, err.Error())
	case errors.Is(err, loader.ErrMainSourceUnavailable):
		logger.Error("warehouse unavailable", zap.Error(err))
		response.Unavailable(c, err.Error())
	default:
		logger.Error("request failed", zap.String("path", c.FullPath()), zap.Error(err))
		response.InternalError(c, err.Error())
	}
}
