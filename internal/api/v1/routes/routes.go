package routes

import (
	"github.com/gin-gonic/gin"

	"echoscribe/internal/api/v1/handlers"
	"echoscribe/internal/app/repository"
)

// RegisterRoutes wires the v1 endpoints.
func RegisterRoutes(rg *gin.RouterGroup, processor handlers.Processor, db repository.RunDAO) {
	processHandler := handlers.NewProcessHandler(processor)
	runsHandler := handlers.NewRunsHandler(db)

	rg.POST("/process", processHandler.Process)
	rg.GET("/runs", runsHandler.List)
}
