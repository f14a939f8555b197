package router

import "github.com/gin-gonic/gin"

// Module registers a feature's routes on the registry's group (the API prefix).
type Module interface {
	Register(rg *gin.RouterGroup)
}
