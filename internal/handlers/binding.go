package handlers

import (
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stwalsh4118/underwriter/internal/models"
)

func init() {
	// Report bound fields by their JSON names, same as model validation.
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		models.RegisterValidators(v)
	}
}
