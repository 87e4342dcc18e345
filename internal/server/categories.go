package server

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/validation"
)

func bindCategory(c *gin.Context) (models.CategoryInput, bool) {
	var in models.CategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		badRequest(c, fmt.Errorf("invalid request body: %w", err))
		return in, false
	}
	if err := in.Validate(); err != nil {
		badRequest(c, err)
		return in, false
	}
	return in, true
}

func (s *Server) listCategories(c *gin.Context) {
	cats, err := s.store.ListCategories(c.Request.Context())
	if err != nil {
		s.abort(c, err)
		return
	}
	if cats == nil {
		cats = []models.Category{}
	}
	c.JSON(http.StatusOK, cats)
}

func (s *Server) createCategory(c *gin.Context) {
	in, ok := bindCategory(c)
	if !ok {
		return
	}
	created, err := s.store.CreateCategory(c.Request.Context(), in)
	if err != nil {
		s.abort(c, err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (s *Server) updateCategory(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		badRequest(c, err)
		return
	}
	in, ok := bindCategory(c)
	if !ok {
		return
	}
	updated, err := s.store.UpdateCategory(c.Request.Context(), id, in)
	if err != nil {
		s.abort(c, err)
		return
	}
	s.logger.Info("Updated category", logging.F(logging.FieldCategoryID, id))
	c.JSON(http.StatusOK, updated)
}

func (s *Server) deleteCategory(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.store.DeleteCategory(c.Request.Context(), id); err != nil {
		s.abort(c, err)
		return
	}
	s.logger.Info("Deleted category", logging.F(logging.FieldCategoryID, id))
	c.Status(http.StatusNoContent)
}
