package server

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"fjacquet/finance-dashboard/internal/aggregate"
	"fjacquet/finance-dashboard/internal/common"
	"fjacquet/finance-dashboard/internal/filter"
	"fjacquet/finance-dashboard/internal/logging"
	"fjacquet/finance-dashboard/internal/models"
	"fjacquet/finance-dashboard/internal/report"
	"fjacquet/finance-dashboard/internal/validation"
)

// criteria parses the filter query parameters of the request.
func criteria(c *gin.Context) (filter.Criteria, error) {
	params := make(map[string]string, len(filter.Params))
	for _, p := range filter.Params {
		params[p] = c.Query(p)
	}
	return filter.ParseCriteria(params)
}

func (s *Server) filtered(c *gin.Context) ([]*models.Transaction, bool) {
	crit, err := criteria(c)
	if err != nil {
		badRequest(c, err)
		return nil, false
	}
	txs, err := filter.Load(c.Request.Context(), s.store, crit)
	if err != nil {
		s.abort(c, err)
		return nil, false
	}
	return txs, true
}

func (s *Server) listTransactions(c *gin.Context) {
	txs, ok := s.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, txs)
}

func (s *Server) exportTransactions(c *gin.Context) {
	txs, ok := s.filtered(c)
	if !ok {
		return
	}
	rows := make([]models.Transaction, len(txs))
	for i, tx := range txs {
		rows[i] = *tx
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Status(http.StatusOK)
	if err := common.WriteTransactionsCSV(c.Writer, rows, s.delimiter); err != nil {
		s.logger.WithError(err).Error("Failed to stream CSV export")
	}
}

func (s *Server) deleteTransaction(c *gin.Context) {
	id := c.Param("id")
	if err := validation.ValidateID(id); err != nil {
		badRequest(c, err)
		return
	}
	if err := s.store.DeleteTransaction(c.Request.Context(), id); err != nil {
		s.abort(c, err)
		return
	}
	s.logger.Info("Deleted transaction", logging.F(logging.FieldTransaction, id))
	c.Status(http.StatusNoContent)
}

func (s *Server) summary(c *gin.Context) {
	by, err := report.ParseDimension(c.Param("by"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	absolute, err := boolQuery(c, "absolute")
	if err != nil {
		badRequest(c, err)
		return
	}
	members, err := boolQuery(c, "members")
	if err != nil {
		badRequest(c, err)
		return
	}

	txs, ok := s.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report.Build(txs, by, absolute, members))
}

func (s *Server) stats(c *gin.Context) {
	txs, ok := s.filtered(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, aggregate.StatisticsOf(txs))
}

func boolQuery(c *gin.Context, name string) (bool, error) {
	v := c.Query(name)
	if v == "" {
		return false, nil
	}
	return strconv.ParseBool(v)
}
