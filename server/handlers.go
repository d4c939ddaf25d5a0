package server

import (
	"fmt"
	"net/http"

	"github.com/etnz/papertrade"
	"github.com/etnz/papertrade/yahoo"
	"github.com/gin-gonic/gin"
)

// tradeRequest is the query payload of /buy and /sell.
type tradeRequest struct {
	Ticker   string `form:"ticker" binding:"required"`
	Quantity int64  `form:"quantity" binding:"required,gt=0"`
}

// tradeResponse is the success payload of /buy and /sell.
type tradeResponse struct {
	Message          string           `json:"message"`
	RemainingCapital papertrade.Money `json:"remaining_capital"`
	TotalValue       papertrade.Money `json:"total_value"`
	Portfolio        map[string]int64 `json:"portfolio"`
}

// handleSearch returns the symbol and name of the best match for a query.
func (s *Server) handleSearch(c *gin.Context) {
	query := papertrade.NormalizeSymbol(c.Param("query"))

	results, err := s.search.Search(c.Request.Context(), query)
	if err != nil {
		DomainError(c, err)
		return
	}
	if len(results) == 0 {
		Error(c, http.StatusNotFound, ErrCodeNotFound, "No data found for query")
		return
	}

	best := results[0]
	c.JSON(http.StatusOK, gin.H{"symbol": best.Symbol, "name": best.Name()})
}

// handleHistoricalData fetches a symbol's daily series and stores it in the
// bar cache as a CSV file.
func (s *Server) handleHistoricalData(c *gin.Context) {
	ticker := papertrade.NormalizeSymbol(c.Param("ticker"))
	period := c.DefaultQuery("period", yahoo.DefaultPeriod)
	if !yahoo.ValidPeriod(period) {
		Error(c, http.StatusBadRequest, ErrCodeInvalidParameter,
			fmt.Sprintf("invalid period %q, expected one of %v", period, yahoo.ValidPeriods()))
		return
	}

	if _, err := s.sim.FetchHistory(c.Request.Context(), ticker, period); err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("Data saved to %s", s.sim.Cache().Path(ticker))})
}

func (s *Server) handleBuy(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
		return
	}

	cash, holdings, err := s.sim.Buy(c.Request.Context(), req.Ticker, req.Quantity)
	if err != nil {
		DomainError(c, err)
		return
	}

	total, err := s.sim.Valuation(c.Request.Context())
	if err != nil {
		// The purchase is already committed; only the valuation in the
		// response failed.
		DomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tradeResponse{
		Message:          fmt.Sprintf("Bought %d shares of %s", req.Quantity, papertrade.NormalizeSymbol(req.Ticker)),
		RemainingCapital: cash,
		TotalValue:       total,
		Portfolio:        holdings,
	})
}

func (s *Server) handleSell(c *gin.Context) {
	var req tradeRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		Error(c, http.StatusBadRequest, ErrCodeInvalidParameter, err.Error())
		return
	}

	cash, holdings, err := s.sim.Sell(c.Request.Context(), req.Ticker, req.Quantity)
	if err != nil {
		DomainError(c, err)
		return
	}

	total, err := s.sim.Valuation(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, tradeResponse{
		Message:          fmt.Sprintf("Sold %d shares of %s", req.Quantity, papertrade.NormalizeSymbol(req.Ticker)),
		RemainingCapital: cash,
		TotalValue:       total,
		Portfolio:        holdings,
	})
}

// handlePortfolio returns the raw ledger: holdings and remaining cash.
func (s *Server) handlePortfolio(c *gin.Context) {
	cash, holdings := s.sim.Ledger()
	c.JSON(http.StatusOK, gin.H{"portfolio": holdings, "remaining_capital": cash})
}

// handlePortfolioValue returns the live market value of the holdings,
// excluding cash. One failed quote fails the whole call: a partial total
// would silently understate the portfolio.
func (s *Server) handlePortfolioValue(c *gin.Context) {
	total, err := s.sim.Valuation(c.Request.Context())
	if err != nil {
		DomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"total_value": total})
}
