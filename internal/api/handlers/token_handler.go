package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/skillswap/backend/internal/services"
)

type TokenHandler struct {
	svc services.TokenService
}

func NewTokenHandler(svc services.TokenService) *TokenHandler {
	return &TokenHandler{svc: svc}
}

type WalletResponse struct {
	UserID  uint `json:"user_id"`
	Balance int  `json:"balance"`
}

// InitWallet provisions a wallet with the initial allocation. Conflict
// when the user already has one.
func (h *TokenHandler) InitWallet(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	wallet, err := h.svc.InitializeWallet(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, WalletResponse{
		UserID:  wallet.UserID,
		Balance: wallet.Balance,
	})
}

func (h *TokenHandler) Balance(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	balance, err := h.svc.GetBalance(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, WalletResponse{UserID: userID, Balance: balance})
}

func (h *TokenHandler) Transactions(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 20)
	offset := intQuery(c, "offset", 0)

	entries, err := h.svc.TransactionHistory(c.Request.Context(), userID, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"transactions": entries,
		"count":        len(entries),
	})
}

func (h *TokenHandler) Eligibility(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	eligibility, err := h.svc.CanBook(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, eligibility)
}

func (h *TokenHandler) Statistics(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	stats, err := h.svc.UserStatistics(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Circulation sums completed transactions across all wallets. Admin only.
func (h *TokenHandler) Circulation(c *gin.Context) {
	total, err := h.svc.TokensInCirculation(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"tokens_in_circulation": total})
}
