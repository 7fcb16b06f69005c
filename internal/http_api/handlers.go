package http_api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/solpay-io/solpay/internal/auth"
	"github.com/solpay-io/solpay/internal/metrics"
	"github.com/solpay-io/solpay/internal/models"
	"github.com/solpay-io/solpay/internal/payment"
	"github.com/solpay-io/solpay/internal/verification"
)

// GeneratePaymentRequest represents the JSON body for QR generation.
// Amount is a decimal SOL value.
type GeneratePaymentRequest struct {
	Amount          json.Number `json:"amount" binding:"required"`
	RecipientWallet string      `json:"recipientWallet" binding:"required"`
}

// VerifyPaymentRequest represents the JSON body for payment verification.
// Amount is in lamports, the ledger's smallest unit.
type VerifyPaymentRequest struct {
	TransactionSignature string `json:"transactionSignature" binding:"required"`
	RecipientWallet      string `json:"recipientWallet" binding:"required"`
	Amount               uint64 `json:"amount" binding:"required"`
	UserEmail            string `json:"userEmail" binding:"required,email"`
	DeveloperAPIKey      string `json:"developerApiKey" binding:"required"`
	UserWallet           string `json:"userWallet" binding:"required"`
	PlanID               string `json:"planId" binding:"required"`
}

// RegisterDeveloperRequest represents the JSON body for developer registration
type RegisterDeveloperRequest struct {
	Email            string `json:"email" binding:"required,email"`
	CompanyName      string `json:"companyName" binding:"required"`
	Password         string `json:"password" binding:"required,min=6"`
	TelegramUsername string `json:"telegramUsername"`
}

// RegisterDeveloperResponse represents the success response for registration
type RegisterDeveloperResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	APIKey  string `json:"apiKey"`
}

// LoginDeveloperRequest represents the JSON body for developer login
type LoginDeveloperRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// LoginDeveloperResponse represents the success response for login
type LoginDeveloperResponse struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Token     string            `json:"token"`
	Developer *models.Developer `json:"developer"`
}

// generatePaymentRequest builds a Solana Pay URI and returns it as an SVG
// QR code.
func (s *HTTPServer) generatePaymentRequest(c *gin.Context) {
	var req GeneratePaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		metrics.PaymentRequestsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Missing required fields: amount or recipientWallet",
		})
		return
	}

	uri, err := s.uriBuilder.Build(req.RecipientWallet, req.Amount.String())
	if err != nil {
		s.logger.Debug("Invalid payment request", "error", err)
		metrics.PaymentRequestsTotal.WithLabelValues("invalid").Inc()
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   err.Error(),
		})
		return
	}

	svg, err := payment.RenderSVG(uri)
	if err != nil {
		s.logger.Error("Failed to render QR code", "error", err)
		metrics.PaymentRequestsTotal.WithLabelValues("error").Inc()
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to render QR code",
		})
		return
	}

	metrics.PaymentRequestsTotal.WithLabelValues("ok").Inc()
	c.Data(http.StatusOK, "image/svg+xml", svg)
}

// verifyPayment runs the payment verification workflow.
func (s *HTTPServer) verifyPayment(c *gin.Context) {
	var req VerifyPaymentRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	result, err := s.verifier.Verify(c.Request.Context(), &models.VerificationRequest{
		TransactionSignature: req.TransactionSignature,
		RecipientWallet:      req.RecipientWallet,
		Amount:               req.Amount,
		UserEmail:            req.UserEmail,
		DeveloperAPIKey:      req.DeveloperAPIKey,
		UserWallet:           req.UserWallet,
		PlanID:               req.PlanID,
	})
	if err != nil {
		s.respondVerificationError(c, err)
		return
	}

	message := "Payment verified and user recorded"
	if result.AlreadyRecorded {
		message = "Payment already verified"
	}
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": message,
	})
}

// respondVerificationError maps workflow failure states to HTTP statuses.
func (s *HTTPServer) respondVerificationError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, verification.ErrDeveloperNotFound):
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": err.Error()})
	case errors.Is(err, verification.ErrMissingFields),
		errors.Is(err, verification.ErrTimeout),
		errors.Is(err, verification.ErrSenderMismatch),
		errors.Is(err, verification.ErrValidationFailed):
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
	default:
		s.logger.Error("Payment verification failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Payment verification failed",
		})
	}
}

// registerDeveloper creates a developer account and mints its API key.
func (s *HTTPServer) registerDeveloper(c *gin.Context) {
	var req RegisterDeveloperRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		s.logger.Error("Failed to hash password", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to register developer",
		})
		return
	}

	apiKey, err := auth.NewAPIKey()
	if err != nil {
		s.logger.Error("Failed to generate API key", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to register developer",
		})
		return
	}

	developer := &models.Developer{
		Email:            strings.ToLower(req.Email),
		CompanyName:      req.CompanyName,
		PasswordHash:     passwordHash,
		APIKey:           apiKey,
		TelegramUsername: req.TelegramUsername,
	}

	if err := s.repo.CreateDeveloper(developer); err != nil {
		s.logger.Error("Failed to create developer", "error", err, "email", req.Email)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to register developer",
		})
		return
	}

	s.logger.Info("Developer registered", "email", developer.Email, "company", developer.CompanyName)
	c.JSON(http.StatusCreated, RegisterDeveloperResponse{
		Success: true,
		Message: "Developer registered successfully",
		APIKey:  apiKey,
	})
}

// loginDeveloper checks credentials and issues a session token.
func (s *HTTPServer) loginDeveloper(c *gin.Context) {
	var req LoginDeveloperRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		s.logger.Debug("Invalid request body", "error", err)
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid request body: " + err.Error(),
		})
		return
	}

	developer, err := s.repo.GetDeveloperByEmail(strings.ToLower(req.Email))
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Developer not found",
			})
			return
		}
		s.logger.Error("Failed to get developer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to log in",
		})
		return
	}

	if !auth.CheckPasswordHash(req.Password, developer.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Invalid credentials",
		})
		return
	}

	token, err := s.tokens.Issue(developer)
	if err != nil {
		s.logger.Error("Failed to issue token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to log in",
		})
		return
	}

	c.JSON(http.StatusOK, LoginDeveloperResponse{
		Success:   true,
		Message:   "Logged in successfully",
		Token:     token,
		Developer: developer,
	})
}

// logout revokes the presented bearer token for its remaining lifetime.
func (s *HTTPServer) logout(c *gin.Context) {
	header := c.GetHeader("Authorization")
	token, found := strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Bearer token is required",
		})
		return
	}

	claims, err := s.tokens.Verify(token)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "Invalid token",
		})
		return
	}

	// Revocations must be checked, not just written: a replayed token is
	// an expired credential.
	revoked, err := s.revocation.IsRevoked(c.Request.Context(), claims.ID)
	if err != nil {
		s.logger.Error("Failed to check token revocation", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to log out",
		})
		return
	}
	if revoked {
		c.JSON(http.StatusUnauthorized, gin.H{
			"success": false,
			"error":   "Token has been revoked",
		})
		return
	}

	if err := s.revocation.Revoke(c.Request.Context(), claims.ID, claims.RemainingTTL()); err != nil {
		s.logger.Error("Failed to revoke token", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to log out",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Logged out successfully",
	})
}

// getVerifiedPayments lists the subscribers recorded under the developer
// resolved from the API key.
func (s *HTTPServer) getVerifiedPayments(c *gin.Context) {
	apiKey := c.Query("developerApiKey")
	if apiKey == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"error":   "developerApiKey is required",
		})
		return
	}

	developer, err := s.repo.GetDeveloperByAPIKey(apiKey)
	if err != nil {
		if errors.Is(err, models.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"error":   "Developer not found",
			})
			return
		}
		s.logger.Error("Failed to get developer", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to get verified payments",
		})
		return
	}

	users, err := s.repo.ListSubscribers(developer.ID)
	if err != nil {
		s.logger.Error("Failed to list subscribers", "error", err, "developer", developer.ID)
		c.JSON(http.StatusInternalServerError, gin.H{
			"success": false,
			"error":   "Failed to get verified payments",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"users":   users,
	})
}
