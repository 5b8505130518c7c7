package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mmaaza/surgical-mart-sub001/auth"
	"github.com/mmaaza/surgical-mart-sub001/cart"
)

// SessionController activates and tears down the shopper session. On login
// the cart is restored from the snapshot cache, reconciled against the
// gateway, and the background invalid-item sweep starts for the session's
// lifetime.
type SessionController struct {
	session *auth.Session
	manager *cart.Manager
	sweeper *cart.Sweeper
	logger  *zap.Logger
}

// NewSessionController creates a session controller.
func NewSessionController(session *auth.Session, manager *cart.Manager, sweeper *cart.Sweeper, logger *zap.Logger) *SessionController {
	return &SessionController{session: session, manager: manager, sweeper: sweeper, logger: logger}
}

type loginPayload struct {
	Token string `json:"token" binding:"required"`
}

// Login validates the access token and brings the cart up.
func (sc *SessionController) Login(c *gin.Context) {
	var payload loginPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid payload"})
		return
	}

	user, err := sc.session.Login(payload.Token)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	if sc.manager.RestoreSnapshot(ctx) {
		sc.logger.Info("cart restored from snapshot cache", zap.String("user_id", user.ID))
	}
	if err := sc.manager.Fetch(ctx); err != nil {
		// Not fatal; the next cart read retries.
		sc.logger.Warn("initial cart fetch failed", zap.Error(err))
	}

	go sc.sweeper.Run(sc.session.Context())

	c.JSON(http.StatusOK, gin.H{"user": user})
}

// Logout clears the session, which also stops the background sweep.
func (sc *SessionController) Logout(c *gin.Context) {
	sc.session.Logout()
	c.JSON(http.StatusOK, gin.H{"message": "signed out"})
}

// Me returns the signed-in user.
func (sc *SessionController) Me(c *gin.Context) {
	user := sc.session.CurrentUser()
	if user == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not signed in"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": user})
}
