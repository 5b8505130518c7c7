package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/mmaaza/surgical-mart-sub001/auth"
	"github.com/mmaaza/surgical-mart-sub001/controllers"
	"github.com/mmaaza/surgical-mart-sub001/middleware"
)

// Register wires the storefront routes. Cart and checkout require a
// signed-in shopper; session endpoints do not.
func Register(
	r *gin.Engine,
	session *auth.Session,
	sessionC *controllers.SessionController,
	cartC *controllers.CartController,
	checkoutC *controllers.CheckoutController,
) {
	r.POST("/session/login", sessionC.Login)
	r.POST("/session/logout", sessionC.Logout)
	r.GET("/session/me", sessionC.Me)

	authed := r.Group("/", middleware.RequireAuth(session))

	cartGroup := authed.Group("/cart")
	{
		cartGroup.GET("", cartC.GetCart)
		cartGroup.POST("/refresh", cartC.Refresh)
		cartGroup.POST("/items", cartC.AddItem)
		cartGroup.PATCH("/items/:line_id", cartC.UpdateQuantity)
		cartGroup.DELETE("/items/:line_id", cartC.RemoveItem)
		cartGroup.DELETE("", cartC.ClearCart)
		cartGroup.POST("/cleanup", cartC.CleanupInvalid)
	}

	checkoutGroup := authed.Group("/checkout")
	{
		checkoutGroup.POST("/begin", checkoutC.Begin)
		checkoutGroup.GET("", checkoutC.State)
		checkoutGroup.POST("/shipping/proceed", checkoutC.ProceedToShipping)
		checkoutGroup.POST("/shipping", checkoutC.SubmitShipping)
		checkoutGroup.POST("/back", checkoutC.Back)
		checkoutGroup.POST("/complete", checkoutC.Complete)
	}
}
