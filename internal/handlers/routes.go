package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ZODIAC3K/refactor-capstone/internal/auth"
	"github.com/ZODIAC3K/refactor-capstone/internal/middleware"
	"github.com/ZODIAC3K/refactor-capstone/internal/settlement"
	"github.com/ZODIAC3K/refactor-capstone/internal/store"
)

// Deps bundles what the routes are served from.
type Deps struct {
	Store      store.Store
	Auth       *auth.Service
	Settlement *settlement.Service
	Cookies    CookieOptions
}

// RegisterRoutes mounts every route on r.
func RegisterRoutes(r gin.IRouter, d Deps) {
	st := d.Store
	userAuth := middleware.UserAuth(d.Auth)
	adminAuth := middleware.AdminAuth()

	r.GET("/healthz", Health(st))

	r.POST("/user", Register(d.Auth))
	r.POST("/login", Login(d.Auth, d.Cookies))
	r.POST("/logout", Logout(d.Auth, d.Cookies))

	r.GET("/category", GetCategories(st))
	r.GET("/product", GetProducts(st))
	r.GET("/review", GetReviews(d.Settlement))

	r.GET("/coupon", GetCoupons(st))
	r.POST("/coupon/verify", VerifyCoupon(st))
	r.GET("/offer", GetOffers(st))
	r.POST("/offer/verify", VerifyOffer(st))

	user := r.Group("/")
	user.Use(userAuth)
	{
		user.GET("/user", GetMe(st))

		user.POST("/order", CreateOrder(d.Settlement))
		user.GET("/order", GetOrders(d.Settlement))
		user.DELETE("/order", DeleteOrder(d.Settlement))

		user.POST("/refund", CreateReturn(d.Settlement))
		user.GET("/refund", GetReturns(d.Settlement))
		user.PATCH("/refund", UpdateReturn(d.Settlement))
		user.DELETE("/refund", DeleteReturn(d.Settlement))

		user.POST("/review", CreateReview(d.Settlement))
		user.PATCH("/review", UpdateReview(d.Settlement))
		user.DELETE("/review", DeleteReview(d.Settlement))

		user.POST("/transaction", CreateTransaction(d.Settlement))
		user.GET("/transaction", GetTransactions(d.Settlement))
		user.PATCH("/transaction", UpdateTransaction(d.Settlement))
		user.DELETE("/transaction", DeleteTransaction(d.Settlement))

		user.POST("/address", CreateUserAddress(st))
		user.GET("/address", GetUserAddresses(st))
		user.GET("/address/active", GetActiveAddress(st))
		user.PATCH("/address", UpdateUserAddress(st))
		user.DELETE("/address", DeleteUserAddress(st))

		user.POST("/coupon", adminAuth, CreateCoupon(st))
		user.PATCH("/coupon", adminAuth, UpdateCoupon(st))
		user.DELETE("/coupon", adminAuth, DeleteCoupon(st))

		user.POST("/offer", adminAuth, CreateOffer(st))
		user.PATCH("/offer", adminAuth, UpdateOffer(st))
		user.DELETE("/offer", adminAuth, DeleteOffer(st))
	}

	admin := r.Group("/admin")
	admin.Use(userAuth, adminAuth)
	{
		admin.GET("/order", GetAllOrders(d.Settlement))
		admin.PATCH("/order", UpdateOrderStatus(d.Settlement))

		admin.GET("/refund", GetAllReturns(d.Settlement))
		admin.PATCH("/refund", ReviewReturn(d.Settlement))

		admin.GET("/transaction", GetAllTransactions(d.Settlement))

		admin.GET("/category", GetAllCategories(st))
		admin.POST("/category", CreateCategory(st))
		admin.PATCH("/category/:id", UpdateCategory(st))
		admin.DELETE("/category/:id", DeleteCategory(st))

		admin.GET("/product", GetAllProducts(st))
		admin.POST("/product", CreateProduct(st))
		admin.PATCH("/product/:id", UpdateProduct(st))

		admin.PATCH("/user", SetUserStatus(d.Auth))

		admin.GET("/creator", GetCreators(st))
		admin.POST("/creator", CreateCreator(st))

		admin.GET("/settlement/creator", GetCreatorSettlement(d.Settlement))
		admin.POST("/settlement/reconcile", ReconcileSettlement(d.Settlement))
	}
}
