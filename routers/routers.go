package routers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/moebelhaus/shop-backend/handlers"
	"github.com/moebelhaus/shop-backend/middleware"
)

func corsConfig(h *handlers.Handler) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept-Language"},
		ExposeHeaders:    []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	switch {
	case containsWildcard(h.Server.AllowOrigins):
		//允許任何來源並回傳請求的 Origin，才能搭配 cookie
		cfg.AllowOriginFunc = func(string) bool { return true }
	case len(h.Server.AllowOrigins) > 0:
		cfg.AllowOrigins = h.Server.AllowOrigins
	case h.Server.PublicBaseURL != "":
		cfg.AllowOrigins = []string{h.Server.PublicBaseURL}
	default:
		cfg.AllowAllOrigins = true
		cfg.AllowCredentials = false
	}
	return cfg
}

func containsWildcard(origins []string) bool {
	for _, origin := range origins {
		if origin == "*" {
			return true
		}
	}
	return false
}

func SetupRouters(h *handlers.Handler) *gin.Engine {
	//建立Gin路由器
	router := gin.New()
	router.Use(middleware.RequestLogger(h.Log), gin.Recovery())
	router.Use(cors.New(corsConfig(h)))
	_ = router.SetTrustedProxies(nil)

	//設定商品圖片靜態資源路徑
	uploadsDir := h.Server.UploadsDir
	if uploadsDir == "" {
		uploadsDir = "./uploads"
	}
	router.Static("/uploads", uploadsDir)

	//健康檢查
	router.GET("/health", h.HealthHandler)

	api := router.Group("/api/v1")
	//Stripe webhook 不經過登入驗證，以簽章驗證
	api.POST("/webhooks/stripe", h.StripeWebhookHandler)

	////無須權限，使用中間件檢查是否登入
	public := api.Group("")
	public.Use(middleware.AuthMiddleware(h.Auth, h.Store, h.Blacklist, h.Log))
	{
		//查詢分類列表
		public.GET("/categories", h.GetCategoryListHandler)
		//查詢主分類
		public.GET("/categories/main", h.GetMainCategoriesHandler)
		//以slug查詢分類
		public.GET("/categories/slug/:slug", h.GetCategoryBySlugHandler)
		//查詢分類詳細資料
		public.GET("/categories/:categoryID", h.GetCategoryDataHandler)
		//查詢子分類
		public.GET("/categories/:categoryID/subcategories", h.GetSubcategoriesHandler)
		//查詢商品列表
		public.GET("/products", h.GetProductListHandler)
		//以slug查詢商品
		public.GET("/products/slug/:slug", h.GetProductBySlugHandler)
		//查詢商品詳細資料
		public.GET("/products/:productID", h.GetProductDataHandler)
		//查詢目前登入的使用者
		public.GET("/auth/me", h.GetUserProfileHandler)
		//登出
		public.POST("/auth/logout", h.LogOutHandler)

		////需要登入，使用中間件檢查是否登入
		loginRequired := public.Group("")
		loginRequired.Use(middleware.CheckLoginMiddleware())
		{
			//查詢購物車商品
			loginRequired.GET("/cart", h.GetCartHandler)
			//新增商品至購物車
			loginRequired.POST("/cart", h.AddToCartHandler)
			//刪除購物車商品
			loginRequired.DELETE("/cart/:itemID", h.DeleteCartItemHandler)
			//查詢訂單列表
			loginRequired.GET("/orders", h.GetOrderListHandler)
			//查詢訂單詳細資訊
			loginRequired.GET("/orders/:orderID", h.GetOrderDataHandler)
			//建立付款頁面
			loginRequired.POST("/checkout/sessions", h.CreateCheckoutSessionHandler)
			//查詢付款狀態
			loginRequired.GET("/checkout/sessions/:sessionID", h.GetCheckoutSessionHandler)
			//查詢收藏清單
			loginRequired.GET("/wishlist", h.GetWishlistHandler)
			//查詢地址
			loginRequired.GET("/addresses", h.GetAddressesHandler)
			//查詢紅利點數
			loginRequired.GET("/loyalty", h.GetLoyaltyHandler)
			//變更偏好語言
			loginRequired.PATCH("/profile/language", h.UpdateLanguageHandler)
		}

		////需要admin身分，使用中間件檢查是否登入及admin權限
		adminRequired := public.Group("/admin")
		adminRequired.Use(middleware.CheckAdminPermissionMiddleware())
		{
			//查詢使用者列表
			adminRequired.GET("/users", h.GetUserListHandler)
			//修改使用者角色
			adminRequired.PATCH("/users/:userID/role", h.UpdateUserRoleHandler)
			//上傳商品圖片
			adminRequired.POST("/image", h.UploadImageHandler)
			//查詢商品列表
			adminRequired.GET("/products", h.GetAllProductsHandler)
			//新增商品
			adminRequired.POST("/products", h.CreateProductHandler)
			//修改商品
			adminRequired.PATCH("/products/:productID", h.UpdateProductHandler)
			//刪除商品
			adminRequired.DELETE("/products/:productID", h.DeleteProductHandler)
			//新增分類
			adminRequired.POST("/categories", h.CreateCategoryHandler)
			//修改分類
			adminRequired.PATCH("/categories/:categoryID", h.UpdateCategoryHandler)
			//刪除分類
			adminRequired.DELETE("/categories/:categoryID", h.DeleteCategoryHandler)
			//查詢所有訂單
			adminRequired.GET("/orders", h.GetAllOrdersHandler)
			//匯出訂單
			adminRequired.GET("/orders/export", h.ExportOrdersHandler)
			//訂單即時通知
			adminRequired.GET("/orders/ws", h.OrderFeedHandler)
			//標記出貨
			adminRequired.POST("/orders/:orderID/ship", h.ShipOrderHandler)
			//修改訂單狀態
			adminRequired.PATCH("/orders/:orderID/status", h.UpdateOrderStatusHandler)
			//查詢稽核紀錄
			adminRequired.GET("/audit/:entityType/:entityID", h.GetAuditLogsHandler)
		}
	}

	return router
}
