package v1

import (
	"net/http"

	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/config"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/internal/service"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/auth"
	"github.com/dmehra2102/prod-golang-projects/pharmaflow/pkg/metrics"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Services struct {
	Auth          *service.AuthService
	Inventory     *service.InventoryService
	Clinic        *service.ClinicService
	Prescriptions *service.PrescriptionService
	Dispensing    *service.DispensingService
	Storefront    *service.StorefrontService
}

type RouterConfig struct {
	App    config.AppConfig
	Server config.ServerConfig
	CORS   config.CORSConfig
}

// NewRouter mounts the v1 API under /api/v1 together with /health and
// /metrics. Role checks live in the services; the router only decides
// whether a token is required.
func NewRouter(cfg RouterConfig, svcs Services, jwtm *auth.JWTManager, m *metrics.Collector, log *zap.Logger) *gin.Engine {
	if cfg.App.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(
		Recovery(log),
		RequestID(),
		Tracing(cfg.App.Name),
		Metrics(m),
		Logger(log),
		SecurityHeaders(),
		CORS(cfg.CORS),
	)

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "version": cfg.App.Version})
	})
	if m != nil {
		r.GET("/metrics", gin.WrapH(m.Handler()))
	}

	authH := NewAuthHandler(svcs.Auth)
	inventoryH := NewInventoryHandler(svcs.Inventory)
	clinicH := NewClinicHandler(svcs.Clinic)
	rxH := NewPrescriptionHandler(svcs.Prescriptions, svcs.Dispensing)
	shopH := NewStorefrontHandler(svcs.Storefront)

	api := r.Group("/api/v1")

	public := api.Group("/auth", RateLimit(cfg.Server.AuthRateLimit, cfg.Server.AuthRateBurst))
	public.POST("/register", authH.Register)
	public.POST("/login", authH.Login)
	public.POST("/refresh", authH.Refresh)

	shop := api.Group("/shop")
	{
		browse := shop.Group("", Authenticate(jwtm, false))
		browse.GET("/products", shopH.Catalogue)
		browse.GET("/products/:id", shopH.Product)

		member := shop.Group("", Authenticate(jwtm, true))
		member.POST("/products", shopH.ListProduct)
		member.PATCH("/products/:id", shopH.UpdateListing)
		member.DELETE("/products/:id", shopH.RemoveListing)

		member.GET("/cart", shopH.Cart)
		member.POST("/cart/items", shopH.AddToCart)
		member.PATCH("/cart/items/:itemId", shopH.SetCartQuantity)
		member.DELETE("/cart/items/:itemId", shopH.RemoveFromCart)
		member.POST("/checkout", shopH.Checkout)

		member.GET("/orders", shopH.Orders)
		member.GET("/orders/:id", shopH.Order)
		member.PATCH("/orders/:id/status", shopH.UpdateOrderStatus)
	}

	secured := api.Group("", Authenticate(jwtm, true))
	secured.POST("/auth/password", authH.ChangePassword)
	secured.POST("/users", authH.CreateUser)

	meds := secured.Group("/medicines")
	{
		meds.GET("", inventoryH.ListMedicines)
		meds.POST("", inventoryH.CreateMedicine)
		meds.GET("/:id", inventoryH.GetMedicine)
		meds.PATCH("/:id", inventoryH.UpdateMedicine)
		meds.DELETE("/:id", inventoryH.DeleteMedicine)
		meds.GET("/:id/history", inventoryH.MedicineHistory)
		meds.POST("/:id/restock", inventoryH.RestockMedicine)
	}
	secured.GET("/inventory/alerts", inventoryH.Alerts)

	goods := secured.Group("/goods")
	{
		goods.GET("", inventoryH.ListGoods)
		goods.POST("", inventoryH.CreateGoods)
		goods.GET("/:id", inventoryH.GetGoods)
		goods.PATCH("/:id", inventoryH.UpdateGoods)
		goods.DELETE("/:id", inventoryH.DeleteGoods)
		goods.POST("/:id/restock", inventoryH.RestockGoods)
	}

	patients := secured.Group("/patients")
	{
		patients.GET("", clinicH.ListPatients)
		patients.POST("", clinicH.CreatePatient)
		patients.GET("/:id", clinicH.GetPatient)
		patients.PATCH("/:id", clinicH.UpdatePatient)
		patients.DELETE("/:id", clinicH.DeletePatient)
	}

	doctors := secured.Group("/doctors")
	{
		doctors.GET("", clinicH.ListDoctors)
		doctors.POST("", clinicH.CreateDoctor)
		doctors.GET("/:id", clinicH.GetDoctor)
		doctors.PATCH("/:id", clinicH.UpdateDoctor)
		doctors.DELETE("/:id", clinicH.DeleteDoctor)
	}

	rx := secured.Group("/prescriptions")
	{
		rx.GET("", rxH.List)
		rx.POST("", rxH.Create)
		rx.GET("/:id", rxH.Get)
		rx.PATCH("/:id", rxH.Update)
		rx.DELETE("/:id", rxH.Delete)
		rx.GET("/:id/pdf", rxH.PDF)
		rx.POST("/:id/validate", rxH.Validate)
		rx.POST("/:id/mark-paid", rxH.MarkPaid)
		rx.POST("/:id/payment", rxH.RecordPayment)
		rx.DELETE("/:id/payment", rxH.CancelPayment)

		rx.POST("/:id/items", rxH.AddItem)
		rx.PATCH("/:id/items/:itemId", rxH.UpdateItem)
		rx.DELETE("/:id/items/:itemId", rxH.RemoveItem)
	}

	interactions := secured.Group("/interactions")
	{
		interactions.GET("", rxH.ListInteractions)
		interactions.POST("", rxH.AddInteraction)
		interactions.DELETE("/:id", rxH.DeleteInteraction)
	}

	return r
}
