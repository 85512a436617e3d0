package routes

import (
	"time"

	"homeserve/handlers"
	"homeserve/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options carries what the router needs besides the handlers.
type Options struct {
	JWTSecret []byte
	Gatherer  prometheus.Gatherer
}

// RegisterWizardRoutes registers the booking wizard and its confirmation handoff.
func RegisterWizardRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	wizard := api.Group("/booking/wizard")
	{
		wizard.POST("", hb.Wizard.Start)
		wizard.GET("/:id", hb.Wizard.Get)
		wizard.PATCH("/:id", hb.Wizard.Update)
		wizard.DELETE("/:id", hb.Wizard.Cancel)
		wizard.PUT("/:id/step", hb.Wizard.UpdateStep)
		wizard.POST("/:id/next", hb.Wizard.Next)
		wizard.POST("/:id/back", hb.Wizard.Back)
		wizard.POST("/:id/promo", hb.Wizard.ApplyPromo)
		wizard.POST("/:id/photos", hb.Wizard.UploadPhoto)
		wizard.POST("/:id/submit", hb.Wizard.Submit)
	}
	api.GET("/booking/confirmation/:token", hb.Wizard.Confirmation)
}

func RegisterCatalogRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	catalog := api.Group("/catalog")
	{
		catalog.GET("/services", hb.Catalog.Services)
		catalog.GET("/professionals", hb.Catalog.Professionals)
		catalog.GET("/slots", hb.Catalog.Slots)
	}
}

func RegisterProviderRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	providers := api.Group("/providers")
	{
		providers.GET("/compare", hb.Providers.Compare)
		providers.GET("/saved", hb.Providers.ListSaved)
		providers.POST("/saved", hb.Providers.Save)
		providers.DELETE("/saved/:id", hb.Providers.Unsave)
	}
}

func RegisterNotesRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	notes := api.Group("/notes")
	{
		notes.GET("", hb.Notes.List)
		notes.POST("", hb.Notes.Create)
		notes.GET("/:id", hb.Notes.Get)
		notes.PATCH("/:id", hb.Notes.Update)
		notes.DELETE("/:id", hb.Notes.Delete)
	}
}

func RegisterBookingRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	bookings := api.Group("/bookings")
	{
		bookings.GET("", hb.Bookings.List)
		bookings.GET("/:id", hb.Bookings.Get)
		bookings.GET("/:id/tracking", hb.Bookings.Tracking)
		bookings.POST("/:id/payment-intent", hb.Bookings.PaymentIntent)
	}
}

func RegisterChatRoutes(api *gin.RouterGroup, hb *handlers.HandlerBundle) {
	chat := api.Group("/chat/conversations")
	{
		chat.POST("", hb.Chat.Open)
		chat.GET("/:id", hb.Chat.History)
		chat.PUT("/:id/draft", hb.Chat.SaveDraft)
		chat.POST("/:id/messages", hb.Chat.Send)
		chat.GET("/:id/ws", hb.Chat.Live)
	}
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, opts Options) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type", "X-Device-ID", "X-Request-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID", "Location"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", hb.Health.Health)
	if opts.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{})))
	}

	api := r.Group("/api")
	api.Use(middleware.Identity(opts.JWTSecret))
	RegisterWizardRoutes(api, hb)
	RegisterCatalogRoutes(api, hb)
	RegisterProviderRoutes(api, hb)
	RegisterNotesRoutes(api, hb)
	RegisterBookingRoutes(api, hb)
	RegisterChatRoutes(api, hb)
}
