package controller

import (
	"github.com/gofiber/fiber/v2"

	"sphinx_backend/internal/middleware"
	"sphinx_backend/internal/model"
)

// SetupRoutes mounts the API under /api. The Init*Controller functions must have run.
func SetupRoutes(app *fiber.App, auth middleware.Authenticator, uploads *middleware.Uploader) {
	api := app.Group("/api")
	protect := middleware.Protect(auth)
	admin := []fiber.Handler{protect, middleware.RestrictTo(model.RoleAdmin)}
	withAdmin := func(handlers ...fiber.Handler) []fiber.Handler {
		return append(append([]fiber.Handler{}, admin...), handlers...)
	}

	api.Get("/health", Health)

	// Auth
	authRoutes := api.Group("/auth")
	authRoutes.Post("/register", Register)
	authRoutes.Post("/login", Login)
	authRoutes.Get("/logout", Logout)
	authRoutes.Get("/me", protect, GetMe)
	authRoutes.Put("/updatedetails", protect, UpdateDetails)
	authRoutes.Put("/updatepassword", protect, UpdatePassword)

	// Contact form
	contact := api.Group("/contact")
	contact.Post("/", SubmitContact)
	contact.Get("/", withAdmin(ListContacts)...)
	contact.Get("/:id", withAdmin(GetContact)...)
	contact.Put("/:id", withAdmin(UpdateContact)...)
	contact.Delete("/:id", withAdmin(DeleteContact)...)

	// Quote requests
	quote := api.Group("/quote")
	quote.Post("/", uploads.Fields(middleware.UploadField{Name: AttachmentsField, MaxCount: MaxAttachments}), SubmitQuote)
	quote.Get("/", withAdmin(ListQuotes)...)
	quote.Get("/:id", withAdmin(GetQuote)...)
	quote.Put("/:id", withAdmin(UpdateQuote)...)
	quote.Delete("/:id", withAdmin(DeleteQuote)...)

	// Service catalog
	serviceImage := uploads.Fields(middleware.UploadField{Name: ServiceImageField, MaxCount: 1})
	services := api.Group("/services")
	services.Get("/", ListServices)
	services.Get("/categories/all", GetServiceCategories)
	services.Get("/:slug", GetService)
	services.Post("/", withAdmin(serviceImage, CreateService)...)
	services.Put("/:id", withAdmin(serviceImage, UpdateService)...)
	services.Delete("/:id", withAdmin(DeleteService)...)

	// Portfolio
	portfolioImages := uploads.Fields(
		middleware.UploadField{Name: MainImageField, MaxCount: 1},
		middleware.UploadField{Name: GalleryField, MaxCount: MaxGalleryImages},
	)
	portfolio := api.Group("/portfolio")
	portfolio.Get("/", ListPortfolio)
	portfolio.Get("/categories/all", GetPortfolioCategories)
	portfolio.Get("/:slug", GetPortfolio)
	portfolio.Post("/", withAdmin(portfolioImages, CreatePortfolio)...)
	portfolio.Put("/:id", withAdmin(portfolioImages, UpdatePortfolio)...)
	portfolio.Delete("/:id", withAdmin(DeletePortfolio)...)

	// Blog
	featuredImage := uploads.Fields(middleware.UploadField{Name: FeaturedImageField, MaxCount: 1})
	blog := api.Group("/blog")
	blog.Get("/", ListPosts)
	blog.Get("/categories/all", GetBlogCategories)
	blog.Get("/admin/all", withAdmin(ListAllPosts)...)
	blog.Get("/:slug", GetPost)
	blog.Post("/", withAdmin(featuredImage, CreatePost)...)
	blog.Put("/:id", withAdmin(featuredImage, UpdatePost)...)
	blog.Delete("/:id", withAdmin(DeletePost)...)

	// Dashboard
	api.Get("/dashboard/stats", withAdmin(GetDashboardStats)...)
}
