package routes

import (
	"github.com/gofiber/fiber/v2"

	"schulgeld-backend/controllers"
	"schulgeld-backend/middlewares"
)

// Register wires all HTTP routes.
func Register(app *fiber.App) {
	api := app.Group("/api")

	// Public auth endpoints
	api.Post("/registration", controllers.Register)
	api.Post("/login", controllers.Login)
	api.Post("/logout", controllers.Logout)

	// Protected endpoints (JWT auth)
	protected := api.Group("")
	protected.Use(middlewares.IsAuthenticatedHeader())

	// Idempotency guard FIRST (not tied to request TX)
	protected.Use(middlewares.Idempotency())

	// Then per-request tenant transaction (pins search_path and commits/rolls back)
	protected.Use(middlewares.TenantTx())

	// School profile
	protected.Get("/school", controllers.GetSchool)
	protected.Put("/school", controllers.UpdateSchool)

	// Classes
	protected.Post("/class", controllers.CreateClass)
	protected.Get("/classes", controllers.GetClasses)
	protected.Put("/classes/:id", controllers.UpdateClass)

	// Fee types
	protected.Post("/fee-type", controllers.CreateFeeType)
	protected.Get("/fee-types", controllers.GetFeeTypes)
	protected.Patch("/fee-types/:id", controllers.UpdateFeeType)

	// Students (fee assignments are versioned; updates replace the whole set)
	protected.Post("/student", controllers.CreateStudent)
	protected.Get("/students", controllers.GetStudents)
	protected.Get("/student/:id", controllers.GetStudent)
	protected.Put("/students/:id", controllers.UpdateStudent)
	protected.Get("/students/:id/fee-versions", controllers.GetStudentFeeVersions)

	// Payments (append-only ledger per student)
	protected.Post("/students/:id/payments", controllers.CreatePayment)
	protected.Get("/students/:id/payments", controllers.GetPayments)

	// Reports
	protected.Get("/reports/dashboard", controllers.GetDashboard)
	protected.Get("/reports/ledger", controllers.GetLedger)
	protected.Get("/reports/ledger/export", controllers.ExportLedger)
}
