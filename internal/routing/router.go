// Package routing assembles the gin engine: common middleware, the health
// endpoint and the versioned API surface.
package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"camphub/internal/config"
	"camphub/internal/handlers"
	"camphub/internal/managers"
	"camphub/internal/middleware"
	"camphub/internal/schemas"
	"camphub/internal/stores"
)

func InitRouter(cfg *config.Config, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)
	setupRoutes(router, cfg, databaseMgr, mailMgr, jwtMgr)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(gin.Recovery())
	router.Use(middleware.InjectTrace())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Accept", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Correlation-ID"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
	router.Use(middleware.ErrorNormalizer())
}

func setupRoutes(router *gin.Engine, cfg *config.Config, databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr) {
	router.GET("/health", func(c *gin.Context) {
		if err := databaseMgr.GetPool().Ping(c.Request.Context()); err != nil {
			c.String(http.StatusInternalServerError, "Database not responding")
			return
		}
		c.Status(http.StatusOK)
	})

	requireAuth := middleware.RequireAuth(jwtMgr, stores.NewUserStore(databaseMgr.GetPool()))

	apiRouter := router.Group("/api/v1")
	{
		authRouter := apiRouter.Group("/auth")
		authHdl := handlers.NewAuthHandler(cfg, databaseMgr, jwtMgr, mailMgr)
		authRoutes(authRouter, authHdl, requireAuth)

		bootcampRouter := apiRouter.Group("/bootcamps")
		bootcampHdl := handlers.NewBootcampHandler(cfg, databaseMgr)
		courseHdl := handlers.NewCourseHandler(cfg, databaseMgr)
		reviewHdl := handlers.NewReviewHandler(cfg, databaseMgr)
		bootcampRoutes(bootcampRouter, bootcampHdl, courseHdl, reviewHdl, requireAuth)

		courseRouter := apiRouter.Group("/courses")
		courseRoutes(courseRouter, courseHdl, requireAuth)

		reviewRouter := apiRouter.Group("/reviews")
		reviewRoutes(reviewRouter, reviewHdl, requireAuth)

		userRouter := apiRouter.Group("/users")
		userHdl := handlers.NewUserHandler(cfg, databaseMgr)
		userRoutes(userRouter, userHdl, requireAuth)
	}
}

func authRoutes(authRouter *gin.RouterGroup, authHdl handlers.AuthHdl, requireAuth gin.HandlerFunc) {
	authRouter.POST("/register", middleware.ValidateAndSanitizeStruct[schemas.RegisterRequest](), authHdl.Register)
	authRouter.POST("/login", middleware.ValidateAndSanitizeStruct[schemas.LoginRequest](), authHdl.Login)
	authRouter.POST("/forgotpassword", middleware.ValidateAndSanitizeStruct[schemas.ForgotPasswordRequest](), authHdl.ForgotPassword)
	authRouter.PUT("/resetpassword/:token", middleware.ValidateAndSanitizeStruct[schemas.ResetPasswordRequest](), authHdl.ResetPassword)
	// The remaining routes require an authenticated principal
	authRouter.Use(requireAuth)
	authRouter.GET("/me", authHdl.GetMe)
	authRouter.PUT("/updatedetails", middleware.ValidateAndSanitizeStruct[schemas.UpdateDetailsRequest](), authHdl.UpdateDetails)
	authRouter.PUT("/updatepassword", middleware.ValidateAndSanitizeStruct[schemas.UpdatePasswordRequest](), authHdl.UpdatePassword)
}

func bootcampRoutes(bootcampRouter *gin.RouterGroup, bootcampHdl handlers.BootcampHdl, courseHdl handlers.CourseHdl, reviewHdl handlers.ReviewHdl, requireAuth gin.HandlerFunc) {
	publish := []gin.HandlerFunc{requireAuth, middleware.RequireRole(schemas.RolePublisher, schemas.RoleAdmin)}

	bootcampRouter.GET("/", bootcampHdl.ListBootcamps)
	bootcampRouter.GET("/:bootcampId", bootcampHdl.GetBootcamp)
	bootcampRouter.POST("/", append(publish, middleware.ValidateAndSanitizeStruct[schemas.BootcampRequest](), bootcampHdl.CreateBootcamp)...)
	bootcampRouter.PUT("/:bootcampId", append(publish, middleware.ValidateAndSanitizeStruct[schemas.BootcampRequest](), bootcampHdl.UpdateBootcamp)...)
	bootcampRouter.DELETE("/:bootcampId", append(publish, bootcampHdl.DeleteBootcamp)...)

	// Nested course and review routes scoped to one bootcamp
	bootcampRouter.GET("/:bootcampId/courses", courseHdl.ListBootcampCourses)
	bootcampRouter.POST("/:bootcampId/courses", append(publish, middleware.ValidateAndSanitizeStruct[schemas.CourseRequest](), courseHdl.CreateCourse)...)
	bootcampRouter.GET("/:bootcampId/reviews", reviewHdl.ListBootcampReviews)
	bootcampRouter.POST("/:bootcampId/reviews",
		requireAuth,
		middleware.RequireRole(schemas.RoleUser, schemas.RoleAdmin),
		middleware.ValidateAndSanitizeStruct[schemas.ReviewRequest](),
		reviewHdl.CreateReview)
}

func courseRoutes(courseRouter *gin.RouterGroup, courseHdl handlers.CourseHdl, requireAuth gin.HandlerFunc) {
	publish := []gin.HandlerFunc{requireAuth, middleware.RequireRole(schemas.RolePublisher, schemas.RoleAdmin)}

	courseRouter.GET("/", courseHdl.ListCourses)
	courseRouter.GET("/:courseId", courseHdl.GetCourse)
	courseRouter.PUT("/:courseId", append(publish, middleware.ValidateAndSanitizeStruct[schemas.CourseRequest](), courseHdl.UpdateCourse)...)
	courseRouter.DELETE("/:courseId", append(publish, courseHdl.DeleteCourse)...)
}

func reviewRoutes(reviewRouter *gin.RouterGroup, reviewHdl handlers.ReviewHdl, requireAuth gin.HandlerFunc) {
	reviewRouter.GET("/", reviewHdl.ListReviews)
	reviewRouter.GET("/:reviewId", reviewHdl.GetReview)
	// Author-or-admin checks happen in the handler; the guard only
	// establishes the principal here.
	reviewRouter.PUT("/:reviewId", requireAuth, middleware.ValidateAndSanitizeStruct[schemas.ReviewRequest](), reviewHdl.UpdateReview)
	reviewRouter.DELETE("/:reviewId", requireAuth, reviewHdl.DeleteReview)
}

func userRoutes(userRouter *gin.RouterGroup, userHdl handlers.UserHdl, requireAuth gin.HandlerFunc) {
	userRouter.Use(requireAuth)
	userRouter.Use(middleware.RequireRole(schemas.RoleAdmin))
	userRouter.GET("/", userHdl.ListUsers)
	userRouter.GET("/:userId", userHdl.GetUser)
	userRouter.POST("/", middleware.ValidateAndSanitizeStruct[schemas.CreateUserRequest](), userHdl.CreateUser)
	userRouter.PUT("/:userId", middleware.ValidateAndSanitizeStruct[schemas.UpdateUserRequest](), userHdl.UpdateUser)
	userRouter.DELETE("/:userId", userHdl.DeleteUser)
}
