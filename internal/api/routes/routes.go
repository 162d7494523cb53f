package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/jobhive/jobhive/internal/api/handlers"
	"github.com/jobhive/jobhive/internal/api/middleware"
	"github.com/jobhive/jobhive/internal/session"
)

type Deps struct {
	Log      *logrus.Logger
	Sessions session.Store
	Job      *handlers.JobHandler
	User     *handlers.UserHandler
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middleware.RequestLogger(d.Log))
	r.Use(middleware.Identity(d.Sessions))

	// Health-ish
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})

	auth := r.Group("/auth")
	auth.GET("/check-auth", d.User.CheckAuth)
	auth.GET("/user/:id", d.User.GetProfile)
	auth.POST("/login", d.User.Login)
	auth.POST("/logout", middleware.Protect(), d.User.Logout)
	auth.POST("/user/resume", middleware.Protect(), d.User.UploadResume)

	job := r.Group("/job")
	job.POST("/jobs", middleware.Protect(), d.Job.Create)
	job.GET("/jobs", d.Job.List)
	job.GET("/jobs/user/:id", d.Job.ListByUser)
	job.GET("/jobs/search", d.Job.Search)
	job.PUT("/jobs/apply/:id", middleware.Protect(), d.Job.Apply)
	job.PUT("/jobs/like/:id", middleware.Protect(), d.Job.ToggleLike)
	job.PUT("/jobs/save/:id", middleware.Protect(), d.Job.ToggleSave)
	job.GET("/jobs/:id", middleware.Protect(), d.Job.GetByID)
	job.DELETE("/jobs/:id", middleware.Protect(), d.Job.Delete)
}
