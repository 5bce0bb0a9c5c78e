package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"course-hub/backend/config"
	"course-hub/backend/internal/api/handler"
	"course-hub/backend/internal/api/middleware"
	"course-hub/backend/pkg/jwt"
	"course-hub/backend/pkg/redis"
)

// maxBodyBytes 全局请求体上限
// 5MB：为学生导入的 xlsx 文件留出余量，普通 JSON 请求远小于此
const maxBodyBytes = 5 << 20

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(maxBodyBytes))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			// 登录接口限流，防止密码爆破
			auth.POST("/login", middleware.RateLimit(rdb, 10, time.Minute), h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetProfile)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 用户模块（仅管理员）
			users := authorized.Group("/users", middleware.RoleAuth("admin"))
			{
				users.GET("", h.User.ListUsers)
				users.GET("/:id", h.User.GetUser)
				users.POST("", h.User.CreateUser)
				users.PUT("/:id", h.User.UpdateUser)
				users.DELETE("/:id", h.User.DeleteUser)
				users.POST("/:id/reset-password", h.User.ResetPassword)
			}

			// 培养项目模块
			programs := authorized.Group("/programs")
			{
				programs.GET("", h.Program.ListPrograms)
				programs.GET("/:id", h.Program.GetProgram)
				programs.POST("", middleware.RoleAuth("admin"), h.Program.CreateProgram)
				programs.PUT("/:id", middleware.RoleAuth("admin"), h.Program.UpdateProgram)
				programs.POST("/:id/preview", middleware.RoleAuth("admin"), h.Program.PreviewProgram)
				programs.DELETE("/:id", middleware.RoleAuth("admin"), h.Program.DeleteProgram)

				// 学期子资源（学期从属于培养项目）
				programs.GET("/:id/semesters", h.Semester.ListProgramSemesters)
				programs.POST("/:id/semesters", middleware.RoleAuth("admin"), h.Semester.CreateSemester)
				programs.GET("/:id/semesters/:semesterID", h.Semester.GetSemester)
				programs.PUT("/:id/semesters/:semesterID", middleware.RoleAuth("admin"), h.Semester.UpdateSemester)
				programs.POST("/:id/semesters/:semesterID/preview", middleware.RoleAuth("admin"), h.Semester.PreviewSemester)
				programs.DELETE("/:id/semesters/:semesterID", middleware.RoleAuth("admin"), h.Semester.DeleteSemester)
			}

			// 学期平铺列表（跨项目查询）
			authorized.GET("/semesters", h.Semester.ListAllSemesters)

			// 课程模块
			courses := authorized.Group("/courses")
			{
				courses.GET("", h.Course.ListCourses)
				courses.GET("/:id", h.Course.GetCourse)
				courses.POST("", middleware.RoleAuth("admin"), h.Course.CreateCourse)
				courses.PUT("/:id", middleware.RoleAuth("admin"), h.Course.UpdateCourse)
				courses.POST("/:id/preview", middleware.RoleAuth("admin"), h.Course.PreviewCourse)
				courses.DELETE("/:id", middleware.RoleAuth("admin"), h.Course.DeleteCourse)
			}

			// 教师模块
			teachers := authorized.Group("/teachers")
			{
				teachers.GET("", h.Teacher.ListTeachers)
				teachers.GET("/:id", h.Teacher.GetTeacher)
				teachers.POST("", middleware.RoleAuth("admin"), h.Teacher.CreateTeacher)
				teachers.PUT("/:id", middleware.RoleAuth("admin"), h.Teacher.UpdateTeacher)
				teachers.DELETE("/:id", middleware.RoleAuth("admin"), h.Teacher.DeleteTeacher)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.GET("/:id", h.Student.GetStudent)
				students.POST("", middleware.RoleAuth("admin"), h.Student.CreateStudent)
				students.PUT("/:id", middleware.RoleAuth("admin"), h.Student.UpdateStudent)
				students.DELETE("/:id", middleware.RoleAuth("admin"), h.Student.DeleteStudent)
				students.POST("/import", middleware.RoleAuth("admin"), h.Student.ImportStudents)
			}

			// 授课安排模块
			teacherCourses := authorized.Group("/teacher-courses")
			{
				teacherCourses.GET("", h.TeacherCourse.ListTeacherCourses)
				teacherCourses.GET("/:id", h.TeacherCourse.GetTeacherCourse)
				teacherCourses.POST("", middleware.RoleAuth("admin"), h.TeacherCourse.CreateTeacherCourse)
				teacherCourses.PUT("/:id", middleware.RoleAuth("admin"), h.TeacherCourse.UpdateTeacherCourse)
				teacherCourses.POST("/:id/preview", middleware.RoleAuth("admin"), h.TeacherCourse.PreviewTeacherCourse)
				teacherCourses.DELETE("/:id", middleware.RoleAuth("admin"), h.TeacherCourse.DeleteTeacherCourse)
			}

			// 选课记录模块
			studentCourses := authorized.Group("/student-courses")
			{
				studentCourses.GET("", h.StudentCourse.ListStudentCourses)
				studentCourses.GET("/:id", h.StudentCourse.GetStudentCourse)
				studentCourses.POST("", middleware.RoleAuth("admin"), h.StudentCourse.CreateStudentCourse)
				studentCourses.POST("/batch", middleware.RoleAuth("admin"), h.StudentCourse.BatchCreateStudentCourses)
				studentCourses.PUT("/:id", middleware.RoleAuth("admin"), h.StudentCourse.UpdateStudentCourse)
				studentCourses.POST("/:id/preview", middleware.RoleAuth("admin"), h.StudentCourse.PreviewStudentCourse)
				studentCourses.DELETE("/:id", middleware.RoleAuth("admin"), h.StudentCourse.DeleteStudentCourse)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/teaching-assignments", h.Export.ExportTeachingAssignments)
				export.GET("/course-roster", h.Export.ExportCourseRoster)
				export.GET("/semester-calendar", h.Export.ExportSemesterCalendar)
			}
		}
	}

	return r
}
