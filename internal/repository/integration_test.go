//go:build integration

package repository_test

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	pkgerrors "course-hub/backend/pkg/errors"

	"course-hub/backend/internal/model"
	"course-hub/backend/internal/repository"
)

// ═══════════════════════════════════════════════════════════
// Test Setup
// ═══════════════════════════════════════════════════════════

var testDB *gorm.DB

func TestMain(m *testing.M) {
	dsn := os.Getenv("TEST_DATABASE_DSN")
	if dsn == "" {
		dsn = "host=localhost port=5432 user=postgres password=postgres dbname=course_hub_test sslmode=disable TimeZone=Asia/Shanghai"
	}

	var err error
	testDB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "无法连接测试数据库: %v\n", err)
		os.Exit(1)
	}

	// 自动迁移测试表结构
	err = testDB.AutoMigrate(
		&model.User{},
		&model.Program{},
		&model.Semester{},
		&model.Course{},
		&model.Teacher{},
		&model.Student{},
		&model.TeacherCourse{},
		&model.StudentCourse{},
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "AutoMigrate 失败: %v\n", err)
		os.Exit(1)
	}

	code := m.Run()
	os.Exit(code)
}

// setupTestData 创建基础测试数据并返回清理函数
func setupTestData(t *testing.T) (program *model.Program, semester *model.Semester, course *model.Course, teacher *model.Teacher, student *model.Student, cleanup func()) {
	t.Helper()
	ctx := context.Background()
	nano := time.Now().UnixNano()

	program = &model.Program{
		Name: fmt.Sprintf("测试项目-%d", nano),
	}
	if err := testDB.WithContext(ctx).Create(program).Error; err != nil {
		t.Fatalf("创建培养项目失败: %v", err)
	}

	semester = &model.Semester{
		ProgramID: program.ProgramID,
		Name:      fmt.Sprintf("测试学期-%d", nano),
		StartDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2027, 1, 15, 0, 0, 0, 0, time.UTC),
	}
	if err := testDB.WithContext(ctx).Create(semester).Error; err != nil {
		t.Fatalf("创建学期失败: %v", err)
	}

	course = &model.Course{
		Code:    fmt.Sprintf("CS%d", nano),
		Name:    "测试课程",
		Credits: 3,
	}
	if err := testDB.WithContext(ctx).Create(course).Error; err != nil {
		t.Fatalf("创建课程失败: %v", err)
	}

	teacher = &model.Teacher{
		TeacherNo: fmt.Sprintf("T%d", nano),
		Name:      "测试教师",
		Title:     "副教授",
	}
	if err := testDB.WithContext(ctx).Create(teacher).Error; err != nil {
		t.Fatalf("创建教师失败: %v", err)
	}

	student = &model.Student{
		StudentNo:  fmt.Sprintf("S%d", nano),
		Name:       "测试学生",
		EnrollYear: 2026,
	}
	if err := testDB.WithContext(ctx).Create(student).Error; err != nil {
		t.Fatalf("创建学生失败: %v", err)
	}

	cleanup = func() {
		testDB.Unscoped().Where("student_id = ?", student.StudentID).Delete(&model.Student{})
		testDB.Unscoped().Where("teacher_id = ?", teacher.TeacherID).Delete(&model.Teacher{})
		testDB.Unscoped().Where("course_id = ?", course.CourseID).Delete(&model.Course{})
		testDB.Unscoped().Where("semester_id = ?", semester.SemesterID).Delete(&model.Semester{})
		testDB.Unscoped().Where("program_id = ?", program.ProgramID).Delete(&model.Program{})
	}
	return
}

// ═══════════════════════════════════════════════════════════
// Test: Optimistic Lock
// ═══════════════════════════════════════════════════════════

func TestOptimisticLock_TeacherCourse_ConflictDetected(t *testing.T) {
	_, semester, course, teacher, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	assignment := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, assignment); err != nil {
		t.Fatalf("创建授课安排失败: %v", err)
	}
	defer testDB.Unscoped().Where("assignment_id = ?", assignment.AssignmentID).Delete(&model.TeacherCourse{})

	// 模拟并发：获取两份副本
	copy1, _ := repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)
	copy2, _ := repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)

	// 第一次更新成功
	copy1.Role = "assistant"
	if err := repo.TeacherCourse.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败（version 已过期）
	copy2.Role = "lecturer"
	err := repo.TeacherCourse.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_StudentCourse_ConflictDetected(t *testing.T) {
	_, semester, course, _, student, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	enrollment := &model.StudentCourse{
		StudentID:  student.StudentID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
	}
	if err := repo.StudentCourse.Create(ctx, enrollment); err != nil {
		t.Fatalf("创建选课记录失败: %v", err)
	}
	defer testDB.Unscoped().Where("enrollment_id = ?", enrollment.EnrollmentID).Delete(&model.StudentCourse{})

	copy1, _ := repo.StudentCourse.GetByID(ctx, enrollment.EnrollmentID)
	copy2, _ := repo.StudentCourse.GetByID(ctx, enrollment.EnrollmentID)

	// 第一次更新成功
	operator := uuid.New().String()
	copy1.UpdatedBy = &operator
	if err := repo.StudentCourse.Update(ctx, copy1); err != nil {
		t.Fatalf("第一次更新应成功: %v", err)
	}

	// 第二次更新应失败
	copy2.UpdatedBy = &operator
	err := repo.StudentCourse.Update(ctx, copy2)
	if err == nil {
		t.Fatal("期望乐观锁冲突错误，但更新成功了")
	}
	if err != pkgerrors.ErrOptimisticLock {
		t.Errorf("期望 ErrOptimisticLock，得到: %v", err)
	}
}

func TestOptimisticLock_VersionIncrement(t *testing.T) {
	_, semester, course, teacher, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	assignment := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, assignment); err != nil {
		t.Fatalf("创建授课安排失败: %v", err)
	}
	defer testDB.Unscoped().Where("assignment_id = ?", assignment.AssignmentID).Delete(&model.TeacherCourse{})

	if assignment.Version != 1 {
		t.Errorf("初始 version 应为 1，得到: %d", assignment.Version)
	}

	// 连续更新 3 次
	for i := 0; i < 3; i++ {
		got, _ := repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)
		got.Role = "lecturer"
		if err := repo.TeacherCourse.Update(ctx, got); err != nil {
			t.Fatalf("第 %d 次更新失败: %v", i+1, err)
		}
	}

	// 验证 version 递增到 4
	final, _ := repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)
	if final.Version != 4 {
		t.Errorf("期望 version=4，得到: %d", final.Version)
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Triple Lookup & Unique Constraint
// ═══════════════════════════════════════════════════════════

func TestTeacherCourse_GetByTriple(t *testing.T) {
	_, semester, course, teacher, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	assignment := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, assignment); err != nil {
		t.Fatalf("创建授课安排失败: %v", err)
	}
	defer testDB.Unscoped().Where("assignment_id = ?", assignment.AssignmentID).Delete(&model.TeacherCourse{})

	// 命中
	found, err := repo.TeacherCourse.GetByTriple(ctx, teacher.TeacherID, course.CourseID, semester.SemesterID)
	if err != nil {
		t.Fatalf("GetByTriple 应命中: %v", err)
	}
	if found.AssignmentID != assignment.AssignmentID {
		t.Errorf("ID 不匹配: expected %s, got %s", assignment.AssignmentID, found.AssignmentID)
	}

	// 未命中（换一个不存在的教师ID）
	_, err = repo.TeacherCourse.GetByTriple(ctx, uuid.New().String(), course.CourseID, semester.SemesterID)
	if err == nil {
		t.Fatal("不存在的三元组应返回错误")
	}
}

func TestUniqueTriple_RecreateAfterSoftDelete(t *testing.T) {
	_, semester, course, teacher, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	first := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, first); err != nil {
		t.Fatalf("创建第一条授课安排失败: %v", err)
	}
	defer testDB.Unscoped().Where("assignment_id = ?", first.AssignmentID).Delete(&model.TeacherCourse{})

	// 同三元组再建应违反唯一约束
	duplicate := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "assistant",
	}
	err := repo.TeacherCourse.Create(ctx, duplicate)
	if err == nil {
		// 如果未报错则手动清理并报告失败
		testDB.Unscoped().Where("assignment_id = ?", duplicate.AssignmentID).Delete(&model.TeacherCourse{})
		t.Fatal("期望唯一约束违反，但创建成功了。确保已运行 0001_init.up.sql 中的 uq_teacher_courses_triple 索引")
	}

	// 软删除后同三元组可重建（部分唯一索引 WHERE deleted_at IS NULL）
	operator := uuid.New().String()
	if err := repo.TeacherCourse.Delete(ctx, first.AssignmentID, operator); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	recreated := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, recreated); err != nil {
		t.Fatalf("软删除后重建同三元组应成功: %v", err)
	}
	testDB.Unscoped().Where("assignment_id = ?", recreated.AssignmentID).Delete(&model.TeacherCourse{})
}

// ═══════════════════════════════════════════════════════════
// Test: Batch Operations
// ═══════════════════════════════════════════════════════════

func TestStudentCourse_BatchCreate(t *testing.T) {
	_, semester, course, _, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 创建 5 名学生并批量选课
	nano := time.Now().UnixNano()
	students := make([]model.Student, 5)
	for i := range students {
		students[i] = model.Student{
			StudentNo:  fmt.Sprintf("SB%d-%d", nano, i),
			Name:       fmt.Sprintf("批量学生%d", i),
			EnrollYear: 2026,
		}
		if err := testDB.WithContext(ctx).Create(&students[i]).Error; err != nil {
			t.Fatalf("创建学生失败: %v", err)
		}
	}
	defer func() {
		for i := range students {
			testDB.Unscoped().Where("student_id = ?", students[i].StudentID).Delete(&model.Student{})
		}
	}()

	enrollments := make([]model.StudentCourse, 5)
	for i := range enrollments {
		enrollments[i] = model.StudentCourse{
			StudentID:  students[i].StudentID,
			CourseID:   course.CourseID,
			SemesterID: semester.SemesterID,
		}
	}

	if err := repo.StudentCourse.BatchCreate(ctx, enrollments); err != nil {
		t.Fatalf("BatchCreate 失败: %v", err)
	}
	defer testDB.Unscoped().
		Where("course_id = ? AND semester_id = ?", course.CourseID, semester.SemesterID).
		Delete(&model.StudentCourse{})

	// 验证选课名单
	roster, err := repo.StudentCourse.ListByCourseAndSemester(ctx, course.CourseID, semester.SemesterID)
	if err != nil {
		t.Fatalf("ListByCourseAndSemester 失败: %v", err)
	}
	if len(roster) != 5 {
		t.Errorf("期望 5 条选课记录，得到 %d 条", len(roster))
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Soft Delete
// ═══════════════════════════════════════════════════════════

func TestTeacherCourse_SoftDelete(t *testing.T) {
	_, semester, course, teacher, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	assignment := &model.TeacherCourse{
		TeacherID:  teacher.TeacherID,
		CourseID:   course.CourseID,
		SemesterID: semester.SemesterID,
		Role:       "lecturer",
	}
	if err := repo.TeacherCourse.Create(ctx, assignment); err != nil {
		t.Fatalf("创建授课安排失败: %v", err)
	}
	defer testDB.Unscoped().Where("assignment_id = ?", assignment.AssignmentID).Delete(&model.TeacherCourse{})

	// 软删除（记录操作人）
	operator := uuid.New().String()
	if err := repo.TeacherCourse.Delete(ctx, assignment.AssignmentID, operator); err != nil {
		t.Fatalf("软删除失败: %v", err)
	}

	// 常规查询应找不到
	_, err := repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)
	if err == nil {
		t.Fatal("软删除后应查不到记录")
	}

	// Unscoped 查询应能找到，且审计字段已写入
	var found model.TeacherCourse
	err = testDB.Unscoped().Where("assignment_id = ?", assignment.AssignmentID).First(&found).Error
	if err != nil {
		t.Fatalf("Unscoped 查询应能找到: %v", err)
	}
	if found.DeletedAt.Time.IsZero() {
		t.Error("DeletedAt 应已设置")
	}
	if found.DeletedBy == nil || *found.DeletedBy != operator {
		t.Error("DeletedBy 应记录操作人")
	}
}

// ═══════════════════════════════════════════════════════════
// Test: Semester Ownership
// ═══════════════════════════════════════════════════════════

func TestSemester_GetByProgramAndID(t *testing.T) {
	program, semester, _, _, _, cleanup := setupTestData(t)
	defer cleanup()

	repo := repository.NewRepository(testDB)
	ctx := context.Background()

	// 归属正确时可查到
	found, err := repo.Semester.GetByProgramAndID(ctx, program.ProgramID, semester.SemesterID)
	if err != nil {
		t.Fatalf("GetByProgramAndID 应命中: %v", err)
	}
	if found.SemesterID != semester.SemesterID {
		t.Errorf("ID 不匹配: expected %s, got %s", semester.SemesterID, found.SemesterID)
	}

	// 挂到其他项目下查询应返回未找到
	other := &model.Program{
		Name: fmt.Sprintf("其他项目-%d", time.Now().UnixNano()),
	}
	if err := testDB.WithContext(ctx).Create(other).Error; err != nil {
		t.Fatalf("创建其他项目失败: %v", err)
	}
	defer testDB.Unscoped().Where("program_id = ?", other.ProgramID).Delete(&model.Program{})

	_, err = repo.Semester.GetByProgramAndID(ctx, other.ProgramID, semester.SemesterID)
	if err == nil {
		t.Fatal("学期不属于该项目时应返回错误")
	}
}
