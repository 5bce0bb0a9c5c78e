package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"course-hub/backend/internal/dto"
	pkgerrors "course-hub/backend/pkg/errors"
)

// ── 测试辅助 ──

func setupTestStudentCourseService() (StudentCourseService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewStudentCourseService(repo, zap.NewNop())
	return svc, mocks
}

// seedEnrollmentDeps 预置选课记录依赖的学生、课程、学期
func seedEnrollmentDeps(mocks *mockRepos) {
	seedStudent(mocks, "student-001", "S2026001", "王小明")
	seedCourse(mocks, "course-001", "CS101", "程序设计基础")
	seedProgram(mocks, "prog-001", "计算机科学与技术")
	seedSemester(mocks, "sem-001", "prog-001", "2026秋季学期")
}

// ── Create 测试 ──

func TestStudentCourseService_Create_Success(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	req := &dto.CreateStudentCourseRequest{
		StudentID:  "student-001",
		CourseID:   "course-001",
		SemesterID: "sem-001",
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.ID == "" {
		t.Error("期望生成选课记录ID")
	}
	if result.StudentID != "student-001" || result.SemesterID != "sem-001" {
		t.Errorf("选课记录字段错误: %+v", result)
	}
}

func TestStudentCourseService_Create_StudentNotFound(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	req := &dto.CreateStudentCourseRequest{StudentID: "nonexistent", CourseID: "course-001", SemesterID: "sem-001"}
	if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
}

func TestStudentCourseService_Create_DuplicateTriple(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	req := &dto.CreateStudentCourseRequest{StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001"}
	if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
		t.Fatalf("首次选课应成功: %v", err)
	}
	if _, err := svc.Create(context.Background(), req, "admin-001"); !errors.Is(err, ErrStudentCourseExists) {
		t.Errorf("期望 ErrStudentCourseExists，实际: %v", err)
	}
}

// ── BatchCreate 测试 ──

func TestStudentCourseService_BatchCreate_Success(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)
	seedStudent(mocks, "student-002", "S2026002", "李小红")
	seedStudent(mocks, "student-003", "S2026003", "赵小刚")

	req := &dto.BatchCreateStudentCourseRequest{
		CourseID:   "course-001",
		SemesterID: "sem-001",
		StudentIDs: []string{"student-001", "student-002", "student-003"},
	}

	result, err := svc.BatchCreate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("BatchCreate 应成功: %v", err)
	}
	if result.Total != 3 || result.Created != 3 {
		t.Errorf("期望 total=3 created=3，实际: %+v", result)
	}
	if len(mocks.studentCourse.enrollments) != 3 {
		t.Errorf("期望写入3条选课记录，实际=%d", len(mocks.studentCourse.enrollments))
	}
}

func TestStudentCourseService_BatchCreate_DedupesStudentIDs(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	// 名单里同一学生出现两次，只写入一条
	req := &dto.BatchCreateStudentCourseRequest{
		CourseID:   "course-001",
		SemesterID: "sem-001",
		StudentIDs: []string{"student-001", "student-001"},
	}

	result, err := svc.BatchCreate(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("BatchCreate 应成功: %v", err)
	}
	if result.Total != 2 || result.Created != 1 {
		t.Errorf("期望 total=2 created=1，实际: %+v", result)
	}
}

func TestStudentCourseService_BatchCreate_StudentNotFoundAborts(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	req := &dto.BatchCreateStudentCourseRequest{
		CourseID:   "course-001",
		SemesterID: "sem-001",
		StudentIDs: []string{"student-001", "nonexistent"},
	}

	_, err := svc.BatchCreate(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("期望 ErrStudentNotFound，实际: %v", err)
	}
	// 整体拒绝，不做部分写入
	if len(mocks.studentCourse.enrollments) != 0 {
		t.Error("校验失败时不应写入任何记录")
	}
}

func TestStudentCourseService_BatchCreate_AlreadyEnrolledAborts(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)
	seedStudent(mocks, "student-002", "S2026002", "李小红")

	if _, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001",
	}, "admin-001"); err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}

	req := &dto.BatchCreateStudentCourseRequest{
		CourseID:   "course-001",
		SemesterID: "sem-001",
		StudentIDs: []string{"student-002", "student-001"},
	}

	_, err := svc.BatchCreate(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrStudentCourseExists) {
		t.Errorf("期望 ErrStudentCourseExists，实际: %v", err)
	}
	if len(mocks.studentCourse.enrollments) != 1 {
		t.Error("批量失败后应只保留预置的那条记录")
	}
}

func TestStudentCourseService_BatchCreate_WriteFailPropagates(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)
	mocks.studentCourse.batchErr = errors.New("db down")

	req := &dto.BatchCreateStudentCourseRequest{
		CourseID:   "course-001",
		SemesterID: "sem-001",
		StudentIDs: []string{"student-001"},
	}

	if _, err := svc.BatchCreate(context.Background(), req, "admin-001"); err == nil {
		t.Fatal("批量写入失败时应返回错误")
	}
}

// ── List 测试 ──

func TestStudentCourseService_List_FilterByStudent(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)
	seedStudent(mocks, "student-002", "S2026002", "李小红")
	seedCourse(mocks, "course-002", "CS102", "数据结构")

	mustCreate := func(studentID, courseID string) {
		t.Helper()
		req := &dto.CreateStudentCourseRequest{StudentID: studentID, CourseID: courseID, SemesterID: "sem-001"}
		if _, err := svc.Create(context.Background(), req, "admin-001"); err != nil {
			t.Fatalf("预置选课记录失败: %v", err)
		}
	}
	mustCreate("student-001", "course-001")
	mustCreate("student-001", "course-002")
	mustCreate("student-002", "course-001")

	result, total, err := svc.List(context.Background(), &dto.StudentCourseListRequest{StudentID: "student-001"})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(result) != 2 {
		t.Errorf("按学生过滤期望2条，实际total=%d len=%d", total, len(result))
	}
}

// ── Update / Preview 测试 ──

func TestStudentCourseService_Update_OptimisticLock(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	created, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001",
	}, "admin-001")
	if err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}

	seedCourse(mocks, "course-002", "CS102", "数据结构")
	mocks.studentCourse.updateErr = pkgerrors.ErrOptimisticLock

	newCourse := "course-002"
	_, err = svc.Update(context.Background(), created.ID, &dto.UpdateStudentCourseRequest{CourseID: &newCourse}, "admin-001")
	if !errors.Is(err, pkgerrors.ErrOptimisticLock) {
		t.Errorf("期望 ErrOptimisticLock，实际: %v", err)
	}
}

func TestStudentCourseService_Update_TripleConflictExcludesSelf(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)
	seedCourse(mocks, "course-002", "CS102", "数据结构")

	if _, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001",
	}, "admin-001"); err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}
	second, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-002", SemesterID: "sem-001",
	}, "admin-001")
	if err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}

	conflict := "course-001"
	_, err = svc.Update(context.Background(), second.ID, &dto.UpdateStudentCourseRequest{CourseID: &conflict}, "admin-001")
	if !errors.Is(err, ErrStudentCourseExists) {
		t.Errorf("期望 ErrStudentCourseExists，实际: %v", err)
	}
}

func TestStudentCourseService_Preview_StudentMissingAsFieldError(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	created, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001",
	}, "admin-001")
	if err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}

	missing := "nonexistent"
	result, err := svc.Preview(context.Background(), created.ID, &dto.UpdateStudentCourseRequest{StudentID: &missing})
	if err != nil {
		t.Fatalf("Preview 应成功: %v", err)
	}
	if result.Valid {
		t.Error("学生不存在时期望valid=false")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "student_id" {
		t.Errorf("期望 student_id 字段错误，实际: %+v", result.Errors)
	}
	// 不落库
	if mocks.studentCourse.enrollments[created.ID].StudentID != "student-001" {
		t.Error("Preview 不应修改数据库")
	}
}

// ── Delete 测试 ──

func TestStudentCourseService_Delete_DoubleDelete(t *testing.T) {
	svc, mocks := setupTestStudentCourseService()
	seedEnrollmentDeps(mocks)

	created, err := svc.Create(context.Background(), &dto.CreateStudentCourseRequest{
		StudentID: "student-001", CourseID: "course-001", SemesterID: "sem-001",
	}, "admin-001")
	if err != nil {
		t.Fatalf("预置选课记录失败: %v", err)
	}

	if err := svc.Delete(context.Background(), created.ID, "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "admin-001"); !errors.Is(err, ErrStudentCourseNotFound) {
		t.Errorf("重复删除期望 ErrStudentCourseNotFound，实际: %v", err)
	}
}
