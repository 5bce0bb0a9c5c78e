package service

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestProgramService() (ProgramService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewProgramService(repo, zap.NewNop())
	return svc, mocks
}

// ── Create 测试 ──

func TestProgramService_Create_Success(t *testing.T) {
	svc, _ := setupTestProgramService()

	req := &dto.CreateProgramRequest{
		Name:        "计算机科学与技术",
		Description: "四年制本科培养项目",
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "计算机科学与技术" {
		t.Errorf("期望Name=计算机科学与技术，实际=%s", result.Name)
	}
	if result.ID == "" {
		t.Error("创建后应返回ID")
	}
}

func TestProgramService_Create_NameExists(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{
		ProgramID: "prog-001",
		Name:      "软件工程",
	}

	req := &dto.CreateProgramRequest{Name: "软件工程"}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrProgramNameExists) {
		t.Errorf("期望 ErrProgramNameExists，实际: %v", err)
	}
}

// ── GetByID 测试 ──

func TestProgramService_GetByID_Success(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{
		ProgramID: "prog-001",
		Name:      "软件工程",
	}
	mocks.program.semesterCount["prog-001"] = 3

	result, err := svc.GetByID(context.Background(), "prog-001")
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.Name != "软件工程" {
		t.Errorf("期望Name=软件工程，实际=%s", result.Name)
	}
	if result.SemesterCount != 3 {
		t.Errorf("期望SemesterCount=3，实际=%d", result.SemesterCount)
	}
}

func TestProgramService_GetByID_NotFound(t *testing.T) {
	svc, _ := setupTestProgramService()

	_, err := svc.GetByID(context.Background(), "nonexistent")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("期望 ErrProgramNotFound，实际: %v", err)
	}
}

// ── List 测试 ──

func TestProgramService_List_Empty(t *testing.T) {
	svc, _ := setupTestProgramService()

	result, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if result == nil {
		t.Fatal("空库时应返回空切片而不是 nil")
	}
	if len(result) != 0 {
		t.Errorf("空库时期望0条，实际=%d", len(result))
	}
}

func TestProgramService_List_ReturnsCreated(t *testing.T) {
	svc, _ := setupTestProgramService()

	for _, name := range []string{"计算机科学与技术", "软件工程"} {
		if _, err := svc.Create(context.Background(), &dto.CreateProgramRequest{Name: name}, "admin-001"); err != nil {
			t.Fatalf("Create 应成功: %v", err)
		}
	}

	result, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 {
		t.Errorf("期望2条，实际=%d", len(result))
	}
}

// ── Update 测试 ──

func TestProgramService_Update_Success(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{
		ProgramID:   "prog-001",
		Name:        "软件工程",
		Description: "旧描述",
	}

	newName := "软件工程（卓越班）"
	result, err := svc.Update(context.Background(), "prog-001", &dto.UpdateProgramRequest{Name: &newName}, "admin-001")
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != newName {
		t.Errorf("期望Name=%s，实际=%s", newName, result.Name)
	}
	// 未提交的字段保持原值
	if result.Description != "旧描述" {
		t.Errorf("期望Description不变，实际=%s", result.Description)
	}
}

func TestProgramService_Update_NotFound(t *testing.T) {
	svc, _ := setupTestProgramService()

	name := "任意名称"
	_, err := svc.Update(context.Background(), "nonexistent", &dto.UpdateProgramRequest{Name: &name}, "admin-001")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("期望 ErrProgramNotFound，实际: %v", err)
	}
}

func TestProgramService_Update_NameConflict(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{ProgramID: "prog-001", Name: "软件工程"}
	mocks.program.programs["prog-002"] = &model.Program{ProgramID: "prog-002", Name: "计算机科学与技术"}

	conflict := "计算机科学与技术"
	_, err := svc.Update(context.Background(), "prog-001", &dto.UpdateProgramRequest{Name: &conflict}, "admin-001")
	if !errors.Is(err, ErrProgramNameExists) {
		t.Errorf("期望 ErrProgramNameExists，实际: %v", err)
	}
}

// ── Preview 测试 ──

func TestProgramService_Preview_ListsChanges(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{
		ProgramID:   "prog-001",
		Name:        "软件工程",
		Description: "旧描述",
	}

	newName := "软件工程（卓越班）"
	newDesc := "新描述"
	result, err := svc.Preview(context.Background(), "prog-001", &dto.UpdateProgramRequest{
		Name:        &newName,
		Description: &newDesc,
	})
	if err != nil {
		t.Fatalf("Preview 应成功: %v", err)
	}
	if !result.Valid {
		t.Error("合法变更期望 valid=true")
	}
	if len(result.Changes) != 2 {
		t.Errorf("期望2个变更，实际=%d", len(result.Changes))
	}

	// Preview 不落库
	if mocks.program.programs["prog-001"].Name != "软件工程" {
		t.Error("Preview 不应修改数据")
	}
}

func TestProgramService_Preview_NameConflict(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{ProgramID: "prog-001", Name: "软件工程"}
	mocks.program.programs["prog-002"] = &model.Program{ProgramID: "prog-002", Name: "计算机科学与技术"}

	conflict := "计算机科学与技术"
	result, err := svc.Preview(context.Background(), "prog-001", &dto.UpdateProgramRequest{Name: &conflict})
	if err != nil {
		t.Fatalf("Preview 应成功: %v", err)
	}
	if result.Valid {
		t.Error("名称冲突期望 valid=false")
	}
	if len(result.Errors) != 1 || result.Errors[0].Field != "name" {
		t.Errorf("期望 name 字段错误，实际: %+v", result.Errors)
	}
}

func TestProgramService_Preview_NoChange(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{ProgramID: "prog-001", Name: "软件工程"}

	same := "软件工程"
	result, err := svc.Preview(context.Background(), "prog-001", &dto.UpdateProgramRequest{Name: &same})
	if err != nil {
		t.Fatalf("Preview 应成功: %v", err)
	}
	if len(result.Changes) != 0 {
		t.Errorf("值未变化时期望0个变更，实际=%d", len(result.Changes))
	}
	if !result.Valid {
		t.Error("期望 valid=true")
	}
}

// ── Delete 测试 ──

func TestProgramService_Delete_Success(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{ProgramID: "prog-001", Name: "软件工程"}

	if err := svc.Delete(context.Background(), "prog-001", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	// 重复删除返回 NotFound
	err := svc.Delete(context.Background(), "prog-001", "admin-001")
	if !errors.Is(err, ErrProgramNotFound) {
		t.Errorf("重复删除期望 ErrProgramNotFound，实际: %v", err)
	}
}

func TestProgramService_Delete_HasSemesters(t *testing.T) {
	svc, mocks := setupTestProgramService()
	mocks.program.programs["prog-001"] = &model.Program{ProgramID: "prog-001", Name: "软件工程"}
	mocks.program.semesterCount["prog-001"] = 2

	err := svc.Delete(context.Background(), "prog-001", "admin-001")
	if !errors.Is(err, ErrProgramHasSemesters) {
		t.Errorf("期望 ErrProgramHasSemesters，实际: %v", err)
	}
}
