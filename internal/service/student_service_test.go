package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/model"
)

// ── 测试辅助 ──

func setupTestStudentService() (StudentService, *mockRepos) {
	repo, mocks := newMockRepos()
	svc := NewStudentService(repo, zap.NewNop())
	return svc, mocks
}

func seedStudent(mocks *mockRepos, id, studentNo, name string) {
	mocks.student.students[id] = &model.Student{
		StudentID:  id,
		StudentNo:  studentNo,
		Name:       name,
		EnrollYear: 2026,
	}
}

// buildImportXlsx 在内存中构建导入用 Excel 文件
func buildImportXlsx(t *testing.T, rows [][]string) io.Reader {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		for j, val := range row {
			cell, err := excelize.CoordinatesToCellName(j+1, i+1)
			if err != nil {
				t.Fatalf("生成单元格坐标失败: %v", err)
			}
			if err := f.SetCellValue("Sheet1", cell, val); err != nil {
				t.Fatalf("写入单元格失败: %v", err)
			}
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("构建测试Excel失败: %v", err)
	}
	return buf
}

// ── CRUD 测试 ──

func TestStudentService_Create_Success(t *testing.T) {
	svc, _ := setupTestStudentService()

	req := &dto.CreateStudentRequest{
		StudentNo:  "S2026001",
		Name:       "王小明",
		EnrollYear: 2026,
	}

	result, err := svc.Create(context.Background(), req, "admin-001")
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.StudentNo != "S2026001" {
		t.Errorf("期望StudentNo=S2026001，实际=%s", result.StudentNo)
	}
	if result.EnrollYear != 2026 {
		t.Errorf("期望EnrollYear=2026，实际=%d", result.EnrollYear)
	}
}

func TestStudentService_Create_NoExists(t *testing.T) {
	svc, mocks := setupTestStudentService()
	seedStudent(mocks, "student-001", "S2026001", "王小明")

	req := &dto.CreateStudentRequest{StudentNo: "S2026001", Name: "李小红", EnrollYear: 2026}

	_, err := svc.Create(context.Background(), req, "admin-001")
	if !errors.Is(err, ErrStudentNoExists) {
		t.Errorf("期望 ErrStudentNoExists，实际: %v", err)
	}
}

func TestStudentService_List_EnrollYearFilter(t *testing.T) {
	svc, mocks := setupTestStudentService()
	seedStudent(mocks, "student-001", "S2025001", "甲")
	mocks.student.students["student-001"].EnrollYear = 2025
	seedStudent(mocks, "student-002", "S2026001", "乙")
	seedStudent(mocks, "student-003", "S2026002", "丙")

	result, total, err := svc.List(context.Background(), &dto.StudentListRequest{EnrollYear: 2026})
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if total != 2 || len(result) != 2 {
		t.Errorf("期望2条，实际total=%d len=%d", total, len(result))
	}
}

func TestStudentService_Delete_HasEnrollment(t *testing.T) {
	svc, mocks := setupTestStudentService()
	seedStudent(mocks, "student-001", "S2026001", "王小明")
	mocks.student.enrollmentCount["student-001"] = 3

	err := svc.Delete(context.Background(), "student-001", "admin-001")
	if !errors.Is(err, ErrStudentHasEnrollment) {
		t.Errorf("期望 ErrStudentHasEnrollment，实际: %v", err)
	}
}

func TestStudentService_Delete_DoubleDelete(t *testing.T) {
	svc, mocks := setupTestStudentService()
	seedStudent(mocks, "student-001", "S2026001", "王小明")

	if err := svc.Delete(context.Background(), "student-001", "admin-001"); err != nil {
		t.Fatalf("Delete 应成功: %v", err)
	}

	err := svc.Delete(context.Background(), "student-001", "admin-001")
	if !errors.Is(err, ErrStudentNotFound) {
		t.Errorf("重复删除期望 ErrStudentNotFound，实际: %v", err)
	}
}

// ── ParseImportFile 测试 ──

func TestStudentService_ParseImportFile_Success(t *testing.T) {
	svc, _ := setupTestStudentService()

	reader := buildImportXlsx(t, [][]string{
		{"学号", "姓名", "入学年份"},
		{"S2026001", "王小明", "2026"},
		{"S2026002", "李小红", "2026"},
	})

	rows, err := svc.ParseImportFile(reader)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("期望2行，实际=%d", len(rows))
	}
	if rows[0].StudentNo != "S2026001" || rows[0].Name != "王小明" || rows[0].EnrollYear != "2026" {
		t.Errorf("第一行解析错误: %+v", rows[0])
	}
	// Row 为 Excel 中的真实行号（表头占第1行）
	if rows[0].Row != 2 || rows[1].Row != 3 {
		t.Errorf("期望行号2/3，实际=%d/%d", rows[0].Row, rows[1].Row)
	}
}

func TestStudentService_ParseImportFile_EnglishHeader(t *testing.T) {
	svc, _ := setupTestStudentService()

	// 英文表头、列序打乱
	reader := buildImportXlsx(t, [][]string{
		{"name", "enroll_year", "student_no"},
		{"王小明", "2026", "S2026001"},
	})

	rows, err := svc.ParseImportFile(reader)
	if err != nil {
		t.Fatalf("ParseImportFile 应成功: %v", err)
	}
	if len(rows) != 1 || rows[0].StudentNo != "S2026001" {
		t.Errorf("乱序表头解析错误: %+v", rows)
	}
}

func TestStudentService_ParseImportFile_BadHeader(t *testing.T) {
	svc, _ := setupTestStudentService()

	reader := buildImportXlsx(t, [][]string{
		{"学号", "姓名"}, // 缺少入学年份列
		{"S2026001", "王小明"},
	})

	_, err := svc.ParseImportFile(reader)
	if !errors.Is(err, ErrImportBadHeader) {
		t.Errorf("期望 ErrImportBadHeader，实际: %v", err)
	}
}

func TestStudentService_ParseImportFile_NoData(t *testing.T) {
	svc, _ := setupTestStudentService()

	reader := buildImportXlsx(t, [][]string{
		{"学号", "姓名", "入学年份"},
	})

	_, err := svc.ParseImportFile(reader)
	if !errors.Is(err, ErrImportNoData) {
		t.Errorf("期望 ErrImportNoData，实际: %v", err)
	}
}

// ── ImportStudents 测试 ──

func TestStudentService_ImportStudents_AllValid(t *testing.T) {
	svc, mocks := setupTestStudentService()

	rows := []ImportStudentRow{
		{Row: 2, StudentNo: "S2026001", Name: "王小明", EnrollYear: "2026"},
		{Row: 3, StudentNo: "S2026002", Name: "李小红", EnrollYear: "2026"},
	}

	resp, err := svc.ImportStudents(context.Background(), rows, "admin-001")
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if resp.Total != 2 || resp.Success != 2 || resp.Failed != 0 {
		t.Errorf("期望 total=2 success=2 failed=0，实际: %+v", resp)
	}
	if len(mocks.student.students) != 2 {
		t.Errorf("期望写入2名学生，实际=%d", len(mocks.student.students))
	}
}

func TestStudentService_ImportStudents_MixedValidity(t *testing.T) {
	svc, mocks := setupTestStudentService()
	seedStudent(mocks, "student-001", "S2025001", "已存在")

	rows := []ImportStudentRow{
		{Row: 2, StudentNo: "S2026001", Name: "王小明", EnrollYear: "2026"},
		{Row: 3, StudentNo: "", Name: "缺学号", EnrollYear: "2026"},
		{Row: 4, StudentNo: "S2026002", Name: "年份非法", EnrollYear: "abc"},
		{Row: 5, StudentNo: "S2026001", Name: "文件内重复", EnrollYear: "2026"},
		{Row: 6, StudentNo: "S2025001", Name: "库内重复", EnrollYear: "2026"},
	}

	resp, err := svc.ImportStudents(context.Background(), rows, "admin-001")
	if err != nil {
		t.Fatalf("ImportStudents 应成功: %v", err)
	}
	if resp.Success != 1 || resp.Failed != 4 {
		t.Errorf("期望 success=1 failed=4，实际: %+v", resp)
	}
	if len(resp.Errors) != 4 {
		t.Errorf("期望4条错误明细，实际=%d", len(resp.Errors))
	}
	// 有效行仍然写入
	if _, err := mocks.student.GetByStudentNo(context.Background(), "S2026001"); err != nil {
		t.Error("有效行应写入数据库")
	}
}

func TestStudentService_ImportStudents_BatchFailRollsBack(t *testing.T) {
	svc, mocks := setupTestStudentService()
	mocks.student.batchCreateErr = errors.New("db down")

	rows := []ImportStudentRow{
		{Row: 2, StudentNo: "S2026001", Name: "王小明", EnrollYear: "2026"},
	}

	_, err := svc.ImportStudents(context.Background(), rows, "admin-001")
	if err == nil {
		t.Fatal("批量写入失败时应返回错误")
	}
	if len(mocks.student.students) != 0 {
		t.Error("写入失败后不应留下部分数据")
	}
}
