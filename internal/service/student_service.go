package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/model"
	"course-hub/backend/internal/repository"
)

// ── 学生模块业务错误 ──

var (
	ErrStudentNotFound      = errors.New("学生不存在")
	ErrStudentNoExists      = errors.New("学生学号已存在")
	ErrStudentHasEnrollment = errors.New("学生存在选课记录，无法删除")
)

// StudentService 学生业务接口
type StudentService interface {
	Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentResponse, error)
	List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
	ParseImportFile(reader io.Reader) ([]ImportStudentRow, error)
	ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error)
}

// ImportStudentRow Excel 导入解析后的单行数据
type ImportStudentRow struct {
	Row        int
	StudentNo  string
	Name       string
	EnrollYear string // 解析阶段保留原始文本，校验阶段再转数字
}

type studentService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentService 创建 StudentService 实例
func NewStudentService(repo *repository.Repository, logger *zap.Logger) StudentService {
	return &studentService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentService) Create(ctx context.Context, req *dto.CreateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	// 检查学号唯一性
	existing, err := s.repo.Student.GetByStudentNo(ctx, req.StudentNo)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询学生失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrStudentNoExists
	}

	student := &model.Student{
		StudentNo:  req.StudentNo,
		Name:       req.Name,
		EnrollYear: req.EnrollYear,
	}
	student.CreatedBy = &callerID
	student.UpdatedBy = &callerID

	if err := s.repo.Student.Create(ctx, student); err != nil {
		s.logger.Error("创建学生失败", zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentService) GetByID(ctx context.Context, id string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── List ──────────────────────

func (s *studentService) List(ctx context.Context, req *dto.StudentListRequest) ([]dto.StudentResponse, int64, error) {
	students, total, err := s.repo.Student.List(ctx, req.Keyword, req.EnrollYear, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出学生失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentResponse, 0, len(students))
	for i := range students {
		result = append(result, *s.toStudentResponse(&students[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *studentService) Update(ctx context.Context, id string, req *dto.UpdateStudentRequest, callerID string) (*dto.StudentResponse, error) {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新学号，检查唯一性
	if req.StudentNo != nil && *req.StudentNo != student.StudentNo {
		existing, err := s.repo.Student.GetByStudentNo(ctx, *req.StudentNo)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrStudentNoExists
		}
		student.StudentNo = *req.StudentNo
	}

	if req.Name != nil {
		student.Name = *req.Name
	}
	if req.EnrollYear != nil {
		student.EnrollYear = *req.EnrollYear
	}

	student.UpdatedBy = &callerID

	if err := s.repo.Student.Update(ctx, student); err != nil {
		s.logger.Error("更新学生失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentResponse(student), nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentService) Delete(ctx context.Context, id string, callerID string) error {
	student, err := s.repo.Student.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentNotFound
		}
		s.logger.Error("查询学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 学生仍有选课记录时拒绝删除
	count, err := s.repo.Student.CountEnrollments(ctx, student.StudentID)
	if err != nil {
		s.logger.Error("查询学生选课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrStudentHasEnrollment
	}

	if err := s.repo.Student.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除学生失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ────────────────────── ParseImportFile ──────────────────────

const maxImportRows = 1000

var (
	ErrImportNoData      = errors.New("Excel文件无数据行（第一行为表头）")
	ErrImportTooManyRows = fmt.Errorf("数据行数超过上限 %d 行", maxImportRows)
	ErrImportBadHeader   = errors.New("Excel表头缺少必要列（学号/姓名/入学年份）")
)

// ParseImportFile 解析导入 Excel 文件，返回解析后的行数据
func (s *studentService) ParseImportFile(reader io.Reader) ([]ImportStudentRow, error) {
	f, err := excelize.OpenReader(reader)
	if err != nil {
		return nil, fmt.Errorf("无法解析Excel文件: %w", err)
	}
	defer f.Close()

	sheetName := f.GetSheetName(0)
	excelRows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("读取工作表失败: %w", err)
	}

	if len(excelRows) < 2 {
		return nil, ErrImportNoData
	}

	// 解析表头（支持灵活列序）
	colIndex := parseHeaderIndex(excelRows[0])
	if colIndex["student_no"] < 0 || colIndex["name"] < 0 || colIndex["enroll_year"] < 0 {
		return nil, ErrImportBadHeader
	}

	var rows []ImportStudentRow
	for i := 1; i < len(excelRows); i++ {
		row := excelRows[i]
		item := ImportStudentRow{Row: i + 1}

		if idx := colIndex["student_no"]; idx < len(row) {
			item.StudentNo = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["name"]; idx < len(row) {
			item.Name = strings.TrimSpace(row[idx])
		}
		if idx := colIndex["enroll_year"]; idx < len(row) {
			item.EnrollYear = strings.TrimSpace(row[idx])
		}

		// 跳过全空行
		if item.StudentNo == "" && item.Name == "" && item.EnrollYear == "" {
			continue
		}

		rows = append(rows, item)
	}

	if len(rows) == 0 {
		return nil, ErrImportNoData
	}
	if len(rows) > maxImportRows {
		return nil, ErrImportTooManyRows
	}

	return rows, nil
}

// parseHeaderIndex 解析 Excel 表头，返回列名 -> 列索引映射
func parseHeaderIndex(header []string) map[string]int {
	idx := map[string]int{
		"student_no":  -1,
		"name":        -1,
		"enroll_year": -1,
	}
	for i, h := range header {
		lower := strings.ToLower(strings.TrimSpace(h))
		switch {
		case lower == "学号" || lower == "student_no":
			idx["student_no"] = i
		case lower == "姓名" || lower == "name":
			idx["name"] = i
		case lower == "入学年份" || lower == "enroll_year":
			idx["enroll_year"] = i
		}
	}
	return idx
}

// ═══════════════════════════════════════════════════════════
// ImportStudents — 批量导入学生
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 第一阶段逐行校验（必填、年份格式、学号查重），失败行计入 errors
//   - 第二阶段将全部通过校验的行在一个事务中写入，任一写入失败整体回滚
//   - 文件内部学号重复同样视为校验失败，只保留首次出现的行

func (s *studentService) ImportStudents(ctx context.Context, rows []ImportStudentRow, callerID string) (*dto.ImportStudentResponse, error) {
	resp := &dto.ImportStudentResponse{Total: len(rows)}

	seen := make(map[string]bool, len(rows))
	var validStudents []model.Student

	for _, row := range rows {
		// 校验必填字段
		if row.StudentNo == "" || row.Name == "" || row.EnrollYear == "" {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: "必填字段为空",
			})
			continue
		}

		// 校验入学年份
		year, err := strconv.Atoi(row.EnrollYear)
		if err != nil || year < 2000 || year > 2100 {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("入学年份无效: %s", row.EnrollYear),
			})
			continue
		}

		// 文件内部查重
		if seen[row.StudentNo] {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("文件内学号重复: %s", row.StudentNo),
			})
			continue
		}
		seen[row.StudentNo] = true

		// 数据库查重
		if _, err := s.repo.Student.GetByStudentNo(ctx, row.StudentNo); err == nil {
			resp.Failed++
			resp.Errors = append(resp.Errors, dto.ImportStudentError{
				Row: row.Row, Reason: fmt.Sprintf("学号已存在: %s", row.StudentNo),
			})
			continue
		} else if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.logger.Error("导入查重失败", zap.Int("row", row.Row), zap.Error(err))
			return nil, err
		}

		student := model.Student{
			StudentNo:  row.StudentNo,
			Name:       row.Name,
			EnrollYear: year,
		}
		student.CreatedBy = &callerID
		student.UpdatedBy = &callerID
		validStudents = append(validStudents, student)
	}

	// 事务批量写入
	if len(validStudents) > 0 {
		if err := s.repo.Student.BatchCreate(ctx, validStudents); err != nil {
			s.logger.Error("导入学生写入失败，事务回滚", zap.Error(err))
			return nil, fmt.Errorf("写入数据库失败，已回滚全部导入: %w", err)
		}
		resp.Success = len(validStudents)
	}

	return resp, nil
}

// ── 内部辅助方法 ──

func (s *studentService) toStudentResponse(student *model.Student) *dto.StudentResponse {
	return &dto.StudentResponse{
		ID:         student.StudentID,
		StudentNo:  student.StudentNo,
		Name:       student.Name,
		EnrollYear: student.EnrollYear,
		CreatedAt:  student.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  student.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
