package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-hub/backend/internal/repository"
)

// ── 导出模块业务错误 ──

var (
	ErrExportNoData       = errors.New("无可导出的数据")
	ErrExportGenerateFail = errors.New("生成导出文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 授课安排表、选课名单导出为 Excel (.xlsx)
//   - 学期日历导出为 iCalendar (.ics)，可直接导入日历客户端
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportTeachingAssignments 导出某学期的授课安排表
	ExportTeachingAssignments(ctx context.Context, semesterID string) (*bytes.Buffer, string, error)
	// ExportCourseRoster 导出某课程在某学期的选课名单
	ExportCourseRoster(ctx context.Context, courseID, semesterID string) (*bytes.Buffer, string, error)
	// ExportSemesterCalendar 导出某培养项目的学期日历
	ExportSemesterCalendar(ctx context.Context, programID string) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

// ═══════════════════════════════════════════════════════════
// ExportTeachingAssignments — 导出授课安排为 Excel
// ═══════════════════════════════════════════════════════════
//
// 输出格式：
//   - 单 Sheet，标题行 + 表头 + 数据行
//   - 列：课程代码 | 课程名称 | 学分 | 教师工号 | 教师姓名 | 职称 | 角色
//   - 按课程代码、教师工号排序
//
// 返回值：buf（Excel 内容）, filename（建议文件名）, error

func (s *exportService) ExportTeachingAssignments(ctx context.Context, semesterID string) (*bytes.Buffer, string, error) {
	// 1. 查询学期
	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, "", err
	}

	// 2. 查询授课安排（携带教师与课程信息）
	assignments, err := s.repo.TeacherCourse.ListBySemester(ctx, semesterID)
	if err != nil {
		s.logger.Error("查询授课安排失败", zap.Error(err))
		return nil, "", err
	}
	if len(assignments) == 0 {
		return nil, "", ErrExportNoData
	}

	// 3. 按课程代码 + 教师工号排序
	sort.Slice(assignments, func(i, j int) bool {
		var ci, cj, ti, tj string
		if assignments[i].Course != nil {
			ci = assignments[i].Course.Code
		}
		if assignments[j].Course != nil {
			cj = assignments[j].Course.Code
		}
		if assignments[i].Teacher != nil {
			ti = assignments[i].Teacher.TeacherNo
		}
		if assignments[j].Teacher != nil {
			tj = assignments[j].Teacher.TeacherNo
		}
		if ci != cj {
			return ci < cj
		}
		return ti < tj
	})

	// 4. 生成 Excel
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "授课安排"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 14)
	f.SetColWidth(sheetName, "B", "B", 28)
	f.SetColWidth(sheetName, "C", "C", 8)
	f.SetColWidth(sheetName, "D", "D", 14)
	f.SetColWidth(sheetName, "E", "E", 14)
	f.SetColWidth(sheetName, "F", "F", 12)
	f.SetColWidth(sheetName, "G", "G", 10)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 标题行
	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s — 授课安排", semester.Name))
	f.MergeCell(sheetName, "A1", "G1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	// 表头
	headers := []string{"课程代码", "课程名称", "学分", "教师工号", "教师姓名", "职称", "角色"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	roleNames := map[string]string{"lecturer": "主讲", "assistant": "助教"}

	// 数据行
	row := 3
	for _, a := range assignments {
		if a.Course != nil {
			f.SetCellValue(sheetName, cell("A", row), a.Course.Code)
			f.SetCellValue(sheetName, cell("B", row), a.Course.Name)
			f.SetCellValue(sheetName, cell("C", row), a.Course.Credits)
		}
		if a.Teacher != nil {
			f.SetCellValue(sheetName, cell("D", row), a.Teacher.TeacherNo)
			f.SetCellValue(sheetName, cell("E", row), a.Teacher.Name)
			f.SetCellValue(sheetName, cell("F", row), a.Teacher.Title)
		}
		roleName := roleNames[a.Role]
		if roleName == "" {
			roleName = a.Role
		}
		f.SetCellValue(sheetName, cell("G", row), roleName)
		row++
	}

	// 写入 buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("授课安排_%s.xlsx", semester.Name)
	return buf, filename, nil
}

// ────────────────────── ExportCourseRoster ──────────────────────

// ExportCourseRoster 导出选课名单为 Excel
// 列：学号 | 姓名 | 入学年份 | 选课时间，按学号排序
func (s *exportService) ExportCourseRoster(ctx context.Context, courseID, semesterID string) (*bytes.Buffer, string, error) {
	course, err := s.repo.Course.GetByID(ctx, courseID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, "", err
	}

	semester, err := s.repo.Semester.GetByID(ctx, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败", zap.Error(err))
		return nil, "", err
	}

	enrollments, err := s.repo.StudentCourse.ListByCourseAndSemester(ctx, courseID, semesterID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, "", err
	}
	if len(enrollments) == 0 {
		return nil, "", ErrExportNoData
	}

	sort.Slice(enrollments, func(i, j int) bool {
		var si, sj string
		if enrollments[i].Student != nil {
			si = enrollments[i].Student.StudentNo
		}
		if enrollments[j].Student != nil {
			sj = enrollments[j].Student.StudentNo
		}
		return si < sj
	})

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "选课名单"
	idx, _ := f.NewSheet(sheetName)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 16)
	f.SetColWidth(sheetName, "B", "B", 14)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 22)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	f.SetCellValue(sheetName, "A1", fmt.Sprintf("%s（%s）— 选课名单", course.Name, semester.Name))
	f.MergeCell(sheetName, "A1", "D1")
	f.SetCellStyle(sheetName, "A1", "A1", headerStyle)

	headers := []string{"学号", "姓名", "入学年份", "选课时间"}
	for i, h := range headers {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetCellValue(sheetName, cell(col, 2), h)
	}

	row := 3
	for _, e := range enrollments {
		if e.Student != nil {
			f.SetCellValue(sheetName, cell("A", row), e.Student.StudentNo)
			f.SetCellValue(sheetName, cell("B", row), e.Student.Name)
			f.SetCellValue(sheetName, cell("C", row), e.Student.EnrollYear)
		}
		f.SetCellValue(sheetName, cell("D", row), e.CreatedAt.Format("2006-01-02 15:04"))
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("选课名单_%s_%s.xlsx", course.Code, semester.Name)
	return buf, filename, nil
}

// ────────────────────── ExportSemesterCalendar ──────────────────────

// ExportSemesterCalendar 导出学期日历为 iCalendar
// 每个学期生成一个全天事件（DTEND 为非包含边界，取结束日期次日）
func (s *exportService) ExportSemesterCalendar(ctx context.Context, programID string) (*bytes.Buffer, string, error) {
	program, err := s.repo.Program.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProgramNotFound
		}
		s.logger.Error("查询培养项目失败", zap.Error(err))
		return nil, "", err
	}

	semesters, err := s.repo.Semester.ListByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("查询学期列表失败", zap.Error(err))
		return nil, "", err
	}
	if len(semesters) == 0 {
		return nil, "", ErrExportNoData
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//course-hub//semester-calendar//CN")

	now := time.Now()
	for _, sem := range semesters {
		event := cal.AddEvent(fmt.Sprintf("semester-%s@course-hub", sem.SemesterID))
		event.SetDtStampTime(now)
		event.SetAllDayStartAt(sem.StartDate)
		event.SetAllDayEndAt(sem.EndDate.AddDate(0, 0, 1))
		event.SetSummary(fmt.Sprintf("%s %s", program.Name, sem.Name))
		event.SetDescription(fmt.Sprintf("%s 至 %s",
			sem.StartDate.Format("2006-01-02"), sem.EndDate.Format("2006-01-02")))
	}

	buf := bytes.NewBufferString(cal.Serialize())

	filename := fmt.Sprintf("学期日历_%s.ics", program.Name)
	return buf, filename, nil
}

// ── 辅助函数 ──

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
