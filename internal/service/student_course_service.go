package service

import (
	"context"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/model"
	"course-hub/backend/internal/repository"
)

// ── 选课记录模块业务错误 ──

var (
	ErrStudentCourseNotFound = errors.New("选课记录不存在")
	ErrStudentCourseExists   = errors.New("该学生在该学期已选此课程")
)

// StudentCourseService 选课记录业务接口
type StudentCourseService interface {
	Create(ctx context.Context, req *dto.CreateStudentCourseRequest, callerID string) (*dto.StudentCourseResponse, error)
	BatchCreate(ctx context.Context, req *dto.BatchCreateStudentCourseRequest, callerID string) (*dto.BatchCreateStudentCourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.StudentCourseResponse, error)
	List(ctx context.Context, req *dto.StudentCourseListRequest) ([]dto.StudentCourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateStudentCourseRequest, callerID string) (*dto.StudentCourseResponse, error)
	Preview(ctx context.Context, id string, req *dto.UpdateStudentCourseRequest) (*dto.ChangesetResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type studentCourseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewStudentCourseService 创建 StudentCourseService 实例
func NewStudentCourseService(repo *repository.Repository, logger *zap.Logger) StudentCourseService {
	return &studentCourseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *studentCourseService) Create(ctx context.Context, req *dto.CreateStudentCourseRequest, callerID string) (*dto.StudentCourseResponse, error) {
	// 校验三个关联实体均存在
	if _, err := s.repo.Student.GetByID(ctx, req.StudentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	// 同一学生+课程+学期只允许一条选课记录
	existing, err := s.repo.StudentCourse.GetByTriple(ctx, req.StudentID, req.CourseID, req.SemesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询选课记录失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrStudentCourseExists
	}

	enrollment := &model.StudentCourse{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		SemesterID: req.SemesterID,
	}
	enrollment.CreatedBy = &callerID
	enrollment.UpdatedBy = &callerID

	if err := s.repo.StudentCourse.Create(ctx, enrollment); err != nil {
		s.logger.Error("创建选课记录失败", zap.Error(err))
		return nil, err
	}

	// 重新查询以携带关联摘要
	created, err := s.repo.StudentCourse.GetByID(ctx, enrollment.EnrollmentID)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("id", enrollment.EnrollmentID), zap.Error(err))
		return nil, err
	}

	return s.toStudentCourseResponse(created), nil
}

// ═══════════════════════════════════════════════════════════
// BatchCreate — 批量选课
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 先整体校验：课程、学期、全部学生必须存在，任一学生已选该课程即拒绝
//   - 校验全部通过后在一个事务中写入，任一写入失败整体回滚
//   - 与逐条创建不同，批量接口不做部分成功，避免选课名单出现中间状态

func (s *studentCourseService) BatchCreate(ctx context.Context, req *dto.BatchCreateStudentCourseRequest, callerID string) (*dto.BatchCreateStudentCourseResponse, error) {
	if _, err := s.repo.Course.GetByID(ctx, req.CourseID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, err
	}
	if _, err := s.repo.Semester.GetByID(ctx, req.SemesterID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		return nil, err
	}

	seen := make(map[string]bool, len(req.StudentIDs))
	enrollments := make([]model.StudentCourse, 0, len(req.StudentIDs))

	for _, studentID := range req.StudentIDs {
		// 名单内部去重，重复出现的学生只记一次
		if seen[studentID] {
			continue
		}
		seen[studentID] = true

		if _, err := s.repo.Student.GetByID(ctx, studentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			return nil, err
		}

		existing, err := s.repo.StudentCourse.GetByTriple(ctx, studentID, req.CourseID, req.SemesterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrStudentCourseExists
		}

		enrollment := model.StudentCourse{
			StudentID:  studentID,
			CourseID:   req.CourseID,
			SemesterID: req.SemesterID,
		}
		enrollment.CreatedBy = &callerID
		enrollment.UpdatedBy = &callerID
		enrollments = append(enrollments, enrollment)
	}

	if err := s.repo.StudentCourse.BatchCreate(ctx, enrollments); err != nil {
		s.logger.Error("批量选课写入失败，事务回滚",
			zap.String("course_id", req.CourseID),
			zap.String("semester_id", req.SemesterID),
			zap.Error(err))
		return nil, err
	}

	return &dto.BatchCreateStudentCourseResponse{
		Total:   len(req.StudentIDs),
		Created: len(enrollments),
	}, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *studentCourseService) GetByID(ctx context.Context, id string) (*dto.StudentCourseResponse, error) {
	enrollment, err := s.repo.StudentCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentCourseNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentCourseResponse(enrollment), nil
}

// ────────────────────── List ──────────────────────

func (s *studentCourseService) List(ctx context.Context, req *dto.StudentCourseListRequest) ([]dto.StudentCourseResponse, int64, error) {
	filter := repository.StudentCourseFilter{
		StudentID:  req.StudentID,
		CourseID:   req.CourseID,
		SemesterID: req.SemesterID,
	}

	enrollments, total, err := s.repo.StudentCourse.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出选课记录失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.StudentCourseResponse, 0, len(enrollments))
	for i := range enrollments {
		result = append(result, *s.toStudentCourseResponse(&enrollments[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

// Update 更新选课记录，写入走版本号条件更新，并发修改返回 ErrOptimisticLock
func (s *studentCourseService) Update(ctx context.Context, id string, req *dto.UpdateStudentCourseRequest, callerID string) (*dto.StudentCourseResponse, error) {
	enrollment, err := s.repo.StudentCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentCourseNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.StudentID != nil && *req.StudentID != enrollment.StudentID {
		if _, err := s.repo.Student.GetByID(ctx, *req.StudentID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrStudentNotFound
			}
			return nil, err
		}
		enrollment.StudentID = *req.StudentID
	}
	if req.CourseID != nil && *req.CourseID != enrollment.CourseID {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
		enrollment.CourseID = *req.CourseID
	}
	if req.SemesterID != nil && *req.SemesterID != enrollment.SemesterID {
		if _, err := s.repo.Semester.GetByID(ctx, *req.SemesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSemesterNotFound
			}
			return nil, err
		}
		enrollment.SemesterID = *req.SemesterID
	}

	// 三元组查重（排除自身）
	existing, err := s.repo.StudentCourse.GetByTriple(ctx, enrollment.StudentID, enrollment.CourseID, enrollment.SemesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.EnrollmentID != enrollment.EnrollmentID {
		return nil, ErrStudentCourseExists
	}

	enrollment.UpdatedBy = &callerID

	if err := s.repo.StudentCourse.Update(ctx, enrollment); err != nil {
		s.logger.Error("更新选课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新查询以携带更新后的关联摘要
	updated, err := s.repo.StudentCourse.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toStudentCourseResponse(updated), nil
}

// ────────────────────── Preview ──────────────────────

// Preview 更新前预览：与 Update 做同样校验但不落库，冲突转为字段级错误
func (s *studentCourseService) Preview(ctx context.Context, id string, req *dto.UpdateStudentCourseRequest) (*dto.ChangesetResponse, error) {
	enrollment, err := s.repo.StudentCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrStudentCourseNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	changes := make([]dto.FieldChange, 0)
	fieldErrors := make([]dto.FieldError, 0)

	newStudentID := enrollment.StudentID
	newCourseID := enrollment.CourseID
	newSemesterID := enrollment.SemesterID

	if req.StudentID != nil && *req.StudentID != enrollment.StudentID {
		if _, err := s.repo.Student.GetByID(ctx, *req.StudentID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "student_id", Message: "学生不存在"})
		} else {
			newStudentID = *req.StudentID
			changes = append(changes, dto.FieldChange{Field: "student_id", From: enrollment.StudentID, To: *req.StudentID})
		}
	}
	if req.CourseID != nil && *req.CourseID != enrollment.CourseID {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "course_id", Message: "课程不存在"})
		} else {
			newCourseID = *req.CourseID
			changes = append(changes, dto.FieldChange{Field: "course_id", From: enrollment.CourseID, To: *req.CourseID})
		}
	}
	if req.SemesterID != nil && *req.SemesterID != enrollment.SemesterID {
		if _, err := s.repo.Semester.GetByID(ctx, *req.SemesterID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "semester_id", Message: "学期不存在"})
		} else {
			newSemesterID = *req.SemesterID
			changes = append(changes, dto.FieldChange{Field: "semester_id", From: enrollment.SemesterID, To: *req.SemesterID})
		}
	}

	// 三元组变化时查重（排除自身）
	if newStudentID != enrollment.StudentID || newCourseID != enrollment.CourseID || newSemesterID != enrollment.SemesterID {
		existing, err := s.repo.StudentCourse.GetByTriple(ctx, newStudentID, newCourseID, newSemesterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.EnrollmentID != enrollment.EnrollmentID {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "student_id", Message: "该学生在该学期已选此课程"})
		}
	}

	return &dto.ChangesetResponse{
		Valid:   len(fieldErrors) == 0,
		Changes: changes,
		Errors:  fieldErrors,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *studentCourseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.StudentCourse.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrStudentCourseNotFound
		}
		s.logger.Error("查询选课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.StudentCourse.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除选课记录失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *studentCourseService) toStudentCourseResponse(enrollment *model.StudentCourse) *dto.StudentCourseResponse {
	resp := &dto.StudentCourseResponse{
		ID:         enrollment.EnrollmentID,
		StudentID:  enrollment.StudentID,
		CourseID:   enrollment.CourseID,
		SemesterID: enrollment.SemesterID,
		CreatedAt:  enrollment.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  enrollment.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if enrollment.Student != nil {
		resp.Student = &dto.StudentResponse{
			ID:         enrollment.Student.StudentID,
			StudentNo:  enrollment.Student.StudentNo,
			Name:       enrollment.Student.Name,
			EnrollYear: enrollment.Student.EnrollYear,
		}
	}
	if enrollment.Course != nil {
		resp.Course = &dto.CourseResponse{
			ID:      enrollment.Course.CourseID,
			Code:    enrollment.Course.Code,
			Name:    enrollment.Course.Name,
			Credits: enrollment.Course.Credits,
		}
	}
	if enrollment.Semester != nil {
		resp.Semester = &dto.SemesterResponse{
			ID:        enrollment.Semester.SemesterID,
			ProgramID: enrollment.Semester.ProgramID,
			Name:      enrollment.Semester.Name,
			StartDate: enrollment.Semester.StartDate.Format("2006-01-02"),
			EndDate:   enrollment.Semester.EndDate.Format("2006-01-02"),
		}
	}
	return resp
}
