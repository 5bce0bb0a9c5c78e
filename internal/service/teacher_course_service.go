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

// ── 授课安排模块业务错误 ──

var (
	ErrTeacherCourseNotFound = errors.New("授课安排不存在")
	ErrTeacherCourseExists   = errors.New("该教师在该学期已有此课程的授课安排")
)

// TeacherCourseService 授课安排业务接口
type TeacherCourseService interface {
	Create(ctx context.Context, req *dto.CreateTeacherCourseRequest, callerID string) (*dto.TeacherCourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherCourseResponse, error)
	List(ctx context.Context, req *dto.TeacherCourseListRequest) ([]dto.TeacherCourseResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherCourseRequest, callerID string) (*dto.TeacherCourseResponse, error)
	Preview(ctx context.Context, id string, req *dto.UpdateTeacherCourseRequest) (*dto.ChangesetResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type teacherCourseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherCourseService 创建 TeacherCourseService 实例
func NewTeacherCourseService(repo *repository.Repository, logger *zap.Logger) TeacherCourseService {
	return &teacherCourseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teacherCourseService) Create(ctx context.Context, req *dto.CreateTeacherCourseRequest, callerID string) (*dto.TeacherCourseResponse, error) {
	// 校验三个关联实体均存在
	if _, err := s.repo.Teacher.GetByID(ctx, req.TeacherID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
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

	// 同一教师+课程+学期组合只允许一条安排
	existing, err := s.repo.TeacherCourse.GetByTriple(ctx, req.TeacherID, req.CourseID, req.SemesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询授课安排失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeacherCourseExists
	}

	// 未指定角色时默认主讲
	role := req.Role
	if role == "" {
		role = "lecturer"
	}

	assignment := &model.TeacherCourse{
		TeacherID:  req.TeacherID,
		CourseID:   req.CourseID,
		SemesterID: req.SemesterID,
		Role:       role,
	}
	assignment.CreatedBy = &callerID
	assignment.UpdatedBy = &callerID

	if err := s.repo.TeacherCourse.Create(ctx, assignment); err != nil {
		s.logger.Error("创建授课安排失败", zap.Error(err))
		return nil, err
	}

	// 重新查询以携带关联摘要
	created, err := s.repo.TeacherCourse.GetByID(ctx, assignment.AssignmentID)
	if err != nil {
		s.logger.Error("查询授课安排失败", zap.String("id", assignment.AssignmentID), zap.Error(err))
		return nil, err
	}

	return s.toTeacherCourseResponse(created), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherCourseService) GetByID(ctx context.Context, id string) (*dto.TeacherCourseResponse, error) {
	assignment, err := s.repo.TeacherCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherCourseNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTeacherCourseResponse(assignment), nil
}

// ────────────────────── List ──────────────────────

func (s *teacherCourseService) List(ctx context.Context, req *dto.TeacherCourseListRequest) ([]dto.TeacherCourseResponse, int64, error) {
	filter := repository.TeacherCourseFilter{
		TeacherID:  req.TeacherID,
		CourseID:   req.CourseID,
		SemesterID: req.SemesterID,
		Role:       req.Role,
	}

	assignments, total, err := s.repo.TeacherCourse.List(ctx, filter, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出授课安排失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherCourseResponse, 0, len(assignments))
	for i := range assignments {
		result = append(result, *s.toTeacherCourseResponse(&assignments[i]))
	}

	return result, total, nil
}

// ═══════════════════════════════════════════════════════════
// Update — 更新授课安排（乐观锁）
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 三个外键任一变化时重新校验目标实体存在
//   - 三元组变化时重新查重，排除自身
//   - 写入走版本号条件更新，并发修改返回 ErrOptimisticLock

func (s *teacherCourseService) Update(ctx context.Context, id string, req *dto.UpdateTeacherCourseRequest, callerID string) (*dto.TeacherCourseResponse, error) {
	assignment, err := s.repo.TeacherCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherCourseNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	if req.TeacherID != nil && *req.TeacherID != assignment.TeacherID {
		if _, err := s.repo.Teacher.GetByID(ctx, *req.TeacherID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTeacherNotFound
			}
			return nil, err
		}
		assignment.TeacherID = *req.TeacherID
	}
	if req.CourseID != nil && *req.CourseID != assignment.CourseID {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrCourseNotFound
			}
			return nil, err
		}
		assignment.CourseID = *req.CourseID
	}
	if req.SemesterID != nil && *req.SemesterID != assignment.SemesterID {
		if _, err := s.repo.Semester.GetByID(ctx, *req.SemesterID); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrSemesterNotFound
			}
			return nil, err
		}
		assignment.SemesterID = *req.SemesterID
	}
	if req.Role != nil {
		assignment.Role = *req.Role
	}

	// 三元组查重（排除自身）
	existing, err := s.repo.TeacherCourse.GetByTriple(ctx, assignment.TeacherID, assignment.CourseID, assignment.SemesterID)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if existing != nil && existing.AssignmentID != assignment.AssignmentID {
		return nil, ErrTeacherCourseExists
	}

	assignment.UpdatedBy = &callerID

	if err := s.repo.TeacherCourse.Update(ctx, assignment); err != nil {
		s.logger.Error("更新授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 重新查询以携带更新后的关联摘要
	updated, err := s.repo.TeacherCourse.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTeacherCourseResponse(updated), nil
}

// ═══════════════════════════════════════════════════════════
// Preview — 更新前预览（不落库）
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 与 Update 做同样的校验，但任何情况下都不写数据库
//   - 关联实体不存在、三元组冲突均转为字段级错误返回
//   - changes 仅包含与当前值不同的字段

func (s *teacherCourseService) Preview(ctx context.Context, id string, req *dto.UpdateTeacherCourseRequest) (*dto.ChangesetResponse, error) {
	assignment, err := s.repo.TeacherCourse.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherCourseNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	changes := make([]dto.FieldChange, 0)
	fieldErrors := make([]dto.FieldError, 0)

	newTeacherID := assignment.TeacherID
	newCourseID := assignment.CourseID
	newSemesterID := assignment.SemesterID

	if req.TeacherID != nil && *req.TeacherID != assignment.TeacherID {
		if _, err := s.repo.Teacher.GetByID(ctx, *req.TeacherID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "teacher_id", Message: "教师不存在"})
		} else {
			newTeacherID = *req.TeacherID
			changes = append(changes, dto.FieldChange{Field: "teacher_id", From: assignment.TeacherID, To: *req.TeacherID})
		}
	}
	if req.CourseID != nil && *req.CourseID != assignment.CourseID {
		if _, err := s.repo.Course.GetByID(ctx, *req.CourseID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "course_id", Message: "课程不存在"})
		} else {
			newCourseID = *req.CourseID
			changes = append(changes, dto.FieldChange{Field: "course_id", From: assignment.CourseID, To: *req.CourseID})
		}
	}
	if req.SemesterID != nil && *req.SemesterID != assignment.SemesterID {
		if _, err := s.repo.Semester.GetByID(ctx, *req.SemesterID); err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, err
			}
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "semester_id", Message: "学期不存在"})
		} else {
			newSemesterID = *req.SemesterID
			changes = append(changes, dto.FieldChange{Field: "semester_id", From: assignment.SemesterID, To: *req.SemesterID})
		}
	}
	if req.Role != nil && *req.Role != assignment.Role {
		changes = append(changes, dto.FieldChange{Field: "role", From: assignment.Role, To: *req.Role})
	}

	// 三元组变化时查重（排除自身）
	if newTeacherID != assignment.TeacherID || newCourseID != assignment.CourseID || newSemesterID != assignment.SemesterID {
		existing, err := s.repo.TeacherCourse.GetByTriple(ctx, newTeacherID, newCourseID, newSemesterID)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil && existing.AssignmentID != assignment.AssignmentID {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "teacher_id", Message: "该教师在该学期已有此课程的授课安排"})
		}
	}

	return &dto.ChangesetResponse{
		Valid:   len(fieldErrors) == 0,
		Changes: changes,
		Errors:  fieldErrors,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *teacherCourseService) Delete(ctx context.Context, id string, callerID string) error {
	if _, err := s.repo.TeacherCourse.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherCourseNotFound
		}
		s.logger.Error("查询授课安排失败", zap.String("id", id), zap.Error(err))
		return err
	}

	if err := s.repo.TeacherCourse.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除授课安排失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *teacherCourseService) toTeacherCourseResponse(assignment *model.TeacherCourse) *dto.TeacherCourseResponse {
	resp := &dto.TeacherCourseResponse{
		ID:         assignment.AssignmentID,
		TeacherID:  assignment.TeacherID,
		CourseID:   assignment.CourseID,
		SemesterID: assignment.SemesterID,
		Role:       assignment.Role,
		CreatedAt:  assignment.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:  assignment.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if assignment.Teacher != nil {
		resp.Teacher = &dto.TeacherResponse{
			ID:        assignment.Teacher.TeacherID,
			TeacherNo: assignment.Teacher.TeacherNo,
			Name:      assignment.Teacher.Name,
			Title:     assignment.Teacher.Title,
		}
		if assignment.Teacher.Email != nil {
			resp.Teacher.Email = *assignment.Teacher.Email
		}
	}
	if assignment.Course != nil {
		resp.Course = &dto.CourseResponse{
			ID:      assignment.Course.CourseID,
			Code:    assignment.Course.Code,
			Name:    assignment.Course.Name,
			Credits: assignment.Course.Credits,
		}
	}
	if assignment.Semester != nil {
		resp.Semester = &dto.SemesterResponse{
			ID:        assignment.Semester.SemesterID,
			ProgramID: assignment.Semester.ProgramID,
			Name:      assignment.Semester.Name,
			StartDate: assignment.Semester.StartDate.Format("2006-01-02"),
			EndDate:   assignment.Semester.EndDate.Format("2006-01-02"),
		}
	}
	return resp
}
