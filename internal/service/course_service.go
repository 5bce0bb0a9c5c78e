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

// ── 课程模块业务错误 ──

var (
	ErrCourseNotFound   = errors.New("课程不存在")
	ErrCourseCodeExists = errors.New("课程代码已存在")
	ErrCourseInUse      = errors.New("课程存在关联安排，无法删除")
)

// CourseService 课程业务接口
type CourseService interface {
	Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error)
	GetByID(ctx context.Context, id string) (*dto.CourseResponse, error)
	List(ctx context.Context) ([]dto.CourseResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error)
	// Preview 变更预检：返回本次更新将产生的字段变更与校验结果，不落库
	Preview(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.ChangesetResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type courseService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewCourseService 创建 CourseService 实例
func NewCourseService(repo *repository.Repository, logger *zap.Logger) CourseService {
	return &courseService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *courseService) Create(ctx context.Context, req *dto.CreateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	// 检查课程代码唯一性
	existing, err := s.repo.Course.GetByCode(ctx, req.Code)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询课程失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrCourseCodeExists
	}

	course := &model.Course{
		Code:        req.Code,
		Name:        req.Name,
		Credits:     req.Credits,
		Description: req.Description,
	}
	course.CreatedBy = &callerID
	course.UpdatedBy = &callerID

	if err := s.repo.Course.Create(ctx, course); err != nil {
		s.logger.Error("创建课程失败", zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *courseService) GetByID(ctx context.Context, id string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── List ──────────────────────

func (s *courseService) List(ctx context.Context) ([]dto.CourseResponse, error) {
	courses, err := s.repo.Course.List(ctx)
	if err != nil {
		s.logger.Error("列出课程失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.CourseResponse, 0, len(courses))
	for i := range courses {
		result = append(result, *s.toCourseResponse(&courses[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *courseService) Update(ctx context.Context, id string, req *dto.UpdateCourseRequest, callerID string) (*dto.CourseResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新课程代码，检查唯一性
	if req.Code != nil && *req.Code != course.Code {
		existing, err := s.repo.Course.GetByCode(ctx, *req.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrCourseCodeExists
		}
		course.Code = *req.Code
	}

	if req.Name != nil {
		course.Name = *req.Name
	}
	if req.Credits != nil {
		course.Credits = *req.Credits
	}
	if req.Description != nil {
		course.Description = *req.Description
	}

	course.UpdatedBy = &callerID

	if err := s.repo.Course.Update(ctx, course); err != nil {
		s.logger.Error("更新课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toCourseResponse(course), nil
}

// ────────────────────── Preview ──────────────────────

func (s *courseService) Preview(ctx context.Context, id string, req *dto.UpdateCourseRequest) (*dto.ChangesetResponse, error) {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	changes := make([]dto.FieldChange, 0)
	fieldErrors := make([]dto.FieldError, 0)

	if req.Code != nil && *req.Code != course.Code {
		changes = append(changes, dto.FieldChange{Field: "code", From: course.Code, To: *req.Code})

		existing, err := s.repo.Course.GetByCode(ctx, *req.Code)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "code", Message: "课程代码已存在"})
		}
	}

	if req.Name != nil && *req.Name != course.Name {
		changes = append(changes, dto.FieldChange{Field: "name", From: course.Name, To: *req.Name})
	}
	if req.Credits != nil && *req.Credits != course.Credits {
		changes = append(changes, dto.FieldChange{Field: "credits", From: course.Credits, To: *req.Credits})
	}
	if req.Description != nil && *req.Description != course.Description {
		changes = append(changes, dto.FieldChange{Field: "description", From: course.Description, To: *req.Description})
	}

	return &dto.ChangesetResponse{
		Valid:   len(fieldErrors) == 0,
		Changes: changes,
		Errors:  fieldErrors,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *courseService) Delete(ctx context.Context, id string, callerID string) error {
	course, err := s.repo.Course.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCourseNotFound
		}
		s.logger.Error("查询课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 课程仍被授课安排或选课记录引用时拒绝删除
	count, err := s.repo.Course.CountAssignments(ctx, course.CourseID)
	if err != nil {
		s.logger.Error("查询课程关联记录失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrCourseInUse
	}

	if err := s.repo.Course.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除课程失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *courseService) toCourseResponse(course *model.Course) *dto.CourseResponse {
	return &dto.CourseResponse{
		ID:          course.CourseID,
		Code:        course.Code,
		Name:        course.Name,
		Credits:     course.Credits,
		Description: course.Description,
		CreatedAt:   course.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   course.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
