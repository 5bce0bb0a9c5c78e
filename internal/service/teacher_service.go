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

// ── 教师模块业务错误 ──

var (
	ErrTeacherNotFound  = errors.New("教师不存在")
	ErrTeacherNoExists  = errors.New("教师工号已存在")
	ErrTeacherHasCourse = errors.New("教师存在授课安排，无法删除")
)

// TeacherService 教师业务接口
type TeacherService interface {
	Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error)
	List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error)
	Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type teacherService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewTeacherService 创建 TeacherService 实例
func NewTeacherService(repo *repository.Repository, logger *zap.Logger) TeacherService {
	return &teacherService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *teacherService) Create(ctx context.Context, req *dto.CreateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	// 检查工号唯一性
	existing, err := s.repo.Teacher.GetByTeacherNo(ctx, req.TeacherNo)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询教师失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrTeacherNoExists
	}

	teacher := &model.Teacher{
		TeacherNo: req.TeacherNo,
		Name:      req.Name,
		Title:     req.Title,
	}
	if req.Email != "" {
		teacher.Email = &req.Email
	}
	teacher.CreatedBy = &callerID
	teacher.UpdatedBy = &callerID

	if err := s.repo.Teacher.Create(ctx, teacher); err != nil {
		s.logger.Error("创建教师失败", zap.Error(err))
		return nil, err
	}

	return s.toTeacherResponse(teacher), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *teacherService) GetByID(ctx context.Context, id string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTeacherResponse(teacher), nil
}

// ────────────────────── List ──────────────────────

func (s *teacherService) List(ctx context.Context, req *dto.TeacherListRequest) ([]dto.TeacherResponse, int64, error) {
	teachers, total, err := s.repo.Teacher.List(ctx, req.Keyword, req.GetOffset(), req.GetPageSize())
	if err != nil {
		s.logger.Error("列出教师失败", zap.Error(err))
		return nil, 0, err
	}

	result := make([]dto.TeacherResponse, 0, len(teachers))
	for i := range teachers {
		result = append(result, *s.toTeacherResponse(&teachers[i]))
	}

	return result, total, nil
}

// ────────────────────── Update ──────────────────────

func (s *teacherService) Update(ctx context.Context, id string, req *dto.UpdateTeacherRequest, callerID string) (*dto.TeacherResponse, error) {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新工号，检查唯一性
	if req.TeacherNo != nil && *req.TeacherNo != teacher.TeacherNo {
		existing, err := s.repo.Teacher.GetByTeacherNo(ctx, *req.TeacherNo)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrTeacherNoExists
		}
		teacher.TeacherNo = *req.TeacherNo
	}

	if req.Name != nil {
		teacher.Name = *req.Name
	}
	if req.Title != nil {
		teacher.Title = *req.Title
	}
	if req.Email != nil {
		teacher.Email = req.Email
	}

	teacher.UpdatedBy = &callerID

	if err := s.repo.Teacher.Update(ctx, teacher); err != nil {
		s.logger.Error("更新教师失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toTeacherResponse(teacher), nil
}

// ────────────────────── Delete ──────────────────────

func (s *teacherService) Delete(ctx context.Context, id string, callerID string) error {
	teacher, err := s.repo.Teacher.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrTeacherNotFound
		}
		s.logger.Error("查询教师失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 教师仍有授课安排时拒绝删除
	count, err := s.repo.Teacher.CountAssignments(ctx, teacher.TeacherID)
	if err != nil {
		s.logger.Error("查询教师授课安排失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrTeacherHasCourse
	}

	if err := s.repo.Teacher.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除教师失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *teacherService) toTeacherResponse(teacher *model.Teacher) *dto.TeacherResponse {
	resp := &dto.TeacherResponse{
		ID:        teacher.TeacherID,
		TeacherNo: teacher.TeacherNo,
		Name:      teacher.Name,
		Title:     teacher.Title,
		CreatedAt: teacher.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: teacher.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if teacher.Email != nil {
		resp.Email = *teacher.Email
	}
	return resp
}
