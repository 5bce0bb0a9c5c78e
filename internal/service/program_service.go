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

// ── 培养项目模块业务错误 ──

var (
	ErrProgramNotFound     = errors.New("培养项目不存在")
	ErrProgramNameExists   = errors.New("项目名称已存在")
	ErrProgramHasSemesters = errors.New("项目下存在学期，无法删除")
)

// ProgramService 培养项目业务接口
type ProgramService interface {
	Create(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	GetByID(ctx context.Context, id string) (*dto.ProgramDetailResponse, error)
	List(ctx context.Context) ([]dto.ProgramResponse, error)
	Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error)
	// Preview 变更预检：返回本次更新将产生的字段变更与校验结果，不落库
	Preview(ctx context.Context, id string, req *dto.UpdateProgramRequest) (*dto.ChangesetResponse, error)
	Delete(ctx context.Context, id string, callerID string) error
}

type programService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewProgramService 创建 ProgramService 实例
func NewProgramService(repo *repository.Repository, logger *zap.Logger) ProgramService {
	return &programService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *programService) Create(ctx context.Context, req *dto.CreateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	// 检查名称唯一性
	existing, err := s.repo.Program.GetByName(ctx, req.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		s.logger.Error("查询项目失败", zap.Error(err))
		return nil, err
	}
	if existing != nil {
		return nil, ErrProgramNameExists
	}

	program := &model.Program{
		Name:        req.Name,
		Description: req.Description,
	}
	program.CreatedBy = &callerID
	program.UpdatedBy = &callerID

	if err := s.repo.Program.Create(ctx, program); err != nil {
		s.logger.Error("创建项目失败", zap.Error(err))
		return nil, err
	}

	return s.toProgramResponse(program), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *programService) GetByID(ctx context.Context, id string) (*dto.ProgramDetailResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	semesterCount, err := s.repo.Program.CountSemesters(ctx, program.ProgramID)
	if err != nil {
		s.logger.Warn("查询项目学期数失败，回退为0", zap.String("id", id), zap.Error(err))
		semesterCount = 0
	}

	return &dto.ProgramDetailResponse{
		ID:            program.ProgramID,
		Name:          program.Name,
		Description:   program.Description,
		SemesterCount: semesterCount,
		CreatedAt:     program.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:     program.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}, nil
}

// ────────────────────── List ──────────────────────

// List 返回全部项目，最新创建的排在最前
func (s *programService) List(ctx context.Context) ([]dto.ProgramResponse, error) {
	programs, err := s.repo.Program.List(ctx)
	if err != nil {
		s.logger.Error("列出项目失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.ProgramResponse, 0, len(programs))
	for i := range programs {
		result = append(result, *s.toProgramResponse(&programs[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *programService) Update(ctx context.Context, id string, req *dto.UpdateProgramRequest, callerID string) (*dto.ProgramResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	// 如果更新名称，检查唯一性
	if req.Name != nil && *req.Name != program.Name {
		existing, err := s.repo.Program.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			return nil, ErrProgramNameExists
		}
		program.Name = *req.Name
	}

	if req.Description != nil {
		program.Description = *req.Description
	}

	program.UpdatedBy = &callerID

	if err := s.repo.Program.Update(ctx, program); err != nil {
		s.logger.Error("更新项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	return s.toProgramResponse(program), nil
}

// ═══════════════════════════════════════════════════════════
// Preview — 更新前的变更预检
// ═══════════════════════════════════════════════════════════
//
// 设计说明：
//   - 与 Update 执行完全相同的业务校验，但不写库
//   - changes 列出每个将被修改字段的 from/to 值
//   - errors 携带字段级校验失败明细，valid=false 时 Update 必然失败
//   - 前端可用该接口实现"保存前确认"弹窗

func (s *programService) Preview(ctx context.Context, id string, req *dto.UpdateProgramRequest) (*dto.ChangesetResponse, error) {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("id", id), zap.Error(err))
		return nil, err
	}

	changes := make([]dto.FieldChange, 0)
	fieldErrors := make([]dto.FieldError, 0)

	if req.Name != nil && *req.Name != program.Name {
		changes = append(changes, dto.FieldChange{Field: "name", From: program.Name, To: *req.Name})

		existing, err := s.repo.Program.GetByName(ctx, *req.Name)
		if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, err
		}
		if existing != nil {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "name", Message: "项目名称已存在"})
		}
	}

	if req.Description != nil && *req.Description != program.Description {
		changes = append(changes, dto.FieldChange{Field: "description", From: program.Description, To: *req.Description})
	}

	return &dto.ChangesetResponse{
		Valid:   len(fieldErrors) == 0,
		Changes: changes,
		Errors:  fieldErrors,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *programService) Delete(ctx context.Context, id string, callerID string) error {
	program, err := s.repo.Program.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("id", id), zap.Error(err))
		return err
	}

	// 检查项目下是否有学期
	count, err := s.repo.Program.CountSemesters(ctx, program.ProgramID)
	if err != nil {
		s.logger.Error("查询项目学期数失败", zap.String("id", id), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrProgramHasSemesters
	}

	if err := s.repo.Program.Delete(ctx, id, callerID); err != nil {
		s.logger.Error("删除项目失败", zap.String("id", id), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *programService) toProgramResponse(program *model.Program) *dto.ProgramResponse {
	return &dto.ProgramResponse{
		ID:          program.ProgramID,
		Name:        program.Name,
		Description: program.Description,
		CreatedAt:   program.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   program.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
