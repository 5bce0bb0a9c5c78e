package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"course-hub/backend/internal/dto"
	"course-hub/backend/internal/model"
	"course-hub/backend/internal/repository"
)

// ── 学期模块业务错误 ──

var (
	ErrSemesterNotFound    = errors.New("学期不存在")
	ErrSemesterDateInvalid = errors.New("学期结束日期必须晚于开始日期")
	ErrSemesterInUse       = errors.New("学期存在关联安排，无法删除")
)

// SemesterService 学期业务接口
// 学期从属于培养项目，所有单条操作都以 programID+semesterID 双键定位：
// 学期不存在或不属于该项目时一律返回 ErrSemesterNotFound
type SemesterService interface {
	Create(ctx context.Context, programID string, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	GetByProgramAndID(ctx context.Context, programID, semesterID string) (*dto.SemesterResponse, error)
	ListByProgram(ctx context.Context, programID string) ([]dto.SemesterResponse, error)
	// List 扁平入口：跨项目列出学期，program_id 可选过滤
	List(ctx context.Context, req *dto.SemesterListRequest) ([]dto.SemesterResponse, error)
	Update(ctx context.Context, programID, semesterID string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error)
	// Preview 变更预检：返回本次更新将产生的字段变更与校验结果，不落库
	Preview(ctx context.Context, programID, semesterID string, req *dto.UpdateSemesterRequest) (*dto.ChangesetResponse, error)
	Delete(ctx context.Context, programID, semesterID string, callerID string) error
}

type semesterService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewSemesterService 创建 SemesterService 实例
func NewSemesterService(repo *repository.Repository, logger *zap.Logger) SemesterService {
	return &semesterService{repo: repo, logger: logger}
}

// ────────────────────── Create ──────────────────────

func (s *semesterService) Create(ctx context.Context, programID string, req *dto.CreateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	// 校验所属项目存在
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	startDate, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	endDate, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, ErrSemesterDateInvalid
	}
	if !endDate.After(startDate) {
		return nil, ErrSemesterDateInvalid
	}

	semester := &model.Semester{
		ProgramID: programID,
		Name:      req.Name,
		StartDate: startDate,
		EndDate:   endDate,
	}
	semester.CreatedBy = &callerID
	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学期失败", zap.Error(err))
		return nil, err
	}

	return s.toSemesterResponse(semester), nil
}

// ────────────────────── GetByProgramAndID ──────────────────────

func (s *semesterService) GetByProgramAndID(ctx context.Context, programID, semesterID string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByProgramAndID(ctx, programID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败",
			zap.String("program_id", programID),
			zap.String("semester_id", semesterID),
			zap.Error(err))
		return nil, err
	}

	return s.toSemesterResponse(semester), nil
}

// ────────────────────── ListByProgram ──────────────────────

func (s *semesterService) ListByProgram(ctx context.Context, programID string) ([]dto.SemesterResponse, error) {
	if _, err := s.repo.Program.GetByID(ctx, programID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProgramNotFound
		}
		s.logger.Error("查询项目失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	semesters, err := s.repo.Semester.ListByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("列出学期失败", zap.String("program_id", programID), zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *s.toSemesterResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── List ──────────────────────

func (s *semesterService) List(ctx context.Context, req *dto.SemesterListRequest) ([]dto.SemesterResponse, error) {
	var semesters []model.Semester
	var err error

	if req.ProgramID != "" {
		semesters, err = s.repo.Semester.ListByProgram(ctx, req.ProgramID)
	} else {
		semesters, err = s.repo.Semester.List(ctx)
	}
	if err != nil {
		s.logger.Error("列出学期失败", zap.Error(err))
		return nil, err
	}

	result := make([]dto.SemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *s.toSemesterResponse(&semesters[i]))
	}

	return result, nil
}

// ────────────────────── Update ──────────────────────

func (s *semesterService) Update(ctx context.Context, programID, semesterID string, req *dto.UpdateSemesterRequest, callerID string) (*dto.SemesterResponse, error) {
	semester, err := s.repo.Semester.GetByProgramAndID(ctx, programID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败",
			zap.String("program_id", programID),
			zap.String("semester_id", semesterID),
			zap.Error(err))
		return nil, err
	}

	if req.Name != nil {
		semester.Name = *req.Name
	}
	if req.StartDate != nil {
		startDate, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.StartDate = startDate
	}
	if req.EndDate != nil {
		endDate, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			return nil, ErrSemesterDateInvalid
		}
		semester.EndDate = endDate
	}
	if !semester.EndDate.After(semester.StartDate) {
		return nil, ErrSemesterDateInvalid
	}

	semester.UpdatedBy = &callerID

	if err := s.repo.Semester.Update(ctx, semester); err != nil {
		s.logger.Error("更新学期失败", zap.String("semester_id", semesterID), zap.Error(err))
		return nil, err
	}

	return s.toSemesterResponse(semester), nil
}

// ────────────────────── Preview ──────────────────────

// Preview 与 Update 执行相同的业务校验但不写库，
// 日期解析失败与区间非法都以字段级错误返回而不是拒绝整个请求
func (s *semesterService) Preview(ctx context.Context, programID, semesterID string, req *dto.UpdateSemesterRequest) (*dto.ChangesetResponse, error) {
	semester, err := s.repo.Semester.GetByProgramAndID(ctx, programID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败",
			zap.String("program_id", programID),
			zap.String("semester_id", semesterID),
			zap.Error(err))
		return nil, err
	}

	changes := make([]dto.FieldChange, 0)
	fieldErrors := make([]dto.FieldError, 0)

	if req.Name != nil && *req.Name != semester.Name {
		changes = append(changes, dto.FieldChange{Field: "name", From: semester.Name, To: *req.Name})
	}

	// 日期字段先在副本上应用再统一校验区间
	startDate := semester.StartDate
	endDate := semester.EndDate

	if req.StartDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.StartDate)
		if err != nil {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "start_date", Message: "日期格式无效，应为 YYYY-MM-DD"})
		} else {
			if !parsed.Equal(semester.StartDate) {
				changes = append(changes, dto.FieldChange{
					Field: "start_date",
					From:  semester.StartDate.Format("2006-01-02"),
					To:    parsed.Format("2006-01-02"),
				})
			}
			startDate = parsed
		}
	}
	if req.EndDate != nil {
		parsed, err := time.Parse("2006-01-02", *req.EndDate)
		if err != nil {
			fieldErrors = append(fieldErrors, dto.FieldError{Field: "end_date", Message: "日期格式无效，应为 YYYY-MM-DD"})
		} else {
			if !parsed.Equal(semester.EndDate) {
				changes = append(changes, dto.FieldChange{
					Field: "end_date",
					From:  semester.EndDate.Format("2006-01-02"),
					To:    parsed.Format("2006-01-02"),
				})
			}
			endDate = parsed
		}
	}

	if !endDate.After(startDate) {
		fieldErrors = append(fieldErrors, dto.FieldError{Field: "end_date", Message: "结束日期必须晚于开始日期"})
	}

	return &dto.ChangesetResponse{
		Valid:   len(fieldErrors) == 0,
		Changes: changes,
		Errors:  fieldErrors,
	}, nil
}

// ────────────────────── Delete ──────────────────────

func (s *semesterService) Delete(ctx context.Context, programID, semesterID string, callerID string) error {
	semester, err := s.repo.Semester.GetByProgramAndID(ctx, programID, semesterID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrSemesterNotFound
		}
		s.logger.Error("查询学期失败",
			zap.String("program_id", programID),
			zap.String("semester_id", semesterID),
			zap.Error(err))
		return err
	}

	// 学期下存在授课安排或选课记录时拒绝删除
	count, err := s.repo.Semester.CountAssignments(ctx, semester.SemesterID)
	if err != nil {
		s.logger.Error("查询学期关联记录失败", zap.String("semester_id", semesterID), zap.Error(err))
		return err
	}
	if count > 0 {
		return ErrSemesterInUse
	}

	if err := s.repo.Semester.Delete(ctx, semester.SemesterID, callerID); err != nil {
		s.logger.Error("删除学期失败", zap.String("semester_id", semesterID), zap.Error(err))
		return err
	}

	return nil
}

// ── 内部辅助方法 ──

func (s *semesterService) toSemesterResponse(semester *model.Semester) *dto.SemesterResponse {
	resp := &dto.SemesterResponse{
		ID:        semester.SemesterID,
		ProgramID: semester.ProgramID,
		Name:      semester.Name,
		StartDate: semester.StartDate.Format("2006-01-02"),
		EndDate:   semester.EndDate.Format("2006-01-02"),
		CreatedAt: semester.CreatedAt.Format("2006-01-02T15:04:05Z"),
		UpdatedAt: semester.UpdatedAt.Format("2006-01-02T15:04:05Z"),
	}
	if semester.Program != nil {
		resp.Program = &dto.ProgramResponse{
			ID:          semester.Program.ProgramID,
			Name:        semester.Program.Name,
			Description: semester.Program.Description,
			CreatedAt:   semester.Program.CreatedAt.Format("2006-01-02T15:04:05Z"),
			UpdatedAt:   semester.Program.UpdatedAt.Format("2006-01-02T15:04:05Z"),
		}
	}
	return resp
}
