package repository

import (
	"context"

	"gorm.io/gorm"

	"course-hub/backend/internal/model"
)

// SemesterRepository 学期数据访问接口
type SemesterRepository interface {
	Create(ctx context.Context, semester *model.Semester) error
	GetByID(ctx context.Context, id string) (*model.Semester, error)
	// GetByProgramAndID 按项目+学期双键查询，携带所属项目信息
	// 学期不属于该项目时同样返回 gorm.ErrRecordNotFound
	GetByProgramAndID(ctx context.Context, programID, id string) (*model.Semester, error)
	List(ctx context.Context) ([]model.Semester, error)
	ListByProgram(ctx context.Context, programID string) ([]model.Semester, error)
	Update(ctx context.Context, semester *model.Semester) error
	Delete(ctx context.Context, id string, deletedBy string) error
	CountAssignments(ctx context.Context, semesterID string) (int64, error)
}

type semesterRepo struct {
	db *gorm.DB
}

// NewSemesterRepo 创建 SemesterRepository 实例
func NewSemesterRepo(db *gorm.DB) SemesterRepository {
	return &semesterRepo{db: db}
}

func (r *semesterRepo) Create(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *semesterRepo) GetByID(ctx context.Context, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Where("semester_id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) GetByProgramAndID(ctx context.Context, programID, id string) (*model.Semester, error) {
	var semester model.Semester
	err := r.db.WithContext(ctx).
		Preload("Program").
		Where("semester_id = ? AND program_id = ?", id, programID).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *semesterRepo) List(ctx context.Context) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Order("start_date DESC").
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) ListByProgram(ctx context.Context, programID string) ([]model.Semester, error) {
	var semesters []model.Semester
	err := r.db.WithContext(ctx).
		Where("program_id = ?", programID).
		Order("start_date DESC").
		Find(&semesters).Error
	return semesters, err
}

func (r *semesterRepo) Update(ctx context.Context, semester *model.Semester) error {
	return r.db.WithContext(ctx).Save(semester).Error
}

func (r *semesterRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.Semester{}).
		Where("semester_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}

// CountAssignments 统计学期下的授课安排与选课记录总数（删除前置校验用）
func (r *semesterRepo) CountAssignments(ctx context.Context, semesterID string) (int64, error) {
	var teacherCount int64
	err := r.db.WithContext(ctx).
		Model(&model.TeacherCourse{}).
		Where("semester_id = ? AND deleted_at IS NULL", semesterID).
		Count(&teacherCount).Error
	if err != nil {
		return 0, err
	}

	var studentCount int64
	err = r.db.WithContext(ctx).
		Model(&model.StudentCourse{}).
		Where("semester_id = ? AND deleted_at IS NULL", semesterID).
		Count(&studentCount).Error
	if err != nil {
		return 0, err
	}

	return teacherCount + studentCount, nil
}
