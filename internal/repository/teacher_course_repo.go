package repository

import (
	"context"

	"gorm.io/gorm"

	"course-hub/backend/internal/model"
	pkgerrors "course-hub/backend/pkg/errors"
)

// TeacherCourseFilter 授课安排列表过滤条件（零值字段不过滤）
type TeacherCourseFilter struct {
	TeacherID  string
	CourseID   string
	SemesterID string
	Role       string
}

// TeacherCourseRepository 授课安排数据访问接口
type TeacherCourseRepository interface {
	Create(ctx context.Context, assignment *model.TeacherCourse) error
	GetByID(ctx context.Context, id string) (*model.TeacherCourse, error)
	// GetByTriple 按教师+课程+学期三元组查询（唯一性预检用）
	GetByTriple(ctx context.Context, teacherID, courseID, semesterID string) (*model.TeacherCourse, error)
	List(ctx context.Context, filter TeacherCourseFilter, offset, limit int) ([]model.TeacherCourse, int64, error)
	ListBySemester(ctx context.Context, semesterID string) ([]model.TeacherCourse, error)
	Update(ctx context.Context, assignment *model.TeacherCourse) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// teacherCourseRepo TeacherCourseRepository 的 GORM 实现
type teacherCourseRepo struct {
	db *gorm.DB
}

// NewTeacherCourseRepo 创建 TeacherCourseRepository 实例
func NewTeacherCourseRepo(db *gorm.DB) TeacherCourseRepository {
	return &teacherCourseRepo{db: db}
}

func (r *teacherCourseRepo) Create(ctx context.Context, assignment *model.TeacherCourse) error {
	return r.db.WithContext(ctx).Create(assignment).Error
}

func (r *teacherCourseRepo) GetByID(ctx context.Context, id string) (*model.TeacherCourse, error) {
	var assignment model.TeacherCourse
	err := r.db.WithContext(ctx).
		Preload("Teacher").Preload("Course").Preload("Semester").
		Where("assignment_id = ?", id).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *teacherCourseRepo) GetByTriple(ctx context.Context, teacherID, courseID, semesterID string) (*model.TeacherCourse, error) {
	var assignment model.TeacherCourse
	err := r.db.WithContext(ctx).
		Where("teacher_id = ? AND course_id = ? AND semester_id = ?", teacherID, courseID, semesterID).
		First(&assignment).Error
	if err != nil {
		return nil, err
	}
	return &assignment, nil
}

func (r *teacherCourseRepo) List(ctx context.Context, filter TeacherCourseFilter, offset, limit int) ([]model.TeacherCourse, int64, error) {
	var assignments []model.TeacherCourse
	var total int64

	db := r.db.WithContext(ctx).Model(&model.TeacherCourse{})
	if filter.TeacherID != "" {
		db = db.Where("teacher_id = ?", filter.TeacherID)
	}
	if filter.CourseID != "" {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.SemesterID != "" {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}
	if filter.Role != "" {
		db = db.Where("role = ?", filter.Role)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Teacher").Preload("Course").Preload("Semester").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&assignments).Error; err != nil {
		return nil, 0, err
	}

	return assignments, total, nil
}

func (r *teacherCourseRepo) ListBySemester(ctx context.Context, semesterID string) ([]model.TeacherCourse, error) {
	var assignments []model.TeacherCourse
	err := r.db.WithContext(ctx).
		Preload("Teacher").Preload("Course").
		Where("semester_id = ?", semesterID).
		Find(&assignments).Error
	return assignments, err
}

// Update 乐观锁更新：version 不匹配说明记录已被并发修改
func (r *teacherCourseRepo) Update(ctx context.Context, assignment *model.TeacherCourse) error {
	oldVersion := assignment.Version
	result := r.db.WithContext(ctx).
		Model(assignment).
		Where("assignment_id = ? AND version = ?", assignment.AssignmentID, oldVersion).
		Updates(map[string]interface{}{
			"teacher_id":  assignment.TeacherID,
			"course_id":   assignment.CourseID,
			"semester_id": assignment.SemesterID,
			"role":        assignment.Role,
			"updated_by":  assignment.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	assignment.Version = oldVersion + 1
	return nil
}

func (r *teacherCourseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.TeacherCourse{}).
		Where("assignment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
