package repository

import (
	"context"

	"gorm.io/gorm"

	"course-hub/backend/internal/model"
	pkgerrors "course-hub/backend/pkg/errors"
)

// StudentCourseFilter 选课记录列表过滤条件（零值字段不过滤）
type StudentCourseFilter struct {
	StudentID  string
	CourseID   string
	SemesterID string
}

// StudentCourseRepository 选课记录数据访问接口
type StudentCourseRepository interface {
	Create(ctx context.Context, enrollment *model.StudentCourse) error
	// BatchCreate 事务内批量建立选课记录，任一失败整体回滚
	BatchCreate(ctx context.Context, enrollments []model.StudentCourse) error
	GetByID(ctx context.Context, id string) (*model.StudentCourse, error)
	// GetByTriple 按学生+课程+学期三元组查询（唯一性预检用）
	GetByTriple(ctx context.Context, studentID, courseID, semesterID string) (*model.StudentCourse, error)
	List(ctx context.Context, filter StudentCourseFilter, offset, limit int) ([]model.StudentCourse, int64, error)
	ListByCourseAndSemester(ctx context.Context, courseID, semesterID string) ([]model.StudentCourse, error)
	Update(ctx context.Context, enrollment *model.StudentCourse) error
	Delete(ctx context.Context, id string, deletedBy string) error
}

// studentCourseRepo StudentCourseRepository 的 GORM 实现
type studentCourseRepo struct {
	db *gorm.DB
}

// NewStudentCourseRepo 创建 StudentCourseRepository 实例
func NewStudentCourseRepo(db *gorm.DB) StudentCourseRepository {
	return &studentCourseRepo{db: db}
}

func (r *studentCourseRepo) Create(ctx context.Context, enrollment *model.StudentCourse) error {
	return r.db.WithContext(ctx).Create(enrollment).Error
}

func (r *studentCourseRepo) BatchCreate(ctx context.Context, enrollments []model.StudentCourse) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range enrollments {
			if err := tx.Create(&enrollments[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *studentCourseRepo) GetByID(ctx context.Context, id string) (*model.StudentCourse, error) {
	var enrollment model.StudentCourse
	err := r.db.WithContext(ctx).
		Preload("Student").Preload("Course").Preload("Semester").
		Where("enrollment_id = ?", id).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *studentCourseRepo) GetByTriple(ctx context.Context, studentID, courseID, semesterID string) (*model.StudentCourse, error) {
	var enrollment model.StudentCourse
	err := r.db.WithContext(ctx).
		Where("student_id = ? AND course_id = ? AND semester_id = ?", studentID, courseID, semesterID).
		First(&enrollment).Error
	if err != nil {
		return nil, err
	}
	return &enrollment, nil
}

func (r *studentCourseRepo) List(ctx context.Context, filter StudentCourseFilter, offset, limit int) ([]model.StudentCourse, int64, error) {
	var enrollments []model.StudentCourse
	var total int64

	db := r.db.WithContext(ctx).Model(&model.StudentCourse{})
	if filter.StudentID != "" {
		db = db.Where("student_id = ?", filter.StudentID)
	}
	if filter.CourseID != "" {
		db = db.Where("course_id = ?", filter.CourseID)
	}
	if filter.SemesterID != "" {
		db = db.Where("semester_id = ?", filter.SemesterID)
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Student").Preload("Course").Preload("Semester").
		Offset(offset).Limit(limit).
		Order("created_at DESC").
		Find(&enrollments).Error; err != nil {
		return nil, 0, err
	}

	return enrollments, total, nil
}

func (r *studentCourseRepo) ListByCourseAndSemester(ctx context.Context, courseID, semesterID string) ([]model.StudentCourse, error) {
	var enrollments []model.StudentCourse
	err := r.db.WithContext(ctx).
		Preload("Student").
		Where("course_id = ? AND semester_id = ?", courseID, semesterID).
		Find(&enrollments).Error
	return enrollments, err
}

// Update 乐观锁更新：version 不匹配说明记录已被并发修改
func (r *studentCourseRepo) Update(ctx context.Context, enrollment *model.StudentCourse) error {
	oldVersion := enrollment.Version
	result := r.db.WithContext(ctx).
		Model(enrollment).
		Where("enrollment_id = ? AND version = ?", enrollment.EnrollmentID, oldVersion).
		Updates(map[string]interface{}{
			"student_id":  enrollment.StudentID,
			"course_id":   enrollment.CourseID,
			"semester_id": enrollment.SemesterID,
			"updated_by":  enrollment.UpdatedBy,
			"version":     oldVersion + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}
	enrollment.Version = oldVersion + 1
	return nil
}

func (r *studentCourseRepo) Delete(ctx context.Context, id string, deletedBy string) error {
	return r.db.WithContext(ctx).
		Model(&model.StudentCourse{}).
		Where("enrollment_id = ?", id).
		Updates(map[string]interface{}{
			"deleted_by": deletedBy,
			"deleted_at": gorm.Expr("NOW()"),
		}).Error
}
