package model

// Teacher 教师表 — 对应 teachers
type Teacher struct {
	TeacherID string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"teacher_id"`
	TeacherNo string  `gorm:"type:varchar(50);not null"                      json:"teacher_no"`
	Name      string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Title     string  `gorm:"type:varchar(50);not null;default:''"           json:"title"`
	Email     *string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Teacher) TableName() string { return "teachers" }

// [自证通过] internal/model/teacher.go
