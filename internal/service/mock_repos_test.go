package service

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"course-hub/backend/internal/model"
	"course-hub/backend/internal/repository"
)

// ── Mock UserRepository ──

type mockUserRepo struct {
	users map[string]*model.User
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{users: make(map[string]*model.User)}
}

func (m *mockUserRepo) Create(_ context.Context, user *model.User) error {
	if user.UserID == "" {
		user.UserID = "user-" + user.Username
	}
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*model.User, error) {
	if u, ok := m.users[id]; ok {
		return u, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) GetByUsername(_ context.Context, username string) (*model.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockUserRepo) List(_ context.Context, role, keyword string, offset, limit int) ([]model.User, int64, error) {
	var matched []model.User
	for _, u := range m.users {
		if role != "" && u.Role != role {
			continue
		}
		if keyword != "" && !strings.Contains(u.Username, keyword) && !strings.Contains(u.DisplayName, keyword) {
			continue
		}
		matched = append(matched, *u)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockUserRepo) Update(_ context.Context, user *model.User) error {
	m.users[user.UserID] = user
	return nil
}

func (m *mockUserRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.users, id)
	return nil
}

func (m *mockUserRepo) CountAdmins(_ context.Context) (int64, error) {
	var count int64
	for _, u := range m.users {
		if u.Role == "admin" {
			count++
		}
	}
	return count, nil
}

// ── Mock ProgramRepository ──

type mockProgramRepo struct {
	programs map[string]*model.Program
	// semesterCount 按项目预置学期数，CountSemesters 直接读取
	semesterCount map[string]int64
}

func newMockProgramRepo() *mockProgramRepo {
	return &mockProgramRepo{
		programs:      make(map[string]*model.Program),
		semesterCount: make(map[string]int64),
	}
}

func (m *mockProgramRepo) Create(_ context.Context, program *model.Program) error {
	if program.ProgramID == "" {
		program.ProgramID = "prog-" + program.Name
	}
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) GetByID(_ context.Context, id string) (*model.Program, error) {
	if p, ok := m.programs[id]; ok {
		return p, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) GetByName(_ context.Context, name string) (*model.Program, error) {
	for _, p := range m.programs {
		if p.Name == name {
			return p, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockProgramRepo) List(_ context.Context) ([]model.Program, error) {
	var result []model.Program
	for _, p := range m.programs {
		result = append(result, *p)
	}
	return result, nil
}

func (m *mockProgramRepo) Update(_ context.Context, program *model.Program) error {
	m.programs[program.ProgramID] = program
	return nil
}

func (m *mockProgramRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.programs, id)
	return nil
}

func (m *mockProgramRepo) CountSemesters(_ context.Context, programID string) (int64, error) {
	return m.semesterCount[programID], nil
}

// ── Mock SemesterRepository ──

type mockSemesterRepo struct {
	semesters map[string]*model.Semester
	// assignmentCount 按学期预置关联安排数，CountAssignments 直接读取
	assignmentCount map[string]int64
}

func newMockSemesterRepo() *mockSemesterRepo {
	return &mockSemesterRepo{
		semesters:       make(map[string]*model.Semester),
		assignmentCount: make(map[string]int64),
	}
}

func (m *mockSemesterRepo) Create(_ context.Context, semester *model.Semester) error {
	if semester.SemesterID == "" {
		semester.SemesterID = "sem-" + semester.Name
	}
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) GetByID(_ context.Context, id string) (*model.Semester, error) {
	if s, ok := m.semesters[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRepo) GetByProgramAndID(_ context.Context, programID, id string) (*model.Semester, error) {
	s, ok := m.semesters[id]
	if !ok || s.ProgramID != programID {
		return nil, gorm.ErrRecordNotFound
	}
	return s, nil
}

func (m *mockSemesterRepo) List(_ context.Context) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		result = append(result, *s)
	}
	return result, nil
}

func (m *mockSemesterRepo) ListByProgram(_ context.Context, programID string) ([]model.Semester, error) {
	var result []model.Semester
	for _, s := range m.semesters {
		if s.ProgramID == programID {
			result = append(result, *s)
		}
	}
	return result, nil
}

func (m *mockSemesterRepo) Update(_ context.Context, semester *model.Semester) error {
	m.semesters[semester.SemesterID] = semester
	return nil
}

func (m *mockSemesterRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.semesters, id)
	return nil
}

func (m *mockSemesterRepo) CountAssignments(_ context.Context, semesterID string) (int64, error) {
	return m.assignmentCount[semesterID], nil
}

// ── Mock CourseRepository ──

type mockCourseRepo struct {
	courses         map[string]*model.Course
	assignmentCount map[string]int64
}

func newMockCourseRepo() *mockCourseRepo {
	return &mockCourseRepo{
		courses:         make(map[string]*model.Course),
		assignmentCount: make(map[string]int64),
	}
}

func (m *mockCourseRepo) Create(_ context.Context, course *model.Course) error {
	if course.CourseID == "" {
		course.CourseID = "course-" + course.Code
	}
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) GetByID(_ context.Context, id string) (*model.Course, error) {
	if c, ok := m.courses[id]; ok {
		return c, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) GetByCode(_ context.Context, code string) (*model.Course, error) {
	for _, c := range m.courses {
		if c.Code == code {
			return c, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockCourseRepo) List(_ context.Context) ([]model.Course, error) {
	var result []model.Course
	for _, c := range m.courses {
		result = append(result, *c)
	}
	return result, nil
}

func (m *mockCourseRepo) Update(_ context.Context, course *model.Course) error {
	m.courses[course.CourseID] = course
	return nil
}

func (m *mockCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.courses, id)
	return nil
}

func (m *mockCourseRepo) CountAssignments(_ context.Context, courseID string) (int64, error) {
	return m.assignmentCount[courseID], nil
}

// ── Mock TeacherRepository ──

type mockTeacherRepo struct {
	teachers        map[string]*model.Teacher
	assignmentCount map[string]int64
}

func newMockTeacherRepo() *mockTeacherRepo {
	return &mockTeacherRepo{
		teachers:        make(map[string]*model.Teacher),
		assignmentCount: make(map[string]int64),
	}
}

func (m *mockTeacherRepo) Create(_ context.Context, teacher *model.Teacher) error {
	if teacher.TeacherID == "" {
		teacher.TeacherID = "teacher-" + teacher.TeacherNo
	}
	m.teachers[teacher.TeacherID] = teacher
	return nil
}

func (m *mockTeacherRepo) GetByID(_ context.Context, id string) (*model.Teacher, error) {
	if t, ok := m.teachers[id]; ok {
		return t, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) GetByTeacherNo(_ context.Context, teacherNo string) (*model.Teacher, error) {
	for _, t := range m.teachers {
		if t.TeacherNo == teacherNo {
			return t, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherRepo) List(_ context.Context, keyword string, offset, limit int) ([]model.Teacher, int64, error) {
	var matched []model.Teacher
	for _, t := range m.teachers {
		if keyword != "" && !strings.Contains(t.Name, keyword) && !strings.Contains(t.TeacherNo, keyword) {
			continue
		}
		matched = append(matched, *t)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockTeacherRepo) Update(_ context.Context, teacher *model.Teacher) error {
	m.teachers[teacher.TeacherID] = teacher
	return nil
}

func (m *mockTeacherRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.teachers, id)
	return nil
}

func (m *mockTeacherRepo) CountAssignments(_ context.Context, teacherID string) (int64, error) {
	return m.assignmentCount[teacherID], nil
}

// ── Mock StudentRepository ──

type mockStudentRepo struct {
	students        map[string]*model.Student
	enrollmentCount map[string]int64
	// batchCreateErr 预置后 BatchCreate 直接失败（模拟事务回滚）
	batchCreateErr error
}

func newMockStudentRepo() *mockStudentRepo {
	return &mockStudentRepo{
		students:        make(map[string]*model.Student),
		enrollmentCount: make(map[string]int64),
	}
}

func (m *mockStudentRepo) Create(_ context.Context, student *model.Student) error {
	if student.StudentID == "" {
		student.StudentID = "student-" + student.StudentNo
	}
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) BatchCreate(_ context.Context, students []model.Student) error {
	if m.batchCreateErr != nil {
		return m.batchCreateErr
	}
	for i := range students {
		s := students[i]
		if s.StudentID == "" {
			s.StudentID = "student-" + s.StudentNo
		}
		m.students[s.StudentID] = &s
	}
	return nil
}

func (m *mockStudentRepo) GetByID(_ context.Context, id string) (*model.Student, error) {
	if s, ok := m.students[id]; ok {
		return s, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) GetByStudentNo(_ context.Context, studentNo string) (*model.Student, error) {
	for _, s := range m.students {
		if s.StudentNo == studentNo {
			return s, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentRepo) List(_ context.Context, keyword string, enrollYear int, offset, limit int) ([]model.Student, int64, error) {
	var matched []model.Student
	for _, s := range m.students {
		if keyword != "" && !strings.Contains(s.Name, keyword) && !strings.Contains(s.StudentNo, keyword) {
			continue
		}
		if enrollYear != 0 && s.EnrollYear != enrollYear {
			continue
		}
		matched = append(matched, *s)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockStudentRepo) Update(_ context.Context, student *model.Student) error {
	m.students[student.StudentID] = student
	return nil
}

func (m *mockStudentRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.students, id)
	return nil
}

func (m *mockStudentRepo) CountEnrollments(_ context.Context, studentID string) (int64, error) {
	return m.enrollmentCount[studentID], nil
}

// ── Mock TeacherCourseRepository ──

type mockTeacherCourseRepo struct {
	assignments map[string]*model.TeacherCourse
	seq         int
	// updateErr 预置后 Update 直接返回该错误（模拟乐观锁冲突）
	updateErr error
}

func newMockTeacherCourseRepo() *mockTeacherCourseRepo {
	return &mockTeacherCourseRepo{assignments: make(map[string]*model.TeacherCourse)}
}

func (m *mockTeacherCourseRepo) Create(_ context.Context, assignment *model.TeacherCourse) error {
	if assignment.AssignmentID == "" {
		m.seq++
		assignment.AssignmentID = fmt.Sprintf("tc-%03d", m.seq)
	}
	if assignment.Version == 0 {
		assignment.Version = 1
	}
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockTeacherCourseRepo) GetByID(_ context.Context, id string) (*model.TeacherCourse, error) {
	if a, ok := m.assignments[id]; ok {
		return a, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherCourseRepo) GetByTriple(_ context.Context, teacherID, courseID, semesterID string) (*model.TeacherCourse, error) {
	for _, a := range m.assignments {
		if a.TeacherID == teacherID && a.CourseID == courseID && a.SemesterID == semesterID {
			return a, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockTeacherCourseRepo) List(_ context.Context, filter repository.TeacherCourseFilter, offset, limit int) ([]model.TeacherCourse, int64, error) {
	var matched []model.TeacherCourse
	for _, a := range m.assignments {
		if filter.TeacherID != "" && a.TeacherID != filter.TeacherID {
			continue
		}
		if filter.CourseID != "" && a.CourseID != filter.CourseID {
			continue
		}
		if filter.SemesterID != "" && a.SemesterID != filter.SemesterID {
			continue
		}
		if filter.Role != "" && a.Role != filter.Role {
			continue
		}
		matched = append(matched, *a)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockTeacherCourseRepo) ListBySemester(_ context.Context, semesterID string) ([]model.TeacherCourse, error) {
	var result []model.TeacherCourse
	for _, a := range m.assignments {
		if a.SemesterID == semesterID {
			result = append(result, *a)
		}
	}
	return result, nil
}

func (m *mockTeacherCourseRepo) Update(_ context.Context, assignment *model.TeacherCourse) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	assignment.Version++
	m.assignments[assignment.AssignmentID] = assignment
	return nil
}

func (m *mockTeacherCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.assignments, id)
	return nil
}

// ── Mock StudentCourseRepository ──

type mockStudentCourseRepo struct {
	enrollments map[string]*model.StudentCourse
	seq         int
	updateErr   error
	batchErr    error
}

func newMockStudentCourseRepo() *mockStudentCourseRepo {
	return &mockStudentCourseRepo{enrollments: make(map[string]*model.StudentCourse)}
}

func (m *mockStudentCourseRepo) Create(_ context.Context, enrollment *model.StudentCourse) error {
	if enrollment.EnrollmentID == "" {
		m.seq++
		enrollment.EnrollmentID = fmt.Sprintf("sc-%03d", m.seq)
	}
	if enrollment.Version == 0 {
		enrollment.Version = 1
	}
	m.enrollments[enrollment.EnrollmentID] = enrollment
	return nil
}

func (m *mockStudentCourseRepo) BatchCreate(_ context.Context, enrollments []model.StudentCourse) error {
	if m.batchErr != nil {
		return m.batchErr
	}
	for i := range enrollments {
		e := enrollments[i]
		if e.EnrollmentID == "" {
			m.seq++
			e.EnrollmentID = fmt.Sprintf("sc-%03d", m.seq)
		}
		m.enrollments[e.EnrollmentID] = &e
	}
	return nil
}

func (m *mockStudentCourseRepo) GetByID(_ context.Context, id string) (*model.StudentCourse, error) {
	if e, ok := m.enrollments[id]; ok {
		return e, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentCourseRepo) GetByTriple(_ context.Context, studentID, courseID, semesterID string) (*model.StudentCourse, error) {
	for _, e := range m.enrollments {
		if e.StudentID == studentID && e.CourseID == courseID && e.SemesterID == semesterID {
			return e, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockStudentCourseRepo) List(_ context.Context, filter repository.StudentCourseFilter, offset, limit int) ([]model.StudentCourse, int64, error) {
	var matched []model.StudentCourse
	for _, e := range m.enrollments {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.CourseID != "" && e.CourseID != filter.CourseID {
			continue
		}
		if filter.SemesterID != "" && e.SemesterID != filter.SemesterID {
			continue
		}
		matched = append(matched, *e)
	}
	total := int64(len(matched))
	if offset >= len(matched) {
		return nil, total, nil
	}
	end := offset + limit
	if end > len(matched) {
		end = len(matched)
	}
	return matched[offset:end], total, nil
}

func (m *mockStudentCourseRepo) ListByCourseAndSemester(_ context.Context, courseID, semesterID string) ([]model.StudentCourse, error) {
	var result []model.StudentCourse
	for _, e := range m.enrollments {
		if e.CourseID == courseID && e.SemesterID == semesterID {
			result = append(result, *e)
		}
	}
	return result, nil
}

func (m *mockStudentCourseRepo) Update(_ context.Context, enrollment *model.StudentCourse) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	enrollment.Version++
	m.enrollments[enrollment.EnrollmentID] = enrollment
	return nil
}

func (m *mockStudentCourseRepo) Delete(_ context.Context, id string, _ string) error {
	delete(m.enrollments, id)
	return nil
}

// ── 测试用 Repository 聚合 ──

// mockRepos 持有全部 mock 实例，便于测试中直接操作底层数据
type mockRepos struct {
	user          *mockUserRepo
	program       *mockProgramRepo
	semester      *mockSemesterRepo
	course        *mockCourseRepo
	teacher       *mockTeacherRepo
	student       *mockStudentRepo
	teacherCourse *mockTeacherCourseRepo
	studentCourse *mockStudentCourseRepo
}

func newMockRepos() (*repository.Repository, *mockRepos) {
	mocks := &mockRepos{
		user:          newMockUserRepo(),
		program:       newMockProgramRepo(),
		semester:      newMockSemesterRepo(),
		course:        newMockCourseRepo(),
		teacher:       newMockTeacherRepo(),
		student:       newMockStudentRepo(),
		teacherCourse: newMockTeacherCourseRepo(),
		studentCourse: newMockStudentCourseRepo(),
	}
	repo := &repository.Repository{
		User:          mocks.user,
		Program:       mocks.program,
		Semester:      mocks.semester,
		Course:        mocks.course,
		Teacher:       mocks.teacher,
		Student:       mocks.student,
		TeacherCourse: mocks.teacherCourse,
		StudentCourse: mocks.studentCourse,
	}
	return repo, mocks
}
