package services

import (
	"context"
	"sync"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/repositories"
	"gorm.io/gorm"
)

// fakeStore is an in-memory transactional store. Transaction snapshots the
// record and detail tables and restores them when fn fails, mirroring the
// rollback contract the real store provides.
type fakeStore struct {
	mu       sync.Mutex
	pools    map[string][]*models.Question
	records  []*models.ExamRecord
	details  []*models.StudentAnswerDetail
	audits   []*models.AuditLog
	students map[string]*models.Student

	nextRecordID uint
	nextDetailID uint

	poolErr   error // forced failure for pool reads
	recordErr error // forced failure for record inserts
	detailErr error // forced failure for detail inserts
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pools:    make(map[string][]*models.Question),
		students: make(map[string]*models.Student),
	}
}

func (s *fakeStore) Questions() repositories.QuestionRepository { return &fakeQuestionRepo{s} }
func (s *fakeStore) Students() repositories.StudentRepository   { return &fakeStudentRepo{s} }
func (s *fakeStore) Records() repositories.ExamRecordRepository { return &fakeRecordRepo{s} }
func (s *fakeStore) Audit() repositories.AuditRepository        { return &fakeAuditRepo{s} }

func (s *fakeStore) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	s.mu.Lock()
	savedRecords := make([]*models.ExamRecord, len(s.records))
	copy(savedRecords, s.records)
	savedDetails := make([]*models.StudentAnswerDetail, len(s.details))
	copy(savedDetails, s.details)
	savedRecordID, savedDetailID := s.nextRecordID, s.nextDetailID
	s.mu.Unlock()

	if err := fn(nil); err != nil {
		s.mu.Lock()
		s.records = savedRecords
		s.details = savedDetails
		s.nextRecordID, s.nextDetailID = savedRecordID, savedDetailID
		s.mu.Unlock()
		return err
	}
	return nil
}

func (s *fakeStore) seedQuestions(subject string, questions ...*models.Question) {
	s.mu.Lock()
	s.pools[subject] = append(s.pools[subject], questions...)
	s.mu.Unlock()
}

func (s *fakeStore) seedRecord(record *models.ExamRecord) *models.ExamRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextRecordID++
	record.ID = s.nextRecordID
	s.records = append(s.records, record)
	return record
}

func (s *fakeStore) seedDetail(detail *models.StudentAnswerDetail) *models.StudentAnswerDetail {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextDetailID++
	detail.ID = s.nextDetailID
	s.details = append(s.details, detail)
	return detail
}

// ===== QUESTIONS =====

type fakeQuestionRepo struct{ s *fakeStore }

func (r *fakeQuestionRepo) Create(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	r.s.seedQuestions(q.Subject, q)
	return nil
}

func (r *fakeQuestionRepo) CreateBatch(ctx context.Context, tx *gorm.DB, questions []*models.Question) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var id uint
	for _, pool := range r.s.pools {
		id += uint(len(pool))
	}
	for _, q := range questions {
		id++
		q.ID = id
		r.s.pools[q.Subject] = append(r.s.pools[q.Subject], q)
	}
	return nil
}

func (r *fakeQuestionRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, pool := range r.s.pools {
		for _, q := range pool {
			if q.ID == id {
				return q, nil
			}
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeQuestionRepo) Update(ctx context.Context, tx *gorm.DB, q *models.Question) error {
	return nil
}

func (r *fakeQuestionRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error { return nil }

func (r *fakeQuestionRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.QuestionFilters) ([]*models.Question, int64, error) {
	pool, err := r.GetBySubject(ctx, tx, filters.Subject)
	if err != nil {
		return nil, 0, err
	}
	return pool, int64(len(pool)), nil
}

func (r *fakeQuestionRepo) GetBySubject(ctx context.Context, tx *gorm.DB, subject string) ([]*models.Question, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.poolErr != nil {
		return nil, r.s.poolErr
	}
	pool := make([]*models.Question, len(r.s.pools[subject]))
	copy(pool, r.s.pools[subject])
	return pool, nil
}

func (r *fakeQuestionRepo) CountBySubject(ctx context.Context, tx *gorm.DB, subject string) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return int64(len(r.s.pools[subject])), nil
}

func (r *fakeQuestionRepo) ListSubjects(ctx context.Context, tx *gorm.DB) ([]repositories.SubjectCount, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []repositories.SubjectCount
	for subject, pool := range r.s.pools {
		out = append(out, repositories.SubjectCount{Subject: subject, Count: int64(len(pool))})
	}
	return out, nil
}

// ===== RECORDS =====

type fakeRecordRepo struct{ s *fakeStore }

func (r *fakeRecordRepo) Create(ctx context.Context, tx *gorm.DB, record *models.ExamRecord) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.recordErr != nil {
		return r.s.recordErr
	}
	r.s.nextRecordID++
	record.ID = r.s.nextRecordID
	r.s.records = append(r.s.records, record)
	return nil
}

func (r *fakeRecordRepo) CreateDetailsBatch(ctx context.Context, tx *gorm.DB, details []*models.StudentAnswerDetail) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.detailErr != nil {
		return r.s.detailErr
	}
	for _, d := range details {
		r.s.nextDetailID++
		d.ID = r.s.nextDetailID
		r.s.details = append(r.s.details, d)
	}
	return nil
}

func (r *fakeRecordRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.ExamRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, rec := range r.s.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeRecordRepo) GetByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]*models.ExamRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.ExamRecord
	for _, rec := range r.s.records {
		if rec.StudentID == studentID {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) GetByStudentAndSubject(ctx context.Context, tx *gorm.DB, studentID, subject string) ([]*models.ExamRecord, error) {
	records, _ := r.GetByStudent(ctx, tx, studentID)
	var out []*models.ExamRecord
	for _, rec := range records {
		if rec.Subject == subject {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) GetAll(ctx context.Context, tx *gorm.DB) ([]*models.ExamRecord, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*models.ExamRecord, len(r.s.records))
	copy(out, r.s.records)
	return out, nil
}

func (r *fakeRecordRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.RecordFilters) ([]*models.ExamRecord, int64, error) {
	records, err := r.GetAll(ctx, tx)
	if err != nil {
		return nil, 0, err
	}
	var out []*models.ExamRecord
	for _, rec := range records {
		if filters.StudentID != nil && rec.StudentID != *filters.StudentID {
			continue
		}
		if filters.Subject != nil && rec.Subject != *filters.Subject {
			continue
		}
		out = append(out, rec)
	}
	return out, int64(len(out)), nil
}

func (r *fakeRecordRepo) GetDetailsByRecord(ctx context.Context, tx *gorm.DB, recordID uint) ([]*models.StudentAnswerDetail, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.StudentAnswerDetail
	for _, d := range r.s.details {
		if d.ExamRecordID == recordID {
			out = append(out, d)
		}
	}
	return out, nil
}

func (r *fakeRecordRepo) CountByStudent(ctx context.Context, tx *gorm.DB, studentID string) (int64, error) {
	records, _ := r.GetByStudent(ctx, tx, studentID)
	return int64(len(records)), nil
}

func (r *fakeRecordRepo) AverageScoreByStudent(ctx context.Context, tx *gorm.DB, studentID string) (float64, error) {
	records, _ := r.GetByStudent(ctx, tx, studentID)
	if len(records) == 0 {
		return 0, nil
	}
	var sum float64
	for _, rec := range records {
		sum += rec.Percentage()
	}
	return sum / float64(len(records)), nil
}

func (r *fakeRecordRepo) UpdateComment(ctx context.Context, tx *gorm.DB, id uint, comment *string) error {
	rec, err := r.GetByID(ctx, tx, id)
	if err != nil {
		return err
	}
	r.s.mu.Lock()
	rec.Comment = comment
	r.s.mu.Unlock()
	return nil
}

func (r *fakeRecordRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for i, rec := range r.s.records {
		if rec.ID == id {
			r.s.records = append(r.s.records[:i], r.s.records[i+1:]...)
			var kept []*models.StudentAnswerDetail
			for _, d := range r.s.details {
				if d.ExamRecordID != id {
					kept = append(kept, d)
				}
			}
			r.s.details = kept
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

// ===== STUDENTS =====

type fakeStudentRepo struct{ s *fakeStore }

func (r *fakeStudentRepo) Create(ctx context.Context, tx *gorm.DB, student *models.Student) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.students[student.ID] = student
	return nil
}

func (r *fakeStudentRepo) GetByID(ctx context.Context, tx *gorm.DB, id string) (*models.Student, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	student, ok := r.s.students[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return student, nil
}

func (r *fakeStudentRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*models.Student, int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.Student
	for _, student := range r.s.students {
		out = append(out, student)
	}
	return out, int64(len(out)), nil
}

func (r *fakeStudentRepo) Delete(ctx context.Context, tx *gorm.DB, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.students, id)
	return nil
}

// ===== AUDIT =====

type fakeAuditRepo struct{ s *fakeStore }

func (r *fakeAuditRepo) Create(ctx context.Context, tx *gorm.DB, entry *models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.s.audits = append(r.s.audits, entry)
	return nil
}

func (r *fakeAuditRepo) ListByActor(ctx context.Context, tx *gorm.DB, actorID string, limit, offset int) ([]*models.AuditLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*models.AuditLog
	for _, entry := range r.s.audits {
		if entry.ActorID == actorID {
			out = append(out, entry)
		}
	}
	return out, nil
}
