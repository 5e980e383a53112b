package postgres

import (
	"context"

	"github.com/eduquiz/grading-service/internal/repositories"
	"gorm.io/gorm"
)

type gormRepository struct {
	db         *gorm.DB
	quiz       repositories.QuizRepository
	question   repositories.QuestionRepository
	submission repositories.SubmissionRepository
}

// NewRepository wires the gorm-backed repository set over one database
// handle.
func NewRepository(db *gorm.DB) repositories.Repository {
	return &gormRepository{
		db:         db,
		quiz:       NewQuizPostgreSQL(db),
		question:   NewQuestionPostgreSQL(db),
		submission: NewSubmissionPostgreSQL(db),
	}
}

func (r *gormRepository) Quiz() repositories.QuizRepository             { return r.quiz }
func (r *gormRepository) Question() repositories.QuestionRepository     { return r.question }
func (r *gormRepository) Submission() repositories.SubmissionRepository { return r.submission }

// WithTransaction runs fn against a repository bound to a single
// transaction; the transaction commits when fn returns nil and rolls back
// otherwise.
func (r *gormRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(NewRepository(tx))
	})
}

func (r *gormRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func (r *gormRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
