package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/bulletin-board-api/internal/database"
	"github.com/bulletin-board-api/internal/models"
)

// sessionFactory begins PostgreSQL transactions
type sessionFactory struct {
	db *database.DB
}

// NewSessionFactory creates a SessionFactory backed by db
func NewSessionFactory(db *database.DB) SessionFactory {
	return &sessionFactory{db: db}
}

// Begin starts a new transaction
func (f *sessionFactory) Begin(ctx context.Context) (Session, error) {
	tx, err := f.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin session: %w", err)
	}
	return &txSession{tx: tx}, nil
}

// txSession is a Session over one *sql.Tx
type txSession struct {
	tx *sql.Tx
}

// InsertPost inserts the post inside the transaction; RETURNING hands back
// the identifier before commit.
func (s *txSession) InsertPost(ctx context.Context, post *models.Post) error {
	return insertPost(ctx, s.tx, post)
}

// InsertComment wraps the insert in a savepoint. PostgreSQL aborts the whole
// transaction on a failed statement, so the savepoint is what keeps one bad
// comment from discarding its siblings.
func (s *txSession) InsertComment(ctx context.Context, comment *models.Comment) error {
	if _, err := s.tx.ExecContext(ctx, "SAVEPOINT comment_insert"); err != nil {
		return err
	}

	if err := insertComment(ctx, s.tx, comment); err != nil {
		if _, rbErr := s.tx.ExecContext(ctx, "ROLLBACK TO SAVEPOINT comment_insert"); rbErr != nil {
			return fmt.Errorf("%w (savepoint rollback failed: %v)", err, rbErr)
		}
		return err
	}

	_, err := s.tx.ExecContext(ctx, "RELEASE SAVEPOINT comment_insert")
	return err
}

// Commit commits the transaction
func (s *txSession) Commit() error {
	return s.tx.Commit()
}

// Rollback aborts the transaction. It is a no-op after Commit.
func (s *txSession) Rollback() error {
	err := s.tx.Rollback()
	if err == sql.ErrTxDone {
		return nil
	}
	return err
}
