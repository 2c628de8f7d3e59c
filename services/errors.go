package services

import (
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

var (
	ErrNotFound         = errors.New("not found")
	ErrCapacityExceeded = errors.New("lesson is full")
	ErrAlreadyEnrolled  = errors.New("student is already enrolled in this lesson")
	ErrScheduleConflict = errors.New("lesson time clashes with another lesson the student is currently enrolled in")
	ErrGradeMismatch    = errors.New("student grade level does not match the lesson's grade level requirement")
	ErrNotEnrolled      = errors.New("student is not enrolled in this lesson")
	ErrUnauthorized     = errors.New("tutor is not assigned to this lesson")
	ErrAlreadyMarked    = errors.New("attendance has already been marked")
	ErrOutsideWindow    = errors.New("attendance can only be marked from one hour before the lesson starts until one hour after it ends")
	ErrInvalidSchedule  = errors.New("lesson schedule is invalid")
	ErrConcurrentUpdate = errors.New("the lesson was modified concurrently, please retry")

	ErrTemplateSubmitted = errors.New("a progression template has already been submitted for this lesson")
)

type notFoundError struct {
	entity string
}

func (e notFoundError) Error() string { return e.entity + " not found" }

func (e notFoundError) Is(target error) bool { return target == ErrNotFound }

// notFound reports a missing entity; errors.Is(err, ErrNotFound) holds.
func notFound(entity string) error {
	return notFoundError{entity: entity}
}

const (
	pgSerializationFailure = "40001"
	pgDeadlockDetected     = "40P01"
	pgLockNotAvailable     = "55P03"
)

// lookupError is dbError for single-row reads: a missing row becomes a
// not-found error naming entity.
func lookupError(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return notFound(entity)
	}
	return dbError(err, "load "+entity)
}

// dbError turns lock and isolation failures into ErrConcurrentUpdate; anything
// else is wrapped with op.
func dbError(err error, op string) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerializationFailure, pgDeadlockDetected, pgLockNotAvailable:
			return errors.Wrap(ErrConcurrentUpdate, pgErr.Message)
		}
	}
	return errors.Wrap(err, op)
}

// txError classifies an error returned by a whole transaction. Domain errors
// pass through untouched so callers can match and print them as-is.
func txError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return dbError(err, "transaction")
	}
	return err
}
