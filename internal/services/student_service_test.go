package services

import (
	"context"
	"testing"

	"github.com/examstack/exam-service/internal/models"
	"github.com/examstack/exam-service/internal/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStudentService_Login(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.students["S001"] = &models.Student{ID: "S001", Name: "Ada", Password: "secret"}

	service := NewStudentService(store, testLogger(), validator.New())

	t.Run("valid credentials", func(t *testing.T) {
		student, err := service.Login(ctx, &LoginRequest{StudentID: "S001", Password: "secret"})
		require.NoError(t, err)
		assert.Equal(t, "Ada", student.Name)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{StudentID: "S001", Password: "nope"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	// An unknown student and a wrong password look identical to the caller.
	t.Run("unknown student", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{StudentID: "S999", Password: "secret"})
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("missing fields fail validation", func(t *testing.T) {
		_, err := service.Login(ctx, &LoginRequest{StudentID: "S001"})
		assert.ErrorIs(t, err, ErrValidationFailed)
	})
}

func TestStudentService_Register(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	service := NewStudentService(store, testLogger(), validator.New())

	err := service.Register(ctx, &models.Student{ID: "S010", Name: "Grace", Password: "pw"})
	require.NoError(t, err)

	students, total, err := service.List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "S010", students[0].ID)
}
