package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/moyeo-lab/cohort-api/internal/models"
	appErrors "github.com/moyeo-lab/cohort-api/pkg/errors"
)

type mockEnrollmentRepo struct {
	enrollments []models.Enrollment
	names       map[string]string
}

func (m *mockEnrollmentRepo) ListByStudent(ctx context.Context, studentID string) ([]models.Enrollment, error) {
	var out []models.Enrollment
	for _, enrollment := range m.enrollments {
		if enrollment.StudentID == studentID {
			out = append(out, enrollment)
		}
	}
	return out, nil
}

func (m *mockEnrollmentRepo) Insert(ctx context.Context, enrollment *models.Enrollment) (bool, error) {
	for _, existing := range m.enrollments {
		if existing.StudentID == enrollment.StudentID && existing.Region == enrollment.Region && existing.Level == enrollment.Level {
			return false, nil
		}
	}
	m.enrollments = append(m.enrollments, *enrollment)
	return true, nil
}

func (m *mockEnrollmentRepo) Delete(ctx context.Context, studentID, region, level string) (bool, error) {
	for i, existing := range m.enrollments {
		if existing.StudentID == studentID && existing.Region == region && existing.Level == level {
			m.enrollments = append(m.enrollments[:i], m.enrollments[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (m *mockEnrollmentRepo) RosterByTrack(ctx context.Context, region, level string) ([]models.RosterStudent, error) {
	var out []models.RosterStudent
	for _, enrollment := range m.enrollments {
		if enrollment.Region == region && enrollment.Level == level {
			out = append(out, models.RosterStudent{StudentID: enrollment.StudentID, FullName: m.names[enrollment.StudentID]})
		}
	}
	return out, nil
}

func TestEnrollmentToggleOnThenOff(t *testing.T) {
	repo := &mockEnrollmentRepo{}
	svc := NewEnrollmentService(repo, nil, zap.NewNop())

	result, err := svc.Toggle(context.Background(), "s1", ToggleEnrollmentRequest{Region: "seoul", Level: "beginner"})
	require.NoError(t, err)
	assert.True(t, result.Enrolled)
	assert.Len(t, repo.enrollments, 1)

	result, err = svc.Toggle(context.Background(), "s1", ToggleEnrollmentRequest{Region: "seoul", Level: "beginner"})
	require.NoError(t, err)
	assert.False(t, result.Enrolled)
	assert.Empty(t, repo.enrollments)
}

func TestEnrollmentToggleValidation(t *testing.T) {
	svc := NewEnrollmentService(&mockEnrollmentRepo{}, nil, zap.NewNop())

	_, err := svc.Toggle(context.Background(), "s1", ToggleEnrollmentRequest{Region: "seoul"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestEnrollmentListScopedToStudent(t *testing.T) {
	repo := &mockEnrollmentRepo{enrollments: []models.Enrollment{
		{ID: "e1", StudentID: "s1", Region: "seoul", Level: "beginner"},
		{ID: "e2", StudentID: "s2", Region: "busan", Level: "advanced"},
	}}
	svc := NewEnrollmentService(repo, nil, zap.NewNop())

	enrollments, err := svc.List(context.Background(), "s1")
	require.NoError(t, err)
	require.Len(t, enrollments, 1)
	assert.Equal(t, "seoul", enrollments[0].Region)
}
