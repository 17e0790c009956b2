package service

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dschilow/Avatales-Backend-sub001/internal/domain"
	"github.com/dschilow/Avatales-Backend-sub001/internal/events"
	"github.com/dschilow/Avatales-Backend-sub001/internal/store"
)

// MockUserStore mocks the store.UserStore interface.
type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserStore) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*domain.User, error) {
	args := m.Called(ctx, parentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.User), args.Error(1)
}

func (m *MockUserStore) Update(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserStore) WithTx(_ *sql.Tx) store.UserStore {
	return m
}

// MockStoryStore mocks the store.StoryStore interface.
type MockStoryStore struct {
	mock.Mock
}

func (m *MockStoryStore) Create(ctx context.Context, story *domain.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Story, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Story), args.Error(1)
}

func (m *MockStoryStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Story, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Story), args.Error(1)
}

func (m *MockStoryStore) ListPublished(ctx context.Context, offset, limit int) ([]*domain.Story, error) {
	args := m.Called(ctx, offset, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Story), args.Error(1)
}

func (m *MockStoryStore) Update(ctx context.Context, story *domain.Story) error {
	args := m.Called(ctx, story)
	return args.Error(0)
}

func (m *MockStoryStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockStoryStore) WithTx(_ *sql.Tx) store.StoryStore {
	return m
}

// MockCharacterStore mocks the store.CharacterStore interface.
type MockCharacterStore struct {
	mock.Mock
}

func (m *MockCharacterStore) Create(ctx context.Context, character *domain.Character) error {
	args := m.Called(ctx, character)
	return args.Error(0)
}

func (m *MockCharacterStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Character, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Character), args.Error(1)
}

func (m *MockCharacterStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*domain.Character, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Character), args.Error(1)
}

func (m *MockCharacterStore) Update(ctx context.Context, character *domain.Character) error {
	args := m.Called(ctx, character)
	return args.Error(0)
}

func (m *MockCharacterStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCharacterStore) WithTx(_ *sql.Tx) store.CharacterStore {
	return m
}

// MockLearningGoalStore mocks the store.LearningGoalStore interface.
type MockLearningGoalStore struct {
	mock.Mock
}

func (m *MockLearningGoalStore) Create(ctx context.Context, goal *domain.LearningGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockLearningGoalStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.LearningGoal, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.LearningGoal), args.Error(1)
}

func (m *MockLearningGoalStore) ListByChild(ctx context.Context, childID uuid.UUID) ([]*domain.LearningGoal, error) {
	args := m.Called(ctx, childID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.LearningGoal), args.Error(1)
}

func (m *MockLearningGoalStore) Update(ctx context.Context, goal *domain.LearningGoal) error {
	args := m.Called(ctx, goal)
	return args.Error(0)
}

func (m *MockLearningGoalStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockLearningGoalStore) WithTx(_ *sql.Tx) store.LearningGoalStore {
	return m
}

// MockScheduler mocks the GenerationScheduler interface.
type MockScheduler struct {
	mock.Mock
}

func (m *MockScheduler) Schedule(ctx context.Context, storyID uuid.UUID) error {
	args := m.Called(ctx, storyID)
	return args.Error(0)
}

// noopEmitter discards all events; unit tests that care about events assert
// through the domain entities instead.
type noopEmitter struct{}

func (noopEmitter) EmitEvent(context.Context, domain.Event) error { return nil }

var _ events.EventEmitter = noopEmitter{}
