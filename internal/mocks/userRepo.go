package mocks

import (
	"github.com/jmoiron/sqlx"
	"github.com/spectrumarena/arenapay/internal/repository"
	"github.com/stretchr/testify/mock"
)

type MockUserRepo struct {
	mock.Mock
}

func (m *MockUserRepo) Insert(user *repository.User, tx *sqlx.Tx) (string, error) {
	args := m.Called(user, tx)
	return args.String(0), args.Error(1)
}

func (m *MockUserRepo) GetOne(id string) (*repository.User, bool, error) {
	args := m.Called(id)
	user, _ := args.Get(0).(*repository.User)
	return user, args.Bool(1), args.Error(2)
}

func (m *MockUserRepo) GetByEmail(email string) (*repository.User, bool, error) {
	args := m.Called(email)
	user, _ := args.Get(0).(*repository.User)
	return user, args.Bool(1), args.Error(2)
}
