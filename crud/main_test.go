package crud

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"warbler/database"
	"warbler/domain"
)

const testPepper = "test-pepper"

// newTestServices returns all crud services backed by a fresh in-memory SQLite database.
func newTestServices(t *testing.T) *Services {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db := database.NewDB(database.DriverSQLite, fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", name))
	require.NoError(t, database.Open(db, true))
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() { _ = database.Close(db) })

	s, err := NewServices(db.Gorm,
		WithUser(testPepper, bcrypt.MinCost),
		WithFollow(),
		WithMessage(),
		WithLike())
	require.NoError(t, err)
	return s
}

func mustSignup(t *testing.T, s *Services, username string) *domain.User {
	t.Helper()
	u, err := s.User.Signup(context.Background(), domain.SignupInput{
		Username: username,
		Email:    username + "@test.com",
		Password: "password",
	})
	require.NoError(t, err)
	return u
}

func mustPost(t *testing.T, s *Services, owner *domain.User, text string) *domain.Message {
	t.Helper()
	m, err := s.Message.Create(context.Background(), owner.ID, text)
	require.NoError(t, err)
	return m
}
