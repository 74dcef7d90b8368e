package mockapi

import (
	"net/http"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	sqlStore, err := NewSQLiteStore(filepath.Join(t.TempDir(), "mock.db"))
	require.NoError(t, err)
	t.Cleanup(func() { sqlStore.Close() })
	return map[string]Store{
		"memory": NewMemoryStore(),
		"sqlite": sqlStore,
	}
}

func TestStore_CreateAndLookup(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			u := &User{FullName: "Ada Obi", Email: "ada@example.com", Role: "student"}
			require.NoError(t, st.CreateUser(u, []byte("hash")))
			assert.NotZero(t, u.ID)
			assert.False(t, u.CreatedAt.IsZero())

			second := &User{FullName: "Ben", Email: "ben@example.com", Role: "student"}
			require.NoError(t, st.CreateUser(second, []byte("hash2")))
			assert.Greater(t, second.ID, u.ID)

			dup := &User{FullName: "Ada again", Email: "ada@example.com", Role: "student"}
			assert.ErrorIs(t, st.CreateUser(dup, []byte("x")), ErrUserExists)

			got, hash, err := st.UserByEmail("ada@example.com")
			require.NoError(t, err)
			assert.Equal(t, "Ada Obi", got.FullName)
			assert.Equal(t, []byte("hash"), hash)

			byID, err := st.UserByID(u.ID)
			require.NoError(t, err)
			assert.Equal(t, "ada@example.com", byID.Email)

			_, _, err = st.UserByEmail("nobody@example.com")
			assert.ErrorIs(t, err, ErrUserNotFound)
			_, err = st.UserByID(999)
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestStore_CompleteOnboarding(t *testing.T) {
	for name, st := range stores(t) {
		t.Run(name, func(t *testing.T) {
			u := &User{FullName: "Ada Obi", Email: "ada@example.com", Role: "student"}
			require.NoError(t, st.CreateUser(u, []byte("hash")))

			answers := map[string]string{"careerPath": "web-dev", "age": "18-22"}
			done, err := st.CompleteOnboarding(u.ID, answers, "cv.pdf")
			require.NoError(t, err)
			assert.True(t, done.HasTakenOnboarding)
			assert.Equal(t, "cv.pdf", done.CVName)
			assert.Equal(t, answers, done.Assessment)

			// The store keeps its own copy.
			answers["age"] = "31+"
			again, err := st.UserByID(u.ID)
			require.NoError(t, err)
			assert.Equal(t, "18-22", again.Assessment["age"])

			_, err = st.CompleteOnboarding(999, answers, "")
			assert.ErrorIs(t, err, ErrUserNotFound)
		})
	}
}

func TestSQLiteStore_SurvivesRestart(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mock.db")

	first, err := NewSQLiteStore(path)
	require.NoError(t, err)
	assert.Equal(t, path, first.Path())
	s := New(Options{JWTSecret: "persist", BcryptCost: bcrypt.MinCost, Store: first})
	signup(t, s, "ada@example.com")
	require.NoError(t, s.Close())

	second, err := NewSQLiteStore(path)
	require.NoError(t, err)
	s = New(Options{JWTSecret: "persist", BcryptCost: bcrypt.MinCost, Store: second})
	t.Cleanup(func() { s.Close() })

	code, body := postJSON(t, s, "/api/auth/login", map[string]string{
		"email": "ada@example.com", "password": "password123",
	})
	require.Equal(t, http.StatusOK, code, body)
	assert.NotEmpty(t, body["access_token"])
}
