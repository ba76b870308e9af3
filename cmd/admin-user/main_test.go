package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"sportsadmin.backend/internal/config"
	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/infrastructure/repositories"
	"sportsadmin.backend/internal/usecases"
)

type fakeSeeder struct {
	created  bool
	err      error
	password string
}

func (f *fakeSeeder) EnsureSuperAdmin(_ context.Context, email, _ string, password string) (*entities.User, bool, error) {
	f.password = password
	if f.err != nil {
		return nil, false, f.err
	}
	return &entities.User{ID: uuid.New(), Email: email, Role: entities.UserRoleSuperAdmin}, f.created, nil
}

func fakeDeps(seeder superAdminSeeder, out io.Writer) adminUserDeps {
	return adminUserDeps{
		loadEnv:          func() error { return errors.New("no .env") },
		loadCfg:          func() *config.Config { return &config.Config{} },
		prepare:          func(*config.Config) (superAdminSeeder, io.Closer, error) { return seeder, nil, nil },
		generatePassword: func() (string, error) { return "generated-secret-42", nil },
		out:              out,
	}
}

func TestRunAdminUser_RequiresEmail(t *testing.T) {
	err := runAdminUser([]string{}, fakeDeps(&fakeSeeder{}, io.Discard))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email")
}

func TestRunAdminUser_GeneratesPassword(t *testing.T) {
	seeder := &fakeSeeder{created: true}
	var out bytes.Buffer

	require.NoError(t, runAdminUser([]string{"-email", "root@academy.test"}, fakeDeps(seeder, &out)))
	assert.Equal(t, "generated-secret-42", seeder.password)
	assert.Contains(t, out.String(), "Created superadmin")
	assert.Contains(t, out.String(), "PASSWORD=generated-secret")
}

func TestRunAdminUser_ExplicitPasswordIsNotPrinted(t *testing.T) {
	seeder := &fakeSeeder{created: true}
	var out bytes.Buffer

	require.NoError(t, runAdminUser([]string{"-email", "root@academy.test", "-password", "Sup3rSecret!"}, fakeDeps(seeder, &out)))
	assert.Equal(t, "Sup3rSecret!", seeder.password)
	assert.NotContains(t, out.String(), "PASSWORD=")
}

func TestRunAdminUser_ExistingUser(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runAdminUser([]string{"-email", "root@academy.test"}, fakeDeps(&fakeSeeder{}, &out)))
	assert.Contains(t, out.String(), "already exists")
}

func TestRunAdminUser_Errors(t *testing.T) {
	deps := fakeDeps(&fakeSeeder{err: errors.New("insert failed")}, io.Discard)
	err := runAdminUser([]string{"-email", "root@academy.test"}, deps)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "insert failed")

	deps = fakeDeps(nil, io.Discard)
	deps.prepare = func(*config.Config) (superAdminSeeder, io.Closer, error) { return nil, nil, errors.New("db down") }
	assert.EqualError(t, runAdminUser([]string{"-email", "root@academy.test"}, deps), "db down")

	deps = fakeDeps(&fakeSeeder{}, io.Discard)
	deps.generatePassword = func() (string, error) { return "", errors.New("entropy") }
	assert.Error(t, runAdminUser([]string{"-email", "root@academy.test"}, deps))

	assert.Error(t, runAdminUser([]string{"-unknown"}, fakeDeps(&fakeSeeder{}, io.Discard)))
}

func TestRunAdminUser_AgainstSQLite(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file:admin_user_seed?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`CREATE TABLE users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		name TEXT NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		identification TEXT,
		phone TEXT,
		is_active BOOLEAN NOT NULL DEFAULT 1,
		created_at DATETIME,
		updated_at DATETIME,
		deleted_at DATETIME
	);`).Error)

	userRepo := repositories.NewUserRepository(db)
	deps := fakeDeps(nil, io.Discard)
	deps.prepare = func(*config.Config) (superAdminSeeder, io.Closer, error) {
		return usecases.NewUserUsecase(userRepo), nil, nil
	}

	require.NoError(t, runAdminUser([]string{"-email", "root@academy.test", "-name", "Root"}, deps))
	user, err := userRepo.GetByEmail(context.Background(), "root@academy.test")
	require.NoError(t, err)
	assert.Equal(t, entities.UserRoleSuperAdmin, user.Role)
	assert.True(t, user.IsActive)

	var out bytes.Buffer
	deps.out = &out
	require.NoError(t, runAdminUser([]string{"-email", "root@academy.test"}, deps))
	assert.Contains(t, out.String(), "already exists")
}

func TestMain_ExitsWhenEmailMissing(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_ADMIN_USER") == "1" {
		os.Args = []string{"admin-user"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_ExitsWhenEmailMissing")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_ADMIN_USER=1")
	if err := cmd.Run(); err == nil {
		t.Fatal("expected helper process to fail when --email is missing")
	}
}
