package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"sportsadmin.backend/internal/config"
	"sportsadmin.backend/internal/domain/entities"
	"sportsadmin.backend/internal/infrastructure/datasources/postgres"
	"sportsadmin.backend/internal/infrastructure/repositories"
	"sportsadmin.backend/internal/usecases"
	"sportsadmin.backend/pkg/crypto"
)

const generatedPasswordBytes = 12

type superAdminSeeder interface {
	EnsureSuperAdmin(ctx context.Context, email, name, password string) (*entities.User, bool, error)
}

type adminUserDeps struct {
	loadEnv          func() error
	loadCfg          func() *config.Config
	prepare          func(cfg *config.Config) (superAdminSeeder, io.Closer, error)
	generatePassword func() (string, error)
	out              io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultAdminUserDeps() adminUserDeps {
	return adminUserDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config) (superAdminSeeder, io.Closer, error) {
			db, err := postgres.NewConnection(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}
			sqlDB, err := db.DB()
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}
			return usecases.NewUserUsecase(repositories.NewUserRepository(db)), sqlDB, nil
		},
		generatePassword: func() (string, error) { return crypto.GenerateRandomToken(generatedPasswordBytes) },
		out:              os.Stdout,
	}
}

func runAdminUser(args []string, deps adminUserDeps) error {
	def := defaultAdminUserDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.generatePassword == nil {
		deps.generatePassword = def.generatePassword
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("admin-user", flag.ContinueOnError)
	emailFlag := fs.String("email", "", "superadmin email (required)")
	nameFlag := fs.String("name", "Super Admin", "display name")
	passwordFlag := fs.String("password", "", "initial password (generated when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	email := strings.TrimSpace(*emailFlag)
	if email == "" {
		return fmt.Errorf("--email is required")
	}

	password := *passwordFlag
	generated := false
	if password == "" {
		p, err := deps.generatePassword()
		if err != nil {
			return fmt.Errorf("failed to generate password: %w", err)
		}
		password, generated = p, true
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	seeder, closer, err := deps.prepare(cfg)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	user, created, err := seeder.EnsureSuperAdmin(context.Background(), email, *nameFlag, password)
	if err != nil {
		return fmt.Errorf("failed creating superadmin: %w", err)
	}

	if !created {
		_, _ = fmt.Fprintf(deps.out, "User %s already exists (role=%s), nothing to do\n", user.Email, user.Role)
		return nil
	}

	_, _ = fmt.Fprintln(deps.out, "Created superadmin")
	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", user.ID.String())
	_, _ = fmt.Fprintf(deps.out, "email=%s\n", user.Email)
	if generated {
		_, _ = fmt.Fprintf(deps.out, "PASSWORD=%s\n", password)
	}
	return nil
}

func main() {
	if err := runAdminUser(os.Args[1:], defaultAdminUserDeps()); err != nil {
		log.Fatal(err)
	}
}
