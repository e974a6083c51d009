package bootstrap

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/vox-librorum/vox-desk/config"
	authrepo "github.com/vox-librorum/vox-desk/internal/auth/repository"
	authservice "github.com/vox-librorum/vox-desk/internal/auth/service"
	deskrepo "github.com/vox-librorum/vox-desk/internal/desk/repository"
	deskservice "github.com/vox-librorum/vox-desk/internal/desk/service"
	"github.com/vox-librorum/vox-desk/internal/library"
	"github.com/vox-librorum/vox-desk/internal/projects/domain"
	projectsrepo "github.com/vox-librorum/vox-desk/internal/projects/repository"
	projectsservice "github.com/vox-librorum/vox-desk/internal/projects/service"
	"github.com/vox-librorum/vox-desk/internal/workspace"
)

// Deps are the opened backing stores. In offline mode DB, SQL and Redis are nil.
type Deps struct {
	Config  *config.Config
	Log     *zap.Logger
	DB      *pgxpool.Pool
	SQL     *sql.DB
	Redis   *redis.Client
	Library *library.Library
}

// Services are the wired application services shared by the router and jobs.
type Services struct {
	Auth     *authservice.AuthService
	Tokens   *authservice.TokenIssuer
	Projects *projectsservice.ProjectService
	Desks    *deskservice.Manager
}

// NewServices picks the store for every concern. Offline mode runs on in-memory
// stores seeded with the demo projects; online mode needs the database handles.
func NewServices(dep Deps) (*Services, error) {
	cfg := dep.Config
	offline := cfg.App.OfflineMode
	if dep.Log == nil {
		dep.Log = zap.NewNop()
	}

	secret := cfg.Auth.JWTSecret
	if secret == "" {
		if !offline {
			return nil, fmt.Errorf("JWT_SECRET is required")
		}
		s, err := randomSecret()
		if err != nil {
			return nil, err
		}
		secret = s
	}
	tokens := authservice.NewTokenIssuer(secret, cfg.Auth.SessionTTL)

	var (
		users    authservice.UserRepository
		projects projectsservice.Repository
	)
	if offline {
		seed, err := demoRecords(dep.Library)
		if err != nil {
			return nil, err
		}
		users = authrepo.NewMemoryUserRepository()
		projects = projectsrepo.NewMemoryRepository(seed)
		dep.Log.Warn("offline mode: in-memory stores, passphrase sign-in enabled")
	} else {
		if dep.SQL == nil || dep.DB == nil {
			return nil, fmt.Errorf("database handles are required outside offline mode")
		}
		users = authrepo.NewUserRepository(dep.SQL)
		projects = projectsrepo.NewProjectRepository(dep.DB)
	}

	var pins deskservice.PinRepository = deskrepo.NewMemoryPinRepository()
	var redisPins *deskrepo.PinRepository
	if dep.Redis != nil {
		redisPins = deskrepo.NewPinRepository(dep.Redis)
		pins = redisPins
	}

	opts := workspace.Options{
		AssistantDelay: cfg.Desk.AssistantDelay,
		CommandDelay:   cfg.Desk.CommandDelay,
	}
	if dep.Library != nil {
		opts.Catalog = dep.Library
	}

	projectSvc := projectsservice.NewProjectService(projects)
	desks := deskservice.NewManager(projectSvc, pins, opts, dep.Log)
	if redisPins != nil {
		desks.SetPublisher(redisPins)
	}

	return &Services{
		Auth:     authservice.NewAuthService(users, tokens, offline),
		Tokens:   tokens,
		Projects: projectSvc,
		Desks:    desks,
	}, nil
}

func demoRecords(lib *library.Library) ([]domain.Record, error) {
	if lib == nil {
		return nil, nil
	}
	var out []domain.Record
	for _, p := range lib.DemoProjects() {
		rec, err := domain.NewRecord("", p)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func randomSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session secret: %w", err)
	}
	return hex.EncodeToString(b), nil
}
