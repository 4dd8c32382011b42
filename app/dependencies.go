package app

import (
	"context"
	"fmt"

	"github.com/shalevclinic/backend/auth"
	"github.com/shalevclinic/backend/config"
	"github.com/shalevclinic/backend/handlers"
	"github.com/shalevclinic/backend/middleware"
	"github.com/shalevclinic/backend/repositories"
	repomongo "github.com/shalevclinic/backend/repositories/mongo"
	"github.com/shalevclinic/backend/upload"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Dependencies holds all application dependencies. This is the central
// wiring point for dependency injection.
type Dependencies struct {
	// Infrastructure
	Config *config.Config
	DB     *repomongo.DB
	Logger *zap.Logger

	// Repositories
	Users        repositories.UserRepository
	Articles     repositories.ArticleRepository
	Gallery      repositories.GalleryRepository
	Services     repositories.ServiceRepository
	Declarations repositories.DeclarationRepository

	// Auth and uploads
	Tokens         *auth.TokenService
	AuthMiddleware *middleware.AuthMiddleware
	Store          *upload.Store

	// Handlers
	AuthHandler        *handlers.AuthHandler
	ArticleHandler     *handlers.ArticleHandler
	GalleryHandler     *handlers.GalleryHandler
	ServiceHandler     *handlers.ServiceHandler
	DeclarationHandler *handlers.DeclarationHandler
	HealthHandler      *handlers.HealthHandler
}

// NewDependencies creates and wires up all application dependencies
func NewDependencies(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Dependencies, error) {
	deps := &Dependencies{
		Config: cfg,
		Logger: logger,
	}

	if err := deps.initDatabase(ctx); err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	deps.initRepositories()

	if err := deps.initUploads(); err != nil {
		return nil, fmt.Errorf("failed to initialize upload store: %w", err)
	}

	deps.initAuth()
	deps.initHandlers()

	logger.Info("all dependencies initialized successfully")
	return deps, nil
}

func (d *Dependencies) initDatabase(ctx context.Context) error {
	db, err := repomongo.Connect(ctx, d.Config.Mongo, d.Logger)
	if err != nil {
		return err
	}
	d.DB = db

	d.Logger.Info("database connection established",
		zap.String("database", d.Config.Mongo.Database))
	return nil
}

func (d *Dependencies) initRepositories() {
	d.Users = repomongo.NewUserRepository(d.DB, d.Logger)
	d.Articles = repomongo.NewArticleRepository(d.DB, d.Logger)
	d.Gallery = repomongo.NewGalleryRepository(d.DB, d.Logger)
	d.Services = repomongo.NewServiceRepository(d.DB, d.Logger)
	d.Declarations = repomongo.NewDeclarationRepository(d.DB, d.Logger)

	d.Logger.Info("repositories initialized")
}

func (d *Dependencies) initUploads() error {
	store, err := upload.NewStore(afero.NewOsFs(), d.Config.Uploads, d.Logger)
	if err != nil {
		return err
	}
	d.Store = store

	d.Logger.Info("upload store initialized",
		zap.String("dir", d.Config.Uploads.Dir))
	return nil
}

func (d *Dependencies) initAuth() {
	d.Tokens = auth.NewTokenService(d.Config.Auth)
	d.AuthMiddleware = middleware.NewAuthMiddleware(d.Tokens, d.Users, d.Logger)
}

func (d *Dependencies) initHandlers() {
	d.AuthHandler = handlers.NewAuthHandler(d.Users, d.Tokens, d.Config.Auth.BcryptCost, d.Logger)
	d.ArticleHandler = handlers.NewArticleHandler(d.Articles, d.Users, d.Store, d.Logger)
	d.GalleryHandler = handlers.NewGalleryHandler(d.Gallery, d.Users, d.Store, d.Logger)
	d.ServiceHandler = handlers.NewServiceHandler(d.Services, d.Users, d.Logger)
	d.DeclarationHandler = handlers.NewDeclarationHandler(d.Declarations, d.Logger)
	d.HealthHandler = handlers.NewHealthHandler(d.DB, d.Logger)
}

// Close releases held resources
func (d *Dependencies) Close(ctx context.Context) error {
	if d.DB != nil {
		return d.DB.Close(ctx)
	}
	return nil
}
