// Package di provides dependency injection container for managing service lifecycle and dependencies.
package di

import (
	"context"
	"database/sql"
	"sync"

	"cyberadvisor/internal/config"
	"cyberadvisor/internal/database"
	"cyberadvisor/internal/observability"
	"cyberadvisor/internal/services"
	contextutils "cyberadvisor/internal/utils"
)

// ServiceContainerInterface defines the interface for service containers
type ServiceContainerInterface interface {
	GetService(name string) (interface{}, error)
	GetUserService() (services.UserServiceInterface, error)
	GetConversationService() (services.ConversationServiceInterface, error)
	GetAIService() (services.AIServiceInterface, error)
	GetQuizService() (*services.QuizService, error)
	GetQuizStore() (services.QuizStoreInterface, error)
	GetChatService() (*services.ChatService, error)
	GetDatabase() *sql.DB
	GetConfig() *config.Config
	GetLogger() *observability.Logger
	Initialize(ctx context.Context) error
	Shutdown(ctx context.Context) error
	EnsureAdminUser(ctx context.Context) error
}

// ServiceContainer manages all service dependencies and lifecycle
type ServiceContainer struct {
	cfg           *config.Config
	logger        *observability.Logger
	dbManager     *database.Manager
	db            *sql.DB
	services      map[string]interface{}
	mu            sync.RWMutex
	shutdownFuncs []func(context.Context) error
}

// NewServiceContainer creates a new dependency injection container
func NewServiceContainer(cfg *config.Config, logger *observability.Logger) *ServiceContainer {
	return &ServiceContainer{
		cfg:      cfg,
		logger:   logger,
		services: make(map[string]interface{}),
	}
}

// Initialize sets up all services and their dependencies
func (sc *ServiceContainer) Initialize(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	// Initialize database
	sc.dbManager = database.NewManager(sc.logger)
	db, err := sc.dbManager.InitDBWithConfig(sc.cfg.Database)
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to initialize database")
	}
	sc.db = db
	sc.shutdownFuncs = append(sc.shutdownFuncs, func(_ context.Context) error {
		return db.Close()
	})

	sc.initializeServices(ctx)

	return nil
}

// GetService retrieves a service by name with type assertion
func (sc *ServiceContainer) GetService(name string) (interface{}, error) {
	sc.mu.RLock()
	defer sc.mu.RUnlock()

	service, exists := sc.services[name]
	if !exists {
		return nil, contextutils.ErrorWithContextf("service %s not found", name)
	}
	return service, nil
}

// GetServiceAs performs type-safe service retrieval
func GetServiceAs[T any](sc *ServiceContainer, name string) (T, error) {
	var zero T
	service, err := sc.GetService(name)
	if err != nil {
		return zero, err
	}

	typed, ok := service.(T)
	if !ok {
		return zero, contextutils.ErrorWithContextf("service %s is not of expected type %T", name, zero)
	}
	return typed, nil
}

// GetUserService returns the user service
func (sc *ServiceContainer) GetUserService() (services.UserServiceInterface, error) {
	return GetServiceAs[services.UserServiceInterface](sc, "user")
}

// GetConversationService returns the conversation service
func (sc *ServiceContainer) GetConversationService() (services.ConversationServiceInterface, error) {
	return GetServiceAs[services.ConversationServiceInterface](sc, "conversation")
}

// GetAIService returns the generation service
func (sc *ServiceContainer) GetAIService() (services.AIServiceInterface, error) {
	return GetServiceAs[services.AIServiceInterface](sc, "ai")
}

// GetQuizService returns the quiz round service
func (sc *ServiceContainer) GetQuizService() (*services.QuizService, error) {
	return GetServiceAs[*services.QuizService](sc, "quiz")
}

// GetQuizStore returns the quiz question and session store
func (sc *ServiceContainer) GetQuizStore() (services.QuizStoreInterface, error) {
	return GetServiceAs[services.QuizStoreInterface](sc, "quiz_store")
}

// GetChatService returns the chat turn service
func (sc *ServiceContainer) GetChatService() (*services.ChatService, error) {
	return GetServiceAs[*services.ChatService](sc, "chat")
}

// GetDatabase returns the database instance
func (sc *ServiceContainer) GetDatabase() *sql.DB {
	return sc.db
}

// GetConfig returns the configuration
func (sc *ServiceContainer) GetConfig() *config.Config {
	return sc.cfg
}

// GetLogger returns the logger
func (sc *ServiceContainer) GetLogger() *observability.Logger {
	return sc.logger
}

// Shutdown gracefully shuts down all services
func (sc *ServiceContainer) Shutdown(ctx context.Context) error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	return sc.cleanup(ctx)
}

// cleanup handles shutdown of all services
func (sc *ServiceContainer) cleanup(ctx context.Context) error {
	var errs []error

	// Shutdown in reverse order of initialization
	for i := len(sc.shutdownFuncs) - 1; i >= 0; i-- {
		if err := sc.shutdownFuncs[i](ctx); err != nil {
			sc.logger.Error(ctx, "Shutdown step failed", err, nil)
			errs = append(errs, err)
		}
	}

	if len(errs) > 0 {
		return contextutils.ErrorWithContextf("shutdown errors: %v", errs)
	}
	return nil
}

// initializeServices sets up all service dependencies
func (sc *ServiceContainer) initializeServices(_ context.Context) {
	userService := services.NewUserServiceWithLogger(sc.db, sc.logger)
	sc.services["user"] = userService

	conversationService := services.NewConversationService(sc.db, sc.logger)
	sc.services["conversation"] = conversationService

	aiService := services.NewAIService(sc.cfg, sc.logger)
	sc.services["ai"] = aiService

	quizStore := services.NewQuizStore(sc.db, sc.logger)
	sc.services["quiz_store"] = quizStore

	quizService := services.NewQuizService(quizStore, sc.cfg, sc.logger)
	sc.services["quiz"] = quizService

	chatService := services.NewChatService(aiService, conversationService, quizService, sc.cfg, sc.logger)
	sc.services["chat"] = chatService
}

// EnsureAdminUser creates the admin user if it doesn't exist
func (sc *ServiceContainer) EnsureAdminUser(ctx context.Context) error {
	if sc.cfg.Server.AdminUsername == "" || sc.cfg.Server.AdminPassword == "" {
		return nil
	}

	userService, err := GetServiceAs[*services.UserService](sc, "user")
	if err != nil {
		return contextutils.WrapErrorf(err, "failed to get user service")
	}

	_, err = userService.EnsureAdminUser(ctx, sc.cfg.Server.AdminUsername, sc.cfg.Server.AdminPassword)
	return err
}
