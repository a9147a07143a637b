package di

import (
	"braincore/application/ports"
	"braincore/application/services"
	"braincore/infrastructure/config"
	"braincore/pkg/observability"

	"go.uber.org/zap"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	Store       ports.DocumentStore
	Publisher   ports.EventPublisher
	Metrics     *observability.Metrics
	Former      *services.MemoryFormer
	Personality *config.PersonalityProvider
}
