package config

import (
	"encoding/json"
	"os"
	"sync"

	"braincore/domain/services/prompting"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// DefaultPersonality is used when no personality file is configured
var DefaultPersonality = prompting.Personality{
	Name:      "Ava",
	Role:      "Sales Assistant",
	Company:   "Braincore",
	Traits:    []string{"warm", "curious", "concise"},
	SignOff:   "Ava",
	WordLimit: 150,
}

// PersonalityProvider serves the current personality configuration
// and hot-reloads it when the backing file changes.
type PersonalityProvider struct {
	path    string
	mu      sync.RWMutex
	current prompting.Personality
	watcher *fsnotify.Watcher
	logger  *zap.Logger
	stopCh  chan struct{}
}

// NewPersonalityProvider loads the personality file and starts
// watching it. An empty path serves the default personality with no
// watcher.
func NewPersonalityProvider(path string, logger *zap.Logger) (*PersonalityProvider, error) {
	p := &PersonalityProvider{
		path:    path,
		current: DefaultPersonality,
		logger:  logger,
		stopCh:  make(chan struct{}),
	}

	if path == "" {
		return p, nil
	}

	if err := p.reload(); err != nil {
		return nil, err
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return nil, err
	}
	p.watcher = watcher

	go p.watch()
	return p, nil
}

// Current returns the personality in effect
func (p *PersonalityProvider) Current() prompting.Personality {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.current
}

// Close stops the file watcher
func (p *PersonalityProvider) Close() error {
	close(p.stopCh)
	if p.watcher != nil {
		return p.watcher.Close()
	}
	return nil
}

func (p *PersonalityProvider) watch() {
	for {
		select {
		case event, ok := <-p.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
				continue
			}
			if err := p.reload(); err != nil {
				p.logger.Warn("Failed to reload personality file",
					zap.String("path", p.path),
					zap.Error(err),
				)
				continue
			}
			p.logger.Info("Reloaded personality file", zap.String("path", p.path))
		case err, ok := <-p.watcher.Errors:
			if !ok {
				return
			}
			p.logger.Warn("Personality watcher error", zap.Error(err))
		case <-p.stopCh:
			return
		}
	}
}

func (p *PersonalityProvider) reload() error {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return err
	}

	personality := DefaultPersonality
	if err := json.Unmarshal(data, &personality); err != nil {
		return err
	}

	p.mu.Lock()
	p.current = personality
	p.mu.Unlock()
	return nil
}
