package registry

import (
	"github.com/thomas-vilte/prdelivery/internal/config"
	domainErrors "github.com/thomas-vilte/prdelivery/internal/errors"
	"github.com/thomas-vilte/prdelivery/internal/i18n"
	"github.com/urfave/cli/v3"
)

// CommandFactory builds one top-level command. Factories receive the shared
// config pointer, which is only filled in by the root Before hook.
type CommandFactory interface {
	CreateCommand(t *i18n.Translations, cfg *config.Config) *cli.Command
}

type entry struct {
	name    string
	factory CommandFactory
}

// Registry keeps factories in registration order, which is the order of the help output.
type Registry struct {
	entries []entry
	config  *config.Config
	t       *i18n.Translations
}

func NewRegistry(cfg *config.Config, t *i18n.Translations) *Registry {
	return &Registry{config: cfg, t: t}
}

func (r *Registry) Register(name string, factory CommandFactory) error {
	if factory == nil {
		return domainErrors.NewAppError(domainErrors.TypeInternal, "command factory is nil", nil).
			WithContext("command", name)
	}
	for _, e := range r.entries {
		if e.name == name {
			return domainErrors.NewAppError(domainErrors.TypeInternal, "command already registered", nil).
				WithContext("command", name)
		}
	}
	r.entries = append(r.entries, entry{name: name, factory: factory})
	return nil
}

func (r *Registry) Names() []string {
	names := make([]string, len(r.entries))
	for i, e := range r.entries {
		names[i] = e.name
	}
	return names
}

func (r *Registry) CreateCommands() []*cli.Command {
	commands := make([]*cli.Command, 0, len(r.entries))
	for _, e := range r.entries {
		commands = append(commands, e.factory.CreateCommand(r.t, r.config))
	}
	return commands
}
