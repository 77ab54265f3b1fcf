package command

import "sort"

var registry = map[string]Command{}

// Register adds a command to the global registry.
func Register(cmd Command, mws ...Middleware) {
	registry[cmd.Name()] = ApplyMiddlewares(cmd, mws...)
}

// Get returns the command with the given name.
func Get(name string) (Command, bool) {
	cmd, ok := registry[name]
	return cmd, ok
}

// All returns all registered commands, sorted by name.
func All() []Command {
	list := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		list = append(list, cmd)
	}
	sort.Slice(list, func(i, j int) bool {
		return list[i].Name() < list[j].Name()
	})
	return list
}
