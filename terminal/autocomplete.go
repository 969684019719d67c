package terminal

import (
	"strings"

	"github.com/c-bata/go-prompt"
)

// FieldProvider exposes the attribute fields of the currently loaded feature
// source, avoiding a dependency on the source type itself.
type FieldProvider interface {
	Fields() []string
	HasSource() bool
}

// CommandCompleter handles shell command and argument completion
type CommandCompleter struct {
	commands   []prompt.Suggest
	categories []prompt.Suggest
	fields     FieldProvider
}

// NewCommandCompleter creates a new command completer
func NewCommandCompleter() *CommandCompleter {
	return &CommandCompleter{
		commands: []prompt.Suggest{
			{Text: "use", Description: "Load a GeoJSON file as the active selection source"},
			{Text: "select", Description: "Limit the selection to a list of feature IDs"},
			{Text: "fields", Description: "List attribute fields of the loaded source"},
			{Text: "download", Description: "Download block files for the selection"},
			{Text: "loadindex", Description: "Load the 10 km index grid into the project"},
			{Text: "layers", Description: "List layers in the project"},
			{Text: "theme", Description: "Change terminal theme"},
			{Text: "help", Description: "Show help information"},
			{Text: "exit", Description: "Leave the shell"},
		},
		categories: []prompt.Suggest{
			{Text: "dtm", Description: "Terrain model blocks"},
			{Text: "dsm", Description: "Surface model blocks"},
			{Text: "pointcloud", Description: "Point cloud blocks"},
		},
	}
}

// SetFieldProvider sets the source whose fields are suggested.
func (c *CommandCompleter) SetFieldProvider(p FieldProvider) {
	c.fields = p
}

// Completer returns suggestions for the current input
func (c *CommandCompleter) Completer(d prompt.Document) []prompt.Suggest {
	text := d.TextBeforeCursor()
	words := strings.Fields(text)

	// If we're at the start of a new command
	if len(words) == 0 || (len(words) == 1 && !strings.HasSuffix(text, " ")) {
		return c.suggestCommands(words)
	}

	return c.suggestArguments(words, strings.HasSuffix(text, " "))
}

// suggestCommands returns suggestions for commands
func (c *CommandCompleter) suggestCommands(words []string) []prompt.Suggest {
	if len(words) == 0 {
		return c.commands
	}

	prefix := strings.ToLower(words[0])
	var filtered []prompt.Suggest
	for _, s := range c.commands {
		if strings.HasPrefix(s.Text, prefix) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}

// suggestArguments returns suggestions for command arguments
func (c *CommandCompleter) suggestArguments(words []string, trailingSpace bool) []prompt.Suggest {
	cmd := strings.ToLower(words[0])
	lastWord := ""
	if !trailingSpace {
		lastWord = words[len(words)-1]
	}

	argIndex := len(words) - 1
	if trailingSpace {
		argIndex++
	}

	switch cmd {
	case "download":
		// download <category> <field>
		switch argIndex {
		case 1:
			return filterByPrefix(c.categories, lastWord)
		case 2:
			return c.suggestFields(lastWord)
		}
	case "theme":
		if argIndex == 1 {
			return filterByPrefix([]prompt.Suggest{
				{Text: "light", Description: "Light theme"},
				{Text: "dark", Description: "Dark theme"},
			}, lastWord)
		}
	}

	return nil
}

// suggestFields returns field-name suggestions from the loaded source
func (c *CommandCompleter) suggestFields(prefix string) []prompt.Suggest {
	if c.fields == nil || !c.fields.HasSource() {
		return nil
	}

	var suggestions []prompt.Suggest
	for _, f := range c.fields.Fields() {
		suggestions = append(suggestions, prompt.Suggest{
			Text:        f,
			Description: "Attribute field",
		})
	}
	return filterByPrefix(suggestions, prefix)
}

func filterByPrefix(suggestions []prompt.Suggest, prefix string) []prompt.Suggest {
	if prefix == "" {
		return suggestions
	}
	var filtered []prompt.Suggest
	for _, s := range suggestions {
		if strings.HasPrefix(strings.ToLower(s.Text), strings.ToLower(prefix)) {
			filtered = append(filtered, s)
		}
	}
	return filtered
}
