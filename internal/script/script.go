// Package script reads YAML annotation scripts: ordered editor commands
// applied to each document in a batch run.
package script

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/kpauljoseph/pagemark/internal/session"
)

// Script is the parsed form of
//
//	commands:
//	  - type: set_color
//	    color: green
//	  - type: add_highlight
//	    page: 1
//	    start: {x: 10, y: 10}
//	    end: {x: 120, y: 40}
type Script struct {
	Commands []session.Command
}

type document struct {
	Commands []yaml.Node `yaml:"commands"`
}

type envelope struct {
	Type string `yaml:"type"`
}

func Load(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

func Parse(data []byte) (*Script, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}

	s := &Script{Commands: make([]session.Command, 0, len(doc.Commands))}
	for i := range doc.Commands {
		node := &doc.Commands[i]
		var env envelope
		if err := node.Decode(&env); err != nil {
			return nil, fmt.Errorf("command %d (line %d): %w", i+1, node.Line, err)
		}
		if env.Type == "" {
			return nil, fmt.Errorf("command %d (line %d): missing type", i+1, node.Line)
		}
		cmd, err := session.ParseCommand(env.Type, node.Decode)
		if err != nil {
			return nil, fmt.Errorf("command %d (line %d): %w", i+1, node.Line, err)
		}
		s.Commands = append(s.Commands, cmd)
	}
	return s, nil
}
