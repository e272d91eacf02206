// Package pack reads and writes prompt collections as YAML files.
package pack

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kalambet/promptpilot/internal/storage"
)

//go:embed starter.yaml
var starterYAML []byte

// Pack is a named, shareable set of prompts.
type Pack struct {
	Name        string  `yaml:"name"`
	Description string  `yaml:"description,omitempty"`
	Prompts     []Entry `yaml:"prompts"`
}

// Entry is one prompt in a pack. Owner and IDs are assigned on import.
type Entry struct {
	Title       string   `yaml:"title"`
	Description string   `yaml:"description,omitempty"`
	Content     string   `yaml:"content"`
	Tags        []string `yaml:"tags,flow,omitempty"`
	Model       string   `yaml:"model,omitempty"`
	Public      bool     `yaml:"public,omitempty"`
}

// Parse decodes and validates a pack. Unknown fields are rejected.
func Parse(r io.Reader) (Pack, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var p Pack
	if err := dec.Decode(&p); err != nil {
		if errors.Is(err, io.EOF) {
			return Pack{}, errors.New("pack is empty")
		}
		return Pack{}, fmt.Errorf("decoding pack: %w", err)
	}
	for i, e := range p.Prompts {
		if strings.TrimSpace(e.Title) == "" {
			return Pack{}, fmt.Errorf("prompt %d: title is required", i+1)
		}
		if strings.TrimSpace(e.Content) == "" {
			return Pack{}, fmt.Errorf("prompt %d (%s): content is required", i+1, e.Title)
		}
	}
	return p, nil
}

// Encode writes p as YAML.
func Encode(w io.Writer, p Pack) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding pack: %w", err)
	}
	return enc.Close()
}

// Starter returns the built-in pack used to seed an empty vault.
func Starter() Pack {
	p, err := Parse(bytes.NewReader(starterYAML))
	if err != nil {
		panic("pack: embedded starter pack is invalid: " + err.Error())
	}
	return p
}

// FromPrompts builds a pack from stored prompts.
func FromPrompts(name string, prompts []storage.Prompt) Pack {
	p := Pack{Name: name, Prompts: make([]Entry, 0, len(prompts))}
	for _, sp := range prompts {
		p.Prompts = append(p.Prompts, Entry{
			Title:       sp.Title,
			Description: sp.Description,
			Content:     sp.Content,
			Tags:        sp.Tags,
			Model:       sp.Model,
			Public:      sp.Public,
		})
	}
	return p
}

// Store is the subset of the prompt store used by Import.
type Store interface {
	ListPromptsByOwner(ownerID string) ([]storage.Prompt, error)
	CreatePrompt(p storage.Prompt) (storage.Prompt, error)
}

// ImportResult counts what Import did.
type ImportResult struct {
	Created int `json:"created"`
	Skipped int `json:"skipped"`
}

// Import adds the pack's prompts to ownerID's vault in pack order. Prompts
// whose title already exists in the vault (case-insensitive) are skipped.
func Import(s Store, ownerID string, p Pack) (ImportResult, error) {
	existing, err := s.ListPromptsByOwner(ownerID)
	if err != nil {
		return ImportResult{}, fmt.Errorf("listing vault: %w", err)
	}
	titles := make(map[string]bool, len(existing))
	for _, e := range existing {
		titles[strings.ToLower(strings.TrimSpace(e.Title))] = true
	}

	var res ImportResult
	for _, e := range p.Prompts {
		key := strings.ToLower(strings.TrimSpace(e.Title))
		if titles[key] {
			res.Skipped++
			continue
		}
		if _, err := s.CreatePrompt(storage.Prompt{
			OwnerID:     ownerID,
			Title:       e.Title,
			Description: e.Description,
			Content:     e.Content,
			Tags:        e.Tags,
			Model:       e.Model,
			Public:      e.Public,
		}); err != nil {
			return res, fmt.Errorf("importing %q: %w", e.Title, err)
		}
		titles[key] = true
		res.Created++
	}
	return res, nil
}
