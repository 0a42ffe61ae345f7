package config

import (
	"errors"
	"fmt"
	"sync"

	"github.com/twilight39/IPA-Navigator/pkg/provider/artic"
	"github.com/twilight39/IPA-Navigator/pkg/provider/g2p"
	"github.com/twilight39/IPA-Navigator/pkg/provider/phonerec"
	"github.com/twilight39/IPA-Navigator/pkg/provider/speech"
)

// ErrCollaboratorNotRegistered is returned by Create* methods when no factory
// has been registered under the requested collaborator name.
var ErrCollaboratorNotRegistered = errors.New("config: collaborator not registered")

// Registry maps collaborator names to their constructor functions for each
// collaborator kind. It is safe for concurrent use.
type Registry struct {
	mu           sync.RWMutex
	speech       map[string]func(CollaboratorEntry) (speech.Aligner, error)
	phonemes     map[string]func(CollaboratorEntry) (phonerec.Recognizer, error)
	g2p          map[string]func(CollaboratorEntry) (g2p.Converter, error)
	articulatory map[string]func(CollaboratorEntry) (artic.Measure, error)
}

// NewRegistry returns an empty, ready-to-use [Registry].
func NewRegistry() *Registry {
	return &Registry{
		speech:       make(map[string]func(CollaboratorEntry) (speech.Aligner, error)),
		phonemes:     make(map[string]func(CollaboratorEntry) (phonerec.Recognizer, error)),
		g2p:          make(map[string]func(CollaboratorEntry) (g2p.Converter, error)),
		articulatory: make(map[string]func(CollaboratorEntry) (artic.Measure, error)),
	}
}

// RegisterSpeech registers a speech aligner factory under name.
// Subsequent calls with the same name overwrite the previous registration.
func (r *Registry) RegisterSpeech(name string, factory func(CollaboratorEntry) (speech.Aligner, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speech[name] = factory
}

// RegisterPhonemes registers a phoneme recognizer factory under name.
func (r *Registry) RegisterPhonemes(name string, factory func(CollaboratorEntry) (phonerec.Recognizer, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.phonemes[name] = factory
}

// RegisterG2P registers a grapheme-to-phoneme converter factory under name.
func (r *Registry) RegisterG2P(name string, factory func(CollaboratorEntry) (g2p.Converter, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.g2p[name] = factory
}

// RegisterArticulatory registers a distance measure factory under name.
func (r *Registry) RegisterArticulatory(name string, factory func(CollaboratorEntry) (artic.Measure, error)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.articulatory[name] = factory
}

// CreateSpeech instantiates a speech aligner using the factory registered
// under entry.Name. Returns [ErrCollaboratorNotRegistered] if no factory has
// been registered for that name.
func (r *Registry) CreateSpeech(entry CollaboratorEntry) (speech.Aligner, error) {
	r.mu.RLock()
	factory, ok := r.speech[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: speech/%q", ErrCollaboratorNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreatePhonemes instantiates a phoneme recognizer using the factory
// registered under entry.Name.
func (r *Registry) CreatePhonemes(entry CollaboratorEntry) (phonerec.Recognizer, error) {
	r.mu.RLock()
	factory, ok := r.phonemes[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: phonemes/%q", ErrCollaboratorNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateG2P instantiates a grapheme-to-phoneme converter using the factory
// registered under entry.Name.
func (r *Registry) CreateG2P(entry CollaboratorEntry) (g2p.Converter, error) {
	r.mu.RLock()
	factory, ok := r.g2p[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: g2p/%q", ErrCollaboratorNotRegistered, entry.Name)
	}
	return factory(entry)
}

// CreateArticulatory instantiates a distance measure using the factory
// registered under entry.Name.
func (r *Registry) CreateArticulatory(entry CollaboratorEntry) (artic.Measure, error) {
	r.mu.RLock()
	factory, ok := r.articulatory[entry.Name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: articulatory/%q", ErrCollaboratorNotRegistered, entry.Name)
	}
	return factory(entry)
}
