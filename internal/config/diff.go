package config

// ConfigDiff describes what changed between two configs. The log level can be
// hot-reloaded; everything else requires a restart and is reported so the
// watcher can say exactly what the operator touched.
type ConfigDiff struct {
	LogLevelChanged bool
	NewLogLevel     LogLevel

	// CollaboratorChanges holds one entry per collaborator whose wiring
	// changed. Collaborator changes are not hot-reloadable.
	CollaboratorChanges []CollaboratorDiff

	// EngineChanged is true if the worker pool size or default accent changed.
	EngineChanged bool

	// DatabaseChanged is true if the persistence DSN changed.
	DatabaseChanged bool
}

// CollaboratorDiff describes what changed for a single collaborator kind.
type CollaboratorDiff struct {
	Kind            string
	NameChanged     bool
	EndpointChanged bool
}

// RequiresRestart reports whether the diff contains changes that cannot be
// applied to a running server.
func (d ConfigDiff) RequiresRestart() bool {
	return len(d.CollaboratorChanges) > 0 || d.EngineChanged || d.DatabaseChanged
}

// Diff compares old and new configs and returns what changed.
func Diff(old, new *Config) ConfigDiff {
	d := ConfigDiff{}

	// Log level
	if old.Server.LogLevel != new.Server.LogLevel {
		d.LogLevelChanged = true
		d.NewLogLevel = new.Server.LogLevel
	}

	// Collaborators
	pairs := []struct {
		kind     string
		old, new CollaboratorEntry
	}{
		{"speech", old.Collaborators.Speech, new.Collaborators.Speech},
		{"phonemes", old.Collaborators.Phonemes, new.Collaborators.Phonemes},
		{"g2p", old.Collaborators.G2P, new.Collaborators.G2P},
		{"articulatory", old.Collaborators.Articulatory, new.Collaborators.Articulatory},
	}
	for _, p := range pairs {
		cd := CollaboratorDiff{Kind: p.kind}
		if p.old.Name != p.new.Name {
			cd.NameChanged = true
		}
		if p.old.BaseURL != p.new.BaseURL || p.old.ModelPath != p.new.ModelPath {
			cd.EndpointChanged = true
		}
		if cd.NameChanged || cd.EndpointChanged {
			d.CollaboratorChanges = append(d.CollaboratorChanges, cd)
		}
	}

	// Engine
	if old.Engine.MaxConcurrent != new.Engine.MaxConcurrent ||
		old.Engine.DefaultAccent != new.Engine.DefaultAccent {
		d.EngineChanged = true
	}

	// Database
	if old.Database.PostgresDSN != new.Database.PostgresDSN {
		d.DatabaseChanged = true
	}

	return d
}
