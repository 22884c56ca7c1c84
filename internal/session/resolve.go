package session

import "github.com/nidaan/mentorchat/internal/config"

// DefaultSessionName is used when neither the flag nor the config names
// a session.
const DefaultSessionName = "default"

// Resolve picks the active session name. The -session flag wins over the
// config file's default_session, which wins over DefaultSessionName. A
// missing or unreadable config file is not an error here.
func Resolve(flagOverride string) string {
	if flagOverride != "" {
		return flagOverride
	}
	if cfg, err := config.Load(ConfigPath()); err == nil && cfg.DefaultSession != "" {
		return cfg.DefaultSession
	}
	return DefaultSessionName
}
