package config

// ConfigBackend stores non-secret promptpilot settings. macOS keeps them in
// UserDefaults (domain com.promptpilot.app); every other platform uses a
// JSON file under $XDG_CONFIG_HOME/promptpilot. Keys are dotted names such as
// "rerank.timeout".
type ConfigBackend interface {
	GetString(key string) (val string, ok bool, err error)
	GetInt(key string) (val int, ok bool, err error)
	SetString(key, val string) error
	SetInt(key string, val int) error
	Delete(key string) error
}
