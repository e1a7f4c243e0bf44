package structures

import "time"

type Server struct {
	Host string `yaml:"host" validate:"required"`
	Port int    `yaml:"port" validate:"required|uint|min:1"`
}

// Store points at the persisted catalog document and its backups.
type Store struct {
	FilePath   string `yaml:"filePath" validate:"required|unixPath"`
	MaxBackups int    `yaml:"maxBackups" validate:"uint|max:100"`
	Compress   bool   `yaml:"compress"`
}

type Ingestion struct {
	DBPath         string        `yaml:"dbPath" validate:"required|unixPath"`
	RescanInterval time.Duration `yaml:"rescanInterval"`
	UploadMaxSize  int64         `yaml:"uploadMaxSize"`
}

// User is one tracked library owner and the Galaxy database file uploaded
// for them, relative to Ingestion.DBPath.
type User struct {
	ID       int    `yaml:"id" validate:"required|min:1"`
	Username string `yaml:"username" validate:"required"`
	DB       string `yaml:"db"`
}

// MetadataOverride is author-supplied data for one title, keyed by title in
// the config file.
type MetadataOverride struct {
	Comment    string `yaml:"comment"`
	URL        string `yaml:"url"`
	MaxPlayers *int   `yaml:"max_players" mapstructure:"max_players"`
}

type Enrichment struct {
	CacheFile string `yaml:"cacheFile"`
}

type LoggerConfig struct {
	Level string `yaml:"level" validate:"required|in:trace,debug,info,warn,error,fatal,panic"`
	Mode  uint32 `yaml:"mode" validate:"required|uint"`
	Dir   string `yaml:"dir" validate:"required|unixPath"`
}

type CacheConfig struct {
	Enabled bool `yaml:"enabled"`
	Size    int  `yaml:"size"`
	TTL     int  `yaml:"ttl"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type Config struct {
	AppName    string
	Debug      bool
	Path       string
	WebServer  Server                      `yaml:"webServer"`
	Store      Store                       `yaml:"store"`
	Ingestion  Ingestion                   `yaml:"ingestion"`
	Users      []User                      `yaml:"users"`
	Hidden     []string                    `yaml:"hidden"`
	Metadata   map[string]MetadataOverride `yaml:"metadata"`
	Enrichment Enrichment                  `yaml:"enrichment"`
	Logger     LoggerConfig                `yaml:"logger"`
	Cache      CacheConfig                 `yaml:"cache"`
	Metrics    MetricsConfig               `yaml:"metrics"`
}

// User returns the configured user with the given id.
func (c *Config) User(id int) (User, bool) {
	for _, u := range c.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

// UserIDs returns the configured user ids in config order.
func (c *Config) UserIDs() []int {
	ids := make([]int, 0, len(c.Users))
	for _, u := range c.Users {
		ids = append(ids, u.ID)
	}
	return ids
}
