package config

import "time"

// Config holds the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Directory DirectoryConfig `yaml:"directory"`
	Storage   StorageConfig   `yaml:"storage"`
	Logging   LogConfig       `yaml:"logging"`
	Codepages CodepageConfig  `yaml:"codepages"`
	ACL       ACLConfig       `yaml:"acl"`
	REST      RESTConfig      `yaml:"rest"`
}

// ServerConfig holds protocol-level server settings.
type ServerConfig struct {
	// GUID identifies this server in ephemeral entry IDs and Bind replies.
	// A random GUID is generated at startup when empty.
	GUID            string        `yaml:"guid"`
	AllowAnonymous  bool          `yaml:"allowAnonymous"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"`
}

// DirectoryConfig holds address book settings.
type DirectoryConfig struct {
	SeedFile                 string `yaml:"seedFile"`
	PhoneticSort             bool   `yaml:"phoneticSort"`
	MaxRestrictionDepth      int    `yaml:"maxRestrictionDepth"`
	MaxExplicitTable         int    `yaml:"maxExplicitTable"`
	IgnoreEntryIDDisplayType bool   `yaml:"ignoreEntryIDDisplayType"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Path is the bolt database file. Empty keeps the address book in memory.
	Path    string        `yaml:"path"`
	NoSync  bool          `yaml:"noSync"`
	Timeout time.Duration `yaml:"timeout"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// CodepageConfig lists the code pages served for 8-bit strings.
type CodepageConfig struct {
	Supported []uint32 `yaml:"supported,omitempty"`
}

// ACLConfig holds the modification policy.
type ACLConfig struct {
	DefaultPolicy string          `yaml:"defaultPolicy"`
	Rules         []ACLRuleConfig `yaml:"rules"`
}

// ACLRuleConfig holds a single ACL rule configuration.
type ACLRuleConfig struct {
	DisplayType string   `yaml:"displayType"`
	Subject     string   `yaml:"subject"`
	Properties  []string `yaml:"properties"`
	Rights      []string `yaml:"rights"`
	Deny        bool     `yaml:"deny"`
}

// RESTConfig holds the JSON/HTTP adapter settings.
type RESTConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Address      string        `yaml:"address"`
	ReadTimeout  time.Duration `yaml:"readTimeout"`
	WriteTimeout time.Duration `yaml:"writeTimeout"`
	RateLimit    int           `yaml:"rateLimit"`
	CORSOrigins  []string      `yaml:"corsOrigins,omitempty"`
}
