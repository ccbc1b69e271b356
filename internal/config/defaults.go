package config

import "time"

// DefaultConfig returns a Config with sensible default values.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			GUID:            "",
			AllowAnonymous:  true,
			ShutdownTimeout: 10 * time.Second,
		},
		Directory: DirectoryConfig{
			SeedFile:                 "/etc/nspid/seed.yaml",
			PhoneticSort:             true,
			MaxRestrictionDepth:      8,
			MaxExplicitTable:         10000,
			IgnoreEntryIDDisplayType: true,
		},
		Storage: StorageConfig{
			Path:    "",
			NoSync:  false,
			Timeout: time.Second,
		},
		Logging: LogConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Codepages: CodepageConfig{
			Supported: nil,
		},
		ACL: ACLConfig{
			DefaultPolicy: "deny",
			Rules: []ACLRuleConfig{
				{
					DisplayType: "distlist",
					Subject:     "authenticated",
					Properties:  []string{"AddressBookMember", "AddressBookX509Certificate", "UserX509Certificate"},
					Rights:      []string{"all"},
				},
				{
					DisplayType: "mailuser",
					Subject:     "authenticated",
					Properties:  []string{"AddressBookPublicDelegates", "AddressBookX509Certificate", "UserX509Certificate"},
					Rights:      []string{"all"},
				},
			},
		},
		REST: RESTConfig{
			Enabled:      true,
			Address:      ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 30 * time.Second,
			RateLimit:    0,
			CORSOrigins:  nil,
		},
	}
}
