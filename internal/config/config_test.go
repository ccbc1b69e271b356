package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()

	t.Run("server defaults", func(t *testing.T) {
		assert.Empty(t, config.Server.GUID)
		assert.True(t, config.Server.AllowAnonymous)
		assert.Equal(t, 10*time.Second, config.Server.ShutdownTimeout)
	})

	t.Run("directory defaults", func(t *testing.T) {
		assert.Equal(t, "/etc/nspid/seed.yaml", config.Directory.SeedFile)
		assert.Equal(t, 8, config.Directory.MaxRestrictionDepth)
		assert.Equal(t, 10000, config.Directory.MaxExplicitTable)
		assert.True(t, config.Directory.IgnoreEntryIDDisplayType)
	})

	t.Run("logging defaults", func(t *testing.T) {
		assert.Equal(t, "info", config.Logging.Level)
		assert.Equal(t, "json", config.Logging.Format)
		assert.Equal(t, "stdout", config.Logging.Output)
	})

	t.Run("acl defaults", func(t *testing.T) {
		assert.Equal(t, "deny", config.ACL.DefaultPolicy)
		require.Len(t, config.ACL.Rules, 2)
		assert.Equal(t, "distlist", config.ACL.Rules[0].DisplayType)
		assert.Contains(t, config.ACL.Rules[0].Properties, "AddressBookMember")
		assert.Equal(t, "mailuser", config.ACL.Rules[1].DisplayType)
		assert.Contains(t, config.ACL.Rules[1].Properties, "AddressBookPublicDelegates")
	})

	t.Run("defaults validate", func(t *testing.T) {
		assert.Empty(t, ValidateConfig(config))
	})
}

func TestParseConfig(t *testing.T) {
	t.Run("empty config uses defaults", func(t *testing.T) {
		config, err := ParseConfig([]byte(""))
		require.NoError(t, err)
		assert.Equal(t, DefaultConfig(), config)
	})

	t.Run("parse server config", func(t *testing.T) {
		config, err := ParseConfig([]byte(`
server:
  guid: "5a8e3b9c-2f0d-4e6a-9a71-1c3e5f7a9b2d"
  allowAnonymous: false
  shutdownTimeout: 45s
`))
		require.NoError(t, err)
		assert.Equal(t, "5a8e3b9c-2f0d-4e6a-9a71-1c3e5f7a9b2d", config.Server.GUID)
		assert.False(t, config.Server.AllowAnonymous)
		assert.Equal(t, 45*time.Second, config.Server.ShutdownTimeout)
	})

	t.Run("parse directory and storage config", func(t *testing.T) {
		config, err := ParseConfig([]byte(`
directory:
  seedFile: /srv/seed.yaml
  phoneticSort: false
  maxExplicitTable: 50
storage:
  path: /var/lib/nspid/nspid.db
  noSync: true
`))
		require.NoError(t, err)
		assert.Equal(t, "/srv/seed.yaml", config.Directory.SeedFile)
		assert.False(t, config.Directory.PhoneticSort)
		assert.Equal(t, 50, config.Directory.MaxExplicitTable)
		assert.Equal(t, 8, config.Directory.MaxRestrictionDepth, "unset keys keep defaults")
		assert.Equal(t, "/var/lib/nspid/nspid.db", config.Storage.Path)
		assert.True(t, config.Storage.NoSync)
	})

	t.Run("parse code pages", func(t *testing.T) {
		config, err := ParseConfig([]byte(`
codepages:
  supported: [1252, 932, 20261]
`))
		require.NoError(t, err)
		assert.Equal(t, []uint32{1252, 932, 20261}, config.Codepages.Supported)
	})

	t.Run("acl rules replace defaults", func(t *testing.T) {
		config, err := ParseConfig([]byte(`
acl:
  defaultPolicy: allow
  rules:
    - displayType: agent
      subject: "*"
      rights: [all]
      deny: true
`))
		require.NoError(t, err)
		assert.Equal(t, "allow", config.ACL.DefaultPolicy)
		require.Len(t, config.ACL.Rules, 1)
		assert.Equal(t, "agent", config.ACL.Rules[0].DisplayType)
		assert.True(t, config.ACL.Rules[0].Deny)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		_, err := ParseConfig([]byte("server: [unterminated"))
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := ParseConfig([]byte("server:\n  address: \":389\"\n"))
		assert.ErrorIs(t, err, ErrInvalidYAML)
	})
}

func TestEnvironmentVariableSubstitution(t *testing.T) {
	t.Run("simple substitution", func(t *testing.T) {
		t.Setenv("TEST_NSPID_SEED", "/tmp/seed.yaml")

		config, err := ParseConfig([]byte(`
directory:
  seedFile: "${TEST_NSPID_SEED}"
`))
		require.NoError(t, err)
		assert.Equal(t, "/tmp/seed.yaml", config.Directory.SeedFile)
	})

	t.Run("substitution with default value", func(t *testing.T) {
		os.Unsetenv("TEST_NSPID_MISSING")

		config, err := ParseConfig([]byte(`
rest:
  address: "${TEST_NSPID_MISSING:-:9090}"
`))
		require.NoError(t, err)
		assert.Equal(t, ":9090", config.REST.Address)
	})

	t.Run("substitution with default when var is set", func(t *testing.T) {
		t.Setenv("TEST_NSPID_SET", ":7070")

		config, err := ParseConfig([]byte(`
rest:
  address: "${TEST_NSPID_SET:-:9090}"
`))
		require.NoError(t, err)
		assert.Equal(t, ":7070", config.REST.Address)
	})

	t.Run("unset variable becomes empty", func(t *testing.T) {
		os.Unsetenv("TEST_NSPID_UNSET")

		config, err := ParseConfig([]byte(`
storage:
  path: "${TEST_NSPID_UNSET}"
`))
		require.NoError(t, err)
		assert.Empty(t, config.Storage.Path)
	})
}

func TestSubstituteEnvVars(t *testing.T) {
	t.Setenv("TEST_NSPID_A", "alpha")

	tests := []struct {
		input    string
		expected string
	}{
		{"${TEST_NSPID_A}", "alpha"},
		{"x-${TEST_NSPID_A}-y", "x-alpha-y"},
		{"${TEST_NSPID_NONE:-fallback}", "fallback"},
		{"no variables", "no variables"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, string(substituteEnvVars([]byte(tt.input))))
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Run("load from file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(configPath, []byte(`
logging:
  level: "warn"
rest:
  enabled: false
`), 0644))

		config, err := LoadConfig(configPath)
		require.NoError(t, err)
		assert.Equal(t, "warn", config.Logging.Level)
		assert.False(t, config.REST.Enabled)
	})

	t.Run("file not found", func(t *testing.T) {
		_, err := LoadConfig("/nonexistent/path/config.yaml")
		assert.ErrorIs(t, err, ErrFileNotFound)
	})
}

func TestMarshalRoundTrip(t *testing.T) {
	config := DefaultConfig()
	config.Server.GUID = "5a8e3b9c-2f0d-4e6a-9a71-1c3e5f7a9b2d"
	config.Codepages.Supported = []uint32{1252}

	data, err := Marshal(config)
	require.NoError(t, err)

	parsed, err := ParseConfig(data)
	require.NoError(t, err)
	assert.Equal(t, config, parsed)
}

func TestValidateConfig(t *testing.T) {
	fields := func(errs []error) []string {
		var out []string
		for _, err := range errs {
			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			out = append(out, ve.Field)
		}
		return out
	}

	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"bad guid", func(c *Config) { c.Server.GUID = "not-a-guid" }, "server.guid"},
		{"missing seed", func(c *Config) { c.Directory.SeedFile = "" }, "directory.seedFile"},
		{"restriction depth", func(c *Config) { c.Directory.MaxRestrictionDepth = 0 }, "directory.maxRestrictionDepth"},
		{"negative table", func(c *Config) { c.Directory.MaxExplicitTable = -1 }, "directory.maxExplicitTable"},
		{"relative storage", func(c *Config) { c.Storage.Path = "nspid.db" }, "storage.path"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
		{"log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"log output", func(c *Config) { c.Logging.Output = "relative.log" }, "logging.output"},
		{"code page", func(c *Config) { c.Codepages.Supported = []uint32{1252, 4242} }, "codepages.supported[1]"},
		{"acl policy", func(c *Config) { c.ACL.DefaultPolicy = "maybe" }, "acl.defaultPolicy"},
		{"acl display type", func(c *Config) { c.ACL.Rules[0].DisplayType = "robot" }, "acl.rules[0].displayType"},
		{"acl subject", func(c *Config) { c.ACL.Rules[0].Subject = "cn=admin" }, "acl.rules[0].subject"},
		{"acl property", func(c *Config) { c.ACL.Rules[1].Properties = []string{"NoSuchProp"} }, "acl.rules[1].properties"},
		{"acl right", func(c *Config) { c.ACL.Rules[1].Rights = []string{"write"} }, "acl.rules[1].rights"},
		{"rest address", func(c *Config) { c.REST.Address = "8080" }, "rest.address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(config)
			assert.Contains(t, fields(ValidateConfig(config)), tt.field)
		})
	}

	t.Run("disabled rest skips address", func(t *testing.T) {
		config := DefaultConfig()
		config.REST.Enabled = false
		config.REST.Address = "bogus"
		assert.Empty(t, ValidateConfig(config))
	})
}
