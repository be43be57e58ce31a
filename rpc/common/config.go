package common

import (
	"fmt"
	"strconv"
	"strings"
)

// --------------------------------------------------------------------------
// Client configuration struct
// --------------------------------------------------------------------------

const (
	DefaultApplicationName     = "dsess"
	DefaultPort                = 6379
	DefaultConnectionTimeoutMs = 5000
	DefaultOperationTimeoutMs  = 1000
)

// ClientConfig holds all parameters needed to connect to the remote store
type ClientConfig struct {
	// ApplicationName is the prefix of every key written by this client
	ApplicationName string

	// discrete connection settings (ignored if ConnectionString is set)
	Host      string
	Port      int
	AccessKey string
	UseSSL    bool

	// timeouts, 0 uses the defaults of the redis client
	ConnectionTimeoutMs int
	OperationTimeoutMs  int

	// DatabaseId selects the logical database. It is used for connection strings
	// only if they do not name a database.
	DatabaseId int

	// ConnectionString is a redis URL (redis:// or rediss://). When set it
	// overrides Host, Port, AccessKey and UseSSL.
	ConnectionString string

	// PoolIdleCapacity is the number of idle connections kept by the pool
	PoolIdleCapacity int

	// Serializer is the name of the value serializer (binary, gob, json)
	Serializer string
}

// Validate checks the configuration for values that can never work
func (c *ClientConfig) Validate() error {
	if c.ApplicationName == "" {
		return fmt.Errorf("application name must not be empty")
	}
	if c.ConnectionString == "" {
		if c.Host == "" {
			return fmt.Errorf("either a host or a connection string is required")
		}
		if c.Port <= 0 || c.Port > 65535 {
			return fmt.Errorf("invalid port %d", c.Port)
		}
	}
	if c.ConnectionTimeoutMs < 0 || c.OperationTimeoutMs < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	if c.DatabaseId < 0 {
		return fmt.Errorf("invalid database id %d", c.DatabaseId)
	}
	return nil
}

// Address returns host:port of the discrete connection settings
func (c *ClientConfig) Address() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// String returns a formatted string representation of the client configuration.
// Secrets are masked.
func (c *ClientConfig) String() string {
	var sb strings.Builder

	// Create helper functions for consistent formatting
	addSection := func(title string) {
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("%s\n", strings.ToUpper(title)))
	}

	addField := func(name, value string) {
		sb.WriteString(fmt.Sprintf("  %-22s: %s\n", name, value))
	}

	addSection("Client Configuration")
	addField("Application Name", c.ApplicationName)
	addField("Database", strconv.Itoa(c.DatabaseId))
	addField("Connection Timeout", fmt.Sprintf("%d ms", c.ConnectionTimeoutMs))
	addField("Operation Timeout", fmt.Sprintf("%d ms", c.OperationTimeoutMs))
	addField("Idle Connections", strconv.Itoa(c.PoolIdleCapacity))
	addField("Serializer", c.Serializer)

	addSection("Endpoint")
	if c.ConnectionString != "" {
		addField("Connection String", MaskConnectionString(c.ConnectionString))
	} else {
		addField("Address", c.Address())
		addField("Access Key", mask(c.AccessKey))
		addField("SSL", strconv.FormatBool(c.UseSSL))
	}

	return sb.String()
}

// --------------------------------------------------------------------------
// Helper
// --------------------------------------------------------------------------

// MaskConnectionString hides the password of a redis URL
func MaskConnectionString(s string) string {
	scheme := strings.Index(s, "://")
	at := strings.LastIndex(s, "@")
	if scheme < 0 || at < scheme {
		return s
	}
	userInfo := s[scheme+3 : at]
	if i := strings.Index(userInfo, ":"); i >= 0 {
		userInfo = userInfo[:i+1] + "****"
	} else if userInfo != "" {
		userInfo = "****"
	}
	return s[:scheme+3] + userInfo + s[at:]
}

func mask(secret string) string {
	if secret == "" {
		return "(none)"
	}
	return "****"
}
