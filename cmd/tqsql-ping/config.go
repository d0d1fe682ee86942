package main

import (
	"os"

	"gopkg.in/ini.v1"
)

// Config holds the settings tqsql-ping needs to dial and authenticate a
// single connection, loaded from an INI file with environment variable
// overrides — the process-level concern this package's core library
// deliberately leaves to its callers.
type Config struct {
	Network  string
	Address  string
	Username string
	Password string
	Database string
	TLSMode  string
}

// loadConfig reads path as an INI file under a [connection] section.
func loadConfig(path string) (*Config, error) {
	cfg, err := ini.Load(path)
	if err != nil {
		return nil, err
	}

	sec := cfg.Section("connection")
	c := &Config{
		Network:  sec.Key("network").MustString("tcp"),
		Address:  sec.Key("address").MustString("127.0.0.1:3306"),
		Username: sec.Key("username").MustString("root"),
		Password: sec.Key("password").String(),
		Database: sec.Key("database").String(),
		TLSMode:  sec.Key("tls_mode").MustString("disable"),
	}

	if v := os.Getenv("TQSQL_PING_ADDRESS"); v != "" {
		c.Address = v
	}
	if v := os.Getenv("TQSQL_PING_PASSWORD"); v != "" {
		c.Password = v
	}

	return c, nil
}
