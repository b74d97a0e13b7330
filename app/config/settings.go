// SPDX-FileCopyrightText: Copyright (c) Northern Arizona University High Performance Computing. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/pkg/errors"
)

type Settings struct {
	ClusterName string `yaml:"cluster_name" env:"CLUSTER_NAME" env-description:"display name of the cluster being scored"`

	Server   Server   `yaml:"server"`
	Logging  Logging  `yaml:"logging"`
	Database Database `yaml:"database"`
	Scores   Scores   `yaml:"scores"`
	Refresh  Refresh  `yaml:"refresh"`
}

type Logging struct {
	Level string `yaml:"level" default:"info" env:"LOG_LEVEL" env-description:"logging level such as debug, info, error"`
}

type Server struct {
	Mode string `yaml:"mode" default:"http" env:"SERVER_MODE" env-description:"server mode such as http, https"`
	Port uint   `yaml:"port" default:"8080" env:"SERVER_PORT" env-description:"server port"`
}

type Database struct {
	Dialect      string `yaml:"dialect" default:"mysql" env:"DATABASE_DIALECT" env-description:"accounting database dialect, mysql or sqlite"`
	Host         string `yaml:"host" default:"localhost" env:"DATABASE_HOST" env-description:"accounting database host"`
	Port         uint   `yaml:"port" default:"3306" env:"DATABASE_PORT" env-description:"accounting database port"`
	Username     string `yaml:"username" default:"jobstats" env:"DATABASE_USERNAME" env-description:"accounting database user"`
	PasswordPath string `yaml:"password_path" env:"DATABASE_PASSWORD_PATH" env-description:"path to a file holding the database password"`
	Name         string `yaml:"name" default:"jobstats" env:"DATABASE_NAME" env-description:"accounting database name"`
	Path         string `yaml:"path" env:"DATABASE_PATH" env-description:"sqlite database file, when dialect is sqlite"`

	password string // Set after reading PasswordPath
}

type Scores struct {
	// IdealScore rescales the combined total: a bucket whose mean dimension
	// score equals IdealScore reports a total of 100.
	IdealScore float64 `yaml:"ideal_score" default:"100" env:"IDEAL_SCORE" env-description:"score considered ideal when normalizing totals"`
}

type Refresh struct {
	Interval time.Duration `yaml:"interval" default:"10m" env:"REFRESH_INTERVAL" env-description:"interval between snapshot reloads"`
}

func NewSettings(configFiles ...string) (*Settings, error) {
	var cfg Settings
	for _, cfgFile := range configFiles {
		if cfgFile == "" {
			continue
		}

		if _, err := os.Stat(cfgFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("no config %s", cfgFile)
		}

		err := cleanenv.ReadConfig(cfgFile, &cfg)
		if err != nil {
			return nil, fmt.Errorf("config read %s: %w", cfgFile, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrap(err, "failed to validate settings")
	}

	if err := cfg.Database.readPassword(); err != nil {
		return nil, errors.Wrap(err, "failed to read database password")
	}

	return &cfg, nil
}

func (s *Settings) Validate() error {
	s.ClusterName = strings.TrimSpace(s.ClusterName)
	if s.ClusterName == "" {
		return errors.New("cluster name is empty")
	}

	if err := s.Server.Validate(); err != nil {
		return errors.Wrap(err, "server validation")
	}

	if err := s.Database.Validate(); err != nil {
		return errors.Wrap(err, "database validation")
	}

	if err := s.Scores.Validate(); err != nil {
		return errors.Wrap(err, "scores validation")
	}

	if err := s.Refresh.Validate(); err != nil {
		return errors.Wrap(err, "refresh validation")
	}

	return nil
}

func (s *Server) Validate() error {
	if s.Mode == "" {
		s.Mode = "http"
	}
	if s.Port == 0 {
		s.Port = 8080
	}
	return nil
}

func (d *Database) Validate() error {
	switch d.Dialect {
	case "mysql":
		if d.Host == "" {
			return errors.New("database host is empty")
		}
		if d.Username == "" {
			return errors.New("database username is empty")
		}
		if d.Name == "" {
			return errors.New("database name is empty")
		}
		if d.Port == 0 {
			d.Port = 3306
		}
	case "sqlite":
		if d.Path == "" {
			return errors.New("sqlite database path is empty")
		}
	default:
		return fmt.Errorf("unsupported database dialect %q", d.Dialect)
	}
	return nil
}

func (s *Scores) Validate() error {
	if s.IdealScore <= 0 {
		s.IdealScore = 100
	}
	return nil
}

func (r *Refresh) Validate() error {
	if r.Interval <= 0 {
		r.Interval = 10 * time.Minute
	}
	return nil
}

func (d *Database) readPassword() error {
	if d.Dialect != "mysql" || d.PasswordPath == "" {
		return nil
	}

	if _, err := os.Stat(d.PasswordPath); os.IsNotExist(err) {
		return fmt.Errorf("password file %s not found", d.PasswordPath)
	}
	password, err := os.ReadFile(d.PasswordPath)
	if err != nil {
		return errors.Wrap(err, "failed to read password file")
	}
	d.password = strings.TrimSpace(string(password))
	return nil
}

// DSN assembles the driver connection string for the configured dialect.
func (d *Database) DSN() string {
	if d.Dialect == "sqlite" {
		return d.Path
	}
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.password, d.Host, d.Port, d.Name)
}
