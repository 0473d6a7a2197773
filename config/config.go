// Package config loads the options shared by the terminal client and the engine
// server. Values come from flags, TETRIS_* environment variables and an optional
// config.yaml in the user config directory, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/kirsle/configdir"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	appName    = "classictetris"
	envPrefix  = "TETRIS"
	configName = "config"
	defaultLog = "tetris.log"

	DefaultListen = ":9000"
)

type Options struct {
	NoGhost bool
	Sound   bool
	Seed    uint64
	Address string
	Name    string
	Listen  string
	LogFile string
	Debug   bool
}

// Dir is the directory holding config.yaml and the client log.
func Dir() string {
	return configdir.LocalConfig(appName)
}

// ClientFlags registers the terminal client flags.
func ClientFlags(fs *pflag.FlagSet) {
	commonFlags(fs)
	fs.Bool("no-ghost", false, "hide the landing preview of the current tetromino")
	fs.Bool("sound", true, "ring the terminal bell on line clears and game over")
	fs.String("address", "", "play on a remote engine server instead of locally, e.g. localhost:9000")
	fs.String("name", "", "player name shown next to the board")
	fs.String("log-file", "", "log file, defaults to "+defaultLog+" in the config directory")
}

// ServerFlags registers the engine server flags.
func ServerFlags(fs *pflag.FlagSet) {
	commonFlags(fs)
	fs.String("listen", DefaultListen, "address the gRPC server listens on")
}

// SessionsFlags registers the flags of the command listing the games hosted by a
// server.
func SessionsFlags(fs *pflag.FlagSet) {
	commonFlags(fs)
	fs.String("address", "localhost"+DefaultListen, "engine server address")
}

func commonFlags(fs *pflag.FlagSet) {
	fs.Uint64("seed", 0, "seed for the tetromino sequence, 0 picks a random one")
	fs.Bool("debug", false, "log debug messages")
	fs.String("config-path", "", "directory holding config.yaml")
}

// Load reads the options. fs may be nil, then only the environment and the config
// file are used.
func Load(fs *pflag.FlagSet) (*Options, error) {
	v := viper.New()
	v.SetDefault("sound", true)
	v.SetDefault("listen", DefaultListen)

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if fs != nil {
		if err := v.BindPFlags(fs); err != nil {
			return nil, fmt.Errorf("unable to bind flags: %w", err)
		}
	}

	dir := v.GetString("config-path")
	if dir == "" {
		dir = Dir()
	}
	v.SetConfigName(configName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("unable to read config: %w", err)
		}
	}

	o := &Options{
		NoGhost: v.GetBool("no-ghost"),
		Sound:   v.GetBool("sound"),
		Seed:    v.GetUint64("seed"),
		Address: v.GetString("address"),
		Name:    v.GetString("name"),
		Listen:  v.GetString("listen"),
		LogFile: v.GetString("log-file"),
		Debug:   v.GetBool("debug"),
	}
	if o.LogFile == "" {
		o.LogFile = filepath.Join(dir, defaultLog)
	}
	return o, nil
}

// EnsureDir creates the directory of the log file.
func (o *Options) EnsureDir() error {
	if err := configdir.MakePath(filepath.Dir(o.LogFile)); err != nil {
		return fmt.Errorf("unable to create %s: %w", filepath.Dir(o.LogFile), err)
	}
	return nil
}
