package cli

import (
	"errors"
	"os"

	"github.com/spf13/afero"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// AppFs is the filesystem config, shape and record files are read from.
var AppFs = afero.NewOsFs()

// Config holds settings shared by commands. Values come from flags, RQL_*
// environment variables and an optional .rql.yaml file, in that order.
type Config struct {
	Dialect   string
	Driver    string
	DSN       string
	Format    string
	Shape     string
	Table     string
	MaxValues int
}

// LoadConfig loads the configuration. path overrides the config file search.
// Flags named like config keys take precedence when set.
func LoadConfig(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	v.SetFs(AppFs)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".rql")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(home)
		}
	}

	v.SetEnvPrefix("RQL")
	v.AutomaticEnv()

	v.SetDefault("dialect", "sqlite")
	v.SetDefault("driver", "sqlite")
	v.SetDefault("format", "text")
	v.SetDefault("max_values", 0)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) || path != "" {
			return nil, err
		}
	}

	if flags != nil {
		for _, key := range []string{"dialect", "driver", "dsn", "table"} {
			if f := flags.Lookup(key); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, err
				}
			}
		}
	}

	return &Config{
		Dialect:   v.GetString("dialect"),
		Driver:    v.GetString("driver"),
		DSN:       v.GetString("dsn"),
		Format:    v.GetString("format"),
		Shape:     v.GetString("shape"),
		Table:     v.GetString("table"),
		MaxValues: v.GetInt("max_values"),
	}, nil
}
