package config

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// AddConfigFlag registers the --config override on the root command.
func AddConfigFlag(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default ~/.config/filegrid/config.yaml)")
}

// InitConfig loads configuration from ~/.config/filegrid/config.yaml and
// the FILEGRID_* environment, with sensible defaults for everything.
func InitConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		configDir := filepath.Join(home, ".config", "filegrid")
		viper.AddConfigPath(configDir)
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.AutomaticEnv()
	viper.SetEnvPrefix("FILEGRID")

	viper.SetDefault("indent", 2)
	viper.SetDefault("upload.addr", "localhost:8316")
	viper.SetDefault("upload.base_path", "/files/")
	viper.SetDefault("upload.dir", filepath.Join(os.TempDir(), "filegrid-uploads"))
	viper.SetDefault("upload.dest_dir", filepath.Join(os.Getenv("HOME"), ".local", "share", "filegrid", "files"))
	viper.SetDefault("upload.max_size", int64(0))

	if err := viper.ReadInConfig(); err == nil {
		// Config file is optional, silence is fine either way.
	}
}
