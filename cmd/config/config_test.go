package config

import (
	"testing"

	"github.com/spf13/viper"
)

func TestInitConfigDefaults(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	viper.Reset()

	InitConfig()

	if got := viper.GetInt("indent"); got != 2 {
		t.Errorf("indent default = %d, want 2", got)
	}
	if got := viper.GetString("upload.addr"); got != "localhost:8316" {
		t.Errorf("upload.addr default = %q, want localhost:8316", got)
	}
	if got := viper.GetString("upload.base_path"); got != "/files/" {
		t.Errorf("upload.base_path default = %q, want /files/", got)
	}
	if viper.GetString("upload.dir") == "" {
		t.Error("upload.dir default is empty")
	}
	if got := viper.GetInt64("upload.max_size"); got != 0 {
		t.Errorf("upload.max_size default = %d, want 0", got)
	}
}

func TestInitConfigEnvOverride(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv("FILEGRID_INDENT", "4")
	viper.Reset()

	InitConfig()

	if got := viper.GetInt("indent"); got != 4 {
		t.Errorf("indent = %d, want 4 from FILEGRID_INDENT", got)
	}
}
