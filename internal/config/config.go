package config

import (
	"strings"
	"time"

	homedir "github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/spf13/viper"
)

var (
	ErrEmptyVIN       = errors.New("authorized vin is empty")
	ErrEmptyServerURL = errors.New("registration server url is empty")
)

// Config carries the embedded vehicle identity and all network
// configuration: the registration server, the controller split across
// two microcontrollers, blind-spot sensors and cameras
type Config struct {
	AuthorizedVIN  string        `mapstructure:"authorized_vin"`
	NetworkSSID    string        `mapstructure:"network_ssid"`
	ServerURL      string        `mapstructure:"server_url"`
	ListenAddr     string        `mapstructure:"listen_addr"`
	ControlURL     string        `mapstructure:"control_url"`
	ACURL          string        `mapstructure:"ac_url"`
	LeftSensorURL  string        `mapstructure:"left_sensor_url"`
	RightSensorURL string        `mapstructure:"right_sensor_url"`
	CameraURLs     []string      `mapstructure:"camera_urls"`
	CheckInterval  time.Duration `mapstructure:"check_interval"`
	SensorInterval time.Duration `mapstructure:"sensor_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	DataDir        string        `mapstructure:"data_dir"`
	LogDir         string        `mapstructure:"log_dir"`
	Debug          bool          `mapstructure:"debug"`
}

// Default returns the configuration matching the deployed rig
func Default() Config {
	return Config{
		AuthorizedVIN:  "EE90-9073699",
		NetworkSSID:    "HUAWEI-E5330-4D63",
		ServerURL:      "http://192.168.8.101:5000",
		ListenAddr:     ":5000",
		ControlURL:     "http://192.168.8.220",
		ACURL:          "http://192.168.8.221",
		LeftSensorURL:  "http://192.168.8.226",
		RightSensorURL: "http://192.168.8.227",
		CheckInterval:  3 * time.Second,
		SensorInterval: 500 * time.Millisecond,
		RequestTimeout: 5 * time.Second,
	}
}

// Validate sanity-checks the loaded configuration
func (c Config) Validate() error {
	if strings.TrimSpace(c.AuthorizedVIN) == "" {
		return ErrEmptyVIN
	}

	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrEmptyServerURL
	}

	return nil
}

// Load reads configuration from file/environment over the defaults
func Load(configFile string) (Config, error) {
	c := Default()

	home, err := homedir.Dir()
	if err != nil {
		return c, errors.Wrap(err, "failed to locate home directory")
	}

	if c.DataDir == "" {
		c.DataDir = home + "/.vehictrl"
	}

	v := viper.New()
	v.SetConfigType("yaml")

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("vehictrl")
		v.AddConfigPath(home)
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("vehictrl")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// a missing config file falls back to defaults
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return c, errors.Wrap(err, "failed to read config")
		}
	}

	if err := v.Unmarshal(&c); err != nil {
		return c, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := c.Validate(); err != nil {
		return c, err
	}

	return c, nil
}
