// internal/config/config.go
package config

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/gustavocarneiro453/Projeto-de-Embarcados/internal/data"
)

type Config struct {
	MQTT    MQTT         `mapstructure:"mqtt"`
	Server  Server       `mapstructure:"server"`
	History History      `mapstructure:"history"`
	Routes  []TopicRoute `mapstructure:"routes"`
	Anomaly Anomaly      `mapstructure:"anomaly"`
	Log     Log          `mapstructure:"log"`
}

type MQTT struct {
	Broker       string `mapstructure:"broker"`
	Port         int    `mapstructure:"port"`
	ClientID     string `mapstructure:"client_id"`
	ControlTopic string `mapstructure:"control_topic"`
}

type Server struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type History struct {
	Size int `mapstructure:"size"`
}

// TopicRoute binds one subscribed topic to a metric. Different deployments
// track different topic sets, so the whole table is configuration.
type TopicRoute struct {
	Topic   string          `mapstructure:"topic"`
	Metric  string          `mapstructure:"metric"`
	Kind    data.MetricKind `mapstructure:"kind"`
	Axis    data.AxisPolicy `mapstructure:"axis"`
	Case    data.CasePolicy `mapstructure:"case"`
	Default string          `mapstructure:"default"` // initial value for status metrics
}

type Rule struct {
	Min float64 `mapstructure:"min"`
	Max float64 `mapstructure:"max"`
}

type Anomaly struct {
	Rules map[string]Rule `mapstructure:"rules"`
}

type Log struct {
	Level string `mapstructure:"level"`
}

// DefaultRoutes is the reference deployment's topic table: temperature is the
// primary metric, soil moisture repairs the axis when its own series runs
// ahead, humidity never touches it.
func DefaultRoutes() []TopicRoute {
	return []TopicRoute{
		{Topic: "sensor/temperature", Metric: "temperature", Kind: data.KindFloat, Axis: data.AxisAlways},
		{Topic: "sensor/humidity", Metric: "humidity", Kind: data.KindFloat, Axis: data.AxisNever},
		{Topic: "sensor/soil_moisture", Metric: "soil_moisture", Kind: data.KindInt, Axis: data.AxisCatchup},
		{Topic: "actuator/relay_status", Metric: "relay_status", Kind: data.KindStatus, Case: data.CaseUpper, Default: "OFF"},
		{Topic: "sensor/status", Metric: "status", Kind: data.KindStatus, Case: data.CaseLower, Default: "offline"},
	}
}

// Load reads config.yaml from path, falling back to defaults when the file is
// missing or partial. A missing file is not an error; a malformed one is.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yaml")
	v.AddConfigPath(path)
	v.AutomaticEnv() // read in environment variables that match

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// A missing file falls back to defaults; anything else is fatal.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if len(cfg.Routes) == 0 {
		cfg.Routes = DefaultRoutes()
	}
	for i := range cfg.Routes {
		if cfg.Routes[i].Kind == "" {
			cfg.Routes[i].Kind = data.KindFloat
		}
		if cfg.Routes[i].Axis == "" {
			cfg.Routes[i].Axis = data.AxisNever
		}
		if cfg.Routes[i].Case == "" {
			cfg.Routes[i].Case = data.CaseNone
		}
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mqtt.broker", "localhost")
	v.SetDefault("mqtt.port", 1883)
	v.SetDefault("mqtt.client_id", "dashboard-backend")
	v.SetDefault("mqtt.control_topic", "actuator/relay_control")
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 5000)
	v.SetDefault("history.size", 100)
	v.SetDefault("log.level", "info")
}
