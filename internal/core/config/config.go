package config

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// AppConfig holds the configuration for the application.
// Tags used:
// - mapstructure: used by viper to unmarshal
// - default: default value to set if missing
// - required: if "true", error if missing
type AppConfig struct {
	// Environment specifies the runtime environment (e.g., development, production).
	Environment string `mapstructure:"APP_ENV" default:"development"`
	// LogLevel defines the logging verbosity (e.g., debug, info, error).
	LogLevel string `mapstructure:"LOG_LEVEL" default:"info"`
	// ServerPort is the port where the server will listen.
	ServerPort int `mapstructure:"SERVER_PORT" default:"8080"`

	// Redis holds the document store connection.
	Redis RedisConfig `mapstructure:",squash"`

	// Auth holds the session token settings.
	Auth AuthConfig `mapstructure:",squash"`

	// Routing holds the routing/geocoding service settings.
	Routing RoutingConfig `mapstructure:",squash"`

	// Kafka holds the lifecycle event stream settings.
	Kafka KafkaConfig `mapstructure:",squash"`

	// Dispatch holds the dispatch engine tunables.
	Dispatch DispatchConfig `mapstructure:",squash"`

	// Pricing holds the linear pricing formula constants.
	Pricing PricingConfig `mapstructure:",squash"`
}

// RedisConfig holds the document store connection details.
type RedisConfig struct {
	// URL has the form redis://[:password@]host[:port][/database].
	URL string `mapstructure:"REDIS_URL" required:"true"`
}

// AuthConfig holds the secret used to verify session tokens.
type AuthConfig struct {
	JWTSecret string `mapstructure:"JWT_SECRET" required:"true"`
}

// RoutingConfig holds the routing service endpoint. An empty URL disables it
// and every route is estimated from straight-line distance.
type RoutingConfig struct {
	URL                 string `mapstructure:"ROUTING_URL"`
	TimeoutSeconds      int    `mapstructure:"ROUTING_TIMEOUT_SECONDS" default:"5"`
	GeocodeCacheMinutes int    `mapstructure:"ROUTING_GEOCODE_CACHE_MINUTES" default:"1440"`
}

// Timeout returns the per-request deadline of the routing client.
func (r RoutingConfig) Timeout() time.Duration {
	return time.Duration(r.TimeoutSeconds) * time.Second
}

// GeocodeCacheTTL returns how long a resolved address is remembered.
func (r RoutingConfig) GeocodeCacheTTL() time.Duration {
	return time.Duration(r.GeocodeCacheMinutes) * time.Minute
}

// KafkaConfig holds the broker list for lifecycle events. Brokers is a
// comma separated list; empty disables publishing.
type KafkaConfig struct {
	Brokers string `mapstructure:"KAFKA_BROKERS"`
	Topic   string `mapstructure:"KAFKA_TOPIC" default:"shipment-events"`
}

// BrokerList splits Brokers into addresses.
func (k KafkaConfig) BrokerList() []string {
	var out []string
	for _, b := range strings.Split(k.Brokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

// DispatchConfig holds the timing and threshold knobs of the engine.
type DispatchConfig struct {
	WindowSeconds         int     `mapstructure:"DISPATCH_WINDOW_SECONDS" default:"30"`
	EscalationThreshold   int     `mapstructure:"DISPATCH_ESCALATION_THRESHOLD" default:"3"`
	MaxNotifications      int     `mapstructure:"DISPATCH_MAX_NOTIFICATIONS" default:"3"`
	NotifyIntervalSeconds int     `mapstructure:"DISPATCH_NOTIFY_INTERVAL_SECONDS" default:"60"`
	OfferTTLHours         int     `mapstructure:"DISPATCH_OFFER_TTL_HOURS" default:"24"`
	SweepSeconds          int     `mapstructure:"DISPATCH_SWEEP_SECONDS" default:"15"`
	GeofenceMeters        float64 `mapstructure:"DISPATCH_GEOFENCE_METERS" default:"100"`
}

// Window returns the decision window length.
func (d DispatchConfig) Window() time.Duration {
	return time.Duration(d.WindowSeconds) * time.Second
}

// NotifyInterval returns the minimum spacing between two notifications of the same shipment.
func (d DispatchConfig) NotifyInterval() time.Duration {
	return time.Duration(d.NotifyIntervalSeconds) * time.Second
}

// OfferTTL returns how long a counter-offer stays acceptable.
func (d DispatchConfig) OfferTTL() time.Duration {
	return time.Duration(d.OfferTTLHours) * time.Hour
}

// SweepInterval returns the background matcher period.
func (d DispatchConfig) SweepInterval() time.Duration {
	return time.Duration(d.SweepSeconds) * time.Second
}

// PricingConfig holds the constants of the linear pricing formula.
type PricingConfig struct {
	MinPrice         float64 `mapstructure:"PRICING_MIN_PRICE" default:"5.0"`
	MinDistanceKm    float64 `mapstructure:"PRICING_MIN_DISTANCE_KM" default:"0.5"`
	PerKm            float64 `mapstructure:"PRICING_PER_KM" default:"3.5"`
	HeavyKg          float64 `mapstructure:"PRICING_HEAVY_KG" default:"5"`
	HeavySurcharge   float64 `mapstructure:"PRICING_HEAVY_SURCHARGE" default:"0.2"`
	FragileSurcharge float64 `mapstructure:"PRICING_FRAGILE_SURCHARGE" default:"0.15"`
	Currency         string  `mapstructure:"PRICING_CURRENCY" default:"BRL"`
}

// Load loads configuration from .env files and environment variables.
func Load(path string) (*AppConfig, error) {
	v := viper.New()

	v.AutomaticEnv()

	v.AddConfigPath(path)
	v.SetConfigName(".env")
	v.SetConfigType("env")

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config AppConfig

	if err := processTags(v, &config); err != nil {
		return nil, err
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode into struct: %w", err)
	}

	if err := validateRequired(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// processTags iterates over the struct fields, binds env keys and sets default values in Viper.
func processTags(v *viper.Viper, config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := processTags(v, val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		key := field.Tag.Get("mapstructure")
		defaultValue := field.Tag.Get("default")

		if key != "" {
			if err := v.BindEnv(key); err != nil {
				return fmt.Errorf("failed to bind %s: %w", key, err)
			}
		}

		if key != "" && defaultValue != "" {
			v.SetDefault(key, defaultValue)
		}
	}
	return nil
}

// validateRequired checks if fields marked as required have non-zero values.
func validateRequired(config interface{}) error {
	val := reflect.ValueOf(config)
	if val.Kind() == reflect.Ptr {
		val = val.Elem()
	}

	t := val.Type()

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)

		if field.Type.Kind() == reflect.Struct {
			if err := validateRequired(val.Field(i).Addr().Interface()); err != nil {
				return err
			}
			continue
		}

		if field.Tag.Get("required") == "true" && isZero(val.Field(i)) {
			return fmt.Errorf("missing required configuration: %s", field.Tag.Get("mapstructure"))
		}
	}
	return nil
}

// isZero checks if a reflect.Value is the zero value for its type.
func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.String:
		return v.String() == ""
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return v.Int() == 0
	case reflect.Float32, reflect.Float64:
		return v.Float() == 0
	case reflect.Bool:
		return !v.Bool()
	case reflect.Slice, reflect.Map:
		return v.Len() == 0
	default:
		return v.IsZero()
	}
}
