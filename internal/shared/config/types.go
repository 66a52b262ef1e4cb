package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	Timezone       string   `mapstructure:"timezone"`
	BaseURL        string   `mapstructure:"base_url"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	FrontendURL    string   `mapstructure:"frontend_url"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type JWTConfig struct {
	Secret           string `mapstructure:"secret"`
	AccessExpMinutes int    `mapstructure:"access_exp_minutes"`
}

type AuthConfig struct {
	JWT JWTConfig `mapstructure:"jwt"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`
	FromAddress  string `mapstructure:"from_address"`
	FromName     string `mapstructure:"from_name"`
}

// VNPayConfig holds VNPay merchant credentials. HashSecret must never be
// logged or echoed in responses.
type VNPayConfig struct {
	TmnCode    string `mapstructure:"tmn_code"`
	HashSecret string `mapstructure:"hash_secret"`
	URL        string `mapstructure:"url"`
	ReturnURL  string `mapstructure:"return_url"`
}

// ZaloPayConfig holds ZaloPay application credentials. Key1 signs outgoing
// orders, Key2 verifies callback MACs.
type ZaloPayConfig struct {
	AppID       string `mapstructure:"app_id"`
	Key1        string `mapstructure:"key1"`
	Key2        string `mapstructure:"key2"`
	APIURL      string `mapstructure:"api_url"`
	CallbackURL string `mapstructure:"callback_url"`
}

type PaymentConfig struct {
	VNPay   VNPayConfig   `mapstructure:"vnpay"`
	ZaloPay ZaloPayConfig `mapstructure:"zalopay"`
	// GatewayTimeoutSeconds bounds outbound calls to gateway APIs.
	GatewayTimeoutSeconds int `mapstructure:"gateway_timeout_seconds"`
}

type SubscriptionConfig struct {
	// ExpiryIntervalHours is the interval between expiry scheduler runs.
	ExpiryIntervalHours int `mapstructure:"expiry_interval_hours"`
	// TierSeedPath is the YAML file with the tier reference data.
	TierSeedPath string `mapstructure:"tier_seed_path"`
	// PremiumCacheTTLMinutes bounds how long a cached premium status is served.
	PremiumCacheTTLMinutes int `mapstructure:"premium_cache_ttl_minutes"`
}
