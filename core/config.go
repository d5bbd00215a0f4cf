package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Host                      string
		Address                   string
		DebugHost                 string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
		SessionCookieName         string
		SessionTTL                time.Duration
	}

	DatabaseConfig struct {
		Engine        string
		Host          string
		Port          int
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	RedisConfig struct {
		Address  string
		Password string
		DB       int
	}

	EmailConfig struct {
		Backend             string // console | sendgrid | ses
		SendgridApiKey      string
		SESRegion           string
		MaterialsOrderEmail string
	}

	ApplicationConfig struct {
		ExpiryDelta time.Duration
	}

	PostcodeConfig struct {
		BaseURL string
		ApiKey  string
		Timeout time.Duration
	}

	Config struct {
		AppName                   string
		Build                     string
		Env                       string
		Debug                     bool
		TestMode                  bool
		SecretKey                 string
		FrontendBaseURL           string
		DefaultFromEmailAddr      string
		PasswordResetTimeoutDelta time.Duration
		RollbarToken              string

		Server      ServerConfig
		Database    DatabaseConfig
		Redis       RedisConfig
		Email       EmailConfig
		Application ApplicationConfig
		Postcode    PostcodeConfig
	}
)

func (c DatabaseConfig) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(c.DefaultFromEmailAddr)
	if err != nil {
		return mail.Address{Name: c.AppName, Address: c.DefaultFromEmailAddr}
	}
	if addr.Name == "" {
		addr.Name = c.AppName
	}
	return *addr
}

// NewConfig loads the configuration from defaults, the optional `config/.env.<env>` file and the environment.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("debug", true)
	v.SetDefault("appName", "The National Lottery Community Fund")
	v.SetDefault("build", "dev")
	v.SetDefault("secretKey", "wsq4-cyt)zgh$+91=pp&uoxh2(t!x)#*c2(#yg4h^$cegm2qwe")
	v.SetDefault("frontendBaseURL", "http://localhost:8000")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("passwordResetTimeoutDelta", 3*24*time.Hour)
	v.SetDefault("rollbarToken", "")

	v.SetDefault("serverHost", "localhost")
	v.SetDefault("serverAddress", ":8000")
	v.SetDefault("serverDebugHost", ":4000")
	v.SetDefault("serverShutdownTimeout", 5*time.Second)
	v.SetDefault("jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("jwtRefreshExpirationDelta", 4*time.Hour)
	v.SetDefault("sessionCookieName", "blf-session")
	v.SetDefault("sessionTTL", 24*time.Hour)

	v.SetDefault("dbEngine", "postgres")
	v.SetDefault("dbHost", "localhost")
	v.SetDefault("dbPort", 5432)
	v.SetDefault("dbName", "funding")
	v.SetDefault("dbUser", "funding")
	v.SetDefault("dbPassword", "funding")
	v.SetDefault("dbAdminUser", "")
	v.SetDefault("dbAdminPassword", "")
	v.SetDefault("dbDisableTLS", true)

	v.SetDefault("redisAddress", "localhost:6379")
	v.SetDefault("redisPassword", "")
	v.SetDefault("redisDB", 0)

	v.SetDefault("emailBackend", "console")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("sesRegion", "eu-west-2")
	v.SetDefault("materialsOrderEmail", "materials@localhost")

	v.SetDefault("applicationExpiryDelta", 90*24*time.Hour)

	v.SetDefault("postcodeBaseURL", "https://api.getAddress.io")
	v.SetDefault("postcodeApiKey", "")
	v.SetDefault("postcodeTimeout", 3*time.Second)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}
	if env == "TEST" {
		v.SetDefault("testMode", true)
	} else {
		v.SetDefault("testMode", false)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join("config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.AutomaticEnv()

	return &Config{
		AppName:                   v.GetString("appName"),
		Build:                     v.GetString("build"),
		Env:                       env,
		Debug:                     v.GetBool("debug"),
		TestMode:                  v.GetBool("testMode"),
		SecretKey:                 v.GetString("secretKey"),
		FrontendBaseURL:           v.GetString("frontendBaseURL"),
		DefaultFromEmailAddr:      v.GetString("defaultFromEmail"),
		PasswordResetTimeoutDelta: v.GetDuration("passwordResetTimeoutDelta"),
		RollbarToken:              v.GetString("rollbarToken"),
		Server: ServerConfig{
			Host:                      v.GetString("serverHost"),
			Address:                   v.GetString("serverAddress"),
			DebugHost:                 v.GetString("serverDebugHost"),
			ShutdownTimeout:           v.GetDuration("serverShutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("jwtRefreshExpirationDelta"),
			SessionCookieName:         v.GetString("sessionCookieName"),
			SessionTTL:                v.GetDuration("sessionTTL"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("dbEngine"),
			Host:          v.GetString("dbHost"),
			Port:          v.GetInt("dbPort"),
			Name:          v.GetString("dbName"),
			User:          v.GetString("dbUser"),
			Password:      v.GetString("dbPassword"),
			AdminUser:     v.GetString("dbAdminUser"),
			AdminPassword: v.GetString("dbAdminPassword"),
			DisableTLS:    v.GetBool("dbDisableTLS"),
		},
		Redis: RedisConfig{
			Address:  v.GetString("redisAddress"),
			Password: v.GetString("redisPassword"),
			DB:       v.GetInt("redisDB"),
		},
		Email: EmailConfig{
			Backend:             v.GetString("emailBackend"),
			SendgridApiKey:      v.GetString("sendgridApiKey"),
			SESRegion:           v.GetString("sesRegion"),
			MaterialsOrderEmail: v.GetString("materialsOrderEmail"),
		},
		Application: ApplicationConfig{
			ExpiryDelta: v.GetDuration("applicationExpiryDelta"),
		},
		Postcode: PostcodeConfig{
			BaseURL: v.GetString("postcodeBaseURL"),
			ApiKey:  v.GetString("postcodeApiKey"),
			Timeout: v.GetDuration("postcodeTimeout"),
		},
	}
}

// NewTestConfig returns a Config suitable for tests, without touching the environment.
func NewTestConfig() *Config {
	return &Config{
		AppName:                   "Funding",
		Build:                     "test",
		Env:                       "TEST",
		Debug:                     false,
		TestMode:                  true,
		SecretKey:                 "secret",
		FrontendBaseURL:           "http://localhost:8000",
		DefaultFromEmailAddr:      "noreply@localhost",
		PasswordResetTimeoutDelta: 3 * 24 * time.Hour,
		Server: ServerConfig{
			Host:                      "localhost",
			JWTExpirationDelta:        10 * time.Minute,
			JWTRefreshExpirationDelta: 4 * time.Hour,
			SessionCookieName:         "blf-session",
			SessionTTL:                time.Hour,
		},
		Email: EmailConfig{
			Backend:             "console",
			MaterialsOrderEmail: "materials@localhost",
		},
		Application: ApplicationConfig{
			ExpiryDelta: 90 * 24 * time.Hour,
		},
	}
}
