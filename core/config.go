package core

import (
	"log"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address         string        `mapstructure:"address"`
		Host            string        `mapstructure:"host"`
		DebugHost       string        `mapstructure:"debugHost"`
		StaticDir       string        `mapstructure:"staticDir"`
		ShutdownTimeout time.Duration `mapstructure:"shutdownTimeout"`
		DisableReqLogs  bool          `mapstructure:"disableReqLogs"`
	}

	DatabaseConfig struct {
		Engine      string        `mapstructure:"engine"` // sqlite3 | postgres
		Path        string        `mapstructure:"path"`   // sqlite3 only
		BusyTimeout time.Duration `mapstructure:"busyTimeout"`

		// postgres only
		Host       string `mapstructure:"host"`
		Port       string `mapstructure:"port"`
		Name       string `mapstructure:"name"`
		User       string `mapstructure:"user"`
		Password   string `mapstructure:"password"`
		DisableTLS bool   `mapstructure:"disableTLS"`
	}

	SessionConfig struct {
		Backend       string        `mapstructure:"backend"` // disk | memory | redis | valkey
		Dir           string        `mapstructure:"dir"`
		CookieName    string        `mapstructure:"cookieName"`
		MaxAge        time.Duration `mapstructure:"maxAge"`
		RedisAddr     string        `mapstructure:"redisAddr"`
		RedisPassword string        `mapstructure:"redisPassword"`
		ValkeyAddr    string        `mapstructure:"valkeyAddr"`
	}

	AuthConfig struct {
		RecoveryTokenTTL time.Duration `mapstructure:"recoveryTokenTTL"`
		// EmailDomains restricts tutor emails to these domains. Empty disables the check.
		EmailDomains []string `mapstructure:"emailDomains"`
	}

	Config struct {
		Env              string `mapstructure:"env"`
		Build            string `mapstructure:"build"`
		AppName          string `mapstructure:"appName"`
		Debug            bool   `mapstructure:"debug"`
		TestMode         bool   `mapstructure:"testMode"`
		SecretKey        string `mapstructure:"secretKey"`
		WorkDir          string `mapstructure:"workDir"`
		DefaultFromEmail string `mapstructure:"defaultFromEmail"`
		SendgridApiKey   string `mapstructure:"sendgridApiKey"`
		RollbarToken     string `mapstructure:"rollbarToken"`

		Server   ServerConfig   `mapstructure:"server"`
		Database DatabaseConfig `mapstructure:"database"`
		Session  SessionConfig  `mapstructure:"session"`
		Auth     AuthConfig     `mapstructure:"auth"`
	}
)

// NewConfig loads the configuration for the environment named by $ENV (DEV by default).
// Values come from defaults, then config/.env.<env> if it exists, then <ENV>_ prefixed env vars.
func NewConfig() *Config {
	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	if env == "" {
		env = "DEV"
	}

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd: %v", err)
	}

	v := viper.New()
	v.SetTypeByDefaultValue(true)

	// defaults
	v.SetDefault("env", env)
	v.SetDefault("build", "develop")
	v.SetDefault("appName", "Ajolotes")
	v.SetDefault("debug", env == "DEV" || env == "TEST")
	v.SetDefault("testMode", env == "TEST")
	v.SetDefault("secretKey", "k2v8-ajo)lote$+57=oso&perro2(h!x)#*borrego(#yg4h^$cegm2emy")
	v.SetDefault("workDir", wd)
	v.SetDefault("defaultFromEmail", "Ajolotes <noreply@localhost>")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8080")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", "localhost:4000")
	v.SetDefault("server.staticDir", filepath.Join(wd, "static"))
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.disableReqLogs", false)

	v.SetDefault("database.engine", "sqlite3")
	v.SetDefault("database.path", filepath.Join(wd, "registro.db"))
	v.SetDefault("database.busyTimeout", 10*time.Second)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ajolotes")
	v.SetDefault("database.user", "")
	v.SetDefault("database.password", "")
	v.SetDefault("database.disableTLS", false)

	v.SetDefault("session.backend", "disk")
	v.SetDefault("session.dir", filepath.Join(wd, "sessions"))
	v.SetDefault("session.cookieName", "ajolotes_session")
	v.SetDefault("session.maxAge", 24*time.Hour)
	v.SetDefault("session.redisAddr", "")
	v.SetDefault("session.redisPassword", "")
	v.SetDefault("session.valkeyAddr", "")

	v.SetDefault("auth.recoveryTokenTTL", 15*time.Minute)
	v.SetDefault("auth.emailDomains", []string{})

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}

	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := new(Config)
	if err := v.Unmarshal(conf); err != nil {
		log.Fatalf("config.Unmarshal: %v", err)
	}
	return conf
}

// NewTestConfig returns a Config suitable for tests: debug off, in-memory sessions and a throwaway secret.
func NewTestConfig(workDir string) *Config {
	return &Config{
		Env:              "TEST",
		Build:            "test",
		AppName:          "Ajolotes",
		TestMode:         true,
		SecretKey:        "secret",
		WorkDir:          workDir,
		DefaultFromEmail: "Ajolotes <noreply@localhost>",
		Server: ServerConfig{
			Address:         ":0",
			Host:            "localhost",
			StaticDir:       filepath.Join(workDir, "static"),
			ShutdownTimeout: time.Second,
			DisableReqLogs:  true,
		},
		Database: DatabaseConfig{
			Engine:      "sqlite3",
			Path:        filepath.Join(workDir, "registro.db"),
			BusyTimeout: 10 * time.Second,
		},
		Session: SessionConfig{
			Backend:    "memory",
			Dir:        filepath.Join(workDir, "sessions"),
			CookieName: "ajolotes_session",
			MaxAge:     time.Hour,
		},
		Auth: AuthConfig{
			RecoveryTokenTTL: 15 * time.Minute,
		},
	}
}

// FromEmail parses DefaultFromEmail, falling back to a bare noreply address.
func (c *Config) FromEmail() mail.Address {
	if addr, err := mail.ParseAddress(c.DefaultFromEmail); err == nil {
		return *addr
	}
	return mail.Address{Name: c.AppName, Address: "noreply@" + c.Server.Host}
}

// BaseURL is the absolute URL of the site, used in links sent by email.
func (c *Config) BaseURL() string {
	return "http://" + c.Server.Host
}
