package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	serverConfig struct {
		Address         string
		Host            string
		DebugHost       string
		ReadTimeout     time.Duration
		WriteTimeout    time.Duration
		ShutdownTimeout time.Duration
	}

	databaseConfig struct {
		Engine        string // postgres | memory
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
	}

	slotsConfig struct {
		Timezone        string
		MissedThreshold int
	}

	campaignConfig struct {
		DefaultTemplate string
		Timezone        string
		StartHour       int
		AdminEmail      string
	}

	schedulerConfig struct {
		Enabled         bool
		RefreshSpec     string
		MonthlySpec     string
		ExpireSkipsSpec string
		SweepMissedSpec string
	}

	Config struct {
		Env              string // DEV (local; default), TEST, QA, PROD
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		RollbarToken     string
		SendgridApiKey   string
		FrontendBaseURL  string
		defaultFromEmail string

		Server    serverConfig
		Database  databaseConfig
		Slots     slotsConfig
		Campaign  campaignConfig
		Scheduler schedulerConfig
	}
)

func (c databaseConfig) Address() string {
	return net.JoinHostPort(c.Host, c.Port)
}

func (c slotsConfig) Location() *time.Location {
	return loadLocation(c.Timezone)
}

func (c campaignConfig) Location() *time.Location {
	return loadLocation(c.Timezone)
}

func (c *Config) DefaultFromEmail() mail.Address {
	return mail.Address{Name: c.AppName, Address: c.defaultFromEmail}
}

func loadLocation(name string) *time.Location {
	if loc, err := time.LoadLocation(name); err == nil {
		return loc
	}
	return time.UTC
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("build", "dev")
	v.SetDefault("appName", "Global Intercessors")
	v.SetDefault("secretKey", "k3y-9f!ze3#2r@i5mnt0r_btl*vv7qz8(ygx)sd-4ua$w0q")
	v.SetDefault("rollbarToken", "")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("defaultFromEmail", "noreply@localhost")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.debugHost", ":4000")
	v.SetDefault("server.readTimeout", 5*time.Second)
	v.SetDefault("server.writeTimeout", 5*time.Second)
	v.SetDefault("server.shutdownTimeout", 5*time.Second)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "intercessors")
	v.SetDefault("database.user", "intercessors")
	v.SetDefault("database.password", "intercessors")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)

	v.SetDefault("slots.timezone", "UTC")
	v.SetDefault("slots.missedThreshold", 3)

	v.SetDefault("campaign.defaultTemplate", "Monthly 3-Day Fast")
	v.SetDefault("campaign.timezone", "UTC")
	v.SetDefault("campaign.startHour", 18)
	v.SetDefault("campaign.adminEmail", "admin@localhost")

	v.SetDefault("scheduler.enabled", false)
	v.SetDefault("scheduler.refreshSpec", "@hourly")
	v.SetDefault("scheduler.monthlySpec", "5 0 1 * *")
	v.SetDefault("scheduler.expireSkipsSpec", "10 0 * * *")
	v.SetDefault("scheduler.sweepMissedSpec", "30 0 * * *")
}

// loadDotEnv loads config/.env.<env> if it exists (ignored if it does not).
func loadDotEnv(env string) {
	dir := os.Getenv("CONFIG_DIR")
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			log.Fatalf("config.os.Getwd(): %v", err)
		}
		dir = filepath.Join(wd, "config")
	}

	dotEnvPath := filepath.Join(dir, ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
}

func NewConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
		v.SetDefault("database.engine", "memory")
	}

	loadDotEnv(env)
	v.SetEnvPrefix(env)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	conf := &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}

	conf.Server = serverConfig{
		Address:         v.GetString("server.address"),
		Host:            v.GetString("server.host"),
		DebugHost:       v.GetString("server.debugHost"),
		ReadTimeout:     v.GetDuration("server.readTimeout"),
		WriteTimeout:    v.GetDuration("server.writeTimeout"),
		ShutdownTimeout: v.GetDuration("server.shutdownTimeout"),
	}
	conf.Database = databaseConfig{
		Engine:        v.GetString("database.engine"),
		Host:          v.GetString("database.host"),
		Port:          v.GetString("database.port"),
		Name:          v.GetString("database.name"),
		User:          v.GetString("database.user"),
		Password:      v.GetString("database.password"),
		AdminUser:     v.GetString("database.adminUser"),
		AdminPassword: v.GetString("database.adminPassword"),
		DisableTLS:    v.GetBool("database.disableTLS"),
	}
	conf.Slots = slotsConfig{
		Timezone:        v.GetString("slots.timezone"),
		MissedThreshold: v.GetInt("slots.missedThreshold"),
	}
	conf.Campaign = campaignConfig{
		DefaultTemplate: v.GetString("campaign.defaultTemplate"),
		Timezone:        v.GetString("campaign.timezone"),
		StartHour:       v.GetInt("campaign.startHour"),
		AdminEmail:      v.GetString("campaign.adminEmail"),
	}
	conf.Scheduler = schedulerConfig{
		Enabled:         v.GetBool("scheduler.enabled"),
		RefreshSpec:     v.GetString("scheduler.refreshSpec"),
		MonthlySpec:     v.GetString("scheduler.monthlySpec"),
		ExpireSkipsSpec: v.GetString("scheduler.expireSkipsSpec"),
		SweepMissedSpec: v.GetString("scheduler.sweepMissedSpec"),
	}
	return conf
}

// NewTestConfig returns the defaults used by tests: in-memory engine, no output, no external services.
func NewTestConfig() *Config {
	v := viper.New()
	v.SetTypeByDefaultValue(true)
	setDefaults(v)
	v.Set("testMode", true)
	v.Set("database.engine", "memory")

	conf := &Config{
		Env:              "TEST",
		Build:            "test",
		Debug:            false,
		TestMode:         true,
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
	}
	conf.Server.ShutdownTimeout = v.GetDuration("server.shutdownTimeout")
	conf.Database.Engine = v.GetString("database.engine")
	conf.Slots = slotsConfig{Timezone: "UTC", MissedThreshold: v.GetInt("slots.missedThreshold")}
	conf.Campaign = campaignConfig{
		DefaultTemplate: v.GetString("campaign.defaultTemplate"),
		Timezone:        "UTC",
		StartHour:       v.GetInt("campaign.startHour"),
		AdminEmail:      v.GetString("campaign.adminEmail"),
	}
	conf.Scheduler = schedulerConfig{
		RefreshSpec:     v.GetString("scheduler.refreshSpec"),
		MonthlySpec:     v.GetString("scheduler.monthlySpec"),
		ExpireSkipsSpec: v.GetString("scheduler.expireSkipsSpec"),
		SweepMissedSpec: v.GetString("scheduler.sweepMissedSpec"),
	}
	return conf
}
