// Package config manages application configuration from config.yaml,
// BOT_* environment variables, and default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Config defines the application configuration. Values can be set via
// environment variables prefixed with BOT_ (e.g., BOT_TELEGRAM_TOKEN) or
// through config.yaml.
type Config struct {
	Log       LogConfig       `mapstructure:"log"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Forwarder ForwarderConfig `mapstructure:"forwarder"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  Messages        `mapstructure:"messages"`
}

// LogConfig controls log verbosity and output format.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// TelegramConfig holds Telegram API settings.
type TelegramConfig struct {
	Token string `mapstructure:"token" validate:"required"`
}

// DatabaseConfig holds SQLite settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// ForwarderConfig tunes the dispatch loop.
type ForwarderConfig struct {
	// MaxParallelSends bounds the per-event fan-out across tenants.
	// A value of 1 processes tenants sequentially.
	MaxParallelSends int `mapstructure:"max_parallel_sends" validate:"min=1,max=64"`
}

// SchedulerConfig holds the scheduled task table, keyed by task name.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks"`

	// ChannelRetentionDays controls how long an unseen channel stays in
	// the channel directory before the prune task removes it.
	ChannelRetentionDays int `mapstructure:"channel_retention_days" validate:"min=1"`
}

// TaskConfig enables a scheduled task and sets its cron schedule.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule"`
}

// Messages holds all user-facing reply strings.
type Messages struct {
	Welcome            string `mapstructure:"welcome"              validate:"required"`
	NotRegistered      string `mapstructure:"not_registered"       validate:"required"`
	AlreadyRegistered  string `mapstructure:"already_registered"   validate:"required"`
	Registered         string `mapstructure:"registered"           validate:"required"`
	NoChannels         string `mapstructure:"no_channels"          validate:"required"`
	ChooseChannel      string `mapstructure:"choose_channel"       validate:"required"`
	ChannelSet         string `mapstructure:"channel_set"          validate:"required"`
	InvalidChoice      string `mapstructure:"invalid_choice"       validate:"required"`
	ChoiceOutOfRange   string `mapstructure:"choice_out_of_range"  validate:"required"`
	FilterAdded        string `mapstructure:"filter_added"         validate:"required"`
	FilterRemoved      string `mapstructure:"filter_removed"       validate:"required"`
	FilterNotFound     string `mapstructure:"filter_not_found"     validate:"required"`
	FilterUsage        string `mapstructure:"filter_usage"         validate:"required"`
	FileFilterUsage    string `mapstructure:"file_filter_usage"    validate:"required"`
	ForwardingStarted  string `mapstructure:"forwarding_started"   validate:"required"`
	ForwardingStopped  string `mapstructure:"forwarding_stopped"   validate:"required"`
	ForwardingNotReady string `mapstructure:"forwarding_not_ready" validate:"required"`
	GeneralError       string `mapstructure:"general_error"        validate:"required"`
}

// Load reads configuration from defaults, the given config file (optional),
// and BOT_* environment variables, then validates the result.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("BOT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read config file %q: %w", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", true)

	v.SetDefault("database.path", "relaybot.db")

	v.SetDefault("forwarder.max_parallel_sends", 4)

	v.SetDefault("scheduler.channel_retention_days", 30)
	v.SetDefault("scheduler.tasks.sql_maintenance.enabled", true)
	v.SetDefault("scheduler.tasks.sql_maintenance.schedule", "0 0 4 * * *")
	v.SetDefault("scheduler.tasks.channel_prune.enabled", false)
	v.SetDefault("scheduler.tasks.channel_prune.schedule", "0 30 4 * * *")

	v.SetDefault("messages.welcome", "Hi! I relay messages between your channels.\n\n"+
		"/register - create your relay configuration\n"+
		"/setsource - choose the channel to relay from\n"+
		"/setdestination - choose the channel to relay to\n"+
		"/addfilter old new - replace text before relaying\n"+
		"/delfilter old - remove a text replacement\n"+
		"/addfilefilter old new - rename a file before relaying\n"+
		"/delfilefilter old - remove a file rename\n"+
		"/startforward - enable relaying\n"+
		"/stopforward - disable relaying\n"+
		"/status - show your configuration")
	v.SetDefault("messages.not_registered", "You are not registered yet. Send /register first.")
	v.SetDefault("messages.already_registered", "You are already registered.")
	v.SetDefault("messages.registered", "Registration complete. Use /setsource to pick a source channel.")
	v.SetDefault("messages.no_channels", "I don't know any of your channels yet. Add me to a channel and post a message there first.")
	v.SetDefault("messages.choose_channel", "Reply with the number of the channel:")
	v.SetDefault("messages.channel_set", "Channel set: %s")
	v.SetDefault("messages.invalid_choice", "Please send a number from the list. Run the command again to retry.")
	v.SetDefault("messages.choice_out_of_range", "That number is not on the list. Run the command again to retry.")
	v.SetDefault("messages.filter_added", "Filter added: %s -> %s")
	v.SetDefault("messages.filter_removed", "Filter removed: %s")
	v.SetDefault("messages.filter_not_found", "No such filter: %s")
	v.SetDefault("messages.filter_usage", "Usage: /addfilter old new")
	v.SetDefault("messages.file_filter_usage", "Usage: /addfilefilter oldname newname")
	v.SetDefault("messages.forwarding_started", "Forwarding enabled.")
	v.SetDefault("messages.forwarding_stopped", "Forwarding disabled.")
	v.SetDefault("messages.forwarding_not_ready", "Set a source and destination channel before enabling forwarding.")
	v.SetDefault("messages.general_error", "Something went wrong. Please try again later.")
}
