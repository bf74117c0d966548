package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/smith3v/tg-word-quiz/pkg/logger"
	"github.com/smith3v/tg-word-quiz/pkg/quiz"
	"github.com/spf13/pflag"
)

const EnvPrefix = "TGQUIZ_"

type Config struct {
	Database DatabaseConfig `koanf:"database"`
	Telegram TelegramConfig `koanf:"telegram"`
	Logging  LoggingConfig  `koanf:"logging"`
	Quiz     QuizConfig     `koanf:"quiz"`
	Results  ResultsConfig  `koanf:"results"`
}

type DatabaseConfig struct {
	Driver   string `koanf:"driver" validate:"oneof=postgres sqlite"`
	Host     string `koanf:"host" validate:"required_if=Driver postgres"`
	User     string `koanf:"user"`
	Password string `koanf:"password"`
	DBName   string `koanf:"dbname" validate:"required_if=Driver postgres"`
	Port     int    `koanf:"port" validate:"gte=0,lte=65535"`
	SSLMode  string `koanf:"sslmode"`
	Path     string `koanf:"path" validate:"required_if=Driver sqlite"`
}

type TelegramConfig struct {
	Token string `koanf:"token" validate:"required"`
}

type LoggingConfig struct {
	Level     string `koanf:"level" validate:"omitempty,oneof=debug info warn warning error"`
	File      string `koanf:"file"`
	GormLevel string `koanf:"gorm_level" validate:"omitempty,oneof=silent error warn info"`
}

type QuizConfig struct {
	HintDelay        time.Duration `koanf:"hint_delay" validate:"gte=0"`
	Timeout          time.Duration `koanf:"timeout" validate:"gte=0"`
	AnswerLength     int           `koanf:"answer_length" validate:"gte=0,lte=16"`
	RemoveDuplicates bool          `koanf:"remove_duplicates"`
	TickInterval     time.Duration `koanf:"tick_interval" validate:"gt=0"`
}

type ResultsConfig struct {
	Enabled bool `koanf:"enabled"`
}

var AppConfig = Default()

// Default returns the configuration used for keys that no source sets.
func Default() Config {
	return Config{
		Database: DatabaseConfig{
			Driver:  "sqlite",
			Port:    5432,
			SSLMode: "disable",
			Path:    "tg-word-quiz.db",
		},
		Logging: LoggingConfig{
			Level:     "info",
			GormLevel: "warn",
		},
		Quiz: QuizConfig{
			HintDelay:    quiz.DefaultHintDelay,
			Timeout:      quiz.DefaultTimeout,
			AnswerLength: quiz.DefaultAnswerLength,
			TickInterval: time.Second,
		},
		Results: ResultsConfig{
			Enabled: true,
		},
	}
}

// SessionOptions converts the quiz section into controller options.
func (c QuizConfig) SessionOptions() quiz.Options {
	opts := quiz.Options{
		HintDelay:    c.HintDelay,
		Timeout:      c.Timeout,
		AnswerLength: c.AnswerLength,
		RemoveMode:   quiz.RemoveFirst,
	}
	if c.RemoveDuplicates {
		opts.RemoveMode = quiz.RemoveAllEqual
	}
	return opts
}

// RegisterFlags adds a flag for every tunable key. Flag names are the
// dotted config keys so posflag can merge them directly.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("config", "config.yaml", "path to the YAML config file")
	fs.String("env-file", ".env", "path to an optional .env file")
	fs.String("telegram.token", "", "Telegram bot token")
	fs.String("database.driver", d.Database.Driver, "database driver: postgres or sqlite")
	fs.String("database.path", d.Database.Path, "sqlite database file")
	fs.String("logging.level", d.Logging.Level, "log level: debug, info, warn, error")
	fs.String("logging.file", "", "also write logs to this file")
	fs.Duration("quiz.hint_delay", d.Quiz.HintDelay, "delay before the first letter is revealed (0 disables)")
	fs.Duration("quiz.timeout", d.Quiz.Timeout, "time allowed per question (0 disables)")
	fs.Int("quiz.answer_length", d.Quiz.AnswerLength, "letters a student types (0 accepts any answer)")
	fs.Bool("quiz.remove_duplicates", d.Quiz.RemoveDuplicates, "a correct answer clears every identical row")
	fs.Duration("quiz.tick_interval", d.Quiz.TickInterval, "how often hints and timeouts are checked")
	fs.Bool("results.enabled", d.Results.Enabled, "record results in the database")
}

type Options struct {
	File    string
	EnvFile string
	Flags   *pflag.FlagSet
}

// LoadConfig reads the config file, environment and flags into AppConfig.
// Later sources win: file, .env and TGQUIZ_* variables, then flags that
// were set explicitly.
func LoadConfig(opts Options) error {
	cfg, err := Load(opts)
	if err != nil {
		logger.Error("failed to load config", "error", err)
		return err
	}
	AppConfig = cfg
	return nil
}

func Load(opts Options) (Config, error) {
	k := koanf.New(".")

	if opts.File != "" {
		if err := k.Load(file.Provider(opts.File), yaml.Parser()); err != nil {
			return Config{}, fmt.Errorf("read config file %s: %w", opts.File, err)
		}
	}

	if opts.EnvFile != "" {
		if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("read env file %s: %w", opts.EnvFile, err)
		}
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return Config{}, fmt.Errorf("read environment: %w", err)
	}

	if opts.Flags != nil {
		if err := k.Load(posflag.Provider(opts.Flags, ".", k), nil); err != nil {
			return Config{}, fmt.Errorf("read flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// envKey maps TGQUIZ_QUIZ__HINT_DELAY to quiz.hint_delay.
func envKey(name string) string {
	name = strings.TrimPrefix(name, EnvPrefix)
	return strings.ReplaceAll(strings.ToLower(name), "__", ".")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterStructValidation(validateQuiz, QuizConfig{})
	return v
}

func validateQuiz(sl validator.StructLevel) {
	q := sl.Current().Interface().(QuizConfig)
	if q.HintDelay > 0 && q.Timeout > 0 && q.HintDelay >= q.Timeout {
		sl.ReportError(q.HintDelay, "HintDelay", "hint_delay", "ltfield", "Timeout")
	}
}

// Validate checks cfg against the struct tags and cross-field rules.
func Validate(cfg Config) error {
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fmt.Sprintf("%s (%s)", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid config: %s", strings.Join(fields, ", "))
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
