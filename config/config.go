package config

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/Gyarko10951917/Goldguard-Illegal-Mining-Tracking-System-sub000/models"
)

// Remote store modes
const (
	RemoteMongo = "mongo"
	RemoteHTTP  = "http"
	RemoteNone  = "none"
)

// Config holds the project config values
type Config struct {
	Env          string
	URL          string
	DatabaseName string
	BaseURL      string
	Port         string

	RemoteMode      string
	RemoteBaseURL   string
	RemoteToken     string
	RemoteJWTSecret string
	RemoteTimeout   time.Duration

	LocalDBPath    string
	PollInterval   time.Duration
	SyncInterval   time.Duration
	RequestTimeout time.Duration

	JWTSecret         string
	AdminHeadEmail    string
	AdminHeadPassword string

	SendGridAPIKey string
	AlertFromEmail string
	AlertEmails    []string

	CloudinaryURL string
	UploadDir     string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", "local")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_NAME", "galamsey")
	v.SetDefault("REMOTE_MODE", RemoteMongo)
	v.SetDefault("REMOTE_TIMEOUT", "8s")
	v.SetDefault("LOCAL_DB_PATH", "pending_cases.db")
	v.SetDefault("POLL_INTERVAL", "30s")
	v.SetDefault("SYNC_INTERVAL", "60s")
	v.SetDefault("REQUEST_TIMEOUT", "15s")
	v.SetDefault("ALERT_FROM_EMAIL", "alerts@goldguard.gh")
	v.SetDefault("UPLOAD_DIR", "uploads")
}

// New sets up all config related services. Values come from the environment, optionally
// layered over the YAML file named by CONFIG_FILE.
func New() *Config {
	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path := v.GetString("CONFIG_FILE"); path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			zap.S().Warnw("failed to read config file, using environment only", "path", path, "error", err)
		}
	}

	//setup zap logger and replace default logger
	logger, err := setLogger(v.GetString("ENV"))
	if err != nil {
		logger = zap.NewExample()
	}
	defer logger.Sync()
	_ = zap.ReplaceGlobals(logger)

	return &Config{
		Env:          v.GetString("ENV"),
		URL:          v.GetString("DB_URI"),
		DatabaseName: v.GetString("DB_NAME"),
		BaseURL:      v.GetString("BASE_URL"),
		Port:         v.GetString("PORT"),

		RemoteMode:      strings.ToLower(v.GetString("REMOTE_MODE")),
		RemoteBaseURL:   strings.TrimRight(v.GetString("REMOTE_BASE_URL"), "/"),
		RemoteToken:     v.GetString("REMOTE_TOKEN"),
		RemoteJWTSecret: v.GetString("REMOTE_JWT_SECRET"),
		RemoteTimeout:   v.GetDuration("REMOTE_TIMEOUT"),

		LocalDBPath:    v.GetString("LOCAL_DB_PATH"),
		PollInterval:   v.GetDuration("POLL_INTERVAL"),
		SyncInterval:   v.GetDuration("SYNC_INTERVAL"),
		RequestTimeout: v.GetDuration("REQUEST_TIMEOUT"),

		JWTSecret:         v.GetString("JWT_SECRET"),
		AdminHeadEmail:    v.GetString("ADMIN_HEAD_EMAIL"),
		AdminHeadPassword: v.GetString("ADMIN_HEAD_PASSWORD"),

		SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
		AlertFromEmail: v.GetString("ALERT_FROM_EMAIL"),
		AlertEmails:    splitList(v.GetString("ALERT_EMAILS")),

		CloudinaryURL: v.GetString("CLOUDINARY_URL"),
		UploadDir:     v.GetString("UPLOAD_DIR"),
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ErrorStatus is a useful function that will log, write http headers and body for a
// give message, status code and err
func ErrorStatus(message string, httpStatusCode int, w http.ResponseWriter, err error) {
	zap.S().Errorw(message, "error", err)
	errText := ""
	if err != nil {
		errText = err.Error()
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatusCode)
	_ = json.NewEncoder(w).Encode(models.ErrorMessageResponse{
		Response: models.MessageError{Message: message, Error: errText},
	})
}
