package config // package config loads application configuration from environment variables

import (
    "log"     // log is used to report configuration errors and halt execution
    "os"      // os provides access to environment variables
    "strconv" // strconv converts strings to other types
)

// devSessionSecret is the documented weak fallback for non-production
// environments.  In production an explicit SESSION_SECRET is mandatory.
const devSessionSecret = "fallback-secret-key"

// Config holds all runtime configuration values.  Each field corresponds to
// an environment variable.  The types reflect how the values are used in
// the application: strings for identifiers and secrets, ints for durations
// and costs.
type Config struct {
    Env           string // application environment (e.g. "dev", "prod")
    Port          string // HTTP port to listen on
    DBUser        string // database username
    DBPass        string // database password (optional)
    DBHost        string // database host address
    DBPort        string // database port number
    DBName        string // database name
    SessionSecret string // secret used to sign session cookies
    SessionTTLH   int    // session time-to-live in hours
    BcryptCost    int    // bcrypt cost for password hashing
    UploadDriver  string // blob storage backend: "disk" or "s3"
    UploadRoot    string // local directory for the disk backend
    S3Endpoint    string // object storage endpoint for the s3 backend
    S3AccessKey   string // object storage access key
    S3SecretKey   string // object storage secret key
    S3Bucket      string // object storage bucket name
    S3UseSSL      bool   // whether to talk TLS to object storage
    AMQPURL       string // optional broker URL for audit events
}

// Load reads configuration values from environment variables and returns a
// Config.  Database variables are enforced by must() and missing values
// cause the program to exit with a fatal log message; everything else has a
// sensible default.
func Load() Config {
    cfg := Config{
        Env:          getenv("APP_ENV", "dev"),
        Port:         getenv("APP_PORT", "3000"),
        DBUser:       must("DB_USER"),
        DBPass:       os.Getenv("DB_PASS"), // empty allowed
        DBHost:       must("DB_HOST"),
        DBPort:       getenv("DB_PORT", "3306"),
        DBName:       must("DB_NAME"),
        SessionTTLH:  atoi(getenv("SESSION_TTL_HOURS", "168")),
        BcryptCost:   atoi(getenv("BCRYPT_COST", "10")),
        UploadDriver: getenv("UPLOAD_DRIVER", "disk"),
        UploadRoot:   getenv("UPLOAD_ROOT", "uploads"),
        S3Endpoint:   os.Getenv("S3_ENDPOINT"),
        S3AccessKey:  os.Getenv("S3_ACCESS_KEY"),
        S3SecretKey:  os.Getenv("S3_SECRET_KEY"),
        S3Bucket:     getenv("S3_BUCKET", "encore-uploads"),
        S3UseSSL:     getenv("S3_USE_SSL", "false") == "true",
        AMQPURL:      os.Getenv("AMQP_URL"),
    }

    cfg.SessionSecret = os.Getenv("SESSION_SECRET")
    if cfg.SessionSecret == "" {
        if cfg.IsProduction() {
            log.Fatal("SESSION_SECRET must be set in production")
        }
        // Known weak default, acceptable only for local development.
        log.Printf("SESSION_SECRET not set; using insecure development default")
        cfg.SessionSecret = devSessionSecret
    }
    return cfg
}

// IsProduction reports whether the app runs in a production environment.
func (c Config) IsProduction() bool {
    return c.Env == "prod" || c.Env == "production"
}

// must retrieves the value of a required environment variable.  If the
// variable is unset or empty, the application logs a fatal error and exits.
func must(key string) string {
    v, ok := os.LookupEnv(key)
    if !ok || v == "" {
        log.Fatalf("missing required env var: %s", key)
    }
    return v
}

// getenv returns the value of key or a default when unset.
func getenv(key, def string) string {
    if v := os.Getenv(key); v != "" {
        return v
    }
    return def
}

func atoi(s string) int {
    i, _ := strconv.Atoi(s)
    return i
}
