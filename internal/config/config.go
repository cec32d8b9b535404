package config

import (
	"os"
	"path/filepath"
	"strconv"
)

type Config struct {
	RunAddress  string
	WorkDir     string
	DatabaseURI string
	DriveFolder string
	DesktopDir  string
	ServiceName string
	// ServiceType is the service picked on the first form page.
	ServiceType string
	GitHub      GitHub
	LLM         LLM
}

type GitHub struct {
	Repo           string // owner/name
	Workflow       string
	Ref            string
	APIURL         string
	Token          string
	AppID          int64
	InstallationID int64
	AppKeyFile     string
}

// UseAPI reports whether the REST API should be used instead of the gh CLI.
func (g GitHub) UseAPI() bool {
	return g.Token != "" || (g.AppID != 0 && g.InstallationID != 0 && g.AppKeyFile != "")
}

type LLM struct {
	BaseURL           string
	Model             string
	RequestsPerMinute int
}

func New() *Config {
	home, _ := os.UserHomeDir()

	cfg := &Config{
		RunAddress:  getEnv("RUN_ADDRESS", "127.0.0.1:8765"),
		WorkDir:     getEnv("WORK_DIR", "."),
		DatabaseURI: getEnv("DATABASE_URI", ""),
		DriveFolder: getEnv("DRIVE_FOLDER", "Faktury logopeda"),
		DesktopDir:  getEnv("DESKTOP_DIR", filepath.Join(home, "Desktop")),
		ServiceName: getEnv("SERVICE_NAME", "zwrot"),
		ServiceType: getEnv("SERVICE_TYPE", "Logopeda"),
		GitHub: GitHub{
			Repo:           getEnv("GITHUB_REPO", "emilia-chodorowska/ZwrotKosztowLeczenia"),
			Workflow:       getEnv("GITHUB_WORKFLOW", "refresh.yml"),
			Ref:            getEnv("GITHUB_REF_NAME", "main"),
			APIURL:         getEnv("GITHUB_API_URL", "https://api.github.com"),
			Token:          getEnv("GITHUB_TOKEN", ""),
			AppID:          getEnvInt64("GITHUB_APP_ID", 0),
			InstallationID: getEnvInt64("GITHUB_APP_INSTALLATION_ID", 0),
			AppKeyFile:     getEnv("GITHUB_APP_KEY_FILE", ""),
		},
		LLM: LLM{
			BaseURL:           getEnv("LLM_BASE_URL", "https://api.anthropic.com/v1"),
			Model:             getEnv("LLM_MODEL", "claude-sonnet-4-20250514"),
			RequestsPerMinute: int(getEnvInt64("LLM_REQUESTS_PER_MINUTE", 20)),
		},
	}

	return cfg
}

// Path resolves name inside the working directory.
func (c *Config) Path(name string) string {
	return filepath.Join(c.WorkDir, name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt64(key string, fallback int64) int64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}
