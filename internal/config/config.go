package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultTokenURL    = "https://oauth.oclc.org/token"
	DefaultScope       = "wcapi:view_institution_holdings"
	DefaultHoldingsURL = "https://americas.discovery.api.oclc.org/worldcat/search/v2/bibs-holdings"
)

// Config holds the tunable settings for a weeding run
type Config struct {
	CutoffYear    string `yaml:"cutoffyear"`
	EligibleShelf string `yaml:"eligibleshelf"`
	Institution   string `yaml:"institution"`
	Jurisdiction  string `yaml:"jurisdiction"`

	MinGroupSize int `yaml:"mingroupsize"`
	MaxBatchSize int `yaml:"maxbatchsize"`
	EnumerateCap int `yaml:"enumeratecap"`
	DistinctCap  int `yaml:"distinctcap"`

	InputDir        string `yaml:"inputdir"`
	IntermediateDir string `yaml:"intermediatedir"`
	OutputDir       string `yaml:"outputdir"`
	Format          string `yaml:"format"`

	TokenURL    string        `yaml:"tokenurl"`
	Scope       string        `yaml:"scope"`
	HoldingsURL string        `yaml:"holdingsurl"`
	HTTPTimeout time.Duration `yaml:"httptimeout"`
}

// Default returns the settings the library has historically run with
func Default() Config {
	return Config{
		CutoffYear:      "2004",
		EligibleShelf:   "FDSA Shelves",
		Institution:     "Stetson University",
		Jurisdiction:    "US-FL",
		MinGroupSize:    20,
		MaxBatchSize:    250,
		EnumerateCap:    3,
		DistinctCap:     5,
		InputDir:        "input",
		IntermediateDir: "output",
		OutputDir:       "output/xlsx files",
		Format:          "xlsx",
		TokenURL:        DefaultTokenURL,
		Scope:           DefaultScope,
		HoldingsURL:     DefaultHoldingsURL,
		HTTPTimeout:     30 * time.Second,
	}
}

// Load reads a YAML config file over the defaults. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

var yearPattern = regexp.MustCompile(`^\d{4}$`)

// Validate checks the settings for values the pipeline cannot work with
func (c Config) Validate() error {
	var errs []error
	// Year comparisons are lexicographic so only zero-padded 4 digit years order correctly
	if !yearPattern.MatchString(c.CutoffYear) {
		errs = append(errs, fmt.Errorf("cutoff year must be 4 digits, got %q", c.CutoffYear))
	}
	if c.EligibleShelf == "" {
		errs = append(errs, errors.New("eligible shelf must not be empty"))
	}
	if c.MinGroupSize < 1 {
		errs = append(errs, fmt.Errorf("min group size must be positive, got %d", c.MinGroupSize))
	}
	if c.MaxBatchSize < 1 {
		errs = append(errs, fmt.Errorf("max batch size must be positive, got %d", c.MaxBatchSize))
	}
	if c.EnumerateCap < 1 {
		errs = append(errs, fmt.Errorf("enumerate cap must be positive, got %d", c.EnumerateCap))
	}
	if c.DistinctCap < c.EnumerateCap {
		errs = append(errs, fmt.Errorf("distinct cap (%d) must not be below enumerate cap (%d)", c.DistinctCap, c.EnumerateCap))
	}
	switch c.Format {
	case "xlsx", "parquet":
	default:
		errs = append(errs, fmt.Errorf("unsupported output format: %s (supported: xlsx, parquet)", c.Format))
	}
	return errors.Join(errs...)
}

// Credentials are the WorldCat API client id and secret
type Credentials struct {
	ClientID     string
	ClientSecret string
}

// LoadCredentials reads WORLDCAT_CLIENT_ID and WORLDCAT_CLIENT_SECRET from the environment,
// falling back to a two line credentials file (client id, then secret).
func LoadCredentials(path string) (Credentials, error) {
	creds := Credentials{
		ClientID:     os.Getenv("WORLDCAT_CLIENT_ID"),
		ClientSecret: os.Getenv("WORLDCAT_CLIENT_SECRET"),
	}
	if creds.ClientID != "" && creds.ClientSecret != "" {
		return creds, nil
	}
	if path == "" {
		return creds, errors.New("WORLDCAT_CLIENT_ID and WORLDCAT_CLIENT_SECRET environment variables not set")
	}

	file, err := os.Open(path)
	if err != nil {
		return creds, fmt.Errorf("failed to open credentials file: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() && len(lines) < 2 {
		lines = append(lines, strings.TrimSpace(scanner.Text()))
	}
	if err := scanner.Err(); err != nil {
		return creds, fmt.Errorf("failed to read credentials file: %w", err)
	}
	if len(lines) < 2 || lines[0] == "" || lines[1] == "" {
		return creds, fmt.Errorf("%s must contain the client id and client secret on separate lines", path)
	}

	return Credentials{ClientID: lines[0], ClientSecret: lines[1]}, nil
}
