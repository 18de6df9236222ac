package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml.tmpl
var ConfigTmpl []byte

type (
	AssetsConfig struct {
		Optimize       bool            `yaml:"optimize"`
		Resize         ImageResizeMode `yaml:"resize" validate:"gte=0"`
		MaxWidth       int             `yaml:"max_width" validate:"min=320"`
		JPEGQuality    int             `yaml:"jpeg_quality_level" validate:"min=40,max=100"`
		UsePlaceholder bool            `yaml:"use_placeholder"`
	}

	DocumentConfig struct {
		StylesheetPath        string       `yaml:"stylesheet_path" sanitize:"assure_file_access"`
		OutputNameTemplate    string       `yaml:"output_name_template"`
		FileNameTransliterate bool         `yaml:"file_name_transliterate"`
		Bundle                bool         `yaml:"bundle"`
		Assets                AssetsConfig `yaml:"assets"`
	}

	GeneratorConfig struct {
		Model          string       `yaml:"model" validate:"required"`
		APIKey         SecretString `yaml:"api_key"`
		Attempts       int          `yaml:"attempts" validate:"min=1,max=10"`
		BackoffSeconds int          `yaml:"backoff_seconds" validate:"min=0"`
		MaxItemRunes   int          `yaml:"max_item_runes" validate:"min=0"`
		HistoryPath    string       `yaml:"history_path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
	}

	ServerConfig struct {
		Address    string `yaml:"address" validate:"required"`
		DebounceMS int    `yaml:"debounce_ms" validate:"min=0"`
	}

	Config struct {
		Version   int             `yaml:"version" validate:"eq=1"`
		Document  DocumentConfig  `yaml:"document"`
		Generator GeneratorConfig `yaml:"generator"`
		Server    ServerConfig    `yaml:"server"`
		Logging   LoggingConfig   `yaml:"logging"`
		Reporting ReporterConfig  `yaml:"reporting"`
	}
)

type TemplateFieldName string

const (
	// NOTE: must match yaml field name above, alternative is to use struct
	// field name and reflection which I want to avoid for now
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
)

func unmarshalConfig(data []byte, cfg *Config, process bool) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	if process {
		// sanitize and validate what has been loaded
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of expanded configuration template to provide
// sane defaults and performs validation.
func LoadConfiguration(path string, options ...func(*gencfg.ProcessingOptions)) (*Config, error) {
	haveFile := len(path) > 0

	data, err := gencfg.Process(ConfigTmpl, append(requiredOptions, options...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	cfg, err := unmarshalConfig(data, &Config{}, !haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration template: %w", err)
	}
	if !haveFile {
		return cfg, nil
	}

	// overwrite cfg values with values from the file
	data, err = os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err = unmarshalConfig(data, cfg, haveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to process configuration file: %w", err)
	}
	return cfg, nil
}

// Prepare generates configuration file from template and returns it as a byte
// slice.
func Prepare() ([]byte, error) {
	return gencfg.Process(ConfigTmpl, requiredOptions...)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
