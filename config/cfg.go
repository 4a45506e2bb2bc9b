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
	TemplateFieldName string

	ExtractConfig struct {
		ComponentModules   []string    `yaml:"component_modules" validate:"min=1,dive,required"`
		OutputElement      string      `yaml:"output_element" validate:"required"`
		Naming             ClassNaming `yaml:"naming" validate:"oneof=counter hash readable"`
		ClassPrefix        string      `yaml:"class_prefix"`
		CacheScope         CacheScope  `yaml:"cache_scope" validate:"oneof=unit shared"`
		Strict             bool        `yaml:"strict"`
		Extensions         []string    `yaml:"extensions" validate:"min=1,dive,startswith=."`
		ModulesFile        string      `yaml:"modules_file" sanitize:"assure_file_access"`
		StorePath          string      `yaml:"store_path" sanitize:"path_clean,assure_dir_exists_for_file" validate:"omitempty,filepath"`
		OutputNameTemplate string      `yaml:"output_name_template" validate:"required"`
		SharedStylesheet   string      `yaml:"shared_stylesheet" validate:"required_if=CacheScope shared"`
		InjectImport       bool        `yaml:"inject_import"`
		Banner             string      `yaml:"banner"`
	}

	WatchConfig struct {
		DebounceMs int `yaml:"debounce_ms" validate:"min=10,max=10000"`
	}

	Config struct {
		Version   int            `yaml:"version" validate:"eq=1"`
		Extract   ExtractConfig  `yaml:"extract"`
		Watch     WatchConfig    `yaml:"watch"`
		Logging   LoggingConfig  `yaml:"logging"`
		Reporting ReporterConfig `yaml:"reporting"`
	}
)

const (
	// NOTE: must match yaml field name above, templates below are expanded
	// per unit and not when configuration is loaded
	OutputNameTemplateFieldName TemplateFieldName = "output_name_template"
	BannerFieldName             TemplateFieldName = "banner"
)

var requiredOptions = append([]func(*gencfg.ProcessingOptions){},
	gencfg.WithDoNotExpandField(string(OutputNameTemplateFieldName)),
	gencfg.WithDoNotExpandField(string(BannerFieldName)),
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
		if err := gencfg.Sanitize(cfg); err != nil {
			return nil, err
		}
		if err := gencfg.Validate(cfg); err != nil {
			return nil, err
		}
		if err := cfg.Extract.check(); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// check covers combinations the validator tags cannot express.
func (conf *ExtractConfig) check() error {
	if conf.StorePath != "" && conf.CacheScope != CacheScopeShared {
		return fmt.Errorf("store_path requires cache_scope %q", CacheScopeShared)
	}
	if conf.ClassPrefix != "" && conf.CacheScope == CacheScopeShared {
		return fmt.Errorf("class_prefix cannot be used with cache_scope %q", CacheScopeShared)
	}
	return nil
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
		return nil, fmt.Errorf("failed to marshal config to yaml: %w", err)
	}
	return data, nil
}
