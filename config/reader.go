package config

import (
	"bytes"
	"io"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// Read reads a config from the given file. Environment variables in the file are expanded and a
// relative button map path is resolved against the file's directory.
func Read(filePath string) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, err
	}
	cfg, err := decode(buf)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %q", filePath)
	}
	if cfg.ButtonMap != "" && !filepath.IsAbs(cfg.ButtonMap) {
		cfg.ButtonMap = filepath.Join(filepath.Dir(filePath), cfg.ButtonMap)
	}
	return cfg, nil
}

// FromReader reads a config from the given reader. YAML and JSON are both accepted.
func FromReader(r io.Reader) (*Config, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	buf, err = envsubst.Bytes(buf)
	if err != nil {
		return nil, err
	}
	return decode(buf)
}

func decode(buf []byte) (*Config, error) {
	var attributes map[string]interface{}
	if err := yaml.NewDecoder(bytes.NewReader(buf)).Decode(&attributes); err != nil && !errors.Is(err, io.EOF) {
		return nil, errors.Wrap(err, "cannot parse config")
	}

	var cfg Config
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           &cfg,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(attributes); err != nil {
		return nil, errors.Wrap(err, "cannot decode config")
	}
	if err := cfg.Ensure(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
