package sites

import (
	"errors"
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoSites indicates no site profiles were found in the configuration.
	ErrNoSites = errors.New("no sites found in configuration")
)

// sitesFile is the top-level structure of a sites YAML file.
type sitesFile struct {
	Sites []map[string]any `yaml:"sites"`
}

// LoadFile reads site profiles from a YAML file and builds the registry.
// Decoding goes through mapstructure with weak typing so durations may be
// written as strings ("1500ms") and scalar fields as bare values.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read sites file: %w", err)
	}

	var file sitesFile
	if unmarshalErr := yaml.Unmarshal(data, &file); unmarshalErr != nil {
		return nil, fmt.Errorf("parse sites file: %w", unmarshalErr)
	}
	if len(file.Sites) == 0 {
		return nil, ErrNoSites
	}

	profiles := make([]Profile, 0, len(file.Sites))
	for _, raw := range file.Sites {
		profile, decodeErr := decodeProfile(raw)
		if decodeErr != nil {
			return nil, decodeErr
		}
		profiles = append(profiles, profile)
	}

	return NewRegistry(profiles)
}

// decodeProfile converts one raw YAML mapping to a Profile.
func decodeProfile(raw map[string]any) (Profile, error) {
	var profile Profile
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &profile,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
		),
	})
	if err != nil {
		return Profile{}, fmt.Errorf("create profile decoder: %w", err)
	}
	if decodeErr := decoder.Decode(raw); decodeErr != nil {
		return Profile{}, fmt.Errorf("decode site profile: %w", decodeErr)
	}
	return profile, nil
}
