package config

import "os"

import "gopkg.in/yaml.v3"


//=========================================== Config Load


/*
	Load reads a YAML config file into Config, starting from Default() so
	a partial file only overrides what it names.
*/

func Load(path string) (*Config, error) {
	cfg := Default()

	data, readErr := os.ReadFile(path)
	if readErr != nil { return nil, readErr }

	if unmarshalErr := yaml.Unmarshal(data, cfg); unmarshalErr != nil { return nil, unmarshalErr }

	return cfg, nil
}
