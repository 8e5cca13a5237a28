package main

import (
	"os"

	"github.com/cfoust/drift/pkg/config"

	"gopkg.in/yaml.v3"
)

func configCommand(configs []string) error {
	cfg, err := config.Process(configs)
	if err != nil {
		return err
	}

	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	if err := encoder.Encode(cfg); err != nil {
		return err
	}
	return encoder.Close()
}
