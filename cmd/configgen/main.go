package main

import (
	"flag"

	"github.com/danmuck/padctl/internal/config"
	"github.com/danmuck/padctl/internal/observability"
	"github.com/rs/zerolog/log"
)

func main() {
	observability.InitLogger("configgen")

	kind := flag.String("kind", "local", "template kind: local|remote")
	output := flag.String("output", "", "output path for config template (defaults to $"+config.EnvConfigPath+" or "+config.DefaultPath+")")
	validate := flag.Bool("validate", false, "validate an existing config file")
	input := flag.String("input", "", "config path for validation (defaults like -output)")
	force := flag.Bool("force", false, "overwrite existing config file")
	flag.Parse()

	if *validate {
		path := config.ResolvePath(*input)
		if _, err := config.Load(path); err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("config invalid")
		}
		log.Info().Str("path", path).Msg("validated config")
		return
	}

	target := config.ResolvePath(*output)
	if err := config.WriteTemplate(target, *kind, *force); err != nil {
		log.Fatal().Err(err).Str("path", target).Msg("write template failed")
	}
	log.Info().Str("kind", *kind).Str("path", target).Msg("wrote config template")
}
