package main

import (
	"fmt"
	"time"
)

type Config struct {
	BadgerFilepath            string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel                  string        `env:"LOG_LEVEL,required=true"`
	Host                      string        `env:"HOST,default=localhost"`
	Port                      int           `env:"PORT,default=8080"`
	ConnectionBufferSize      int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	LimitMessages             *int          `env:"LIMIT_MESSAGES"`
	TokenSecret               string        `env:"TOKEN_SECRET,required=true"`
	AuthTokenDuration         time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	RestartInterval           time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval            time.Duration `env:"METRIC_INTERVAL,required=true"`
	ModerationCharReplacement string        `env:"MODERATION_CHARACTER_REPLACEMENT,default=*"`
}

func characterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"MODERATION_CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
