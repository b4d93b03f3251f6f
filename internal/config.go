package internal

import (
	"fmt"
	"time"
)

type Config struct {
	Host      string `env:"HOST,required=true"`
	Port      int    `env:"PORT,required=true"`
	DebugPort int    `env:"DEBUG_PORT,required=true"`
	LogLevel  string `env:"LOG_LEVEL,required=true"`

	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	DispatchBufferSize   int           `env:"DISPATCH_BUFFER_SIZE,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	MonitorInterval      time.Duration `env:"METRIC_INTERVAL,required=true"`

	CollaboratorTimeout time.Duration `env:"COLLABORATOR_TIMEOUT,required=true"`
	ScoringURL          string        `env:"SCORING_URL,required=true"`
	MintURL             string        `env:"MINT_URL,required=true"`
	SettlementURL       string        `env:"SETTLEMENT_URL,required=true"`

	BadgerFilepath string `env:"BADGER_FILEPATH,required=true"`

	CensoredWords   []string `env:"CENSORED_WORDS"`
	CharReplacement string   `env:"CHARACTER_REPLACEMENT,required=true"`
	MaxNameLength   int      `env:"MAX_NAME_LENGTH,required=true"`
}

func CharacterRune(str string) (rune, error) {
	r := []rune(str)
	if len(r) != 1 {
		return 0, fmt.Errorf(
			"CHARACTER_REPLACEMENT must be a single character, got %q",
			str,
		)
	}
	return r[0], nil
}
