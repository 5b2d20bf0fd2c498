/*
 * Copyright (c) 2022, Gideon Williams <gideon@gideonw.com>
 *
 * SPDX-License-Identifier: BSD-2-Clause
 */

package emmylog

import (
	"errors"
	"io"
	"io/fs"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/viper"
)

// loadDotEnv reads a .env file from the working directory, if there is one.
// Variables already set in the environment win.
func loadDotEnv() {
	err := godotenv.Load()
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		l := zerolog.New(os.Stderr)
		l.Warn().Err(err).Msg("unable to load .env file")
	}
}

func initConfig(configFile string) {
	log := viper.Get("logger").(zerolog.Logger)

	// config Read
	viper.SetConfigType("toml")
	viper.AddConfigPath("config")
	viper.AddConfigPath("/etc/emmylog")
	viper.AddConfigPath("/usr/local/etc/emmylog")
	viper.AddConfigPath("$HOME/.emmylog")
	viper.AddConfigPath(".")

	if configFile != "" {
		viper.SetConfigFile(configFile)
	}

	err := viper.ReadInConfig()
	if _, ok := err.(viper.ConfigFileNotFoundError); ok {
		log.Debug().Msg("No config file found, using defaults as a base")
	} else if err != nil {
		log.Error().Err(err).Msg("Error loading config file")
	}

	log.Debug().Str("file", viper.ConfigFileUsed()).Msg("loaded config from file")
}

// initLocation resolves emmylog.timezone and stores it under "location".
func initLocation() error {
	name := viper.GetString("emmylog.timezone")
	loc, err := time.LoadLocation(name)
	if err != nil {
		return err
	}
	viper.Set("location", loc)
	return nil
}

func initLogLevel() {
	level := viper.GetInt("emmylog.verbose")
	switch clamp(2, level) {
	case 2:
		zerolog.SetGlobalLevel(zerolog.TraceLevel)
	case 1:
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}

// logFile is kept open for the life of the process
var logFile *os.File

func initLogging() {
	var writer io.Writer

	writer = os.Stderr
	if viper.GetBool("emmylog.local") {
		writer = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		}
	}

	if path := viper.GetString("emmylog.log-file"); path != "" {
		if logFile == nil || logFile.Name() != path {
			f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
			if err != nil {
				l := zerolog.New(os.Stderr)
				l.Error().Err(err).Str("file", path).Msg("unable to open log file")
			} else {
				logFile = f
			}
		}
		if logFile != nil {
			writer = logFile
		}
	}

	logger := zerolog.New(writer).
		With().
		Timestamp().
		Caller().
		Logger()

	viper.Set("logger", logger)
}

func traceConfig() {
	log := viper.Get("logger").(zerolog.Logger)

	for _, v := range viper.AllKeys() {
		if v == "logger" || v == "location" {
			continue
		}
		log.Trace().Msgf("%s=%v", v, viper.Get(v))
	}
}

func clamp(clamp, a int) int {
	if a >= clamp {
		return clamp
	}
	return a
}
